// Package app 定義長期運行元件的最小生命週期抽象。
package app

import "context"

// Component 為可啟動 / 可關閉的長生命週期元件（HTTP server、背景 worker 等）。
//   - Run 為阻塞呼叫，直到元件停止；正常停止回傳 nil。
//   - Shutdown(ctx) 要求優雅關閉，需尊重 ctx 的期限。
type Component interface {
	Run() error
	Shutdown(ctx context.Context) error
}
