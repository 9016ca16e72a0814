// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package app 提供應用程式生命週期管理（App），統一啟動與關閉多個 Component。
package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"
)

// DefaultShutdownTimeout 優雅關閉的預設期限
const DefaultShutdownTimeout = 5 * time.Second

// App 並行啟動所有 Component；收到 OS 信號、ctx 結束或任一 Component 返回時，協調優雅關閉。
type App struct {
	comps           []Component
	ShutdownTimeout time.Duration
}

// New 建立一個新的 App 實例。
func New() *App { return &App{ShutdownTimeout: DefaultShutdownTimeout} }

// NewWith 建立 App 並註冊多個 Component。
func NewWith(comps ...Component) *App {
	app := New()
	for _, c := range comps {
		app.Register(c)
	}
	return app
}

func (a *App) Register(c Component) {
	a.comps = append(a.comps, c)
}

// Run 等同 RunContext(context.Background())，另外監聽 SIGINT/SIGTERM。
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext 阻塞直到 ctx 結束（回傳 nil）或任一 Component.Run 返回（回傳其錯誤，nil 代表正常停止）。
// 兩種情況都會在 ShutdownTimeout 內關閉全部 Component，關閉錯誤以 errors.Join 一併回傳。
func (a *App) RunContext(ctx context.Context) error {
	if len(a.comps) == 0 {
		return nil
	}
	errCh := make(chan error, len(a.comps))
	for _, c := range a.comps {
		go func(c Component) {
			errCh <- c.Run()
		}(c)
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}
	return errors.Join(runErr, a.gracefulShutdown())
}

// gracefulShutdown 在期限內依序呼叫所有 Component.Shutdown
func (a *App) gracefulShutdown() error {
	td := a.ShutdownTimeout
	if td <= 0 {
		td = DefaultShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), td)
	defer cancel()
	var errs []error
	for _, c := range a.comps {
		if err := c.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
