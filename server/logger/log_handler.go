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

// Package logger 組裝 server 使用的 *slog.Logger。
//
// 兩種注入方式：
//   - 直接用 NewDefaultLogger / NewAsync 依 LogMode 建立。
//   - 自行組好 slog.Handler（JSON/Text/ReplaceAttr/LevelVar...），再用 NewLogger 或 NewAsyncHandler 包裝。
//
// 取樣核心（sdk/*）不寫 log；log 只出現在 server 與 cmd 這類組裝層。
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// enum LogMode
type LogMode uint8

const (
	ModeDev     LogMode = iota // text, stderr, debug
	ModeProd                   // json, stdout, info
	ModeSilence                // discard
)

// ParseMode 接受 dev / prod / silence（大小寫不敏感，可帶 Mode 前綴）；無法辨識時回傳 ModeDev 與 false。
func ParseMode(s string) (LogMode, bool) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "mode")
	switch s {
	case "dev", "":
		return ModeDev, true
	case "prod":
		return ModeProd, true
	case "silence", "silent":
		return ModeSilence, true
	default:
		return ModeDev, false
	}
}

// NewDefaultLogger 依 LogMode 的預設值建立同步 logger
func NewDefaultLogger(mode LogMode) *slog.Logger {
	return slog.New(buildHandler(mode, nil))
}

// NewLogger 把呼叫端組好的 Handler 包成 *slog.Logger；h 為 nil 時使用 ModeDev。
func NewLogger(h slog.Handler) *slog.Logger {
	if h == nil {
		h = buildHandler(ModeDev, nil)
	}
	return slog.New(h)
}

// AsyncHandler 把任何 slog.Handler 變成非阻塞：
//   - Handle 只做 enqueue；背景 goroutine 依序呼叫 next.Handle 寫出。
//   - 隊列滿或 Close 之後的紀錄直接丟棄並計數，延遲不會傳回請求路徑。
//
// slog.Logger 會忽略 Handle 回傳的 error；I/O 錯誤需由 next 自行處理。
type AsyncHandler struct {
	next slog.Handler
	d    *asyncDispatcher
}

type asyncDispatcher struct {
	ch     chan asyncItem
	closed chan struct{}
	once   sync.Once
	wg     sync.WaitGroup

	dropCount atomic.Uint64
}

type asyncItem struct {
	ctx     context.Context
	rec     slog.Record
	handler slog.Handler
}

// NewAsyncHandler 以 buf 大小的隊列包裝 next（buf <= 0 時為 1024）
func NewAsyncHandler(next slog.Handler, buf int) *AsyncHandler {
	if next == nil {
		next = buildHandler(ModeDev, nil)
	}
	if buf <= 0 {
		buf = 1024
	}
	d := &asyncDispatcher{
		ch:     make(chan asyncItem, buf),
		closed: make(chan struct{}),
	}
	d.wg.Add(1)
	go d.worker()
	return &AsyncHandler{next: next, d: d}
}

func (h *AsyncHandler) Ready() bool {
	return h != nil && h.d != nil
}

// Dropped 因隊列滿或已關閉而丟棄的筆數
func (h *AsyncHandler) Dropped() uint64 {
	if !h.Ready() {
		return 0
	}
	return h.d.dropCount.Load()
}

// Close 停止收件並把隊列內的紀錄寫完；可重複呼叫。
func (h *AsyncHandler) Close() {
	if !h.Ready() {
		return
	}
	h.d.once.Do(func() { close(h.d.closed) })
	h.d.wg.Wait()
}

func (d *asyncDispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case it := <-d.ch:
			_ = it.handler.Handle(it.ctx, it.rec)
		case <-d.closed:
			for {
				select {
				case it := <-d.ch:
					_ = it.handler.Handle(it.ctx, it.rec)
				default:
					return
				}
			}
		}
	}
}

func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *AsyncHandler) Handle(ctx context.Context, r slog.Record) error {
	if !h.Ready() {
		return nil
	}
	select {
	case <-h.d.closed:
		h.d.dropCount.Add(1)
		return nil
	default:
	}

	// Record 跨 goroutine 前需 Clone
	it := asyncItem{ctx: context.WithoutCancel(ctx), rec: r.Clone(), handler: h.next}
	select {
	case h.d.ch <- it:
	default:
		h.d.dropCount.Add(1)
	}
	return nil
}

func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{next: h.next.WithAttrs(attrs), d: h.d}
}

func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{next: h.next.WithGroup(name), d: h.d}
}

// NewAsync 依 LogMode 建立 handler 並包成 AsyncHandler
func NewAsync(buf int, mode LogMode) (*slog.Logger, *AsyncHandler) {
	return NewAsyncTo(nil, buf, mode)
}

// NewAsyncTo 與 NewAsync 相同，但寫到 w（nil 時依 LogMode 的預設輸出）
func NewAsyncTo(w io.Writer, buf int, mode LogMode) (*slog.Logger, *AsyncHandler) {
	ah := NewAsyncHandler(buildHandler(mode, w), buf)
	return slog.New(ah), ah
}

func buildHandler(mode LogMode, w io.Writer) slog.Handler {
	switch mode {
	case ModeProd:
		if w == nil {
			w = os.Stdout
		}
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	case ModeSilence:
		return slog.NewTextHandler(io.Discard, nil)
	default:
		if w == nil {
			w = os.Stderr
		}
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
}
