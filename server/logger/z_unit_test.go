package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"go.uber.org/goleak"
)

type lockedBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func (l *lockedBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.String()
}

func TestParseMode(t *testing.T) {
	cases := map[string]LogMode{"ModeDev": ModeDev, "prod": ModeProd, "ModeSilence": ModeSilence, "": ModeDev}
	for in, want := range cases {
		got, ok := ParseMode(in)
		if !ok || got != want {
			t.Fatalf("ParseMode(%q)=%v,%v", in, got, ok)
		}
	}
	if _, ok := ParseMode("verbose"); ok {
		t.Fatalf("expected unknown mode")
	}
}

func TestAsyncDrainsOnClose(t *testing.T) {
	// Close 後 worker 必須結束
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	var buf lockedBuffer
	log, ah := NewAsyncTo(&buf, 64, ModeProd)
	for i := 0; i < 10; i++ {
		log.Info("sample.done", slog.Int("i", i))
	}
	ah.Close()
	out := buf.String()
	if got := strings.Count(out, `"msg":"sample.done"`); got != 10 {
		t.Fatalf("expected 10 lines, got %d: %s", got, out)
	}

	// 關閉後的紀錄被丟棄
	log.Info("late")
	ah.Close()
	if ah.Dropped() != 1 {
		t.Fatalf("dropped=%d", ah.Dropped())
	}
	if strings.Contains(buf.String(), "late") {
		t.Fatalf("record after close should be dropped")
	}
}

func TestAsyncWithAttrsSharesDispatcher(t *testing.T) {
	var buf lockedBuffer
	log, ah := NewAsyncTo(&buf, 16, ModeProd)
	log.With(slog.String("req", "abc")).WithGroup("g").Info("hello", slog.Int("n", 1))
	ah.Close()
	out := buf.String()
	if !strings.Contains(out, `"req":"abc"`) || !strings.Contains(out, `"g":{"n":1}`) {
		t.Fatalf("attrs lost: %s", out)
	}
}

func TestAsyncSilenceAndNil(t *testing.T) {
	var h *AsyncHandler
	if h.Ready() || h.Dropped() != 0 {
		t.Fatalf("nil handler should be not ready")
	}
	h.Close()
	if err := h.Handle(context.Background(), slog.Record{}); err != nil {
		t.Fatalf("nil handle err: %v", err)
	}
	log, ah := NewAsync(4, ModeSilence)
	log.Info("nothing")
	ah.Close()
	if NewLogger(nil) == nil || NewDefaultLogger(ModeSilence) == nil {
		t.Fatalf("logger constructors returned nil")
	}
}
