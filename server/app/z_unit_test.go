package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeComp struct {
	stop     chan struct{}
	runErr   error
	shutErr  error
	shutdown atomic.Int32
}

func newFake(runErr, shutErr error) *fakeComp {
	return &fakeComp{stop: make(chan struct{}), runErr: runErr, shutErr: shutErr}
}

func (f *fakeComp) Run() error {
	if f.runErr != nil {
		return f.runErr
	}
	<-f.stop
	return nil
}

func (f *fakeComp) Shutdown(ctx context.Context) error {
	if f.shutdown.Add(1) == 1 {
		close(f.stop)
	}
	return f.shutErr
}

func TestRunContextCancel(t *testing.T) {
	a, b := newFake(nil, nil), newFake(nil, nil)
	app := NewWith(a, b)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.RunContext(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("app did not stop")
	}
	if a.shutdown.Load() != 1 || b.shutdown.Load() != 1 {
		t.Fatalf("all components should be shut down once")
	}
}

func TestRunContextComponentError(t *testing.T) {
	boom := errors.New("listen failed")
	shut := errors.New("shutdown failed")
	a, b := newFake(boom, nil), newFake(nil, shut)
	err := NewWith(a, b).RunContext(context.Background())
	if !errors.Is(err, boom) || !errors.Is(err, shut) {
		t.Fatalf("expected joined errors, got %v", err)
	}
	if b.shutdown.Load() != 1 {
		t.Fatalf("healthy component should be shut down")
	}
}

func TestRunContextEmpty(t *testing.T) {
	if err := New().RunContext(context.Background()); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}
