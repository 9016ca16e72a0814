package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestWithTraceFileKeepsOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.trace.zst")
	err := withTraceFile(path, func(w io.Writer) error {
		_, err := w.Write([]byte("data"))
		return err
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil || string(b) != "data" {
		t.Fatalf("trace file content=%q err=%v", b, err)
	}
}

func TestWithTraceFileRemovedOnFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.trace.zst")
	boom := errors.New("run failed")
	err := withTraceFile(path, func(io.Writer) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected run error, got %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("trace file should be removed, stat err=%v", err)
	}
}

func TestWithTraceFileCreateError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "run.trace.zst")
	called := false
	err := withTraceFile(path, func(io.Writer) error { called = true; return nil })
	if err == nil || called {
		t.Fatalf("expected create error before running, err=%v called=%v", err, called)
	}
}
