package perf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseMode(t *testing.T) {
	for _, s := range []string{"", "cpu", "heap", "allocs"} {
		if m, err := ParseMode(s); err != nil || string(m) != s {
			t.Fatalf("ParseMode(%q)=%q,%v", s, m, err)
		}
	}
	if _, err := ParseMode("trace"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestRunWritesProfile(t *testing.T) {
	for _, m := range []Mode{CPU, Heap, Allocs} {
		dir := t.TempDir()
		called := false
		err := Run(dir, m, func() error {
			called = true
			return nil
		})
		if err != nil || !called {
			t.Fatalf("[%s] err=%v called=%v", m, err, called)
		}
		st, err := os.Stat(filepath.Join(dir, string(m)+".pprof"))
		if err != nil || st.Size() == 0 {
			t.Fatalf("[%s] profile not written: %v", m, err)
		}
	}
}

func TestRunPropagatesError(t *testing.T) {
	want := errors.New("boom")
	if err := Run(t.TempDir(), None, func() error { return want }); !errors.Is(err, want) {
		t.Fatalf("expected exe error, got %v", err)
	}
	dir := t.TempDir()
	if err := Run(dir, Heap, func() error { return want }); !errors.Is(err, want) {
		t.Fatalf("expected exe error, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "heap.pprof")); err == nil {
		t.Fatalf("heap profile should not be written when exe fails")
	}
}
