package slicelab

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/zintix-labs/slicelab/recorder"
	"github.com/zintix-labs/slicelab/setting"
)

func newLab(t *testing.T) *Slicelab {
	t.Helper()
	lab, err := NewDefault()
	if err != nil {
		t.Fatalf("new lab err: %v", err)
	}
	return lab
}

func TestPresets(t *testing.T) {
	lab := newLab(t)
	names := make([]string, 0, 3)
	for _, e := range lab.Presets() {
		names = append(names, e.Name)
	}
	if !slices.Equal(names, []string{"bimodal", "normal", "trimodal"}) {
		t.Fatalf("presets=%v", names)
	}
	if _, err := lab.LoadPreset("unknown"); err == nil {
		t.Fatalf("expected error for unknown preset")
	}
}

func TestRunTrimodalReproducible(t *testing.T) {
	lab := newLab(t)
	run := func() *Outcome {
		rs, err := lab.LoadPreset("trimodal")
		if err != nil {
			t.Fatalf("load err: %v", err)
		}
		out, err := lab.Run(context.Background(), rs, Options{})
		if err != nil {
			t.Fatalf("run err: %v", err)
		}
		return out
	}
	a, b := run(), run()
	if a.Seed != 5 || a.Name != "trimodal" || a.RNG != "pcg64" {
		t.Fatalf("outcome meta wrong: %+v", a)
	}
	if len(a.Samples) != 20 || len(a.Trace) != 20 {
		t.Fatalf("cardinality wrong: %d %d", len(a.Samples), len(a.Trace))
	}
	if !slices.Equal(a.Samples, b.Samples) {
		t.Fatalf("same seed should reproduce samples")
	}
	for i, x := range a.Samples {
		if x < 0 {
			t.Fatalf("sample %d outside domain: %v", i, x)
		}
		if a.Trace[i].Sample != x {
			t.Fatalf("trace not aligned at %d", i)
		}
	}
	if a.Summary == nil || a.Summary.N != 20 || a.Cost == nil || a.Cost.Steps != 20 {
		t.Fatalf("summary/cost missing")
	}
	if a.KS == nil || a.KS.N != 20 {
		t.Fatalf("ks missing")
	}
	if a.Iterations != 20 || a.Evaluations < 20 {
		t.Fatalf("iterations=%d evaluations=%d", a.Iterations, a.Evaluations)
	}
}

func TestRunDrawsSeedWhenMissing(t *testing.T) {
	lab := newLab(t)
	rs, _ := lab.LoadPreset("normal")
	rs.Seed = nil
	rs.NumSamples = 30
	out, err := lab.Run(context.Background(), rs, Options{DropTrace: true})
	if err != nil {
		t.Fatalf("run err: %v", err)
	}
	if out.Trace != nil {
		t.Fatalf("trace should be dropped")
	}

	seed := out.Seed
	rs.Seed = &seed
	again, err := Run(context.Background(), rs, Options{})
	if err != nil {
		t.Fatalf("run err: %v", err)
	}
	if !slices.Equal(out.Samples, again.Samples) {
		t.Fatalf("recorded seed should reproduce the run")
	}
}

func TestRunWritesTrace(t *testing.T) {
	lab := newLab(t)
	rs, _ := lab.LoadPreset("bimodal")
	rs.NumSamples = 40
	var buf bytes.Buffer
	out, err := lab.Run(context.Background(), rs, Options{Trace: &buf})
	if err != nil {
		t.Fatalf("run err: %v", err)
	}
	h, trace, err := recorder.ReadTrace(&buf)
	if err != nil {
		t.Fatalf("read trace err: %v", err)
	}
	if h.Name != "bimodal" || h.Seed != 42 || h.Lag != 2 || h.Burn != 100 {
		t.Fatalf("header=%+v", h)
	}
	if len(trace) != len(out.Trace) {
		t.Fatalf("trace len %d want %d", len(trace), len(out.Trace))
	}
	for i := range trace {
		if trace[i].Sample != out.Samples[i] {
			t.Fatalf("trace sample %d mismatch", i)
		}
	}
}

func TestRunErrors(t *testing.T) {
	lab := newLab(t)
	if _, err := lab.Run(context.Background(), nil, Options{}); err == nil {
		t.Fatalf("expected error for nil setting")
	}

	// x_start 在 domain 外
	rs, _ := lab.LoadPreset("trimodal")
	rs.XStart = -1
	if _, err := lab.Run(context.Background(), rs, Options{}); err == nil {
		t.Fatalf("expected precondition error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rs, _ = lab.LoadPreset("normal")
	if _, err := lab.Run(ctx, rs, Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	bad := &setting.RunSetting{NumSamples: 1, Density: setting.DensitySetting{Kind: "nope"}}
	if _, err := Run(context.Background(), bad, Options{}); err == nil {
		t.Fatalf("expected build error")
	}
}

func TestSeedMaker(t *testing.T) {
	a, b := newSeedMaker(7), newSeedMaker(7)
	seen := map[int64]struct{}{}
	for i := 0; i < 1000; i++ {
		x, y := a.next(), b.next()
		if x != y {
			t.Fatalf("seed maker not deterministic at %d", i)
		}
		if x < 0 {
			t.Fatalf("negative seed %d", x)
		}
		if _, ok := seen[x]; ok {
			t.Fatalf("duplicate seed %d", x)
		}
		seen[x] = struct{}{}
	}
}
