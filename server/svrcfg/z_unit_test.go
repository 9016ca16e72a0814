package svrcfg

import (
	"testing"

	"github.com/zintix-labs/slicelab"
	"github.com/zintix-labs/slicelab/server/logger"
)

func TestValidDefaults(t *testing.T) {
	lab, err := slicelab.NewDefault()
	if err != nil {
		t.Fatalf("lab err: %v", err)
	}
	sc := &SvrCfg{Lab: lab, MaxSamples: 1 << 30}
	if err := sc.Valid(); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if sc.Log == nil || sc.Addr != DefaultAddr || sc.Timeout != DefaultTimeout {
		t.Fatalf("defaults not applied: %+v", sc)
	}
	if sc.MaxSamples != 10*DefaultMaxSamples {
		t.Fatalf("max samples not clamped: %d", sc.MaxSamples)
	}
}

func TestValidErrors(t *testing.T) {
	if err := (&SvrCfg{}).Valid(); err == nil {
		t.Fatalf("expected error without lab")
	}
	lab, _ := slicelab.NewDefault()
	var ah *logger.AsyncHandler
	sc := &SvrCfg{Lab: lab, Log: logger.NewLogger(ah)}
	if err := sc.Valid(); err == nil {
		t.Fatalf("expected error for unready async handler")
	}
}
