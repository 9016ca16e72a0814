package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/zintix-labs/slicelab"
	"github.com/zintix-labs/slicelab/errs"
	"github.com/zintix-labs/slicelab/setting"
	"github.com/zintix-labs/slicelab/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var cfg *config = new(config)

type config struct {
	configFile string
	preset     string
	n          int
	burn       int
	lag        int
	w          float64
	seed       int64
	rng        string
	trace      string
	format     string
	quiet      bool
	pprofmode  string
}

func bindVar() {
	flag.StringVar(&cfg.configFile, "config", "", "run setting file (.yaml/.yml/.json); overrides -preset")
	flag.StringVar(&cfg.preset, "preset", "trimodal", "embedded preset name")
	flag.IntVar(&cfg.n, "n", 0, "number of samples (0: keep setting)")
	flag.IntVar(&cfg.burn, "burn", -1, "burn-in steps (-1: keep setting)")
	flag.IntVar(&cfg.lag, "lag", 0, "keep every lag-th step (0: keep setting)")
	flag.Float64Var(&cfg.w, "w", 0, "stepping-out width (0: keep setting)")
	flag.Int64Var(&cfg.seed, "seed", -1, "int64 seed for random number generator (-1: keep setting / random)")
	flag.StringVar(&cfg.rng, "rng", "", "prng: pcg64, pcg32 ('': keep setting)")
	flag.StringVar(&cfg.trace, "trace", "", "write zstd compressed trace to this file")
	flag.StringVar(&cfg.format, "format", "table", "output: table, json, yaml")
	flag.BoolVar(&cfg.quiet, "q", false, "hide progress bar")
	flag.StringVar(&cfg.pprofmode, "p", "", "pprof: '', cpu, heap, allocs")

	flag.Parse()
}

// loadSetting 讀取設定並套用旗標覆寫
func (cfg *config) loadSetting(lab *slicelab.Slicelab) (*setting.RunSetting, error) {
	var (
		rs  *setting.RunSetting
		err error
	)
	if cfg.configFile != "" {
		raw, rerr := os.ReadFile(cfg.configFile)
		if rerr != nil {
			return nil, errs.Wrap(rerr, "cmd/run: read config")
		}
		switch strings.ToLower(filepath.Ext(cfg.configFile)) {
		case ".json":
			rs, err = setting.GetRunSettingByJSON(raw)
		case ".yaml", ".yml":
			rs, err = setting.GetRunSettingByYAML(raw)
		default:
			return nil, errs.Warnf("cmd/run: unsupported config format %q", cfg.configFile)
		}
	} else {
		rs, err = lab.LoadPreset(cfg.preset)
	}
	if err != nil {
		return nil, err
	}

	if cfg.n > 0 {
		rs.NumSamples = cfg.n
	}
	if cfg.burn >= 0 {
		rs.Burn = cfg.burn
	}
	if cfg.lag > 0 {
		lag := cfg.lag
		rs.Lag = &lag
	}
	if cfg.w > 0 {
		w := cfg.w
		rs.W = &w
	}
	if cfg.seed >= 0 {
		seed := cfg.seed
		rs.Seed = &seed
	}
	if cfg.rng != "" {
		rs.RNG = cfg.rng
	}
	return rs, rs.Init()
}

// 解析設定並執行取樣
func executeSampler() error {
	lab, err := slicelab.NewDefault()
	if err != nil {
		return err
	}
	rs, err := cfg.loadSetting(lab)
	if err != nil {
		return err
	}
	render, ok := stats.GetRender(cfg.format)
	if cfg.format != "table" && !ok {
		return errs.Warnf("cmd/run: unknown format %q", cfg.format)
	}

	opt := slicelab.Options{ShowProgress: !cfg.quiet && cfg.format == "table"}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	green := "\033[1;32m"
	reset := "\033[0m"
	p := message.NewPrinter(language.English)
	if cfg.format == "table" {
		p.Printf("%s[SETTING:%s] [SAMPLES:%d] [BURN:%d] [LAG:%d] [W:%g]%s\n",
			green, rs.Name, rs.NumSamples, rs.Burn, rs.StepLag(), rs.StepWidth(), reset)
	}

	var out *slicelab.Outcome
	sample := func(w io.Writer) error {
		opt.Trace = w
		var rerr error
		out, rerr = lab.Run(ctx, rs, opt)
		return rerr
	}
	if cfg.trace != "" {
		err = withTraceFile(cfg.trace, sample)
	} else {
		err = sample(nil)
	}
	if err != nil {
		return err
	}

	if cfg.format == "table" {
		p.Printf("seed: %d  rng: %s  iterations: %d  evaluations: %d\n", out.Seed, out.RNG, out.Iterations, out.Evaluations)
		stats.StdOut(os.Stdout, out.Name, out.Summary, out.Cost, out.Used)
		if out.KS != nil {
			p.Printf("KS vs target: D=%.4f p=%.4f (n=%d)\n", out.KS.D, out.KS.PValue, out.KS.N)
		}
		if cfg.trace != "" {
			p.Printf("trace written: %s (%d steps)\n", cfg.trace, len(out.Trace))
		}
		return nil
	}
	return render.Write(os.Stdout, out)
}

// withTraceFile 建立 trace 檔交給 fn；回傳 Close 的錯誤，fn 或 Close 失敗時刪除檔案
func withTraceFile(path string, fn func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(err, "cmd/run: create trace file")
	}
	err = fn(f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = errs.Wrap(cerr, "cmd/run: close trace file")
	}
	if err != nil {
		_ = os.Remove(path)
	}
	return err
}
