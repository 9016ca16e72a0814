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

// Package slicelab 把設定目錄、亂數工廠與 slice 取樣器組裝成可直接呼叫的入口。
//
// 典型流程：
//
//	lab, _ := slicelab.NewDefault()           // 內嵌的示範設定
//	rs, _ := lab.LoadPreset("trimodal")       // *setting.RunSetting，可自由修改
//	out, _ := lab.Run(ctx, rs, slicelab.Options{})
//	// out.Samples / out.Trace / out.Summary
//
// 取樣本身是單一 chain、同步執行；Slicelab 可被多個 goroutine 同時使用（每次 Run 各自建立 target 與 rng）。
package slicelab

import (
	"context"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/slicelab/catalog"
	"github.com/zintix-labs/slicelab/demo/demo_configs"
	"github.com/zintix-labs/slicelab/errs"
	"github.com/zintix-labs/slicelab/recorder"
	"github.com/zintix-labs/slicelab/sdk/core"
	"github.com/zintix-labs/slicelab/sdk/density"
	"github.com/zintix-labs/slicelab/sdk/slice"
	"github.com/zintix-labs/slicelab/setting"
	"github.com/zintix-labs/slicelab/stats"
)

type Slicelab struct {
	cat   *catalog.Catalog
	seeds *seedMaker
}

// New 以一或多個設定來源建立 Slicelab；所有設定在此時解析完畢（fail-fast）。
func New(cfgs ...fs.FS) (*Slicelab, error) {
	cat, err := catalog.New(cfgs...)
	if err != nil {
		return nil, err
	}
	sm, err := newRandomSeedMaker()
	if err != nil {
		return nil, err
	}
	return &Slicelab{cat: cat, seeds: sm}, nil
}

// NewDefault 使用內嵌的 demo_configs
func NewDefault() (*Slicelab, error) {
	return New(demo_configs.FS)
}

// Presets 列出可用的設定
func (l *Slicelab) Presets() []catalog.Entry {
	return l.cat.All()
}

// LoadPreset 依名稱取得設定副本
func (l *Slicelab) LoadPreset(name string) (*setting.RunSetting, error) {
	return l.cat.SettingByName(name)
}

// Options 為 Run 的執行選項，零值即可使用
type Options struct {
	// ShowProgress 顯示進度條（寫到 ProgressOut，預設 stderr）
	ShowProgress bool
	ProgressOut  io.Writer
	// Trace 非 nil 時把 trace 以 zstd JSON lines 寫入
	Trace io.Writer
	// DropTrace 不在 Outcome 中保留 trace（Trace writer 仍會寫）
	DropTrace bool
}

// Outcome 為一次 Run 的完整輸出
type Outcome struct {
	Name        string          `json:"name"        yaml:"name"`
	Seed        int64           `json:"seed"        yaml:"seed"`
	RNG         string          `json:"rng"         yaml:"rng"`
	Samples     []float64       `json:"samples"     yaml:"samples"`
	Trace       []slice.Step    `json:"trace,omitempty" yaml:"trace,omitempty"`
	Iterations  int             `json:"iterations"  yaml:"iterations"`
	Evaluations int             `json:"evaluations" yaml:"evaluations"`
	Summary     *stats.Summary  `json:"summary"     yaml:"summary"`
	Cost        *stats.Cost     `json:"cost"        yaml:"cost"`
	KS          *stats.KSResult `json:"ks,omitempty" yaml:"ks,omitempty"`
	Used        time.Duration   `json:"-"           yaml:"-"`
	UsedMS      int64           `json:"used_ms"     yaml:"used_ms"`
}

// Run 依設定執行一次取樣。rs.Seed 為 nil 時由 Slicelab 發放 seed，並記錄在 Outcome.Seed。
func (l *Slicelab) Run(ctx context.Context, rs *setting.RunSetting, opt Options) (*Outcome, error) {
	if rs == nil {
		return nil, errs.NewWarn("slicelab: run setting required")
	}
	var seed int64
	if rs.Seed != nil {
		seed = *rs.Seed
	} else {
		seed = l.seeds.next()
	}
	return run(ctx, rs, seed, opt)
}

// Run 以一次性的 seed 來源執行；重複呼叫請改用 Slicelab.Run。
func Run(ctx context.Context, rs *setting.RunSetting, opt Options) (*Outcome, error) {
	if rs == nil {
		return nil, errs.NewWarn("slicelab: run setting required")
	}
	if rs.Seed != nil {
		return run(ctx, rs, *rs.Seed, opt)
	}
	sm, err := newRandomSeedMaker()
	if err != nil {
		return nil, err
	}
	return run(ctx, rs, sm.next(), opt)
}

func run(ctx context.Context, rs *setting.RunSetting, seed int64, opt Options) (*Outcome, error) {
	job, err := rs.Build()
	if err != nil {
		return nil, err
	}
	rng := core.New(job.Factory.New(seed))

	bar := pb.New(job.Config.NumSamples)
	if opt.ShowProgress {
		out := opt.ProgressOut
		if out == nil {
			out = os.Stderr
		}
		bar.SetWriter(out)
	} else {
		bar.SetWriter(io.Discard)
	}
	bar.Start()
	job.Config.Progress = func() { bar.Increment() }

	res, err := slice.RunContext(ctx, job.XStart, job.Target, job.Domain, job.Config, rng)
	used := time.Since(bar.StartTime())
	bar.Finish()
	if err != nil {
		return nil, errs.WrapWithExtra(err, "slicelab: run failed", job.Name)
	}

	if opt.Trace != nil {
		if err := writeTrace(opt.Trace, rs, job, seed, res.Trace); err != nil {
			return nil, err
		}
	}

	rngName := rs.RNG
	if rngName == "" {
		rngName = "pcg64"
	}
	out := &Outcome{
		Name:        job.Name,
		Seed:        seed,
		RNG:         rngName,
		Samples:     res.Samples,
		Trace:       res.Trace,
		Iterations:  res.Iterations,
		Evaluations: res.Evaluations,
		Summary:     stats.Summarize(res.Samples),
		Cost:        stats.TraceCost(res.Trace),
		Used:        used,
		UsedMS:      used.Milliseconds(),
	}
	if opt.DropTrace {
		out.Trace = nil
	}
	// 參考用：樣本對「限制在 Domain 內的目標分布」的 KS 距離
	if tr, err := density.Truncate(job.Target, job.Domain.Lo, job.Domain.Hi); err == nil {
		ks := stats.KSTest(res.Samples, tr.CDF)
		out.KS = &ks
	}
	return out, nil
}

func writeTrace(w io.Writer, rs *setting.RunSetting, job *setting.Job, seed int64, trace []slice.Step) error {
	tr, err := recorder.NewTraceRecorder(w, recorder.TraceHeader{
		Name:       job.Name,
		Seed:       seed,
		XStart:     job.XStart,
		Lo:         setting.Bound(job.Domain.Lo),
		Hi:         setting.Bound(job.Domain.Hi),
		NumSamples: rs.NumSamples,
		Burn:       job.Config.Burn,
		Lag:        job.Config.Lag,
		W:          job.Config.W,
	})
	if err != nil {
		return err
	}
	if err := tr.RecordAll(trace); err != nil {
		tr.Close()
		return err
	}
	return tr.Close()
}
