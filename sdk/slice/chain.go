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

package slice

import (
	"fmt"
	"math"

	"github.com/zintix-labs/slicelab/errs"
)

var (
	negInf = math.Inf(-1)
	posInf = math.Inf(1)
)

// Chain 是一條逐步推進的 slice sampling chain。
//
// Run 以 Chain 為基礎；需要逐步觀察（例如重建未經 burn / lag 過濾的完整 chain）時可直接使用。
// Chain 不是併發安全的，rng 也只能由這條 chain 使用。
type Chain struct {
	target Target
	dom    Domain
	cfg    Config
	rng    Source

	x     float64 // 目前位置
	fx    float64 // target(x)，接受時一併更新，避免每步重算
	iters int
	evals int
}

// NewChain 驗證參數後建立 Chain；會對 xStart 求值一次以確認 log-density 為有限值。
func NewChain(xStart float64, target Target, dom Domain, cfg Config, rng Source) (*Chain, error) {
	if err := validate(xStart, target, dom, &cfg, rng); err != nil {
		return nil, err
	}
	c := &Chain{target: target, dom: dom, cfg: cfg, rng: rng, x: xStart}
	c.fx = c.logp(xStart)
	if math.IsNaN(c.fx) || math.IsInf(c.fx, 0) {
		return nil, errs.WrapWithExtra(ErrNonFinite, "slice: log density at x_start must be finite",
			fmt.Sprintf("x_start=%v logp=%v", xStart, c.fx))
	}
	return c, nil
}

// X 回傳目前位置
func (c *Chain) X() float64 { return c.x }

// Iterations 回傳已完成的步數
func (c *Chain) Iterations() int { return c.iters }

// Evaluations 回傳 Target.LogProb 的呼叫次數（含 NewChain 的一次）
func (c *Chain) Evaluations() int { return c.evals }

// Keep 回報最近完成的一步是否符合收集規則：n >= Burn 且 n % Lag == 0（n 由 1 起算）。
func (c *Chain) Keep() bool {
	return c.iters > 0 && c.iters >= c.cfg.Burn && c.iters%c.cfg.Lag == 0
}

// Step 推進一步並回傳該步的完整紀錄。
// 發生錯誤時 chain 狀態不變（位置與步數皆不前進），但 rng 已被消耗。
func (c *Chain) Step() (Step, error) {
	u := math.Log(c.rng.Float64()) + c.fx

	iv, err := c.stepOut(u)
	if err != nil {
		return Step{}, c.annotate(err)
	}

	x, fx, props, err := c.shrink(u, iv.a, iv.b)
	if err != nil {
		return Step{}, c.annotate(err)
	}

	c.x, c.fx = x, fx
	c.iters++
	return Step{
		U:         u,
		R:         iv.r,
		AOut:      iv.aOut,
		BOut:      iv.bOut,
		Proposals: props,
		Sample:    x,
	}, nil
}

func (c *Chain) logp(x float64) float64 {
	c.evals++
	return c.target.LogProb(x)
}

func (c *Chain) annotate(err error) error {
	return errs.WrapWithExtra(err, "slice: step failed", fmt.Sprintf("iter=%d x=%v", c.iters+1, c.x))
}

func validate(xStart float64, target Target, dom Domain, cfg *Config, rng Source) error {
	bad := func(msg string, extra string) error {
		return errs.WrapWithExtra(ErrInvalidArgument, msg, extra)
	}
	if target == nil {
		return bad("slice: target is required", "")
	}
	if rng == nil {
		return bad("slice: random source is required", "")
	}
	// NaN 會讓比較全部失敗，因此用 !(lo < hi) 同時擋掉
	if !(dom.Lo < dom.Hi) {
		return bad("slice: domain must satisfy lo < hi", fmt.Sprintf("lo=%v hi=%v", dom.Lo, dom.Hi))
	}
	if !dom.Contains(xStart) {
		return bad("slice: x_start must lie within domain", fmt.Sprintf("x_start=%v lo=%v hi=%v", xStart, dom.Lo, dom.Hi))
	}
	if cfg.NumSamples < 1 {
		return bad("slice: num_samples must >= 1", fmt.Sprintf("num_samples=%d", cfg.NumSamples))
	}
	if cfg.Burn < 0 {
		return bad("slice: burn must >= 0", fmt.Sprintf("burn=%d", cfg.Burn))
	}
	if cfg.Lag < 1 {
		return bad("slice: lag must >= 1", fmt.Sprintf("lag=%d", cfg.Lag))
	}
	if !(cfg.W > 0) || math.IsInf(cfg.W, 0) {
		return bad("slice: w must be positive and finite", fmt.Sprintf("w=%v", cfg.W))
	}
	if cfg.MaxStepOut < 0 || cfg.MaxShrink < 0 {
		return bad("slice: iteration budgets must >= 0", fmt.Sprintf("max_step_out=%d max_shrink=%d", cfg.MaxStepOut, cfg.MaxShrink))
	}
	if cfg.MaxStepOut == 0 {
		cfg.MaxStepOut = DefaultMaxStepOut
	}
	if cfg.MaxShrink == 0 {
		cfg.MaxShrink = DefaultMaxShrink
	}
	return nil
}
