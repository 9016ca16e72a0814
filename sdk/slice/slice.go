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

// Package slice 實作單變量 slice sampling（stepping-out + shrinkage）。
//
// 給定未正規化的 log-density、支撐區間 Domain 與起始點，Run 會推進一條 Markov chain，
// 依 burn / lag 規則收集樣本，並為每個收集到的樣本附上一筆 Step 診斷紀錄。
//
// 演算法（單步，目前位置 x）：
//  1. 切片高度：u = log(U(0,1)) + logp(x)，x 必定位於切片內。
//  2. Stepping-out：以隨機切點 r 建立 [x-r*w, x+(1-r)*w]，左右各自以 w 為步長外擴，
//     直到端點的 logp <= u 或越過 Domain（越界時夾回 Domain 並停止，不在 Domain 外求值）。
//  3. Shrinkage：在 [a,b] 均勻提議 x'；logp(x') > u 即接受，否則以 x' 取代同側端點後重抽。
//
// 套件不做 log，也不開 goroutine；整個 Run 是一次同步呼叫。
package slice

import (
	"context"
	"fmt"

	"github.com/zintix-labs/slicelab/errs"
)

const (
	// DefaultMaxStepOut 每一步單側 stepping-out 的最大外擴次數
	DefaultMaxStepOut = 10_000
	// DefaultMaxShrink 每一步 shrinkage 的最大提議次數
	DefaultMaxShrink = 10_000
)

var (
	// ErrInvalidArgument 前置條件不成立（Domain 順序、w、burn、lag 等）
	ErrInvalidArgument = errs.NewWarn("slice: invalid argument")
	// ErrNonFinite 起始點的 log-density 不是有限值，切片高度無法定義
	ErrNonFinite = errs.NewWarn("slice: non-finite log density at start point")
	// ErrStepOutBudget stepping-out 超過 MaxStepOut
	ErrStepOutBudget = errs.NewWarn("slice: stepping-out budget exceeded")
	// ErrShrinkBudget shrinkage 超過 MaxShrink
	ErrShrinkBudget = errs.NewWarn("slice: shrinkage budget exceeded")
)

// Target 是目標分布的 log-density（可未正規化）。
//
// gonum stat/distuv 的分布型別（distuv.Normal 等）都直接滿足此介面；
// 混合分布請先在外部組好（例如以 log-sum-exp 聚合）再交進來。
// 在邏輯支撐以外應回傳 -Inf。
type Target interface {
	LogProb(x float64) float64
}

// TargetFunc 讓一般函數滿足 Target。
type TargetFunc func(x float64) float64

func (f TargetFunc) LogProb(x float64) float64 { return f(x) }

// Source 為取樣借用的亂數來源。core.Core 滿足此介面。
type Source interface {
	// Float64 回傳 [0,1) 的均勻亂數
	Float64() float64
	// Uniform 回傳 [a,b] 的均勻亂數
	Uniform(a, b float64) float64
}

// Domain 為目標分布的閉支撐 [Lo, Hi]，兩端可以是 ±Inf。
type Domain struct {
	Lo float64
	Hi float64
}

// Unbounded 回傳 (-Inf, +Inf)。
func Unbounded() Domain {
	return Domain{Lo: negInf, Hi: posInf}
}

// Contains 回報 x 是否落在 [Lo, Hi]。
func (d Domain) Contains(x float64) bool {
	return x >= d.Lo && x <= d.Hi
}

// Config 為一次 Run 的參數。
type Config struct {
	NumSamples int     // 輸出樣本數，>= 1
	Burn       int     // 收集前至少要走的步數，>= 0
	Lag        int     // 每 Lag 步收集一次，>= 1
	W          float64 // stepping-out 步長，> 0
	MaxStepOut int     // 單側外擴上限，0 代表 DefaultMaxStepOut
	MaxShrink  int     // shrinkage 提議上限，0 代表 DefaultMaxShrink

	// Progress 若非 nil，每收集一個樣本呼叫一次（CLI 進度條使用）
	Progress func()
}

// Step 為單一收集樣本的診斷紀錄。
type Step struct {
	U         float64   `json:"u"          yaml:"u"`          // log 切片高度
	R         float64   `json:"r"          yaml:"r"`          // stepping-out 的隨機切點
	AOut      []float64 `json:"a_out"      yaml:"a_out"`      // 左端點探測序列（含最後的夾值）
	BOut      []float64 `json:"b_out"      yaml:"b_out"`      // 右端點探測序列（含最後的夾值）
	Proposals []float64 `json:"x_proposal" yaml:"x_proposal"` // shrinkage 依序提議的 x'，最後一個即為被接受者
	Sample    float64   `json:"sample"     yaml:"sample"`
}

// Result 為 Run 的輸出；Samples 與 Trace 等長且位置對齊。
type Result struct {
	Samples     []float64 `json:"samples"`
	Trace       []Step    `json:"trace"`
	Iterations  int       `json:"iterations"`  // chain 實際走過的步數（含 burn / lag 略過的步）
	Evaluations int       `json:"evaluations"` // Target.LogProb 呼叫次數
}

// Run 從 xStart 出發執行 slice sampling，回傳 cfg.NumSamples 個樣本與對齊的 trace。
//
// 收集規則：步數 n 由 1 起算，n >= Burn 且 n % Lag == 0 的步會被收集。
// 被略過的步一樣會推進 chain 並消耗 rng。
//
// 前置條件在任何亂數抽取前檢查，失敗時回傳包裝 ErrInvalidArgument / ErrNonFinite 的錯誤。
// 任一步超過 MaxStepOut / MaxShrink 時回傳 ErrStepOutBudget / ErrShrinkBudget，
// 已收集的樣本會一併丟棄。
func Run(xStart float64, target Target, dom Domain, cfg Config, rng Source) (*Result, error) {
	return RunContext(context.Background(), xStart, target, dom, cfg, rng)
}

// ctxCheckEvery 每幾步檢查一次 ctx
const ctxCheckEvery = 256

// RunContext 與 Run 相同，另外定期檢查 ctx；取消或逾時回傳 Warn 等級錯誤，
// errors.Is(err, context.Canceled / context.DeadlineExceeded) 可命中。
func RunContext(ctx context.Context, xStart float64, target Target, dom Domain, cfg Config, rng Source) (*Result, error) {
	ch, err := NewChain(xStart, target, dom, cfg, rng)
	if err != nil {
		return nil, err
	}

	n := ch.cfg.NumSamples
	res := &Result{
		Samples: make([]float64, 0, n),
		Trace:   make([]Step, 0, n),
	}
	for len(res.Samples) < n {
		if ch.Iterations()%ctxCheckEvery == 0 {
			if cerr := ctx.Err(); cerr != nil {
				e := errs.NewWarn("slice: run canceled")
				e.Cause = cerr
				e.Extra = fmt.Sprintf("iter=%d collected=%d", ch.Iterations(), len(res.Samples))
				return nil, e
			}
		}
		st, err := ch.Step()
		if err != nil {
			return nil, err
		}
		if !ch.Keep() {
			continue
		}
		res.Samples = append(res.Samples, st.Sample)
		res.Trace = append(res.Trace, st)
		if cfg.Progress != nil {
			cfg.Progress()
		}
	}
	res.Iterations = ch.Iterations()
	res.Evaluations = ch.Evaluations()
	return res, nil
}
