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

package density

import (
	"math"

	"github.com/zintix-labs/slicelab/errs"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

// MaxCurvePoints 為 Curve 的格點上限
const MaxCurvePoints = 10_000

// CurvePoints 是 [Lo, Hi] 上等距格點的密度值；Y 已數值正規化為面積 1。
type CurvePoints struct {
	X    []float64 `json:"x" yaml:"x"`
	Y    []float64 `json:"y" yaml:"y"`
	Norm float64   `json:"norm" yaml:"norm"`
}

// Curve 在 [lo, hi] 取 n 個等距點評估 exp(logp)，並以梯形法正規化。
//
// 只接受有限區間；無界支撐需由呼叫端自行選擇繪圖範圍。Norm 是正規化前的積分值，
// 對未正規化的目標即其正規化常數的估計。
func Curve(d Density, lo, hi float64, n int) (*CurvePoints, error) {
	if d == nil {
		return nil, errs.NewWarn("density: curve needs a density")
	}
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) || math.IsNaN(lo) || math.IsNaN(hi) || !(lo < hi) {
		return nil, errs.Warnf("density: curve requires finite lo < hi, got %v/%v", lo, hi)
	}
	if n < 2 || n > MaxCurvePoints {
		return nil, errs.Warnf("density: curve points must be in [2, %d], got %d", MaxCurvePoints, n)
	}

	xs := make([]float64, n)
	floats.Span(xs, lo, hi)
	ys := make([]float64, n)
	for i, x := range xs {
		lp := d.LogProb(x)
		if math.IsNaN(lp) {
			return nil, errs.Warnf("density: log-density is NaN at x=%v", x)
		}
		ys[i] = math.Exp(lp)
	}

	z := integrate.Trapezoidal(xs, ys)
	if !(z > 0) || math.IsInf(z, 0) {
		return nil, errs.Warnf("density: cannot normalize curve on [%v, %v] (area=%v)", lo, hi, z)
	}
	floats.Scale(1/z, ys)
	return &CurvePoints{X: xs, Y: ys, Norm: z}, nil
}
