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
)

// Truncated 把分布限制在 [Lo, Hi]：區間外 LogProb 回傳 -Inf，區間內重新正規化。
//
// 取樣器宣告的 Domain 比邏輯支撐寬時，就用 -Inf 表達「不在支撐內」。
type Truncated struct {
	d      Distribution
	lo, hi float64
	cLo    float64
	mass   float64
	logZ   float64
}

// Truncate 建立截斷分布；[lo, hi] 內質量為 0 時回傳錯誤。
func Truncate(d Distribution, lo, hi float64) (*Truncated, error) {
	if d == nil {
		return nil, errs.NewWarn("density: truncate needs a distribution")
	}
	if !(lo < hi) {
		return nil, errs.Warnf("density: truncate requires lo < hi, got %v/%v", lo, hi)
	}
	cLo, cHi := d.CDF(lo), d.CDF(hi)
	mass := cHi - cLo
	if !(mass > 0) {
		return nil, errs.Warnf("density: no probability mass in [%v, %v]", lo, hi)
	}
	return &Truncated{d: d, lo: lo, hi: hi, cLo: cLo, mass: mass, logZ: math.Log(mass)}, nil
}

func (t *Truncated) LogProb(x float64) float64 {
	if x < t.lo || x > t.hi {
		return math.Inf(-1)
	}
	return t.d.LogProb(x) - t.logZ
}

func (t *Truncated) CDF(x float64) float64 {
	switch {
	case x <= t.lo:
		return 0
	case x >= t.hi:
		return 1
	}
	return min(max((t.d.CDF(x)-t.cLo)/t.mass, 0), 1)
}
