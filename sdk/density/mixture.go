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
)

// Mixture 為加權混合分布：logp(x) = logsumexp_i(log w_i + logp_i(x))。
//
// 權重在建立時正規化。LogProb 重用內部緩衝，因此 Mixture 不是併發安全的；
// 每條 chain 各自建立即可。
type Mixture struct {
	weights []float64
	logW    []float64
	comps   []Distribution
	buf     []float64
}

// NewMixture 建立混合分布。權重需非負、有限且總和 > 0，長度需與成分一致。
func NewMixture(weights []float64, comps []Distribution) (*Mixture, error) {
	if len(comps) == 0 {
		return nil, errs.NewWarn("density: mixture needs at least one component")
	}
	if len(weights) != len(comps) {
		return nil, errs.Warnf("density: mixture has %d weights for %d components", len(weights), len(comps))
	}
	total := 0.0
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, errs.Warnf("density: mixture weight %d must be finite and >= 0, got %v", i, w)
		}
		if comps[i] == nil {
			return nil, errs.Warnf("density: mixture component %d is nil", i)
		}
		total += w
	}
	if total <= 0 {
		return nil, errs.NewWarn("density: mixture weights sum to zero")
	}

	m := &Mixture{
		weights: make([]float64, len(weights)),
		logW:    make([]float64, len(weights)),
		comps:   comps,
		buf:     make([]float64, len(weights)),
	}
	for i, w := range weights {
		m.weights[i] = w / total
		m.logW[i] = math.Log(m.weights[i])
	}
	return m, nil
}

// LogProb 以 log-sum-exp 聚合各成分
func (m *Mixture) LogProb(x float64) float64 {
	for i, c := range m.comps {
		m.buf[i] = m.logW[i] + c.LogProb(x)
	}
	return floats.LogSumExp(m.buf)
}

// CDF 為各成分 CDF 的加權和
func (m *Mixture) CDF(x float64) float64 {
	s := 0.0
	for i, c := range m.comps {
		s += m.weights[i] * c.CDF(x)
	}
	return s
}

// Weights 回傳正規化後的權重副本
func (m *Mixture) Weights() []float64 {
	return append([]float64(nil), m.weights...)
}
