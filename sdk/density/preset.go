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
	"sort"

	"github.com/zintix-labs/slicelab/errs"
	"gonum.org/v1/gonum/stat/distuv"
)

// Preset 是內建的示範目標分布及其支撐
type Preset struct {
	Name   string
	Lo, Hi float64
	build  func() *Mixture
}

// Density 每次呼叫都建立新的 Mixture（各自持有緩衝）
func (p Preset) Density() *Mixture {
	return p.build()
}

var presets = map[string]Preset{
	// 0.5 N(1, 1) + 0.5 N(5, 0.75)，支撐 [0, +Inf)
	"bimodal": {Name: "bimodal", Lo: 0, Hi: math.Inf(1), build: func() *Mixture {
		return mustMixture([]float64{0.5, 0.5},
			distuv.Normal{Mu: 1, Sigma: 1},
			distuv.Normal{Mu: 5, Sigma: 0.75})
	}},
	// 0.2 N(1, 0.5) + 0.5 N(4, 0.75) + 0.3 N(7, 0.9)，支撐 [0, +Inf)
	"trimodal": {Name: "trimodal", Lo: 0, Hi: math.Inf(1), build: func() *Mixture {
		return mustMixture([]float64{0.2, 0.5, 0.3},
			distuv.Normal{Mu: 1, Sigma: 0.5},
			distuv.Normal{Mu: 4, Sigma: 0.75},
			distuv.Normal{Mu: 7, Sigma: 0.9})
	}},
}

// Bimodal 回傳雙峰示範分布
func Bimodal() Preset { return presets["bimodal"] }

// Trimodal 回傳三峰示範分布
func Trimodal() Preset { return presets["trimodal"] }

// GetPreset 依名稱取得示範分布
func GetPreset(name string) (Preset, error) {
	p, ok := presets[name]
	if !ok {
		return Preset{}, errs.Warnf("density: unknown preset %q", name)
	}
	return p, nil
}

// PresetNames 回傳所有示範分布名稱（排序後）
func PresetNames() []string {
	out := make([]string, 0, len(presets))
	for k := range presets {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// 內建參數保證合法
func mustMixture(w []float64, comps ...Distribution) *Mixture {
	m, err := NewMixture(w, comps)
	if err != nil {
		panic(err)
	}
	return m
}
