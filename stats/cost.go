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

package stats

import (
	"github.com/zintix-labs/slicelab/sdk/slice"
)

// Cost 統計每個收集步的演算法成本（stepping-out 外擴次數、shrinkage 提議次數）。
// 只涵蓋被收集的步；burn / lag 略過的步沒有 trace。
type Cost struct {
	Steps         int     `json:"steps" yaml:"steps"`
	MeanStepOut   float64 `json:"mean_step_out" yaml:"mean_step_out"`
	MaxStepOut    int     `json:"max_step_out" yaml:"max_step_out"`
	MeanProposals float64 `json:"mean_proposals" yaml:"mean_proposals"`
	MaxProposals  int     `json:"max_proposals" yaml:"max_proposals"`
}

// TraceCost 由 trace 計算 Cost。外擴次數 = 兩側探測序列長度各減去初始端點。
func TraceCost(trace []slice.Step) *Cost {
	out := &Cost{Steps: len(trace)}
	if out.Steps == 0 {
		return out
	}
	var sumOut, sumProp int
	for _, st := range trace {
		ext := max(len(st.AOut)-1, 0) + max(len(st.BOut)-1, 0)
		sumOut += ext
		out.MaxStepOut = max(out.MaxStepOut, ext)

		p := len(st.Proposals)
		sumProp += p
		out.MaxProposals = max(out.MaxProposals, p)
	}
	out.MeanStepOut = float64(sumOut) / float64(out.Steps)
	out.MeanProposals = float64(sumProp) / float64(out.Steps)
	return out
}
