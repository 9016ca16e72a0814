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

// Package stats 對 slice 取樣結果做描述統計、適合度檢定與輸出。
//
// 只處理原始樣本與原始演算法計數；自相關、有效樣本數等收斂診斷不在此處。
package stats

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary 樣本描述統計
type Summary struct {
	N        int     `json:"n" yaml:"n"`
	Mean     float64 `json:"mean" yaml:"mean"`
	Variance float64 `json:"variance" yaml:"variance"` // 不偏變異數，N < 2 時為 0
	Std      float64 `json:"std" yaml:"std"`
	Min      float64 `json:"min" yaml:"min"`
	Max      float64 `json:"max" yaml:"max"`
	P05      float64 `json:"p05" yaml:"p05"`
	P25      float64 `json:"p25" yaml:"p25"`
	P50      float64 `json:"p50" yaml:"p50"`
	P75      float64 `json:"p75" yaml:"p75"`
	P95      float64 `json:"p95" yaml:"p95"`
}

// Summarize 計算樣本的描述統計；空輸入回傳零值 Summary。
func Summarize(samples []float64) *Summary {
	out := &Summary{N: len(samples)}
	if out.N == 0 {
		return out
	}

	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	out.Mean, out.Variance = stat.MeanVariance(sorted, nil)
	if out.N < 2 {
		out.Variance = 0
	}
	out.Std = math.Sqrt(out.Variance)
	out.Min = floats.Min(sorted)
	out.Max = floats.Max(sorted)

	// 經驗分位數（gonum 要求輸入已排序）
	out.P05 = stat.Quantile(0.05, stat.Empirical, sorted, nil)
	out.P25 = stat.Quantile(0.25, stat.Empirical, sorted, nil)
	out.P50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	out.P75 = stat.Quantile(0.75, stat.Empirical, sorted, nil)
	out.P95 = stat.Quantile(0.95, stat.Empirical, sorted, nil)
	return out
}
