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
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// KSResult Kolmogorov–Smirnov 檢定結果
type KSResult struct {
	N      int     `json:"n" yaml:"n"`
	D      float64 `json:"d" yaml:"d"`             // sup |F_n(x) - F(x)|
	PValue float64 `json:"p_value" yaml:"p_value"` // 漸近 Kolmogorov 分布，樣本需近似獨立
}

// KSTest 單樣本 KS 檢定：樣本對參考 CDF。
//
// 注意：MCMC 樣本彼此相關，p-value 會偏小；比對前可用 lag 稀釋。
func KSTest(samples []float64, cdf func(float64) float64) KSResult {
	n := len(samples)
	if n == 0 {
		return KSResult{PValue: 1}
	}
	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	fn := float64(n)
	d := 0.0
	for i, x := range sorted {
		f := cdf(x)
		// 經驗 CDF 在 x 處由 i/n 跳到 (i+1)/n，兩側都要比
		d = max(d, math.Abs(float64(i+1)/fn-f), math.Abs(f-float64(i)/fn))
	}
	return KSResult{N: n, D: d, PValue: kolmogorovQ(ksLambda(d, fn))}
}

// KSTwoSample 兩樣本 KS 檢定，統計量由 gonum stat.KolmogorovSmirnov 計算。
func KSTwoSample(x, y []float64) KSResult {
	if len(x) == 0 || len(y) == 0 {
		return KSResult{PValue: 1}
	}
	xs := slices.Clone(x)
	ys := slices.Clone(y)
	slices.Sort(xs)
	slices.Sort(ys)

	d := stat.KolmogorovSmirnov(xs, nil, ys, nil)
	ne := float64(len(xs)*len(ys)) / float64(len(xs)+len(ys))
	return KSResult{N: len(xs) + len(ys), D: d, PValue: kolmogorovQ(ksLambda(d, ne))}
}

// ksLambda 使用 Stephens 修正後的漸近統計量
func ksLambda(d, n float64) float64 {
	sn := math.Sqrt(n)
	return (sn + 0.12 + 0.11/sn) * d
}

// kolmogorovQ 回傳 P(K > lambda) = 2 Σ (-1)^(k-1) exp(-2 k² λ²)
func kolmogorovQ(lambda float64) float64 {
	if lambda < 1e-3 {
		return 1
	}
	const eps1, eps2 = 1e-6, 1e-16
	a2 := -2 * lambda * lambda
	sum, sign, prev := 0.0, 2.0, 0.0
	for k := 1; k <= 100; k++ {
		term := sign * math.Exp(a2*float64(k*k))
		sum += term
		if math.Abs(term) <= eps1*prev || math.Abs(term) <= eps2*sum {
			return min(max(sum, 0), 1)
		}
		sign = -sign
		prev = math.Abs(term)
	}
	// 級數未收斂代表 lambda 極小
	return 1
}
