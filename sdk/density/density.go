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

// Package density 提供可交給 slice 取樣器的 log-density 插件。
//
// 單一成分直接使用 gonum stat/distuv 的分布；多個成分以 Mixture 透過 log-sum-exp 聚合成單一
// log-density 後再交給取樣器，取樣器本身不需要知道密度是怎麼組出來的。
package density

import (
	"math"
	"sort"
	"strings"

	"github.com/zintix-labs/slicelab/errs"
	"gonum.org/v1/gonum/stat/distuv"
)

// Density 為 log-density；與 slice.Target 同形。
type Density interface {
	LogProb(x float64) float64
}

// Distribution 額外提供 CDF，供 KS 檢定或截斷使用。distuv 的分布皆滿足。
type Distribution interface {
	Density
	CDF(x float64) float64
}

// componentBuilder 依參數建立成分；缺參數或參數非法時回傳錯誤
type componentBuilder func(p params) (Distribution, error)

var builders = map[string]componentBuilder{
	"normal": func(p params) (Distribution, error) {
		mu, sigma := p.get("mu", 0), p.get("sigma", 1)
		if !(sigma > 0) {
			return nil, errs.Warnf("density: normal sigma must > 0, got %v", sigma)
		}
		return distuv.Normal{Mu: mu, Sigma: sigma}, nil
	},
	"lognormal": func(p params) (Distribution, error) {
		mu, sigma := p.get("mu", 0), p.get("sigma", 1)
		if !(sigma > 0) {
			return nil, errs.Warnf("density: lognormal sigma must > 0, got %v", sigma)
		}
		return distuv.LogNormal{Mu: mu, Sigma: sigma}, nil
	},
	"gamma": func(p params) (Distribution, error) {
		alpha, beta := p.get("alpha", 1), p.get("beta", 1)
		if !(alpha > 0) || !(beta > 0) {
			return nil, errs.Warnf("density: gamma alpha/beta must > 0, got %v/%v", alpha, beta)
		}
		return distuv.Gamma{Alpha: alpha, Beta: beta}, nil
	},
	"beta": func(p params) (Distribution, error) {
		alpha, beta := p.get("alpha", 1), p.get("beta", 1)
		if !(alpha > 0) || !(beta > 0) {
			return nil, errs.Warnf("density: beta alpha/beta must > 0, got %v/%v", alpha, beta)
		}
		return distuv.Beta{Alpha: alpha, Beta: beta}, nil
	},
	"exponential": func(p params) (Distribution, error) {
		rate := p.get("rate", 1)
		if !(rate > 0) {
			return nil, errs.Warnf("density: exponential rate must > 0, got %v", rate)
		}
		return distuv.Exponential{Rate: rate}, nil
	},
	"studentst": func(p params) (Distribution, error) {
		mu, sigma, nu := p.get("mu", 0), p.get("sigma", 1), p.get("nu", 1)
		if !(sigma > 0) || !(nu > 0) {
			return nil, errs.Warnf("density: studentst sigma/nu must > 0, got %v/%v", sigma, nu)
		}
		return distuv.StudentsT{Mu: mu, Sigma: sigma, Nu: nu}, nil
	},
	"laplace": func(p params) (Distribution, error) {
		mu, scale := p.get("mu", 0), p.get("scale", 1)
		if !(scale > 0) {
			return nil, errs.Warnf("density: laplace scale must > 0, got %v", scale)
		}
		return distuv.Laplace{Mu: mu, Scale: scale}, nil
	},
	"uniform": func(p params) (Distribution, error) {
		lo, hi := p.get("min", 0), p.get("max", 1)
		if !(lo < hi) {
			return nil, errs.Warnf("density: uniform requires min < max, got %v/%v", lo, hi)
		}
		return distuv.Uniform{Min: lo, Max: hi}, nil
	},
}

type params map[string]float64

func (p params) get(k string, def float64) float64 {
	if v, ok := p[k]; ok {
		return v
	}
	return def
}

// NewComponent 依名稱與參數建立單一成分。
//
// 支援：normal(mu,sigma) lognormal(mu,sigma) gamma(alpha,beta=rate) beta(alpha,beta)
// exponential(rate) studentst(mu,sigma,nu) laplace(mu,scale) uniform(min,max)。
// 未提供的參數使用標準形式的預設值。
func NewComponent(kind string, p map[string]float64) (Distribution, error) {
	b, ok := builders[strings.ToLower(kind)]
	if !ok {
		return nil, errs.Warnf("density: unknown component kind %q", kind)
	}
	for k, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errs.Warnf("density: %s param %s must be finite, got %v", kind, k, v)
		}
	}
	return b(p)
}

// Kinds 回傳支援的成分名稱（排序後）
func Kinds() []string {
	out := make([]string, 0, len(builders))
	for k := range builders {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
