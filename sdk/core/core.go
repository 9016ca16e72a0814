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

package core

import (
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

// PRNG 定義取樣所需的亂數來源，需同時支援取樣與狀態保存/還原。
type PRNG interface {
	RAND
	Restorable
}

// Restorable 定義可快照與還原的狀態介面。
type Restorable interface {
	// Snapshot 回傳可用於還原的序列化狀態。
	Snapshot() ([]byte, error)
	// Restore 依序列化狀態還原 PRNG 內部狀態。
	Restore([]byte) error
}

// RAND 定義核心亂數取樣能力。
//
// Uint64 讓 Core 可以直接當作 math/rand/v2 的 Source 交給 gonum distuv 使用；
// Float64 的精度（32-bit 或 53-bit）由 PRNG 自己決定。
type RAND interface {
	// Uint64 回傳非負 uint64 亂數。
	Uint64() uint64
	// Float64 回傳 [0,1) 的浮點亂數。
	Float64() float64
}

type PRNGFactory interface {
	// New 以指定 seed 建立新的 PRNG。
	//
	// 合約：同一個實作與版本下，New(seed) 必須是決定性的，
	// 相同 seed 產生相同的初始狀態與輸出序列。slice 取樣的可重現性完全建立在這一點上。
	New(int64) PRNG
}

// DefaultPRNG 以 PCG64 實作 PRNGFactory
type DefaultPRNG struct{}

// New 滿足合約
func (d *DefaultPRNG) New(seed int64) PRNG {
	return newPCG64WithSeed(seed)
}

func Default() *DefaultPRNG {
	return &DefaultPRNG{}
}

// PCG32Factory 以 PCG32 (32-bit 精度 Float64) 實作 PRNGFactory
type PCG32Factory struct{}

func (p *PCG32Factory) New(seed int64) PRNG {
	return newPCG32WithSeed(seed)
}

// Factory 依名稱取得 PRNGFactory，空字串代表預設的 pcg64。
func Factory(name string) (PRNGFactory, bool) {
	switch strings.ToLower(name) {
	case "", "pcg64":
		return Default(), true
	case "pcg32":
		return &PCG32Factory{}, true
	default:
		return nil, false
	}
}

// Core 封裝 PRNG，並提供 slice 取樣需要的均勻分布取樣。
type Core struct {
	PRNG
}

// New 允許使用外部自實現的 PRNG 建立 Core。
func New(rng PRNG) *Core {
	return &Core{rng}
}

// Uniform 回傳 [a,b] 之間的均勻亂數，計算方式為 a + (b-a)*Float64()。
//
// 浮點捨入可能讓結果落在 b 之外一個 ulp，這裡直接夾回 b，保證不會離開區間。
func (c *Core) Uniform(a, b float64) float64 {
	v := a + (b-a)*c.Float64()
	if v > b {
		return b
	}
	return v
}

// Norm 回傳標準常態亂數（gonum distuv，以 Core 為 Src）
func (c *Core) Norm() float64 {
	return distuv.Normal{Mu: 0, Sigma: 1, Src: c}.Rand()
}
