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

package slicelab

import (
	"crypto/rand"
	"math"
	"math/big"
	"sync/atomic"

	"github.com/zintix-labs/slicelab/errs"
)

const mask63 = uint64(1<<63) - 1

// seedMaker 為未指定 seed 的請求發放 seed；併發安全，同一實例發出的 seed 不重複。
type seedMaker struct {
	state atomic.Uint64 // always in [0, 2^63)
}

func newSeedMaker(seed int64) *seedMaker {
	s := &seedMaker{}
	s.state.Store(uint64(seed) & mask63)
	return s
}

// newRandomSeedMaker 以 crypto/rand 取初始狀態
func newRandomSeedMaker() (*seedMaker, error) {
	seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return nil, errs.Wrap(err, "slicelab: can not draw initial seed")
	}
	return newSeedMaker(seed.Int64()), nil
}

// next 以全週期 LCG (mod 2^63) 推進 state，再用可逆的 mix63 打散；CAS 保證每次呼叫取得唯一 state。
func (s *seedMaker) next() int64 {
	for {
		old := s.state.Load()
		next := (old*6364136223846793005 + 1442695040888963407) & mask63
		if s.state.CompareAndSwap(old, next) {
			return int64(mix63(next))
		}
	}
}

func mix63(x uint64) uint64 {
	x &= mask63
	x ^= x >> 30
	x = (x * 0xBF58476D1CE4E5B9) & mask63
	x ^= x >> 27
	x = (x * 0x94D049BB133111EB) & mask63
	x ^= x >> 31
	return x & mask63
}
