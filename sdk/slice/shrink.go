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

package slice

import (
	"fmt"

	"github.com/zintix-labs/slicelab/errs"
)

// shrink 在 [a,b] 內以拒絕取樣找出切片內的一點。
//
// 被拒絕的 x' 取代與它同側（相對於目前位置 x）的端點，因此 a <= x <= b 始終成立，
// 區間只會縮小。回傳接受點、其 log-density 以及全部提議（最後一個是接受點）。
func (c *Chain) shrink(u, a, b float64) (float64, float64, []float64, error) {
	props := make([]float64, 0, 4)
	for n := 0; n < c.cfg.MaxShrink; n++ {
		xp := c.rng.Uniform(a, b)
		props = append(props, xp)
		if fx := c.logp(xp); fx > u {
			return xp, fx, props, nil
		}
		if xp > c.x {
			b = xp
		} else {
			a = xp
		}
	}
	return 0, 0, props, errs.WrapWithExtra(ErrShrinkBudget, "slice: no proposal landed inside the slice",
		fmt.Sprintf("max_shrink=%d a=%v b=%v u=%v", c.cfg.MaxShrink, a, b, u))
}
