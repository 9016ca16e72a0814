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

// interval 為 stepping-out 的結果
type interval struct {
	a, b float64
	r    float64
	aOut []float64
	bOut []float64
}

// stepOut 以 stepping-out 找出包住切片的區間 [a,b]。
//
// 不變量：
//   - 結束時 a == Lo 或 logp(a) <= u；b 對稱。
//   - 不在 Domain 之外求值：端點一旦越界就夾回 Domain 並停止，探測序列最後一筆記錄的是夾值。
//   - 初始端點已越界時直接夾回，不求值。
func (c *Chain) stepOut(u float64) (interval, error) {
	w := c.cfg.W
	r := c.rng.Float64()
	iv := interval{r: r}

	a := c.x - r*w
	iv.aOut = []float64{a}
	if a < c.dom.Lo {
		a = c.dom.Lo
		iv.aOut[0] = a
	} else {
		for n := 0; c.logp(a) > u; n++ {
			if n >= c.cfg.MaxStepOut {
				return iv, errs.WrapWithExtra(ErrStepOutBudget, "slice: left endpoint did not leave the slice",
					fmt.Sprintf("max_step_out=%d a=%v", c.cfg.MaxStepOut, a))
			}
			a -= w
			iv.aOut = append(iv.aOut, a)
			if a < c.dom.Lo {
				a = c.dom.Lo
				iv.aOut[len(iv.aOut)-1] = a
				break
			}
		}
	}

	b := c.x + (1-r)*w
	iv.bOut = []float64{b}
	if b > c.dom.Hi {
		b = c.dom.Hi
		iv.bOut[0] = b
	} else {
		for n := 0; c.logp(b) > u; n++ {
			if n >= c.cfg.MaxStepOut {
				return iv, errs.WrapWithExtra(ErrStepOutBudget, "slice: right endpoint did not leave the slice",
					fmt.Sprintf("max_step_out=%d b=%v", c.cfg.MaxStepOut, b))
			}
			b += w
			iv.bOut = append(iv.bOut, b)
			if b > c.dom.Hi {
				b = c.dom.Hi
				iv.bOut[len(iv.bOut)-1] = b
				break
			}
		}
	}

	iv.a, iv.b = a, b
	return iv, nil
}
