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

package svrcfg

import (
	"log/slog"
	"time"

	"github.com/zintix-labs/slicelab"
	"github.com/zintix-labs/slicelab/errs"
	"github.com/zintix-labs/slicelab/server/logger"
)

const (
	DefaultAddr       = ":5808"
	DefaultMaxSamples = 100_000
	DefaultTimeout    = 30 * time.Second
)

type SvrCfg struct {
	Log        *slog.Logger
	Addr       string
	MaxSamples int           // 單一請求 num_samples 上限
	Timeout    time.Duration // 單一取樣請求的時間上限
	Lab        *slicelab.Slicelab
}

// Valid 補預設值並檢查必要依賴
func (sc *SvrCfg) Valid() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("svrcfg: async log handler is not ready")
		}
	} else {
		sc.Log = logger.NewDefaultLogger(logger.ModeSilence)
	}
	if sc.Addr == "" {
		sc.Addr = DefaultAddr
	}
	if sc.MaxSamples <= 0 {
		sc.MaxSamples = DefaultMaxSamples
	}
	sc.MaxSamples = min(sc.MaxSamples, 10*DefaultMaxSamples)
	if sc.Timeout <= 0 {
		sc.Timeout = DefaultTimeout
	}
	if sc.Lab == nil {
		return errs.NewFatal("svrcfg: slicelab is required")
	}
	return nil
}
