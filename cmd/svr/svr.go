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

package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/zintix-labs/slicelab"
	"github.com/zintix-labs/slicelab/server"
	"github.com/zintix-labs/slicelab/server/logger"
	"github.com/zintix-labs/slicelab/server/svrcfg"
)

// lab server：以內嵌的 demo_configs 提供取樣 API
func main() {
	os.Exit(run())
}

type config struct {
	Addr       string
	LogMode    string
	LogBuf     int
	MaxSamples int
	Timeout    time.Duration
}

func run() int {
	cfg := new(config)
	flag.StringVar(&cfg.Addr, "addr", svrcfg.DefaultAddr, "listen address")
	flag.StringVar(&cfg.LogMode, "log-mode", "dev", "log mode: dev|prod|silence")
	flag.IntVar(&cfg.LogBuf, "log-buf", 4096, "async log buffer size")
	flag.IntVar(&cfg.MaxSamples, "max-samples", svrcfg.DefaultMaxSamples, "max num_samples per request")
	flag.DurationVar(&cfg.Timeout, "timeout", svrcfg.DefaultTimeout, "max duration of one sampling request")
	flag.Parse()

	mode, ok := logger.ParseMode(cfg.LogMode)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown log mode %q, fallback to dev\n", cfg.LogMode)
	}
	log, ah := logger.NewAsync(cfg.LogBuf, mode)
	defer ah.Close()

	lab, err := slicelab.NewDefault()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	sCfg := &svrcfg.SvrCfg{
		Log:        log,
		Addr:       cfg.Addr,
		MaxSamples: cfg.MaxSamples,
		Timeout:    cfg.Timeout,
		Lab:        lab,
	}
	if err := server.Run(sCfg); err != nil {
		return 1
	}
	return 0
}
