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

package api

import (
	"log/slog"
	"net/http"

	v1 "github.com/zintix-labs/slicelab/server/api/v1"
	"github.com/zintix-labs/slicelab/server/netsvr"
	"github.com/zintix-labs/slicelab/server/netsvr/middleware"
	"github.com/zintix-labs/slicelab/server/svrcfg"
)

// RegisterRoutes 註冊
func RegisterRoutes(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg) error {
	registerMiddleware(svr, sCfg.Log) // 1. 註冊 middleware
	svr.Get("/healthz", healthz)      // 2. 健康檢查
	return registerV1API(svr, sCfg)   // 3. 註冊 v1 api
}

// 註冊 middleware
func registerMiddleware(svr netsvr.NetRouter, log *slog.Logger) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(log))
	svr.Use(middleware.Recover(log))
	svr.Use(middleware.Compression)
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

// 註冊 v1 api
func registerV1API(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg) error {
	s, err := v1.NewSampleHandler(sCfg)
	if err != nil {
		return err
	}
	svr.Group("/v1", func(vOne netsvr.NetRouter) {
		vOne.Get("/kinds", s.Kinds)
		vOne.Get("/presets", s.Presets)
		vOne.Get("/presets/{name}", s.Preset)
		vOne.Get("/presets/{name}/curve", s.Curve)

		vOne.Get("/sample", s.Sample)
		vOne.Post("/sample", s.Sample)
	})
	return nil
}
