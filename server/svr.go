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

package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/zintix-labs/slicelab/errs"
	"github.com/zintix-labs/slicelab/server/api"
	"github.com/zintix-labs/slicelab/server/app"
	"github.com/zintix-labs/slicelab/server/netsvr"
	"github.com/zintix-labs/slicelab/server/svrcfg"
)

// Run 是 server 套件的組裝器與啟動入口。
//
// 它負責：
//  1. 驗證 SvrCfg（補預設值、檢查 logger 與 Slicelab）。
//  2. 以 sCfg.Addr 建立 chi HTTP server。
//  3. 註冊路由與 middleware（api.RegisterRoutes）。
//  4. 啟動 app.Run()，收到 SIGINT/SIGTERM 後優雅關閉。
//
// 所有依賴都透過 SvrCfg 注入；需要自訂 server 時改用 RunWithSvr。
func Run(sCfg *svrcfg.SvrCfg) error {
	if err := sCfg.Valid(); err != nil {
		// 防止外層傳入的 logger 不可用
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return RunWithSvr(sCfg, netsvr.NewChiServer(sCfg.Addr, netsvr.DefaultTimeouts))
}

// RunWithSvr 與 Run 相同，但允許呼叫端注入自訂的 NetSvr。
//
//   - svr 必須非 nil；若是 ChiAdapter 會要求 Ready() 為 true。
//   - 這一層只負責「註冊 routes + 啟動 app.Run()」。
func RunWithSvr(sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) error {
	if err := sCfg.Valid(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	if svr == nil {
		err := errs.NewFatal("server: svr is required")
		sCfg.Log.Error(err.Error())
		return err
	}
	if s, ok := svr.(*netsvr.ChiAdapter); ok && !s.Ready() {
		err := errs.NewFatal("server: default server is not ready")
		sCfg.Log.Error(err.Error())
		return err
	}

	if err := api.RegisterRoutes(svr, sCfg); err != nil {
		sCfg.Log.Error("register routes failed", slog.Any("err", err))
		return err
	}

	a := app.NewWith(svr)
	sCfg.Log.Info("[slicelab] listening", slog.String("addr", svr.Address()))
	if err := a.Run(); err != nil {
		sCfg.Log.Error("app stopped", slog.Any("err", err))
		return err
	}
	return nil
}

// NewHandler 組出完整路由但不啟動監聽；供 httptest 或掛到既有服務使用。
func NewHandler(sCfg *svrcfg.SvrCfg) (http.Handler, error) {
	if err := sCfg.Valid(); err != nil {
		return nil, err
	}
	svr := netsvr.NewChiServer(sCfg.Addr, netsvr.DefaultTimeouts)
	if err := api.RegisterRoutes(svr, sCfg); err != nil {
		return nil, err
	}
	return svr.Handler(), nil
}
