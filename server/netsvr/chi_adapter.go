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

package netsvr

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

const defaultAddr string = ":5808"

// Timeouts 為 http.Server 的逾時設定
type Timeouts struct {
	Read  time.Duration
	Write time.Duration
	Idle  time.Duration
}

// DefaultTimeouts Write 需涵蓋最長的取樣請求
var DefaultTimeouts = Timeouts{
	Read:  10 * time.Second,
	Write: 60 * time.Second,
	Idle:  120 * time.Second,
}

// ChiAdapter 以 chi (net/http) 實作 NetSvr
type ChiAdapter struct {
	router chi.Router
	server *http.Server
	addr   string
}

// NewChiServer 建立監聽 addr 的 ChiAdapter；addr 為空時使用 :5808。
func NewChiServer(addr string, to Timeouts) *ChiAdapter {
	if addr == "" {
		addr = defaultAddr
	}
	cr := chi.NewRouter()
	return &ChiAdapter{
		router: cr,
		server: &http.Server{
			Addr:              addr,
			Handler:           cr,
			ReadTimeout:       to.Read,
			ReadHeaderTimeout: to.Read,
			WriteTimeout:      to.Write,
			IdleTimeout:       to.Idle,
		},
		addr: addr,
	}
}

// NewChiServerDefault 監聽 :5808，使用 DefaultTimeouts
func NewChiServerDefault() *ChiAdapter {
	return NewChiServer(defaultAddr, DefaultTimeouts)
}

func (c *ChiAdapter) Ready() bool {
	return (c != nil) && (c.router != nil) && (c.server != nil) &&
		(c.addr != "") && strings.Contains(c.addr, ":") &&
		(c.server.Handler != nil) && (c.server.Handler == c.router)
}

// Run 阻塞直到 server 停止；Shutdown 造成的正常關閉回傳 nil
func (c *ChiAdapter) Run() error {
	if err := c.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (c *ChiAdapter) Shutdown(ctx context.Context) error {
	return c.server.Shutdown(ctx)
}

func (c *ChiAdapter) Use(mw func(http.Handler) http.Handler) {
	c.router.Use(mw)
}

func (c *ChiAdapter) Get(path string, h http.HandlerFunc) {
	c.router.Get(path, h)
}

func (c *ChiAdapter) Post(path string, h http.HandlerFunc) {
	c.router.Post(path, h)
}

func (c *ChiAdapter) Group(path string, fn func(subRouter NetRouter)) {
	c.router.Route(path, func(r chi.Router) {
		fn(&chiRouter{r: r})
	})
}

func (c *ChiAdapter) Handler() http.Handler {
	return c.router
}

func (c *ChiAdapter) Address() string {
	return c.addr
}

// chiRouter 是子路由：只有 NetRouter 行為
type chiRouter struct {
	r chi.Router
}

func (s *chiRouter) Use(mw func(http.Handler) http.Handler) { s.r.Use(mw) }
func (s *chiRouter) Get(path string, h http.HandlerFunc)    { s.r.Get(path, h) }
func (s *chiRouter) Post(path string, h http.HandlerFunc)   { s.r.Post(path, h) }
func (s *chiRouter) Group(path string, fn func(NetRouter)) {
	s.r.Route(path, func(r chi.Router) { fn(&chiRouter{r: r}) })
}
