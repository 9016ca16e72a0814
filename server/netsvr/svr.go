package netsvr

import (
	"net/http"

	"github.com/zintix-labs/slicelab/server/app"
)

// NetSvr = 路由 + 啟停。只交給最外層組裝使用；handler 與子模組只拿 NetRouter。
// NetSvr 本身就是 app.Component，可直接交給 app.App 管理生命週期。
type NetSvr interface {
	NetRouter
	app.Component
	// Handler 回傳根 handler（httptest 或掛到既有服務時使用）
	Handler() http.Handler
	Address() string
}

// NetRouter 只有路由行為，看不到 Run/Shutdown。
type NetRouter interface {
	Use(middleware func(http.Handler) http.Handler)

	Get(path string, h http.HandlerFunc)
	Post(path string, h http.HandlerFunc)

	Group(path string, fn func(NetRouter))
}
