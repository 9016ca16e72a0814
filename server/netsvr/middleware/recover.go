package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/zintix-labs/slicelab/server/httperr"
)

// Recover 攔截 handler panic：記錄 stack 並回 500 JSON。http.ErrAbortHandler 照原樣往上拋。
func Recover(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				if log != nil {
					log.LogAttrs(r.Context(), slog.LevelError, "http.panic",
						slog.String("req_id", GetReqId(r)),
						slog.String("path", r.URL.Path),
						slog.Any("panic", rec),
						slog.String("stack", string(debug.Stack())),
					)
				}
				httperr.Write(w, r, http.StatusInternalServerError, fmt.Sprintf("internal error: %v", rec), "fatal")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
