package middleware

import (
	"net/http"

	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/zintix-labs/slicelab/server/httperr"
)

// RequestID 產生（或沿用 X-Request-Id）request id，並回寫到回應標頭與錯誤回應中。
func RequestID(next http.Handler) http.Handler {
	return chimid.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chimid.GetReqID(r.Context())
		if id != "" {
			w.Header().Set(chimid.RequestIDHeader, id)
			r = r.WithContext(httperr.WithRequestID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	}))
}

func GetReqId(r *http.Request) string {
	return chimid.GetReqID(r.Context())
}
