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

// Package httperr 是 HTTP 邊界層的錯誤映射；核心 errs 套件不依賴 net/http。
package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/slicelab/errs"
)

// Body 為錯誤回應的 JSON 結構
type Body struct {
	Error     string `json:"error"`
	Level     string `json:"level,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// StatusCode 將錯誤映射成 HTTP status code。
//
//   - ctx timeout/cancel → 504/408
//   - errs.Warn          → 400
//   - errs.Fatal 或外部錯誤 → 500
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	}
	if errs.Level(err) == errs.Warn {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Errs 依 StatusCode 寫回 JSON 錯誤
func Errs(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	Write(w, r, StatusCode(err), err.Error(), errs.ErrLv(errs.Level(err)))
}

// Write 寫回指定狀態碼的 JSON 錯誤
func Write(w http.ResponseWriter, r *http.Request, status int, msg string, level string) {
	b := Body{Error: msg, Level: level}
	if r != nil {
		if id, ok := r.Context().Value(requestIDKey{}).(string); ok {
			b.RequestID = id
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(b)
}

type requestIDKey struct{}

// WithRequestID 讓錯誤回應帶上 request id（由 middleware 注入）
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// Log 只記錄需要關注的錯誤：5xx 為 Error，408/504 為 Warn，其餘 4xx 由 access log 涵蓋。
func Log(log *slog.Logger, r *http.Request, msg string, err error) {
	if err == nil || log == nil {
		return
	}
	status := StatusCode(err)
	ctx := context.Background()
	if r != nil {
		ctx = r.Context()
	}
	switch {
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		log.LogAttrs(ctx, slog.LevelWarn, msg, slog.Int("status", status), slog.Any("err", err))
	case status >= 500:
		log.LogAttrs(ctx, slog.LevelError, msg, slog.Int("status", status), slog.Any("err", err))
	}
}
