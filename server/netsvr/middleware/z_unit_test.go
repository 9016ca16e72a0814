package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var payload = strings.Repeat(`{"samples":[1.25,2.5,3.75]}`, 100)

func bodyHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, payload)
}

func TestAccepts(t *testing.T) {
	cases := []struct {
		h, enc string
		want   bool
	}{
		{"gzip, deflate, br, zstd", "zstd", true},
		{"gzip;q=0.5", "gzip", true},
		{"zstd;q=0, gzip", "zstd", false},
		{"identity", "gzip", false},
		{"", "gzip", false},
	}
	for _, tc := range cases {
		if got := accepts(tc.h, tc.enc); got != tc.want {
			t.Fatalf("accepts(%q,%q)=%v", tc.h, tc.enc, got)
		}
	}
}

func TestCompressionZstd(t *testing.T) {
	h := Compression(http.HandlerFunc(bodyHandler))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept-Encoding", "gzip, zstd")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Header().Get("Content-Encoding") != "zstd" {
		t.Fatalf("encoding=%q", w.Header().Get("Content-Encoding"))
	}
	zr, err := zstd.NewReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("zstd reader err: %v", err)
	}
	defer zr.Close()
	got, err := io.ReadAll(zr)
	if err != nil || string(got) != payload {
		t.Fatalf("decoded mismatch err=%v", err)
	}
}

func TestCompressionGzip(t *testing.T) {
	h := Compression(http.HandlerFunc(bodyHandler))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("encoding=%q", w.Header().Get("Content-Encoding"))
	}
	gr, err := gzip.NewReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("gzip reader err: %v", err)
	}
	got, err := io.ReadAll(gr)
	if err != nil || string(got) != payload {
		t.Fatalf("decoded mismatch err=%v", err)
	}
}

func TestCompressionSkipsNoBody(t *testing.T) {
	h := Compression(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept-Encoding", "zstd")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 || w.Header().Get("Content-Encoding") != "" {
		t.Fatalf("204 should pass through untouched: code=%d len=%d", w.Code, w.Body.Len())
	}
}

func TestCompressionSkipsSmallKnownLength(t *testing.T) {
	h := Compression(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "2")
		_, _ = io.WriteString(w, "ok")
	}))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Header().Get("Content-Encoding") != "" || w.Body.String() != "ok" {
		t.Fatalf("small body should not be compressed")
	}
}

func TestRequestIDAndAccessLog(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	h := RequestID(AccessLog(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetReqId(r) == "" {
			t.Errorf("request id missing in handler")
		}
		w.WriteHeader(http.StatusTeapot)
	})))
	r := httptest.NewRequest(http.MethodGet, "/v1/presets", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Header().Get("X-Request-Id") == "" {
		t.Fatalf("request id header missing")
	}
	out := buf.String()
	if !strings.Contains(out, `"msg":"http.access"`) || !strings.Contains(out, `"status":418`) || !strings.Contains(out, `"level":"WARN"`) {
		t.Fatalf("access log=%s", out)
	}
}

func TestRecover(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	h := Recover(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusInternalServerError || !strings.Contains(w.Body.String(), "kaboom") {
		t.Fatalf("code=%d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(buf.String(), "http.panic") {
		t.Fatalf("panic not logged")
	}
}
