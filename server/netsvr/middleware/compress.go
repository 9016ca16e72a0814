package middleware

import (
	"bufio"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// CompressConfig 壓縮參數；小於 MinSize 的回應仍會壓縮（無法預知長度），MinSize 只作用於有 Content-Length 的回應。
type CompressConfig struct {
	GzipLevel int
	ZstdLevel zstd.EncoderLevel
	MinSize   int
}

var DefaultCompressConfig = CompressConfig{
	GzipLevel: gzip.DefaultCompression,
	ZstdLevel: zstd.SpeedFastest,
	MinSize:   512,
}

// compressor 依設定持有各自的 writer pool
type compressor struct {
	cfg      CompressConfig
	gzipPool sync.Pool
	zstdPool sync.Pool
}

func (c *compressor) getZstd(w io.Writer) (*zstd.Encoder, error) {
	if v := c.zstdPool.Get(); v != nil {
		zw := v.(*zstd.Encoder)
		zw.Reset(w)
		return zw, nil
	}
	return zstd.NewWriter(w,
		zstd.WithEncoderLevel(c.cfg.ZstdLevel),
		zstd.WithEncoderConcurrency(1),
	)
}

func (c *compressor) getGzip(w io.Writer) (*gzip.Writer, error) {
	if v := c.gzipPool.Get(); v != nil {
		gw := v.(*gzip.Writer)
		gw.Reset(w)
		return gw, nil
	}
	return gzip.NewWriterLevel(w, c.cfg.GzipLevel)
}

// --- Accept-Encoding ---

// accepts 回報 header 是否接受 enc（q=0 視為拒絕）
func accepts(header, enc string) bool {
	for _, part := range strings.Split(header, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if !strings.EqualFold(strings.TrimSpace(name), enc) {
			continue
		}
		q := 1.0
		for _, p := range strings.Split(params, ";") {
			k, v, ok := strings.Cut(strings.TrimSpace(p), "=")
			if ok && strings.EqualFold(k, "q") {
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					q = f
				}
			}
		}
		return q > 0
	}
	return false
}

func isWebSocketUpgrade(r *http.Request) bool {
	return strings.Contains(strings.ToLower(r.Header.Get("Connection")), "upgrade") ||
		r.Header.Get("Upgrade") != ""
}

// 1xx / 204 / 304 沒有 body
func isNoBodyStatus(code int) bool {
	return (code >= 100 && code < 200) || code == http.StatusNoContent || code == http.StatusNotModified
}

// --- ResponseWriter Wrapper ---

type compressResponseWriter struct {
	http.ResponseWriter
	w        io.Writer // gzip.Writer 或 zstd.Encoder
	minSize  int
	disabled bool // 不壓縮：直接寫底層
	started  bool
}

func (cw *compressResponseWriter) decide(code int) {
	if cw.started {
		return
	}
	cw.started = true
	h := cw.Header()
	if isNoBodyStatus(code) || h.Get("Content-Encoding") != "" {
		cw.disabled = true
		return
	}
	if cl := h.Get("Content-Length"); cl != "" {
		if n, err := strconv.Atoi(cl); err == nil && n < cw.minSize {
			cw.disabled = true
			return
		}
	}
	h.Del("Content-Length")
	h.Set("Content-Encoding", cw.encoding())
	h.Add("Vary", "Accept-Encoding")
}

func (cw *compressResponseWriter) encoding() string {
	if _, ok := cw.w.(*zstd.Encoder); ok {
		return "zstd"
	}
	return "gzip"
}

func (cw *compressResponseWriter) WriteHeader(code int) {
	cw.decide(code)
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *compressResponseWriter) Write(b []byte) (int, error) {
	if !cw.started {
		if cw.Header().Get("Content-Type") == "" {
			cw.Header().Set("Content-Type", http.DetectContentType(b))
		}
		cw.WriteHeader(http.StatusOK)
	}
	if cw.disabled {
		return cw.ResponseWriter.Write(b)
	}
	return cw.w.Write(b)
}

func (cw *compressResponseWriter) Flush() {
	if cw.started && !cw.disabled {
		if f, ok := cw.w.(interface{ Flush() error }); ok {
			_ = f.Flush()
		}
	}
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (cw *compressResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := cw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("underlying response writer does not support Hijacker")
	}
	return hj.Hijack()
}

// --- Middleware 入口 ---

// Compression 以預設設定壓縮回應（zstd 優先，其次 gzip）
func Compression(next http.Handler) http.Handler {
	return NewCompression(DefaultCompressConfig)(next)
}

// NewCompression 依 cfg 建立壓縮 middleware。
//
// 壓縮與否在第一次寫 header 時才決定：204/304、已帶 Content-Encoding、或 Content-Length < MinSize 時不壓縮，
// 因此不會替空 body 寫出壓縮 footer。
func NewCompression(cfg CompressConfig) func(http.Handler) http.Handler {
	c := &compressor{cfg: cfg}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead || isWebSocketUpgrade(r) {
				next.ServeHTTP(w, r)
				return
			}
			ae := r.Header.Get("Accept-Encoding")

			switch {
			case accepts(ae, "zstd"):
				zw, err := c.getZstd(w)
				if err != nil {
					next.ServeHTTP(w, r)
					return
				}
				cw := &compressResponseWriter{ResponseWriter: w, w: zw, minSize: cfg.MinSize}
				defer func() {
					if cw.disabled || !cw.started {
						zw.Reset(io.Discard)
					}
					_ = zw.Close()
					c.zstdPool.Put(zw)
				}()
				next.ServeHTTP(cw, r)

			case accepts(ae, "gzip"):
				gw, err := c.getGzip(w)
				if err != nil {
					next.ServeHTTP(w, r)
					return
				}
				cw := &compressResponseWriter{ResponseWriter: w, w: gw, minSize: cfg.MinSize}
				defer func() {
					if cw.disabled || !cw.started {
						gw.Reset(io.Discard)
					}
					_ = gw.Close()
					c.gzipPool.Put(gw)
				}()
				next.ServeHTTP(cw, r)

			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
