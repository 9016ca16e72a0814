package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/zintix-labs/slicelab"
	"github.com/zintix-labs/slicelab/errs"
	"github.com/zintix-labs/slicelab/sdk/density"
	"github.com/zintix-labs/slicelab/sdk/slice"
	"github.com/zintix-labs/slicelab/server/httperr"
	"github.com/zintix-labs/slicelab/server/svrcfg"
	"github.com/zintix-labs/slicelab/setting"
)

const maxBodyBytes = 1 << 20 // 1MB

// SampleRequest 二選一：preset（可覆寫 num_samples / seed）或完整的 setting
type SampleRequest struct {
	Preset     string              `json:"preset,omitempty"`
	Setting    *setting.RunSetting `json:"setting,omitempty"`
	NumSamples int                 `json:"num_samples,omitempty"`
	Seed       *int64              `json:"seed,omitempty"`
	Trace      bool                `json:"trace,omitempty"`
}

type SampleHandler struct {
	lab        *slicelab.Slicelab
	log        *slog.Logger
	maxSamples int
	timeout    time.Duration
}

func NewSampleHandler(sCfg *svrcfg.SvrCfg) (*SampleHandler, error) {
	if sCfg == nil || sCfg.Lab == nil {
		return nil, errs.NewFatal("v1: slicelab is required")
	}
	return &SampleHandler{lab: sCfg.Lab, log: sCfg.Log, maxSamples: sCfg.MaxSamples, timeout: sCfg.Timeout}, nil
}

// Presets GET /v1/presets
func (h *SampleHandler) Presets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, h.lab.Presets())
}

// Kinds GET /v1/kinds
func (h *SampleHandler) Kinds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string][]string{
		"kinds":   density.Kinds(),
		"presets": density.PresetNames(),
	})
}

// Preset GET /v1/presets/{name}
func (h *SampleHandler) Preset(w http.ResponseWriter, r *http.Request) {
	rs, err := h.lab.LoadPreset(chi.URLParam(r, "name"))
	if err != nil {
		httperr.Errs(w, r, err)
		return
	}
	writeJSON(w, r, rs)
}

// Sample GET /v1/sample?preset=&n=&seed=&trace= 或 POST /v1/sample（SampleRequest）
func (h *SampleHandler) Sample(w http.ResponseWriter, r *http.Request) {
	req, err := decodeSampleRequest(w, r)
	if err != nil {
		httperr.Errs(w, r, err)
		return
	}
	rs, err := h.resolve(req)
	if err != nil {
		httperr.Errs(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	out, err := h.lab.Run(ctx, rs, slicelab.Options{DropTrace: !req.Trace})
	if err != nil {
		httperr.Log(h.log, r, "v1.sample", err)
		httperr.Errs(w, r, err)
		return
	}
	writeJSON(w, r, out)
}

// Curve GET /v1/presets/{name}/curve?lo=&hi=&n=
//
// lo / hi 未給時取設定的 domain；結果需為有限區間。
func (h *SampleHandler) Curve(w http.ResponseWriter, r *http.Request) {
	rs, err := h.lab.LoadPreset(chi.URLParam(r, "name"))
	if err != nil {
		httperr.Errs(w, r, err)
		return
	}
	job, err := rs.Build()
	if err != nil {
		httperr.Errs(w, r, err)
		return
	}
	q := r.URL.Query()
	lo, hi, n := job.Domain.Lo, job.Domain.Hi, 200
	if lo, err = floatParam(q.Get("lo"), lo); err != nil {
		httperr.Errs(w, r, err)
		return
	}
	if hi, err = floatParam(q.Get("hi"), hi); err != nil {
		httperr.Errs(w, r, err)
		return
	}
	if s := q.Get("n"); s != "" {
		if n, err = strconv.Atoi(s); err != nil {
			httperr.Errs(w, r, errs.Warnf("v1: n must be an integer, got %q", s))
			return
		}
	}
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		httperr.Errs(w, r, errs.NewWarn("v1: curve needs finite lo and hi for an unbounded domain"))
		return
	}
	c, err := density.Curve(job.Target, lo, hi, n)
	if err != nil {
		httperr.Errs(w, r, err)
		return
	}
	writeJSON(w, r, c)
}

// resolve 把請求轉成 RunSetting 並檢查上限
func (h *SampleHandler) resolve(req *SampleRequest) (*setting.RunSetting, error) {
	var rs *setting.RunSetting
	switch {
	case req.Setting != nil && req.Preset != "":
		return nil, errs.NewWarn("v1: give either preset or setting, not both")
	case req.Setting != nil:
		rs = req.Setting
	case req.Preset != "":
		p, err := h.lab.LoadPreset(req.Preset)
		if err != nil {
			return nil, err
		}
		rs = p
	default:
		return nil, errs.NewWarn("v1: preset or setting is required")
	}
	if req.NumSamples > 0 {
		rs.NumSamples = req.NumSamples
	}
	if req.Seed != nil {
		rs.Seed = req.Seed
	}
	if err := rs.Init(); err != nil {
		return nil, err
	}
	if rs.NumSamples > h.maxSamples {
		return nil, errs.Warnf("v1: num_samples %d exceeds limit %d", rs.NumSamples, h.maxSamples)
	}
	// 單一步驟內不檢查 ctx，外擴與 shrinkage 上限不得超過預設值
	if rs.MaxStepOut > slice.DefaultMaxStepOut {
		return nil, errs.Warnf("v1: max_step_out %d exceeds limit %d", rs.MaxStepOut, slice.DefaultMaxStepOut)
	}
	if rs.MaxShrink > slice.DefaultMaxShrink {
		return nil, errs.Warnf("v1: max_shrink %d exceeds limit %d", rs.MaxShrink, slice.DefaultMaxShrink)
	}
	return rs, nil
}

func decodeSampleRequest(w http.ResponseWriter, r *http.Request) (*SampleRequest, error) {
	req := new(SampleRequest)
	if r.Method == http.MethodGet {
		q := r.URL.Query()
		req.Preset = q.Get("preset")
		if s := q.Get("n"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 {
				return nil, errs.Warnf("v1: n must be a positive integer, got %q", s)
			}
			req.NumSamples = n
		}
		if s := q.Get("seed"); s != "" {
			seed, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, errs.Warnf("v1: seed must be int64, got %q", s)
			}
			req.Seed = &seed
		}
		if s := q.Get("trace"); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return nil, errs.Warnf("v1: trace must be a bool, got %q", s)
			}
			req.Trace = b
		}
		return req, nil
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := setting.DecodeJSON(r.Body, req); err != nil {
		return nil, err
	}
	return req, nil
}

func floatParam(s string, def float64) (float64, error) {
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, errs.Warnf("v1: invalid number %q", s)
	}
	return f, nil
}

// writeJSON 先完整編碼再寫出，避免編碼失敗時留下半個回應
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	var b bytes.Buffer
	if err := json.NewEncoder(&b).Encode(v); err != nil {
		httperr.Errs(w, r, errs.Wrap(err, "v1: encode response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b.Bytes())
}
