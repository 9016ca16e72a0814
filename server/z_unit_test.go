package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/zintix-labs/slicelab"
	"github.com/zintix-labs/slicelab/server"
	"github.com/zintix-labs/slicelab/server/httperr"
	"github.com/zintix-labs/slicelab/server/logger"
	"github.com/zintix-labs/slicelab/server/svrcfg"
)

func newTestServer(t *testing.T, maxSamples int) *httptest.Server {
	t.Helper()
	return newTestServerTimeout(t, maxSamples, 5*time.Second)
}

func newTestServerTimeout(t *testing.T, maxSamples int, timeout time.Duration) *httptest.Server {
	t.Helper()
	lab, err := slicelab.NewDefault()
	if err != nil {
		t.Fatalf("NewDefault: %v", err)
	}
	h, err := server.NewHandler(&svrcfg.SvrCfg{
		Log:        logger.NewDefaultLogger(logger.ModeSilence),
		MaxSamples: maxSamples,
		Timeout:    timeout,
		Lab:        lab,
	})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, b
}

func post(t *testing.T, url string, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, b
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, 0)
	resp, b := get(t, ts.URL+"/healthz")
	if resp.StatusCode != http.StatusOK || string(b) != "ok\n" {
		t.Fatalf("healthz: %d %q", resp.StatusCode, b)
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Fatalf("missing request id header")
	}
}

func TestPresetsList(t *testing.T) {
	ts := newTestServer(t, 0)
	resp, b := get(t, ts.URL+"/v1/presets")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.StatusCode, b)
	}
	var entries []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(b, &entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	names := map[string]bool{}
	for _, e := range entries {
		names[e.Name] = true
	}
	if !names["trimodal"] || !names["bimodal"] || !names["normal"] {
		t.Fatalf("unexpected presets: %s", b)
	}
}

func TestPresetDetailAndMissing(t *testing.T) {
	ts := newTestServer(t, 0)
	resp, b := get(t, ts.URL+"/v1/presets/trimodal")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.StatusCode, b)
	}
	if !bytes.Contains(b, []byte(`"hi":"inf"`)) || !bytes.Contains(b, []byte(`"preset":"trimodal"`)) {
		t.Fatalf("unexpected body: %s", b)
	}

	resp, b = get(t, ts.URL+"/v1/presets/nope")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", resp.StatusCode, b)
	}
	var eb httperr.Body
	if err := json.Unmarshal(b, &eb); err != nil || eb.Error == "" || eb.RequestID == "" {
		t.Fatalf("bad error body: %s", b)
	}
}

type sampleOut struct {
	Name       string    `json:"name"`
	Seed       int64     `json:"seed"`
	Samples    []float64 `json:"samples"`
	Trace      []any     `json:"trace"`
	Iterations int       `json:"iterations"`
}

func TestSampleByPresetGET(t *testing.T) {
	ts := newTestServer(t, 0)
	resp, b := get(t, ts.URL+"/v1/sample?preset=trimodal&n=50&seed=7")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.StatusCode, b)
	}
	var out sampleOut
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Name != "trimodal" || out.Seed != 7 || len(out.Samples) != 50 || out.Trace != nil {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	for _, x := range out.Samples {
		if x < 0 {
			t.Fatalf("sample %v outside domain", x)
		}
	}

	// 同 seed 同結果
	_, b2 := get(t, ts.URL+"/v1/sample?preset=trimodal&n=50&seed=7")
	var out2 sampleOut
	_ = json.Unmarshal(b2, &out2)
	for i := range out.Samples {
		if out.Samples[i] != out2.Samples[i] {
			t.Fatalf("not reproducible at %d", i)
		}
	}
}

func TestSampleBySettingPOST(t *testing.T) {
	ts := newTestServer(t, 0)
	body := `{
		"setting": {
			"name": "inline",
			"density": {"kind": "normal", "params": {"mu": 1, "sigma": 2}},
			"x_start": 0,
			"num_samples": 30,
			"burn": 5,
			"lag": 2,
			"w": 1.5,
			"seed": 11
		},
		"trace": true
	}`
	resp, b := post(t, ts.URL+"/v1/sample", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.StatusCode, b)
	}
	var out sampleOut
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Name != "inline" || len(out.Samples) != 30 || len(out.Trace) != 30 {
		t.Fatalf("unexpected outcome: name=%s n=%d trace=%d", out.Name, len(out.Samples), len(out.Trace))
	}
	// burn=5, lag=2：第一個保留的 n 是 6，第 30 個是 64
	if out.Iterations != 64 {
		t.Fatalf("iterations=%d want 64", out.Iterations)
	}
}

func TestSampleErrors(t *testing.T) {
	ts := newTestServer(t, 100)
	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"empty", `{}`, http.StatusBadRequest},
		{"both", `{"preset":"trimodal","setting":{"density":{"kind":"normal"},"num_samples":1}}`, http.StatusBadRequest},
		{"unknown field", `{"preset":"trimodal","nope":1}`, http.StatusBadRequest},
		{"over limit", `{"preset":"trimodal","num_samples":101}`, http.StatusBadRequest},
		{"bad kind", `{"setting":{"density":{"kind":"cauchy-ish"},"num_samples":1}}`, http.StatusBadRequest},
		{"outside domain", `{"setting":{"density":{"preset":"trimodal"},"x_start":-1,"num_samples":1}}`, http.StatusBadRequest},
		{"not json", `{`, http.StatusBadRequest},
		{"step-out over limit", `{"setting":{"density":{"kind":"normal","params":{"sigma":1e300}},"num_samples":1,"max_step_out":200000000,"seed":1}}`, http.StatusBadRequest},
		{"shrink over limit", `{"setting":{"density":{"kind":"normal"},"num_samples":1,"max_shrink":200000000,"seed":1}}`, http.StatusBadRequest},
		{"explicit zero lag", `{"setting":{"density":{"kind":"normal"},"num_samples":1,"lag":0}}`, http.StatusBadRequest},
		{"explicit zero w", `{"setting":{"density":{"kind":"normal"},"num_samples":1,"w":0}}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, b := post(t, ts.URL+"/v1/sample", tc.body)
			if resp.StatusCode != tc.status {
				t.Fatalf("status=%d want %d body=%s", resp.StatusCode, tc.status, b)
			}
			if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
				t.Fatalf("content-type=%q", ct)
			}
		})
	}

	resp, _ := get(t, ts.URL+"/v1/sample?preset=trimodal&n=abc")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad n status=%d", resp.StatusCode)
	}
}

func TestSampleTimeout(t *testing.T) {
	ts := newTestServerTimeout(t, 0, 50*time.Millisecond)
	// 第二個樣本在第 2e9 步，必定撞上 deadline
	body := `{"setting":{"density":{"kind":"normal"},"num_samples":2,"lag":1000000000,"seed":1}}`
	start := time.Now()
	resp, b := post(t, ts.URL+"/v1/sample", body)
	if resp.StatusCode != http.StatusGatewayTimeout {
		t.Fatalf("status=%d want 504 body=%s", resp.StatusCode, b)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("deadline not honored: %v", elapsed)
	}
	var eb httperr.Body
	if err := json.Unmarshal(b, &eb); err != nil || eb.Error == "" {
		t.Fatalf("bad error body: %s", b)
	}
}

func TestCurve(t *testing.T) {
	ts := newTestServer(t, 0)
	resp, b := get(t, ts.URL+"/v1/presets/trimodal/curve?hi=10&n=101")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.StatusCode, b)
	}
	var c struct {
		X    []float64 `json:"x"`
		Y    []float64 `json:"y"`
		Norm float64   `json:"norm"`
	}
	if err := json.Unmarshal(b, &c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(c.X) != 101 || c.X[0] != 0 || c.X[100] != 10 || !(c.Norm > 0.9 && c.Norm < 1.1) {
		t.Fatalf("unexpected curve: n=%d norm=%v", len(c.X), c.Norm)
	}

	// 無界且未給 hi
	resp, _ = get(t, ts.URL+"/v1/presets/trimodal/curve")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unbounded curve status=%d", resp.StatusCode)
	}
}

func TestKinds(t *testing.T) {
	ts := newTestServer(t, 0)
	resp, b := get(t, ts.URL+"/v1/kinds")
	if resp.StatusCode != http.StatusOK || !bytes.Contains(b, []byte(`"normal"`)) {
		t.Fatalf("kinds: %d %s", resp.StatusCode, b)
	}
}

func TestNewHandlerRequiresLab(t *testing.T) {
	if _, err := server.NewHandler(&svrcfg.SvrCfg{}); err == nil {
		t.Fatalf("expected error without slicelab")
	}
}
