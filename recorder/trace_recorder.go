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

package recorder

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/zintix-labs/slicelab/errs"
	"github.com/zintix-labs/slicelab/sdk/slice"
	"github.com/zintix-labs/slicelab/setting"
)

// TraceFormat 寫在 header 內，讀取時比對
const TraceFormat = "slicelab-trace/v1"

// TraceHeader 描述產生 trace 的那次取樣
type TraceHeader struct {
	Format     string        `json:"format"`
	Name       string        `json:"name"`
	Seed       int64         `json:"seed"`
	XStart     float64       `json:"x_start"`
	Lo         setting.Bound `json:"lo"`
	Hi         setting.Bound `json:"hi"`
	NumSamples int           `json:"num_samples"`
	Burn       int           `json:"burn"`
	Lag        int           `json:"lag"`
	W          float64       `json:"w"`
}

// stepLine 為單行紀錄；U 可能是 -Inf（log(0)），用 Bound 編碼
type stepLine struct {
	I         int           `json:"i"`
	U         setting.Bound `json:"u"`
	R         float64       `json:"r"`
	AOut      []float64     `json:"a_out"`
	BOut      []float64     `json:"b_out"`
	Proposals []float64     `json:"x_proposal"`
	Sample    float64       `json:"sample"`
}

// TraceRecorder 把 trace 寫成 zstd 壓縮的 JSON lines：第一行 header，之後每個收集樣本一行。
//
// 不負責關閉底層 writer。
type TraceRecorder struct {
	zw  *zstd.Encoder
	enc *json.Encoder
	n   int
}

func NewTraceRecorder(w io.Writer, h TraceHeader) (*TraceRecorder, error) {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, errs.Wrap(err, "recorder: create zstd writer")
	}
	h.Format = TraceFormat
	tr := &TraceRecorder{zw: zw, enc: json.NewEncoder(zw)}
	if err := tr.enc.Encode(h); err != nil {
		zw.Close()
		return nil, errs.Wrap(err, "recorder: write header")
	}
	return tr, nil
}

// Record 寫入一筆 Step
func (tr *TraceRecorder) Record(s slice.Step) error {
	line := stepLine{
		I:         tr.n,
		U:         setting.Bound(s.U),
		R:         s.R,
		AOut:      s.AOut,
		BOut:      s.BOut,
		Proposals: s.Proposals,
		Sample:    s.Sample,
	}
	if err := tr.enc.Encode(line); err != nil {
		return errs.Wrap(err, "recorder: write step")
	}
	tr.n++
	return nil
}

// RecordAll 依序寫入整段 trace
func (tr *TraceRecorder) RecordAll(trace []slice.Step) error {
	for _, s := range trace {
		if err := tr.Record(s); err != nil {
			return err
		}
	}
	return nil
}

// Count 已寫入的 Step 數
func (tr *TraceRecorder) Count() int { return tr.n }

// Close flush 壓縮串流
func (tr *TraceRecorder) Close() error {
	if err := tr.zw.Close(); err != nil {
		return errs.Wrap(err, "recorder: close zstd writer")
	}
	return nil
}

// ReadTrace 讀回 TraceRecorder 寫出的內容
func ReadTrace(r io.Reader) (*TraceHeader, []slice.Step, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, nil, errs.Wrap(err, "recorder: create zstd reader")
	}
	defer zr.Close()

	dec := json.NewDecoder(zr)
	h := &TraceHeader{}
	if err := dec.Decode(h); err != nil {
		return nil, nil, errs.Wrap(err, "recorder: read header")
	}
	if h.Format != TraceFormat {
		return nil, nil, errs.Warnf("recorder: unsupported trace format %q", h.Format)
	}

	trace := make([]slice.Step, 0, h.NumSamples)
	for {
		var line stepLine
		err := dec.Decode(&line)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, errs.Wrap(err, "recorder: read step")
		}
		if line.I != len(trace) {
			return nil, nil, errs.Fatalf("recorder: step index %d out of order (want %d)", line.I, len(trace))
		}
		trace = append(trace, slice.Step{
			U:         line.U.Float(),
			R:         line.R,
			AOut:      line.AOut,
			BOut:      line.BOut,
			Proposals: line.Proposals,
			Sample:    line.Sample,
		})
	}
	return h, trace, nil
}
