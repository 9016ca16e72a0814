// Package setting 負責讀取與檢查一次 slice sampling 的設定，並組出取樣器所需的 Target / Domain / Config。
package setting

import (
	"math"
	"strings"

	"github.com/zintix-labs/slicelab/errs"
	"github.com/zintix-labs/slicelab/sdk/core"
	"github.com/zintix-labs/slicelab/sdk/density"
	"github.com/zintix-labs/slicelab/sdk/slice"
)

// RunSetting 描述一次取樣所需的所有設定
type RunSetting struct {
	Name       string         `yaml:"name"                   json:"name"`
	Density    DensitySetting `yaml:"density"                json:"density"`
	Domain     DomainSetting  `yaml:"domain"                 json:"domain"`
	XStart     float64        `yaml:"x_start"                json:"x_start"`
	NumSamples int            `yaml:"num_samples"            json:"num_samples"`
	Burn       int            `yaml:"burn"                   json:"burn"`
	Lag        *int           `yaml:"lag,omitempty"          json:"lag,omitempty"` // 未設定為 1；明確給 0 視為錯誤
	W          *float64       `yaml:"w,omitempty"            json:"w,omitempty"`   // 未設定為 1
	MaxStepOut int            `yaml:"max_step_out,omitempty" json:"max_step_out,omitempty"`
	MaxShrink  int            `yaml:"max_shrink,omitempty"   json:"max_shrink,omitempty"`
	Seed       *int64         `yaml:"seed,omitempty"         json:"seed,omitempty"`
	RNG        string         `yaml:"rng,omitempty"          json:"rng,omitempty"`
}

// DomainSetting 未填的端點：preset 取 preset 的支撐，否則為 ±Inf
type DomainSetting struct {
	Lo *Bound `yaml:"lo,omitempty" json:"lo,omitempty"`
	Hi *Bound `yaml:"hi,omitempty" json:"hi,omitempty"`
}

// DensitySetting 三選一：preset、kind(+params)、mixture
type DensitySetting struct {
	Preset  string             `yaml:"preset,omitempty"  json:"preset,omitempty"`
	Kind    string             `yaml:"kind,omitempty"    json:"kind,omitempty"`
	Params  map[string]float64 `yaml:"params,omitempty"  json:"params,omitempty"`
	Mixture []ComponentSetting `yaml:"mixture,omitempty" json:"mixture,omitempty"`
}

// ComponentSetting 為混合分布中的單一成分
type ComponentSetting struct {
	Weight float64            `yaml:"weight" json:"weight"`
	Kind   string             `yaml:"kind"   json:"kind"`
	Params map[string]float64 `yaml:"params" json:"params"`
}

// Job 為 Build 的結果，可直接交給 slice.Run
type Job struct {
	Name    string
	XStart  float64
	Target  density.Distribution
	Domain  slice.Domain
	Config  slice.Config
	Factory core.PRNGFactory
}

const (
	defaultLag = 1
	defaultW   = 1.0
)

// StepLag 回傳 lag；未設定時為 1
func (rs *RunSetting) StepLag() int {
	if rs.Lag == nil {
		return defaultLag
	}
	return *rs.Lag
}

// StepWidth 回傳 stepping-out 寬度 w；未設定時為 1
func (rs *RunSetting) StepWidth() float64 {
	if rs.W == nil {
		return defaultW
	}
	return *rs.W
}

// init 補預設值並檢查
func (rs *RunSetting) init() error {
	if rs.Lag == nil {
		lag := defaultLag
		rs.Lag = &lag
	}
	if rs.W == nil {
		w := defaultW
		rs.W = &w
	}
	return rs.valid()
}

// valid 檢查設定層面的問題；domain 與 x_start 的關係交由 slice 檢查
func (rs *RunSetting) valid() error {
	if rs.NumSamples < 1 {
		return errs.Warnf("setting %q: num_samples must >= 1, got %d", rs.Name, rs.NumSamples)
	}
	if math.IsNaN(rs.XStart) || math.IsInf(rs.XStart, 0) {
		return errs.Warnf("setting %q: x_start must be finite", rs.Name)
	}
	if rs.Burn < 0 {
		return errs.WrapWithExtra(slice.ErrInvalidArgument, "setting: burn must >= 0", rs.Name)
	}
	if rs.Lag != nil && *rs.Lag < 1 {
		return errs.WrapWithExtra(slice.ErrInvalidArgument, "setting: lag must >= 1", rs.Name)
	}
	if w := rs.W; w != nil && !(*w > 0 && !math.IsInf(*w, 1)) {
		return errs.WrapWithExtra(slice.ErrInvalidArgument, "setting: w must be positive and finite", rs.Name)
	}
	if rs.MaxStepOut < 0 || rs.MaxShrink < 0 {
		return errs.WrapWithExtra(slice.ErrInvalidArgument, "setting: max_step_out / max_shrink must >= 0", rs.Name)
	}
	if _, ok := core.Factory(rs.RNG); !ok {
		return errs.Warnf("setting %q: unknown rng %q", rs.Name, rs.RNG)
	}
	return rs.Density.valid()
}

func (ds *DensitySetting) valid() error {
	n := 0
	if ds.Preset != "" {
		n++
	}
	if ds.Kind != "" {
		n++
	}
	if len(ds.Mixture) > 0 {
		n++
	}
	if n != 1 {
		return errs.NewWarn("setting: density needs exactly one of preset / kind / mixture")
	}
	if ds.Kind == "" && len(ds.Params) > 0 {
		return errs.NewWarn("setting: density params require kind")
	}
	return nil
}

// Build 依設定建立目標分布、支撐與取樣參數
func (rs *RunSetting) Build() (*Job, error) {
	if err := rs.valid(); err != nil {
		return nil, err
	}
	target, dom, err := rs.Density.build()
	if err != nil {
		return nil, err
	}
	if rs.Domain.Lo != nil {
		dom.Lo = rs.Domain.Lo.Float()
	}
	if rs.Domain.Hi != nil {
		dom.Hi = rs.Domain.Hi.Float()
	}
	f, _ := core.Factory(rs.RNG)
	return &Job{
		Name:   rs.Name,
		XStart: rs.XStart,
		Target: target,
		Domain: dom,
		Config: slice.Config{
			NumSamples: rs.NumSamples,
			Burn:       rs.Burn,
			Lag:        rs.StepLag(),
			W:          rs.StepWidth(),
			MaxStepOut: rs.MaxStepOut,
			MaxShrink:  rs.MaxShrink,
		},
		Factory: f,
	}, nil
}

func (ds *DensitySetting) build() (density.Distribution, slice.Domain, error) {
	dom := slice.Unbounded()
	switch {
	case ds.Preset != "":
		p, err := density.GetPreset(strings.ToLower(ds.Preset))
		if err != nil {
			return nil, dom, err
		}
		return p.Density(), slice.Domain{Lo: p.Lo, Hi: p.Hi}, nil
	case ds.Kind != "":
		d, err := density.NewComponent(ds.Kind, ds.Params)
		return d, dom, err
	default:
		weights := make([]float64, len(ds.Mixture))
		comps := make([]density.Distribution, len(ds.Mixture))
		for i, c := range ds.Mixture {
			d, err := density.NewComponent(c.Kind, c.Params)
			if err != nil {
				return nil, dom, errs.WrapWithExtra(err, "setting: mixture component", c.Kind)
			}
			weights[i], comps[i] = c.Weight, d
		}
		m, err := density.NewMixture(weights, comps)
		return m, dom, err
	}
}
