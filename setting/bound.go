package setting

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/zintix-labs/slicelab/errs"
	"gopkg.in/yaml.v3"
)

// Bound 為支撐端點。設定檔中可寫數字，或字串 "inf" / "-inf"（YAML 的 .inf 亦可）。
type Bound float64

func (b Bound) Float() float64 { return float64(b) }

func parseBound(s string) (Bound, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case ".inf", "+.inf":
		return Bound(math.Inf(1)), nil
	case "-.inf":
		return Bound(math.Inf(-1)), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, errs.Warnf("setting: invalid bound %q", s)
	}
	return Bound(f), nil
}

func (b *Bound) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*b = Bound(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errs.Warnf("setting: bound must be a number or \"inf\"/\"-inf\", got %s", string(data))
	}
	v, err := parseBound(s)
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// MarshalJSON 無限值輸出為字串，其餘為數字
func (b Bound) MarshalJSON() ([]byte, error) {
	if s, ok := b.infString(); ok {
		return json.Marshal(s)
	}
	return json.Marshal(float64(b))
}

func (b *Bound) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errs.Warnf("setting: bound must be a scalar (line %d)", node.Line)
	}
	v, err := parseBound(node.Value)
	if err != nil {
		return err
	}
	*b = v
	return nil
}

func (b Bound) MarshalYAML() (any, error) {
	if s, ok := b.infString(); ok {
		return s, nil
	}
	return float64(b), nil
}

func (b Bound) infString() (string, bool) {
	switch {
	case math.IsInf(float64(b), 1):
		return "inf", true
	case math.IsInf(float64(b), -1):
		return "-inf", true
	}
	return "", false
}
