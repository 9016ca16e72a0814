package setting

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/zintix-labs/slicelab/errs"
	"gopkg.in/yaml.v3"
)

// GetRunSettingByYAML
// 讀取 YAML 設定（嚴格模式：多寫/拼錯欄位就報錯）、補預設值並檢查後回傳。
func GetRunSettingByYAML(data []byte) (*RunSetting, error) {
	rs := &RunSetting{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(rs); err != nil && !errors.Is(err, io.EOF) {
		return nil, badInput(err, "setting: failed to unmarshal yaml")
	}
	if err := rs.init(); err != nil {
		return nil, errs.Wrap(err, "setting: run setting initialized err")
	}
	return rs, nil
}

// GetRunSettingByJSON
// 讀取 JSON 設定（拒絕未知欄位）、補預設值並檢查後回傳。
func GetRunSettingByJSON(data []byte) (*RunSetting, error) {
	rs := &RunSetting{}
	if err := DecodeJSON(bytes.NewReader(data), rs); err != nil {
		return nil, err
	}
	if err := rs.init(); err != nil {
		return nil, errs.Wrap(err, "setting: run setting initialized err")
	}
	return rs, nil
}

// DecodeJSON 以嚴格模式解碼單一 JSON 物件到 out
func DecodeJSON(r io.Reader, out any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return badInput(err, "setting: failed to unmarshal json")
	}
	return nil
}

// Init 對程式組出來的 RunSetting 補預設值並檢查（CLI 覆寫旗標後使用）
func (rs *RunSetting) Init() error {
	return rs.init()
}

// badInput 設定內容錯誤屬於呼叫端問題，等級為 Warn
func badInput(cause error, msg string) error {
	if e, ok := errs.AsErr(cause); ok {
		return errs.Wrap(e, msg)
	}
	e := errs.NewWarn(msg)
	e.Cause = cause
	return e
}
