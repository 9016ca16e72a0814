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

package stats

import (
	"encoding/json"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Render 定義輸出行為
type Render interface {
	Write(w io.Writer, v any) error
}

// GetRender 依格式名稱取得 Render（json / yaml）
func GetRender(format string) (Render, bool) {
	switch strings.ToLower(format) {
	case "json":
		return &JsonRender{}, true
	case "yaml", "yml":
		return &YAMLRender{}, true
	default:
		return nil, false
	}
}

// Json渲染
type JsonRender struct{}

func (jr *JsonRender) Write(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAML渲染
type YAMLRender struct{}

func (yr *YAMLRender) Write(w io.Writer, v any) error {
	// 只要是陣列（YAML Sequence）就維持外層預設展開；
	// 只有「最內層的一維陣列」輸出成 flow style：[..., ...]
	// 樣本序列與 trace 的 a_out / b_out 因此各自一行，方便閱讀。
	return forceReadableList(w, v)
}

func forceReadableList(w io.Writer, v any) error {
	var node yaml.Node
	if err := node.Encode(v); err != nil {
		return err
	}
	styleReadableSequences(&node)

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(&node)
}

func styleReadableSequences(n *yaml.Node) {
	if n == nil {
		return
	}

	switch n.Kind {
	case yaml.DocumentNode, yaml.MappingNode:
		for _, c := range n.Content {
			styleReadableSequences(c)
		}

	case yaml.SequenceNode:
		// 內含 mapping 或 sequence 的是外層維度，維持 block
		nested := false
		for _, c := range n.Content {
			if c != nil && (c.Kind == yaml.SequenceNode || c.Kind == yaml.MappingNode) {
				nested = true
			}
			styleReadableSequences(c)
		}
		if !nested {
			n.Style = yaml.FlowStyle
		}
	}
}
