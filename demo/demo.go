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

// Package demo 把內嵌的示範設定組成可直接使用的 catalog / Slicelab / server 設定。
package demo

import (
	"github.com/zintix-labs/slicelab"
	"github.com/zintix-labs/slicelab/catalog"
	"github.com/zintix-labs/slicelab/demo/demo_configs"
	"github.com/zintix-labs/slicelab/errs"
	"github.com/zintix-labs/slicelab/server/logger"
	"github.com/zintix-labs/slicelab/server/svrcfg"
)

func New() (*catalog.Catalog, error) {
	return catalog.New(demo_configs.FS)
}

// NewServerConfig 開發用：dev log、預設上限
func NewServerConfig() (*svrcfg.SvrCfg, error) {
	lab, err := NewSlicelab()
	if err != nil {
		return nil, errs.Wrap(err, "demo: new slicelab failed")
	}
	return &svrcfg.SvrCfg{
		Log: logger.NewDefaultLogger(logger.ModeDev),
		Lab: lab,
	}, nil
}

func NewSlicelab() (*slicelab.Slicelab, error) {
	return slicelab.New(demo_configs.FS)
}
