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

// Package perf 在執行一段工作的同時寫出 pprof 檔，供 `go tool pprof` 或 PGO 使用。
package perf

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/zintix-labs/slicelab/errs"
)

// DefaultDir pprof 檔案預設寫入路徑
const DefaultDir = "build/profiling"

// Mode 指定要收集的 profile
type Mode string

const (
	None   Mode = ""
	CPU    Mode = "cpu"
	Heap   Mode = "heap"
	Allocs Mode = "allocs"
)

// ParseMode 接受 '', cpu, heap, allocs
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case None, CPU, Heap, Allocs:
		return m, nil
	default:
		return None, errs.Warnf("perf: unknown pprof mode %q (want '', cpu, heap, allocs)", s)
	}
}

// Run 執行 exe，並依 mode 寫出 <dir>/<mode>.pprof；dir 為空時使用 DefaultDir。
//
// exe 的錯誤優先回傳；profile 寫檔失敗則回傳 Fatal 等級錯誤。
func Run(dir string, mode Mode, exe func() error) error {
	if mode == None {
		return exe()
	}
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.Wrap(err, "perf: create profiling dir")
	}
	path := filepath.Join(dir, string(mode)+".pprof")

	switch mode {
	case CPU:
		return profileCPU(path, exe)
	case Heap, Allocs:
		// 先執行目標邏輯，再拍一次快照
		if err := exe(); err != nil {
			return err
		}
		return snapshot(path, mode)
	default:
		return errs.Warnf("perf: unknown pprof mode %q", mode)
	}
}

func profileCPU(path string, exe func() error) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(err, "perf: create cpu profile")
	}
	defer f.Close()
	if err := pprof.StartCPUProfile(f); err != nil {
		return errs.Wrap(err, "perf: start cpu profile")
	}
	defer pprof.StopCPUProfile()
	return exe()
}

// snapshot heap 寫 in-use 快照（先 GC 讓 live objects 較準確）；allocs 寫累積配置
func snapshot(path string, mode Mode) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(err, "perf: create "+string(mode)+" profile")
	}
	defer f.Close()

	if mode == Heap {
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return errs.Wrap(err, "perf: write heap profile")
		}
		return nil
	}
	if prof := pprof.Lookup("allocs"); prof != nil {
		if err := prof.WriteTo(f, 0); err != nil {
			return errs.Wrap(err, "perf: write allocs profile")
		}
	}
	return nil
}
