// Package catalog 把一或多個 fs.FS 內的取樣設定（.yaml/.yml/.json）索引成「名稱 -> 設定」。
//
// 設定來源必須是平的目錄；同名檔案或同名設定跨來源重複時直接失敗。
package catalog

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zintix-labs/slicelab/errs"
	"github.com/zintix-labs/slicelab/setting"
)

var (
	ErrDupName   = errs.NewFatal("catalog: duplicate setting name")
	ErrNotFound  = errs.NewWarn("catalog: setting not found")
	ErrNoSources = errs.NewFatal("catalog: no fs provided")
)

// Entry 為單一設定的索引資訊
type Entry struct {
	Name       string `json:"name"`
	ConfigName string `json:"config"`
	Density    string `json:"density"`
	NumSamples int    `json:"num_samples"`
}

type Catalog struct {
	byName map[string]Entry
	names  []string
	config *multiFS
}

// New 建立目錄並立即解析全部設定：任一檔案失敗就回傳錯誤，不會留下半完成的目錄。
func New(cfg ...fs.FS) (*Catalog, error) {
	m, err := newMultiFS(cfg...)
	if err != nil {
		return nil, errs.Wrap(err, "catalog: can not index config sources")
	}
	c := &Catalog{
		byName: make(map[string]Entry, len(m.index)),
		names:  make([]string, 0, len(m.index)),
		config: m,
	}

	files := make([]string, 0, len(m.index))
	for f := range m.index {
		files = append(files, f)
	}
	sort.Strings(files)

	for _, f := range files {
		rs, err := c.parse(f)
		if err != nil {
			return nil, errs.WrapWithExtra(err, "catalog: invalid config", f)
		}
		name := normalize(rs.Name)
		if name == "" {
			name = normalize(strings.TrimSuffix(f, filepath.Ext(f)))
		}
		if prev, ok := c.byName[name]; ok {
			return nil, errs.WrapWithExtra(ErrDupName, "catalog: "+name, prev.ConfigName+" / "+f)
		}
		c.byName[name] = Entry{Name: name, ConfigName: f, Density: describe(&rs.Density), NumSamples: rs.NumSamples}
		c.names = append(c.names, name)
	}
	sort.Strings(c.names)
	return c, nil
}

// Names 回傳排序後的設定名稱
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

// All 依名稱排序回傳所有 Entry
func (c *Catalog) All() []Entry {
	out := make([]Entry, 0, len(c.names))
	for _, n := range c.names {
		out = append(out, c.byName[n])
	}
	return out
}

func (c *Catalog) GetByName(name string) (Entry, bool) {
	e, ok := c.byName[normalize(name)]
	return e, ok
}

// SettingByName 每次都重新讀檔解析，回傳的 RunSetting 可由呼叫端自由修改
func (c *Catalog) SettingByName(name string) (*setting.RunSetting, error) {
	e, ok := c.GetByName(name)
	if !ok {
		return nil, errs.WrapWithExtra(ErrNotFound, "catalog: unknown setting", name)
	}
	rs, err := c.parse(e.ConfigName)
	if err != nil {
		return nil, err
	}
	if rs.Name == "" {
		rs.Name = e.Name
	}
	return rs, nil
}

func (c *Catalog) parse(file string) (*setting.RunSetting, error) {
	src, ok := c.config.GetFS(file)
	if !ok {
		return nil, errs.NewWarn(fmt.Sprintf("catalog: file %q not indexed", file))
	}
	raw, err := fs.ReadFile(src, file)
	if err != nil {
		return nil, errs.Wrap(err, "catalog: read file error")
	}
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		return setting.GetRunSettingByYAML(raw)
	case ".json":
		return setting.GetRunSettingByJSON(raw)
	default:
		return nil, errs.NewFatal(fmt.Sprintf("catalog: unsupported config format: %q", file))
	}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func describe(ds *setting.DensitySetting) string {
	switch {
	case ds.Preset != "":
		return "preset:" + ds.Preset
	case ds.Kind != "":
		return ds.Kind
	default:
		return fmt.Sprintf("mixture(%d)", len(ds.Mixture))
	}
}

type multiFS struct {
	src   []fs.FS
	index map[string]int // file -> src index
}

func newMultiFS(src ...fs.FS) (*multiFS, error) {
	if len(src) == 0 {
		return nil, ErrNoSources
	}
	for i, s := range src {
		if s == nil {
			return nil, errs.NewFatal(fmt.Sprintf("catalog: fs[%d] is nil", i))
		}
	}

	m := &multiFS{
		src:   src,
		index: make(map[string]int, 16),
	}
	for i := range src {
		err := fs.WalkDir(src[i], ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path == "." {
					return nil
				}
				return errs.NewFatal(fmt.Sprintf("catalog: config FS must be flat (no subdirectories): %q", path))
			}
			lower := strings.ToLower(path)
			if !(strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") || strings.HasSuffix(lower, ".json")) {
				return nil
			}
			if strings.HasPrefix(path, ".") {
				return nil
			}
			if prev, ok := m.index[path]; ok {
				return errs.NewFatal(fmt.Sprintf("catalog: duplicate config %q in fs[%d] and fs[%d]", path, prev, i))
			}
			m.index[path] = i
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *multiFS) GetFS(name string) (fs.FS, bool) {
	if id, ok := m.index[name]; ok {
		return m.src[id], true
	}
	return nil, false
}
