package demo_configs

import (
	"embed"
)

// FS 內嵌示範用的取樣設定，檔名（去掉 .yaml）即 preset 名稱。
//
//go:embed *.yaml
var FS embed.FS
