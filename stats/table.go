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
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var lang = language.English

// Table 把 Summary（以及可選的 Cost）排成主控台表格
func Table(title string, s *Summary, c *Cost) string {
	p := message.NewPrinter(lang)
	msg := map[string]string{
		"Samples":  p.Sprintf("%d", s.N),
		"Mean":     p.Sprintf("%.4f", s.Mean),
		"Variance": p.Sprintf("%.4f", s.Variance),
		"STD":      p.Sprintf("%.4f", s.Std),
		"Min":      p.Sprintf("%.4f", s.Min),
		"P05":      p.Sprintf("%.4f", s.P05),
		"P25":      p.Sprintf("%.4f", s.P25),
		"Median":   p.Sprintf("%.4f", s.P50),
		"P75":      p.Sprintf("%.4f", s.P75),
		"P95":      p.Sprintf("%.4f", s.P95),
		"Max":      p.Sprintf("%.4f", s.Max),
	}
	keys := []string{"Samples", "Mean", "Variance", "STD", "Min", "P05", "P25", "Median", "P75", "P95", "Max"}
	if c != nil {
		msg["Step-out / step"] = p.Sprintf("%.2f (max %d)", c.MeanStepOut, c.MaxStepOut)
		msg["Proposals / step"] = p.Sprintf("%.2f (max %d)", c.MeanProposals, c.MaxProposals)
		keys = append(keys, "Step-out / step", "Proposals / step")
	}
	return fmtTable(title, keys, msg)
}

// StdOut 印出用時與統計表
func StdOut(w io.Writer, title string, s *Summary, c *Cost, used time.Duration) {
	formatDuration(w, used, s.N)
	fmt.Fprintln(w, Table(title, s, c))
}

func formatDuration(w io.Writer, d time.Duration, samples int) {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	sps := int(float64(samples) / sec)
	if sec < 60.0 {
		p.Fprintf(w, "used: %.3f seconds\nsps : %d samples/sec\n", sec, sps)
		return
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		p.Fprintf(w, "used: %dm %ds\nsps : %d samples/sec\n", m, s, sps)
		return
	}
	p.Fprintf(w, "used: %dh:%dm:%ds\nsps : %d samples/sec\n", h, m, s, sps)
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	maxKeyLen := runewidth.StringWidth(title) - 3
	maxValLen := 0
	for _, k := range keys {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(msg[k]); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)
	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	var sb strings.Builder
	sb.WriteString(top)
	sb.WriteString("|" + blank(left) + title + blank(right) + "|\n")
	sb.WriteString(divider)
	for _, k := range keys {
		v := msg[k]
		sb.WriteString("| " + k + blank(maxKeyLen-2-runewidth.StringWidth(k)) +
			" | " + v + blank(maxValLen-2-runewidth.StringWidth(v)) + " |\n")
	}
	sb.WriteString(divider)
	return sb.String()
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
