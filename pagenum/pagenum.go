// Package pagenum formats display page numbers and computes the
// section-aware display number for every physical page of a layout.
package pagenum

import (
	"strconv"
	"strings"

	"github.com/ByLCY/folio/doc"
	"github.com/ByLCY/folio/layout"
)

// DisplayPageInfo describes one physical page: its running display number,
// the formatted display text and the owning section index.
type DisplayPageInfo struct {
	Physical int    `json:"physical"`
	Number   int    `json:"number"`
	Text     string `json:"text"`
	Section  int    `json:"section"`
}

// Format renders n in the given format. n is clamped to a minimum of 1 at
// formatting time only; roman numerals outside 1..3999 fall back to decimal.
func Format(n int, format doc.NumberFormat) string {
	if n < 1 {
		n = 1
	}
	switch format {
	case doc.NumberLowerRoman:
		if s, ok := toRoman(n); ok {
			return s
		}
	case doc.NumberUpperRoman:
		if s, ok := toRoman(n); ok {
			return strings.ToUpper(s)
		}
	case doc.NumberLowerLetter:
		return ToAlpha(n)
	case doc.NumberUpperLetter:
		return strings.ToUpper(ToAlpha(n))
	}
	return strconv.Itoa(n)
}

// DisplayNumbers walks the physical pages in order, resetting the running
// counter where a section declares an explicit restart and carrying it over
// unchanged otherwise. The raw counter may be non-positive; clamping happens
// in Format only, so continuity across sections is preserved.
func DisplayNumbers(res *layout.Result) []DisplayPageInfo {
	if res == nil || len(res.Pages) == 0 {
		return nil
	}
	out := make([]DisplayPageInfo, 0, len(res.Pages))
	counter := 0
	curSection := -1
	for _, page := range res.Pages {
		sec := page.Section
		numbering := doc.Numbering{Format: doc.NumberDecimal}
		if sec >= 0 && sec < len(res.Sections) {
			numbering = res.Sections[sec].Numbering
		} else {
			layout.Logger().Warn("页面所属节缺少编号信息", "page", page.Number, "section", sec)
		}
		if sec != curSection && numbering.Restart != nil {
			counter = *numbering.Restart
		} else {
			counter++
		}
		curSection = sec
		out = append(out, DisplayPageInfo{
			Physical: page.Number,
			Number:   counter,
			Text:     Format(counter, numbering.Format),
			Section:  sec,
		})
	}
	return out
}

var romanValues = []struct {
	value  int
	symbol string
}{
	{1000, "m"}, {900, "cm"}, {500, "d"}, {400, "cd"},
	{100, "c"}, {90, "xc"}, {50, "l"}, {40, "xl"},
	{10, "x"}, {9, "ix"}, {5, "v"}, {4, "iv"}, {1, "i"},
}

// toRoman renders n in lowercase subtractive roman notation, valid for 1..3999.
func toRoman(n int) (string, bool) {
	if n < 1 || n > 3999 {
		return "", false
	}
	var b strings.Builder
	for _, rv := range romanValues {
		for n >= rv.value {
			b.WriteString(rv.symbol)
			n -= rv.value
		}
	}
	return b.String(), true
}

// FromRoman parses a lowercase subtractive roman numeral back to an integer.
func FromRoman(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	s = strings.ToLower(s)
	n := 0
	for _, rv := range romanValues {
		for strings.HasPrefix(s, rv.symbol) {
			n += rv.value
			s = s[len(rv.symbol):]
		}
	}
	if s != "" || n < 1 || n > 3999 {
		return 0, false
	}
	return n, true
}

// ToAlpha renders n in bijective base-26 lowercase letters:
// 1→"a", 26→"z", 27→"aa" — spreadsheet-column naming.
func ToAlpha(n int) string {
	if n < 1 {
		n = 1
	}
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('a' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

// FromAlpha parses a bijective base-26 letter string back to an integer.
func FromAlpha(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range strings.ToLower(s) {
		if r < 'a' || r > 'z' {
			return 0, false
		}
		n = n*26 + int(r-'a') + 1
	}
	return n, true
}
