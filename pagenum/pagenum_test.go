package pagenum

import (
	"testing"

	"github.com/ByLCY/folio/doc"
	"github.com/ByLCY/folio/layout"
)

func restart(n int) *int { return &n }

// TestFormat covers every display format plus the clamping and roman
// fallback rules at the formatting boundary.
func TestFormat(t *testing.T) {
	cases := []struct {
		n      int
		format doc.NumberFormat
		want   string
	}{
		{5, doc.NumberUpperRoman, "V"},
		{4, doc.NumberLowerRoman, "iv"},
		{1994, doc.NumberLowerRoman, "mcmxciv"},
		{0, doc.NumberDecimal, "1"},   // clamp at format time
		{-3, doc.NumberLowerRoman, "i"},
		{4000, doc.NumberLowerRoman, "4000"}, // out of roman range, decimal fallback
		{27, doc.NumberLowerLetter, "aa"},
		{2, doc.NumberUpperLetter, "B"},
		{42, doc.NumberDecimal, "42"},
	}
	for _, c := range cases {
		if got := Format(c.n, c.format); got != c.want {
			t.Fatalf("Format(%d, %v) = %q, want %q", c.n, c.format, got, c.want)
		}
	}
}

// TestRomanRoundTrip checks toRoman/FromRoman over the whole valid range.
func TestRomanRoundTrip(t *testing.T) {
	for n := 1; n <= 3999; n++ {
		s, ok := toRoman(n)
		if !ok {
			t.Fatalf("toRoman(%d) unexpectedly failed", n)
		}
		back, ok := FromRoman(s)
		if !ok || back != n {
			t.Fatalf("FromRoman(%q) = (%d, %v), want %d", s, back, ok, n)
		}
	}
	for _, bad := range []string{"", "vx", "abc"} {
		if _, ok := FromRoman(bad); ok {
			t.Fatalf("FromRoman(%q) should fail", bad)
		}
	}
}

// TestAlphaRoundTrip checks the bijective base-26 letter encoding.
func TestAlphaRoundTrip(t *testing.T) {
	fixed := map[int]string{1: "a", 26: "z", 27: "aa", 52: "az", 53: "ba", 702: "zz", 703: "aaa"}
	for n, want := range fixed {
		if got := ToAlpha(n); got != want {
			t.Fatalf("ToAlpha(%d) = %q, want %q", n, got, want)
		}
	}
	for n := 1; n <= 10000; n++ {
		back, ok := FromAlpha(ToAlpha(n))
		if !ok || back != n {
			t.Fatalf("alpha round trip failed for %d: got (%d, %v)", n, back, ok)
		}
	}
	if _, ok := FromAlpha("a1"); ok {
		t.Fatalf("FromAlpha should reject non-letter input")
	}
}

// TestDisplayNumbersRestartAndCarry walks a three-section document:
// roman front matter, a restarted decimal body and a restarted appendix.
func TestDisplayNumbersRestartAndCarry(t *testing.T) {
	res := &layout.Result{
		Sections: []layout.SectionInfo{
			{Numbering: doc.Numbering{Format: doc.NumberLowerRoman, Restart: restart(1)}},
			{Numbering: doc.Numbering{Format: doc.NumberDecimal, Restart: restart(1)}},
			{Numbering: doc.Numbering{Format: doc.NumberDecimal, Restart: restart(1)}},
		},
		Pages: []layout.Page{
			{Number: 1, Section: 0}, {Number: 2, Section: 0},
			{Number: 3, Section: 1}, {Number: 4, Section: 1},
			{Number: 5, Section: 2},
		},
	}
	got := DisplayNumbers(res)
	want := []string{"i", "ii", "1", "2", "1"}
	if len(got) != len(want) {
		t.Fatalf("expected %d display pages, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].Text != w {
			t.Fatalf("page %d display text = %q, want %q", i+1, got[i].Text, w)
		}
		if got[i].Physical != i+1 {
			t.Fatalf("page %d physical number = %d", i+1, got[i].Physical)
		}
	}
}

// TestDisplayNumbersCarryOver checks that a section without an explicit
// restart continues the running counter, keeping its own format.
func TestDisplayNumbersCarryOver(t *testing.T) {
	res := &layout.Result{
		Sections: []layout.SectionInfo{
			{Numbering: doc.Numbering{Format: doc.NumberDecimal, Restart: restart(1)}},
			{Numbering: doc.Numbering{Format: doc.NumberUpperRoman}}, // no restart
		},
		Pages: []layout.Page{
			{Number: 1, Section: 0}, {Number: 2, Section: 0}, {Number: 3, Section: 1},
		},
	}
	got := DisplayNumbers(res)
	want := []string{"1", "2", "III"}
	for i, w := range want {
		if got[i].Text != w {
			t.Fatalf("page %d display text = %q, want %q", i+1, got[i].Text, w)
		}
	}
}

// TestDisplayNumbersEmpty returns nil for an empty layout.
func TestDisplayNumbersEmpty(t *testing.T) {
	if got := DisplayNumbers(nil); got != nil {
		t.Fatalf("nil result should yield nil, got %v", got)
	}
	if got := DisplayNumbers(&layout.Result{}); got != nil {
		t.Fatalf("empty result should yield nil, got %v", got)
	}
}
