package metrics

import "testing"

// countingMeasurer 记录每次冷测量调用，用于验证缓存命中。
type countingMeasurer struct {
	charCalls int
	fontCalls int
	known     map[string]bool
}

func (m *countingMeasurer) MeasureChar(fontKey string, r rune) (float64, bool) {
	m.charCalls++
	if !m.known[fontKey] {
		return 0, false
	}
	return 2, true
}

func (m *countingMeasurer) FontMetrics(fontKey string) (FontMetrics, bool) {
	m.fontCalls++
	if !m.known[fontKey] {
		return FontMetrics{}, false
	}
	return FontMetrics{LineHeight: 5, AvgCharWidth: 2, Ascent: 4}, true
}

// TestCacheMemoizesCharWidth 验证同一 (字体, 字符) 只触发一次冷测量。
func TestCacheMemoizesCharWidth(t *testing.T) {
	m := &countingMeasurer{known: map[string]bool{"A|10": true}}
	c := NewCache(m)
	for i := 0; i < 5; i++ {
		if w := c.MeasureChar("A|10", 'x'); w != 2 {
			t.Fatalf("字符宽度期望 2，实际 %g", w)
		}
	}
	if m.charCalls != 1 {
		t.Fatalf("冷测量应只调用一次，实际 %d 次", m.charCalls)
	}
}

// TestCacheMemoizesFontMetrics 验证字体行度量只冷测量一次。
func TestCacheMemoizesFontMetrics(t *testing.T) {
	m := &countingMeasurer{known: map[string]bool{"A|10": true}}
	c := NewCache(m)
	for i := 0; i < 5; i++ {
		fm, ok := c.Metrics("A|10")
		if !ok || fm.LineHeight != 5 {
			t.Fatalf("行度量期望 (5, true)，实际 (%g, %v)", fm.LineHeight, ok)
		}
	}
	if m.fontCalls != 1 {
		t.Fatalf("字体冷测量应只调用一次，实际 %d 次", m.fontCalls)
	}
}

// TestCacheUnknownFont 验证不可用字体返回零宽与 false，且负结果同样被缓存。
func TestCacheUnknownFont(t *testing.T) {
	m := &countingMeasurer{known: map[string]bool{}}
	c := NewCache(m)
	if w := c.MeasureChar("Missing|10", 'x'); w != 0 {
		t.Fatalf("未知字体字符宽度应为 0，实际 %g", w)
	}
	if _, ok := c.Metrics("Missing|10"); ok {
		t.Fatalf("未知字体行度量应返回 false")
	}
	if m.fontCalls != 1 {
		t.Fatalf("未知字体的冷测量也应只触发一次，实际 %d 次", m.fontCalls)
	}
}
