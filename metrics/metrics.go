// Package metrics 提供字符宽度与行高的记忆化缓存。
// 真正的测量能力由外部 Measurer 注入（例如 metrics/canvas），
// 缓存按 (fontKey, rune) 记忆字符宽度，按 fontKey 记忆派生的行度量。
package metrics

// FontMetrics 是某个字体键的派生度量（mm）。
type FontMetrics struct {
	LineHeight   float64
	AvgCharWidth float64
	Ascent       float64
}

// Measurer 是冷测量能力：由具体字体后端实现。
type Measurer interface {
	// MeasureChar 返回单个字符的前进宽度（mm）。字体不可用时返回 0 与 false。
	MeasureChar(fontKey string, r rune) (float64, bool)
	// FontMetrics 返回字体键的行度量。字体不可用时返回零值与 false。
	FontMetrics(fontKey string) (FontMetrics, bool)
}

type charKey struct {
	font string
	r    rune
}

// Cache 记忆化 Measurer 的结果。不做淘汰：键空间受字体与字符词表约束。
// 非并发安全，一次布局运行应独占一个实例。
type Cache struct {
	measurer Measurer
	chars    map[charKey]float64
	fonts    map[string]FontMetrics
	known    map[string]bool
}

// NewCache 用给定的测量后端创建缓存。
func NewCache(m Measurer) *Cache {
	return &Cache{
		measurer: m,
		chars:    map[charKey]float64{},
		fonts:    map[string]FontMetrics{},
		known:    map[string]bool{},
	}
}

// MeasureChar 返回字符宽度，首次访问某字体键时触发冷测量并缓存派生度量。
// 字体不可用时返回 0。
func (c *Cache) MeasureChar(fontKey string, r rune) float64 {
	key := charKey{font: fontKey, r: r}
	if w, ok := c.chars[key]; ok {
		return w
	}
	c.ensureFont(fontKey)
	w, ok := c.measurer.MeasureChar(fontKey, r)
	if !ok {
		w = 0
	}
	c.chars[key] = w
	return w
}

// Metrics 返回字体键的行度量；字体不可用时第二个返回值为 false。
func (c *Cache) Metrics(fontKey string) (FontMetrics, bool) {
	c.ensureFont(fontKey)
	m, ok := c.fonts[fontKey]
	return m, ok
}

func (c *Cache) ensureFont(fontKey string) {
	if c.known[fontKey] {
		return
	}
	c.known[fontKey] = true
	if m, ok := c.measurer.FontMetrics(fontKey); ok {
		c.fonts[fontKey] = m
	}
}
