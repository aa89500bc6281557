// Package paragraph 实现单个段落的同步贪心断行：从左到右累计字符宽度，
// 超宽时回退到最近的断点（空格/制表符/连字符），没有断点时在当前字符处硬断。
// 所有宽度来自 metrics.Cache，本包不接触字体文件。
package paragraph

import (
	"math"

	"github.com/ByLCY/folio/doc"
	"github.com/ByLCY/folio/metrics"
)

// 默认制表位间隔（mm），约合 0.5 英寸。
const tabStop = 12.7

// Line 是断行结果中的一行，Start/End 为段内展平文本的 rune 偏移（左闭右开）。
type Line struct {
	Start  int
	End    int
	Width  float64
	Height float64
}

// Result 是一次断行的完整结果。
// 不变式：TotalHeight == Σ Lines[i].Height；Width == max(Lines[i].Width)。
type Result struct {
	Lines       []Line
	TotalHeight float64
	Width       float64
}

// Engine 绑定一个度量缓存，提供断行与估算入口。
type Engine struct {
	cache *metrics.Cache
}

// New 创建断行引擎。
func New(cache *metrics.Cache) *Engine {
	return &Engine{cache: cache}
}

// Cache 返回底层度量缓存。
func (e *Engine) Cache() *metrics.Cache { return e.cache }

// styledRune 是展平后的一个字符：携带其字体键。
type styledRune struct {
	r    rune
	font string
}

// Layout 对统一字体的文本断行。maxWidth <= 0 或空文本返回零行零高零宽。
func (e *Engine) Layout(text, fontKey string, maxWidth float64) Result {
	runes := []rune(text)
	chars := make([]styledRune, len(runes))
	for i, r := range runes {
		chars[i] = styledRune{r: r, font: fontKey}
	}
	return e.breakChars(chars, maxWidth)
}

// LayoutRuns 对混合字体的段落断行。Run 序列被展平为带字体的字符序列，
// 占位符按其占位文本参与测量。
func (e *Engine) LayoutRuns(runs []doc.Run, maxWidth float64) Result {
	var chars []styledRune
	for _, run := range runs {
		font := run.FontKey()
		for _, r := range run.Text() {
			chars = append(chars, styledRune{r: r, font: font})
		}
	}
	return e.breakChars(chars, maxWidth)
}

// EstimateHeight 用平均字符宽度做 O(1) 高度估算，供滚动/虚拟化使用，
// 不是精确布局。
func (e *Engine) EstimateHeight(textLength int, fontKey string, maxWidth float64) float64 {
	if textLength <= 0 || maxWidth <= 0 {
		return 0
	}
	fm, ok := e.cache.Metrics(fontKey)
	if !ok || fm.AvgCharWidth <= 0 {
		return 0
	}
	perLine := math.Max(1, math.Floor(maxWidth/fm.AvgCharWidth))
	lines := math.Ceil(float64(textLength) / perLine)
	return lines * fm.LineHeight
}

func (e *Engine) breakChars(chars []styledRune, maxWidth float64) Result {
	if maxWidth <= 0 || len(chars) == 0 {
		return Result{}
	}

	var res Result
	n := len(chars)
	pos := 0
	wrapped := false // 上一行是否由折行产生（而非显式换行/段首）

	for pos < n {
		// 折行产生的新行跳过行首空格，不计入宽度；跳过的偏移并入上一行。
		if wrapped {
			for pos < n && chars[pos].r == ' ' {
				pos++
			}
			if last := len(res.Lines) - 1; last >= 0 {
				res.Lines[last].End = pos
			}
			if pos >= n {
				break
			}
		}

		start := pos
		width := 0.0
		lastBreak := -1
		lastBreakWidth := 0.0
		newline := false

		for pos < n {
			c := chars[pos]
			if c.r == '\n' {
				// 显式换行立即结束当前行，换行符自身宽度不计入。
				pos++
				newline = true
				break
			}
			cw := e.advance(c, width)
			if width+cw > maxWidth && width > 0 {
				if lastBreak >= start {
					// 回退到最近断点，断点字符保留在当前行。
					pos = lastBreak + 1
					width = lastBreakWidth
				}
				break
			}
			width += cw
			if c.r == ' ' || c.r == '\t' || c.r == '-' {
				lastBreak = pos
				lastBreakWidth = width
			}
			pos++
		}

		end := pos
		line := Line{Start: start, End: end, Width: width, Height: e.lineHeight(chars, start, end)}
		res.Lines = append(res.Lines, line)
		wrapped = !newline && pos < n
	}

	for _, ln := range res.Lines {
		res.TotalHeight += ln.Height
		if ln.Width > res.Width {
			res.Width = ln.Width
		}
	}
	return res
}

// advance 返回字符在当前行宽 width 处的前进量。制表符推进到下一个制表位。
func (e *Engine) advance(c styledRune, width float64) float64 {
	if c.r == '\t' {
		next := (math.Floor(width/tabStop) + 1) * tabStop
		return next - width
	}
	return e.cache.MeasureChar(c.font, c.r)
}

// lineHeight 取行内所有字体行高的最大值；空行退化为换行符所在字体的行高。
func (e *Engine) lineHeight(chars []styledRune, start, end int) float64 {
	h := 0.0
	for i := start; i < end && i < len(chars); i++ {
		if fm, ok := e.cache.Metrics(chars[i].font); ok && fm.LineHeight > h {
			h = fm.LineHeight
		}
	}
	if h == 0 && start < len(chars) {
		if fm, ok := e.cache.Metrics(chars[start].font); ok {
			h = fm.LineHeight
		}
	}
	return h
}
