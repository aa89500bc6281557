package paragraph

import (
	"fmt"

	"github.com/ByLCY/folio/doc"
)

// 单元格内边距（mm），与布局阶段的表格留白保持一致。
const cellPadding = 1.2

// 列表记号与正文之间的间隙（mm）。
const markerGap = 2.0

// MeasureBlocks 对整个块序列做度量，产出与 blocks 下标对齐的 Measure 序列。
// contentWidth 是段落可用的栏宽（mm）。
func (e *Engine) MeasureBlocks(blocks []doc.Block, contentWidth float64) ([]doc.Measure, error) {
	measures := make([]doc.Measure, len(blocks))
	for i, b := range blocks {
		m, err := e.measureBlock(b, contentWidth, 0)
		if err != nil {
			return nil, fmt.Errorf("度量块 %s 失败: %w", b.ID(), err)
		}
		measures[i] = m
	}
	return measures, nil
}

// Remeasure 实现 doc.RemeasureFunc，供调用方在收敛循环中重测单个块。
func (e *Engine) Remeasure(block doc.Block, maxWidth, firstLineIndent float64) doc.Measure {
	m, err := e.measureBlock(block, maxWidth, firstLineIndent)
	if err != nil {
		return &doc.ParagraphMeasure{}
	}
	return m
}

func (e *Engine) measureBlock(b doc.Block, contentWidth, firstLineIndent float64) (doc.Measure, error) {
	switch b := b.(type) {
	case *doc.Paragraph:
		return e.measureParagraph(b, contentWidth, firstLineIndent, nil), nil
	case *doc.List:
		marker := e.measureMarker(b)
		return e.measureParagraph(&b.Paragraph, contentWidth-marker.Width-markerGap, firstLineIndent, marker), nil
	case *doc.Image:
		return &doc.BoxMeasure{Width: b.Width, Height: b.Height}, nil
	case *doc.Drawing:
		return &doc.BoxMeasure{Width: b.Width, Height: b.Height}, nil
	case *doc.Table:
		return e.measureTable(b, contentWidth)
	case *doc.SectionBreak:
		return &doc.SectionMeasure{}, nil
	default:
		return nil, fmt.Errorf("未知的块类型 %T", b)
	}
}

func (e *Engine) measureParagraph(p *doc.Paragraph, width, firstLineIndent float64, marker *doc.MarkerMeasure) *doc.ParagraphMeasure {
	indent := firstLineIndent
	if indent == 0 {
		indent = p.FirstLineIndent
	}
	// 首行缩进：以缩进后的宽度断行首行，其余行用全宽。贪心断行本身不感知
	// 缩进，这里用两段式近似：先按收窄宽度断出首行，再对剩余文本按全宽断行。
	res := e.LayoutRuns(p.Runs, width)
	if indent > 0 && len(res.Lines) > 0 {
		first := e.LayoutRuns(p.Runs, width-indent)
		if len(first.Lines) > 0 {
			rest := e.layoutTail(p.Runs, first.Lines[0].End, width)
			res = spliceLines(first.Lines[0], rest)
		}
	}

	m := &doc.ParagraphMeasure{Marker: marker}
	for _, ln := range res.Lines {
		m.Lines = append(m.Lines, doc.LineMeasure{Start: ln.Start, End: ln.End, Width: ln.Width, Height: ln.Height})
	}
	m.Width = res.Width
	m.Height = res.TotalHeight
	return m
}

// layoutTail 对展平文本中 from 偏移之后的部分断行，偏移整体平移回段内坐标。
func (e *Engine) layoutTail(runs []doc.Run, from int, width float64) Result {
	text := ""
	for _, r := range runs {
		text += r.Text()
	}
	runes := []rune(text)
	if from >= len(runes) {
		return Result{}
	}
	// 尾部按逐字符字体展平重建。
	var chars []styledRune
	idx := 0
	for _, run := range runs {
		font := run.FontKey()
		for _, r := range run.Text() {
			if idx >= from {
				chars = append(chars, styledRune{r: r, font: font})
			}
			idx++
		}
	}
	res := e.breakChars(chars, width)
	for i := range res.Lines {
		res.Lines[i].Start += from
		res.Lines[i].End += from
	}
	return res
}

func spliceLines(first Line, rest Result) Result {
	out := Result{Lines: append([]Line{first}, rest.Lines...)}
	for _, ln := range out.Lines {
		out.TotalHeight += ln.Height
		if ln.Width > out.Width {
			out.Width = ln.Width
		}
	}
	return out
}

func (e *Engine) measureMarker(b *doc.List) *doc.MarkerMeasure {
	font := ""
	if len(b.Runs) > 0 {
		font = b.Runs[0].FontKey()
	}
	res := e.Layout(b.Marker, font, 1e9)
	return &doc.MarkerMeasure{Width: res.Width, Height: res.TotalHeight}
}

func (e *Engine) measureTable(b *doc.Table, contentWidth float64) (*doc.TableMeasure, error) {
	cols := b.Columns
	if cols <= 0 {
		for _, row := range b.Rows {
			if len(row.Cells) > cols {
				cols = len(row.Cells)
			}
		}
	}
	if cols == 0 {
		return nil, fmt.Errorf("表格 %s 没有任何单元格", b.BlockID)
	}
	width := b.Width
	if width <= 0 || width > contentWidth {
		width = contentWidth
	}
	colWidth := width / float64(cols)
	m := &doc.TableMeasure{Width: width}
	for i := 0; i < cols; i++ {
		m.ColumnWidths = append(m.ColumnWidths, colWidth)
	}
	cellWidth := colWidth - 2*cellPadding
	if cellWidth <= 0 {
		cellWidth = colWidth
	}
	for _, row := range b.Rows {
		rowHeight := 0.0
		for _, cell := range row.Cells {
			res := e.LayoutRuns(cell.Runs, cellWidth)
			if res.TotalHeight > rowHeight {
				rowHeight = res.TotalHeight
			}
		}
		m.RowHeights = append(m.RowHeights, rowHeight+2*cellPadding)
	}
	return m, nil
}
