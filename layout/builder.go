package layout

// 布局编排：按序成对遍历 blocks/measures，按块类型分派放置逻辑，
// 借助分页器与浮动对象管理器产出最终 Result。

import (
	"errors"
	"fmt"

	"github.com/ByLCY/folio/doc"
)

// 列表记号与正文的间隙（mm）。
const listMarkerGap = 2.0

// 表格单元格内边距（mm）。
const tableCellPadding = 1.2

// ErrMismatchedMeasures 表示 blocks 与 measures 长度不一致（输入契约违约）。
var ErrMismatchedMeasures = errors.New("layout: blocks 与 measures 长度不一致")

// Build 对整个块序列分页。blocks 与 measures 必须按下标对齐，
// 违反时立即失败而不是悄悄排错版。
func Build(blocks []doc.Block, measures []doc.Measure, opts Options) (*Result, error) {
	if len(blocks) != len(measures) {
		return nil, fmt.Errorf("%w: %d != %d", ErrMismatchedMeasures, len(blocks), len(measures))
	}
	if opts.PageSize.W <= 0 || opts.PageSize.H <= 0 {
		return nil, fmt.Errorf("layout: 页面尺寸退化 %gx%g", opts.PageSize.W, opts.PageSize.H)
	}
	if opts.Columns.Count < 1 {
		opts.Columns.Count = 1
	}
	opts.Margins = opts.Margins.Clamp()

	floats := &floatManager{}
	floats.Clear()
	state := NewSectionState(opts.PageSize, opts.Margins, opts.Columns)
	pag := newPaginator(state, floats, opts.OnNewPage)

	b := &builder{
		pag:    pag,
		floats: floats,
		opts:   opts,
		base:   opts.Margins,
		res: &Result{
			Sections: []SectionInfo{{Numbering: doc.Numbering{Format: doc.NumberDecimal}}},
		},
	}

	for i, block := range blocks {
		if err := b.place(block, measures[i]); err != nil {
			return nil, err
		}
	}

	for _, page := range pag.pages {
		b.res.Pages = append(b.res.Pages, *page)
	}
	return b.res, nil
}

type builder struct {
	pag    *paginator
	floats *floatManager
	opts   Options
	base   Margins
	res    *Result
}

func (b *builder) place(block doc.Block, measure doc.Measure) error {
	switch blk := block.(type) {
	case *doc.Paragraph:
		m, ok := measure.(*doc.ParagraphMeasure)
		if !ok {
			return b.skipMismatch(block, measure)
		}
		b.placeParagraph(blk, m, 0)
	case *doc.List:
		m, ok := measure.(*doc.ParagraphMeasure)
		if !ok {
			return b.skipMismatch(block, measure)
		}
		indent := 0.0
		if m.Marker != nil {
			indent = m.Marker.Width + listMarkerGap
		}
		b.placeParagraph(&blk.Paragraph, m, indent)
	case *doc.Image:
		m, ok := measure.(*doc.BoxMeasure)
		if !ok {
			return b.skipMismatch(block, measure)
		}
		b.placeImage(blk, m)
	case *doc.Drawing:
		m, ok := measure.(*doc.BoxMeasure)
		if !ok {
			return b.skipMismatch(block, measure)
		}
		b.placeDrawing(blk, m)
	case *doc.Table:
		m, ok := measure.(*doc.TableMeasure)
		if !ok {
			return b.skipMismatch(block, measure)
		}
		b.placeTable(blk, m)
	case *doc.SectionBreak:
		b.placeSectionBreak(blk)
	default:
		Logger().Warn("跳过未知的块类型", "block", block.ID(), "type", fmt.Sprintf("%T", block))
	}
	return nil
}

// skipMismatch 属于可恢复的数据缺口：告警并跳过该块，不中断整次布局。
func (b *builder) skipMismatch(block doc.Block, measure doc.Measure) error {
	Logger().Warn("块与度量类型不匹配，跳过",
		"block", block.ID(),
		"blockType", fmt.Sprintf("%T", block),
		"measureType", fmt.Sprintf("%T", measure))
	return nil
}

// applySpacing 折叠上一块遗留的段后间距与本块段前间距；同样式相邻段落
// 之间的间距被吸收。栏顶不加间距。
func (b *builder) applySpacing(st *pageState, before float64, styleID string) {
	if st.cursorY <= st.regionTop {
		return
	}
	spacing := st.trailingSpacing
	if before > spacing {
		spacing = before
	}
	if styleID != "" && styleID == st.lastStyle {
		spacing = 0
	}
	if spacing > 0 && spacing <= st.remaining() {
		st.cursorY += spacing
	}
}

func (b *builder) placeParagraph(p *doc.Paragraph, m *doc.ParagraphMeasure, markerIndent float64) {
	st := b.pag.ensurePage()
	b.applySpacing(st, p.SpacingBefore, p.StyleID)

	var frag *Fragment
	closeFrag := func() {
		if frag != nil {
			st.page.Fragments = append(st.page.Fragments, *frag)
			frag = nil
		}
	}

	idx := 0
	for idx < len(m.Lines) {
		ln := m.Lines[idx]
		if ln.Height > st.remaining() && st.cursorY > st.regionTop {
			closeFrag()
			st = b.pag.advanceColumn(st)
			continue
		}
		// 栏顶仍放不下的行直接放置：单行高于整栏属于退化几何，不死循环。

		avail, offset := b.floats.AvailableWidth(st.cursorY, ln.Height, st.column, st.page.Number)
		x := b.pag.columnX(st.column) + offset + markerIndent
		width := ln.Width
		if width > avail {
			width = avail
		}

		if frag == nil {
			frag = &Fragment{
				BlockID:     p.BlockID,
				Kind:        FragmentText,
				X:           x,
				Y:           st.cursorY,
				Column:      st.column,
				LineStart:   idx,
				LineEnd:     idx,
				OffsetStart: p.Start + ln.Start,
			}
		}
		if width > frag.Width {
			frag.Width = width
		}
		frag.Height += ln.Height
		frag.LineEnd = idx + 1
		frag.OffsetEnd = p.Start + ln.End

		st.cursorY += ln.Height
		idx++
	}
	closeFrag()

	st.trailingSpacing = p.SpacingAfter
	st.lastStyle = p.StyleID
}

func (b *builder) placeImage(img *doc.Image, m *doc.BoxMeasure) {
	st := b.pag.ensurePage()
	b.applySpacing(st, 0, "")

	w, h := m.Width, m.Height
	for h > st.remaining() && st.cursorY > st.regionTop {
		st = b.pag.advanceColumn(st)
	}
	avail, offset := b.floats.AvailableWidth(st.cursorY, h, st.column, st.page.Number)
	if w > avail {
		w = avail
	}
	st.page.Fragments = append(st.page.Fragments, Fragment{
		BlockID: img.BlockID,
		Kind:    FragmentImage,
		X:       b.pag.columnX(st.column) + offset,
		Y:       st.cursorY,
		Width:   w,
		Height:  h,
		Column:  st.column,
	})
	st.cursorY += h
	st.trailingSpacing = 0
	st.lastStyle = ""
}

func (b *builder) placeDrawing(d *doc.Drawing, m *doc.BoxMeasure) {
	st := b.pag.ensurePage()

	if zone := b.floats.RegisterDrawing(d, m, st.cursorY, st.column, st.page.Number); zone != nil {
		// 浮动对象不占用正文流高度，片段按排除区几何落位。
		st.page.Fragments = append(st.page.Fragments, Fragment{
			BlockID: d.BlockID,
			Kind:    FragmentDrawing,
			X:       zone.X,
			Y:       zone.Y,
			Width:   zone.Width,
			Height:  zone.Height,
			Column:  st.column,
		})
		return
	}

	b.applySpacing(st, 0, "")
	w, h := b.scaleToColumn(st, m.Width, m.Height)
	for h > st.remaining() && st.cursorY > st.regionTop {
		st = b.pag.advanceColumn(st)
	}
	// 仍然过高时只压高度，先宽后高，绝不反向，也绝不放大。
	if h > st.remaining() {
		h = st.remaining()
	}
	st.page.Fragments = append(st.page.Fragments, Fragment{
		BlockID: d.BlockID,
		Kind:    FragmentDrawing,
		X:       b.pag.columnX(st.column),
		Y:       st.cursorY,
		Width:   w,
		Height:  h,
		Column:  st.column,
	})
	st.cursorY += h
	st.trailingSpacing = 0
	st.lastStyle = ""
}

// scaleToColumn 把宽度压进当前栏可用宽度并按比例缩高，只缩不放。
func (b *builder) scaleToColumn(st *pageState, w, h float64) (float64, float64) {
	avail, _ := b.floats.AvailableWidth(st.cursorY, h, st.column, st.page.Number)
	if w > avail && w > 0 {
		scale := avail / w
		w = avail
		h *= scale
	}
	return w, h
}

func (b *builder) placeTable(t *doc.Table, m *doc.TableMeasure) {
	st := b.pag.ensurePage()

	if zone := b.floats.RegisterTable(t, m, st.cursorY, st.column, st.page.Number); zone != nil {
		st.page.Fragments = append(st.page.Fragments, Fragment{
			BlockID:  t.BlockID,
			Kind:     FragmentTable,
			X:        zone.X,
			Y:        zone.Y,
			Width:    zone.Width,
			Height:   zone.Height,
			Column:   st.column,
			RowStart: 0,
			RowEnd:   len(m.RowHeights),
		})
		return
	}

	b.applySpacing(st, 0, "")

	width := m.Width
	scale := 1.0
	if avail, _ := b.floats.AvailableWidth(st.cursorY, 1, st.column, st.page.Number); width > avail && width > 0 {
		scale = avail / width
		width = avail
	}

	allowRowBreak := b.opts.TableRowBreak == RowBreakAllow

	var frag *Fragment
	closeFrag := func() {
		if frag != nil {
			st.page.Fragments = append(st.page.Fragments, *frag)
			frag = nil
		}
	}
	openFrag := func(row int) {
		frag = &Fragment{
			BlockID:  t.BlockID,
			Kind:     FragmentTable,
			X:        b.pag.columnX(st.column),
			Y:        st.cursorY,
			Width:    width,
			Column:   st.column,
			RowStart: row,
			RowEnd:   row,
		}
	}

	row := 0
	carry := 0.0 // 行被切分后剩余的高度（仅 allow 模式）
	for row < len(m.RowHeights) {
		rh := m.RowHeights[row] * scale
		if carry > 0 {
			rh = carry
		}
		if rh > st.remaining() {
			if st.cursorY <= st.regionTop {
				// 栏顶仍放不下：整栏都容不下这一行。
				if allowRowBreak && st.remaining() > 0 {
					part := st.remaining()
					if frag == nil {
						openFrag(row)
					}
					frag.Height += part
					st.cursorY += part
					carry = rh - part
					closeFrag()
					st = b.pag.advanceColumn(st)
					continue
				}
				// avoid：整行放置，允许溢出，不死循环。
			} else {
				closeFrag()
				st = b.pag.advanceColumn(st)
				continue
			}
		}
		if frag == nil {
			openFrag(row)
		}
		frag.Height += rh
		st.cursorY += rh
		frag.RowEnd = row + 1
		carry = 0
		row++
	}
	closeFrag()

	st.trailingSpacing = 0
	st.lastStyle = ""
}

func (b *builder) placeSectionBreak(sb *doc.SectionBreak) {
	dec, next := ScheduleSectionBreak(sb, b.pag.state, b.base, b.opts.HeaderContentHeight, b.opts.FooterContentHeight)
	b.pag.state = next

	if sb.First {
		// 首个分节符定义第 0 节：几何已直接生效，编号元数据就地覆盖。
		b.res.Sections[0].Numbering = sb.Numbering
		geom := b.pag.state.Active
		b.floats.SetContext(geom.Size, geom.Margins, geom.Columns)
		return
	}

	b.res.Sections = append(b.res.Sections, SectionInfo{Numbering: sb.Numbering})
	b.pag.section++

	switch {
	case dec.ForcePage:
		b.pag.forcePage(dec.Parity)
	case dec.ColumnRegion:
		b.pag.beginColumnRegion()
	default:
		// 连续分节且无分栏变化：挂起几何在下一个自然换页边界提交。
	}
}

// Box 是页眉/页脚布局的固定内容盒（页面坐标，mm）。
type Box struct {
	X float64
	Y float64
	W float64
	H float64
}

// BuildHeaderFooter 是编排器的受限变体：在固定的单页内容盒里自上而下
// 放置块，不推进页/栏。返回片段与实际内容高度。
func BuildHeaderFooter(blocks []doc.Block, measures []doc.Measure, box Box) ([]Fragment, float64, error) {
	if len(blocks) != len(measures) {
		return nil, 0, fmt.Errorf("%w: %d != %d", ErrMismatchedMeasures, len(blocks), len(measures))
	}
	if box.W <= 0 {
		return nil, 0, fmt.Errorf("layout: 页眉/页脚内容盒宽度退化 %g", box.W)
	}

	var frags []Fragment
	cursorY := box.Y
	for i, block := range blocks {
		switch blk := block.(type) {
		case *doc.Paragraph:
			m, ok := measures[i].(*doc.ParagraphMeasure)
			if !ok {
				Logger().Warn("页眉/页脚度量类型不匹配，跳过", "block", block.ID())
				continue
			}
			if len(m.Lines) == 0 {
				continue
			}
			first := m.Lines[0]
			last := m.Lines[len(m.Lines)-1]
			frags = append(frags, Fragment{
				BlockID:     blk.BlockID,
				Kind:        FragmentText,
				X:           box.X,
				Y:           cursorY,
				Width:       m.Width,
				Height:      m.Height,
				LineStart:   0,
				LineEnd:     len(m.Lines),
				OffsetStart: blk.Start + first.Start,
				OffsetEnd:   blk.Start + last.End,
			})
			cursorY += m.Height
		case *doc.Image:
			m, ok := measures[i].(*doc.BoxMeasure)
			if !ok {
				Logger().Warn("页眉/页脚度量类型不匹配，跳过", "block", block.ID())
				continue
			}
			w, h := m.Width, m.Height
			if w > box.W && w > 0 {
				h *= box.W / w
				w = box.W
			}
			frags = append(frags, Fragment{
				BlockID: blk.BlockID,
				Kind:    FragmentImage,
				X:       box.X,
				Y:       cursorY,
				Width:   w,
				Height:  h,
			})
			cursorY += h
		default:
			Logger().Warn("页眉/页脚不支持的块类型，跳过", "block", block.ID(), "type", fmt.Sprintf("%T", block))
		}
	}
	return frags, cursorY - box.Y, nil
}
