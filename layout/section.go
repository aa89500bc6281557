package layout

// 分节调度：分节符携带的几何变更先进入挂起状态，由分页器在下一个
// 页/栏边界提交到活动状态。文档首个分节符直接作用于活动状态——
// 那时还没有任何页面可以推迟到。

import "github.com/ByLCY/folio/doc"

// SectionGeom 是一个节的完整页面几何。
type SectionGeom struct {
	Size        Size
	Margins     Margins
	Columns     Columns
	Orientation Orientation
}

// SectionState 是分节状态机的状态：活动值与挂起值。
// 状态以函数式方式穿过整个文档遍历，每次迁移返回新状态。
type SectionState struct {
	Active  SectionGeom
	Pending *SectionGeom
}

// PageParity 是强制换页时对新页号奇偶性的要求。
type PageParity int

const (
	ParityAny PageParity = iota
	ParityEven
	ParityOdd
)

// BreakDecision 是分节符的换页决定。
type BreakDecision struct {
	// ForcePage 要求换页，Parity 限定新页奇偶性。
	ForcePage bool
	Parity    PageParity
	// ColumnRegion 表示连续分节的分栏变化：保持当前页，在页内开启新栏区。
	ColumnRegion bool
}

// NewSectionState 以初始几何建立活动状态。
func NewSectionState(size Size, margins Margins, cols Columns) SectionState {
	return SectionState{Active: SectionGeom{Size: size, Margins: margins.Clamp(), Columns: cols}}
}

// ScheduleSectionBreak 处理一个分节符：计算挂起几何并给出换页决定。
// baseMargins 是未被任何节覆盖过的文档基准边距；headerContentHeight /
// footerContentHeight 用于抬高上下边距，保证正文不与页眉页脚内容重叠。
func ScheduleSectionBreak(sb *doc.SectionBreak, st SectionState, baseMargins Margins, headerContentHeight, footerContentHeight float64) (BreakDecision, SectionState) {
	next := resolveGeom(st.Active, sb.Props, baseMargins, headerContentHeight, footerContentHeight)

	var dec BreakDecision
	columnsChanged := next.Columns != st.Active.Columns

	switch sb.Type {
	case doc.SectionNextPage:
		dec.ForcePage = true
	case doc.SectionEvenPage:
		dec.ForcePage = true
		dec.Parity = ParityEven
	case doc.SectionOddPage:
		dec.ForcePage = true
		dec.Parity = ParityOdd
	case doc.SectionContinuous:
		if columnsChanged {
			dec.ColumnRegion = true
		}
	}
	if sb.RequirePageBoundary {
		dec.ForcePage = true
		dec.ColumnRegion = false
	}

	if sb.First {
		// 首个分节符：尚无页面，直接生效，不进入挂起阶段。
		st.Active = next
		st.Pending = nil
		return BreakDecision{}, st
	}

	st.Pending = &next
	return dec, st
}

// ApplyPending 把挂起字段全部提交到活动状态并清空挂起。
// 分页器在每个换页/换栏区边界恰好调用一次。
func (st SectionState) ApplyPending() SectionState {
	if st.Pending != nil {
		st.Active = *st.Pending
		st.Pending = nil
	}
	return st
}

// Geom 返回当前应当用于开新页的几何：有挂起值用挂起值，否则用活动值。
func (st SectionState) Geom() SectionGeom {
	if st.Pending != nil {
		return *st.Pending
	}
	return st.Active
}

func resolveGeom(active SectionGeom, props doc.SectionProps, base Margins, headerH, footerH float64) SectionGeom {
	next := active

	if props.PageWidth != nil {
		next.Size.W = *props.PageWidth
	}
	if props.PageHeight != nil {
		next.Size.H = *props.PageHeight
	}
	if props.Landscape != nil {
		want := Portrait
		if *props.Landscape {
			want = Landscape
		}
		if want != next.Orientation {
			next.Orientation = want
			next.Size.W, next.Size.H = next.Size.H, next.Size.W
		}
	}

	m := base
	if props.MarginTop != nil {
		m.Top = *props.MarginTop
	}
	if props.MarginRight != nil {
		m.Right = *props.MarginRight
	}
	if props.MarginBottom != nil {
		m.Bottom = *props.MarginBottom
	}
	if props.MarginLeft != nil {
		m.Left = *props.MarginLeft
	}
	if props.HeaderDistance != nil {
		m.Header = *props.HeaderDistance
	}
	if props.FooterDistance != nil {
		m.Footer = *props.FooterDistance
	}
	m = m.Clamp()
	// 上边距至少容纳页眉距加页眉内容高，下边距同理，正文不得侵入页眉页脚。
	if min := m.Header + headerH; m.Top < min {
		m.Top = min
	}
	if min := m.Footer + footerH; m.Bottom < min {
		m.Bottom = min
	}
	next.Margins = m

	if props.ColumnCount != nil {
		next.Columns.Count = *props.ColumnCount
	}
	if props.ColumnGap != nil {
		next.Columns.Gap = *props.ColumnGap
	}
	return next
}
