package layout

// 分页器：持有页/栏游标，按需建页、在溢出时推进栏或页，
// 并在换页边界提交挂起的分节状态。

// pageState 是当前页/栏游标。建页时创建，放置块时原地推进，
// 页面定稿进入输出后丢弃。
type pageState struct {
	page          *Page
	cursorY       float64
	column        int
	topMargin     float64
	contentBottom float64
	// regionTop 是当前栏区的顶：通常等于上边距，连续分节的
	// 页内分栏变化会把它推到边界处。
	regionTop float64
	// boundaries 记录页内仍然生效的栏区边界（自上而下）。
	boundaries []float64
	// trailingSpacing 是上一个块遗留的段后间距，与下一块的段前间距折叠。
	trailingSpacing float64
	// lastStyle 是最近放置段落的样式 id，同样式相邻段落的间距会被吸收。
	lastStyle string
}

// remaining 返回当前栏剩余的内容高度。
func (st *pageState) remaining() float64 {
	return st.contentBottom - st.cursorY
}

type paginator struct {
	state     SectionState
	floats    *floatManager
	onNewPage func(page *Page)

	pages   []*Page
	cur     *pageState
	section int
}

func newPaginator(state SectionState, floats *floatManager, onNewPage func(*Page)) *paginator {
	p := &paginator{state: state, floats: floats, onNewPage: onNewPage}
	geom := state.Active
	floats.SetContext(geom.Size, geom.Margins, geom.Columns)
	return p
}

// ensurePage 返回当前页游标，首页惰性创建。
func (p *paginator) ensurePage() *pageState {
	if p.cur == nil {
		p.cur = p.newPage()
	}
	return p.cur
}

// newPage 开启新页：先把挂起的分节状态提交为活动状态，再按活动几何建页，
// 最后触发 OnNewPage 钩子。
func (p *paginator) newPage() *pageState {
	p.state = p.state.ApplyPending()
	geom := p.state.Active
	p.floats.SetContext(geom.Size, geom.Margins, geom.Columns)

	page := &Page{
		Number:      len(p.pages) + 1,
		Size:        geom.Size,
		Margins:     geom.Margins,
		Orientation: geom.Orientation,
		Section:     p.section,
	}
	p.pages = append(p.pages, page)

	st := &pageState{
		page:          page,
		cursorY:       geom.Margins.Top,
		topMargin:     geom.Margins.Top,
		contentBottom: geom.Size.H - geom.Margins.Bottom,
		regionTop:     geom.Margins.Top,
	}
	p.cur = st
	if p.onNewPage != nil {
		p.onNewPage(page)
	}
	return st
}

// forcePage 强制换页并满足奇偶性要求，必要时留出一个空白页。
func (p *paginator) forcePage(parity PageParity) *pageState {
	st := p.newPage()
	if parityMismatch(st.page.Number, parity) {
		st = p.newPage()
	}
	return st
}

func parityMismatch(number int, parity PageParity) bool {
	switch parity {
	case ParityEven:
		return number%2 != 0
	case ParityOdd:
		return number%2 != 1
	default:
		return false
	}
}

// advanceColumn 推进到下一栏；栏用尽时开新页（在该边界提交挂起的节状态）。
func (p *paginator) advanceColumn(st *pageState) *pageState {
	cols := p.state.Active.Columns.Count
	if cols < 1 {
		cols = 1
	}
	if st.column+1 < cols {
		st.column++
		st.cursorY = st.regionTop
		st.trailingSpacing = 0
		st.lastStyle = ""
		return st
	}
	return p.newPage()
}

// beginColumnRegion 处理连续分节的分栏变化：保持当前页，在游标处落下
// 栏区边界，提交挂起几何后从第 0 栏继续。
func (p *paginator) beginColumnRegion() *pageState {
	st := p.ensurePage()
	p.state = p.state.ApplyPending()
	geom := p.state.Active
	p.floats.SetContext(geom.Size, geom.Margins, geom.Columns)

	st.boundaries = append(st.boundaries, st.cursorY)
	st.regionTop = st.cursorY
	st.column = 0
	st.trailingSpacing = 0
	st.lastStyle = ""
	return st
}

// columnX 返回第 index 栏的水平原点（活动几何）。
func (p *paginator) columnX(index int) float64 {
	return p.floats.columnX(index)
}

// columnWidth 返回活动几何下的单栏宽度。
func (p *paginator) columnWidth() float64 {
	return p.floats.columnWidth()
}
