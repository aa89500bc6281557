package layout

// 浮动对象管理：锚定的绘图/表格注册为矩形排除区，
// 正文断行前向本管理器查询某一竖直条带内的可用宽度与起始偏移。

import "github.com/ByLCY/folio/doc"

// 排除区把一行完全挤没时返回的最小可用宽度（mm），避免下游出现除零。
const minLineWidth = 1.0

// floatManager 持有当前布局上下文与本次运行内登记的全部排除区。
// 生命周期为一次 Build：每次重排前必须 Clear，否则残留旧区。
type floatManager struct {
	size    Size
	margins Margins
	cols    Columns
	zones   []ExclusionZone
}

// SetContext 在节级分栏/边距/页宽变更生效时更新上下文，
// 之后登记的排除区与宽度查询都以新上下文计算。
func (f *floatManager) SetContext(size Size, margins Margins, cols Columns) {
	f.size = size
	f.margins = margins
	f.cols = cols
}

// Clear 清空排除区，两次完整布局之间必须调用。
func (f *floatManager) Clear() {
	f.zones = f.zones[:0]
}

// Zones 返回当前全部排除区（只读用途）。
func (f *floatManager) Zones() []ExclusionZone {
	return f.zones
}

// RegisterDrawing 为锚定绘图建立至多一个排除区。
// 环绕为 none 或对象未锚定（随文）时不建区，返回 nil。
func (f *floatManager) RegisterDrawing(b *doc.Drawing, m *doc.BoxMeasure, anchorY float64, column, page int) *ExclusionZone {
	return f.register(b.Float, m.Width, m.Height, anchorY, column, page)
}

// RegisterTable 为锚定表格建立至多一个排除区。
func (f *floatManager) RegisterTable(b *doc.Table, m *doc.TableMeasure, anchorY float64, column, page int) *ExclusionZone {
	return f.register(b.Float, m.Width, m.Height(), anchorY, column, page)
}

func (f *floatManager) register(props *doc.FloatProps, width, height, anchorY float64, column, page int) *ExclusionZone {
	if props == nil || !props.Anchored || props.Wrap == doc.WrapNone {
		return nil
	}
	zone := ExclusionZone{
		X:           f.floatX(props, width, column),
		Y:           anchorY,
		Width:       width,
		Height:      height,
		ClearTop:    props.DistTop,
		ClearBottom: props.DistBottom,
		ClearLeft:   props.DistLeft,
		ClearRight:  props.DistRight,
		Wrap:        props.Wrap,
		Page:        page,
		Column:      column,
	}
	f.zones = append(f.zones, zone)
	return &f.zones[len(f.zones)-1]
}

// floatX 按对齐方式与参照系计算浮动对象的水平位置。
// 单栏文档把 page 参照当作 margin 参照处理（与 Word 行为一致）。
func (f *floatManager) floatX(props *doc.FloatProps, width float64, column int) float64 {
	basis := props.RelativeFrom
	if basis == doc.RelPage && f.columnCount() == 1 {
		basis = doc.RelMargin
	}

	var left, right float64
	switch basis {
	case doc.RelPage:
		left = 0
		right = f.size.W
	case doc.RelMargin:
		left = f.margins.Left
		right = f.size.W - f.margins.Right
	default: // doc.RelColumn
		left = f.columnX(column)
		right = left + f.columnWidth()
	}

	switch props.Align {
	case doc.AlignRight:
		return right - width
	case doc.AlignCenter:
		return left + (right-left-width)/2
	default:
		return left
	}
}

// ExclusionsForBand 返回竖直跨度（按上下间距扩展后）与查询条带相交、
// 且属于同页同栏的排除区。
func (f *floatManager) ExclusionsForBand(y, height float64, column, page int) []ExclusionZone {
	var out []ExclusionZone
	for _, z := range f.zones {
		if z.Page != page || z.Column != column {
			continue
		}
		top := z.Y - z.ClearTop
		bottom := z.Y + z.Height + z.ClearBottom
		if top < y+height && bottom > y {
			out = append(out, z)
		}
	}
	return out
}

// AvailableWidth 计算条带内扣除排除区后的可用行宽与相对栏原点的水平偏移。
// 全部被浮动对象覆盖时返回最小宽度 1、偏移 0，而不是失败。
func (f *floatManager) AvailableWidth(y, height float64, column, page int) (width, offset float64) {
	colLeft := f.columnX(column)
	colRight := colLeft + f.columnWidth()
	colCenter := (colLeft + colRight) / 2

	leftBound := colLeft
	rightBound := colRight
	for _, z := range f.ExclusionsForBand(y, height, column, page) {
		onLeft := false
		switch z.Wrap {
		case doc.WrapLeft:
			onLeft = true
		case doc.WrapRight:
			onLeft = false
		default: // both/largest：按区中心相对栏中心分侧
			onLeft = z.X+z.Width/2 <= colCenter
		}
		if onLeft {
			if b := z.X + z.Width + z.ClearLeft + z.ClearRight; b > leftBound {
				leftBound = b
			}
		} else {
			if b := z.X - z.ClearLeft - z.ClearRight; b < rightBound {
				rightBound = b
			}
		}
	}

	width = rightBound - leftBound
	if width <= 0 {
		return minLineWidth, 0
	}
	return width, leftBound - colLeft
}

func (f *floatManager) columnCount() int {
	if f.cols.Count < 1 {
		return 1
	}
	return f.cols.Count
}

// columnWidth 返回单栏宽度：内容宽扣除栏间距后均分。
func (f *floatManager) columnWidth() float64 {
	count := float64(f.columnCount())
	content := f.size.W - f.margins.Left - f.margins.Right
	w := (content - f.cols.Gap*(count-1)) / count
	if w < 0 {
		return 0
	}
	return w
}

// columnX 返回第 index 栏（0 起）的水平原点。
func (f *floatManager) columnX(index int) float64 {
	return f.margins.Left + float64(index)*(f.columnWidth()+f.cols.Gap)
}
