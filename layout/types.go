package layout

// 该文件定义分页结果与页面几何类型，供布局计算、页码编号与调试 JSON 共用。

import "github.com/ByLCY/folio/doc"

// Size 是页面尺寸（mm）。
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Margins 以毫米为单位。Header/Footer 是页眉/页脚距页边的距离。
type Margins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Header float64 `json:"header,omitempty"`
	Footer float64 `json:"footer,omitempty"`
}

// Clamp 将各边距收敛到非负值。
func (m Margins) Clamp() Margins {
	clamp := func(v float64) float64 {
		if v < 0 {
			return 0
		}
		return v
	}
	return Margins{
		Top:    clamp(m.Top),
		Right:  clamp(m.Right),
		Bottom: clamp(m.Bottom),
		Left:   clamp(m.Left),
		Header: clamp(m.Header),
		Footer: clamp(m.Footer),
	}
}

// Columns 描述分栏版式。Count < 1 视为单栏。
type Columns struct {
	Count int     `json:"count"`
	Gap   float64 `json:"gap"`
}

// Orientation 是页面方向。
type Orientation int

const (
	Portrait Orientation = iota
	Landscape
)

// Result 是分页输出：有序页面列表加按序出现的节信息。
type Result struct {
	Pages    []Page        `json:"pages"`
	Sections []SectionInfo `json:"sections"`
}

// SectionInfo 记录一个节的页码编号元数据，下标即节号。
type SectionInfo struct {
	Numbering doc.Numbering `json:"numbering"`
}

// Page 是一个物理页：几何、所属节与按块顺序排列的片段。
type Page struct {
	Number      int         `json:"number"` // 物理页号，从 1 开始
	Size        Size        `json:"size"`
	Margins     Margins     `json:"margins"`
	Orientation Orientation `json:"orientation"`
	Section     int         `json:"section"`
	Fragments   []Fragment  `json:"fragments"`
}

// FragmentKind 区分片段的内容类别。
type FragmentKind int

const (
	FragmentText FragmentKind = iota
	FragmentImage
	FragmentDrawing
	FragmentTable
)

// Fragment 是一个块（或块的一部分）在某页上的放置记录。
// 段落片段额外记录其覆盖的行号区间与文档偏移区间（左闭右开），
// 供命中测试与页码引用解析使用。
type Fragment struct {
	BlockID string       `json:"blockId"`
	Kind    FragmentKind `json:"kind"`
	X       float64      `json:"x"`
	Y       float64      `json:"y"`
	Width   float64      `json:"width"`
	Height  float64      `json:"height"`
	Column  int          `json:"column"`

	LineStart   int `json:"lineStart,omitempty"`
	LineEnd     int `json:"lineEnd,omitempty"`
	OffsetStart int `json:"offsetStart,omitempty"`
	OffsetEnd   int `json:"offsetEnd,omitempty"`

	// RowStart/RowEnd 是表格片段覆盖的行区间（左闭右开）。
	RowStart int `json:"rowStart,omitempty"`
	RowEnd   int `json:"rowEnd,omitempty"`
}

// ExclusionZone 是一个缩减正文行宽的矩形排除区，由锚定浮动对象产生，
// 作用域为一次布局运行内的某页某栏。
type ExclusionZone struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	ClearTop    float64 `json:"clearTop"`
	ClearBottom float64 `json:"clearBottom"`
	ClearLeft   float64 `json:"clearLeft"`
	ClearRight  float64 `json:"clearRight"`

	Wrap   doc.WrapMode `json:"wrap"`
	Page   int          `json:"page"`
	Column int          `json:"column"`
}
