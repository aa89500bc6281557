// Package doc 定义分页引擎的输入数据模型：块（Block）、行内片段（Run）、
// 度量（Measure）与书签。该模型由上游生产者构造，引擎只读，不做任何原地修改。
package doc

// Block 是内容块的标签联合：段落、图片、绘图、表格、分节符、列表。
// 每个块持有稳定的 id；引擎对 Block 的任何改写都以“克隆并替换”的方式进行。
type Block interface {
	ID() string
	isBlock()
}

// Paragraph 表示一个段落块，由若干 Run 顺序组成。
type Paragraph struct {
	BlockID string
	StyleID string
	Runs    []Run
	// Start 是段落首字符在整篇文档展平文本中的偏移（按 rune 计数）。
	Start int
	// 段前/段后间距（mm）。相邻块之间的实际间距按折叠规则取两者较大值。
	SpacingBefore float64
	SpacingAfter  float64
	// FirstLineIndent 首行缩进（mm）。
	FirstLineIndent float64
	// MayHaveTokens 为生产者提示：该段可能包含页码/总页数占位符。
	// 未知时应保持 true，令解析阶段自行扫描。
	MayHaveTokens bool
	// TOCEntry 标记该段为目录项，页码引用解析后可据此筛选需要重测的段落。
	TOCEntry bool
}

func (p *Paragraph) ID() string { return p.BlockID }
func (*Paragraph) isBlock()     {}

// Text 返回段落的展平文本：text run 取内容，tab 记作制表符，token 取占位文本。
func (p *Paragraph) Text() string {
	out := ""
	for _, r := range p.Runs {
		out += r.Text()
	}
	return out
}

// List 是带项目符号/编号的段落块，版面上等价于一个左侧让出记号宽度的段落。
type List struct {
	Paragraph
	Marker string
	Level  int
}

func (*List) isBlock() {}

// Image 表示随文图片块，宽高为生产者给定的固有尺寸（mm）。
type Image struct {
	BlockID string
	Width   float64
	Height  float64
}

func (b *Image) ID() string { return b.BlockID }
func (*Image) isBlock()     {}

// Drawing 表示绘图对象块。锚定且环绕方式不为 none 时作为浮动对象参与排除区计算。
type Drawing struct {
	BlockID string
	Width   float64
	Height  float64
	Float   *FloatProps
}

func (b *Drawing) ID() string { return b.BlockID }
func (*Drawing) isBlock()     {}

// Table 表示表格块。单元格内容为 Run 序列，行高在度量阶段计算。
type Table struct {
	BlockID string
	Columns int
	Rows    []TableRow
	// Width 为期望宽度（mm），0 表示占满可用宽度。
	Width float64
	Float *FloatProps
}

func (b *Table) ID() string { return b.BlockID }
func (*Table) isBlock()     {}

// TableRow 是表格中的一行。
type TableRow struct {
	Header bool
	Cells  []TableCell
}

// TableCell 是一个单元格。
type TableCell struct {
	Runs []Run
}

// SectionBreak 表示分节符块，携带下一节的页面几何与页码编号元数据。
type SectionBreak struct {
	BlockID string
	Type    SectionType
	// First 由生产者标记：文档首个分节符直接作用于活动状态，不进入挂起阶段。
	First bool
	// RequirePageBoundary 置位时无条件强制换页，与 Type 无关。
	RequirePageBoundary bool
	Props               SectionProps
	Numbering           Numbering
}

func (b *SectionBreak) ID() string { return b.BlockID }
func (*SectionBreak) isBlock()     {}

// SectionType 描述分节符的换页语义。
type SectionType int

const (
	SectionNextPage SectionType = iota
	SectionEvenPage
	SectionOddPage
	SectionContinuous
)

// SectionProps 是分节符携带的几何变更。指针字段为 nil 表示沿用当前值。
type SectionProps struct {
	PageWidth      *float64
	PageHeight     *float64
	MarginTop      *float64
	MarginRight    *float64
	MarginBottom   *float64
	MarginLeft     *float64
	HeaderDistance *float64
	FooterDistance *float64
	ColumnCount    *int
	ColumnGap      *float64
	Landscape      *bool
}

// Numbering 描述某一节的页码显示方式。Restart 为 nil 表示延续上一节的计数。
type Numbering struct {
	Format  NumberFormat
	Restart *int
}

// NumberFormat 枚举页码显示格式。
type NumberFormat int

const (
	NumberDecimal NumberFormat = iota
	NumberLowerRoman
	NumberUpperRoman
	NumberLowerLetter
	NumberUpperLetter
)

// WrapMode 描述浮动对象的文字环绕方式。
// WrapLeft 表示对象靠左、正文从其右侧绕行；WrapRight 反之。
type WrapMode int

const (
	WrapNone WrapMode = iota
	WrapLeft
	WrapRight
	WrapBoth
	WrapLargest
)

// HAlign 是浮动对象的水平对齐。
type HAlign int

const (
	AlignLeft HAlign = iota
	AlignCenter
	AlignRight
)

// RelBasis 是浮动对象水平定位的参照系。
type RelBasis int

const (
	RelColumn RelBasis = iota
	RelMargin
	RelPage
)

// FloatProps 描述锚定浮动对象的定位与环绕参数，间距单位为 mm。
type FloatProps struct {
	Anchored     bool
	Wrap         WrapMode
	Align        HAlign
	RelativeFrom RelBasis
	DistTop      float64
	DistBottom   float64
	DistLeft     float64
	DistRight    float64
}

// Bookmark 将一个名字绑定到文档展平文本中的偏移，用作页码引用的目标。
type Bookmark struct {
	Name   string
	Offset int
}
