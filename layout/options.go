package layout

import "github.com/ByLCY/folio/doc"

// Options 配置一次分页运行的初始几何与行为开关。
type Options struct {
	PageSize Size
	Margins  Margins
	Columns  Columns

	// TableRowBreak 控制表格行跨页行为："avoid"（默认）整行后移，
	// "allow" 允许行几何在栏边界处被切分。
	TableRowBreak string

	// HeaderContentHeight/FooterContentHeight 是页眉/页脚内容的实测高度，
	// 分节调度据此抬高上/下边距，避免正文与页眉页脚重叠。
	HeaderContentHeight float64
	FooterContentHeight float64

	// OnNewPage 在每个新页建立并应用完挂起的节状态后调用，
	// 供调用方布置页眉/页脚等每页内容。
	OnNewPage func(page *Page)

	// Remeasure 由驱动收敛循环的调用方提供与使用，引擎本身不调用。
	Remeasure doc.RemeasureFunc
}

// TableRowBreak 的取值。
const (
	RowBreakAvoid = "avoid"
	RowBreakAllow = "allow"
)
