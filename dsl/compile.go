package dsl

// 编译器：把 AST 降为分页引擎的输入模型。文本内容在此阶段完成数据插值，
// 段落偏移按展平文本连续累计（段落之间计一个分隔符）。

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/ByLCY/folio/binding"
	"github.com/ByLCY/folio/doc"
	"github.com/ByLCY/folio/layout"
)

// 默认字体键，para 未声明 font 时使用。
const defaultFontKey = "Inter|10.5|regular|normal"

// Compiled 是编译产物：块序列、书签与初始页面几何。
type Compiled struct {
	Title     string
	Blocks    []doc.Block
	Bookmarks []doc.Bookmark
	Options   layout.Options
}

// Compile 把 AST 编译为引擎输入。data 用于文本插值，可为 nil。
func Compile(ast *Document, data any) (*Compiled, error) {
	if ast == nil {
		return nil, fmt.Errorf("dsl: AST 为空")
	}
	c := &compiler{
		data: data,
		font: defaultFontKey,
		out: &Compiled{
			Title: string(ast.Title),
			Options: layout.Options{
				PageSize: layout.Size{W: 210, H: 297},
				Margins:  layout.Margins{Top: 20, Right: 20, Bottom: 20, Left: 20},
				Columns:  layout.Columns{Count: 1, Gap: 6},
			},
		},
	}
	for _, node := range ast.Nodes {
		if err := c.compileNode(node); err != nil {
			return nil, err
		}
	}
	return c.out, nil
}

type compiler struct {
	data   any
	font   string
	style  string
	offset int
	out    *Compiled
}

func (c *compiler) compileNode(node *Node) error {
	switch node.Name {
	case "defaults":
		return c.compileDefaults(node)
	case "section":
		return c.compileSection(node)
	case "para":
		return c.compilePara(node, nil)
	case "list":
		return c.compileList(node)
	case "image":
		return c.compileImage(node)
	case "drawing":
		return c.compileDrawing(node)
	case "table":
		return c.compileTable(node)
	default:
		return fmt.Errorf("%s: 未知指令 %q", node.Pos, node.Name)
	}
}

func (c *compiler) compileDefaults(node *Node) error {
	for _, st := range body(node) {
		a := st.Assignment
		if a == nil {
			return fmt.Errorf("%s: defaults 只接受属性赋值", node.Pos)
		}
		switch a.Key {
		case "font":
			c.font = argText(a.Values)
		case "style":
			c.style = argText(a.Values)
		default:
			return fmt.Errorf("%s: defaults 不支持属性 %q", a.Pos, a.Key)
		}
	}
	return nil
}

func (c *compiler) compileSection(node *Node) error {
	sb := &doc.SectionBreak{
		BlockID: nodeID(node, fmt.Sprintf("section-%d", len(c.out.Blocks))),
		Type:    doc.SectionNextPage,
		First:   len(c.out.Blocks) == 0,
	}

	for _, st := range body(node) {
		a := st.Assignment
		if a == nil {
			return fmt.Errorf("%s: section 只接受属性赋值", node.Pos)
		}
		switch a.Key {
		case "break":
			t, err := parseSectionType(argText(a.Values))
			if err != nil {
				return fmt.Errorf("%s: %w", a.Pos, err)
			}
			sb.Type = t
		case "page":
			if len(a.Values) < 2 {
				return fmt.Errorf("%s: page 需要宽高两个长度", a.Pos)
			}
			sb.Props.PageWidth = ptr(lengthOf(a.Values[0]))
			sb.Props.PageHeight = ptr(lengthOf(a.Values[1]))
		case "landscape":
			sb.Props.Landscape = ptr(argText(a.Values) == "true")
		case "margins":
			if len(a.Values) < 4 {
				return fmt.Errorf("%s: margins 需要上右下左四个长度", a.Pos)
			}
			sb.Props.MarginTop = ptr(lengthOf(a.Values[0]))
			sb.Props.MarginRight = ptr(lengthOf(a.Values[1]))
			sb.Props.MarginBottom = ptr(lengthOf(a.Values[2]))
			sb.Props.MarginLeft = ptr(lengthOf(a.Values[3]))
		case "header":
			sb.Props.HeaderDistance = ptr(firstLength(a.Values))
		case "footer":
			sb.Props.FooterDistance = ptr(firstLength(a.Values))
		case "columns":
			count, gap, err := parseColumns(a.Values)
			if err != nil {
				return fmt.Errorf("%s: %w", a.Pos, err)
			}
			sb.Props.ColumnCount = ptr(count)
			if gap != nil {
				sb.Props.ColumnGap = gap
			}
		case "numbering":
			num, err := parseNumbering(a.Values)
			if err != nil {
				return fmt.Errorf("%s: %w", a.Pos, err)
			}
			sb.Numbering = num
		case "forcePageBoundary":
			sb.RequirePageBoundary = argText(a.Values) == "true"
		default:
			return fmt.Errorf("%s: section 不支持属性 %q", a.Pos, a.Key)
		}
	}

	if sb.First {
		c.seedOptions(sb.Props)
	}
	c.out.Blocks = append(c.out.Blocks, sb)
	return nil
}

// seedOptions 把首个分节符的几何同步到初始布局选项，
// 使调用方在布局之前就能拿到正确的栏宽做度量。
func (c *compiler) seedOptions(props doc.SectionProps) {
	o := &c.out.Options
	if props.PageWidth != nil {
		o.PageSize.W = *props.PageWidth
	}
	if props.PageHeight != nil {
		o.PageSize.H = *props.PageHeight
	}
	if props.Landscape != nil && *props.Landscape {
		o.PageSize.W, o.PageSize.H = o.PageSize.H, o.PageSize.W
	}
	if props.MarginTop != nil {
		o.Margins.Top = *props.MarginTop
	}
	if props.MarginRight != nil {
		o.Margins.Right = *props.MarginRight
	}
	if props.MarginBottom != nil {
		o.Margins.Bottom = *props.MarginBottom
	}
	if props.MarginLeft != nil {
		o.Margins.Left = *props.MarginLeft
	}
	if props.HeaderDistance != nil {
		o.Margins.Header = *props.HeaderDistance
	}
	if props.FooterDistance != nil {
		o.Margins.Footer = *props.FooterDistance
	}
	if props.ColumnCount != nil {
		o.Columns.Count = *props.ColumnCount
	}
	if props.ColumnGap != nil {
		o.Columns.Gap = *props.ColumnGap
	}
}

// compilePara 编译段落。extra 允许宿主（list）拦截额外属性。
func (c *compiler) compilePara(node *Node, extra func(a *Assignment) (bool, error)) error {
	p, err := c.buildParagraph(node, extra)
	if err != nil {
		return err
	}
	c.out.Blocks = append(c.out.Blocks, p)
	return nil
}

func (c *compiler) buildParagraph(node *Node, extra func(a *Assignment) (bool, error)) (*doc.Paragraph, error) {
	p := &doc.Paragraph{
		BlockID: nodeID(node, fmt.Sprintf("para-%d", len(c.out.Blocks))),
		StyleID: c.style,
		Start:   c.offset,
	}
	font := c.font
	local := 0 // 段内展平文本偏移（rune）

	appendRun := func(r doc.Run) {
		p.Runs = append(p.Runs, r)
		local += utf8.RuneCountInString(r.Text())
	}

	for _, st := range body(node) {
		switch {
		case st.Assignment != nil:
			a := st.Assignment
			if extra != nil {
				if handled, err := extra(a); err != nil {
					return nil, err
				} else if handled {
					continue
				}
			}
			switch a.Key {
			case "style":
				p.StyleID = argText(a.Values)
			case "font":
				font = argText(a.Values)
			case "spacing":
				if len(a.Values) < 2 {
					return nil, fmt.Errorf("%s: spacing 需要段前段后两个长度", a.Pos)
				}
				p.SpacingBefore = lengthOf(a.Values[0])
				p.SpacingAfter = lengthOf(a.Values[1])
			case "indent":
				p.FirstLineIndent = firstLength(a.Values)
			default:
				return nil, fmt.Errorf("%s: para 不支持属性 %q", a.Pos, a.Key)
			}
		case st.Text != nil:
			text := binding.Interpolate(string(st.Text.Value), c.data)
			appendRun(&doc.TextRun{Content: text, Font: font})
		case st.Node != nil:
			n := st.Node
			switch n.Name {
			case "text":
				text := binding.Interpolate(argText(n.Args), c.data)
				appendRun(&doc.TextRun{Content: text, Font: font})
			case "tab":
				appendRun(&doc.TabRun{Font: font})
			case "pageNumber":
				appendRun(&doc.TokenRun{Kind: doc.TokenPageNumber, Placeholder: argTextOr(n.Args, "0"), Font: font})
				p.MayHaveTokens = true
			case "totalPages":
				appendRun(&doc.TokenRun{Kind: doc.TokenTotalPageCount, Placeholder: argTextOr(n.Args, "0"), Font: font})
				p.MayHaveTokens = true
			case "pageRef":
				if len(n.Args) == 0 {
					return nil, fmt.Errorf("%s: pageRef 需要目标书签名", n.Pos)
				}
				placeholder := "?"
				if len(n.Args) > 1 {
					placeholder = n.Args[1].Value
				}
				appendRun(&doc.TokenRun{
					Kind:        doc.TokenPageReference,
					Placeholder: placeholder,
					Font:        font,
					Target:      n.Args[0].Value,
				})
			case "bookmark":
				if len(n.Args) == 0 {
					return nil, fmt.Errorf("%s: bookmark 需要名字", n.Pos)
				}
				c.out.Bookmarks = append(c.out.Bookmarks, doc.Bookmark{
					Name:   n.Args[0].Value,
					Offset: p.Start + local,
				})
			case "toc":
				p.TOCEntry = true
			default:
				return nil, fmt.Errorf("%s: para 不支持指令 %q", n.Pos, n.Name)
			}
		}
	}

	c.offset = p.Start + local + 1 // 段落之间计一个分隔符
	return p, nil
}

func (c *compiler) compileList(node *Node) error {
	l := &doc.List{Marker: "•"}
	extra := func(a *Assignment) (bool, error) {
		switch a.Key {
		case "marker":
			l.Marker = argText(a.Values)
			return true, nil
		case "level":
			n, err := strconv.Atoi(argText(a.Values))
			if err != nil {
				return false, fmt.Errorf("%s: level 必须是整数", a.Pos)
			}
			l.Level = n
			return true, nil
		}
		return false, nil
	}
	p, err := c.buildParagraph(node, extra)
	if err != nil {
		return err
	}
	l.Paragraph = *p
	c.out.Blocks = append(c.out.Blocks, l)
	return nil
}

func (c *compiler) compileImage(node *Node) error {
	img := &doc.Image{BlockID: nodeID(node, fmt.Sprintf("image-%d", len(c.out.Blocks)))}
	for _, st := range body(node) {
		a := st.Assignment
		if a == nil {
			return fmt.Errorf("%s: image 只接受属性赋值", node.Pos)
		}
		switch a.Key {
		case "size":
			if len(a.Values) < 2 {
				return fmt.Errorf("%s: size 需要宽高两个长度", a.Pos)
			}
			img.Width = lengthOf(a.Values[0])
			img.Height = lengthOf(a.Values[1])
		default:
			return fmt.Errorf("%s: image 不支持属性 %q", a.Pos, a.Key)
		}
	}
	c.out.Blocks = append(c.out.Blocks, img)
	return nil
}

func (c *compiler) compileDrawing(node *Node) error {
	d := &doc.Drawing{BlockID: nodeID(node, fmt.Sprintf("drawing-%d", len(c.out.Blocks)))}
	for _, st := range body(node) {
		a := st.Assignment
		if a == nil {
			return fmt.Errorf("%s: drawing 只接受属性赋值", node.Pos)
		}
		switch a.Key {
		case "size":
			if len(a.Values) < 2 {
				return fmt.Errorf("%s: size 需要宽高两个长度", a.Pos)
			}
			d.Width = lengthOf(a.Values[0])
			d.Height = lengthOf(a.Values[1])
		case "float":
			f, err := parseFloatProps(a.Values)
			if err != nil {
				return fmt.Errorf("%s: %w", a.Pos, err)
			}
			d.Float = f
		case "clear":
			if d.Float == nil {
				return fmt.Errorf("%s: clear 需要先声明 float", a.Pos)
			}
			if err := parseClear(a.Values, d.Float); err != nil {
				return fmt.Errorf("%s: %w", a.Pos, err)
			}
		default:
			return fmt.Errorf("%s: drawing 不支持属性 %q", a.Pos, a.Key)
		}
	}
	c.out.Blocks = append(c.out.Blocks, d)
	return nil
}

func (c *compiler) compileTable(node *Node) error {
	t := &doc.Table{BlockID: nodeID(node, fmt.Sprintf("table-%d", len(c.out.Blocks)))}
	for _, st := range body(node) {
		switch {
		case st.Assignment != nil:
			a := st.Assignment
			switch a.Key {
			case "columns":
				n, err := strconv.Atoi(argText(a.Values))
				if err != nil || n < 1 {
					return fmt.Errorf("%s: columns 必须是正整数", a.Pos)
				}
				t.Columns = n
			case "width":
				t.Width = firstLength(a.Values)
			case "float":
				f, err := parseFloatProps(a.Values)
				if err != nil {
					return fmt.Errorf("%s: %w", a.Pos, err)
				}
				t.Float = f
			case "clear":
				if t.Float == nil {
					return fmt.Errorf("%s: clear 需要先声明 float", a.Pos)
				}
				if err := parseClear(a.Values, t.Float); err != nil {
					return fmt.Errorf("%s: %w", a.Pos, err)
				}
			default:
				return fmt.Errorf("%s: table 不支持属性 %q", a.Pos, a.Key)
			}
		case st.Node != nil && st.Node.Name == "row":
			row, err := c.compileRow(st.Node)
			if err != nil {
				return err
			}
			t.Rows = append(t.Rows, row)
		default:
			return fmt.Errorf("%s: table 只接受属性或 row 指令", node.Pos)
		}
	}
	c.out.Blocks = append(c.out.Blocks, t)
	return nil
}

func (c *compiler) compileRow(node *Node) (doc.TableRow, error) {
	row := doc.TableRow{}
	for _, arg := range node.Args {
		if arg.Value == "header" {
			row.Header = true
		}
	}
	for _, st := range body(node) {
		n := st.Node
		if n == nil || n.Name != "cell" {
			return row, fmt.Errorf("%s: row 只接受 cell 指令", node.Pos)
		}
		cell, err := c.compileCell(n)
		if err != nil {
			return row, err
		}
		row.Cells = append(row.Cells, cell)
	}
	return row, nil
}

func (c *compiler) compileCell(node *Node) (doc.TableCell, error) {
	cell := doc.TableCell{}
	font := c.font
	for _, st := range body(node) {
		switch {
		case st.Text != nil:
			text := binding.Interpolate(string(st.Text.Value), c.data)
			cell.Runs = append(cell.Runs, &doc.TextRun{Content: text, Font: font})
		case st.Assignment != nil && st.Assignment.Key == "font":
			font = argText(st.Assignment.Values)
		case st.Node != nil && st.Node.Name == "text":
			text := binding.Interpolate(argText(st.Node.Args), c.data)
			cell.Runs = append(cell.Runs, &doc.TextRun{Content: text, Font: font})
		case st.Node != nil && st.Node.Name == "tab":
			cell.Runs = append(cell.Runs, &doc.TabRun{Font: font})
		default:
			return cell, fmt.Errorf("%s: cell 只接受文本内容", node.Pos)
		}
	}
	return cell, nil
}

// --- 词素解释 ---

func body(node *Node) []*Statement {
	if node.Body == nil {
		return nil
	}
	return node.Body.Statements
}

// nodeID 取指令的首个 Ident 参数作为块 id，缺省时用序号生成。
func nodeID(node *Node, fallback string) string {
	if len(node.Args) > 0 && node.Args[0].Type == "Ident" {
		return node.Args[0].Value
	}
	return fallback
}

func argText(args []*Lexeme) string {
	if len(args) == 0 {
		return ""
	}
	return args[0].Value
}

func argTextOr(args []*Lexeme, def string) string {
	if len(args) == 0 {
		return def
	}
	return args[0].Value
}

func lengthOf(l *Lexeme) float64 {
	return ParseLength(l.Value).ToMM()
}

func firstLength(values []*Lexeme) float64 {
	if len(values) == 0 {
		return 0
	}
	return lengthOf(values[0])
}

func ptr[T any](v T) *T { return &v }

func parseSectionType(s string) (doc.SectionType, error) {
	switch s {
	case "nextPage", "":
		return doc.SectionNextPage, nil
	case "evenPage":
		return doc.SectionEvenPage, nil
	case "oddPage":
		return doc.SectionOddPage, nil
	case "continuous":
		return doc.SectionContinuous, nil
	default:
		return 0, fmt.Errorf("未知分节类型 %q", s)
	}
}

// parseColumns 解释 "N [gap 长度]" 形式的分栏声明。
func parseColumns(values []*Lexeme) (int, *float64, error) {
	if len(values) == 0 {
		return 0, nil, fmt.Errorf("columns 需要栏数")
	}
	count, err := strconv.Atoi(values[0].Value)
	if err != nil || count < 1 {
		return 0, nil, fmt.Errorf("columns 栏数 %q 无效", values[0].Value)
	}
	for i := 1; i < len(values)-1; i++ {
		if values[i].Value == "gap" {
			gap := lengthOf(values[i+1])
			return count, &gap, nil
		}
	}
	return count, nil, nil
}

// parseNumbering 解释 "格式 [restart N]" 形式的页码编号声明。
func parseNumbering(values []*Lexeme) (doc.Numbering, error) {
	num := doc.Numbering{}
	if len(values) == 0 {
		return num, fmt.Errorf("numbering 需要格式名")
	}
	switch values[0].Value {
	case "decimal":
		num.Format = doc.NumberDecimal
	case "lowerRoman":
		num.Format = doc.NumberLowerRoman
	case "upperRoman":
		num.Format = doc.NumberUpperRoman
	case "lowerLetter":
		num.Format = doc.NumberLowerLetter
	case "upperLetter":
		num.Format = doc.NumberUpperLetter
	default:
		return num, fmt.Errorf("未知页码格式 %q", values[0].Value)
	}
	for i := 1; i < len(values)-1; i++ {
		if values[i].Value == "restart" {
			n, err := strconv.Atoi(values[i+1].Value)
			if err != nil {
				return num, fmt.Errorf("restart 值 %q 无效", values[i+1].Value)
			}
			num.Restart = &n
		}
	}
	return num, nil
}

// parseFloatProps 解释 "none | 对齐 [at 参照] [wrap 环绕]" 形式的浮动声明。
func parseFloatProps(values []*Lexeme) (*doc.FloatProps, error) {
	if len(values) == 0 || values[0].Value == "none" {
		return nil, nil
	}
	f := &doc.FloatProps{Anchored: true, Wrap: doc.WrapBoth}
	switch values[0].Value {
	case "left":
		f.Align = doc.AlignLeft
	case "center":
		f.Align = doc.AlignCenter
	case "right":
		f.Align = doc.AlignRight
	default:
		return nil, fmt.Errorf("未知浮动对齐 %q", values[0].Value)
	}
	for i := 1; i < len(values)-1; i++ {
		switch values[i].Value {
		case "at":
			switch values[i+1].Value {
			case "page":
				f.RelativeFrom = doc.RelPage
			case "margin":
				f.RelativeFrom = doc.RelMargin
			case "column":
				f.RelativeFrom = doc.RelColumn
			default:
				return nil, fmt.Errorf("未知浮动参照 %q", values[i+1].Value)
			}
		case "wrap":
			switch values[i+1].Value {
			case "none":
				f.Wrap = doc.WrapNone
			case "left":
				f.Wrap = doc.WrapLeft
			case "right":
				f.Wrap = doc.WrapRight
			case "both":
				f.Wrap = doc.WrapBoth
			case "largest":
				f.Wrap = doc.WrapLargest
			default:
				return nil, fmt.Errorf("未知环绕方式 %q", values[i+1].Value)
			}
		}
	}
	return f, nil
}

// parseClear 解释 "上 右 下 左" 四个间距长度。
func parseClear(values []*Lexeme, f *doc.FloatProps) error {
	if len(values) < 4 {
		return fmt.Errorf("clear 需要上右下左四个长度")
	}
	f.DistTop = lengthOf(values[0])
	f.DistRight = lengthOf(values[1])
	f.DistBottom = lengthOf(values[2])
	f.DistLeft = lengthOf(values[3])
	return nil
}
