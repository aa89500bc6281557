package doc

// Run 是段落内的行内片段：普通文本、制表符或未解析的占位符。
type Run interface {
	// Text 返回参与测量的文本。占位符返回其占位文本（例如 "0" 或 "??"）。
	Text() string
	// FontKey 返回该片段的字体键，形如 "Arial|16|normal|normal"。
	FontKey() string
	isRun()
}

// TextRun 是一段同字体的普通文本。
type TextRun struct {
	Content string
	Font    string
}

func (r *TextRun) Text() string    { return r.Content }
func (r *TextRun) FontKey() string { return r.Font }
func (*TextRun) isRun()            {}

// TabRun 是一个制表符。排版时推进到下一个默认制表位。
type TabRun struct {
	Font string
}

func (r *TabRun) Text() string    { return "\t" }
func (r *TabRun) FontKey() string { return r.Font }
func (*TabRun) isRun()            {}

// TokenKind 枚举占位符类别。
type TokenKind int

const (
	TokenPageNumber TokenKind = iota
	TokenTotalPageCount
	TokenPageReference
)

// TokenRun 是一个未解析的占位符。Placeholder 使片段在解析前就有可测量的宽度；
// TokenPageReference 额外携带目标书签名。
type TokenRun struct {
	Kind        TokenKind
	Placeholder string
	Font        string
	Target      string
}

func (r *TokenRun) Text() string    { return r.Placeholder }
func (r *TokenRun) FontKey() string { return r.Font }
func (*TokenRun) isRun()            {}

// CloneParagraphWith 返回段落的浅克隆，仅替换 Runs。
// 占位符解析据此实现“克隆并替换”，绝不改写调用方持有的块。
func CloneParagraphWith(p *Paragraph, runs []Run) *Paragraph {
	clone := *p
	clone.Runs = runs
	return &clone
}
