// Package dsl 解析描述文档内容的排版 DSL，并把 AST 编译为分页引擎的
// 输入模型（块序列、书签与初始页面几何）。
package dsl

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\d+)(?:pt|mm|cm|in)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[(),.=+\-*/%<>!?;:]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	tokenNames       = invertSymbols(dslLexer.Symbols())
	newlineTokenType = mustTokenType("Newline")
	lbraceTokenType  = mustTokenType("LBrace")
	rbraceTokenType  = mustTokenType("RBrace")
	symbolTokenType  = mustTokenType("Symbol")
	stringTokenType  = mustTokenType("String")

	documentParser = participle.MustBuild[Document](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment"),
	)
)

// Document 是一个 DSL 文件的根节点。
type Document struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Title StringLiteral  `parser:"Newline* 'doc' @String"`
	Nodes []*Node        `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}' Newline*"`
}

// Node 是一条内容指令：section/para/list/image/drawing/table/row/cell 等，
// 携带参数词素与可选的语句体。
type Node struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Name string         `parser:"@Ident"`
	Args []*Lexeme      `parser:"@@*"`
	Body *Block         `parser:"( Newline* @@ )?"`
}

// Block 是花括号包裹的语句列表。
type Block struct {
	Statements []*Statement `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Statement 是块内的一条语句：属性赋值、嵌套指令或裸文本。
type Statement struct {
	Assignment *Assignment  `parser:"  @@"`
	Node       *Node        `parser:"| @@"`
	Text       *TextLiteral `parser:"| @@"`
}

// Assignment 使用冒号语法（key: value...），值为词素序列，由编译阶段解释。
type Assignment struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Key    string         `parser:"@Ident ':'"`
	Values []*Lexeme      `parser:"@@*"`
}

// TextLiteral 是块内的裸字符串语句，等价于使用当前字体的 text 指令。
type TextLiteral struct {
	Value StringLiteral `parser:"@String"`
}

// Lexeme 是一个词素（指令参数或属性值）。
type Lexeme struct {
	Type  string         `json:"type"`
	Value string         `json:"value"`
	Raw   string         `json:"raw"`
	Pos   lexer.Position `json:"-"`
}

// Parse 实现 participle.Parseable，使 Lexeme 可作为文法原子使用。
func (l *Lexeme) Parse(lex *lexer.PeekingLexer) error {
	tok := lex.Peek()
	if shouldStopArg(tok) {
		return participle.NextMatch
	}

	lexeme, err := consumeLexeme(lex)
	if err != nil {
		return err
	}
	*l = *lexeme
	return nil
}

// StringLiteral 在捕获时按 Go 字符串语法去引号。
type StringLiteral string

// Capture 实现 participle.Capture。
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("字符串捕获缺少值")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse 从 io.Reader 解析 DSL 内容。
func Parse(r io.Reader) (*Document, error) {
	return documentParser.Parse("", r)
}

// ParseString 从字符串解析 DSL 内容。
func ParseString(input string) (*Document, error) {
	return documentParser.ParseString("", input)
}

// consumeLexeme 读取下一个非终止词并转换为 Lexeme。
func consumeLexeme(lex *lexer.PeekingLexer) (*Lexeme, error) {
	tok := lex.Next()
	if tok.EOF() {
		return nil, participle.NextMatch
	}
	lexeme, err := newLexeme(*tok)
	if err != nil {
		return nil, err
	}
	return &lexeme, nil
}

func shouldStopArg(tok *lexer.Token) bool {
	if tok == nil || tok.EOF() {
		return true
	}
	switch tok.Type {
	case newlineTokenType, rbraceTokenType, lbraceTokenType:
		return true
	case symbolTokenType:
		return tok.Value == ";"
	default:
		return false
	}
}

func newLexeme(tok lexer.Token) (Lexeme, error) {
	name, ok := tokenNames[tok.Type]
	if !ok {
		name = fmt.Sprintf("#%d", tok.Type)
	}
	val := tok.Value
	if tok.Type == stringTokenType {
		unquoted, err := strconv.Unquote(tok.Value)
		if err != nil {
			return Lexeme{}, err
		}
		val = unquoted
	}
	return Lexeme{
		Type:  name,
		Value: val,
		Raw:   tok.Value,
		Pos:   tok.Pos,
	}, nil
}

func invertSymbols(symbols map[string]lexer.TokenType) map[lexer.TokenType]string {
	out := make(map[lexer.TokenType]string, len(symbols))
	for name, tt := range symbols {
		out[tt] = name
	}
	return out
}

func mustTokenType(name string) lexer.TokenType {
	symbols := dslLexer.Symbols()
	tt, ok := symbols[name]
	if !ok {
		panic(fmt.Sprintf("词法单元 %s 未定义", name))
	}
	return tt
}
