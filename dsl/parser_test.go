package dsl

import (
	"math"
	"strings"
	"testing"
)

const demoDoc = `doc "Demo" {
	// 首个分节符定义文档初始几何
	section s0 {
		break: nextPage
		page: 210mm 297mm
		margins: 20mm 15mm 20mm 15mm
		columns: 2 gap 6mm
		numbering: lowerRoman restart 1
	}
	para p1 {
		style: body
		font: "Inter|10.5|regular|normal"
		text "Hello ${user.name|世界}"
		tab
		pageNumber
		bookmark intro
	}
	list l1 {
		marker: "-"
		"item one"
	}
	table t1 {
		columns: 2
		row header {
			cell { "A" }
			cell { "B" }
		}
		row {
			cell { "1" }
			cell { "2" }
		}
	}
}`

// TestParseDemo 验证演示文档解析出的节点结构。
func TestParseDemo(t *testing.T) {
	ast, err := Parse(strings.NewReader(demoDoc))
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if ast.Title != "Demo" {
		t.Fatalf("标题期望 Demo，实际 %q", ast.Title)
	}
	wantNames := []string{"section", "para", "list", "table"}
	if len(ast.Nodes) != len(wantNames) {
		t.Fatalf("期望 %d 个顶层节点，实际 %d", len(wantNames), len(ast.Nodes))
	}
	for i, want := range wantNames {
		if ast.Nodes[i].Name != want {
			t.Fatalf("第 %d 个节点期望 %q，实际 %q", i, want, ast.Nodes[i].Name)
		}
	}

	para := ast.Nodes[1]
	if len(para.Args) != 1 || para.Args[0].Value != "p1" {
		t.Fatalf("para 参数期望 [p1]，实际 %v", para.Args)
	}
	if para.Body == nil || len(para.Body.Statements) != 6 {
		t.Fatalf("para 语句数期望 6，实际 %+v", para.Body)
	}
}

// TestParseStringUnquote 验证字符串词素按 Go 语法去引号。
func TestParseStringUnquote(t *testing.T) {
	ast, err := ParseString("doc \"T\" {\npara p {\ntext \"a\\\"b\"\n}\n}")
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	text := ast.Nodes[0].Body.Statements[0].Node
	if text == nil || text.Args[0].Value != `a"b` {
		t.Fatalf("转义字符串解析错误: %+v", text)
	}
}

// TestParseRejectsGarbage 验证非法输入报错而不是静默接受。
func TestParseRejectsGarbage(t *testing.T) {
	for _, bad := range []string{"", "para {}", "doc \"T\" { para p1 {"} {
		if _, err := ParseString(bad); err == nil {
			t.Fatalf("输入 %q 应解析失败", bad)
		}
	}
}

// TestParseLength 验证各单位到 mm 的换算与坏输入的零值回退。
func TestParseLength(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"12pt", 12 * PtToMm},
		{"2.54cm", 25.4},
		{"1in", 25.4},
		{"10mm", 10},
		{"10", 10}, // 无单位按 mm
		{"bogus", 0},
		{"", 0},
	}
	for _, c := range cases {
		if got := ParseLength(c.in).ToMM(); math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("ParseLength(%q).ToMM() = %g, want %g", c.in, got, c.want)
		}
	}
}
