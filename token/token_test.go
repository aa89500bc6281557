package token

import (
	"testing"

	"github.com/ByLCY/folio/doc"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/pagenum"
)

const testFont = "Test|10|regular|normal"

// twoPageResult 构造两页布局：p1 的片段覆盖偏移 [0,20)，p2 覆盖 [25,45)。
func twoPageResult() *layout.Result {
	return &layout.Result{
		Sections: []layout.SectionInfo{{Numbering: doc.Numbering{Format: doc.NumberDecimal}}},
		Pages: []layout.Page{
			{Number: 1, Section: 0, Fragments: []layout.Fragment{
				{BlockID: "p1", Kind: layout.FragmentText, OffsetStart: 0, OffsetEnd: 20},
			}},
			{Number: 2, Section: 0, Fragments: []layout.Fragment{
				{BlockID: "p2", Kind: layout.FragmentText, OffsetStart: 25, OffsetEnd: 45},
			}},
		},
	}
}

// TestResolvePageNumbers 验证页码与总页数占位符按片段所在页改写，
// 且原始块不被修改（克隆替换）。
func TestResolvePageNumbers(t *testing.T) {
	res := twoPageResult()
	p2 := &doc.Paragraph{
		BlockID: "p2", Start: 25, MayHaveTokens: true,
		Runs: []doc.Run{
			&doc.TextRun{Content: "第 ", Font: testFont},
			&doc.TokenRun{Kind: doc.TokenPageNumber, Placeholder: "0", Font: testFont},
			&doc.TextRun{Content: " 页，共 ", Font: testFont},
			&doc.TokenRun{Kind: doc.TokenTotalPageCount, Placeholder: "0", Font: testFont},
		},
	}
	blocks := []doc.Block{p2}
	display := pagenum.DisplayNumbers(res)

	out := ResolvePageNumbers(res, blocks, display, 2)
	if len(out.Affected) != 1 || out.Affected[0] != "p2" {
		t.Fatalf("受影响块期望 [p2]，实际 %v", out.Affected)
	}
	clone := out.Blocks["p2"].(*doc.Paragraph)
	if got := clone.Runs[1].(*doc.TextRun).Content; got != "2" {
		t.Fatalf("页码占位符期望改写为 2，实际 %q", got)
	}
	if got := clone.Runs[3].(*doc.TextRun).Content; got != "2" {
		t.Fatalf("总页数占位符期望改写为 2，实际 %q", got)
	}
	if _, ok := p2.Runs[1].(*doc.TokenRun); !ok {
		t.Fatalf("原始块不应被修改")
	}
}

// TestResolvePageNumbersIdempotent 验证对已解析的克隆再跑一趟
// 不产生任何受影响块。
func TestResolvePageNumbersIdempotent(t *testing.T) {
	res := twoPageResult()
	p2 := &doc.Paragraph{
		BlockID: "p2", Start: 25, MayHaveTokens: true,
		Runs: []doc.Run{&doc.TokenRun{Kind: doc.TokenPageNumber, Placeholder: "0", Font: testFont}},
	}
	display := pagenum.DisplayNumbers(res)

	first := ResolvePageNumbers(res, []doc.Block{p2}, display, 2)
	second := ResolvePageNumbers(res, []doc.Block{first.Blocks["p2"]}, display, 2)
	if len(second.Affected) != 0 {
		t.Fatalf("第二趟应无受影响块，实际 %v", second.Affected)
	}
}

// TestResolvePageNumbersInvalidContext 验证编号上下文无效时返回空结果。
func TestResolvePageNumbersInvalidContext(t *testing.T) {
	res := twoPageResult()
	p := &doc.Paragraph{BlockID: "p1", MayHaveTokens: true,
		Runs: []doc.Run{&doc.TokenRun{Kind: doc.TokenPageNumber, Placeholder: "0", Font: testFont}}}
	display := pagenum.DisplayNumbers(res)

	if out := ResolvePageNumbers(res, []doc.Block{p}, nil, 2); len(out.Affected) != 0 {
		t.Fatalf("无显示页信息应返回空结果")
	}
	if out := ResolvePageNumbers(res, []doc.Block{p}, display, 0); len(out.Affected) != 0 {
		t.Fatalf("总页数非正应返回空结果")
	}
}

// TestBuildAnchorMap 验证书签偏移命中片段区间时映射到物理页，
// 未命中时被略去。
func TestBuildAnchorMap(t *testing.T) {
	res := twoPageResult()
	anchors := BuildAnchorMap([]doc.Bookmark{
		{Name: "intro", Offset: 30},   // 命中 p2 的 [25,45) → 第 2 页
		{Name: "start", Offset: 0},    // 命中 p1 的 [0,20) → 第 1 页
		{Name: "nowhere", Offset: 22}, // 两个片段之间的缝隙
	}, res)

	if anchors["intro"] != 2 || anchors["start"] != 1 {
		t.Fatalf("锚点映射错误: %v", anchors)
	}
	if _, ok := anchors["nowhere"]; ok {
		t.Fatalf("未命中的书签不应入映射")
	}
}

// TestResolvePageRefs 验证可解析的引用被改写，未解析的保留回退文本
// 且不计入受影响集合。
func TestResolvePageRefs(t *testing.T) {
	p := &doc.Paragraph{
		BlockID: "toc1", TOCEntry: true,
		Runs: []doc.Run{
			&doc.TextRun{Content: "引言 … ", Font: testFont},
			&doc.TokenRun{Kind: doc.TokenPageReference, Placeholder: "?", Font: testFont, Target: "intro"},
		},
	}
	dangling := &doc.Paragraph{
		BlockID: "toc2",
		Runs: []doc.Run{
			&doc.TokenRun{Kind: doc.TokenPageReference, Placeholder: "?", Font: testFont, Target: "missing"},
		},
	}
	blocks := []doc.Block{p, dangling}

	out := ResolvePageRefs(blocks, map[string]int{"intro": 2})
	if len(out.Affected) != 1 || out.Affected[0] != "toc1" {
		t.Fatalf("受影响块期望 [toc1]，实际 %v", out.Affected)
	}
	clone := out.Blocks["toc1"].(*doc.Paragraph)
	if got := clone.Runs[1].(*doc.TextRun).Content; got != "2" {
		t.Fatalf("引用期望改写为 2，实际 %q", got)
	}
	if _, ok := dangling.Runs[0].(*doc.TokenRun); !ok {
		t.Fatalf("未解析的引用应保留占位符")
	}

	// 目录筛选：只有标记为目录项的段落入选。
	if got := FilterTOC(out, blocks); len(got) != 1 || got[0] != "toc1" {
		t.Fatalf("FilterTOC 期望 [toc1]，实际 %v", got)
	}
}

// TestResolvePageNumbersListBlock 验证列表块同样参与占位符解析，
// 克隆保留记号与层级。
func TestResolvePageNumbersListBlock(t *testing.T) {
	res := twoPageResult()
	l := &doc.List{Marker: "•", Level: 1}
	l.Paragraph = doc.Paragraph{
		BlockID: "p1", MayHaveTokens: true,
		Runs: []doc.Run{&doc.TokenRun{Kind: doc.TokenPageNumber, Placeholder: "0", Font: testFont}},
	}
	display := pagenum.DisplayNumbers(res)

	out := ResolvePageNumbers(res, []doc.Block{l}, display, 2)
	clone, ok := out.Blocks["p1"].(*doc.List)
	if !ok {
		t.Fatalf("列表块的克隆应仍是列表")
	}
	if clone.Marker != "•" || clone.Level != 1 {
		t.Fatalf("克隆应保留记号与层级，实际 %+v", clone)
	}
	if got := clone.Runs[0].(*doc.TextRun).Content; got != "1" {
		t.Fatalf("第 1 页的页码期望 1，实际 %q", got)
	}
}
