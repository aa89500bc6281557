// Package token 实现两趟独立的占位符解析：页码/总页数占位符与页码引用
// （交叉引用）占位符。两趟都是纯函数：不修改输入的块图，只返回受影响的
// 块 id 集合与解析后的克隆，由调用方套用并驱动重测/重排的收敛循环。
package token

import (
	"strconv"

	"github.com/ByLCY/folio/doc"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/pagenum"
)

// Resolution 描述一趟解析的结果。
type Resolution struct {
	// Affected 是受影响块 id，按首次遇见顺序排列。
	Affected []string
	// Blocks 将受影响块 id 映射到解析后的克隆。
	Blocks map[string]doc.Block
}

func emptyResolution() Resolution {
	return Resolution{Blocks: map[string]doc.Block{}}
}

// ResolvePageNumbers 把布局中段落片段里的页码/总页数占位符改写为
// 节感知的显示文本。每个块至多处理一次：跨页的块以首个片段所在页为准。
// 编号上下文无效（无显示页信息或总页数非正）时告警并返回空结果。
func ResolvePageNumbers(res *layout.Result, blocks []doc.Block, display []pagenum.DisplayPageInfo, totalPages int) Resolution {
	out := emptyResolution()
	if len(display) == 0 || totalPages <= 0 {
		layout.Logger().Warn("页码编号上下文无效，跳过占位符解析",
			"displayPages", len(display), "totalPages", totalPages)
		return out
	}

	byID := blockIndex(blocks)
	textByPhysical := make(map[int]string, len(display))
	for _, d := range display {
		textByPhysical[d.Physical] = d.Text
	}

	seen := map[string]bool{}
	for _, page := range res.Pages {
		for _, frag := range page.Fragments {
			if frag.Kind != layout.FragmentText || seen[frag.BlockID] {
				continue
			}
			seen[frag.BlockID] = true

			block, ok := byID[frag.BlockID]
			if !ok {
				continue
			}
			para := paragraphOf(block)
			if para == nil || !para.MayHaveTokens {
				continue
			}
			pageText, ok := textByPhysical[page.Number]
			if !ok {
				layout.Logger().Warn("物理页缺少显示页码信息", "page", page.Number)
				continue
			}

			runs, changed := rewriteRuns(para.Runs, func(t *doc.TokenRun) (doc.Run, bool) {
				switch t.Kind {
				case doc.TokenPageNumber:
					return &doc.TextRun{Content: pageText, Font: t.Font}, true
				case doc.TokenTotalPageCount:
					return &doc.TextRun{Content: strconv.Itoa(totalPages), Font: t.Font}, true
				default:
					return nil, false
				}
			})
			if changed {
				out.Affected = append(out.Affected, frag.BlockID)
				out.Blocks[frag.BlockID] = cloneWith(block, runs)
			}
		}
	}
	return out
}

// BuildAnchorMap 把每个书签的文档偏移映射到包含该偏移的首个段落片段
// 所在的物理页号。未命中的书签告警并略去。
func BuildAnchorMap(bookmarks []doc.Bookmark, res *layout.Result) map[string]int {
	anchors := make(map[string]int, len(bookmarks))
	for _, bm := range bookmarks {
		page, ok := findPageForOffset(res, bm.Offset)
		if !ok {
			layout.Logger().Warn("书签未落在任何段落片段内", "bookmark", bm.Name, "offset", bm.Offset)
			continue
		}
		anchors[bm.Name] = page
	}
	return anchors
}

func findPageForOffset(res *layout.Result, offset int) (int, bool) {
	for _, page := range res.Pages {
		for _, frag := range page.Fragments {
			if frag.Kind != layout.FragmentText {
				continue
			}
			if frag.OffsetStart <= offset && offset < frag.OffsetEnd {
				return page.Number, true
			}
		}
	}
	return 0, false
}

// ResolvePageRefs 改写所有目标书签可解析的页码引用占位符；未解析的引用
// 保留原有回退文本，不计入受影响集合。
func ResolvePageRefs(blocks []doc.Block, anchors map[string]int) Resolution {
	out := emptyResolution()
	for _, block := range blocks {
		para := paragraphOf(block)
		if para == nil {
			continue
		}
		runs, changed := rewriteRuns(para.Runs, func(t *doc.TokenRun) (doc.Run, bool) {
			if t.Kind != doc.TokenPageReference {
				return nil, false
			}
			page, ok := anchors[t.Target]
			if !ok {
				return nil, false
			}
			return &doc.TextRun{Content: strconv.Itoa(page), Font: t.Font}, true
		})
		if changed {
			out.Affected = append(out.Affected, block.ID())
			out.Blocks[block.ID()] = cloneWith(block, runs)
		}
	}
	return out
}

// FilterTOC 把受影响块筛到标记为目录项的那部分，供只需重测目录行的调用方使用。
func FilterTOC(r Resolution, blocks []doc.Block) []string {
	byID := blockIndex(blocks)
	var out []string
	for _, id := range r.Affected {
		if para := paragraphOf(byID[id]); para != nil && para.TOCEntry {
			out = append(out, id)
		}
	}
	return out
}

// rewriteRuns 逐个改写占位符片段，返回新的 Run 序列与是否有改动。
// 未改动时返回原序列，避免无谓分配。
func rewriteRuns(runs []doc.Run, replace func(*doc.TokenRun) (doc.Run, bool)) ([]doc.Run, bool) {
	changed := false
	out := runs
	for i, run := range runs {
		t, ok := run.(*doc.TokenRun)
		if !ok {
			continue
		}
		repl, ok := replace(t)
		if !ok {
			continue
		}
		if !changed {
			out = make([]doc.Run, len(runs))
			copy(out, runs)
			changed = true
		}
		out[i] = repl
	}
	return out, changed
}

func blockIndex(blocks []doc.Block) map[string]doc.Block {
	byID := make(map[string]doc.Block, len(blocks))
	for _, b := range blocks {
		byID[b.ID()] = b
	}
	return byID
}

// paragraphOf 取出块中的段落部分；非段落块返回 nil。
func paragraphOf(block doc.Block) *doc.Paragraph {
	switch b := block.(type) {
	case *doc.Paragraph:
		return b
	case *doc.List:
		return &b.Paragraph
	default:
		return nil
	}
}

// cloneWith 以新的 Run 序列克隆块，保持列表的记号与层级。
func cloneWith(block doc.Block, runs []doc.Run) doc.Block {
	switch b := block.(type) {
	case *doc.List:
		clone := *b
		clone.Paragraph = *doc.CloneParagraphWith(&b.Paragraph, runs)
		return &clone
	case *doc.Paragraph:
		return doc.CloneParagraphWith(b, runs)
	default:
		return block
	}
}
