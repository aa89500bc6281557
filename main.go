package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ByLCY/folio/doc"
	"github.com/ByLCY/folio/dsl"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/metrics"
	canvasmetrics "github.com/ByLCY/folio/metrics/canvas"
	"github.com/ByLCY/folio/pagenum"
	"github.com/ByLCY/folio/paragraph"
	"github.com/ByLCY/folio/token"
)

// 占位符解析→重测→重排的收敛循环最多执行的趟数。
const defaultMaxPasses = 4

func main() {
	input := flag.String("in", "examples/demo.folio", "DSL 文件路径")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径")
	dataJSON := flag.String("data", "", "绑定到 DSL 的 JSON 数据")
	rowBreak := flag.String("row-break", layout.RowBreakAvoid, "表格行跨页行为：avoid 或 allow")
	maxPasses := flag.Int("max-passes", defaultMaxPasses, "占位符收敛循环的最大趟数")

	fonts := map[string]canvasmetrics.Resource{}
	flag.Func("font", "注入字体，形如 族名=字体文件路径（可重复）", func(v string) error {
		name, path, ok := strings.Cut(v, "=")
		if !ok || name == "" || path == "" {
			return fmt.Errorf("字体声明 %q 无效，应为 族名=路径", v)
		}
		fonts[name] = canvasmetrics.Resource{Path: path}
		return nil
	})
	flag.Parse()

	var inputData any
	if *dataJSON != "" {
		if err := json.Unmarshal([]byte(*dataJSON), &inputData); err != nil {
			log.Fatalf("解析 data JSON 失败: %v", err)
		}
	}

	if err := run(*input, *debug, *rowBreak, *maxPasses, inputData, fonts); err != nil {
		log.Fatalf("排版失败: %v", err)
	}
}

// run 串联解析、编译、度量、分页与占位符收敛循环。
func run(inputPath, debugPath, rowBreak string, maxPasses int, data any, fonts map[string]canvasmetrics.Resource) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("无法打开 DSL 文件 %s: %w", inputPath, err)
	}
	defer file.Close()

	ast, err := dsl.Parse(file)
	if err != nil {
		return fmt.Errorf("解析 DSL 失败: %w", err)
	}
	compiled, err := dsl.Compile(ast, data)
	if err != nil {
		return fmt.Errorf("编译 DSL 失败: %w", err)
	}

	measurer := canvasmetrics.New(canvasmetrics.Options{
		BaseDir: filepath.Dir(inputPath),
		Fonts:   fonts,
	})
	engine := paragraph.New(metrics.NewCache(measurer))

	opts := compiled.Options
	opts.TableRowBreak = rowBreak
	opts.Remeasure = engine.Remeasure

	result, passes, err := converge(engine, compiled, opts, maxPasses)
	if err != nil {
		return err
	}

	if debugPath != "" {
		if err := writeDebug(result, debugPath); err != nil {
			return err
		}
	}

	fmt.Printf("排版完成：《%s》共 %d 页，%d 趟收敛\n", compiled.Title, len(result.Pages), passes)
	return nil
}

// converge 驱动收敛循环：每趟度量并分页，然后解析页码与页码引用占位符；
// 没有任何块受影响时停止。占位符解析是克隆替换式的，循环只替换受影响的块。
func converge(engine *paragraph.Engine, compiled *dsl.Compiled, opts layout.Options, maxPasses int) (*layout.Result, int, error) {
	if maxPasses < 1 {
		maxPasses = 1
	}
	blocks := compiled.Blocks
	contentWidth := columnWidth(opts)

	var result *layout.Result
	passes := 0
	for passes < maxPasses {
		passes++
		measures, err := engine.MeasureBlocks(blocks, contentWidth)
		if err != nil {
			return nil, passes, fmt.Errorf("度量失败: %w", err)
		}
		result, err = layout.Build(blocks, measures, opts)
		if err != nil {
			return nil, passes, fmt.Errorf("布局计算失败: %w", err)
		}

		display := pagenum.DisplayNumbers(result)
		numbers := token.ResolvePageNumbers(result, blocks, display, len(result.Pages))
		blocks = applyResolved(blocks, numbers.Blocks)

		anchors := token.BuildAnchorMap(compiled.Bookmarks, result)
		refs := token.ResolvePageRefs(blocks, anchors)
		blocks = applyResolved(blocks, refs.Blocks)

		if len(numbers.Affected) == 0 && len(refs.Affected) == 0 {
			break
		}
	}
	return result, passes, nil
}

// applyResolved 按 id 把解析后的克隆替换进块序列，未受影响的块原样保留。
func applyResolved(blocks []doc.Block, resolved map[string]doc.Block) []doc.Block {
	if len(resolved) == 0 {
		return blocks
	}
	out := make([]doc.Block, len(blocks))
	for i, b := range blocks {
		if nb, ok := resolved[b.ID()]; ok {
			out[i] = nb
		} else {
			out[i] = b
		}
	}
	return out
}

// columnWidth 返回初始几何下的单栏宽度，度量阶段以此为段落可用宽度。
func columnWidth(opts layout.Options) float64 {
	count := opts.Columns.Count
	if count < 1 {
		count = 1
	}
	content := opts.PageSize.W - opts.Margins.Left - opts.Margins.Right
	return (content - opts.Columns.Gap*float64(count-1)) / float64(count)
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
