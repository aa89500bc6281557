package doc

// Measure 是块的预计算几何，与 Blocks 序列按下标对齐（由调用方保证）。
type Measure interface {
	isMeasure()
}

// LineMeasure 描述段落中的一行：Start/End 是块内展平文本的局部偏移
// （按 rune 计数，区间左闭右开），宽高单位为 mm。
type LineMeasure struct {
	Start  int
	End    int
	Width  float64
	Height float64
}

// MarkerMeasure 是列表记号的测量结果。
type MarkerMeasure struct {
	Width  float64
	Height float64
}

// ParagraphMeasure 是段落（含列表）的度量：有序行描述加可选的记号测量。
type ParagraphMeasure struct {
	Lines  []LineMeasure
	Marker *MarkerMeasure
	// Width/Height 为整段的外接尺寸（最大行宽 / 行高之和）。
	Width  float64
	Height float64
}

func (*ParagraphMeasure) isMeasure() {}

// BoxMeasure 是图片与绘图对象的度量：固有宽高（mm）。
type BoxMeasure struct {
	Width  float64
	Height float64
}

func (*BoxMeasure) isMeasure() {}

// TableMeasure 是表格的度量：总宽、各列宽与各行高（mm）。
type TableMeasure struct {
	Width        float64
	ColumnWidths []float64
	RowHeights   []float64
}

func (m *TableMeasure) Height() float64 {
	total := 0.0
	for _, h := range m.RowHeights {
		total += h
	}
	return total
}

func (*TableMeasure) isMeasure() {}

// SectionMeasure 是分节符的空度量，仅用于保持两个序列对齐。
type SectionMeasure struct{}

func (*SectionMeasure) isMeasure() {}

// RemeasureFunc 由调用方提供，在收敛循环中对受占位符解析影响的段落重新测量。
// 引擎本身不会调用它。
type RemeasureFunc func(block Block, maxWidth, firstLineIndent float64) Measure
