package layout

import (
	"math"
	"testing"

	"github.com/ByLCY/folio/doc"
)

// newTestFloats 建立单栏 100×200、四边距 10 的浮动管理器。
// 栏原点 10，栏宽 80。
func newTestFloats() *floatManager {
	f := &floatManager{}
	f.SetContext(Size{W: 100, H: 200}, Margins{Top: 10, Right: 10, Bottom: 10, Left: 10}, Columns{Count: 1})
	return f
}

// TestRegisterSkipsNonFloating 验证未锚定或环绕为 none 的对象不建排除区。
func TestRegisterSkipsNonFloating(t *testing.T) {
	f := newTestFloats()
	d := &doc.Drawing{BlockID: "d1", Float: &doc.FloatProps{Anchored: false, Wrap: doc.WrapBoth}}
	if zone := f.RegisterDrawing(d, &doc.BoxMeasure{Width: 30, Height: 40}, 50, 0, 1); zone != nil {
		t.Fatalf("未锚定对象不应建区")
	}
	d.Float = &doc.FloatProps{Anchored: true, Wrap: doc.WrapNone}
	if zone := f.RegisterDrawing(d, &doc.BoxMeasure{Width: 30, Height: 40}, 50, 0, 1); zone != nil {
		t.Fatalf("环绕为 none 的对象不应建区")
	}
	if d2 := (&doc.Drawing{BlockID: "d2"}); f.RegisterDrawing(d2, &doc.BoxMeasure{Width: 30, Height: 40}, 50, 0, 1) != nil {
		t.Fatalf("无浮动属性的对象不应建区")
	}
	if len(f.Zones()) != 0 {
		t.Fatalf("排除区应为空，实际 %d 个", len(f.Zones()))
	}
}

// TestAvailableWidthLeftWrap 验证对象靠左时正文从右侧绕行：
// 左界被推到对象右缘加左右间距之和。
func TestAvailableWidthLeftWrap(t *testing.T) {
	f := newTestFloats()
	d := &doc.Drawing{BlockID: "d1", Float: &doc.FloatProps{
		Anchored: true, Wrap: doc.WrapLeft, Align: doc.AlignLeft,
		DistLeft: 2, DistRight: 2,
	}}
	zone := f.RegisterDrawing(d, &doc.BoxMeasure{Width: 30, Height: 40}, 50, 0, 1)
	if zone == nil {
		t.Fatalf("锚定对象应建区")
	}
	if math.Abs(zone.X-10) > 1e-9 {
		t.Fatalf("靠左对象 X 期望 10，实际 %g", zone.X)
	}

	width, offset := f.AvailableWidth(60, 5, 0, 1)
	if math.Abs(width-46) > 1e-9 || math.Abs(offset-34) > 1e-9 {
		t.Fatalf("可用宽度期望 (46, 34)，实际 (%g, %g)", width, offset)
	}

	// 条带在区外时全宽可用。
	width, offset = f.AvailableWidth(100, 5, 0, 1)
	if math.Abs(width-80) > 1e-9 || offset != 0 {
		t.Fatalf("区外条带期望 (80, 0)，实际 (%g, %g)", width, offset)
	}
}

// TestAvailableWidthFullyBlocked 验证两侧排除区把一行完全挤没时
// 返回最小宽度 1、偏移 0，而不是负宽。
func TestAvailableWidthFullyBlocked(t *testing.T) {
	f := newTestFloats()
	left := &doc.Drawing{BlockID: "L", Float: &doc.FloatProps{Anchored: true, Wrap: doc.WrapLeft, Align: doc.AlignLeft}}
	right := &doc.Drawing{BlockID: "R", Float: &doc.FloatProps{Anchored: true, Wrap: doc.WrapRight, Align: doc.AlignRight}}
	f.RegisterDrawing(left, &doc.BoxMeasure{Width: 50, Height: 40}, 50, 0, 1)
	f.RegisterDrawing(right, &doc.BoxMeasure{Width: 50, Height: 40}, 50, 0, 1)

	width, offset := f.AvailableWidth(60, 5, 0, 1)
	if width != minLineWidth || offset != 0 {
		t.Fatalf("完全遮挡期望 (%g, 0)，实际 (%g, %g)", minLineWidth, width, offset)
	}
}

// TestExclusionsForBandUsesClearances 验证竖直相交测试按上下间距扩展区。
func TestExclusionsForBandUsesClearances(t *testing.T) {
	f := newTestFloats()
	d := &doc.Drawing{BlockID: "d1", Float: &doc.FloatProps{
		Anchored: true, Wrap: doc.WrapBoth, DistTop: 5, DistBottom: 5,
	}}
	f.RegisterDrawing(d, &doc.BoxMeasure{Width: 30, Height: 10}, 50, 0, 1)

	if got := f.ExclusionsForBand(42, 4, 0, 1); len(got) != 1 {
		t.Fatalf("条带 [42,46) 应与扩展后的区 [45,65) 相交，实际命中 %d", len(got))
	}
	if got := f.ExclusionsForBand(30, 10, 0, 1); len(got) != 0 {
		t.Fatalf("条带 [30,40) 不应与扩展后的区相交，实际命中 %d", len(got))
	}
	if got := f.ExclusionsForBand(50, 5, 0, 2); len(got) != 0 {
		t.Fatalf("其他页的查询不应命中本页的区")
	}
}

// TestFloatXPageBasisOnSingleColumn 验证单栏文档的 page 参照退化为 margin 参照。
func TestFloatXPageBasisOnSingleColumn(t *testing.T) {
	f := newTestFloats()
	props := &doc.FloatProps{Anchored: true, Wrap: doc.WrapBoth, Align: doc.AlignRight, RelativeFrom: doc.RelPage}
	x := f.floatX(props, 20, 0)
	if math.Abs(x-70) > 1e-9 {
		t.Fatalf("单栏 page 参照右对齐期望 X=70（边距内），实际 %g", x)
	}

	f.SetContext(Size{W: 100, H: 200}, Margins{Top: 10, Right: 10, Bottom: 10, Left: 10}, Columns{Count: 2, Gap: 10})
	x = f.floatX(props, 20, 0)
	if math.Abs(x-80) > 1e-9 {
		t.Fatalf("多栏 page 参照右对齐期望 X=80（页缘），实际 %g", x)
	}
}

// TestClearResetsZones 验证两次布局之间 Clear 清空全部排除区。
func TestClearResetsZones(t *testing.T) {
	f := newTestFloats()
	d := &doc.Drawing{BlockID: "d1", Float: &doc.FloatProps{Anchored: true, Wrap: doc.WrapBoth}}
	f.RegisterDrawing(d, &doc.BoxMeasure{Width: 30, Height: 40}, 50, 0, 1)
	f.Clear()
	if len(f.Zones()) != 0 {
		t.Fatalf("Clear 后应无排除区")
	}
}
