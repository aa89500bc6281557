package binding

import "testing"

func testData() any {
	return map[string]any{
		"user": map[string]any{
			"name": "张三",
			"tags": []any{"a", "b"},
		},
		"items": []any{
			map[string]any{"title": "first"},
		},
		"count": 3,
	}
}

// TestInterpolateBasics 覆盖点分路径、数组下标与多表达式替换。
func TestInterpolateBasics(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"你好 ${user.name}", "你好 张三"},
		{"${user.tags[1]}", "b"},
		{"${items[0].title}", "first"},
		{"${items.0.title}", "first"}, // 纯数字段等价于下标
		{"${count} 件", "3 件"},
		{"${user.name}/${count}", "张三/3"},
		{"no expressions", "no expressions"},
	}
	for _, c := range cases {
		if got := Interpolate(c.in, testData()); got != c.want {
			t.Fatalf("Interpolate(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

// TestInterpolateFallback 验证路径缺失时采用回退值，无回退时保留占位符。
func TestInterpolateFallback(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"${user.missing|匿名}", "匿名"},
		{"${user.missing}", "${user.missing}"},
		{"${user.tags[9]|-}", "-"},
		{"${|x}", "${|x}"}, // 空路径原样保留
	}
	for _, c := range cases {
		if got := Interpolate(c.in, testData()); got != c.want {
			t.Fatalf("Interpolate(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

// TestInterpolateNilData 验证无数据时文本原样返回。
func TestInterpolateNilData(t *testing.T) {
	in := "keep ${user.name}"
	if got := Interpolate(in, nil); got != in {
		t.Fatalf("nil 数据应原样返回，实际 %q", got)
	}
}
