// Package binding 提供文本插值：把 ${path.to.value} 形式的表达式替换为
// 外部数据中的值，供 DSL 编译阶段在生成文本片段前调用。
package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 表达式可携带回退值：${user.name|匿名}，路径解析失败时采用回退文本；
// 没有回退值且路径不存在时保留原占位符。
func Interpolate(text string, data any) string {
	if data == nil || !strings.Contains(text, "${") {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		expr := match[2 : len(match)-1]
		path, fallback, hasFallback := strings.Cut(expr, "|")
		path = strings.TrimSpace(path)
		if path == "" {
			return match
		}
		if val, ok := resolvePath(data, path); ok {
			return fmt.Sprint(val)
		}
		if hasFallback {
			return fallback
		}
		return match
	})
}

// resolvePath 沿点分路径下钻。段可以是映射键、数组下标（纯数字段或
// name[0] 形式），任一段解析失败即整体失败。
func resolvePath(data any, path string) (any, bool) {
	current := data
	for _, segment := range strings.Split(path, ".") {
		name, indexes := parseSegment(segment)
		if name != "" {
			if idx, err := strconv.Atoi(name); err == nil {
				var ok bool
				current, ok = descendArray(current, idx)
				if !ok {
					return nil, false
				}
			} else {
				var ok bool
				current, ok = descendMap(current, name)
				if !ok {
					return nil, false
				}
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			var ok bool
			current, ok = descendArray(current, idx)
			if !ok {
				return nil, false
			}
		}
	}
	return current, true
}

// parseSegment 把 "name[0][1]" 拆为名字与下标序列。
func parseSegment(segment string) (string, []string) {
	name := segment
	var indexes []string
	if i := strings.IndexByte(segment, '['); i != -1 {
		name = segment[:i]
		rest := segment[i:]
		for strings.HasPrefix(rest, "[") {
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				break
			}
			indexes = append(indexes, rest[1:end])
			rest = rest[end+1:]
		}
	}
	return name, indexes
}

func descendMap(current any, key string) (any, bool) {
	m, ok := current.(map[string]any)
	if !ok {
		return nil, false
	}
	val, ok := m[key]
	return val, ok
}

func descendArray(current any, idx int) (any, bool) {
	arr, ok := current.([]any)
	if !ok || idx < 0 || idx >= len(arr) {
		return nil, false
	}
	return arr[idx], true
}
