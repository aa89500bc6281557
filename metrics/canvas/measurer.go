// Package canvasmetrics 基于 github.com/tdewolff/canvas 的字体面实现
// metrics.Measurer。它只承担测量职责：加载字体、按字体键创建字体面、
// 返回字符前进宽度与行度量，不做任何绘制。
package canvasmetrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/folio/metrics"
)

// 字体系统内部使用 pt，引擎几何使用 mm，边界处换算。
const ptToMm = 0.352777

// avgSample 用于冷测量派生平均字符宽度。
const avgSample = "abcdefghijklmnopqrstuvwxyz "

// Options 配置测量后端的字体来源。
type Options struct {
	BaseDir string
	// Fonts 按族名注入字体，Bytes 优先于 Path。
	Fonts map[string]Resource
}

// Resource 既可以由字节提供，也可以由路径提供。
type Resource struct {
	Bytes []byte
	Path  string
}

// Measurer 按字体键（"Family|sizePt|weight|style"）缓存字体族与字体面。
type Measurer struct {
	baseDir   string
	fontBlobs map[string][]byte

	mu       sync.Mutex
	families map[string]*canvas.FontFamily
	faces    map[string]*canvas.FontFace
}

var _ metrics.Measurer = (*Measurer)(nil)

// New 创建 canvas 测量后端。
func New(opts Options) *Measurer {
	m := &Measurer{
		baseDir:   opts.BaseDir,
		fontBlobs: map[string][]byte{},
		families:  map[string]*canvas.FontFamily{},
		faces:     map[string]*canvas.FontFace{},
	}
	for name, res := range opts.Fonts {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			m.fontBlobs[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			path := res.Path
			if m.baseDir != "" && !filepath.IsAbs(path) {
				path = filepath.Join(m.baseDir, path)
			}
			data, err := os.ReadFile(path)
			if err == nil && len(data) > 0 {
				m.fontBlobs[name] = data
			}
		}
	}
	return m
}

// MeasureChar 实现 metrics.Measurer。字体面以 pt 建面，出口换算为 mm。
func (m *Measurer) MeasureChar(fontKey string, r rune) (float64, bool) {
	face, err := m.face(fontKey)
	if err != nil {
		return 0, false
	}
	return face.TextWidth(string(r)) * ptToMm, true
}

// FontMetrics 实现 metrics.Measurer。
func (m *Measurer) FontMetrics(fontKey string) (metrics.FontMetrics, bool) {
	face, err := m.face(fontKey)
	if err != nil {
		return metrics.FontMetrics{}, false
	}
	fm := face.Metrics()
	avg := face.TextWidth(avgSample) / float64(len(avgSample))
	return metrics.FontMetrics{
		LineHeight:   fm.LineHeight * ptToMm,
		AvgCharWidth: avg * ptToMm,
		Ascent:       fm.Ascent * ptToMm,
	}, true
}

func (m *Measurer) face(fontKey string) (*canvas.FontFace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if face, ok := m.faces[fontKey]; ok {
		return face, nil
	}
	familyName, sizePt, style, err := parseFontKey(fontKey)
	if err != nil {
		return nil, err
	}
	family, err := m.ensureFamily(familyName, style)
	if err != nil {
		return nil, err
	}
	face := family.Face(sizePt, canvas.Black, style, canvas.FontNormal)
	m.faces[fontKey] = face
	return face, nil
}

func (m *Measurer) ensureFamily(name string, style canvas.FontStyle) (*canvas.FontFamily, error) {
	if family, ok := m.families[name]; ok {
		return family, nil
	}
	data, ok := m.fontBlobs[name]
	if !ok {
		return nil, fmt.Errorf("字体族 %s 未注入", name)
	}
	family := canvas.NewFontFamily(name)
	if err := family.LoadFont(data, 0, style); err != nil {
		return nil, fmt.Errorf("加载字体 %s 失败: %w", name, err)
	}
	m.families[name] = family
	return family, nil
}

// parseFontKey 解析 "Family|sizePt|weight|style" 形式的字体键。
func parseFontKey(fontKey string) (family string, sizePt float64, style canvas.FontStyle, err error) {
	parts := strings.Split(fontKey, "|")
	if len(parts) < 2 {
		return "", 0, canvas.FontRegular, fmt.Errorf("字体键 %q 缺少字号", fontKey)
	}
	family = parts[0]
	sizePt, err = strconv.ParseFloat(parts[1], 64)
	if err != nil || sizePt <= 0 {
		return "", 0, canvas.FontRegular, fmt.Errorf("字体键 %q 字号无效", fontKey)
	}
	weight := ""
	slant := ""
	if len(parts) > 2 {
		weight = parts[2]
	}
	if len(parts) > 3 {
		slant = parts[3]
	}
	return family, sizePt, parseFontStyle(weight, slant), nil
}

func parseFontStyle(weight, slant string) canvas.FontStyle {
	result := canvas.FontRegular
	switch strings.ToLower(weight) {
	case "black":
		result = canvas.FontBlack
	case "extrabold":
		result = canvas.FontExtraBold
	case "bold":
		result = canvas.FontBold
	case "semibold", "demibold":
		result = canvas.FontSemiBold
	case "medium":
		result = canvas.FontMedium
	case "light":
		result = canvas.FontLight
	}
	s := strings.ToLower(slant)
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}
