package scene

import (
	"encoding/json"
	"fmt"
	"strings"
)

// 原始 JSON 的受控访问器：字段不存在、类型不对都当作"缺失"，从不 panic。

func asObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok && m != nil
}

// stringField 返回去除首尾空白后非空的字符串字段。
func stringField(m map[string]any, key string) (string, bool) {
	s, ok := m[key].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

func arrayField(m map[string]any, key string) ([]any, bool) {
	arr, ok := m[key].([]any)
	return arr, ok
}

// numberField 同时接受 float64（encoding/json 默认）、json.Number（UseNumber）和 Go 整型。
func numberField(m map[string]any, key string) (float64, bool) {
	switch n := m[key].(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// Label 返回场景在错误信息中的标识：优先 sceneId，否则用 "#序号"。
func Label(raw map[string]any, index int) string {
	if id, ok := stringField(raw, "sceneId"); ok {
		return id
	}
	return fmt.Sprintf("#%d", index)
}

// formatNumber 去掉整数值的小数部分，"480" 而不是 "480.000000"。
func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
