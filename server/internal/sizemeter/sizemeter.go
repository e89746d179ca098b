// Package sizemeter 计算任意 JSON 值序列化后的字节数。
package sizemeter

import (
	"bytes"
	"encoding/json"
)

// SerializationError 表示值无法序列化，最常见的是循环引用。
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string {
	return "serialization failed: " + e.Err.Error()
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// SizeOf 返回 value 紧凑 JSON 编码（UTF-8）的字节长度。
// 不转义 HTML 字符，与浏览器端 JSON.stringify 的长度保持一致。
// 循环结构、chan、func、NaN 等无法编码的值返回 *SerializationError。
func SizeOf(value any) (int, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return 0, &SerializationError{Err: err}
	}
	// Encode 会追加一个换行符。
	return buf.Len() - 1, nil
}
