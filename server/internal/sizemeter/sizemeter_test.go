package sizemeter

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeOf(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int
	}{
		{name: "null", value: nil, want: 4},
		{name: "empty object", value: map[string]any{}, want: 2},
		{name: "string", value: "hi", want: 4},
		{name: "object", value: map[string]any{"a": 1}, want: 7},
		{name: "array", value: []any{true, false}, want: 12},
		{name: "html not escaped", value: "<&>", want: 5},
		{name: "multibyte utf8", value: "é", want: 4},
		{name: "json number literal", value: json.Number("1.50"), want: 4},
		{
			name: "nested",
			value: map[string]any{
				"scenes": []any{map[string]any{"sceneId": "d1"}},
			},
			want: len(`{"scenes":[{"sceneId":"d1"}]}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SizeOf(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestSizeOfCycle 验证循环引用返回 SerializationError 而不是死循环或 panic。
func TestSizeOfCycle(t *testing.T) {
	m := map[string]any{"name": "loop"}
	m["self"] = m

	_, err := SizeOf(m)
	require.Error(t, err)

	var serr *SerializationError
	require.True(t, errors.As(err, &serr))
	assert.Contains(t, err.Error(), "serialization failed")
}

func TestSizeOfUnsupported(t *testing.T) {
	_, err := SizeOf(math.NaN())
	var serr *SerializationError
	assert.True(t, errors.As(err, &serr))

	_, err = SizeOf(map[string]any{"fn": func() {}})
	assert.True(t, errors.As(err, &serr))
}
