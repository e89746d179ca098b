package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestBrandingFallback 验证未提供品牌时报告有效并提示使用默认品牌。
func TestBrandingFallback(t *testing.T) {
	report := New().ValidateBranding(nil)
	assert.True(t, report.IsValid)
	assert.Equal(t, []string{"No branding supplied; using default branding"}, report.Warnings)
	assert.Equal(t, []string{}, report.Errors)

	report = New().ValidateBrandingJSON([]byte("null"))
	assert.True(t, report.IsValid)
	assert.Len(t, report.Warnings, 1)
}

func TestValidateBranding(t *testing.T) {
	tests := []struct {
		name         string
		branding     any
		wantErrors   []string
		wantWarnings []string
	}{
		{
			name:     "complete",
			branding: map[string]any{"municipality": "Springfield", "primaryColor": "#1A2b3C", "logoUrl": "https://example.org/logo.svg"},
		},
		{
			name:         "short color and no logo",
			branding:     map[string]any{"municipality": "Springfield", "primaryColor": "#abc"},
			wantWarnings: nil,
		},
		{
			name:         "missing color is defaultable",
			branding:     map[string]any{"municipality": "Springfield"},
			wantWarnings: []string{"No primaryColor supplied; using default theme color"},
		},
		{
			name:         "missing municipality",
			branding:     map[string]any{"municipality": "  ", "primaryColor": "#000"},
			wantErrors:   []string{"Missing required field: municipality"},
			wantWarnings: nil,
		},
		{
			name:       "bad colors",
			branding:   map[string]any{"municipality": "X", "primaryColor": "red", "secondaryColor": "#12345"},
			wantErrors: []string{"Invalid primaryColor: red", "Invalid secondaryColor: #12345"},
		},
		{
			name:       "non string color",
			branding:   map[string]any{"municipality": "X", "primaryColor": 255.0},
			wantErrors: []string{"Invalid primaryColor: non-string value"},
		},
		{
			name:       "relative logo",
			branding:   map[string]any{"municipality": "X", "primaryColor": "#fff", "logoUrl": "logo.png"},
			wantErrors: []string{"Invalid logoUrl: logo.png"},
		},
		{
			name:       "ftp logo",
			branding:   map[string]any{"municipality": "X", "primaryColor": "#fff", "logoUrl": "ftp://example.org/logo.png"},
			wantErrors: []string{"Invalid logoUrl: ftp://example.org/logo.png"},
		},
		{
			name:       "not an object",
			branding:   []any{"Springfield"},
			wantErrors: []string{"Branding must be an object"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := New().ValidateBranding(tt.branding)

			wantErrors := tt.wantErrors
			if wantErrors == nil {
				wantErrors = []string{}
			}
			wantWarnings := tt.wantWarnings
			if wantWarnings == nil {
				wantWarnings = []string{}
			}
			assert.Equal(t, wantErrors, report.Errors)
			assert.Equal(t, wantWarnings, report.Warnings)
			assert.Equal(t, len(wantErrors) == 0, report.IsValid)
		})
	}
}
