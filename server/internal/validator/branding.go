package validator

import (
	"net/url"
	"regexp"
	"strings"

	"contentgate/server/internal/model"
)

var hexColorRE = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

const (
	warnNoBranding     = "No branding supplied; using default branding"
	warnNoPrimaryColor = "No primaryColor supplied; using default theme color"
)

// ValidateBranding 校验市政品牌配置。
// 缺省品牌是产品策略：nil 输入有效，只给一条警告。
func (v *Validator) ValidateBranding(branding any) model.ValidationReport {
	if branding == nil {
		return model.NewReport(nil, []string{warnNoBranding}, model.Performance{})
	}

	b, ok := branding.(map[string]any)
	if !ok {
		return model.NewReport([]string{"Branding must be an object"}, nil, model.Performance{})
	}

	var errs, warnings []string

	if s, ok := b["municipality"].(string); !ok || strings.TrimSpace(s) == "" {
		errs = append(errs, "Missing required field: municipality")
	}

	switch color, present := b["primaryColor"]; {
	case !present || color == nil:
		warnings = append(warnings, warnNoPrimaryColor)
	case !isHexColor(color):
		errs = append(errs, "Invalid primaryColor: "+describe(color))
	}

	if color, present := b["secondaryColor"]; present && color != nil && !isHexColor(color) {
		errs = append(errs, "Invalid secondaryColor: "+describe(color))
	}

	if logo, present := b["logoUrl"]; present && logo != nil && !isHTTPURL(logo) {
		errs = append(errs, "Invalid logoUrl: "+describe(logo))
	}

	v.log.Debug("[Validator] branding validated", "errors", len(errs), "warnings", len(warnings))
	return model.NewReport(errs, warnings, model.Performance{})
}

// ValidateBrandingJSON 解析并校验品牌配置，字面量 null 视为未提供。
func (v *Validator) ValidateBrandingJSON(raw []byte) model.ValidationReport {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return v.ValidateBranding(nil)
	}
	doc, err := DecodeDocument(raw)
	if err != nil {
		return model.FaultReport(err)
	}
	return v.ValidateBranding(doc)
}

func isHexColor(v any) bool {
	s, ok := v.(string)
	return ok && hexColorRE.MatchString(s)
}

// isHTTPURL 要求绝对的 http/https 地址且带主机名。
func isHTTPURL(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	u, err := url.ParseRequestURI(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func describe(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return "non-string value"
}
