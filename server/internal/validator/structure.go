package validator

// 结构闸门的固定错误文案，调用方和测试按字面匹配。
const (
	errMissingMetadata = "Missing required field: metadata"
	errMissingContent  = "Missing required field: content"
	errMissingScenes   = "Missing or invalid scenes array"
)

// CheckStructure 检查顶层形状并返回尽可能多的发现。
// 它只报告，不阻止后续的场景校验；返回的 scenes 在数组存在时非 nil。
func CheckStructure(doc any) (errs []string, scenes []any) {
	root, _ := doc.(map[string]any)

	if v, ok := root["metadata"]; !ok || v == nil {
		errs = append(errs, errMissingMetadata)
	}

	content, ok := root["content"]
	if !ok || content == nil {
		errs = append(errs, errMissingContent)
	}

	contentObj, _ := content.(map[string]any)
	scenes, ok = contentObj["scenes"].([]any)
	if !ok {
		errs = append(errs, errMissingScenes)
		return errs, nil
	}
	return errs, scenes
}
