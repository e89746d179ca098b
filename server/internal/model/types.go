package model

import "time"

// FindingKind 标记一条校验结论所属的类别。
// 对外报告只暴露字符串，类别仅用于日志与统计。
type FindingKind string

const (
	// FindingStructural 顶层必填字段或 scenes 数组缺失。
	FindingStructural FindingKind = "structural"
	// FindingBudget 场景或整份文档超过字节预算。
	FindingBudget FindingKind = "budget"
	// FindingSemantic 场景类型相关的语义规则被违反。
	FindingSemantic FindingKind = "semantic"
	// FindingAdvisory 非阻断的质量提示。
	FindingAdvisory FindingKind = "advisory"
	// FindingInternal 校验过程自身失败（如循环引用）。
	FindingInternal FindingKind = "internal"
)

// Blocking 表示该类别的结论是否阻止发布。
func (k FindingKind) Blocking() bool {
	return k != FindingAdvisory
}

// Lighthouse 影响值：0 正常，-5 内容偏大，-10 校验本身失败。
const (
	LighthouseImpactNone  = 0
	LighthouseImpactLarge = -5
	LighthouseImpactFault = -10
)

// Performance 是报告中的性能估算部分。
type Performance struct {
	// ContentSize 内容体积，单位 KB，四舍五入取整。
	ContentSize int `json:"contentSize"`
	// EstimatedLoadTime 预估加载时间，单位毫秒，四舍五入取整。
	EstimatedLoadTime int `json:"estimatedLoadTime"`
	// LighthouseImpact 取值 0、-5 或 -10。
	LighthouseImpact int `json:"lighthouseImpact"`
}

// ValidationReport 是一次校验的唯一产物，每次调用都重新生成。
type ValidationReport struct {
	IsValid     bool        `json:"isValid"`
	Errors      []string    `json:"errors"`
	Warnings    []string    `json:"warnings"`
	Performance Performance `json:"performance"`
}

// NewReport 组装报告。errors/warnings 为 nil 时补成空切片，保证 JSON 中总是数组。
func NewReport(errs, warnings []string, perf Performance) ValidationReport {
	if errs == nil {
		errs = []string{}
	}
	if warnings == nil {
		warnings = []string{}
	}
	return ValidationReport{
		IsValid:     len(errs) == 0,
		Errors:      errs,
		Warnings:    warnings,
		Performance: perf,
	}
}

// FaultReport 把校验过程中的内部故障折叠成一条合成错误和 -10 哨兵值。
func FaultReport(err error) ValidationReport {
	msg := "unknown failure"
	if err != nil {
		msg = err.Error()
	}
	return NewReport(
		[]string{"Validation error: " + msg},
		nil,
		Performance{LighthouseImpact: LighthouseImpactFault},
	)
}

// IsFault 判断报告是否来自内部故障。
func (r ValidationReport) IsFault() bool {
	return r.Performance.LighthouseImpact == LighthouseImpactFault
}

// Metadata 是提交文档中 metadata 的已知字段，全部可选。
type Metadata struct {
	ID              string `json:"id,omitempty"`
	Version         string `json:"version,omitempty"`
	TargetPersona   string `json:"targetPersona,omitempty"`
	CulturalContext string `json:"culturalContext,omitempty"`
}

// MetadataOf 从原始文档中尽力提取 metadata，字段缺失或类型不对时留空。
func MetadataOf(doc any) Metadata {
	root, ok := doc.(map[string]any)
	if !ok {
		return Metadata{}
	}
	meta, ok := root["metadata"].(map[string]any)
	if !ok {
		return Metadata{}
	}
	str := func(key string) string {
		s, _ := meta[key].(string)
		return s
	}
	return Metadata{
		ID:              str("id"),
		Version:         str("version"),
		TargetPersona:   str("targetPersona"),
		CulturalContext: str("culturalContext"),
	}
}

// Branding 市政品牌配置。
type Branding struct {
	Municipality   string `json:"municipality"`
	PrimaryColor   string `json:"primaryColor,omitempty"`
	SecondaryColor string `json:"secondaryColor,omitempty"`
	LogoURL        string `json:"logoUrl,omitempty"`
}

// SubmissionSummary 是审计记录对外展示的精简视图。
type SubmissionSummary struct {
	ID         string    `json:"id"`
	Seq        int64     `json:"seq"`
	DocumentID string    `json:"documentId,omitempty"`
	Version    string    `json:"version,omitempty"`
	IsValid    bool      `json:"isValid"`
	Errors     int       `json:"errors"`
	Warnings   int       `json:"warnings"`
	ReceivedAt time.Time `json:"receivedAt"`
}
