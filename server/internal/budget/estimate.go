package budget

import (
	"math"

	"contentgate/server/internal/model"
)

const (
	// minLoadTimeMs 网络与渲染的固定开销。
	minLoadTimeMs = 500.0
	// loadMsPerByte 传输与解析的线性成本。
	loadMsPerByte = 0.002
)

// Estimate 是性能估算的原始值，未取整。
type Estimate struct {
	LoadTimeMs       float64
	LighthouseImpact int
}

// EstimateLoad 按固定公式估算加载时间与 Lighthouse 影响。
// 公式是针对 2 秒预算校准过的简化模型，按原样复现，不要"改进"。
func EstimateLoad(l Limits, totalBytes int) Estimate {
	est := Estimate{
		LoadTimeMs:       math.Max(minLoadTimeMs, float64(totalBytes)*loadMsPerByte),
		LighthouseImpact: model.LighthouseImpactNone,
	}
	if float64(totalBytes) > l.LargeContentRatio*float64(l.TotalJSONMax) {
		est.LighthouseImpact = model.LighthouseImpactLarge
	}
	return est
}

// Performance 生成报告中的性能字段。
func Performance(l Limits, totalBytes int) model.Performance {
	est := EstimateLoad(l, totalBytes)
	return model.Performance{
		ContentSize:       KB(totalBytes),
		EstimatedLoadTime: int(math.Round(est.LoadTimeMs)),
		LighthouseImpact:  est.LighthouseImpact,
	}
}

