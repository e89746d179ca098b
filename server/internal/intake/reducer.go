package intake

import (
	"maps"
	"time"

	"contentgate/server/internal/submission"
)

// Stats 提交统计，全部由 Reduce 从审计记录归约得到。
type Stats struct {
	Total    int `json:"total"`
	Valid    int `json:"valid"`
	Invalid  int `json:"invalid"`
	Faults   int `json:"faults"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	// BytesTotal 累计提交字节数，LargestBytes 单次提交最大字节数。
	BytesTotal   int64          `json:"bytesTotal"`
	LargestBytes int            `json:"largestBytes"`
	SceneCounts  map[string]int `json:"sceneCounts"`
	LastReceived time.Time      `json:"lastReceived,omitempty"`
}

func NewStats() Stats {
	return Stats{SceneCounts: make(map[string]int)}
}

// Clone 返回深拷贝。
func (s Stats) Clone() Stats {
	s.SceneCounts = maps.Clone(s.SceneCounts)
	if s.SceneCounts == nil {
		s.SceneCounts = make(map[string]int)
	}
	return s
}

// Reduce 只做统计归约，不做任何 IO。
func Reduce(stats *Stats, rec *submission.Record) *Stats {
	if stats == nil || rec == nil {
		return stats
	}
	if stats.SceneCounts == nil {
		stats.SceneCounts = make(map[string]int)
	}

	stats.Total++
	switch {
	case rec.Report.IsFault():
		// 故障报告同时也是无效报告。
		stats.Faults++
		stats.Invalid++
	case rec.Report.IsValid:
		stats.Valid++
	default:
		stats.Invalid++
	}
	stats.Errors += len(rec.Report.Errors)
	stats.Warnings += len(rec.Report.Warnings)
	stats.BytesTotal += int64(rec.SizeBytes)
	stats.LargestBytes = max(stats.LargestBytes, rec.SizeBytes)
	for label, n := range rec.SceneCounts {
		stats.SceneCounts[label] += n
	}
	if rec.ReceivedAt.After(stats.LastReceived) {
		stats.LastReceived = rec.ReceivedAt
	}
	return stats
}
