// Package budget 定义内容体积预算与性能估算。
//
// 这些上限来自运行时"受限网络下 2 秒内加载完成"的产品约束，超限一律是错误，不是建议。
package budget

import (
	"fmt"
	"math"
	"time"

	"contentgate/server/internal/model"
)

// 与既有调用方/测试互通的契约常量，数值不可改。
const (
	DialogueSceneMax   = 51200  // 50 KiB
	QuizSceneMax       = 30720  // 30 KiB
	AssessmentSceneMax = 76800  // 75 KiB，预留
	TotalJSONMax       = 512000 // 500 KiB

	MaxLoadingTime     = 2000 * time.Millisecond
	MinLighthouseScore = 95
	ValidationTimeout  = 5000 * time.Millisecond
)

// 产品调优值，没有推导公式，只作为配置保留。
const (
	DefaultMaxQuizQuestions      = 10
	DefaultMaxSceneDurationSec   = 420 // 7 分钟课时目标
	DefaultMaxTurnTextChars      = 500
	DefaultLargeContentThreshold = 0.8
)

// Limits 是注入给校验器的一份不可变预算表。
// 按值传递，测试可以覆盖其中字段而不影响全局状态。
type Limits struct {
	DialogueSceneMax   int
	QuizSceneMax       int
	AssessmentSceneMax int
	TotalJSONMax       int

	ValidationTimeout time.Duration

	MaxQuizQuestions    int
	MaxSceneDurationSec float64
	MaxTurnTextChars    int
	// LargeContentRatio 总体积超过 TotalJSONMax*ratio 时给出 -5 的性能影响。
	LargeContentRatio float64
}

// DefaultLimits 返回契约默认值。
func DefaultLimits() Limits {
	return Limits{
		DialogueSceneMax:    DialogueSceneMax,
		QuizSceneMax:        QuizSceneMax,
		AssessmentSceneMax:  AssessmentSceneMax,
		TotalJSONMax:        TotalJSONMax,
		ValidationTimeout:   ValidationTimeout,
		MaxQuizQuestions:    DefaultMaxQuizQuestions,
		MaxSceneDurationSec: DefaultMaxSceneDurationSec,
		MaxTurnTextChars:    DefaultMaxTurnTextChars,
		LargeContentRatio:   DefaultLargeContentThreshold,
	}
}

// SceneMax 返回某场景类型的字节上限。Assessment 暂不生效，未知类型没有上限。
func (l Limits) SceneMax(t model.SceneType) (int, bool) {
	switch t {
	case model.SceneTypeDialogue:
		return l.DialogueSceneMax, true
	case model.SceneTypeQuiz:
		return l.QuizSceneMax, true
	default:
		return 0, false
	}
}

// KB 把字节数换算成四舍五入的 KB。
func KB(bytes int) int {
	return int(math.Round(float64(bytes) / 1024))
}

// CheckScene 检查单个场景的体积。label 通常是 sceneId。
func CheckScene(l Limits, t model.SceneType, label string, size int) []string {
	limit, ok := l.SceneMax(t)
	if !ok || size <= limit {
		return nil
	}
	return []string{fmt.Sprintf("%s %s size %dKB exceeds limit %dKB", t.Label(), label, KB(size), KB(limit))}
}

// CheckTotal 检查整份文档的体积。
func CheckTotal(l Limits, size int) []string {
	if size <= l.TotalJSONMax {
		return nil
	}
	return []string{fmt.Sprintf("Total content size %dKB exceeds limit %dKB", KB(size), KB(l.TotalJSONMax))}
}
