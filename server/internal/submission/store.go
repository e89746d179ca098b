// Package submission 保存每次内容提交的审计记录。
package submission

import (
	"context"
	"errors"
	"time"

	"contentgate/server/internal/model"
)

var ErrNotFound = errors.New("submission not found")

// Record 一次提交的审计记录。Report 是当时生成的报告快照，之后不会被修改。
type Record struct {
	Seq        int64                  `json:"seq"`
	ID         string                 `json:"id"`
	DocumentID string                 `json:"documentId,omitempty"`
	Version    string                 `json:"version,omitempty"`
	Source     string                 `json:"source,omitempty"`
	Report     model.ValidationReport `json:"report"`
	SizeBytes  int                    `json:"sizeBytes"`
	// SceneCounts 按场景类型统计的数量，键为 DialogueScene/QuizScene 等展示名。
	SceneCounts map[string]int `json:"sceneCounts,omitempty"`
	// 以下两项只对通过校验的文档统计。
	DialogueTurns int       `json:"dialogueTurns,omitempty"`
	QuizQuestions int       `json:"quizQuestions,omitempty"`
	ReceivedAt    time.Time `json:"receivedAt"`
}

// Summary 返回列表展示用的精简视图。
func (r *Record) Summary() model.SubmissionSummary {
	return model.SubmissionSummary{
		ID:         r.ID,
		Seq:        r.Seq,
		DocumentID: r.DocumentID,
		Version:    r.Version,
		IsValid:    r.Report.IsValid,
		Errors:     len(r.Report.Errors),
		Warnings:   len(r.Report.Warnings),
		ReceivedAt: r.ReceivedAt,
	}
}

// ListOptions 过滤条件。Limit<=0 表示不限制，取最近的 Limit 条。
type ListOptions struct {
	Limit       int
	InvalidOnly bool
	DocumentID  string
}

type Store interface {
	// Append 追加记录并分配单调递增的 seq；相同 ID 重复追加返回已分配的 seq。
	Append(ctx context.Context, rec *Record) (int64, error)
	Get(ctx context.Context, id string) (*Record, error)
	// List 按 seq 升序返回记录副本。
	List(ctx context.Context, opts ListOptions) ([]Record, error)
}
