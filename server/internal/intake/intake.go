// Package intake 编排一次内容提交：解析、校验、记录审计、更新统计。
package intake

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"contentgate/server/internal/logger"
	"contentgate/server/internal/model"
	"contentgate/server/internal/submission"
	"contentgate/server/internal/validator"
)

// ContentValidator 是 Intake 依赖的校验能力。
type ContentValidator interface {
	ValidateContentContext(ctx context.Context, doc any) model.ValidationReport
}

// Intake 负责提交流水线。
//
// 约定：
// - 先校验再记录，记录里的报告就是返回给调用方的那一份。
// - 统计只由 Reduce 从记录归约得到，不在别处修改。
type Intake struct {
	validator ContentValidator
	store     submission.Store
	now       func() time.Time
	newID     func() string
	log       *logger.Logger

	mu    sync.RWMutex
	stats Stats
}

func New(v ContentValidator, store submission.Store, now func() time.Time, log *logger.Logger) *Intake {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Intake{
		validator: v,
		store:     store,
		now:       now,
		newID:     uuid.NewString,
		log:       log,
		stats:     NewStats(),
	}
}

// Submit 校验原始字节并写入审计记录。
// 内容本身的问题体现在 Record.Report 中；只有存储失败或 ctx 取消才返回 error。
func (in *Intake) Submit(ctx context.Context, raw []byte, source string) (*submission.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec := &submission.Record{
		ID:         in.newID(),
		Source:     source,
		SizeBytes:  len(raw),
		ReceivedAt: in.now(),
	}

	doc, err := validator.DecodeDocument(raw)
	if err != nil {
		rec.Report = model.FaultReport(err)
	} else {
		rec.Report = in.validator.ValidateContentContext(ctx, doc)
		meta := model.MetadataOf(doc)
		rec.DocumentID = meta.ID
		rec.Version = meta.Version
		rec.SceneCounts = countScenes(doc)
		if rec.Report.IsValid {
			in.summarize(rec, doc)
		}
	}

	seq, err := in.store.Append(ctx, rec)
	if err != nil {
		return nil, err
	}
	rec.Seq = seq

	in.mu.Lock()
	Reduce(&in.stats, rec)
	in.mu.Unlock()

	in.log.Info("[Intake] submission recorded",
		"id", rec.ID,
		"seq", rec.Seq,
		"document_id", rec.DocumentID,
		"source", source,
		"valid", rec.Report.IsValid,
		"errors", len(rec.Report.Errors),
		"warnings", len(rec.Report.Warnings),
	)
	return rec, nil
}

// Get 读取一条审计记录。
func (in *Intake) Get(ctx context.Context, id string) (*submission.Record, error) {
	return in.store.Get(ctx, id)
}

// List 列出审计记录。
func (in *Intake) List(ctx context.Context, opts submission.ListOptions) ([]submission.Record, error) {
	return in.store.List(ctx, opts)
}

// Stats 返回统计快照。
func (in *Intake) Stats() Stats {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.stats.Clone()
}

// IsNotFound 判断错误是否为记录不存在。
func IsNotFound(err error) bool {
	return errors.Is(err, submission.ErrNotFound)
}

// countScenes 按类型展示名统计场景数，非对象条目不计入。
func countScenes(doc any) map[string]int {
	root, ok := doc.(map[string]any)
	if !ok {
		return nil
	}
	content, ok := root["content"].(map[string]any)
	if !ok {
		return nil
	}
	scenes, ok := content["scenes"].([]any)
	if !ok {
		return nil
	}
	counts := make(map[string]int)
	for _, item := range scenes {
		raw, ok := item.(map[string]any)
		if !ok {
			continue
		}
		tag, _ := raw["sceneType"].(string)
		counts[model.ParseSceneType(tag).Label()]++
	}
	return counts
}

// summarize 对通过校验的文档做强类型解码，统计对话轮次与题目数。
func (in *Intake) summarize(rec *submission.Record, doc any) {
	root, _ := doc.(map[string]any)
	content, _ := root["content"].(map[string]any)
	scenes, _ := content["scenes"].([]any)
	for _, item := range scenes {
		raw, ok := item.(map[string]any)
		if !ok {
			continue
		}
		sc, err := model.DecodeScene(raw)
		if err != nil {
			in.log.Warn("[Intake] typed decode failed", "id", rec.ID, "error", err)
			continue
		}
		switch {
		case sc.Dialogue != nil:
			rec.DialogueTurns += len(sc.Dialogue.DialogueTurns)
		case sc.Quiz != nil:
			rec.QuizQuestions += len(sc.Quiz.Questions)
		}
	}
}
