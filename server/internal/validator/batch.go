package validator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"contentgate/server/internal/model"
)

// DefaultBatchConcurrency 批量校验的默认并发度。
const DefaultBatchConcurrency = 4

// ValidateBatch 并行校验多份原始文档，结果与输入一一对应、顺序一致。
// 单份文档的问题只体现在它自己的报告里；只有 ctx 被取消时才返回错误。
func (v *Validator) ValidateBatch(ctx context.Context, docs [][]byte, concurrency int) ([]model.ValidationReport, error) {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}

	reports := make([]model.ValidationReport, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, raw := range docs {
		i, raw := i, raw
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := DecodeDocument(raw)
			if err != nil {
				reports[i] = model.FaultReport(err)
				return nil
			}
			reports[i] = v.ValidateContentContext(gctx, doc)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	v.log.Debug("[Validator] batch validated", "documents", len(docs), "concurrency", concurrency)
	return reports, nil
}
