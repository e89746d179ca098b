// Package validator 是内容校验的对外入口。
//
// 流水线：结构闸门 → 总体积预算 → 逐场景（体积预算 + 类型校验）→ 性能估算 → 耗时检查。
// 场景之间互不影响，一个场景的问题不会跳过后续场景。
package validator

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"contentgate/server/internal/budget"
	"contentgate/server/internal/logger"
	"contentgate/server/internal/model"
	"contentgate/server/internal/scene"
	"contentgate/server/internal/sizemeter"
)

const tracerName = "contentgate/validator"

// Validator 内容校验器。构造后只读，可被多个 goroutine 同时使用；
// 每次调用都分配自己的累加器，调用之间不共享状态。
type Validator struct {
	limits budget.Limits
	scenes *scene.Registry
	now    func() time.Time
	log    *logger.Logger
	tracer trace.Tracer
}

// Option 配置 Validator。
type Option func(*Validator)

// WithLimits 替换预算表。
func WithLimits(l budget.Limits) Option {
	return func(v *Validator) { v.limits = l }
}

// WithRegistry 替换场景校验器注册表。
func WithRegistry(r *scene.Registry) Option {
	return func(v *Validator) { v.scenes = r }
}

// WithClock 注入时钟，测试用来模拟慢校验。
func WithClock(now func() time.Time) Option {
	return func(v *Validator) { v.now = now }
}

// WithLogger 设置日志器。
func WithLogger(l *logger.Logger) Option {
	return func(v *Validator) { v.log = l }
}

func New(opts ...Option) *Validator {
	v := &Validator{
		limits: budget.DefaultLimits(),
		now:    time.Now,
		log:    logger.Nop(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.scenes == nil {
		v.scenes = scene.DefaultRegistry(v.limits)
	}
	if v.now == nil {
		v.now = time.Now
	}
	if v.log == nil {
		v.log = logger.Nop()
	}
	return v
}

// Limits 返回当前生效的预算表。
func (v *Validator) Limits() budget.Limits {
	return v.limits
}

// SceneTypes 返回已注册校验器的场景类型。
func (v *Validator) SceneTypes() []model.SceneType {
	return v.scenes.Types()
}

// collector 是单次调用的结论累加器。
type collector struct {
	errors   []string
	warnings []string
	counts   map[model.FindingKind]int
}

func newCollector() *collector {
	return &collector{counts: make(map[model.FindingKind]int)}
}

func (c *collector) add(kind model.FindingKind, msgs ...string) {
	if len(msgs) == 0 {
		return
	}
	c.counts[kind] += len(msgs)
	if kind.Blocking() {
		c.errors = append(c.errors, msgs...)
		return
	}
	c.warnings = append(c.warnings, msgs...)
}

// ValidateContent 校验一份已解析的文档。对任何输入（包括 nil 与循环结构）都返回完整报告。
func (v *Validator) ValidateContent(doc any) model.ValidationReport {
	return v.ValidateContentContext(context.Background(), doc)
}

// ValidateContentJSON 解析并校验原始字节。解析失败按内部故障处理。
func (v *Validator) ValidateContentJSON(raw []byte) model.ValidationReport {
	doc, err := DecodeDocument(raw)
	if err != nil {
		v.log.Warn("[Validator] decode failed", "error", err, "bytes", len(raw))
		return model.FaultReport(err)
	}
	return v.ValidateContent(doc)
}

// ValidateContentContext 与 ValidateContent 相同，ctx 只用于链路追踪，不会中断校验。
func (v *Validator) ValidateContentContext(ctx context.Context, doc any) model.ValidationReport {
	_, span := v.tracer.Start(ctx, "validator.ValidateContent")
	defer span.End()

	started := v.now()
	report, err := v.run(doc, started)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		v.log.Warn("[Validator] internal fault", "error", err)
		return model.FaultReport(err)
	}

	span.SetAttributes(
		attribute.Bool("content.valid", report.IsValid),
		attribute.Int("content.errors", len(report.Errors)),
		attribute.Int("content.warnings", len(report.Warnings)),
		attribute.Int("content.size_kb", report.Performance.ContentSize),
	)
	return report
}

// run 执行校验流水线。唯一可能的错误来自 sizemeter（循环或不可编码的值）。
func (v *Validator) run(doc any, started time.Time) (model.ValidationReport, error) {
	c := newCollector()

	structErrs, scenes := CheckStructure(doc)
	c.add(model.FindingStructural, structErrs...)

	totalSize, err := sizemeter.SizeOf(doc)
	if err != nil {
		return model.ValidationReport{}, err
	}
	c.add(model.FindingBudget, budget.CheckTotal(v.limits, totalSize)...)

	seenIDs := make(map[string]int, len(scenes))
	for i, item := range scenes {
		raw, ok := item.(map[string]any)
		if !ok {
			c.add(model.FindingStructural, fmt.Sprintf("Scene #%d is not an object", i))
			continue
		}
		label := scene.Label(raw, i)
		if id, ok := raw["sceneId"].(string); ok && id != "" {
			if first, dup := seenIDs[id]; dup {
				c.add(model.FindingAdvisory, fmt.Sprintf("Duplicate sceneId %q at scenes #%d and #%d", id, first, i))
			} else {
				seenIDs[id] = i
			}
		}
		if err := v.checkScene(c, i, label, raw); err != nil {
			return model.ValidationReport{}, err
		}
	}

	perf := budget.Performance(v.limits, totalSize)

	elapsed := v.now().Sub(started)
	if elapsed > v.limits.ValidationTimeout {
		c.add(model.FindingAdvisory, fmt.Sprintf("Validation took %dms, exceeding the %dms budget",
			elapsed.Milliseconds(), v.limits.ValidationTimeout.Milliseconds()))
	}

	v.log.Debug("[Validator] content validated",
		"scenes", len(scenes),
		"size_bytes", totalSize,
		"errors", len(c.errors),
		"warnings", len(c.warnings),
		"structural", c.counts[model.FindingStructural],
		"budget", c.counts[model.FindingBudget],
		"semantic", c.counts[model.FindingSemantic],
		"elapsed_ms", elapsed.Milliseconds(),
	)

	return model.NewReport(c.errors, c.warnings, perf), nil
}

// checkScene 处理单个场景：体积预算 + 按类型分派校验。
func (v *Validator) checkScene(c *collector, index int, label string, raw map[string]any) error {
	typ, res, err := v.scenes.Dispatch(scene.Input{Index: index, Label: label, Raw: raw})
	if err != nil {
		// 未识别的类型不是错误：作者可能先于校验器引入新类型。
		c.add(model.FindingAdvisory, err.Error())
		return nil
	}

	size, err := sizemeter.SizeOf(raw)
	if err != nil {
		return err
	}
	c.add(model.FindingBudget, budget.CheckScene(v.limits, typ, label, size)...)
	c.add(model.FindingSemantic, res.Errors...)
	c.add(model.FindingAdvisory, res.Warnings...)
	return nil
}
