// Package scene 按场景类型分派结构与语义校验。
package scene

import (
	"fmt"
	"sort"

	"contentgate/server/internal/budget"
	"contentgate/server/internal/model"
)

// Result 是单个场景的校验结果。
type Result struct {
	Errors   []string
	Warnings []string
}

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Input 是交给校验器的一个场景。
type Input struct {
	// Index 场景在 scenes 数组中的位置，从 0 开始。
	Index int
	// Label 用于错误信息的标识。
	Label string
	Raw   map[string]any
}

// Validator 某一场景类型的校验器。
// 实现必须是纯函数：只依赖场景本身和构造时注入的 Limits。
type Validator interface {
	// Type 返回负责的场景类型。
	Type() model.SceneType
	// Validate 返回该场景的错误与警告。
	Validate(in Input) Result
}

// Registry 场景校验器注册表。构造完成后只读，可并发使用。
type Registry struct {
	validators map[model.SceneType]Validator
}

// NewRegistry 创建空注册表。
func NewRegistry() *Registry {
	return &Registry{
		validators: make(map[model.SceneType]Validator),
	}
}

// DefaultRegistry 注册 Dialogue 与 Quiz 两种内置校验器。
func DefaultRegistry(l budget.Limits) *Registry {
	r := NewRegistry()
	r.Register(NewDialogueValidator(l))
	r.Register(NewQuizValidator(l))
	return r
}

// Register 注册校验器，同类型后注册的覆盖先注册的。
func (r *Registry) Register(v Validator) {
	r.validators[v.Type()] = v
}

// Get 获取场景类型对应的校验器。
func (r *Registry) Get(t model.SceneType) (Validator, bool) {
	v, ok := r.validators[t]
	return v, ok
}

// Types 返回已注册的类型（排序后，便于输出稳定）。
func (r *Registry) Types() []model.SceneType {
	types := make([]model.SceneType, 0, len(r.validators))
	for t := range r.validators {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// UnknownTypeError 场景类型没有对应的校验器。
// 前向兼容：调用方把它降级为警告，而不是错误。
type UnknownTypeError struct {
	Tag   string
	Label string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("Unrecognized scene type %q in scene %s; skipping validation", e.Tag, e.Label)
}

// Dispatch 按 sceneType 分派到对应校验器。
// 未注册的类型返回 *UnknownTypeError，由调用方决定如何呈现。
func (r *Registry) Dispatch(in Input) (model.SceneType, Result, error) {
	tag, _ := in.Raw["sceneType"].(string)
	t := model.ParseSceneType(tag)
	v, ok := r.Get(t)
	if !ok {
		return t, Result{}, &UnknownTypeError{Tag: tag, Label: in.Label}
	}
	return t, v.Validate(in), nil
}
