package scene

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentgate/server/internal/budget"
	"contentgate/server/internal/model"
)

func validDialogue() map[string]any {
	return map[string]any{
		"sceneId":   "d1",
		"sceneType": "Dialogue",
		"characters": []any{
			map[string]any{"characterId": "a", "name": "A", "role": "r"},
		},
		"dialogueTurns": []any{
			map[string]any{"speaker": "A", "characterId": "a", "text": "hi"},
		},
	}
}

func validQuiz() map[string]any {
	return map[string]any{
		"sceneId":   "q1",
		"sceneType": "Quiz",
		"questions": []any{
			map[string]any{
				"questionId":   "qa",
				"questionType": "true_false",
				"questionText": "Sky is blue?",
				"options": []any{
					map[string]any{"optionId": "t", "text": "True", "isCorrect": true},
					map[string]any{"optionId": "f", "text": "False", "isCorrect": false},
				},
			},
		},
	}
}

func TestRegistryDispatch(t *testing.T) {
	r := DefaultRegistry(budget.DefaultLimits())
	assert.Equal(t, []model.SceneType{model.SceneTypeDialogue, model.SceneTypeQuiz}, r.Types())

	typ, res, err := r.Dispatch(Input{Label: "d1", Raw: validDialogue()})
	require.NoError(t, err)
	assert.Equal(t, model.SceneTypeDialogue, typ)
	assert.Empty(t, res.Errors)

	typ, res, err = r.Dispatch(Input{Label: "q1", Raw: validQuiz()})
	require.NoError(t, err)
	assert.Equal(t, model.SceneTypeQuiz, typ)
	assert.Empty(t, res.Errors)
}

// TestRegistryDispatchAliases 验证长名标签 "DialogueScene"/"QuizScene" 同样被识别。
func TestRegistryDispatchAliases(t *testing.T) {
	r := DefaultRegistry(budget.DefaultLimits())

	d := validDialogue()
	d["sceneType"] = "DialogueScene"
	typ, _, err := r.Dispatch(Input{Label: "d1", Raw: d})
	require.NoError(t, err)
	assert.Equal(t, model.SceneTypeDialogue, typ)

	q := validQuiz()
	q["sceneType"] = "QuizScene"
	typ, _, err = r.Dispatch(Input{Label: "q1", Raw: q})
	require.NoError(t, err)
	assert.Equal(t, model.SceneTypeQuiz, typ)
}

func TestRegistryDispatchUnknown(t *testing.T) {
	r := DefaultRegistry(budget.DefaultLimits())

	for _, tag := range []string{"FutureScene", "Assessment", ""} {
		raw := map[string]any{"sceneId": "x1", "sceneType": tag}
		_, res, err := r.Dispatch(Input{Label: "x1", Raw: raw})

		var unknown *UnknownTypeError
		require.True(t, errors.As(err, &unknown), "tag %q", tag)
		assert.Equal(t, tag, unknown.Tag)
		assert.Contains(t, err.Error(), "x1")
		assert.Empty(t, res.Errors)
	}
}

// stubValidator 用于验证注册表可以扩展新的场景类型。
type stubValidator struct{}

func (stubValidator) Type() model.SceneType { return model.SceneTypeAssessment }

func (stubValidator) Validate(in Input) Result {
	return Result{Warnings: []string{"checked " + in.Label}}
}

func TestRegistryRegisterExtension(t *testing.T) {
	r := DefaultRegistry(budget.DefaultLimits())
	r.Register(stubValidator{})

	typ, res, err := r.Dispatch(Input{Label: "a1", Raw: map[string]any{"sceneType": "Assessment"}})
	require.NoError(t, err)
	assert.Equal(t, model.SceneTypeAssessment, typ)
	assert.Equal(t, []string{"checked a1"}, res.Warnings)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "d1", Label(map[string]any{"sceneId": "d1"}, 0))
	assert.Equal(t, "#3", Label(map[string]any{"sceneId": "  "}, 3))
	assert.Equal(t, "#0", Label(map[string]any{"sceneId": 42.0}, 0))
}
