package scene

import (
	"unicode/utf8"

	"contentgate/server/internal/budget"
	"contentgate/server/internal/model"
)

var dialogueTurnFields = []string{"speaker", "characterId", "text"}

// DialogueValidator 校验对话场景。
type DialogueValidator struct {
	maxTurnChars   int
	maxDurationSec float64
}

// NewDialogueValidator 从预算表读取长台词与时长阈值。
func NewDialogueValidator(l budget.Limits) *DialogueValidator {
	return &DialogueValidator{
		maxTurnChars:   l.MaxTurnTextChars,
		maxDurationSec: l.MaxSceneDurationSec,
	}
}

func (v *DialogueValidator) Type() model.SceneType {
	return model.SceneTypeDialogue
}

func (v *DialogueValidator) Validate(in Input) Result {
	var res Result
	kind := model.SceneTypeDialogue.Label()
	sc := in.Raw

	if _, ok := stringField(sc, "sceneId"); !ok {
		res.errorf("%s %s missing required field: sceneId", kind, in.Label)
	}

	declared := map[string]bool{}
	characters, ok := arrayField(sc, "characters")
	switch {
	case !ok:
		res.errorf("%s %s missing or invalid characters array", kind, in.Label)
	case len(characters) == 0:
		res.errorf("%s %s has no characters", kind, in.Label)
	default:
		for _, c := range characters {
			if ch, ok := asObject(c); ok {
				if id, ok := stringField(ch, "characterId"); ok {
					declared[id] = true
				}
			}
		}
	}

	turns, ok := arrayField(sc, "dialogueTurns")
	if !ok {
		res.errorf("%s %s missing or invalid dialogueTurns array", kind, in.Label)
	}
	for i, raw := range turns {
		n := i + 1
		turn, ok := asObject(raw)
		if !ok {
			res.errorf("%s %s turn %d is not an object", kind, in.Label, n)
			continue
		}
		for _, field := range dialogueTurnFields {
			if _, ok := stringField(turn, field); !ok {
				res.errorf("%s %s turn %d missing required field: %s", kind, in.Label, n, field)
			}
		}
		if text, ok := stringField(turn, "text"); ok {
			if chars := utf8.RuneCountInString(text); chars > v.maxTurnChars {
				res.warnf("%s %s turn %d text is very long (%d characters, recommended max %d)",
					kind, in.Label, n, chars, v.maxTurnChars)
			}
		}
		// 角色表本身有问题时已经报错，不再逐句追加提示。
		if id, ok := stringField(turn, "characterId"); ok && len(declared) > 0 && !declared[id] {
			res.warnf("%s %s turn %d references undeclared character %q", kind, in.Label, n, id)
		}
	}

	if d, ok := numberField(sc, "sceneDuration"); ok && d > v.maxDurationSec {
		res.warnf("%s %s duration %ss exceeds the %ss session target",
			kind, in.Label, formatNumber(d), formatNumber(v.maxDurationSec))
	}

	return res
}
