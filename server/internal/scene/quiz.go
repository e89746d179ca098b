package scene

import (
	"strconv"

	"contentgate/server/internal/budget"
	"contentgate/server/internal/model"
)

var (
	questionFields = []string{"questionId", "questionType", "questionText"}
	optionFields   = []string{"optionId", "text"}
)

// QuizValidator 校验测验场景。
type QuizValidator struct {
	maxQuestions int
}

// NewQuizValidator 从预算表读取题量阈值。
func NewQuizValidator(l budget.Limits) *QuizValidator {
	return &QuizValidator{maxQuestions: l.MaxQuizQuestions}
}

func (v *QuizValidator) Type() model.SceneType {
	return model.SceneTypeQuiz
}

func (v *QuizValidator) Validate(in Input) Result {
	var res Result
	kind := model.SceneTypeQuiz.Label()
	sc := in.Raw

	if _, ok := stringField(sc, "sceneId"); !ok {
		res.errorf("%s %s missing required field: sceneId", kind, in.Label)
	}

	questions, ok := arrayField(sc, "questions")
	if !ok {
		res.errorf("%s %s missing or invalid questions array", kind, in.Label)
	}

	seen := map[string]bool{}
	for i, raw := range questions {
		q, ok := asObject(raw)
		if !ok {
			res.errorf("%s %s question %d is not an object", kind, in.Label, i+1)
			continue
		}
		qLabel := questionLabel(q, i)
		if id, ok := stringField(q, "questionId"); ok {
			if seen[id] {
				res.warnf("%s %s has duplicate questionId %q", kind, in.Label, id)
			}
			seen[id] = true
		}
		v.validateQuestion(&res, in.Label, qLabel, q)
	}

	if len(questions) > v.maxQuestions {
		res.warnf("%s %s has %d questions, which may be too long for the target session length",
			kind, in.Label, len(questions))
	}

	if score, ok := numberField(sc, "passingScore"); ok && (score < 0 || score > 100) {
		res.warnf("%s %s passingScore %s is outside 0-100", kind, in.Label, formatNumber(score))
	}

	return res
}

func (v *QuizValidator) validateQuestion(res *Result, sceneLabel, qLabel string, q map[string]any) {
	kind := model.SceneTypeQuiz.Label()
	prefix := kind + " " + sceneLabel + " question " + qLabel

	for _, field := range questionFields {
		if _, ok := stringField(q, field); !ok {
			res.errorf("%s missing required field: %s", prefix, field)
		}
	}

	qType := model.QuestionType("")
	if s, ok := stringField(q, "questionType"); ok {
		qType = model.QuestionType(s)
		if !qType.Valid() {
			res.errorf("%s has invalid questionType %q", prefix, s)
		}
	}

	options, ok := arrayField(q, "options")
	if !ok {
		res.errorf("%s missing or invalid options array", prefix)
		return
	}

	correct := 0
	for j, raw := range options {
		n := j + 1
		opt, ok := asObject(raw)
		if !ok {
			res.errorf("%s option %d is not an object", prefix, n)
			continue
		}
		for _, field := range optionFields {
			if _, ok := stringField(opt, field); !ok {
				res.errorf("%s option %d missing required field: %s", prefix, n, field)
			}
		}
		isCorrect, ok := opt["isCorrect"].(bool)
		if !ok {
			res.errorf("%s option %d isCorrect must be a boolean", prefix, n)
			continue
		}
		if isCorrect {
			correct++
		}
	}

	if correct == 0 {
		res.errorf("%s has no correct options", prefix)
	}
	if qType == model.QuestionTrueFalse && len(options) != 2 {
		res.errorf("%s is true_false but has %d options (expected 2)", prefix, len(options))
	}
	if qType == model.QuestionMultipleChoice && correct > 1 {
		res.warnf("%s is multiple_choice but marks %d options correct", prefix, correct)
	}
}

// questionLabel 优先使用 questionId，否则用 1 开始的序号。
func questionLabel(q map[string]any, index int) string {
	if id, ok := stringField(q, "questionId"); ok {
		return id
	}
	return "#" + strconv.Itoa(index+1)
}
