package model

import (
	"encoding/json"
	"fmt"
)

// SceneType 场景类型标签。
type SceneType string

const (
	SceneTypeDialogue SceneType = "Dialogue"
	SceneTypeQuiz     SceneType = "Quiz"
	// SceneTypeAssessment 预留类型，目前没有校验器，预算常量也不生效。
	SceneTypeAssessment SceneType = "Assessment"
	SceneTypeUnknown    SceneType = "Unknown"
)

// ParseSceneType 把作者填写的 sceneType 映射为已知类型，同时接受 "DialogueScene" 这类长名。
// 无法识别的标签返回 SceneTypeUnknown。
func ParseSceneType(tag string) SceneType {
	switch tag {
	case "Dialogue", "DialogueScene":
		return SceneTypeDialogue
	case "Quiz", "QuizScene":
		return SceneTypeQuiz
	case "Assessment", "AssessmentScene":
		return SceneTypeAssessment
	default:
		return SceneTypeUnknown
	}
}

// Label 用于错误信息，如 "DialogueScene d1 ..."。
func (t SceneType) Label() string {
	return string(t) + "Scene"
}

// QuestionType 测验题型。
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionTrueFalse      QuestionType = "true_false"
	QuestionMultipleSelect QuestionType = "multiple_select"
)

// Valid 是否为已识别的题型。
func (q QuestionType) Valid() bool {
	switch q {
	case QuestionMultipleChoice, QuestionTrueFalse, QuestionMultipleSelect:
		return true
	}
	return false
}

// Character 对话中的角色。
type Character struct {
	CharacterID string `json:"characterId"`
	Name        string `json:"name"`
	Role        string `json:"role"`
}

// DialogueTurn 对话中的一句台词。
type DialogueTurn struct {
	Speaker     string  `json:"speaker"`
	CharacterID string  `json:"characterId"`
	Text        string  `json:"text"`
	Emotion     string  `json:"emotion,omitempty"`
	Timing      float64 `json:"timing,omitempty"`
}

// DialogueScene 对话场景。
type DialogueScene struct {
	SceneID       string         `json:"sceneId"`
	Title         string         `json:"title,omitempty"`
	Description   string         `json:"description,omitempty"`
	Characters    []Character    `json:"characters"`
	DialogueTurns []DialogueTurn `json:"dialogueTurns"`
	SceneDuration float64        `json:"sceneDuration,omitempty"`
}

// QuizOption 选项。
type QuizOption struct {
	OptionID  string `json:"optionId"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// QuizQuestion 测验题。
type QuizQuestion struct {
	QuestionID   string       `json:"questionId"`
	QuestionType QuestionType `json:"questionType"`
	QuestionText string       `json:"questionText"`
	Options      []QuizOption `json:"options"`
}

// QuizScene 测验场景。
type QuizScene struct {
	SceneID       string         `json:"sceneId"`
	Title         string         `json:"title,omitempty"`
	Description   string         `json:"description,omitempty"`
	Questions     []QuizQuestion `json:"questions"`
	PassingScore  float64        `json:"passingScore,omitempty"`
	SceneDuration float64        `json:"sceneDuration,omitempty"`
}

// UnknownScene 保留未识别类型的原始数据，便于前向兼容。
type UnknownScene struct {
	SceneID string         `json:"sceneId,omitempty"`
	Tag     string         `json:"sceneType"`
	Raw     map[string]any `json:"-"`
}

// Scene 是场景的和类型：Dialogue/Quiz/Unknown 三者恰有一个非 nil。
type Scene struct {
	Type     SceneType
	Dialogue *DialogueScene
	Quiz     *QuizScene
	Unknown  *UnknownScene
}

// DecodeScene 把一个已经通过校验的原始场景转换为强类型值。
// 调用方应先跑完校验器，这里只负责形状转换，类型不匹配时返回错误。
func DecodeScene(raw map[string]any) (Scene, error) {
	tag, _ := raw["sceneType"].(string)
	t := ParseSceneType(tag)

	data, err := json.Marshal(raw)
	if err != nil {
		return Scene{}, fmt.Errorf("encode scene: %w", err)
	}

	switch t {
	case SceneTypeDialogue:
		var d DialogueScene
		if err := json.Unmarshal(data, &d); err != nil {
			return Scene{}, fmt.Errorf("decode dialogue scene: %w", err)
		}
		return Scene{Type: t, Dialogue: &d}, nil
	case SceneTypeQuiz:
		var q QuizScene
		if err := json.Unmarshal(data, &q); err != nil {
			return Scene{}, fmt.Errorf("decode quiz scene: %w", err)
		}
		return Scene{Type: t, Quiz: &q}, nil
	default:
		id, _ := raw["sceneId"].(string)
		return Scene{
			Type:    SceneTypeUnknown,
			Unknown: &UnknownScene{SceneID: id, Tag: tag, Raw: raw},
		}, nil
	}
}
