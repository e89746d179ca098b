package validator

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentgate/server/internal/budget"
	"contentgate/server/internal/model"
	"contentgate/server/internal/sizemeter"
)

func dialogueScene(id string) map[string]any {
	return map[string]any{
		"sceneId":   id,
		"sceneType": "Dialogue",
		"characters": []any{
			map[string]any{"characterId": "a", "name": "A", "role": "r"},
		},
		"dialogueTurns": []any{
			map[string]any{"speaker": "A", "characterId": "a", "text": "hi"},
		},
	}
}

func quizScene(id string) map[string]any {
	return map[string]any{
		"sceneId":   id,
		"sceneType": "Quiz",
		"questions": []any{
			map[string]any{
				"questionId":   "qa",
				"questionType": "multiple_choice",
				"questionText": "Pick one",
				"options": []any{
					map[string]any{"optionId": "a", "text": "A", "isCorrect": true},
					map[string]any{"optionId": "b", "text": "B", "isCorrect": false},
				},
			},
		},
	}
}

func document(scenes ...any) map[string]any {
	return map[string]any{
		"metadata": map[string]any{"id": "course-1", "version": "1.0.0"},
		"content":  map[string]any{"scenes": scenes},
	}
}

// padTo 用 description 字段把场景填充到恰好 size 字节。
func padTo(t *testing.T, sc map[string]any, size int) {
	t.Helper()
	sc["description"] = ""
	base, err := sizemeter.SizeOf(sc)
	require.NoError(t, err)
	require.LessOrEqual(t, base, size)
	sc["description"] = strings.Repeat("x", size-base)

	got, err := sizemeter.SizeOf(sc)
	require.NoError(t, err)
	require.Equal(t, size, got)
}

// TestMinimalValidDocument 验证最小合法文档通过且没有任何错误。
func TestMinimalValidDocument(t *testing.T) {
	report := New().ValidateContent(document(dialogueScene("d1")))

	assert.True(t, report.IsValid)
	assert.Empty(t, report.Errors)
	assert.Empty(t, report.Warnings)
	assert.Equal(t, model.Performance{ContentSize: 0, EstimatedLoadTime: 500, LighthouseImpact: 0}, report.Performance)
}

// TestMissingMetadataStillChecksScenes 验证缺 metadata 只产生一条结构错误，合法场景不额外报错。
func TestMissingMetadataStillChecksScenes(t *testing.T) {
	doc := document(dialogueScene("d1"))
	delete(doc, "metadata")

	report := New().ValidateContent(doc)
	assert.False(t, report.IsValid)
	assert.Equal(t, []string{"Missing required field: metadata"}, report.Errors)
}

func TestStructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  any
		want []string
	}{
		{
			name: "nil document",
			doc:  nil,
			want: []string{
				"Missing required field: metadata",
				"Missing required field: content",
				"Missing or invalid scenes array",
			},
		},
		{
			name: "scalar document",
			doc:  "hello",
			want: []string{
				"Missing required field: metadata",
				"Missing required field: content",
				"Missing or invalid scenes array",
			},
		},
		{
			name: "scenes is scalar",
			doc:  map[string]any{"metadata": map[string]any{}, "content": map[string]any{"scenes": "d1"}},
			want: []string{"Missing or invalid scenes array"},
		},
		{
			name: "content is null",
			doc:  map[string]any{"metadata": map[string]any{}, "content": nil},
			want: []string{"Missing required field: content", "Missing or invalid scenes array"},
		},
		{
			name: "scene entries not objects",
			doc:  document(nil, 3.0, dialogueScene("d1")),
			want: []string{"Scene #0 is not an object", "Scene #1 is not an object"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := New().ValidateContent(tt.doc)
			assert.False(t, report.IsValid)
			assert.Equal(t, tt.want, report.Errors)
			assert.NotNil(t, report.Warnings)
		})
	}
}

// TestAccumulatesAcrossScenes 验证多个独立缺陷全部出现在报告中，不会在第一个问题处短路。
func TestAccumulatesAcrossScenes(t *testing.T) {
	broken := dialogueScene("d1")
	broken["dialogueTurns"] = []any{map[string]any{"speaker": "A", "characterId": "a"}}

	quiz := quizScene("q1")
	opts := quiz["questions"].([]any)[0].(map[string]any)["options"].([]any)
	opts[0].(map[string]any)["isCorrect"] = false

	doc := document(broken, dialogueScene("d2"), quiz)
	delete(doc, "metadata")

	report := New().ValidateContent(doc)
	assert.False(t, report.IsValid)
	assert.Equal(t, []string{
		"Missing required field: metadata",
		"DialogueScene d1 turn 1 missing required field: text",
		"QuizScene q1 question qa has no correct options",
	}, report.Errors)
}

// TestDialogueBudgetExactness 验证恰好 51200 字节通过，51201 字节失败。
func TestDialogueBudgetExactness(t *testing.T) {
	v := New()

	sc := dialogueScene("d1")
	padTo(t, sc, budget.DialogueSceneMax)
	report := v.ValidateContent(document(sc))
	assert.True(t, report.IsValid, report.Errors)

	padTo(t, sc, budget.DialogueSceneMax+1)
	report = v.ValidateContent(document(sc))
	assert.False(t, report.IsValid)
	assert.Equal(t, []string{"DialogueScene d1 size 50KB exceeds limit 50KB"}, report.Errors)
}

// TestOversizedQuiz 验证 40000 字节的测验场景报 39KB 超过 30KB。
func TestOversizedQuiz(t *testing.T) {
	sc := quizScene("q1")
	padTo(t, sc, 40000)

	report := New().ValidateContent(document(sc))
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "QuizScene q1 size 39KB exceeds limit 30KB", report.Errors[0])
}

func TestTotalBudgetExceeded(t *testing.T) {
	var scenes []any
	for i := 0; i < 12; i++ {
		sc := dialogueScene("d" + string(rune('a'+i)))
		padTo(t, sc, 45000)
		scenes = append(scenes, sc)
	}

	report := New().ValidateContent(document(scenes...))
	assert.False(t, report.IsValid)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "Total content size")
	assert.Contains(t, report.Errors[0], "exceeds limit 500KB")
	assert.Equal(t, model.LighthouseImpactLarge, report.Performance.LighthouseImpact)
}

// TestForwardCompatibleSceneType 验证未知场景类型只产生一条警告且文档仍然有效。
func TestForwardCompatibleSceneType(t *testing.T) {
	future := map[string]any{"sceneId": "f1", "sceneType": "FutureScene", "payload": []any{1.0, 2.0}}

	report := New().ValidateContent(document(dialogueScene("d1"), future))
	assert.True(t, report.IsValid)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "FutureScene")
}

func TestLargeContentLighthouseImpact(t *testing.T) {
	future := map[string]any{"sceneId": "f1", "sceneType": "FutureScene", "payload": strings.Repeat("x", 420_000)}

	report := New().ValidateContent(document(future))
	assert.True(t, report.IsValid)
	assert.Equal(t, model.LighthouseImpactLarge, report.Performance.LighthouseImpact)
	assert.Greater(t, report.Performance.EstimatedLoadTime, 800)
}

func TestDuplicateSceneIDWarning(t *testing.T) {
	report := New().ValidateContent(document(dialogueScene("d1"), dialogueScene("d1")))
	assert.True(t, report.IsValid)
	assert.Equal(t, []string{`Duplicate sceneId "d1" at scenes #0 and #1`}, report.Warnings)
}

// TestCyclicDocumentIsInternalFault 验证循环结构被转换为 -10 哨兵报告而不是 panic。
func TestCyclicDocumentIsInternalFault(t *testing.T) {
	meta := map[string]any{"id": "loop"}
	meta["self"] = meta
	doc := document(dialogueScene("d1"))
	doc["metadata"] = meta

	report := New().ValidateContent(doc)
	assert.False(t, report.IsValid)
	require.Len(t, report.Errors, 1)
	assert.True(t, strings.HasPrefix(report.Errors[0], "Validation error: "))
	assert.Equal(t, []string{}, report.Warnings)
	assert.Equal(t, model.Performance{LighthouseImpact: model.LighthouseImpactFault}, report.Performance)
	assert.True(t, report.IsFault())
}

// TestSlowValidationWarns 验证超过 5 秒的校验只给警告，不影响有效性。
func TestSlowValidationWarns(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	clock := func() time.Time {
		calls++
		return base.Add(time.Duration(calls-1) * 6 * time.Second)
	}

	report := New(WithClock(clock)).ValidateContent(document(dialogueScene("d1")))
	assert.True(t, report.IsValid)
	assert.Equal(t, []string{"Validation took 6000ms, exceeding the 5000ms budget"}, report.Warnings)
}

func TestWithLimitsOverride(t *testing.T) {
	l := budget.DefaultLimits()
	l.MaxSceneDurationSec = 60
	sc := dialogueScene("d1")
	sc["sceneDuration"] = 90.0

	report := New(WithLimits(l)).ValidateContent(document(sc))
	assert.Equal(t, []string{"DialogueScene d1 duration 90s exceeds the 60s session target"}, report.Warnings)

	assert.Empty(t, New().ValidateContent(document(sc)).Warnings)
}

// TestIdempotentReports 验证同一文档两次校验得到字节级一致的报告。
func TestIdempotentReports(t *testing.T) {
	broken := quizScene("q1")
	broken["questions"] = append(broken["questions"].([]any), "bad")
	doc := document(broken, dialogueScene("d1"), map[string]any{"sceneType": "FutureScene"})

	v := New()
	first := v.ValidateContent(doc)
	second := v.ValidateContent(doc)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("reports differ (-first +second):\n%s", diff)
	}

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestReportJSONShape(t *testing.T) {
	data, err := json.Marshal(New().ValidateContent(document(dialogueScene("d1"))))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"isValid": true,
		"errors": [],
		"warnings": [],
		"performance": {"contentSize": 0, "estimatedLoadTime": 500, "lighthouseImpact": 0}
	}`, string(data))
}

func TestValidateContentJSON(t *testing.T) {
	v := New()

	raw := `{"metadata":{"id":"c"},"content":{"scenes":[{"sceneId":"d1","sceneType":"Dialogue",
		"characters":[{"characterId":"a","name":"A","role":"r"}],
		"dialogueTurns":[{"speaker":"A","characterId":"a","text":"hi"}],"sceneDuration":500}]}}`
	report := v.ValidateContentJSON([]byte(raw))
	assert.True(t, report.IsValid)
	assert.Equal(t, []string{"DialogueScene d1 duration 500s exceeds the 420s session target"}, report.Warnings)

	for _, bad := range []string{`{"metadata":`, `{} {}`, ``} {
		report := v.ValidateContentJSON([]byte(bad))
		assert.True(t, report.IsFault(), "input %q", bad)
		require.Len(t, report.Errors, 1)
		assert.True(t, strings.HasPrefix(report.Errors[0], "Validation error: invalid JSON"))
	}

	report = v.ValidateContentJSON([]byte("null"))
	assert.False(t, report.IsFault())
	assert.Len(t, report.Errors, 3)
}

// TestConcurrentValidation 验证同一个 Validator 可以被并发调用且结果一致。
func TestConcurrentValidation(t *testing.T) {
	v := New()
	doc := document(dialogueScene("d1"), quizScene("q1"))
	want := v.ValidateContent(doc)

	var wg sync.WaitGroup
	results := make([]model.ValidationReport, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = v.ValidateContent(doc)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}
