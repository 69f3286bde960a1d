package payload

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nikhilsahni7/FeedbackX/answers"
	"github.com/nikhilsahni7/FeedbackX/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildNameAndColor(t *testing.T) {
	form := &models.Form{ID: "F", Questions: []models.Question{
		{ID: "Q1", QuestionText: "Name", QuestionType: models.QuestionTypeText, IsRequired: true},
		{ID: "Q2", QuestionText: "Color", QuestionType: models.QuestionTypeRadio, IsRequired: true, OrderIndex: 1, Options: []models.Option{
			{ID: "r", OptionText: "Red"},
			{ID: "b", OptionText: "Blue", OrderIndex: 1},
		}},
	}}
	s := answers.New(form)
	require.NoError(t, s.SetText("Q1", "Ann"))
	require.NoError(t, s.SelectOption("Q2", "b"))

	got := Build(s)
	want := models.Submission{FormID: "F", Answers: []models.AnswerEntry{
		models.TextAnswer("Q1", "Ann"),
		models.OptionAnswer("Q2", "b"),
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("submission mismatch (-want +got):\n%s", diff)
	}

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"form_id":"F","answers":[{"question_id":"Q1","answer_text":"Ann"},{"question_id":"Q2","option_id":"b"}]}`, string(raw))
}

func TestBuildOmissions(t *testing.T) {
	form := &models.Form{ID: "F", Questions: []models.Question{
		{ID: "comment", QuestionType: models.QuestionTypeText},
		{ID: "pick", QuestionType: models.QuestionTypeCheckbox, Options: []models.Option{{ID: "a"}, {ID: "b"}}},
		{ID: "subscribe", QuestionType: models.QuestionTypeCheckbox},
		{ID: "site", QuestionType: models.QuestionTypeURL},
	}}
	s := answers.New(form)
	require.NoError(t, s.SetText("site", "  https://example.com  "))

	got := Build(s)
	want := []models.AnswerEntry{
		models.TextAnswer("subscribe", "false"),
		models.TextAnswer("site", "https://example.com"),
	}
	if diff := cmp.Diff(want, got.Answers); diff != "" {
		t.Fatalf("answers mismatch (-want +got):\n%s", diff)
	}

	require.NoError(t, s.Toggle("subscribe"))
	require.NoError(t, s.SelectOption("pick", "a"))
	got = Build(s)
	require.Len(t, got.Answers, 3)
	assert.Equal(t, "a", *got.Answers[0].OptionID)
	assert.Equal(t, "true", *got.Answers[1].AnswerText)
}

func TestBuildEmptyForm(t *testing.T) {
	got := Build(answers.New(&models.Form{ID: "F"}))
	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"form_id":"F","answers":[]}`, string(raw))
}
