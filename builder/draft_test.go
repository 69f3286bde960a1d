package builder

import (
	"math/rand"
	"testing"

	"github.com/nikhilsahni7/FeedbackX/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertDense(t *testing.T, d *Draft) {
	t.Helper()
	for i, q := range d.Questions() {
		assert.Equal(t, i, q.OrderIndex, "question order_index")
		for j, o := range q.Options {
			assert.Equal(t, j, o.OrderIndex, "option order_index of question %d", i)
		}
		if !q.QuestionType.CarriesOptions() {
			assert.Empty(t, q.Options, "scalar question %d carries options", i)
		}
	}
}

func optionTexts(t *testing.T, d *Draft, q int) []string {
	t.Helper()
	dq, err := d.Question(q)
	require.NoError(t, err)
	var out []string
	for _, o := range dq.Options {
		out = append(out, o.OptionText)
	}
	return out
}

func choiceDraft(t *testing.T, labels ...string) *Draft {
	t.Helper()
	d := New()
	require.NoError(t, d.SetQuestionType(0, models.QuestionTypeCheckbox))
	for len(d.questions[0].Options) < len(labels) {
		require.NoError(t, d.AddOption(0))
	}
	for i, l := range labels {
		require.NoError(t, d.SetOptionText(0, i, l))
	}
	return d
}

func TestNewDraft(t *testing.T) {
	d := New()
	require.Equal(t, 1, d.Len())
	q, err := d.Question(0)
	require.NoError(t, err)
	assert.Equal(t, models.QuestionTypeText, q.QuestionType)
	assert.Empty(t, q.Options)
	assert.False(t, q.IsRequired)
}

func TestAddAndDeleteQuestion(t *testing.T) {
	d := New()
	d.AddQuestion()
	d.AddQuestion()
	require.Equal(t, 3, d.Len())
	require.NoError(t, d.SetQuestionText(2, "third"))

	require.NoError(t, d.DeleteQuestion(0))
	assert.Equal(t, 2, d.Len())
	q, _ := d.Question(1)
	assert.Equal(t, "third", q.QuestionText)
	assertDense(t, d)

	t.Run("out of range", func(t *testing.T) {
		assert.ErrorIs(t, d.DeleteQuestion(5), ErrIndexOutOfRange)
		assert.ErrorIs(t, d.DeleteQuestion(-1), ErrIndexOutOfRange)
		assert.Equal(t, 2, d.Len())
	})
}

func TestDeleteLastQuestionIsNoop(t *testing.T) {
	d := New()
	require.NoError(t, d.SetQuestionText(0, "Only one"))
	before := d.Clone()

	require.NoError(t, d.DeleteQuestion(0))
	assert.Equal(t, 1, d.Len())
	assert.True(t, d.Equal(before))
}

func TestSetQuestionType(t *testing.T) {
	t.Run("checkbox seeds two empty options", func(t *testing.T) {
		d := New()
		require.NoError(t, d.SetQuestionType(0, models.QuestionTypeCheckbox))
		q, _ := d.Question(0)
		require.Len(t, q.Options, 2)
		assert.Equal(t, []DraftOption{{OrderIndex: 0}, {OrderIndex: 1}}, q.Options)
	})

	t.Run("scalar clears options", func(t *testing.T) {
		d := choiceDraft(t, "a", "b", "c")
		require.NoError(t, d.SetQuestionType(0, models.QuestionTypeText))
		q, _ := d.Question(0)
		assert.Empty(t, q.Options)
		assert.NotNil(t, q.Options)
	})

	t.Run("radio clears options", func(t *testing.T) {
		d := choiceDraft(t, "a", "b")
		require.NoError(t, d.SetQuestionType(0, models.QuestionTypeRadio))
		q, _ := d.Question(0)
		assert.Empty(t, q.Options)
	})

	t.Run("checkbox keeps existing options", func(t *testing.T) {
		d := choiceDraft(t, "a", "b", "c")
		require.NoError(t, d.SetQuestionType(0, models.QuestionTypeCheckbox))
		assert.Equal(t, []string{"a", "b", "c"}, optionTexts(t, d, 0))
	})

	t.Run("unknown type", func(t *testing.T) {
		d := New()
		assert.Error(t, d.SetQuestionType(0, models.QuestionType("slider")))
		q, _ := d.Question(0)
		assert.Equal(t, models.QuestionTypeText, q.QuestionType)
	})
}

func TestRemoveOption(t *testing.T) {
	d := choiceDraft(t, "a", "b", "c")
	require.NoError(t, d.RemoveOption(0, 1))
	assert.Equal(t, []string{"a", "c"}, optionTexts(t, d, 0))
	assertDense(t, d)

	// Two options is the floor.
	require.NoError(t, d.RemoveOption(0, 0))
	assert.Equal(t, []string{"a", "c"}, optionTexts(t, d, 0))

	assert.ErrorIs(t, d.RemoveOption(0, 2), ErrIndexOutOfRange)
	assert.ErrorIs(t, d.RemoveOption(3, 0), ErrIndexOutOfRange)
}

func TestOptionsOnlyOnCheckbox(t *testing.T) {
	d := New()
	assert.ErrorIs(t, d.AddOption(0), ErrNoOptions)
	require.NoError(t, d.SetQuestionType(0, models.QuestionTypeRadio))
	assert.ErrorIs(t, d.AddOption(0), ErrNoOptions)
	assertDense(t, d)

	assert.ErrorIs(t, d.RemoveOption(0, 0), ErrIndexOutOfRange)
	assert.ErrorIs(t, d.MoveOption(0, 0, Down), ErrIndexOutOfRange)

	require.NoError(t, d.SetQuestionType(0, models.QuestionTypeCheckbox))
	q, _ := d.Question(0)
	assert.Len(t, q.Options, 2)
}

func TestMoveOption(t *testing.T) {
	d := choiceDraft(t, "a", "b", "c")

	require.NoError(t, d.MoveOption(0, 0, Down))
	assert.Equal(t, []string{"b", "a", "c"}, optionTexts(t, d, 0))

	require.NoError(t, d.MoveOption(0, 2, Up))
	assert.Equal(t, []string{"b", "c", "a"}, optionTexts(t, d, 0))

	before := d.Clone()
	require.NoError(t, d.MoveOption(0, 0, Up))
	require.NoError(t, d.MoveOption(0, 2, Down))
	assert.True(t, d.Equal(before), "moves at the boundaries must not change the draft")
	assertDense(t, d)
}

func TestParseDirection(t *testing.T) {
	dir, err := ParseDirection("down")
	require.NoError(t, err)
	assert.Equal(t, Down, dir)
	_, err = ParseDirection("sideways")
	assert.Error(t, err)
}

func TestOrderInvariantUnderRandomEdits(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 50; round++ {
		d := choiceDraft(t, "x", "y")
		reachedTwo := true
		for step := 0; step < 200; step++ {
			n := len(d.questions[0].Options)
			switch rng.Intn(3) {
			case 0:
				require.NoError(t, d.AddOption(0))
			case 1:
				require.NoError(t, d.RemoveOption(0, rng.Intn(n)))
			case 2:
				dir := Up
				if rng.Intn(2) == 1 {
					dir = Down
				}
				require.NoError(t, d.MoveOption(0, rng.Intn(n), dir))
			}
			assertDense(t, d)
			if reachedTwo {
				require.GreaterOrEqual(t, len(d.questions[0].Options), MinChoiceOptions)
			}
		}
	}
}

func TestFromForm(t *testing.T) {
	f := models.Form{
		ID:    "f1",
		Title: "Feedback",
		Questions: []models.Question{
			{ID: "q2", QuestionText: "Second", QuestionType: "checkbox", OrderIndex: 4, Options: []models.Option{
				{ID: "o2", OptionText: "B", OrderIndex: 7},
				{ID: "o1", OptionText: "A", OrderIndex: 3},
			}},
			{ID: "q1", QuestionText: "First", QuestionType: "Paragraph", OrderIndex: 1, Options: []models.Option{{ID: "stray"}}},
		},
	}
	d := FromForm(f)
	qs := d.Questions()
	require.Len(t, qs, 2)
	assert.Equal(t, "q1", qs[0].ID)
	assert.Equal(t, models.QuestionTypeText, qs[0].QuestionType)
	assert.Empty(t, qs[0].Options)
	assert.Equal(t, []DraftOption{{ID: "o1", OptionText: "A", OrderIndex: 0}, {ID: "o2", OptionText: "B", OrderIndex: 1}}, qs[1].Options)
	assertDense(t, d)

	empty := FromForm(models.Form{ID: "f2", Title: "Empty"})
	assert.Equal(t, 1, empty.Len())
}
