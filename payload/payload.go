// Package payload turns a respondent's answer state into the submission
// envelope sent to the store.
package payload

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nikhilsahni7/FeedbackX/answers"
	"github.com/nikhilsahni7/FeedbackX/models"
)

// Build emits one entry per question that holds a value, in form order.
// Empty text and unselected choices are left out; toggle questions are always
// present as "true" or "false".
func Build(state *answers.State) models.Submission {
	form := state.Form()
	sub := models.Submission{FormID: form.ID, Answers: []models.AnswerEntry{}}
	for i := range form.Questions {
		q := &form.Questions[i]
		cell, ok := state.Cell(q.ID)
		if !ok {
			continue
		}
		if e, ok := entry(q.ID, cell); ok {
			sub.Answers = append(sub.Answers, e)
		}
	}
	return sub
}

func entry(questionID string, cell answers.Cell) (models.AnswerEntry, bool) {
	switch c := cell.(type) {
	case *answers.TextCell:
		text := strings.TrimSpace(c.Text)
		if text == "" {
			return models.AnswerEntry{}, false
		}
		return models.TextAnswer(questionID, text), true
	case *answers.ChoiceCell:
		id, ok := c.Selected()
		if !ok {
			return models.AnswerEntry{}, false
		}
		return models.OptionAnswer(questionID, id), true
	case *answers.ToggleCell:
		return models.TextAnswer(questionID, strconv.FormatBool(c.Checked)), true
	}
	panic(fmt.Sprintf("payload: unhandled cell %T", cell))
}
