package answers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nikhilsahni7/FeedbackX/models"
)

// FromEntries rebuilds the answer state a respondent must have had to
// produce entries. Entries for unknown questions, options that do not belong
// to their question, or values of the wrong shape are rejected.
func FromEntries(form *models.Form, entries []models.AnswerEntry) (*State, error) {
	s := New(form)
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		q, c, err := s.lookup(e.QuestionID)
		if err != nil {
			return nil, err
		}
		if seen[e.QuestionID] {
			return nil, fmt.Errorf("answers: question %q answered twice", e.QuestionID)
		}
		seen[e.QuestionID] = true

		switch c := c.(type) {
		case *TextCell:
			if e.AnswerText == nil || e.OptionID != nil {
				return nil, fmt.Errorf("%w: question %q expects answer_text", ErrWrongCellKind, q.ID)
			}
			c.Text = *e.AnswerText
		case *ChoiceCell:
			if e.OptionID == nil || e.AnswerText != nil {
				return nil, fmt.Errorf("%w: question %q expects option_id", ErrWrongCellKind, q.ID)
			}
			if _, ok := q.Option(*e.OptionID); !ok {
				return nil, fmt.Errorf("%w %q for question %q", ErrUnknownOption, *e.OptionID, q.ID)
			}
			c.SelectedOptionID = *e.OptionID
		case *ToggleCell:
			if e.AnswerText == nil || e.OptionID != nil {
				return nil, fmt.Errorf("%w: question %q expects answer_text", ErrWrongCellKind, q.ID)
			}
			v, err := strconv.ParseBool(strings.TrimSpace(*e.AnswerText))
			if err != nil {
				return nil, fmt.Errorf("answers: question %q: %w", q.ID, err)
			}
			c.Checked = v
		}
	}
	return s, nil
}
