// Package answers tracks what a respondent has entered for each question of
// a loaded form. The form itself is never modified.
package answers

import (
	"errors"
	"fmt"

	"github.com/nikhilsahni7/FeedbackX/models"
)

var (
	ErrUnknownQuestion = errors.New("answers: unknown question")
	ErrUnknownOption   = errors.New("answers: unknown option")
	ErrWrongCellKind   = errors.New("answers: operation does not apply to this question")
)

// Cell is the answer held for one question. It is one of *TextCell,
// *ChoiceCell or *ToggleCell.
type Cell interface {
	Kind() models.CellKind
	sealed()
}

// TextCell holds the answer to a text, email, number, url or date question.
type TextCell struct {
	Text string
}

// ChoiceCell holds the selected option of a radio question or of a checkbox
// question that has options. An empty SelectedOptionID means nothing is
// selected.
type ChoiceCell struct {
	SelectedOptionID string
}

// ToggleCell holds the state of a checkbox question without options.
type ToggleCell struct {
	Checked bool
}

func (*TextCell) Kind() models.CellKind   { return models.CellScalar }
func (*ChoiceCell) Kind() models.CellKind { return models.CellChoice }
func (*ToggleCell) Kind() models.CellKind { return models.CellToggle }

func (*TextCell) sealed()   {}
func (*ChoiceCell) sealed() {}
func (*ToggleCell) sealed() {}

// Selected reports the selected option id, if any.
func (c *ChoiceCell) Selected() (string, bool) {
	return c.SelectedOptionID, c.SelectedOptionID != ""
}

// State is the answer map of one response session, keyed by question id.
type State struct {
	form  *models.Form
	cells map[string]Cell
}

// New creates a default cell for every question of form: empty text,
// nothing selected, unchecked.
func New(form *models.Form) *State {
	s := &State{form: form, cells: make(map[string]Cell, len(form.Questions))}
	for i := range form.Questions {
		q := &form.Questions[i]
		s.cells[q.ID] = newCell(q)
	}
	return s
}

func newCell(q *models.Question) Cell {
	switch q.CellKind() {
	case models.CellScalar:
		return &TextCell{}
	case models.CellChoice:
		return &ChoiceCell{}
	case models.CellToggle:
		return &ToggleCell{}
	}
	panic(fmt.Sprintf("answers: unhandled cell kind %v", q.CellKind()))
}

// Form returns the schema the state was created for.
func (s *State) Form() *models.Form { return s.form }

// Cell returns the cell of a question.
func (s *State) Cell(questionID string) (Cell, bool) {
	c, ok := s.cells[questionID]
	return c, ok
}

func (s *State) lookup(questionID string) (*models.Question, Cell, error) {
	q, ok := s.form.Question(questionID)
	if !ok {
		return nil, nil, fmt.Errorf("%w %q", ErrUnknownQuestion, questionID)
	}
	return q, s.cells[questionID], nil
}

// SetText replaces the text of a scalar question verbatim.
func (s *State) SetText(questionID, value string) error {
	q, c, err := s.lookup(questionID)
	if err != nil {
		return err
	}
	tc, ok := c.(*TextCell)
	if !ok {
		return fmt.Errorf("%w: set text on %s question %q", ErrWrongCellKind, q.QuestionType, questionID)
	}
	tc.Text = value
	return nil
}

// SelectOption picks an option. Radio questions always take the new
// selection; checkbox questions toggle, so picking the selected option again
// clears it.
func (s *State) SelectOption(questionID, optionID string) error {
	q, c, err := s.lookup(questionID)
	if err != nil {
		return err
	}
	cc, ok := c.(*ChoiceCell)
	if !ok {
		return fmt.Errorf("%w: select option on %s question %q", ErrWrongCellKind, q.QuestionType, questionID)
	}
	if _, ok := q.Option(optionID); !ok {
		return fmt.Errorf("%w %q for question %q", ErrUnknownOption, optionID, questionID)
	}
	switch q.QuestionType {
	case models.QuestionTypeCheckbox:
		if cc.SelectedOptionID == optionID {
			cc.SelectedOptionID = ""
		} else {
			cc.SelectedOptionID = optionID
		}
	default:
		cc.SelectedOptionID = optionID
	}
	return nil
}

// Toggle flips a checkbox question without options.
func (s *State) Toggle(questionID string) error {
	q, c, err := s.lookup(questionID)
	if err != nil {
		return err
	}
	tc, ok := c.(*ToggleCell)
	if !ok {
		return fmt.Errorf("%w: toggle %s question %q", ErrWrongCellKind, q.QuestionType, questionID)
	}
	tc.Checked = !tc.Checked
	return nil
}

// Clear puts the cell of one question back to its default.
func (s *State) Clear(questionID string) error {
	q, _, err := s.lookup(questionID)
	if err != nil {
		return err
	}
	s.cells[questionID] = newCell(q)
	return nil
}

// Reset puts every cell back to its default.
func (s *State) Reset() {
	for i := range s.form.Questions {
		q := &s.form.Questions[i]
		s.cells[q.ID] = newCell(q)
	}
}
