// Package builder holds the mutable working copy of a form while it is being
// authored or edited.
//
// Question and option lists are rebuilt in full on every mutation and then
// reindexed once, so order_index always equals list position. A draft never
// drops below one question, and a checkbox question that has reached two
// options never drops below two.
package builder

import (
	"errors"
	"fmt"
	"slices"

	"github.com/nikhilsahni7/FeedbackX/models"
)

// ErrIndexOutOfRange is returned when a question or option index does not
// exist. The draft is left untouched.
var ErrIndexOutOfRange = errors.New("builder: index out of range")

// ErrNoOptions is returned when an option is added to a question whose type
// does not carry options.
var ErrNoOptions = errors.New("builder: question type has no options")

// MinChoiceOptions is the option floor for checkbox questions.
const MinChoiceOptions = 2

// Direction moves an option towards the start (Up) or end (Down) of its list.
type Direction int

const (
	Up Direction = iota
	Down
)

// ParseDirection accepts "up" or "down".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	}
	return 0, fmt.Errorf("builder: unknown direction %q", s)
}

// DraftOption is an option that may not have been persisted yet.
type DraftOption struct {
	ID         string
	OptionText string
	OrderIndex int
}

// DraftQuestion mirrors models.Question before the store assigns an id.
type DraftQuestion struct {
	ID           string
	QuestionText string
	QuestionType models.QuestionType
	IsRequired   bool
	OrderIndex   int
	Options      []DraftOption
}

// Draft is an in-memory form being authored. The zero value is not usable;
// call New or FromForm.
type Draft struct {
	FormID      string
	Title       string
	Description string
	IsPublic    bool
	Closed      bool

	questions []DraftQuestion
}

// New returns a draft with a single empty text question.
func New() *Draft {
	d := &Draft{}
	d.questions = []DraftQuestion{emptyQuestion()}
	return d
}

// FromForm starts an edit session from a persisted form. Option order is
// taken from order_index and then renumbered; a form without questions gets
// one empty question.
func FromForm(f models.Form) *Draft {
	d := &Draft{
		FormID:      f.ID,
		Title:       f.Title,
		Description: f.Description,
		IsPublic:    f.IsPublic,
		Closed:      f.Closed,
	}
	qs := slices.Clone(f.Questions)
	slices.SortStableFunc(qs, func(a, b models.Question) int { return a.OrderIndex - b.OrderIndex })
	for _, q := range qs {
		dq := DraftQuestion{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			QuestionType: models.NormalizeQuestionType(string(q.QuestionType)),
			IsRequired:   q.IsRequired,
		}
		if dq.QuestionType.CarriesOptions() {
			opts := slices.Clone(q.Options)
			slices.SortStableFunc(opts, func(a, b models.Option) int { return a.OrderIndex - b.OrderIndex })
			for _, o := range opts {
				dq.Options = append(dq.Options, DraftOption{ID: o.ID, OptionText: o.OptionText})
			}
			reindexOptions(dq.Options)
		}
		d.questions = append(d.questions, dq)
	}
	if len(d.questions) == 0 {
		d.questions = []DraftQuestion{emptyQuestion()}
	}
	reindexQuestions(d.questions)
	return d
}

func emptyQuestion() DraftQuestion {
	return DraftQuestion{QuestionType: models.QuestionTypeText, Options: []DraftOption{}}
}

// Len returns the number of questions.
func (d *Draft) Len() int { return len(d.questions) }

// Questions returns a deep copy of the question list.
func (d *Draft) Questions() []DraftQuestion {
	out := make([]DraftQuestion, len(d.questions))
	for i, q := range d.questions {
		q.Options = slices.Clone(q.Options)
		if q.Options == nil {
			q.Options = []DraftOption{}
		}
		out[i] = q
	}
	return out
}

// Question returns a copy of the question at index.
func (d *Draft) Question(index int) (DraftQuestion, error) {
	if err := d.checkQuestion(index); err != nil {
		return DraftQuestion{}, err
	}
	q := d.questions[index]
	q.Options = slices.Clone(q.Options)
	return q, nil
}

// SetTitle sets the form title.
func (d *Draft) SetTitle(title string) { d.Title = title }

// SetDescription sets the form description.
func (d *Draft) SetDescription(desc string) { d.Description = desc }

// SetPublic sets whether the form is listed publicly.
func (d *Draft) SetPublic(public bool) { d.IsPublic = public }

// SetClosed sets whether the form stops accepting responses.
func (d *Draft) SetClosed(closed bool) { d.Closed = closed }

// AddQuestion appends an empty text question.
func (d *Draft) AddQuestion() {
	d.questions = append(slices.Clone(d.questions), emptyQuestion())
	reindexQuestions(d.questions)
}

// DeleteQuestion removes the question at index. Deleting the only question
// is a no-op.
func (d *Draft) DeleteQuestion(index int) error {
	if err := d.checkQuestion(index); err != nil {
		return err
	}
	if len(d.questions) <= 1 {
		return nil
	}
	d.questions = slices.Delete(slices.Clone(d.questions), index, index+1)
	reindexQuestions(d.questions)
	return nil
}

// SetQuestionText sets the prompt of the question at index.
func (d *Draft) SetQuestionText(index int, text string) error {
	if err := d.checkQuestion(index); err != nil {
		return err
	}
	d.questions[index].QuestionText = text
	return nil
}

// SetRequired sets the required flag of the question at index.
func (d *Draft) SetRequired(index int, required bool) error {
	if err := d.checkQuestion(index); err != nil {
		return err
	}
	d.questions[index].IsRequired = required
	return nil
}

// SetQuestionType changes the type of the question at index. Types other
// than checkbox drop all options; switching to checkbox with fewer than two
// options replaces them with exactly two empty ones.
func (d *Draft) SetQuestionType(index int, t models.QuestionType) error {
	if err := d.checkQuestion(index); err != nil {
		return err
	}
	if !t.Valid() {
		return fmt.Errorf("builder: unknown question type %q", t)
	}
	q := &d.questions[index]
	q.QuestionType = t
	switch {
	case !t.CarriesOptions():
		q.Options = []DraftOption{}
	case len(q.Options) < MinChoiceOptions:
		q.Options = []DraftOption{{OrderIndex: 0}, {OrderIndex: 1}}
	}
	return nil
}

// AddOption appends an empty option to the checkbox question at qIndex.
func (d *Draft) AddOption(qIndex int) error {
	if err := d.checkQuestion(qIndex); err != nil {
		return err
	}
	q := &d.questions[qIndex]
	if !q.QuestionType.CarriesOptions() {
		return fmt.Errorf("%w: %s question %d", ErrNoOptions, q.QuestionType, qIndex)
	}
	opts := append(slices.Clone(q.Options), DraftOption{})
	reindexOptions(opts)
	q.Options = opts
	return nil
}

// SetOptionText sets the label of an option.
func (d *Draft) SetOptionText(qIndex, oIndex int, text string) error {
	if err := d.checkOption(qIndex, oIndex); err != nil {
		return err
	}
	d.questions[qIndex].Options[oIndex].OptionText = text
	return nil
}

// RemoveOption removes an option unless that would leave the question with
// fewer than two options, in which case it is a no-op.
func (d *Draft) RemoveOption(qIndex, oIndex int) error {
	if err := d.checkOption(qIndex, oIndex); err != nil {
		return err
	}
	q := &d.questions[qIndex]
	if len(q.Options)-1 < MinChoiceOptions {
		return nil
	}
	opts := slices.Delete(slices.Clone(q.Options), oIndex, oIndex+1)
	reindexOptions(opts)
	q.Options = opts
	return nil
}

// MoveOption swaps an option with its neighbour in dir. Moving past either
// end of the list is a no-op.
func (d *Draft) MoveOption(qIndex, oIndex int, dir Direction) error {
	if err := d.checkOption(qIndex, oIndex); err != nil {
		return err
	}
	q := &d.questions[qIndex]
	target := oIndex - 1
	if dir == Down {
		target = oIndex + 1
	}
	if target < 0 || target >= len(q.Options) {
		return nil
	}
	opts := slices.Clone(q.Options)
	opts[oIndex], opts[target] = opts[target], opts[oIndex]
	reindexOptions(opts)
	q.Options = opts
	return nil
}

func (d *Draft) checkQuestion(index int) error {
	if index < 0 || index >= len(d.questions) {
		return fmt.Errorf("%w: question %d of %d", ErrIndexOutOfRange, index, len(d.questions))
	}
	return nil
}

func (d *Draft) checkOption(qIndex, oIndex int) error {
	if err := d.checkQuestion(qIndex); err != nil {
		return err
	}
	if n := len(d.questions[qIndex].Options); oIndex < 0 || oIndex >= n {
		return fmt.Errorf("%w: option %d of %d", ErrIndexOutOfRange, oIndex, n)
	}
	return nil
}

func reindexQuestions(qs []DraftQuestion) {
	for i := range qs {
		qs[i].OrderIndex = i
	}
}

func reindexOptions(opts []DraftOption) {
	for i := range opts {
		opts[i].OrderIndex = i
	}
}
