package builder

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/nikhilsahni7/FeedbackX/models"
)

// MinQuestionTextLen is the shortest accepted prompt, after trimming.
const MinQuestionTextLen = 2

// FromDefinition loads a create/update request body into a draft so it can be
// checked with ValidateForSubmit. Options on non-checkbox questions are
// dropped and order is taken from list position.
func FromDefinition(def models.FormDefinition) (*Draft, error) {
	d := &Draft{
		Title:       def.Title,
		Description: def.Description,
		IsPublic:    def.IsPublic,
		Closed:      def.Closed,
	}
	for i, qd := range def.Questions {
		t, err := models.ParseQuestionType(string(qd.QuestionType))
		if err != nil {
			return nil, &models.ValidationError{Index: i, Message: fmt.Sprintf("Question %d: %v", i+1, err)}
		}
		q := DraftQuestion{
			QuestionText: qd.QuestionText,
			QuestionType: t,
			IsRequired:   qd.IsRequired,
			Options:      []DraftOption{},
		}
		if t.CarriesOptions() {
			for _, od := range qd.Options {
				q.Options = append(q.Options, DraftOption{OptionText: od.OptionText})
			}
			reindexOptions(q.Options)
		}
		d.questions = append(d.questions, q)
	}
	reindexQuestions(d.questions)
	return d, nil
}

// ValidateForSubmit checks the submission preconditions and returns the
// first one violated, walking questions in order and each question's
// options in order. A checkbox without options is a toggle and needs none.
func (d *Draft) ValidateForSubmit() error {
	if strings.TrimSpace(d.Title) == "" {
		return &models.ValidationError{Index: -1, Message: "Title is required"}
	}
	if len(d.questions) == 0 {
		return &models.ValidationError{Index: -1, Message: "A form needs at least one question"}
	}
	for i, q := range d.questions {
		if utf8.RuneCountInString(strings.TrimSpace(q.QuestionText)) < MinQuestionTextLen {
			return models.Invalid(i, q.ID, "Question %d must have at least %d characters", i+1, MinQuestionTextLen)
		}
		if !q.QuestionType.CarriesOptions() || len(q.Options) == 0 {
			continue
		}
		if len(q.Options) < MinChoiceOptions {
			return models.Invalid(i, q.ID, "Question %d must have at least %d options", i+1, MinChoiceOptions)
		}
		for j, o := range q.Options {
			if strings.TrimSpace(o.OptionText) == "" {
				return models.Invalid(i, q.ID, "Question %d: option %d is empty", i+1, j+1)
			}
		}
	}
	return nil
}

// ToSubmissionPayload validates the draft and renders it as a create/update
// request body with trimmed text. Options appear only on checkbox questions.
func (d *Draft) ToSubmissionPayload() (models.FormDefinition, error) {
	if err := d.ValidateForSubmit(); err != nil {
		return models.FormDefinition{}, err
	}
	def := models.FormDefinition{
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		IsPublic:    d.IsPublic,
		Closed:      d.Closed,
		Questions:   make([]models.QuestionDefinition, 0, len(d.questions)),
	}
	for i, q := range d.questions {
		qd := models.QuestionDefinition{
			QuestionText: strings.TrimSpace(q.QuestionText),
			QuestionType: q.QuestionType,
			IsRequired:   q.IsRequired,
			OrderIndex:   i,
		}
		if q.QuestionType.CarriesOptions() {
			qd.Options = make([]models.OptionDefinition, 0, len(q.Options))
			for j, o := range q.Options {
				qd.Options = append(qd.Options, models.OptionDefinition{
					OptionText: strings.TrimSpace(o.OptionText),
					OrderIndex: j,
				})
			}
		}
		def.Questions = append(def.Questions, qd)
	}
	return def, nil
}

// Clone returns an independent copy of d.
func (d *Draft) Clone() *Draft {
	c := *d
	c.questions = d.Questions()
	return &c
}

// Equal reports whether two drafts hold the same content.
func (d *Draft) Equal(o *Draft) bool {
	if d.FormID != o.FormID || d.Title != o.Title || d.Description != o.Description ||
		d.IsPublic != o.IsPublic || d.Closed != o.Closed {
		return false
	}
	return slices.EqualFunc(d.questions, o.questions, func(a, b DraftQuestion) bool {
		return a.ID == b.ID && a.QuestionText == b.QuestionText && a.QuestionType == b.QuestionType &&
			a.IsRequired == b.IsRequired && a.OrderIndex == b.OrderIndex && slices.Equal(a.Options, b.Options)
	})
}
