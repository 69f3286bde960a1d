package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikhilsahni7/FeedbackX/answers"
	"github.com/nikhilsahni7/FeedbackX/models"
	"github.com/nikhilsahni7/FeedbackX/payload"
	"github.com/nikhilsahni7/FeedbackX/validation"
)

// FormStatusClosed is the FormStatus of a form that no longer takes answers.
const FormStatusClosed = "closed"

// ErrNotLoaded is returned by Responding methods called before a successful
// Load or after Discard.
var ErrNotLoaded = errors.New("session: form not loaded")

// Responding is one respondent filling out one public form.
type Responding struct {
	backend Backend
	formID  string

	form  *models.Form
	state *answers.State
	sub   Submitter

	// Presentation state set by Load.
	FormNotFound bool
	FormStatus   string
	Err          error
}

// NewResponding prepares a session for formID. Call Load before answering.
func NewResponding(b Backend, formID string) *Responding {
	return &Responding{backend: b, formID: formID}
}

// Load fetches the form and creates a fresh answer map. Not-found and
// closed forms are recorded in FormNotFound and FormStatus as well as
// returned.
func (r *Responding) Load(ctx context.Context) error {
	r.FormNotFound, r.FormStatus, r.Err = false, "", nil
	f, err := r.backend.PublicForm(ctx, r.formID)
	if err != nil {
		r.Err = err
		r.FormNotFound = errors.Is(err, models.ErrFormNotFound)
		if errors.Is(err, models.ErrFormClosed) {
			r.FormStatus = FormStatusClosed
		}
		r.form, r.state = nil, nil
		return err
	}
	for i := range f.Questions {
		f.Questions[i].QuestionType = models.NormalizeQuestionType(string(f.Questions[i].QuestionType))
	}
	r.form = &f
	r.state = answers.New(r.form)
	r.sub.Reset()
	return nil
}

// Form returns the loaded schema.
func (r *Responding) Form() (*models.Form, error) {
	if r.form == nil {
		return nil, ErrNotLoaded
	}
	return r.form, nil
}

// Answers returns the answer map.
func (r *Responding) Answers() (*answers.State, error) {
	if r.state == nil {
		return nil, ErrNotLoaded
	}
	return r.state, nil
}

// SetText answers a scalar question.
func (r *Responding) SetText(questionID, value string) error {
	if r.state == nil {
		return ErrNotLoaded
	}
	return r.state.SetText(questionID, value)
}

// SelectOption answers a choice question.
func (r *Responding) SelectOption(questionID, optionID string) error {
	if r.state == nil {
		return ErrNotLoaded
	}
	return r.state.SelectOption(questionID, optionID)
}

// Clear drops the answer to one question.
func (r *Responding) Clear(questionID string) error {
	if r.state == nil {
		return ErrNotLoaded
	}
	return r.state.Clear(questionID)
}

// Toggle flips a checkbox question without options.
func (r *Responding) Toggle(questionID string) error {
	if r.state == nil {
		return ErrNotLoaded
	}
	return r.state.Toggle(questionID)
}

// Validate checks the current answers without submitting.
func (r *Responding) Validate() error {
	if r.state == nil {
		return ErrNotLoaded
	}
	return validation.Validate(r.state)
}

// Submit validates, serialises and sends the answers. Only one submit runs
// at a time; a second call while the first is in flight gets
// ErrSubmitInProgress.
func (r *Responding) Submit(ctx context.Context) (models.Submission, error) {
	if r.state == nil {
		return models.Submission{}, ErrNotLoaded
	}
	if err := validation.Validate(r.state); err != nil {
		return models.Submission{}, err
	}
	sub := payload.Build(r.state)
	if err := r.sub.Do(ctx, func(ctx context.Context) error {
		return r.backend.SubmitResponse(ctx, sub)
	}); err != nil {
		if errors.Is(err, ErrSubmitInProgress) {
			return models.Submission{}, err
		}
		return models.Submission{}, fmt.Errorf("session: submit response: %w", err)
	}
	return sub, nil
}

// SubmitState exposes the submitter state for presentation.
func (r *Responding) SubmitState() (SubmitState, error) { return r.sub.State() }

// Discard ends the session and drops the answers.
func (r *Responding) Discard() {
	r.form, r.state = nil, nil
	r.FormNotFound, r.FormStatus, r.Err = false, "", nil
	r.sub.Reset()
}
