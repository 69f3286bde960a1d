package session

import (
	"context"
	"fmt"

	"github.com/nikhilsahni7/FeedbackX/builder"
	"github.com/nikhilsahni7/FeedbackX/models"
)

// Authoring owns the draft of a form being created or edited.
type Authoring struct {
	backend  Backend
	draft    *builder.Draft
	baseline *builder.Draft
	sub      Submitter
}

// NewAuthoring starts a session for a brand new form.
func NewAuthoring(b Backend) *Authoring {
	d := builder.New()
	return &Authoring{backend: b, draft: d, baseline: d.Clone()}
}

// EditForm fetches an existing form and starts an edit session on it.
func EditForm(ctx context.Context, b Backend, formID string) (*Authoring, error) {
	f, err := b.FormDetail(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("session: load form %q: %w", formID, err)
	}
	d := builder.FromForm(f)
	return &Authoring{backend: b, draft: d, baseline: d.Clone()}, nil
}

// Draft is the working copy. Mutate it directly.
func (a *Authoring) Draft() *builder.Draft { return a.draft }

// Replace swaps the working copy for d, keeping the form being edited.
func (a *Authoring) Replace(d *builder.Draft) {
	d.FormID = a.draft.FormID
	a.draft = d
}

// Dirty reports whether the draft differs from what was loaded or last saved.
func (a *Authoring) Dirty() bool { return !a.draft.Equal(a.baseline) }

// Submit validates the draft and creates or updates the form. A validation
// failure never reaches the store.
func (a *Authoring) Submit(ctx context.Context) (models.Form, error) {
	def, err := a.draft.ToSubmissionPayload()
	if err != nil {
		return models.Form{}, err
	}
	var saved models.Form
	err = a.sub.Do(ctx, func(ctx context.Context) error {
		var err error
		if a.draft.FormID == "" {
			saved, err = a.backend.CreateForm(ctx, def)
		} else {
			saved, err = a.backend.UpdateForm(ctx, a.draft.FormID, def)
		}
		return err
	})
	if err != nil {
		return models.Form{}, err
	}
	if saved.ID != "" {
		a.draft.FormID = saved.ID
	}
	a.baseline = a.draft.Clone()
	return saved, nil
}

// SubmitState exposes the submitter state for presentation.
func (a *Authoring) SubmitState() (SubmitState, error) { return a.sub.State() }

// Discard drops the draft without saving.
func (a *Authoring) Discard() {
	a.draft = builder.New()
	a.baseline = a.draft.Clone()
	a.sub.Reset()
}
