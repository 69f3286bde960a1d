package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/nikhilsahni7/FeedbackX/builder"
	"github.com/nikhilsahni7/FeedbackX/client"
	"github.com/nikhilsahni7/FeedbackX/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Backend = (*client.Client)(nil)

type fakeBackend struct {
	mu        sync.Mutex
	forms     map[string]models.Form
	submitted []models.Submission
	created   []models.FormDefinition
	updated   map[string]models.FormDefinition
	deleted   []string
	publicErr error
	submitErr error
	block     chan struct{}
	entered   chan struct{}
}

func newFake() *fakeBackend {
	return &fakeBackend{
		forms: map[string]models.Form{
			"F": {ID: "F", Title: "Survey", Questions: []models.Question{
				{ID: "Q1", QuestionText: "Name", QuestionType: models.QuestionTypeText, IsRequired: true},
				{ID: "Q2", QuestionText: "Color", QuestionType: models.QuestionTypeRadio, IsRequired: true, OrderIndex: 1, Options: []models.Option{
					{ID: "r", OptionText: "Red"}, {ID: "b", OptionText: "Blue", OrderIndex: 1},
				}},
			}},
		},
		updated: map[string]models.FormDefinition{},
	}
}

func (f *fakeBackend) ListForms(ctx context.Context, userID string) ([]models.FormSummary, error) {
	var out []models.FormSummary
	for _, fm := range f.forms {
		out = append(out, models.FormSummary{ID: fm.ID, Title: fm.Title})
	}
	return out, nil
}

func (f *fakeBackend) FormDetail(ctx context.Context, id string) (models.Form, error) {
	fm, ok := f.forms[id]
	if !ok {
		return models.Form{}, &client.APIError{Status: 404, Message: models.MessageFormNotFound}
	}
	return fm, nil
}

func (f *fakeBackend) PublicForm(ctx context.Context, id string) (models.Form, error) {
	if f.publicErr != nil {
		return models.Form{}, f.publicErr
	}
	return f.FormDetail(ctx, id)
}

func (f *fakeBackend) Responses(ctx context.Context, formID string, page, limit int) ([]models.Response, models.Pagination, error) {
	return []models.Response{{ID: "r1"}}, models.Pagination{Page: 1, Limit: limit, Total: 1, TotalPages: 1, Count: 1}, nil
}

func (f *fakeBackend) CreateForm(ctx context.Context, def models.FormDefinition) (models.Form, error) {
	f.created = append(f.created, def)
	return models.Form{ID: "new-id", Title: def.Title}, nil
}

func (f *fakeBackend) UpdateForm(ctx context.Context, id string, def models.FormDefinition) (models.Form, error) {
	f.updated[id] = def
	return models.Form{ID: id, Title: def.Title}, nil
}

func (f *fakeBackend) DeleteForm(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	delete(f.forms, id)
	return nil
}

func (f *fakeBackend) SubmitResponse(ctx context.Context, sub models.Submission) error {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submitted = append(f.submitted, sub)
	return nil
}

func TestRespondingEndToEnd(t *testing.T) {
	ctx := context.Background()
	fb := newFake()
	r := NewResponding(fb, "F")

	_, err := r.Submit(ctx)
	assert.ErrorIs(t, err, ErrNotLoaded)

	require.NoError(t, r.Load(ctx))
	require.NoError(t, r.SelectOption("Q2", "b"))

	_, err = r.Submit(ctx)
	require.Error(t, err)
	assert.True(t, models.IsValidationError(err))
	assert.Contains(t, err.Error(), "Name")
	assert.Empty(t, fb.submitted, "validation failures never reach the store")

	require.NoError(t, r.SetText("Q1", "Ann"))
	sub, err := r.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Submission{FormID: "F", Answers: []models.AnswerEntry{
		models.TextAnswer("Q1", "Ann"),
		models.OptionAnswer("Q2", "b"),
	}}, sub)
	require.Len(t, fb.submitted, 1)

	state, _ := r.SubmitState()
	assert.Equal(t, Succeeded, state)

	r.Discard()
	_, err = r.Form()
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestRespondingLoadErrors(t *testing.T) {
	ctx := context.Background()
	fb := newFake()

	r := NewResponding(fb, "missing")
	require.Error(t, r.Load(ctx))
	assert.True(t, r.FormNotFound)
	assert.Empty(t, r.FormStatus)

	fb.publicErr = &client.APIError{Status: 403, Message: models.MessageFormClosed}
	r = NewResponding(fb, "F")
	require.Error(t, r.Load(ctx))
	assert.False(t, r.FormNotFound)
	assert.Equal(t, FormStatusClosed, r.FormStatus)

	fb.publicErr = &client.TransportError{Op: "public form", Err: errors.New("dial tcp: refused")}
	require.Error(t, r.Load(ctx))
	assert.False(t, r.FormNotFound)
	assert.Empty(t, r.FormStatus)
	assert.True(t, client.IsTransport(r.Err))
}

func TestSubmitIsSingleFlight(t *testing.T) {
	ctx := context.Background()
	fb := newFake()
	fb.block = make(chan struct{})
	fb.entered = make(chan struct{}, 1)

	r := NewResponding(fb, "F")
	require.NoError(t, r.Load(ctx))
	require.NoError(t, r.SetText("Q1", "Ann"))
	require.NoError(t, r.SelectOption("Q2", "r"))

	done := make(chan error, 1)
	go func() {
		_, err := r.Submit(ctx)
		done <- err
	}()
	<-fb.entered

	state, _ := r.SubmitState()
	assert.Equal(t, Submitting, state)
	_, err := r.Submit(ctx)
	assert.ErrorIs(t, err, ErrSubmitInProgress)

	close(fb.block)
	require.NoError(t, <-done)
	assert.Len(t, fb.submitted, 1)
}

func TestSubmitFailureAllowsRetry(t *testing.T) {
	ctx := context.Background()
	fb := newFake()
	fb.submitErr = &client.TransportError{Op: "submit response", Err: errors.New("timeout")}

	r := NewResponding(fb, "F")
	require.NoError(t, r.Load(ctx))
	require.NoError(t, r.SetText("Q1", "Ann"))
	require.NoError(t, r.SelectOption("Q2", "r"))

	_, err := r.Submit(ctx)
	require.Error(t, err)
	assert.True(t, client.IsTransport(err))
	state, lastErr := r.SubmitState()
	assert.Equal(t, Failed, state)
	assert.Error(t, lastErr)

	fb.submitErr = nil
	_, err = r.Submit(ctx)
	require.NoError(t, err)
}

func TestAuthoringCreateThenUpdate(t *testing.T) {
	ctx := context.Background()
	fb := newFake()
	a := NewAuthoring(fb)
	assert.False(t, a.Dirty())

	_, err := a.Submit(ctx)
	require.Error(t, err)
	assert.Empty(t, fb.created)

	d := a.Draft()
	d.SetTitle("Retro")
	require.NoError(t, d.SetQuestionText(0, "How was it?"))
	assert.True(t, a.Dirty())

	saved, err := a.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new-id", saved.ID)
	require.Len(t, fb.created, 1)
	assert.False(t, a.Dirty())

	d.SetTitle("Retro v2")
	_, err = a.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Retro v2", fb.updated["new-id"].Title)
}

func TestEditForm(t *testing.T) {
	ctx := context.Background()
	fb := newFake()
	a, err := EditForm(ctx, fb, "F")
	require.NoError(t, err)
	assert.Equal(t, "F", a.Draft().FormID)
	assert.Equal(t, 2, a.Draft().Len())

	def := models.FormDefinition{Title: "Survey v2", Questions: []models.QuestionDefinition{
		{QuestionText: "Nickname", QuestionType: models.QuestionTypeText},
	}}
	d, err := builder.FromDefinition(def)
	require.NoError(t, err)
	a.Replace(d)
	assert.True(t, a.Dirty())
	_, err = a.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, def.Title, fb.updated["F"].Title)
	assert.Len(t, fb.updated["F"].Questions, 1)

	_, err = EditForm(ctx, fb, "nope")
	assert.ErrorIs(t, err, models.ErrFormNotFound)
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	fb := newFake()
	d := NewDashboard(fb, "u1")

	require.NoError(t, d.Refresh(ctx))
	require.Len(t, d.Forms, 1)

	require.NoError(t, d.Open(ctx, "F", 1, 20))
	require.NotNil(t, d.Opened)
	assert.Len(t, d.Responses, 1)

	require.NoError(t, d.Delete(ctx, "F"))
	assert.Empty(t, d.Forms)
	assert.Nil(t, d.Opened)
	assert.Equal(t, []string{"F"}, fb.deleted)

	assert.Error(t, d.Open(ctx, "F", 1, 20))
	assert.Error(t, d.Err)
}
