package session

import (
	"context"
	"slices"

	"github.com/nikhilsahni7/FeedbackX/models"
	"golang.org/x/sync/errgroup"
)

// Dashboard is an author's view of their forms and the responses to one of
// them.
type Dashboard struct {
	backend Backend
	userID  string

	Forms      []models.FormSummary
	Opened     *models.Form
	Responses  []models.Response
	Pagination models.Pagination
	Err        error
}

// NewDashboard returns a dashboard for userID.
func NewDashboard(b Backend, userID string) *Dashboard {
	return &Dashboard{backend: b, userID: userID}
}

// Refresh reloads the form list.
func (d *Dashboard) Refresh(ctx context.Context) error {
	forms, err := d.backend.ListForms(ctx, d.userID)
	if err != nil {
		d.Err = err
		return err
	}
	d.Forms, d.Err = forms, nil
	return nil
}

// Open fetches a form and a page of its responses concurrently.
func (d *Dashboard) Open(ctx context.Context, formID string, page, limit int) error {
	var (
		form  models.Form
		resps []models.Response
		pg    models.Pagination
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		form, err = d.backend.FormDetail(gctx, formID)
		return err
	})
	g.Go(func() error {
		var err error
		resps, pg, err = d.backend.Responses(gctx, formID, page, limit)
		return err
	})
	if err := g.Wait(); err != nil {
		d.Err = err
		return err
	}
	d.Opened, d.Responses, d.Pagination, d.Err = &form, resps, pg, nil
	return nil
}

// Delete removes a form, drops it from the list and closes it if opened.
func (d *Dashboard) Delete(ctx context.Context, formID string) error {
	if err := d.backend.DeleteForm(ctx, formID); err != nil {
		d.Err = err
		return err
	}
	d.Forms = slices.DeleteFunc(d.Forms, func(f models.FormSummary) bool { return f.ID == formID })
	if d.Opened != nil && d.Opened.ID == formID {
		d.Opened, d.Responses, d.Pagination = nil, nil, models.Pagination{}
	}
	d.Err = nil
	return nil
}

// Clear forgets everything, as on logout.
func (d *Dashboard) Clear() {
	d.Forms, d.Opened, d.Responses, d.Pagination, d.Err = nil, nil, nil, models.Pagination{}, nil
}
