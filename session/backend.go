package session

import (
	"context"

	"github.com/nikhilsahni7/FeedbackX/models"
)

// Backend is the slice of the store client the sessions need.
// *client.Client implements it.
type Backend interface {
	ListForms(ctx context.Context, userID string) ([]models.FormSummary, error)
	FormDetail(ctx context.Context, id string) (models.Form, error)
	PublicForm(ctx context.Context, id string) (models.Form, error)
	Responses(ctx context.Context, formID string, page, limit int) ([]models.Response, models.Pagination, error)
	CreateForm(ctx context.Context, def models.FormDefinition) (models.Form, error)
	UpdateForm(ctx context.Context, id string, def models.FormDefinition) (models.Form, error)
	DeleteForm(ctx context.Context, id string) error
	SubmitResponse(ctx context.Context, sub models.Submission) error
}
