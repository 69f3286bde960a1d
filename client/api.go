package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nikhilsahni7/FeedbackX/models"
)

// Credentials identify an account for Login and Register.
type Credentials struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	envelope
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, models.User, error) {
	var out authResponse
	err := c.do(ctx, "login", http.MethodPost, c.endpoint(nil, "user", "login"), Credentials{Email: email, Password: password}, &out)
	return out.Token, out.User, err
}

// Register creates an account and returns its token.
func (c *Client) Register(ctx context.Context, cred Credentials) (string, models.User, error) {
	var out authResponse
	err := c.do(ctx, "register", http.MethodPost, c.endpoint(nil, "user", "create"), cred, &out)
	return out.Token, out.User, err
}

type userResponse struct {
	envelope
	User models.User `json:"user"`
}

// CurrentUser returns the account behind the token.
func (c *Client) CurrentUser(ctx context.Context) (models.User, error) {
	var out userResponse
	err := c.do(ctx, "current user", http.MethodGet, c.endpoint(nil, "user", ""), nil, &out)
	return out.User, err
}

type formsResponse struct {
	envelope
	Forms []models.FormSummary `json:"forms"`
}

// ListForms returns the forms owned by userID.
func (c *Client) ListForms(ctx context.Context, userID string) ([]models.FormSummary, error) {
	var out formsResponse
	q := url.Values{"id": {userID}}
	err := c.do(ctx, "list forms", http.MethodGet, c.endpoint(q, "feedback", "all"), nil, &out)
	return out.Forms, err
}

type formResponse struct {
	envelope
	Form *models.Form `json:"form"`
}

func (c *Client) getForm(ctx context.Context, op, target string) (models.Form, error) {
	var out formResponse
	if err := c.do(ctx, op, http.MethodGet, target, nil, &out); err != nil {
		return models.Form{}, err
	}
	if out.Form == nil {
		return models.Form{}, &APIError{Op: op, Status: http.StatusNotFound, Message: models.MessageFormNotFound}
	}
	return *out.Form, nil
}

// FormDetail returns a form owned by the caller.
func (c *Client) FormDetail(ctx context.Context, id string) (models.Form, error) {
	return c.getForm(ctx, "form detail", c.endpoint(nil, "feedback", "detail", id))
}

// PublicForm returns a form for answering. Missing and closed forms match
// models.ErrFormNotFound and models.ErrFormClosed with errors.Is.
func (c *Client) PublicForm(ctx context.Context, id string) (models.Form, error) {
	return c.getForm(ctx, "public form", c.endpoint(nil, "feedback", id))
}

type responsesResponse struct {
	envelope
	Responses  []models.Response `json:"responses"`
	Pagination models.Pagination `json:"pagination"`
}

// Responses returns one page of responses to a form. Zero page or limit
// use the store's defaults.
func (c *Client) Responses(ctx context.Context, formID string, page, limit int) ([]models.Response, models.Pagination, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out responsesResponse
	err := c.do(ctx, "list responses", http.MethodGet, c.endpoint(q, "response", "all", formID), nil, &out)
	return out.Responses, out.Pagination, err
}

// CreateForm stores a new form.
func (c *Client) CreateForm(ctx context.Context, def models.FormDefinition) (models.Form, error) {
	var out formResponse
	if err := c.do(ctx, "create form", http.MethodPost, c.endpoint(nil, "feedback", "create"), def, &out); err != nil {
		return models.Form{}, err
	}
	if out.Form == nil {
		return models.Form{}, nil
	}
	return *out.Form, nil
}

// UpdateForm replaces the definition of an existing form.
func (c *Client) UpdateForm(ctx context.Context, id string, def models.FormDefinition) (models.Form, error) {
	var out formResponse
	if err := c.do(ctx, "update form", http.MethodPatch, c.endpoint(nil, "feedback", id), def, &out); err != nil {
		return models.Form{}, err
	}
	if out.Form == nil {
		return models.Form{}, nil
	}
	return *out.Form, nil
}

// DeleteForm removes a form and its responses.
func (c *Client) DeleteForm(ctx context.Context, id string) error {
	var out envelope
	return c.do(ctx, "delete form", http.MethodDelete, c.endpoint(nil, "feedback", id), nil, &out)
}

// SubmitResponse sends a respondent's answers.
func (c *Client) SubmitResponse(ctx context.Context, sub models.Submission) error {
	var out envelope
	return c.do(ctx, "submit response", http.MethodPost, c.endpoint(nil, "response", sub.FormID), sub, &out)
}

type statsResponse struct {
	envelope
	Stats models.FormStats `json:"stats"`
}

// Stats returns per-question aggregates of a form's responses.
func (c *Client) Stats(ctx context.Context, formID string) (models.FormStats, error) {
	var out statsResponse
	err := c.do(ctx, "form stats", http.MethodGet, c.endpoint(nil, "feedback", "stats", formID), nil, &out)
	return out.Stats, err
}

// ExportCSV streams the CSV export of a form's responses into w.
func (c *Client) ExportCSV(ctx context.Context, formID string, w io.Writer) error {
	target := c.endpoint(nil, "feedback", "export", formID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return &TransportError{Op: "export csv", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		var out envelope
		raw, _ := io.ReadAll(resp.Body)
		msg := fallbackMessage(resp.StatusCode, raw)
		if jsonErr := json.Unmarshal(raw, &out); jsonErr == nil && out.Message != "" {
			msg = out.Message
		}
		return &APIError{Op: "export csv", Status: resp.StatusCode, Message: msg}
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return &TransportError{Op: "export csv", Err: err}
	}
	return nil
}
