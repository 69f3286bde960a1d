// Package handlers serves the form store API consumed by the client package.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nikhilsahni7/FeedbackX/auth"
	"github.com/nikhilsahni7/FeedbackX/db"
	"github.com/nikhilsahni7/FeedbackX/models"
	"golang.org/x/oauth2"
)

const maxBodyBytes = 1 << 20

// Store is the persistence the handlers need. *db.Store implements it.
type Store interface {
	CreateUser(ctx context.Context, u *db.User) error
	UserByEmail(ctx context.Context, email string) (*db.User, error)
	UserByID(ctx context.Context, id string) (*db.User, error)
	UpsertGoogleUser(ctx context.Context, u *db.User) error

	CreateForm(ctx context.Context, ownerID string, def models.FormDefinition) (models.Form, error)
	UpdateForm(ctx context.Context, id string, def models.FormDefinition) (models.Form, error)
	DeleteForm(ctx context.Context, id string) error
	Form(ctx context.Context, id string) (models.Form, error)
	FormsByOwner(ctx context.Context, ownerID string) ([]models.FormSummary, error)

	CreateResponse(ctx context.Context, formID string, entries []models.AnswerEntry, ip, userAgent string) (models.Response, error)
	Responses(ctx context.Context, formID string, offset, limit int) ([]models.Response, int64, error)
}

var _ Store = (*db.Store)(nil)

// Options configures a Handler.
type Options struct {
	Store  Store
	Auth   *auth.Authenticator
	Logger *slog.Logger

	// Google enables the Google login routes when set.
	Google            *oauth2.Config
	GoogleUserInfoURL string
	FrontendURL       string

	SubmitRatePerMinute int
}

// Handler holds the dependencies of every route.
type Handler struct {
	store       Store
	auth        *auth.Authenticator
	log         *slog.Logger
	google      *oauth2.Config
	userInfoURL string
	frontendURL string
	limiter     *rateLimiter
	sanitizer   *bluemonday.Policy
}

// New builds a Handler from o.
func New(o Options) *Handler {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.GoogleUserInfoURL == "" {
		o.GoogleUserInfoURL = auth.GoogleUserInfoURL
	}
	if o.SubmitRatePerMinute <= 0 {
		o.SubmitRatePerMinute = 30
	}
	return &Handler{
		store:       o.Store,
		auth:        o.Auth,
		log:         o.Logger,
		google:      o.Google,
		userInfoURL: o.GoogleUserInfoURL,
		frontendURL: o.FrontendURL,
		limiter:     newRateLimiter(o.SubmitRatePerMinute),
		sanitizer:   bluemonday.StrictPolicy(),
	}
}

// Router registers every route. Literal paths come before their {id}
// siblings.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	private := func(fn http.HandlerFunc) http.Handler { return h.auth.Middleware(fn) }
	public := func(fn http.HandlerFunc) http.Handler { return h.auth.Optional(fn) }

	r.HandleFunc("/user/create", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/user/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/user/logout", h.Logout).Methods(http.MethodPost)
	r.Handle("/user/", private(h.CurrentUser)).Methods(http.MethodGet)
	r.HandleFunc("/auth/google/login", h.GoogleLogin).Methods(http.MethodGet)
	r.HandleFunc("/auth/google/callback", h.GoogleCallback).Methods(http.MethodGet)

	r.Handle("/feedback/all", private(h.ListForms)).Methods(http.MethodGet)
	r.Handle("/feedback/create", private(h.CreateForm)).Methods(http.MethodPost)
	r.Handle("/feedback/detail/{id}", private(h.FormDetail)).Methods(http.MethodGet)
	r.Handle("/feedback/stats/{id}", private(h.FormStats)).Methods(http.MethodGet)
	r.Handle("/feedback/export/{id}", private(h.ExportResponses)).Methods(http.MethodGet)
	r.Handle("/feedback/{id}", public(h.PublicForm)).Methods(http.MethodGet)
	r.Handle("/feedback/{id}", private(h.UpdateForm)).Methods(http.MethodPatch)
	r.Handle("/feedback/{id}", private(h.DeleteForm)).Methods(http.MethodDelete)

	r.Handle("/response/all/{id}", private(h.ListResponses)).Methods(http.MethodGet)
	r.Handle("/response/{id}", h.limiter.Middleware(public(h.SubmitResponse))).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	body["success"] = status < http.StatusBadRequest
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"message": message})
}

// serverError logs err and answers 500 without leaking it.
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		msg := "Invalid request body"
		if errors.Is(err, io.EOF) {
			msg = "Request body is empty"
		}
		writeError(w, http.StatusBadRequest, msg)
		return false
	}
	return true
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
