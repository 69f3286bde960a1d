package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/nikhilsahni7/FeedbackX/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func newStub(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var seen []string
	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			seen = append(seen, req.Method+" "+req.URL.RequestURI()+" "+req.Header.Get("Authorization"))
			next.ServeHTTP(w, req)
		})
	})
	r.HandleFunc("/user/login", func(w http.ResponseWriter, req *http.Request) {
		var cred Credentials
		json.NewDecoder(req.Body).Decode(&cred)
		if cred.Password != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "token": "tok-1", "user": models.User{ID: "u1", Email: cred.Email}})
	}).Methods(http.MethodPost)
	r.HandleFunc("/feedback/all", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "forms": []models.FormSummary{{ID: "f1", Title: "One"}}})
	}).Methods(http.MethodGet)
	r.HandleFunc("/feedback/{id}", func(w http.ResponseWriter, req *http.Request) {
		switch mux.Vars(req)["id"] {
		case "missing":
			writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": models.MessageFormNotFound})
		case "closed":
			writeJSON(w, http.StatusForbidden, map[string]any{"success": false, "message": models.MessageFormClosed})
		case "broken":
			http.Error(w, "upstream exploded", http.StatusBadGateway)
		default:
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "form": models.Form{ID: mux.Vars(req)["id"], Title: "Open"}})
		}
	}).Methods(http.MethodGet)
	r.HandleFunc("/response/{id}", func(w http.ResponseWriter, req *http.Request) {
		var sub models.Submission
		require.NoError(t, json.NewDecoder(req.Body).Decode(&sub))
		assert.Equal(t, mux.Vars(req)["id"], sub.FormID)
		writeJSON(w, http.StatusCreated, map[string]any{"success": true})
	}).Methods(http.MethodPost)
	r.HandleFunc("/response/all/{id}", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":    true,
			"responses":  []models.Response{{ID: "r1"}},
			"pagination": models.Pagination{Page: 2, Limit: 5, Total: 6, TotalPages: 2, Count: 1},
		})
	}).Methods(http.MethodGet)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestLoginAndBearerToken(t *testing.T) {
	srv, seen := newStub(t)
	ctx := context.Background()

	c, err := New(srv.URL + "/")
	require.NoError(t, err)

	token, user, err := c.Login(ctx, "ann@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, "u1", user.ID)

	authed, err := c.WithToken(token)
	require.NoError(t, err)
	forms, err := authed.ListForms(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, forms, 1)

	assert.Equal(t, []string{
		"POST /user/login ",
		"GET /feedback/all?id=u1 Bearer tok-1",
	}, *seen)

	_, _, err = c.Login(ctx, "ann@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, "Invalid credentials", err.Error())
}

func TestPublicFormErrors(t *testing.T) {
	srv, _ := newStub(t)
	c, err := New(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	f, err := c.PublicForm(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", f.ID)

	_, err = c.PublicForm(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrFormNotFound)
	assert.NotErrorIs(t, err, models.ErrFormClosed)

	_, err = c.PublicForm(ctx, "closed")
	assert.ErrorIs(t, err, models.ErrFormClosed)

	_, err = c.PublicForm(ctx, "broken")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream exploded", apiErr.Message)
}

func TestSubmitAndResponses(t *testing.T) {
	srv, seen := newStub(t)
	c, err := New(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.SubmitResponse(ctx, models.Submission{FormID: "f 1", Answers: []models.AnswerEntry{models.TextAnswer("q", "x")}}))

	rs, page, err := c.Responses(ctx, "f1", 2, 5)
	require.NoError(t, err)
	assert.Len(t, rs, 1)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, strings.HasPrefix((*seen)[0], "POST /response/f%201 "))
	assert.Equal(t, "GET /response/all/f1?limit=5&page=2 ", (*seen)[1])
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)
	_, err = c.PublicForm(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, IsTransport(err))
}

func TestNewRejectsRelativeURL(t *testing.T) {
	_, err := New("localhost:8080")
	assert.Error(t, err)
}
