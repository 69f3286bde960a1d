package handlers

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/nikhilsahni7/FeedbackX/auth"
	"github.com/nikhilsahni7/FeedbackX/config"
	"github.com/nikhilsahni7/FeedbackX/db"
	"github.com/nikhilsahni7/FeedbackX/validation"
)

const minPasswordLen = 6

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if !decodeJSON(w, r, &in) {
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	switch {
	case in.Name == "":
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	case !validation.IsEmail(in.Email):
		writeError(w, http.StatusBadRequest, "Enter a valid email")
		return
	case utf8.RuneCountInString(in.Password) < minPasswordLen:
		writeError(w, http.StatusBadRequest, "Password must have at least 6 characters")
		return
	}

	hash, err := h.auth.HashPassword(in.Password)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	user := &db.User{Email: in.Email, Name: in.Name, PasswordHash: hash}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, db.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "Email already registered")
			return
		}
		h.serverError(w, r, err)
		return
	}
	h.log.InfoContext(r.Context(), "user registered", "user", user.ID)
	h.issue(w, r, http.StatusCreated, user)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if !decodeJSON(w, r, &in) {
		return
	}
	user, err := h.store.UserByEmail(r.Context(), strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		h.serverError(w, r, err)
		return
	}
	if user == nil || user.PasswordHash == "" || !auth.CheckPasswordHash(in.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	h.issue(w, r, http.StatusOK, user)
}

// issue answers with a bearer token for user and also starts a cookie
// session for browser clients.
func (h *Handler) issue(w http.ResponseWriter, r *http.Request, status int, user *db.User) {
	token, err := h.auth.IssueToken(user.ID, user.Email)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if err := h.auth.StartSession(w, r, user.ID); err != nil {
		h.log.WarnContext(r.Context(), "failed to save session", "err", err)
	}
	writeJSON(w, status, map[string]any{"token": token, "user": user.Model()})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.ClearSession(w, r); err != nil {
		h.log.WarnContext(r.Context(), "failed to clear session", "err", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Logged out"})
}

func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.UserID(r.Context())
	user, err := h.store.UserByID(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user.Model()})
}

func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		writeError(w, http.StatusNotFound, "Google login is not configured")
		return
	}
	state, err := config.GenerateStateOauthCookie(w)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, h.google.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

func (h *Handler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		writeError(w, http.StatusNotFound, "Google login is not configured")
		return
	}
	if err := config.VerifyStateOauthCookie(r); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid OAuth state")
		return
	}

	token, err := h.google.Exchange(r.Context(), r.FormValue("code"))
	if err != nil {
		h.log.WarnContext(r.Context(), "google token exchange failed", "err", err)
		writeError(w, http.StatusUnauthorized, "Failed to exchange token")
		return
	}
	info, err := auth.FetchGoogleUser(r.Context(), h.google, token, h.userInfoURL)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	user := &db.User{GoogleID: &info.ID, Email: strings.ToLower(info.Email), Name: info.Name, Picture: info.Picture}
	if err := h.store.UpsertGoogleUser(r.Context(), user); err != nil {
		if errors.Is(err, db.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "Email already registered")
			return
		}
		h.serverError(w, r, err)
		return
	}
	if err := h.auth.StartSession(w, r, user.ID); err != nil {
		h.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, strings.TrimRight(h.frontendURL, "/")+"/dashboard", http.StatusSeeOther)
}
