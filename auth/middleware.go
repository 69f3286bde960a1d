// Package auth authenticates form owners with bearer tokens or cookie
// sessions.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/antonlindstrom/pgstore"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"
)

const (
	SessionName = "feedbackx-session"

	// DefaultCost is the bcrypt cost of stored password hashes.
	DefaultCost = 14
	TokenTTL    = 24 * time.Hour
)

var ErrInvalidToken = errors.New("auth: invalid token")

type ctxKey struct{}

// Authenticator issues and checks credentials of form owners.
type Authenticator struct {
	secret   []byte
	sessions sessions.Store
	log      *slog.Logger

	// Cost is the bcrypt cost used by HashPassword.
	Cost int
	now  func() time.Time
}

// New returns an Authenticator signing tokens with secret and keeping
// cookie sessions in store.
func New(secret string, store sessions.Store, log *slog.Logger) *Authenticator {
	return &Authenticator{
		secret:   []byte(secret),
		sessions: store,
		log:      log,
		Cost:     DefaultCost,
		now:      time.Now,
	}
}

// NewPGSessionStore keeps sessions in the Postgres database at dsn.
func NewPGSessionStore(dsn, key string) (*pgstore.PGStore, error) {
	store, err := pgstore.NewPGStore(dsn, []byte(key))
	if err != nil {
		return nil, fmt.Errorf("auth: session store: %w", err)
	}
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode
	return store, nil
}

// HashPassword hashes a password with bcrypt.
func (a *Authenticator) HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), a.Cost)
	return string(b), err
}

// CheckPasswordHash reports whether password matches hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IssueToken signs a bearer token for userID.
func (a *Authenticator) IssueToken(userID, email string) (string, error) {
	now := a.now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"exp":   now.Add(TokenTTL).Unix(),
		"iat":   now.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// ParseToken returns the user id of a valid bearer token.
func (a *Authenticator) ParseToken(raw string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}

// StartSession marks the cookie session of r as authenticated for userID.
func (a *Authenticator) StartSession(w http.ResponseWriter, r *http.Request, userID string) error {
	session, err := a.sessions.New(r, SessionName)
	if err != nil && session == nil {
		return fmt.Errorf("auth: new session: %w", err)
	}
	session.Values["authenticated"] = true
	session.Values["user_id"] = userID
	return session.Save(r, w)
}

// ClearSession expires the cookie session of r.
func (a *Authenticator) ClearSession(w http.ResponseWriter, r *http.Request) error {
	session, err := a.sessions.Get(r, SessionName)
	if err != nil && session == nil {
		return err
	}
	session.Values = map[any]any{}
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

// Identify returns the user behind the bearer token or the session cookie
// of r.
func (a *Authenticator) Identify(r *http.Request) (string, bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		raw, ok := strings.CutPrefix(h, "Bearer ")
		if !ok {
			return "", false
		}
		id, err := a.ParseToken(strings.TrimSpace(raw))
		if err != nil {
			a.log.Debug("rejected bearer token", "err", err)
			return "", false
		}
		return id, true
	}
	session, err := a.sessions.Get(r, SessionName)
	if err != nil || session == nil {
		return "", false
	}
	if ok, _ := session.Values["authenticated"].(bool); !ok {
		return "", false
	}
	id, _ := session.Values["user_id"].(string)
	return id, id != ""
}

// Middleware rejects unauthenticated requests with 401.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := a.Identify(r)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), id)))
	})
}

// Optional records the caller in the context when authenticated and lets
// anonymous requests through.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := a.Identify(r); ok {
			r = r.WithContext(WithUserID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// WithUserID stores the authenticated user id in ctx.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// UserID returns the authenticated user id of ctx.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}
