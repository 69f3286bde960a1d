package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Server is the configuration of the API server.
type Server struct {
	DatabaseURL         string   `env:"DATABASE_URL"`
	SessionKey          string   `env:"SESSION_KEY"`
	JWTSecret           string   `env:"JWT_SECRET"`
	HTTPAddr            string   `env:"HTTP_ADDR" envDefault:":8080"`
	AllowedOrigins      []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	GoogleClientID      string   `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret  string   `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL   string   `env:"GOOGLE_REDIRECT_URL" envDefault:"http://localhost:8080/auth/google/callback"`
	FrontendURL         string   `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	SubmitRatePerMinute int      `env:"SUBMIT_RATE_PER_MINUTE" envDefault:"30"`
	LogLevel            string   `env:"LOG_LEVEL" envDefault:"info"`
}

// Client is the configuration of the command line client.
type Client struct {
	ServerURL string `env:"FEEDBACK_SERVER_URL" envDefault:"http://localhost:8080"`
	TokenFile string `env:"FEEDBACK_TOKEN_FILE"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"warn"`
}

// LoadDotenv reads .env into the environment if present. Variables already
// set win.
func LoadDotenv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config: load %s: %w", p, err)
		}
	}
	return nil
}

// LoadServer parses the server configuration from the environment.
func LoadServer() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("config: parse env: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return Server{}, errors.New("config: DATABASE_URL environment variable is not set")
	}
	if cfg.SessionKey == "" {
		return Server{}, errors.New("config: SESSION_KEY environment variable is not set")
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = cfg.SessionKey
	}
	if cfg.SubmitRatePerMinute <= 0 {
		return Server{}, fmt.Errorf("config: SUBMIT_RATE_PER_MINUTE must be positive, got %d", cfg.SubmitRatePerMinute)
	}
	return cfg, nil
}

// LoadClient parses the client configuration from the environment.
func LoadClient() (Client, error) {
	var cfg Client
	if err := env.Parse(&cfg); err != nil {
		return Client{}, fmt.Errorf("config: parse env: %w", err)
	}
	if cfg.TokenFile == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return Client{}, fmt.Errorf("config: locate token file: %w", err)
		}
		cfg.TokenFile = filepath.Join(dir, "feedbackx", "token")
	}
	return cfg, nil
}

// ParseLevel maps a LOG_LEVEL value onto a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("config: invalid LOG_LEVEL %q", s)
	}
	return l, nil
}

// GoogleOAuth returns the OAuth2 configuration of the Google login, or nil
// when no client id is configured.
func (s Server) GoogleOAuth() *oauth2.Config {
	if s.GoogleClientID == "" {
		return nil
	}
	return &oauth2.Config{
		ClientID:     s.GoogleClientID,
		ClientSecret: s.GoogleClientSecret,
		RedirectURL:  s.GoogleRedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

const stateCookie = "oauthstate"

// GenerateStateOauthCookie stores a random OAuth state in a short lived
// cookie and returns it.
func GenerateStateOauthCookie(w http.ResponseWriter) (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	state := base64.URLEncoding.EncodeToString(b)
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Expires:  time.Now().Add(30 * time.Minute),
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	return state, nil
}

// VerifyStateOauthCookie checks the state query value against the cookie.
func VerifyStateOauthCookie(r *http.Request) error {
	state := r.FormValue("state")
	cookie, err := r.Cookie(stateCookie)
	if err != nil {
		return err
	}
	if state == "" || cookie.Value != state {
		return errors.New("invalid oauth state")
	}
	return nil
}
