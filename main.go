package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nikhilsahni7/FeedbackX/auth"
	"github.com/nikhilsahni7/FeedbackX/config"
	"github.com/nikhilsahni7/FeedbackX/db"
	"github.com/nikhilsahni7/FeedbackX/handlers"
	"github.com/rs/cors"
)

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "feedbackx: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotenv(); err != nil {
		return err
	}
	cfg, err := config.LoadServer()
	if err != nil {
		return err
	}
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := config.NewLogger(os.Stderr, level)

	store, err := db.Open(cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	sessions, err := auth.NewPGSessionStore(cfg.DatabaseURL, cfg.SessionKey)
	if err != nil {
		return err
	}
	defer sessions.Close()
	cleanupQuit, cleanupDone := sessions.Cleanup(time.Hour)
	defer sessions.StopCleanup(cleanupQuit, cleanupDone)

	h := handlers.New(handlers.Options{
		Store:               store,
		Auth:                auth.New(cfg.JWTSecret, sessions, logger),
		Logger:              logger,
		Google:              cfg.GoogleOAuth(),
		FrontendURL:         cfg.FrontendURL,
		SubmitRatePerMinute: cfg.SubmitRatePerMinute,
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           c.Handler(h.Router()),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", cfg.HTTPAddr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
