// Command formctl authors, fills and reviews FeedbackX forms from the
// terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/nikhilsahni7/FeedbackX/cli"
	"github.com/nikhilsahni7/FeedbackX/config"
)

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, cli.ErrAborted) {
		fmt.Fprintf(os.Stderr, "formctl: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := config.LoadDotenv(); err != nil {
		return err
	}
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	app := &cli.App{
		Config: cfg,
		Out:    os.Stdout,
		Prompt: cli.SurveyPrompter{},
		Logger: config.NewLogger(os.Stderr, level),
	}
	return cli.NewRootCommand(app).ExecuteContext(ctx)
}
