// Package cli implements formctl, the command line front end of the form
// store: authoring from YAML files, filling forms interactively and
// browsing responses.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/nikhilsahni7/FeedbackX/client"
	"github.com/nikhilsahni7/FeedbackX/config"
	"github.com/nikhilsahni7/FeedbackX/models"
	"github.com/nikhilsahni7/FeedbackX/session"
	"github.com/spf13/cobra"
)

// App carries what every command needs.
type App struct {
	Config     config.Client
	Out        io.Writer
	Prompt     Prompter
	Logger     *slog.Logger
	HTTPClient *http.Client
}

func (a *App) anonymous() (*client.Client, error) {
	hc := a.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return client.New(a.Config.ServerURL, client.WithHTTPClient(hc), client.WithLogger(a.Logger))
}

func (a *App) authenticated() (*client.Client, error) {
	tok, err := readToken(a.Config.TokenFile)
	if err != nil {
		return nil, err
	}
	c, err := a.anonymous()
	if err != nil {
		return nil, err
	}
	return c.WithToken(tok)
}

// dashboard returns the signed in user's dashboard.
func (a *App) dashboard(ctx context.Context) (*session.Dashboard, *client.Client, error) {
	c, err := a.authenticated()
	if err != nil {
		return nil, nil, err
	}
	me, err := c.CurrentUser(ctx)
	if err != nil {
		if client.IsUnauthorized(err) {
			return nil, nil, fmt.Errorf("session expired: %w", ErrNotLoggedIn)
		}
		return nil, nil, err
	}
	return session.NewDashboard(c, me.ID), c, nil
}

// NewRootCommand builds the formctl command tree.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "formctl",
		Short:         "Create, fill and review feedback forms",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		loginCommand(app),
		registerCommand(app),
		logoutCommand(app),
		whoamiCommand(app),
		createCommand(app),
		editCommand(app),
		fillCommand(app),
		formsCommand(app),
		schemaCommand(app),
	)
	return root
}

func loginCommand(app *App) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if email == "" {
				var err error
				if email, err = app.Prompt.Input(ctx, InputConfig{Message: "Email"}); err != nil {
					return err
				}
			}
			password, err := app.Prompt.Password(ctx, InputConfig{Message: "Password"})
			if err != nil {
				return err
			}
			c, err := app.anonymous()
			if err != nil {
				return err
			}
			token, user, err := c.Login(ctx, email, password)
			if err != nil {
				return err
			}
			if err := saveToken(app.Config.TokenFile, token); err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Signed in as %s <%s>\n", user.Name, user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

func registerCommand(app *App) *cobra.Command {
	var name, email string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var err error
			if name == "" {
				if name, err = app.Prompt.Input(ctx, InputConfig{Message: "Name"}); err != nil {
					return err
				}
			}
			if email == "" {
				if email, err = app.Prompt.Input(ctx, InputConfig{Message: "Email"}); err != nil {
					return err
				}
			}
			password, err := app.Prompt.Password(ctx, InputConfig{Message: "Password"})
			if err != nil {
				return err
			}
			c, err := app.anonymous()
			if err != nil {
				return err
			}
			token, user, err := c.Register(ctx, client.Credentials{Name: name, Email: email, Password: password})
			if err != nil {
				return err
			}
			if err := saveToken(app.Config.TokenFile, token); err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Registered %s <%s>\n", user.Name, user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

func logoutCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return removeToken(app.Config.TokenFile)
		},
	}
}

func whoamiCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.authenticated()
			if err != nil {
				return err
			}
			me, err := c.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "%s <%s> (%s)\n", me.Name, me.Email, me.ID)
			return nil
		},
	}
}

func createCommand(app *App) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a form from a YAML definition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDefinition(file)
			if err != nil {
				return err
			}
			c, err := app.authenticated()
			if err != nil {
				return err
			}
			a := session.NewAuthoring(c)
			a.Replace(d)
			form, err := a.Submit(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Created form %s (%s)\n", form.ID, form.Title)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML form definition")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func editCommand(app *App) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "edit FORM_ID",
		Short: "Replace a form with a YAML definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDefinition(file)
			if err != nil {
				return err
			}
			c, err := app.authenticated()
			if err != nil {
				return err
			}
			a, err := session.EditForm(cmd.Context(), c, args[0])
			if err != nil {
				return err
			}
			a.Replace(d)
			if !a.Dirty() {
				fmt.Fprintln(app.Out, "No changes")
				return nil
			}
			form, err := a.Submit(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Updated form %s (%s)\n", form.ID, form.Title)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML form definition")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func fillCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "fill FORM_ID",
		Short: "Answer a form interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := app.authenticated()
			if errors.Is(err, ErrNotLoggedIn) {
				c, err = app.anonymous()
			}
			if err != nil {
				return err
			}
			r := session.NewResponding(c, args[0])
			if err := r.Load(ctx); err != nil {
				switch {
				case r.FormNotFound:
					return errors.New("form not found")
				case r.FormStatus == session.FormStatusClosed:
					return errors.New("this form is closed and no longer accepts responses")
				}
				return err
			}
			defer r.Discard()
			if err := fillForm(ctx, app.Prompt, r, app.Out); err != nil {
				return err
			}
			fmt.Fprintln(app.Out, "Thanks, your response was submitted.")
			return nil
		},
	}
}

func formsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forms",
		Short: "Browse your forms and their responses",
	}
	cmd.AddCommand(formsListCommand(app), formsShowCommand(app), formsDeleteCommand(app),
		formsResponsesCommand(app), formsStatsCommand(app), formsExportCommand(app))
	return cmd
}

func formsListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your forms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := app.dashboard(cmd.Context())
			if err != nil {
				return err
			}
			if err := d.Refresh(cmd.Context()); err != nil {
				return err
			}
			tw := tabwriter.NewWriter(app.Out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tRESPONSES\tSTATUS\tCREATED")
			for _, f := range d.Forms {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", f.ID, f.Title, f.ResponseCount, formStatus(f.IsPublic, f.Closed), f.CreatedAt.Format(time.DateOnly))
			}
			return tw.Flush()
		},
	}
}

func formStatus(public, closed bool) string {
	switch {
	case closed:
		return "closed"
	case public:
		return "public"
	}
	return "private"
}

func formsShowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show FORM_ID",
		Short: "Print a form as a YAML definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.authenticated()
			if err != nil {
				return err
			}
			f, err := c.FormDetail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out, err := definitionYAML(f)
			if err != nil {
				return err
			}
			_, err = app.Out.Write(out)
			return err
		},
	}
}

func formsDeleteCommand(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete FORM_ID",
		Short: "Delete a form and all its responses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !yes {
				ok, err := app.Prompt.Confirm(ctx, ConfirmConfig{Message: fmt.Sprintf("Delete form %s and all its responses?", args[0])})
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
			}
			d, _, err := app.dashboard(ctx)
			if err != nil {
				return err
			}
			if err := d.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Deleted form %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func formsResponsesCommand(app *App) *cobra.Command {
	var page, limit int
	cmd := &cobra.Command{
		Use:   "responses FORM_ID",
		Short: "List the responses to a form, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := app.dashboard(cmd.Context())
			if err != nil {
				return err
			}
			if err := d.Open(cmd.Context(), args[0], page, limit); err != nil {
				return err
			}
			printResponses(app.Out, d.Opened, d.Responses)
			pg := d.Pagination
			fmt.Fprintf(app.Out, "Page %d of %d (%d responses)\n", pg.Page, max(pg.TotalPages, 1), pg.Total)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", 20, "responses per page")
	return cmd
}

func printResponses(w io.Writer, form *models.Form, responses []models.Response) {
	for _, resp := range responses {
		fmt.Fprintf(w, "%s  %s\n", resp.ID, resp.CreatedAt.Local().Format(time.DateTime))
		for _, a := range resp.Answers {
			label := a.QuestionID
			if q, ok := form.Question(a.QuestionID); ok {
				label = q.QuestionText
			}
			fmt.Fprintf(w, "  %s: %s\n", label, answerValue(form, a))
		}
	}
}

func answerValue(form *models.Form, a models.AnswerEntry) string {
	switch {
	case a.AnswerText != nil:
		return *a.AnswerText
	case a.OptionText != nil:
		return *a.OptionText
	case a.OptionID != nil:
		if q, ok := form.Question(a.QuestionID); ok {
			if o, ok := q.Option(*a.OptionID); ok {
				return o.OptionText
			}
		}
		return *a.OptionID
	}
	return ""
}

func formsStatsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats FORM_ID",
		Short: "Summarise the answers to each question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.authenticated()
			if err != nil {
				return err
			}
			stats, err := c.Stats(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "%d responses\n", stats.TotalResponses)
			for _, q := range stats.Questions {
				fmt.Fprintf(app.Out, "\n%s (%s, %d answered)\n", q.QuestionText, q.QuestionType, q.Answered)
				for _, lc := range sortedCounts(q.OptionCounts, q.OptionLabels) {
					fmt.Fprintf(app.Out, "  %-30s %d\n", lc.Label, lc.Count)
				}
				if q.ToggleCounts != nil {
					fmt.Fprintf(app.Out, "  checked %d, unchecked %d\n", q.ToggleCounts["true"], q.ToggleCounts["false"])
				}
				for _, t := range q.TextAnswers {
					fmt.Fprintf(app.Out, "  - %s\n", t)
				}
			}
			return nil
		},
	}
}

type labelCount struct {
	Label string
	Count int
}

// sortedCounts labels option counts and orders them by count, then label.
func sortedCounts(counts map[string]int, labels map[string]string) []labelCount {
	out := make([]labelCount, 0, len(counts))
	for id, n := range counts {
		label, ok := labels[id]
		if !ok {
			label = id
		}
		out = append(out, labelCount{label, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func formsExportCommand(app *App) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export FORM_ID",
		Short: "Download the responses as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.authenticated()
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				return c.ExportCSV(cmd.Context(), args[0], app.Out)
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := c.ExportCSV(cmd.Context(), args[0], f); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	return cmd
}

func schemaCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of form definition files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := definitionSchema()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(app.Out, string(out))
			return err
		},
	}
}
