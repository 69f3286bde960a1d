package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nikhilsahni7/FeedbackX/answers"
	"github.com/nikhilsahni7/FeedbackX/models"
	"github.com/nikhilsahni7/FeedbackX/session"
	"github.com/nikhilsahni7/FeedbackX/validation"
)

const skipOption = "(skip)"

// fillForm walks a loaded form question by question and submits the
// answers. Questions rejected on submit are asked again.
func fillForm(ctx context.Context, p Prompter, r *session.Responding, out io.Writer) error {
	form, err := r.Form()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, form.Title)
	if form.Description != "" {
		fmt.Fprintln(out, form.Description)
	}
	for i := range form.Questions {
		if err := askQuestion(ctx, p, r, &form.Questions[i]); err != nil {
			return err
		}
	}
	for {
		_, err := r.Submit(ctx)
		var verr *models.ValidationError
		if !errors.As(err, &verr) || verr.Index < 0 || verr.Index >= len(form.Questions) {
			return err
		}
		fmt.Fprintln(out, verr.Message)
		if err := askQuestion(ctx, p, r, &form.Questions[verr.Index]); err != nil {
			return err
		}
	}
}

func questionLabel(q *models.Question) string {
	if q.IsRequired {
		return q.QuestionText + " *"
	}
	return q.QuestionText
}

func askQuestion(ctx context.Context, p Prompter, r *session.Responding, q *models.Question) error {
	state, err := r.Answers()
	if err != nil {
		return err
	}
	cell, _ := state.Cell(q.ID)

	switch c := cell.(type) {
	case *answers.TextCell:
		v, err := p.Input(ctx, InputConfig{
			Message:   questionLabel(q),
			Default:   c.Text,
			Validator: textValidator(q),
		})
		if err != nil {
			return err
		}
		return r.SetText(q.ID, v)

	case *answers.ChoiceCell:
		opts := make([]string, 0, len(q.Options)+1)
		for _, o := range q.Options {
			opts = append(opts, o.OptionText)
		}
		if !q.IsRequired {
			opts = append(opts, skipOption)
		}
		idx, err := p.Select(ctx, SelectConfig{Message: questionLabel(q), Options: opts, DefaultIndex: -1})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(q.Options) {
			if _, ok := c.Selected(); ok {
				return r.Clear(q.ID)
			}
			return nil
		}
		if cur, ok := c.Selected(); ok && cur == q.Options[idx].ID {
			return nil
		}
		return r.SelectOption(q.ID, q.Options[idx].ID)

	case *answers.ToggleCell:
		want, err := p.Confirm(ctx, ConfirmConfig{Message: questionLabel(q), Default: c.Checked})
		if err != nil {
			return err
		}
		if want != c.Checked {
			return r.Toggle(q.ID)
		}
		return nil
	}
	return fmt.Errorf("cli: question %q has no answer cell", q.ID)
}

// textValidator checks a typed answer before it is accepted so the user
// gets immediate feedback. Submission runs the full validation again.
func textValidator(q *models.Question) func(string) error {
	return func(v string) error {
		v = strings.TrimSpace(v)
		if v == "" {
			if q.IsRequired {
				return errors.New("this question is required")
			}
			return nil
		}
		ok := true
		switch q.QuestionType {
		case models.QuestionTypeEmail:
			ok = validation.IsEmail(v)
		case models.QuestionTypeNumber:
			ok = validation.IsNumber(v)
		case models.QuestionTypeURL:
			ok = validation.IsURL(v)
		case models.QuestionTypeDate:
			ok = validation.IsDate(v)
		}
		if !ok {
			return fmt.Errorf("not a valid %s", q.QuestionType)
		}
		return nil
	}
}
