// Package validation checks a respondent's answers before they are
// submitted. Only required questions are checked, in form order, and the
// first failure is returned.
package validation

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nikhilsahni7/FeedbackX/answers"
	"github.com/nikhilsahni7/FeedbackX/models"
)

// DateLayout is the only accepted date format.
const DateLayout = "2006-01-02"

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Validate returns nil when every required question of the state's form is
// answered in a valid format, or a *models.ValidationError naming the first
// question that is not.
func Validate(state *answers.State) error {
	form := state.Form()
	for i := range form.Questions {
		q := &form.Questions[i]
		if !q.IsRequired {
			continue
		}
		cell, ok := state.Cell(q.ID)
		if !ok {
			return models.Invalid(i, q.ID, "Please answer: %s", q.QuestionText)
		}
		if msg := checkCell(q, cell); msg != "" {
			return models.Invalid(i, q.ID, "%s: %s", msg, q.QuestionText)
		}
	}
	return nil
}

func checkCell(q *models.Question, cell answers.Cell) string {
	switch c := cell.(type) {
	case *answers.TextCell:
		return checkText(q.QuestionType, strings.TrimSpace(c.Text))
	case *answers.ChoiceCell:
		if _, ok := c.Selected(); ok {
			return ""
		}
		if q.QuestionType == models.QuestionTypeCheckbox {
			return "Please select at least one option for"
		}
		return "Please select an option for"
	case *answers.ToggleCell:
		if !c.Checked {
			return "Please check"
		}
		return ""
	}
	panic(fmt.Sprintf("validation: unhandled cell %T", cell))
}

func checkText(t models.QuestionType, v string) string {
	if v == "" {
		return "Please answer"
	}
	switch t {
	case models.QuestionTypeText:
	case models.QuestionTypeEmail:
		if !IsEmail(v) {
			return "Enter a valid email for"
		}
	case models.QuestionTypeNumber:
		if !IsNumber(v) {
			return "Enter a valid number for"
		}
	case models.QuestionTypeURL:
		if !IsURL(v) {
			return "Enter a valid URL for"
		}
	case models.QuestionTypeDate:
		if !IsDate(v) {
			return "Enter a valid date (YYYY-MM-DD) for"
		}
	case models.QuestionTypeCheckbox, models.QuestionTypeRadio:
	}
	return ""
}

// IsEmail reports whether v has exactly one @, a non-empty local part and a
// dotted domain, with no whitespace.
func IsEmail(v string) bool {
	return emailPattern.MatchString(v)
}

// IsNumber reports whether v parses as a finite number.
func IsNumber(v string) bool {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return false
	}
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// IsURL reports whether v is an absolute URL with a scheme and either a host
// or an opaque part.
func IsURL(v string) bool {
	if strings.ContainsAny(v, " \t\n") {
		return false
	}
	u, err := url.Parse(v)
	if err != nil || !u.IsAbs() {
		return false
	}
	return u.Host != "" || u.Opaque != ""
}

// IsDate reports whether v is a real calendar date written YYYY-MM-DD.
func IsDate(v string) bool {
	if !datePattern.MatchString(v) {
		return false
	}
	_, err := time.Parse(DateLayout, v)
	return err == nil
}
