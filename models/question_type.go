package models

import (
	"fmt"
	"strings"
)

// QuestionType is the closed set of question kinds a form can carry.
type QuestionType string

const (
	QuestionTypeText     QuestionType = "text"
	QuestionTypeEmail    QuestionType = "email"
	QuestionTypeNumber   QuestionType = "number"
	QuestionTypeURL      QuestionType = "url"
	QuestionTypeDate     QuestionType = "date"
	QuestionTypeCheckbox QuestionType = "checkbox"
	QuestionTypeRadio    QuestionType = "radio"
)

// QuestionTypes lists every supported type in menu order.
var QuestionTypes = []QuestionType{
	QuestionTypeText,
	QuestionTypeEmail,
	QuestionTypeNumber,
	QuestionTypeURL,
	QuestionTypeDate,
	QuestionTypeCheckbox,
	QuestionTypeRadio,
}

// ParseQuestionType returns the QuestionType named by s. Matching is case
// insensitive; unknown names are an error.
func ParseQuestionType(s string) (QuestionType, error) {
	t := QuestionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown question type %q", s)
	}
	return t, nil
}

// NormalizeQuestionType is ParseQuestionType for data coming back from the
// store: anything unrecognised is treated as free text.
func NormalizeQuestionType(s string) QuestionType {
	t, err := ParseQuestionType(s)
	if err != nil {
		return QuestionTypeText
	}
	return t
}

// Valid reports whether t is one of the known question types.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeText, QuestionTypeEmail, QuestionTypeNumber, QuestionTypeURL, QuestionTypeDate,
		QuestionTypeCheckbox, QuestionTypeRadio:
		return true
	}
	return false
}

// Scalar reports whether answers to t are a single line of text.
func (t QuestionType) Scalar() bool {
	switch t {
	case QuestionTypeText, QuestionTypeEmail, QuestionTypeNumber, QuestionTypeURL, QuestionTypeDate:
		return true
	case QuestionTypeCheckbox, QuestionTypeRadio:
		return false
	}
	return false
}

// CarriesOptions reports whether a form author attaches options to t.
func (t QuestionType) CarriesOptions() bool {
	return t == QuestionTypeCheckbox
}

func (t QuestionType) String() string { return string(t) }

// CellKind is the shape of the answer collected for a question.
type CellKind int

const (
	// CellScalar holds free text.
	CellScalar CellKind = iota
	// CellChoice holds at most one selected option id.
	CellChoice
	// CellToggle holds a single boolean.
	CellToggle
)

func (k CellKind) String() string {
	switch k {
	case CellScalar:
		return "scalar"
	case CellChoice:
		return "choice"
	case CellToggle:
		return "toggle"
	}
	return fmt.Sprintf("CellKind(%d)", int(k))
}

// CellKindFor maps a question type and its option count to the answer shape.
// Checkbox questions with options behave as single-select.
func CellKindFor(t QuestionType, optionCount int) CellKind {
	switch t {
	case QuestionTypeText, QuestionTypeEmail, QuestionTypeNumber, QuestionTypeURL, QuestionTypeDate:
		return CellScalar
	case QuestionTypeRadio:
		return CellChoice
	case QuestionTypeCheckbox:
		if optionCount > 0 {
			return CellChoice
		}
		return CellToggle
	}
	return CellScalar
}
