package models

import "time"

// FormDefinition is the body of a create or update form request.
type FormDefinition struct {
	Title       string               `json:"title" yaml:"title" jsonschema:"required,minLength=1"`
	Description string               `json:"description" yaml:"description,omitempty"`
	IsPublic    bool                 `json:"is_public" yaml:"is_public,omitempty"`
	Closed      bool                 `json:"closed" yaml:"closed,omitempty"`
	Questions   []QuestionDefinition `json:"questions" yaml:"questions" jsonschema:"required,minItems=1"`
}

// QuestionDefinition is a question inside a FormDefinition.
type QuestionDefinition struct {
	QuestionText string             `json:"question_text" yaml:"question_text" jsonschema:"required,minLength=2"`
	QuestionType QuestionType       `json:"question_type" yaml:"question_type" jsonschema:"required,enum=text,enum=email,enum=number,enum=url,enum=date,enum=checkbox,enum=radio"`
	IsRequired   bool               `json:"is_required" yaml:"is_required,omitempty"`
	OrderIndex   int                `json:"order_index" yaml:"order_index,omitempty"`
	Options      []OptionDefinition `json:"options,omitempty" yaml:"options,omitempty"`
}

// OptionDefinition is an option inside a QuestionDefinition.
type OptionDefinition struct {
	OptionText string `json:"option_text" yaml:"option_text" jsonschema:"required,minLength=1"`
	OrderIndex int    `json:"order_index" yaml:"order_index,omitempty"`
}

// AnswerEntry is one answered question in a response. Exactly one of
// AnswerText or OptionID is set on submission; OptionText is filled in by the
// store when responses are read back.
type AnswerEntry struct {
	QuestionID string  `json:"question_id"`
	AnswerText *string `json:"answer_text,omitempty"`
	OptionID   *string `json:"option_id,omitempty"`
	OptionText *string `json:"option_text,omitempty"`
}

// TextAnswer builds an entry carrying free text.
func TextAnswer(questionID, text string) AnswerEntry {
	return AnswerEntry{QuestionID: questionID, AnswerText: &text}
}

// OptionAnswer builds an entry carrying a selected option.
func OptionAnswer(questionID, optionID string) AnswerEntry {
	return AnswerEntry{QuestionID: questionID, OptionID: &optionID}
}

// Submission is the envelope sent when a respondent submits a form.
type Submission struct {
	FormID  string        `json:"form_id"`
	Answers []AnswerEntry `json:"answers"`
}

// Response is a stored submission.
type Response struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	Answers   []AnswerEntry `json:"answers"`
}

// Pagination describes a page of responses.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	Count      int   `json:"count"`
}

// QuestionStats aggregates the answers given to one question. OptionCounts
// and OptionLabels are keyed by option id.
type QuestionStats struct {
	QuestionID   string            `json:"question_id"`
	QuestionText string            `json:"question_text"`
	QuestionType QuestionType      `json:"question_type"`
	Answered     int               `json:"answered"`
	OptionCounts map[string]int    `json:"option_counts,omitempty"`
	OptionLabels map[string]string `json:"option_labels,omitempty"`
	TextAnswers  []string          `json:"text_answers,omitempty"`
	ToggleCounts map[string]int    `json:"toggle_counts,omitempty"`
}

// FormStats aggregates all responses to a form.
type FormStats struct {
	FormID         string          `json:"form_id"`
	TotalResponses int             `json:"total_responses"`
	Questions      []QuestionStats `json:"questions"`
}
