package models

import "time"

// Form is a persisted form definition as served by the backing store.
type Form struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id,omitempty"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	IsPublic      bool       `json:"is_public"`
	Closed        bool       `json:"closed"`
	CreatedAt     time.Time  `json:"created_at"`
	ResponseCount int64      `json:"response_count,omitempty"`
	Questions     []Question `json:"questions"`
}

// Question finds a question by id.
func (f *Form) Question(id string) (*Question, bool) {
	for i := range f.Questions {
		if f.Questions[i].ID == id {
			return &f.Questions[i], true
		}
	}
	return nil, false
}

// Question is one prompt within a form. OrderIndex is its zero-based position.
type Question struct {
	ID           string       `json:"id"`
	FormID       string       `json:"form_id"`
	QuestionText string       `json:"question_text"`
	QuestionType QuestionType `json:"question_type"`
	IsRequired   bool         `json:"is_required"`
	OrderIndex   int          `json:"order_index"`
	Options      []Option     `json:"options"`
	CreatedAt    time.Time    `json:"created_at,omitempty"`
	UpdatedAt    time.Time    `json:"updated_at,omitempty"`
}

// CellKind is the answer shape collected for q.
func (q *Question) CellKind() CellKind {
	return CellKindFor(q.QuestionType, len(q.Options))
}

// Option finds an option of q by id.
func (q *Question) Option(id string) (*Option, bool) {
	for i := range q.Options {
		if q.Options[i].ID == id {
			return &q.Options[i], true
		}
	}
	return nil, false
}

// Option is one selectable choice of a question.
type Option struct {
	ID         string `json:"id"`
	OptionText string `json:"option_text"`
	OrderIndex int    `json:"order_index"`
}

// FormSummary is a row of the owner's form list.
type FormSummary struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	CreatedAt     time.Time `json:"created_at"`
	ResponseCount int64     `json:"response_count"`
	Closed        bool      `json:"closed"`
	IsPublic      bool      `json:"is_public"`
}

// User is the public view of an account.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
