package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/nikhilsahni7/FeedbackX/models"
	"gorm.io/gorm"
)

// Base gives every table a uuid primary key and timestamps.
type Base struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

type User struct {
	Base
	Email        string `gorm:"uniqueIndex;not null"`
	Name         string
	GoogleID     *string `gorm:"uniqueIndex"`
	Picture      string
	PasswordHash string
	Forms        []Form `gorm:"foreignKey:UserID"`
}

func (u *User) Model() models.User {
	return models.User{ID: u.ID, Name: u.Name, Email: u.Email}
}

type Form struct {
	Base
	UserID      string `gorm:"type:uuid;index;not null"`
	Title       string `gorm:"not null"`
	Description string
	IsPublic    bool
	Closed      bool
	Questions   []Question `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE"`
	Responses   []Response `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE"`
}

type Question struct {
	Base
	FormID       string `gorm:"type:uuid;index;not null"`
	QuestionText string `gorm:"not null"`
	QuestionType string `gorm:"not null"`
	IsRequired   bool
	OrderIndex   int      `gorm:"not null"`
	Options      []Option `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
}

type Option struct {
	Base
	QuestionID string `gorm:"type:uuid;index;not null"`
	OptionText string `gorm:"not null"`
	OrderIndex int    `gorm:"not null"`
}

type Response struct {
	Base
	FormID    string   `gorm:"type:uuid;index;not null"`
	Answers   []Answer `gorm:"foreignKey:ResponseID;constraint:OnDelete:CASCADE"`
	IP        string
	UserAgent string
}

type Answer struct {
	Base
	ResponseID string `gorm:"type:uuid;index;not null"`
	QuestionID string `gorm:"type:uuid;index;not null"`
	AnswerText *string
	OptionID   *string `gorm:"type:uuid"`
	// OptionText is the label of the chosen option at submission time, so
	// responses survive later edits of the form.
	OptionText *string
}

func (f *Form) Model() models.Form {
	out := models.Form{
		ID:          f.ID,
		UserID:      f.UserID,
		Title:       f.Title,
		Description: f.Description,
		IsPublic:    f.IsPublic,
		Closed:      f.Closed,
		CreatedAt:   f.CreatedAt,
		Questions:   make([]models.Question, 0, len(f.Questions)),
	}
	for _, q := range f.Questions {
		mq := models.Question{
			ID:           q.ID,
			FormID:       q.FormID,
			QuestionText: q.QuestionText,
			QuestionType: models.NormalizeQuestionType(q.QuestionType),
			IsRequired:   q.IsRequired,
			OrderIndex:   q.OrderIndex,
			Options:      make([]models.Option, 0, len(q.Options)),
			CreatedAt:    q.CreatedAt,
			UpdatedAt:    q.UpdatedAt,
		}
		for _, o := range q.Options {
			mq.Options = append(mq.Options, models.Option{ID: o.ID, OptionText: o.OptionText, OrderIndex: o.OrderIndex})
		}
		out.Questions = append(out.Questions, mq)
	}
	return out
}

func (r *Response) Model() models.Response {
	out := models.Response{ID: r.ID, CreatedAt: r.CreatedAt, Answers: make([]models.AnswerEntry, 0, len(r.Answers))}
	for _, a := range r.Answers {
		out.Answers = append(out.Answers, models.AnswerEntry{
			QuestionID: a.QuestionID,
			AnswerText: a.AnswerText,
			OptionID:   a.OptionID,
			OptionText: a.OptionText,
		})
	}
	return out
}

func questionsFromDefinition(def models.FormDefinition) []Question {
	qs := make([]Question, 0, len(def.Questions))
	for i, qd := range def.Questions {
		q := Question{
			QuestionText: qd.QuestionText,
			QuestionType: string(qd.QuestionType),
			IsRequired:   qd.IsRequired,
			OrderIndex:   i,
		}
		for j, od := range qd.Options {
			q.Options = append(q.Options, Option{OptionText: od.OptionText, OrderIndex: j})
		}
		qs = append(qs, q)
	}
	return qs
}
