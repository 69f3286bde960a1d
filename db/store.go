package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/nikhilsahni7/FeedbackX/models"
	"gorm.io/gorm"
)

func orderByIndex(tx *gorm.DB) *gorm.DB { return tx.Order("order_index ASC") }

// validID reports whether id can name a row. Primary keys are uuid columns
// and Postgres rejects anything else with a syntax error.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (s *Store) withQuestions(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Questions", orderByIndex).
		Preload("Questions.Options", orderByIndex)
}

// CreateUser inserts u. A duplicate email returns ErrEmailTaken.
func (s *Store) CreateUser(ctx context.Context, u *User) error {
	err := s.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEmailTaken
	}
	return err
}

// UserByEmail looks an account up by email.
func (s *Store) UserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// UserByID looks an account up by id.
func (s *Store) UserByID(ctx context.Context, id string) (*User, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	var u User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// UpsertGoogleUser creates the account of a Google sign-in or refreshes its
// name and email. u is updated with the stored row.
func (s *Store) UpsertGoogleUser(ctx context.Context, u *User) error {
	var existing User
	err := s.db.WithContext(ctx).Where("google_id = ?", u.GoogleID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.CreateUser(ctx, u)
	}
	if err != nil {
		return err
	}
	existing.Name = u.Name
	existing.Email = u.Email
	existing.Picture = u.Picture
	if err := s.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return err
	}
	*u = existing
	return nil
}

// CreateForm stores a validated definition owned by ownerID.
func (s *Store) CreateForm(ctx context.Context, ownerID string, def models.FormDefinition) (models.Form, error) {
	f := Form{
		UserID:      ownerID,
		Title:       def.Title,
		Description: def.Description,
		IsPublic:    def.IsPublic,
		Closed:      def.Closed,
		Questions:   questionsFromDefinition(def),
	}
	if err := s.db.WithContext(ctx).Create(&f).Error; err != nil {
		return models.Form{}, err
	}
	return s.Form(ctx, f.ID)
}

// UpdateForm replaces the fields and the whole question list of a form.
func (s *Store) UpdateForm(ctx context.Context, id string, def models.FormDefinition) (models.Form, error) {
	if !validID(id) {
		return models.Form{}, ErrNotFound
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Form{}).Where("id = ?", id).Updates(map[string]any{
			"title":       def.Title,
			"description": def.Description,
			"is_public":   def.IsPublic,
			"closed":      def.Closed,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("form_id = ?", id).Delete(&Question{}).Error; err != nil {
			return err
		}
		qs := questionsFromDefinition(def)
		if len(qs) == 0 {
			return nil
		}
		for i := range qs {
			qs[i].FormID = id
		}
		return tx.Create(&qs).Error
	})
	if err != nil {
		return models.Form{}, translate(err)
	}
	return s.Form(ctx, id)
}

// DeleteForm removes a form; questions, options and responses cascade.
func (s *Store) DeleteForm(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	res := s.db.WithContext(ctx).Delete(&Form{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Form loads a form with its questions and options in order.
func (s *Store) Form(ctx context.Context, id string) (models.Form, error) {
	if !validID(id) {
		return models.Form{}, ErrNotFound
	}
	var f Form
	if err := s.withQuestions(ctx).First(&f, "id = ?", id).Error; err != nil {
		return models.Form{}, translate(err)
	}
	return f.Model(), nil
}

// FormsByOwner lists the forms of ownerID, newest first, with their response
// counts.
func (s *Store) FormsByOwner(ctx context.Context, ownerID string) ([]models.FormSummary, error) {
	var rows []models.FormSummary
	err := s.db.WithContext(ctx).
		Model(&Form{}).
		Select("forms.id, forms.title, forms.description, forms.created_at, forms.closed, forms.is_public, "+
			"(SELECT COUNT(*) FROM responses WHERE responses.form_id = forms.id) AS response_count").
		Where("forms.user_id = ?", ownerID).
		Order("forms.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.FormSummary{}
	}
	return rows, nil
}

// CreateResponse stores a submission. entries must already be validated
// against the form.
func (s *Store) CreateResponse(ctx context.Context, formID string, entries []models.AnswerEntry, ip, userAgent string) (models.Response, error) {
	r := Response{FormID: formID, IP: ip, UserAgent: userAgent}
	for _, e := range entries {
		r.Answers = append(r.Answers, Answer{
			QuestionID: e.QuestionID,
			AnswerText: e.AnswerText,
			OptionID:   e.OptionID,
			OptionText: e.OptionText,
		})
	}
	if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
		return models.Response{}, err
	}
	return r.Model(), nil
}

// Responses returns one page of a form's responses, newest first, and the
// total count.
func (s *Store) Responses(ctx context.Context, formID string, offset, limit int) ([]models.Response, int64, error) {
	if !validID(formID) {
		return nil, 0, ErrNotFound
	}
	var total int64
	if err := s.db.WithContext(ctx).Model(&Response{}).Where("form_id = ?", formID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	q := s.db.WithContext(ctx).Preload("Answers").Where("form_id = ?", formID).Order("created_at DESC")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	var rows []Response
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]models.Response, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].Model())
	}
	return out, total, nil
}
