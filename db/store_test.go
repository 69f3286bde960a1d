package db

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/nikhilsahni7/FeedbackX/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestStore connects to TEST_DATABASE_URL and skips when it is unset.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	s, err := Open(dsn, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func createOwner(t *testing.T, s *Store) *User {
	t.Helper()
	u := &User{Name: "Owner", Email: uuid.NewString() + "@example.com", PasswordHash: "x"}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func pollDefinition(title string) models.FormDefinition {
	return models.FormDefinition{
		Title: title,
		Questions: []models.QuestionDefinition{
			{QuestionText: "Your name", QuestionType: models.QuestionTypeText, IsRequired: true},
			{QuestionText: "Lunch", QuestionType: models.QuestionTypeCheckbox, Options: []models.OptionDefinition{
				{OptionText: "Pizza"}, {OptionText: "Salad"}, {OptionText: "Soup"},
			}},
		},
	}
}

func TestMalformedIDIsNotFound(t *testing.T) {
	s := &Store{}
	ctx := context.Background()

	_, err := s.Form(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.UpdateForm(ctx, "abc", pollDefinition("x"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteForm(ctx, "1; drop table forms"), ErrNotFound)
	_, _, err = s.Responses(ctx, "", 0, 10)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.UserByID(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreUsers(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := createOwner(t, s)
	assert.NotEmpty(t, u.ID)

	dup := &User{Name: "Again", Email: u.Email}
	assert.ErrorIs(t, s.CreateUser(ctx, dup), ErrEmailTaken)

	got, err := s.UserByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.UserByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Form(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)

	gid := "g-" + uuid.NewString()
	g := &User{Name: "G", Email: uuid.NewString() + "@example.com", GoogleID: &gid}
	require.NoError(t, s.UpsertGoogleUser(ctx, g))
	again := &User{Name: "G renamed", Email: g.Email, GoogleID: &gid}
	require.NoError(t, s.UpsertGoogleUser(ctx, again))
	assert.Equal(t, g.ID, again.ID)
	assert.Equal(t, "G renamed", again.Name)
}

func TestStoreForms(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	owner := createOwner(t, s)

	f, err := s.CreateForm(ctx, owner.ID, pollDefinition("Lunch poll"))
	require.NoError(t, err)
	require.Len(t, f.Questions, 2)
	assert.Equal(t, owner.ID, f.UserID)
	opts := f.Questions[1].Options
	require.Len(t, opts, 3)
	assert.Equal(t, []string{"Pizza", "Salad", "Soup"}, []string{opts[0].OptionText, opts[1].OptionText, opts[2].OptionText})

	def := pollDefinition("Dinner poll")
	def.Closed = true
	def.Questions = def.Questions[1:]
	updated, err := s.UpdateForm(ctx, f.ID, def)
	require.NoError(t, err)
	assert.Equal(t, "Dinner poll", updated.Title)
	assert.True(t, updated.Closed)
	require.Len(t, updated.Questions, 1)
	assert.Equal(t, 0, updated.Questions[0].OrderIndex)

	_, err = s.UpdateForm(ctx, uuid.NewString(), def)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.CreateResponse(ctx, f.ID, []models.AnswerEntry{models.TextAnswer(updated.Questions[0].ID, "x")}, "203.0.113.7", "test")
	require.NoError(t, err)
	list, err := s.FormsByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].ResponseCount)

	require.NoError(t, s.DeleteForm(ctx, f.ID))
	_, err = s.Form(ctx, f.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteForm(ctx, f.ID), ErrNotFound)

	list, err = s.FormsByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)
}

func TestStoreResponses(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	owner := createOwner(t, s)
	f, err := s.CreateForm(ctx, owner.ID, pollDefinition("Lunch poll"))
	require.NoError(t, err)
	q := f.Questions[1]

	for _, o := range q.Options {
		e := models.OptionAnswer(q.ID, o.ID)
		e.OptionText = &o.OptionText
		_, err := s.CreateResponse(ctx, f.ID, []models.AnswerEntry{e}, "", "")
		require.NoError(t, err)
	}

	page, total, err := s.Responses(ctx, f.ID, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 2)

	rest, _, err := s.Responses(ctx, f.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)

	all, _, err := s.Responses(ctx, f.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	seen := map[string]bool{}
	for _, r := range all {
		require.Len(t, r.Answers, 1)
		require.NotNil(t, r.Answers[0].OptionText)
		seen[*r.Answers[0].OptionText] = true
	}
	assert.Equal(t, map[string]bool{"Pizza": true, "Salad": true, "Soup": true}, seen)
}
