package handlers

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nikhilsahni7/FeedbackX/client"
	"github.com/nikhilsahni7/FeedbackX/models"
	"github.com/nikhilsahni7/FeedbackX/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestClientRoundTrip drives the HTTP client and the authoring and
// responding sessions against the real router.
func TestClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 30)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	anon, err := client.New(srv.URL)
	require.NoError(t, err)
	token, user, err := anon.Register(ctx, client.Credentials{Name: "Ann", Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	_, _, err = anon.Login(ctx, "ann@example.com", "nope")
	assert.True(t, client.IsUnauthorized(err))

	c, err := anon.WithToken(token)
	require.NoError(t, err)
	me, err := c.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, user.ID, me.ID)

	author := session.NewAuthoring(c)
	d := author.Draft()
	d.SetTitle("Lunch poll")
	d.SetPublic(true)
	require.NoError(t, d.SetQuestionText(0, "Your name"))
	require.NoError(t, d.SetRequired(0, true))
	d.AddQuestion()
	require.NoError(t, d.SetQuestionText(1, "Pick one"))
	require.NoError(t, d.SetQuestionType(1, models.QuestionTypeCheckbox))
	require.NoError(t, d.SetOptionText(1, 0, "Pizza"))
	require.NoError(t, d.SetOptionText(1, 1, "Salad"))
	form, err := author.Submit(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, form.ID)

	forms, err := c.ListForms(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, forms, 1)

	resp := session.NewResponding(anon, form.ID)
	require.NoError(t, resp.Load(ctx))
	loaded, err := resp.Form()
	require.NoError(t, err)
	require.Len(t, loaded.Questions, 2)
	pick := loaded.Questions[1]
	require.NoError(t, resp.SetText(loaded.Questions[0].ID, "Ann"))
	require.NoError(t, resp.SelectOption(pick.ID, pick.Options[1].ID))
	_, err = resp.Submit(ctx)
	require.NoError(t, err)

	rows, pg, err := c.Responses(ctx, form.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pg.Total)
	require.Len(t, rows, 1)
	require.Len(t, rows[0].Answers, 2)
	assert.Equal(t, "Salad", *rows[0].Answers[1].OptionText)

	stats, err := c.Stats(ctx, form.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Questions[1].OptionCounts[pick.Options[1].ID])
	assert.Equal(t, "Salad", stats.Questions[1].OptionLabels[pick.Options[1].ID])

	var csv bytes.Buffer
	require.NoError(t, c.ExportCSV(ctx, form.ID, &csv))
	assert.True(t, strings.HasPrefix(csv.String(), "ResponseID,Timestamp,Your name,Pick one\n"))

	d.SetClosed(true)
	_, err = author.Submit(ctx)
	require.NoError(t, err)
	_, err = anon.PublicForm(ctx, form.ID)
	assert.ErrorIs(t, err, models.ErrFormClosed)

	require.NoError(t, c.DeleteForm(ctx, form.ID))
	_, err = anon.PublicForm(ctx, form.ID)
	assert.ErrorIs(t, err, models.ErrFormNotFound)
	_, err = c.FormDetail(ctx, form.ID)
	assert.ErrorIs(t, err, models.ErrFormNotFound)
}
