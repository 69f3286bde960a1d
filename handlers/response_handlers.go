package handlers

import (
	"errors"
	"html"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/nikhilsahni7/FeedbackX/answers"
	"github.com/nikhilsahni7/FeedbackX/models"
	"github.com/nikhilsahni7/FeedbackX/payload"
	"github.com/nikhilsahni7/FeedbackX/validation"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

func (h *Handler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	form, ok := h.answerableForm(w, r)
	if !ok {
		return
	}
	var sub models.Submission
	if !decodeJSON(w, r, &sub) {
		return
	}
	if sub.FormID != "" && sub.FormID != form.ID {
		writeError(w, http.StatusBadRequest, "Submission does not match the form")
		return
	}

	state, err := answers.FromEntries(&form, h.sanitizeEntries(sub.Answers))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid answers")
		h.log.DebugContext(r.Context(), "rejected answers", "form", form.ID, "err", err)
		return
	}
	if err := validation.Validate(state); err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Message)
			return
		}
		h.serverError(w, r, err)
		return
	}

	entries := snapshotOptions(&form, payload.Build(state).Answers)
	resp, err := h.store.CreateResponse(r.Context(), form.ID, entries, clientIP(r), r.UserAgent())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.log.InfoContext(r.Context(), "response submitted", "form", form.ID, "response", resp.ID, "answers", len(entries))
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Response submitted", "id": resp.ID})
}

// sanitizeEntries strips markup from free text before the answers are
// validated, so the stored text is the text that passed validation.
func (h *Handler) sanitizeEntries(entries []models.AnswerEntry) []models.AnswerEntry {
	out := make([]models.AnswerEntry, 0, len(entries))
	for _, e := range entries {
		if e.AnswerText != nil {
			text := strings.TrimSpace(html.UnescapeString(h.sanitizer.Sanitize(*e.AnswerText)))
			e.AnswerText = &text
		}
		out = append(out, e)
	}
	return out
}

// snapshotOptions records the label of every chosen option.
func snapshotOptions(form *models.Form, entries []models.AnswerEntry) []models.AnswerEntry {
	out := make([]models.AnswerEntry, 0, len(entries))
	for _, e := range entries {
		if q, ok := form.Question(e.QuestionID); ok && e.OptionID != nil {
			if o, ok := q.Option(*e.OptionID); ok {
				label := o.OptionText
				e.OptionText = &label
			}
		}
		out = append(out, e)
	}
	return out
}

// pageParams reads page and limit, falling back to the defaults on missing
// or invalid values. Pages past the addressable range are clamped.
func pageParams(r *http.Request) (page, limit int) {
	page, limit = 1, defaultPageLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = min(v, maxPageLimit)
	}
	// Keeps (page-1)*limit from overflowing.
	page = min(page, math.MaxInt/limit)
	return page, limit
}

func (h *Handler) ListResponses(w http.ResponseWriter, r *http.Request) {
	form, ok := h.ownedForm(w, r)
	if !ok {
		return
	}
	page, limit := pageParams(r)
	rows, total, err := h.store.Responses(r.Context(), form.ID, (page-1)*limit, limit)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"responses": rows,
		"pagination": models.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: int((total + int64(limit) - 1) / int64(limit)),
			Count:      len(rows),
		},
	})
}
