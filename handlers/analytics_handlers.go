package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/nikhilsahni7/FeedbackX/models"
)

func (h *Handler) FormStats(w http.ResponseWriter, r *http.Request) {
	form, ok := h.ownedForm(w, r)
	if !ok {
		return
	}
	responses, _, err := h.store.Responses(r.Context(), form.ID, 0, 0)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stats": calculateStats(&form, responses)})
}

// calculateStats counts chosen options and toggles and collects free text
// answers per question. Option counts are keyed by option id; options
// removed since submission are labelled from the stored snapshot.
func calculateStats(form *models.Form, responses []models.Response) models.FormStats {
	stats := models.FormStats{
		FormID:         form.ID,
		TotalResponses: len(responses),
		Questions:      make([]models.QuestionStats, 0, len(form.Questions)),
	}
	index := make(map[string]int, len(form.Questions))
	for i, q := range form.Questions {
		qs := models.QuestionStats{QuestionID: q.ID, QuestionText: q.QuestionText, QuestionType: q.QuestionType}
		switch q.CellKind() {
		case models.CellChoice:
			qs.OptionCounts = make(map[string]int, len(q.Options))
			qs.OptionLabels = make(map[string]string, len(q.Options))
			for _, o := range q.Options {
				qs.OptionCounts[o.ID] = 0
				qs.OptionLabels[o.ID] = o.OptionText
			}
		case models.CellToggle:
			qs.ToggleCounts = map[string]int{"true": 0, "false": 0}
		case models.CellScalar:
			qs.TextAnswers = []string{}
		}
		index[q.ID] = i
		stats.Questions = append(stats.Questions, qs)
	}

	for _, resp := range responses {
		for _, a := range resp.Answers {
			i, ok := index[a.QuestionID]
			if !ok {
				continue
			}
			qs := &stats.Questions[i]
			switch {
			case qs.OptionCounts != nil && a.OptionID != nil:
				id := *a.OptionID
				qs.OptionCounts[id]++
				if _, ok := qs.OptionLabels[id]; !ok {
					qs.OptionLabels[id] = answerLabel(&form.Questions[i], a)
				}
			case qs.ToggleCounts != nil && a.AnswerText != nil:
				v, _ := strconv.ParseBool(*a.AnswerText)
				qs.ToggleCounts[strconv.FormatBool(v)]++
			case qs.TextAnswers != nil && a.AnswerText != nil:
				qs.TextAnswers = append(qs.TextAnswers, *a.AnswerText)
			default:
				continue
			}
			qs.Answered++
		}
	}
	return stats
}

// answerLabel renders an answer the way a reader sees it: free text as is,
// options by their current label or the label stored at submission.
func answerLabel(q *models.Question, a models.AnswerEntry) string {
	if a.AnswerText != nil {
		return *a.AnswerText
	}
	if a.OptionID == nil {
		return ""
	}
	if q != nil {
		if o, ok := q.Option(*a.OptionID); ok {
			return o.OptionText
		}
	}
	if a.OptionText != nil {
		return *a.OptionText
	}
	return *a.OptionID
}

func (h *Handler) ExportResponses(w http.ResponseWriter, r *http.Request) {
	form, ok := h.ownedForm(w, r)
	if !ok {
		return
	}
	responses, _, err := h.store.Responses(r.Context(), form.ID, 0, 0)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment;filename=form_%s.csv", form.ID))

	cw := csv.NewWriter(w)
	header := []string{"ResponseID", "Timestamp"}
	for _, q := range form.Questions {
		header = append(header, q.QuestionText)
	}
	if err := cw.Write(header); err != nil {
		h.log.WarnContext(r.Context(), "csv export aborted", "form", form.ID, "err", err)
		return
	}
	for _, resp := range responses {
		byQuestion := make(map[string]models.AnswerEntry, len(resp.Answers))
		for _, a := range resp.Answers {
			byQuestion[a.QuestionID] = a
		}
		row := []string{resp.ID, resp.CreatedAt.UTC().Format(time.RFC3339)}
		for i := range form.Questions {
			q := &form.Questions[i]
			a, ok := byQuestion[q.ID]
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, answerLabel(q, a))
		}
		if err := cw.Write(row); err != nil {
			h.log.WarnContext(r.Context(), "csv export aborted", "form", form.ID, "err", err)
			return
		}
	}
	cw.Flush()
}
