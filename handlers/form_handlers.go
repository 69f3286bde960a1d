package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/nikhilsahni7/FeedbackX/auth"
	"github.com/nikhilsahni7/FeedbackX/builder"
	"github.com/nikhilsahni7/FeedbackX/db"
	"github.com/nikhilsahni7/FeedbackX/models"
)

// canonicalDefinition runs a request body through the form builder so the
// store only ever sees definitions an author could have built.
func canonicalDefinition(def models.FormDefinition) (models.FormDefinition, error) {
	d, err := builder.FromDefinition(def)
	if err != nil {
		return models.FormDefinition{}, err
	}
	return d.ToSubmissionPayload()
}

func (h *Handler) readDefinition(w http.ResponseWriter, r *http.Request) (models.FormDefinition, bool) {
	var in models.FormDefinition
	if !decodeJSON(w, r, &in) {
		return models.FormDefinition{}, false
	}
	def, err := canonicalDefinition(in)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Message)
			return models.FormDefinition{}, false
		}
		h.serverError(w, r, err)
		return models.FormDefinition{}, false
	}
	return def, true
}

// ownedForm loads the {id} form of the route and checks that the caller owns
// it. Forms of other owners are reported as missing.
func (h *Handler) ownedForm(w http.ResponseWriter, r *http.Request) (models.Form, bool) {
	uid, _ := auth.UserID(r.Context())
	form, err := h.store.Form(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, db.ErrNotFound) || (err == nil && form.UserID != uid) {
		writeError(w, http.StatusNotFound, models.MessageFormNotFound)
		return models.Form{}, false
	}
	if err != nil {
		h.serverError(w, r, err)
		return models.Form{}, false
	}
	return form, true
}

// answerableForm loads the {id} form of the route for a respondent.
func (h *Handler) answerableForm(w http.ResponseWriter, r *http.Request) (models.Form, bool) {
	uid, _ := auth.UserID(r.Context())
	form, err := h.store.Form(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, db.ErrNotFound) || (err == nil && !form.IsPublic && form.UserID != uid) {
		writeError(w, http.StatusNotFound, models.MessageFormNotFound)
		return models.Form{}, false
	}
	if err != nil {
		h.serverError(w, r, err)
		return models.Form{}, false
	}
	if form.Closed {
		writeError(w, http.StatusForbidden, models.MessageFormClosed)
		return models.Form{}, false
	}
	return form, true
}

func (h *Handler) ListForms(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserID(r.Context())
	if id := r.URL.Query().Get("id"); id != "" && id != uid {
		writeError(w, http.StatusForbidden, "Forbidden")
		return
	}
	forms, err := h.store.FormsByOwner(r.Context(), uid)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"forms": forms})
}

func (h *Handler) CreateForm(w http.ResponseWriter, r *http.Request) {
	def, ok := h.readDefinition(w, r)
	if !ok {
		return
	}
	uid, _ := auth.UserID(r.Context())
	form, err := h.store.CreateForm(r.Context(), uid, def)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.log.InfoContext(r.Context(), "form created", "form", form.ID, "questions", len(form.Questions))
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Form created", "form": form})
}

func (h *Handler) FormDetail(w http.ResponseWriter, r *http.Request) {
	form, ok := h.ownedForm(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"form": form})
}

func (h *Handler) PublicForm(w http.ResponseWriter, r *http.Request) {
	form, ok := h.answerableForm(w, r)
	if !ok {
		return
	}
	form.UserID = ""
	writeJSON(w, http.StatusOK, map[string]any{"form": form})
}

func (h *Handler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	current, ok := h.ownedForm(w, r)
	if !ok {
		return
	}
	def, ok := h.readDefinition(w, r)
	if !ok {
		return
	}
	form, err := h.store.UpdateForm(r.Context(), current.ID, def)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, models.MessageFormNotFound)
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Form updated", "form": form})
}

func (h *Handler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	form, ok := h.ownedForm(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteForm(r.Context(), form.ID); err != nil && !errors.Is(err, db.ErrNotFound) {
		h.serverError(w, r, err)
		return
	}
	h.log.InfoContext(r.Context(), "form deleted", "form", form.ID)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Form deleted"})
}
