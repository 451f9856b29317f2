package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notehub/internal/apperr"
	"github.com/starford/notehub/internal/checksum"
	"github.com/starford/notehub/internal/models"
	"github.com/starford/notehub/internal/noteservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc}
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List notes with pagination and substring search
//	@Tags			notes
//	@Produce		json
//	@Param			page	query		int		false	"Page number (1-based)"
//	@Param			perPage	query		int		false	"Page size (1-100)"
//	@Param			search	query		string	false	"Substring matched against title and content"
//	@Param			tag		query		string	false	"Filter by tag"	Enums(Todo, Work, Personal, Meeting, Shopping)
//	@Success		200		{object}	NoteListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := intParam(q.Get("page"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "page must be an integer")
		return
	}
	perPage, err := intParam(q.Get("perPage"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "perPage must be an integer")
		return
	}

	result, err := h.svc.List(r.Context(), noteservice.ListQuery{
		Page:    page,
		PerPage: perPage,
		Search:  q.Get("search"),
		Tag:     models.Tag(q.Get("tag")),
	})
	if err != nil {
		h.fail(w, "list notes failed", "", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetNote handles GET /api/notes/{id}.
//
//	@Summary		Get a single note by id
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		string	true	"Note id"
//	@Success		200	{object}	NoteResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	note, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "get note failed", id, err)
		return
	}
	w.Header().Set("ETag", `"`+checksum.Note(note)+`"`)
	writeJSON(w, http.StatusOK, note)
}

// CreateNote handles POST /api/notes.
//
//	@Summary		Create a new note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateNoteRequest	true	"Note to create"
//	@Success		201		{object}	NoteResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	note, err := h.svc.Create(r.Context(), req.draft())
	if err != nil {
		h.fail(w, "create note failed", "", err)
		return
	}
	w.Header().Set("ETag", `"`+checksum.Note(note)+`"`)
	writeJSON(w, http.StatusCreated, note)
}

// UpdateNote handles PATCH /api/notes/{id}.
//
//	@Summary		Update a note with optimistic concurrency
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string				true	"Note id"
//	@Param			If-Match	header		string				false	"ETag for optimistic concurrency"
//	@Param			body		body		UpdateNoteRequest	true	"Updated note"
//	@Success		200			{object}	NoteResponse
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [patch]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	note, err := h.svc.Update(r.Context(), id, req.draft(), ifMatch)
	if err != nil {
		h.fail(w, "update note failed", id, err)
		return
	}
	w.Header().Set("ETag", `"`+checksum.Note(note)+`"`)
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /api/notes/{id}.
//
//	@Summary		Delete a note
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		string	true	"Note id"
//	@Success		200	{object}	NoteResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	note, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		h.fail(w, "delete note failed", id, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// fail maps service errors onto HTTP responses.
func (h *Handler) fail(w http.ResponseWriter, msg, id string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, apperr.ErrConflict):
		writeError(w, http.StatusConflict, "etag mismatch")
	case errors.Is(err, apperr.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error(msg, slog.String("id", id), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
