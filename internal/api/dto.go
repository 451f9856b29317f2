package api

import (
	"github.com/starford/notehub/internal/models"
)

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Title   string     `json:"title" example:"Buy tea" validate:"required"`
	Content string     `json:"content" example:"Sencha and genmaicha"`
	Tag     models.Tag `json:"tag" example:"Shopping" validate:"required"`
}

// UpdateNoteRequest is the request body for updating a note.
type UpdateNoteRequest = CreateNoteRequest

func (r CreateNoteRequest) draft() models.NoteDraft {
	return models.NoteDraft{Title: r.Title, Content: r.Content, Tag: r.Tag}
}

// NoteListResponse is one page of notes (aliased from the domain layer).
type NoteListResponse = models.PageResult

// NoteResponse is a single note (aliased from the domain layer).
type NoteResponse = models.Note
