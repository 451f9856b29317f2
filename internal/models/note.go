// Package models defines the domain types for notehub.
package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Tag classifies a note.
type Tag string

// Known note tags.
const (
	TagTodo     Tag = "Todo"
	TagWork     Tag = "Work"
	TagPersonal Tag = "Personal"
	TagMeeting  Tag = "Meeting"
	TagShopping Tag = "Shopping"
)

// Tags lists every known tag in display order.
var Tags = []Tag{TagTodo, TagWork, TagPersonal, TagMeeting, TagShopping}

// Valid reports whether t is one of the known tags.
func (t Tag) Valid() bool {
	for _, known := range Tags {
		if t == known {
			return true
		}
	}
	return false
}

// Draft limits.
const (
	TitleMinLen   = 3
	TitleMaxLen   = 50
	ContentMaxLen = 500
)

// Note is a single note as served by the notes API.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tag       Tag       `json:"tag"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NoteDraft is the payload of the note creation form.
type NoteDraft struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Tag     Tag    `json:"tag"`
}

// Validate checks the draft against the form rules.
func (d NoteDraft) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Title, validation.Required, validation.RuneLength(TitleMinLen, TitleMaxLen)),
		validation.Field(&d.Content, validation.RuneLength(0, ContentMaxLen)),
		validation.Field(&d.Tag, validation.Required, validation.In(tagValues()...)),
	)
}

func tagValues() []any {
	out := make([]any, len(Tags))
	for i, t := range Tags {
		out[i] = t
	}
	return out
}

// PageRequest asks the notes API for one page of notes.
type PageRequest struct {
	Page    int    `json:"page"`
	PerPage int    `json:"perPage"`
	Search  string `json:"search"`
}

// PageResult is one page of notes plus the number of pages available for
// the same search.
type PageResult struct {
	Notes      []Note `json:"notes"`
	TotalPages int    `json:"totalPages"`
}

// TotalPages returns the number of pages needed to hold total items.
func TotalPages(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// InboxFile describes a Markdown file waiting in the import inbox.
type InboxFile struct {
	Path     string    `json:"path"`
	Checksum string    `json:"checksum"`
	ModTime  time.Time `json:"mod_time"`
}
