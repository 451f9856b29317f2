// Package noteservice implements the notes API behaviour on top of the store.
package noteservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/notehub/internal/apperr"
	"github.com/starford/notehub/internal/checksum"
	"github.com/starford/notehub/internal/models"
	"github.com/starford/notehub/internal/store"
)

// Page size bounds accepted by List.
const (
	DefaultPerPage = 12
	MaxPerPage     = 100
)

// Change kinds passed to a Publisher.
const (
	KindCreated = "created"
	KindUpdated = "updated"
	KindDeleted = "deleted"
)

// Publisher receives a notification after every successful mutation.
// *sse.Broker satisfies it.
type Publisher interface {
	PublishNoteEvent(kind, id string)
}

// ListQuery is the service-level form of a page request.
type ListQuery struct {
	Page    int
	PerPage int
	Search  string
	Tag     models.Tag
}

// Service coordinates validation, persistence and change publication.
type Service struct {
	store store.NoteStore
	pub   Publisher
	now   func() time.Time
}

// NewService creates a new note service. pub may be nil.
func NewService(st store.NoteStore, pub Publisher) *Service {
	return &Service{store: st, pub: pub, now: time.Now}
}

// List returns one page of notes and the total number of pages for the query.
func (s *Service) List(ctx context.Context, q ListQuery) (*models.PageResult, error) {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PerPage == 0 {
		q.PerPage = DefaultPerPage
	}
	if q.Page < 1 {
		return nil, fmt.Errorf("%w: page must be at least 1", apperr.ErrInvalid)
	}
	if q.PerPage < 1 || q.PerPage > MaxPerPage {
		return nil, fmt.Errorf("%w: perPage must be between 1 and %d", apperr.ErrInvalid, MaxPerPage)
	}
	if q.Tag != "" && !q.Tag.Valid() {
		return nil, fmt.Errorf("%w: unknown tag %q", apperr.ErrInvalid, q.Tag)
	}

	notes, total, err := s.store.List(ctx, store.ListParams{
		Search: q.Search,
		Tag:    q.Tag,
		Limit:  q.PerPage,
		Offset: (q.Page - 1) * q.PerPage,
	})
	if err != nil {
		return nil, err
	}
	return &models.PageResult{
		Notes:      notes,
		TotalPages: models.TotalPages(total, q.PerPage),
	}, nil
}

// Get returns a single note.
func (s *Service) Get(ctx context.Context, id string) (*models.Note, error) {
	return s.store.Get(ctx, id)
}

// Create validates the draft and stores it as a new note.
func (s *Service) Create(ctx context.Context, d models.NoteDraft) (*models.Note, error) {
	d = normalize(d)
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
	}
	now := s.now().UTC()
	n := &models.Note{
		ID:        uuid.NewString(),
		Title:     d.Title,
		Content:   d.Content,
		Tag:       d.Tag,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Insert(ctx, n); err != nil {
		return nil, err
	}
	s.publish(KindCreated, n.ID)
	return n, nil
}

// Update replaces the note's fields with the draft. When ifMatch is non-empty
// it must equal the current entity tag of the note.
func (s *Service) Update(ctx context.Context, id string, d models.NoteDraft, ifMatch string) (*models.Note, error) {
	d = normalize(d)
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
	}
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Note(existing) {
		return nil, apperr.ErrConflict
	}
	existing.Title = d.Title
	existing.Content = d.Content
	existing.Tag = d.Tag
	existing.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, existing); err != nil {
		return nil, err
	}
	s.publish(KindUpdated, id)
	return existing, nil
}

// Delete removes a note and returns it as it was before deletion.
func (s *Service) Delete(ctx context.Context, id string) (*models.Note, error) {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.publish(KindDeleted, id)
	return existing, nil
}

func (s *Service) publish(kind, id string) {
	if s.pub != nil {
		s.pub.PublishNoteEvent(kind, id)
	}
}

func normalize(d models.NoteDraft) models.NoteDraft {
	d.Title = strings.TrimSpace(d.Title)
	d.Content = strings.TrimSpace(d.Content)
	return d
}
