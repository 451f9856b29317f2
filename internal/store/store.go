package store

import (
	"context"

	"github.com/starford/notehub/internal/models"
)

// ListParams selects one window of notes.
type ListParams struct {
	Search string
	Tag    models.Tag
	Limit  int
	Offset int
}

// NoteStore defines the persistence operations the note service relies on.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with fakes.
type NoteStore interface {
	Insert(ctx context.Context, n *models.Note) error
	Update(ctx context.Context, n *models.Note) error
	Get(ctx context.Context, id string) (*models.Note, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, p ListParams) ([]models.Note, int, error)
	Close() error
}

// Verify *DB satisfies NoteStore at compile time.
var _ NoteStore = (*DB)(nil)
