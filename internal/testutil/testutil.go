// Package testutil provides shared test helpers for setting up databases
// and inbox directories.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/starford/notehub/internal/models"
	"github.com/starford/notehub/internal/storage"
	"github.com/starford/notehub/internal/store"
)

// TestDB opens a fresh SQLite database in the test's temp directory.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "notehub.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestInbox creates an empty inbox directory and its storage.Provider.
func TestInbox(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	fs, err := storage.NewFS(dir)
	if err != nil {
		t.Fatalf("open test inbox: %v", err)
	}
	return dir, fs
}

// Seeder is the part of the note service seeding needs.
type Seeder interface {
	Create(ctx context.Context, d models.NoteDraft) (*models.Note, error)
}

// Seed creates one note per title with the given tag and fails the test on
// the first error.
func Seed(t *testing.T, svc Seeder, tag models.Tag, titles ...string) []*models.Note {
	t.Helper()
	notes := make([]*models.Note, 0, len(titles))
	for _, title := range titles {
		n, err := svc.Create(context.Background(), models.NoteDraft{
			Title:   title,
			Content: "about " + title,
			Tag:     tag,
		})
		if err != nil {
			t.Fatalf("seed %q: %v", title, err)
		}
		notes = append(notes, n)
	}
	return notes
}
