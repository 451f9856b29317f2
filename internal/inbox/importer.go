// Package inbox imports Markdown files dropped into a directory as notes.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/starford/notehub/internal/apperr"
	"github.com/starford/notehub/internal/models"
	"github.com/starford/notehub/internal/parser"
	"github.com/starford/notehub/internal/storage"
)

// Subdirectories of the inbox that receive processed files.
const (
	ImportedDir = "imported"
	RejectedDir = "rejected"
)

// Creator stores a validated draft. *noteservice.Service satisfies it.
type Creator interface {
	Create(ctx context.Context, d models.NoteDraft) (*models.Note, error)
}

// Importer turns pending inbox files into notes.
type Importer struct {
	files      storage.Provider
	notes      Creator
	defaultTag models.Tag
	logger     *slog.Logger

	// stranded maps the checksum of a file that became a note but could not
	// be archived to that note's ID, so the file is not imported twice.
	mu       sync.Mutex
	stranded map[string]string
}

// NewImporter creates an importer. Files whose frontmatter names no known tag
// are imported with defaultTag.
func NewImporter(files storage.Provider, notes Creator, defaultTag models.Tag, logger *slog.Logger) *Importer {
	return &Importer{
		files:      files,
		notes:      notes,
		defaultTag: defaultTag,
		logger:     logger,
		stranded:   make(map[string]string),
	}
}

// Scan imports every pending file in the inbox root and returns how many
// notes were created. Files that fail validation are moved to RejectedDir
// next to a .error.txt file explaining why; files that fail for any other
// reason stay in place for the next scan.
func (im *Importer) Scan(ctx context.Context) (int, error) {
	pending, err := im.files.Pending()
	if err != nil {
		return 0, err
	}

	imported := 0
	for _, f := range pending {
		if err := ctx.Err(); err != nil {
			return imported, err
		}
		note, err := im.importFile(ctx, f)
		if err != nil {
			im.logger.Warn("inbox: import failed", slog.String("path", f.Path), slog.String("error", err.Error()))
			continue
		}
		if note != nil {
			imported++
			im.logger.Info("inbox: imported", slog.String("path", f.Path), slog.String("id", note.ID))
		}
	}
	return imported, nil
}

// importFile returns a nil note without error when the file was rejected or
// had already been imported.
func (im *Importer) importFile(ctx context.Context, f models.InboxFile) (*models.Note, error) {
	im.mu.Lock()
	defer im.mu.Unlock()

	if id, ok := im.stranded[f.Checksum]; ok {
		if _, err := im.files.Archive(f.Path, ImportedDir); err != nil {
			return nil, fmt.Errorf("inbox: archive imported file (note %s): %w", id, err)
		}
		delete(im.stranded, f.Checksum)
		im.logger.Info("inbox: archived previously imported file", slog.String("path", f.Path), slog.String("id", id))
		return nil, nil
	}

	data, err := im.files.Read(f.Path)
	if err != nil {
		return nil, err
	}
	res := parser.Parse(data)

	note, err := im.notes.Create(ctx, res.Draft(f.Path, im.defaultTag))
	if errors.Is(err, apperr.ErrInvalid) {
		return nil, im.reject(f.Path, err)
	}
	if err != nil {
		return nil, err
	}

	// The note exists now; a failed archive is retried on the next scan
	// without creating the note again.
	if _, err := im.files.Archive(f.Path, ImportedDir); err != nil {
		im.stranded[f.Checksum] = note.ID
		im.logger.Warn("inbox: archive imported file failed",
			slog.String("path", f.Path),
			slog.String("id", note.ID),
			slog.String("error", err.Error()))
	}
	return note, nil
}

func (im *Importer) reject(p string, reason error) error {
	im.logger.Warn("inbox: rejected", slog.String("path", p), slog.String("reason", reason.Error()))
	moved, err := im.files.Archive(p, RejectedDir)
	if err != nil {
		return fmt.Errorf("inbox: move rejected file: %w", err)
	}
	if err := im.files.Write(moved+".error.txt", []byte(reason.Error()+"\n")); err != nil {
		return fmt.Errorf("inbox: write rejection reason: %w", err)
	}
	return nil
}
