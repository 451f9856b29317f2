package inbox

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/notehub/internal/models"
	"github.com/starford/notehub/internal/noteservice"
	"github.com/starford/notehub/internal/storage"
	"github.com/starford/notehub/internal/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testEnv(t *testing.T) (string, storage.Provider, *noteservice.Service, *Importer) {
	t.Helper()
	dir, files := testutil.TestInbox(t)
	svc := noteservice.NewService(testutil.TestDB(t), nil)
	im := NewImporter(files, svc, models.TagTodo, quietLogger())
	return dir, files, svc, im
}

func listAll(t *testing.T, svc *noteservice.Service) []models.Note {
	t.Helper()
	page, err := svc.List(context.Background(), noteservice.ListQuery{PerPage: noteservice.MaxPerPage})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	return page.Notes
}

func TestScanImportsAndArchives(t *testing.T) {
	dir, files, svc, im := testEnv(t)
	_ = files.Write("groceries.md", []byte("---\ntitle: Groceries\ntag: Shopping\n---\nTea, milk\n"))
	_ = files.Write("call-bob.md", []byte("Call Bob about the offsite"))

	n, err := im.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if n != 2 {
		t.Fatalf("imported = %d, want 2", n)
	}

	notes := listAll(t, svc)
	if len(notes) != 2 {
		t.Fatalf("notes = %+v", notes)
	}
	byTitle := map[string]models.Note{}
	for _, n := range notes {
		byTitle[n.Title] = n
	}
	if byTitle["Groceries"].Tag != models.TagShopping || byTitle["Groceries"].Content != "Tea, milk" {
		t.Errorf("groceries = %+v", byTitle["Groceries"])
	}
	if byTitle["call-bob"].Tag != models.TagTodo {
		t.Errorf("call-bob = %+v", byTitle["call-bob"])
	}

	if _, err := os.Stat(filepath.Join(dir, ImportedDir, "groceries.md")); err != nil {
		t.Errorf("imported file not archived: %v", err)
	}
	if pending, _ := files.Pending(); len(pending) != 0 {
		t.Errorf("inbox not empty: %+v", pending)
	}

	// A second scan finds nothing new.
	if n, _ := im.Scan(context.Background()); n != 0 {
		t.Errorf("second scan imported %d", n)
	}
}

func TestScanRejectsInvalidDraft(t *testing.T) {
	dir, files, svc, im := testEnv(t)
	_ = files.Write("no.md", []byte("---\ntitle: ab\n---\ntoo short a title\n"))

	n, err := im.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if n != 0 {
		t.Errorf("imported = %d, want 0", n)
	}
	if len(listAll(t, svc)) != 0 {
		t.Error("invalid draft was stored")
	}
	if _, err := os.Stat(filepath.Join(dir, RejectedDir, "no.md")); err != nil {
		t.Errorf("rejected file not moved: %v", err)
	}
	reason, err := os.ReadFile(filepath.Join(dir, RejectedDir, "no.md.error.txt"))
	if err != nil || len(reason) == 0 {
		t.Errorf("missing rejection reason: %v", err)
	}
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatchImportsExistingAndNewFiles(t *testing.T) {
	dir, files, svc, im := testEnv(t)
	_ = files.Write("before.md", []byte("# Existing note\nwritten before start\n"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, dir, im, 50*time.Millisecond, quietLogger()) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	eventually(t, 3*time.Second, 20*time.Millisecond, func() bool {
		return len(listAll(t, svc)) == 1
	}, "existing file was not imported on start")

	if err := os.WriteFile(filepath.Join(dir, "after.md"), []byte("# Dropped later\nnew file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	eventually(t, 3*time.Second, 20*time.Millisecond, func() bool {
		return len(listAll(t, svc)) == 2
	}, "new file was not imported by the watcher")
}

// failingArchive fails the first n Archive calls.
type failingArchive struct {
	storage.Provider
	n int
}

func (f *failingArchive) Archive(p, dir string) (string, error) {
	if f.n > 0 {
		f.n--
		return "", errors.New("disk full")
	}
	return f.Provider.Archive(p, dir)
}

func TestScanFailedArchiveDoesNotDuplicate(t *testing.T) {
	dir, files := testutil.TestInbox(t)
	svc := noteservice.NewService(testutil.TestDB(t), nil)
	im := NewImporter(&failingArchive{Provider: files, n: 1}, svc, models.TagTodo, quietLogger())
	_ = files.Write("tea.md", []byte("# Buy tea\nsencha\n"))

	n, err := im.Scan(context.Background())
	if err != nil || n != 1 {
		t.Fatalf("first scan = %d, %v; want 1 imported", n, err)
	}
	if pending, _ := files.Pending(); len(pending) != 1 {
		t.Fatalf("file should still be pending after the failed archive, got %+v", pending)
	}

	n, err = im.Scan(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("second scan = %d, %v; want 0 imported", n, err)
	}
	if notes := listAll(t, svc); len(notes) != 1 {
		t.Errorf("notes = %d, want 1", len(notes))
	}
	if _, err := os.Stat(filepath.Join(dir, ImportedDir, "tea.md")); err != nil {
		t.Errorf("file not archived on retry: %v", err)
	}
}

func TestScanEditedStrandedFileImportsAgain(t *testing.T) {
	_, files := testutil.TestInbox(t)
	svc := noteservice.NewService(testutil.TestDB(t), nil)
	im := NewImporter(&failingArchive{Provider: files, n: 1}, svc, models.TagTodo, quietLogger())
	_ = files.Write("tea.md", []byte("# Buy tea\nsencha\n"))
	if _, err := im.Scan(context.Background()); err != nil {
		t.Fatal(err)
	}

	// New content is a new note.
	_ = files.Write("tea.md", []byte("# Buy tea\nsencha and genmaicha\n"))
	if n, _ := im.Scan(context.Background()); n != 1 {
		t.Errorf("edited file imported %d, want 1", n)
	}
	if notes := listAll(t, svc); len(notes) != 2 {
		t.Errorf("notes = %d, want 2", len(notes))
	}
}
