package noteservice

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/starford/notehub/internal/apperr"
	"github.com/starford/notehub/internal/checksum"
	"github.com/starford/notehub/internal/models"
	"github.com/starford/notehub/internal/testutil"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) PublishNoteEvent(kind, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, kind+":"+id)
}

func newService(t *testing.T) (*Service, *recorder) {
	t.Helper()
	rec := &recorder{}
	svc := NewService(testutil.TestDB(t), rec)
	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return svc, rec
}

func TestCreateValidatesDraft(t *testing.T) {
	svc, rec := newService(t)
	ctx := context.Background()

	cases := []models.NoteDraft{
		{Title: "", Tag: models.TagTodo},
		{Title: "ab", Tag: models.TagTodo},
		{Title: "Valid title", Tag: "Urgent"},
		{Title: "Valid title", Tag: models.TagWork, Content: string(make([]byte, 501))},
	}
	for i, d := range cases {
		if _, err := svc.Create(ctx, d); !errors.Is(err, apperr.ErrInvalid) {
			t.Errorf("case %d: err = %v, want ErrInvalid", i, err)
		}
	}
	if len(rec.events) != 0 {
		t.Errorf("events published for invalid drafts: %v", rec.events)
	}
}

func TestCreateAndList(t *testing.T) {
	svc, rec := newService(t)
	ctx := context.Background()

	for i := 0; i < 13; i++ {
		if _, err := svc.Create(ctx, models.NoteDraft{Title: fmt.Sprintf("Tea %02d", i), Tag: models.TagTodo}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if _, err := svc.Create(ctx, models.NoteDraft{Title: "Coffee beans", Tag: models.TagShopping}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(rec.events) != 14 {
		t.Errorf("events = %d, want 14", len(rec.events))
	}

	page, err := svc.List(ctx, ListQuery{Page: 2, PerPage: 12, Search: "tea"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.TotalPages != 2 {
		t.Errorf("totalPages = %d, want 2", page.TotalPages)
	}
	if len(page.Notes) != 1 || page.Notes[0].Title != "Tea 00" {
		t.Errorf("page 2 = %+v", page.Notes)
	}

	empty, err := svc.List(ctx, ListQuery{Search: "zzz"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if empty.TotalPages != 0 || len(empty.Notes) != 0 {
		t.Errorf("zzz = %+v", empty)
	}
}

func TestListRejectsBadPaging(t *testing.T) {
	svc, _ := newService(t)
	for _, q := range []ListQuery{{Page: -1}, {PerPage: 101}, {PerPage: -3}, {Tag: "Nope"}} {
		if _, err := svc.List(context.Background(), q); !errors.Is(err, apperr.ErrInvalid) {
			t.Errorf("%+v: err = %v, want ErrInvalid", q, err)
		}
	}
}

func TestUpdateOptimisticConcurrency(t *testing.T) {
	svc, rec := newService(t)
	ctx := context.Background()

	n, err := svc.Create(ctx, models.NoteDraft{Title: "Draft plan", Tag: models.TagWork})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	etag := checksum.Note(n)

	updated, err := svc.Update(ctx, n.ID, models.NoteDraft{Title: "Final plan", Tag: models.TagWork}, etag)
	if err != nil {
		t.Fatalf("Update with current etag: %v", err)
	}
	if updated.Title != "Final plan" || !updated.UpdatedAt.After(n.UpdatedAt) {
		t.Errorf("updated = %+v", updated)
	}

	if _, err := svc.Update(ctx, n.ID, models.NoteDraft{Title: "Again", Tag: models.TagWork}, etag); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("stale etag err = %v, want ErrConflict", err)
	}
	if _, err := svc.Update(ctx, "missing", models.NoteDraft{Title: "Again", Tag: models.TagWork}, ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing err = %v, want ErrNotFound", err)
	}
	if got := rec.events[len(rec.events)-1]; got != KindUpdated+":"+n.ID {
		t.Errorf("last event = %q", got)
	}
}

func TestDeleteReturnsNote(t *testing.T) {
	svc, rec := newService(t)
	ctx := context.Background()

	n, _ := svc.Create(ctx, models.NoteDraft{Title: "Temporary", Tag: models.TagTodo})
	deleted, err := svc.Delete(ctx, n.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted.ID != n.ID {
		t.Errorf("deleted = %+v", deleted)
	}
	if _, err := svc.Delete(ctx, n.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
	if got := rec.events[len(rec.events)-1]; got != KindDeleted+":"+n.ID {
		t.Errorf("last event = %q", got)
	}
}
