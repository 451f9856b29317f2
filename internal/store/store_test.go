package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/starford/notehub/internal/apperr"
	"github.com/starford/notehub/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "notehub-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func insert(t *testing.T, db *DB, id, title, content string, tag models.Tag, age time.Duration) {
	t.Helper()
	ts := base.Add(-age)
	n := &models.Note{ID: id, Title: title, Content: content, Tag: tag, CreatedAt: ts, UpdatedAt: ts}
	if err := db.Insert(context.Background(), n); err != nil {
		t.Fatalf("Insert %s: %v", id, err)
	}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM notes`).Scan(&count); err != nil {
		t.Fatalf("notes table missing: %v", err)
	}
}

func TestInsertAndGet(t *testing.T) {
	db := testDB(t)
	insert(t, db, "n1", "Green tea", "sencha", models.TagShopping, 0)

	n, err := db.Get(context.Background(), "n1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if n.Title != "Green tea" || n.Tag != models.TagShopping {
		t.Errorf("got %+v", n)
	}
	if !n.UpdatedAt.Equal(base) {
		t.Errorf("updated_at = %v, want %v", n.UpdatedAt, base)
	}
}

func TestGetMissing(t *testing.T) {
	db := testDB(t)
	if _, err := db.Get(context.Background(), "nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdate(t *testing.T) {
	db := testDB(t)
	insert(t, db, "n1", "Old", "body", models.TagWork, 0)

	n := &models.Note{ID: "n1", Title: "New", Content: "changed", Tag: models.TagPersonal, UpdatedAt: base.Add(time.Minute)}
	if err := db.Update(context.Background(), n); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := db.Get(context.Background(), "n1")
	if got.Title != "New" || got.Content != "changed" || got.Tag != models.TagPersonal {
		t.Errorf("got %+v", got)
	}
	if !got.CreatedAt.Equal(base) {
		t.Errorf("created_at changed: %v", got.CreatedAt)
	}

	missing := &models.Note{ID: "nope", Title: "x", Tag: models.TagWork, UpdatedAt: base}
	if err := db.Update(context.Background(), missing); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("update missing err = %v", err)
	}
}

func TestDelete(t *testing.T) {
	db := testDB(t)
	insert(t, db, "del", "Bye", "", models.TagTodo, 0)

	if err := db.Delete(context.Background(), "del"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := db.Get(context.Background(), "del"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("note still present: %v", err)
	}
	if err := db.Delete(context.Background(), "del"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestListPaginationNewestFirst(t *testing.T) {
	db := testDB(t)
	for i := 0; i < 5; i++ {
		insert(t, db, fmt.Sprintf("n%d", i), fmt.Sprintf("Note %d", i), "", models.TagTodo, time.Duration(i)*time.Hour)
	}

	page, total, err := db.List(context.Background(), ListParams{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(page) != 2 || page[0].ID != "n2" || page[1].ID != "n3" {
		t.Errorf("page = %+v", page)
	}
}

func TestListSearchAndTag(t *testing.T) {
	db := testDB(t)
	insert(t, db, "a", "Buy tea", "green", models.TagShopping, 0)
	insert(t, db, "b", "Standup", "talk about TEA break", models.TagMeeting, time.Hour)
	insert(t, db, "c", "Coffee", "beans", models.TagShopping, 2*time.Hour)

	notes, total, err := db.List(context.Background(), ListParams{Search: "tea", Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(notes) != 2 {
		t.Fatalf("search tea: total=%d notes=%d", total, len(notes))
	}

	notes, total, _ = db.List(context.Background(), ListParams{Search: "tea", Tag: models.TagShopping, Limit: 10})
	if total != 1 || notes[0].ID != "a" {
		t.Errorf("search tea+Shopping = %+v (total %d)", notes, total)
	}

	notes, total, _ = db.List(context.Background(), ListParams{Search: "zzz", Limit: 10})
	if total != 0 || notes == nil || len(notes) != 0 {
		t.Errorf("no-match search should return empty non-nil slice, got %#v (total %d)", notes, total)
	}
}

func TestListSearchEscapesWildcards(t *testing.T) {
	db := testDB(t)
	insert(t, db, "pct", "100% done", "", models.TagWork, 0)
	insert(t, db, "plain", "1000 done", "", models.TagWork, time.Hour)

	notes, total, err := db.List(context.Background(), ListParams{Search: "0%", Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || notes[0].ID != "pct" {
		t.Errorf("wildcard search = %+v", notes)
	}
}
