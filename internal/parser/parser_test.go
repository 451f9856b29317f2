package parser

import (
	"testing"

	"github.com/starford/notehub/internal/models"
)

func TestParse_FrontmatterAndBody(t *testing.T) {
	r := Parse([]byte("---\ntitle: Groceries\ntag: shopping\n---\nMilk and tea.\n"))
	if r.Title != "Groceries" {
		t.Errorf("title = %q, want %q", r.Title, "Groceries")
	}
	if r.Tag != models.TagShopping {
		t.Errorf("tag = %q, want Shopping", r.Tag)
	}
	if r.Body != "Milk and tea." {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_FrontmatterTitleKeepsHeading(t *testing.T) {
	r := Parse([]byte("---\ntitle: Weekly sync\n---\n# Agenda\n- budget\n"))
	if r.Title != "Weekly sync" {
		t.Errorf("title = %q", r.Title)
	}
	if r.Body != "# Agenda\n- budget" {
		t.Errorf("body = %q, heading must stay when it is not the title", r.Body)
	}
}

func TestParse_TagsList(t *testing.T) {
	r := Parse([]byte("---\ntags:\n  - unknown\n  - Meeting\n---\nAgenda\n"))
	if r.Tag != models.TagMeeting {
		t.Errorf("tag = %q, want Meeting", r.Tag)
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	r := Parse([]byte("# Just a heading\nSome text.\n"))
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter, got %v", r.Frontmatter)
	}
	if r.Title != "Just a heading" {
		t.Errorf("title = %q, want %q", r.Title, "Just a heading")
	}
	if r.Body != "Some text." {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_LaterHeadingIsTitleButStays(t *testing.T) {
	r := Parse([]byte("intro line\n# Section\nmore\n"))
	if r.Title != "Section" {
		t.Errorf("title = %q", r.Title)
	}
	if r.Body != "intro line\n# Section\nmore" {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_InvalidYAMLFallback(t *testing.T) {
	r := Parse([]byte("---\n: invalid: yaml: {{{\n---\nBody\n"))
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter on invalid YAML")
	}
	if r.Tag != "" {
		t.Errorf("tag = %q, want empty", r.Tag)
	}
}

func TestDraft_Fallbacks(t *testing.T) {
	d := Parse([]byte("plain body without heading")).Draft("inbox/call-bob.md", models.TagTodo)
	if d.Title != "call-bob" {
		t.Errorf("title = %q, want file stem", d.Title)
	}
	if d.Tag != models.TagTodo {
		t.Errorf("tag = %q, want fallback", d.Tag)
	}
	if d.Content != "plain body without heading" {
		t.Errorf("content = %q", d.Content)
	}
	if err := d.Validate(); err != nil {
		t.Errorf("draft should validate: %v", err)
	}
}
