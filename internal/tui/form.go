package tui

import (
	"errors"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notehub/internal/models"
)

const (
	fieldTitle = iota
	fieldContent
	fieldTag
	fieldCount
)

// form is the note creation form shown in the modal.
type form struct {
	title   textinput.Model
	content textinput.Model
	tag     int // index into models.Tags
	focus   int
	err     string
	busy    bool
}

func newForm() form {
	title := textinput.New()
	title.Placeholder = "Title"
	title.Prompt = "Title:   "
	title.CharLimit = models.TitleMaxLen

	content := textinput.New()
	content.Placeholder = "Content"
	content.Prompt = "Content: "
	content.CharLimit = models.ContentMaxLen

	return form{title: title, content: content}
}

// reset clears the fields and focuses the title.
func (f *form) reset() tea.Cmd {
	f.title.Reset()
	f.content.Reset()
	f.tag, f.err, f.busy = 0, "", false
	f.focus = fieldTitle
	f.content.Blur()
	return f.title.Focus()
}

func (f *form) draft() models.NoteDraft {
	return models.NoteDraft{
		Title:   f.title.Value(),
		Content: f.content.Value(),
		Tag:     models.Tags[f.tag],
	}
}

func (f *form) nextField(back bool) tea.Cmd {
	step := 1
	if back {
		step = fieldCount - 1
	}
	f.focus = (f.focus + step) % fieldCount
	f.title.Blur()
	f.content.Blur()
	switch f.focus {
	case fieldTitle:
		return f.title.Focus()
	case fieldContent:
		return f.content.Focus()
	}
	return nil
}

func (f *form) cycleTag(delta int) {
	n := len(models.Tags)
	f.tag = ((f.tag+delta)%n + n) % n
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch f.focus {
	case fieldTitle:
		f.title, cmd = f.title.Update(msg)
	case fieldContent:
		f.content, cmd = f.content.Update(msg)
	}
	return cmd
}

// describe turns a submission error into one line for the form.
func describe(err error) string {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		keys := make([]string, 0, len(verrs))
		for k := range verrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+verrs[k].Error())
		}
		return strings.Join(parts, "; ")
	}
	return err.Error()
}
