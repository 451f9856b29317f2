// Package tui is the terminal front end of the notes screen.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/notehub/internal/models"
	"github.com/starford/notehub/internal/screen"
)

const toastTTL = 3 * time.Second

// Controller is the part of screen.Screen the UI drives.
type Controller interface {
	SetSearchText(text string)
	SetPage(n int) error
	OpenModal()
	CloseModal()
	SubmitNote(ctx context.Context, d models.NoteDraft) error
	Reload()
	Snapshot() screen.Snapshot
}

type (
	viewMsg       screen.View
	toastMsg      string
	toastClearMsg struct{ seq int }
	submittedMsg  struct{ err error }
)

// Model is the bubbletea model of the notes screen.
type Model struct {
	ctrl   Controller
	views  <-chan screen.View
	toasts <-chan string
	keys   keyMap

	search textinput.Model
	form   form
	view   screen.View

	toast    string
	toastSeq int
	width    int
}

// New creates the model. views and toasts may be nil; then the model only
// refreshes after its own actions.
func New(ctrl Controller, views <-chan screen.View, toasts <-chan string) Model {
	search := textinput.New()
	search.Placeholder = "Search notes"
	search.Prompt = "Search: "
	search.Focus()

	return Model{
		ctrl:   ctrl,
		views:  views,
		toasts: toasts,
		keys:   defaultKeyMap(),
		search: search,
		form:   newForm(),
		view:   screen.Render(ctrl.Snapshot()),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitView(m.views), waitToast(m.toasts))
}

func waitView(ch <-chan screen.View) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		v, ok := <-ch
		if !ok {
			return tea.QuitMsg{}
		}
		return viewMsg(v)
	}
}

func waitToast(ch <-chan string) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return toastMsg(msg)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case viewMsg:
		m.view = screen.View(msg)
		return m, waitView(m.views)

	case toastMsg:
		m.toastSeq++
		m.toast = string(msg)
		seq := m.toastSeq
		return m, tea.Batch(
			waitToast(m.toasts),
			tea.Tick(toastTTL, func(time.Time) tea.Msg { return toastClearMsg{seq: seq} }),
		)

	case toastClearMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case submittedMsg:
		m.form.busy = false
		if msg.err != nil {
			m.form.err = describe(msg.err)
		}
		m.refresh()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if m.view.ModalOpen {
			return m.updateForm(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.NewNote):
		m.ctrl.OpenModal()
		m.search.Blur()
		cmd := m.form.reset()
		m.refresh()
		return m, cmd

	case key.Matches(msg, m.keys.PrevPage):
		m.turnPage(-1)
		return m, nil

	case key.Matches(msg, m.keys.NextPage):
		m.turnPage(1)
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		m.ctrl.Reload()
		m.refresh()
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if v := m.search.Value(); v != before {
		m.ctrl.SetSearchText(v)
		m.refresh()
	}
	return m, cmd
}

func (m *Model) turnPage(delta int) {
	if !m.view.ShowPagination {
		return
	}
	// Out-of-range targets are simply not offered.
	if err := m.ctrl.SetPage(m.view.Page + delta); err == nil {
		m.refresh()
	}
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form.busy {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Close):
		m.ctrl.CloseModal()
		m.refresh()
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.NextField):
		return m, m.form.nextField(msg.String() == "shift+tab")

	case key.Matches(msg, m.keys.Submit):
		m.form.busy, m.form.err = true, ""
		return m, submit(m.ctrl, m.form.draft())

	case m.form.focus == fieldTag && key.Matches(msg, m.keys.PrevTag):
		m.form.cycleTag(-1)
		return m, nil

	case m.form.focus == fieldTag && key.Matches(msg, m.keys.NextTag):
		m.form.cycleTag(1)
		return m, nil
	}
	return m, m.form.update(msg)
}

// submit creates the note off the UI goroutine.
func submit(ctrl Controller, d models.NoteDraft) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return submittedMsg{err: ctrl.SubmitNote(ctx, d)}
	}
}

func (m *Model) refresh() {
	m.view = screen.Render(m.ctrl.Snapshot())
	if !m.view.ModalOpen && !m.search.Focused() {
		m.search.Focus()
	}
}

func (m Model) View() string {
	return render(m.view, m.search.View(), &m.form, m.toast, m.width)
}
