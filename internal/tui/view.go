package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/starford/notehub/internal/models"
	"github.com/starford/notehub/internal/screen"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	tagStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	toastStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("160")).Padding(0, 1)
	cardStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	modalStyle   = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("212")).Padding(1, 2)
	selectedTag  = lipgloss.NewStyle().Bold(true).Underline(true)
	focusedLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
)

const excerptLen = 80

func render(v screen.View, searchLine string, f *form, toast string, width int) string {
	var b strings.Builder

	b.WriteString(searchLine)
	b.WriteString("\n\n")

	if v.ModalOpen {
		b.WriteString(renderForm(f))
	} else {
		b.WriteString(renderBody(v, width))
	}

	if toast != "" {
		b.WriteString("\n")
		b.WriteString(toastStyle.Render(toast))
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(help(v)))
	return b.String()
}

func renderBody(v screen.View, width int) string {
	var b strings.Builder
	if v.ShowLoader {
		b.WriteString(mutedStyle.Render(screen.LoaderText))
		b.WriteString("\n")
	}
	if v.ShowError {
		b.WriteString(errorStyle.Render(screen.ErrorText))
		b.WriteString("\n")
	}
	if v.ShowList {
		for _, n := range v.Notes {
			b.WriteString(renderNote(n, width))
			b.WriteString("\n")
		}
	}
	if v.ShowPagination {
		fmt.Fprintf(&b, "Page %d of %d\n", v.Page, v.TotalPages)
	}
	return b.String()
}

func renderNote(n models.Note, width int) string {
	style := cardStyle
	if width > 4 {
		style = style.Width(width - 4)
	}
	return style.Render(
		titleStyle.Render(n.Title) + "  " + tagStyle.Render(string(n.Tag)) + "\n" + excerpt(n.Content),
	)
}

func excerpt(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= excerptLen {
		return s
	}
	return string(r[:excerptLen-1]) + "…"
}

func renderForm(f *form) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("New note"))
	b.WriteString("\n\n")
	b.WriteString(f.title.View())
	b.WriteString("\n")
	b.WriteString(f.content.View())
	b.WriteString("\n")

	label := "Tag:     "
	if f.focus == fieldTag {
		label = focusedLabel.Render(label)
	}
	b.WriteString(label)
	for i, t := range models.Tags {
		name := string(t)
		if i == f.tag {
			name = selectedTag.Render(name)
		}
		b.WriteString(name + " ")
	}
	b.WriteString("\n")

	if f.busy {
		b.WriteString("\n" + mutedStyle.Render("Saving..."))
	}
	if f.err != "" {
		b.WriteString("\n" + errorStyle.Render(f.err))
	}
	return modalStyle.Render(b.String())
}

func help(v screen.View) string {
	if v.ModalOpen {
		return "tab next field • ←/→ tag • enter save • esc cancel"
	}
	parts := []string{"ctrl+n new note"}
	if v.ShowPagination {
		parts = append(parts, "pgup/pgdn page")
	}
	parts = append(parts, "ctrl+r reload", "ctrl+c quit")
	return strings.Join(parts, " • ")
}
