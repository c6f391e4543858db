package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zcircle/internal/contact"
)

// listModel displays saved contacts, each with its avatar badge.
type listModel struct {
	contacts []contact.Contact
	cursor   int
	flash    string
}

// viewContactMsg requests the detail view for a contact.
type viewContactMsg struct {
	contact contact.Contact
}

// forgetStartMsg asks the root model to confirm forgetting a contact.
type forgetStartMsg struct {
	contact contact.Contact
}

func newListModel(cs []contact.Contact) listModel {
	return listModel{contacts: cs}
}

func (m listModel) Init() tea.Cmd {
	return nil
}

func (m listModel) Update(msg tea.Msg) (listModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	return m, nil
}

func (m listModel) handleKey(msg tea.KeyMsg) (listModel, tea.Cmd) {
	if key.Matches(msg, zstyle.KeyQuit) {
		return m, tea.Quit
	}

	if key.Matches(msg, zstyle.KeyBack) {
		return m, func() tea.Msg { return navigateMsg{view: viewMenu} }
	}

	if msg.String() == "a" {
		return m, func() tea.Msg { return addContactMsg{} }
	}

	if len(m.contacts) == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, zstyle.KeyUp):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, zstyle.KeyDown):
		if m.cursor < len(m.contacts)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, zstyle.KeyEnter):
		c := m.contacts[m.cursor]
		return m, func() tea.Msg { return viewContactMsg{contact: c} }
	}

	if msg.String() == "d" {
		c := m.contacts[m.cursor]
		return m, func() tea.Msg { return forgetStartMsg{contact: c} }
	}

	return m, nil
}

func (m listModel) View() string {
	accentStyle := lipgloss.NewStyle().Foreground(accent).Bold(true)

	s := "\n"

	if len(m.contacts) == 0 {
		s += "  " + zstyle.MutedText.Render("no contacts yet  a to add") + "\n"
		s += "\n\n"
		return s
	}

	for i, c := range m.contacts {
		line := fmt.Sprintf("%s %-24s %s",
			contactBadge(c),
			truncate(displayName(c), 24),
			zstyle.MutedText.Render(truncate(c.Address, 20)),
		)

		if i == m.cursor {
			s += "  " + accentStyle.Render("▸") + " " + line + "\n"
		} else {
			s += "    " + line + "\n"
		}
	}

	s += "\n"

	// reserve the flash line so the layout does not shift
	if m.flash != "" {
		s += "  " + zstyle.StatusOK.Render(m.flash) + "\n"
	} else {
		s += "\n"
	}

	return s
}

func displayName(c contact.Contact) string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.ID
}

// truncate shortens s to max runes, marking the cut with an ellipsis.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
