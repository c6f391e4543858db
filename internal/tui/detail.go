package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zcircle/internal/contact"
)

// contactField is a labeled value that can be selected and copied.
type contactField struct {
	label string
	value string
}

// editContactMsg opens the form prefilled with a contact.
type editContactMsg struct {
	contact contact.Contact
}

// detailModel displays all fields of a saved contact.
type detailModel struct {
	contact contact.Contact
	fields  []contactField
	cursor  int
	flash   string
}

func newDetailModel(c contact.Contact) detailModel {
	return detailModel{contact: c, fields: contactFields(c)}
}

// contactFields lists the non-empty fields of c. Name and id are always present.
func contactFields(c contact.Contact) []contactField {
	fields := []contactField{
		{"name", c.DisplayName},
		{"id", c.ID},
	}

	add := func(label, value string) {
		if value != "" {
			fields = append(fields, contactField{label, value})
		}
	}

	add("address", c.Address)
	add("phone", strings.Join(c.PhoneNumbers, ", "))
	add("email", strings.Join(c.Emails, ", "))
	add("thumbnail", c.ThumbnailPath)
	add("note", c.Note)
	if !c.CreatedAt.IsZero() {
		add("added", c.CreatedAt.Format("2006-01-02"))
	}

	return fields
}

func (m detailModel) Init() tea.Cmd {
	return nil
}

func (m detailModel) Update(msg tea.Msg) (detailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	return m, nil
}

func (m detailModel) handleKey(msg tea.KeyMsg) (detailModel, tea.Cmd) {
	if key.Matches(msg, zstyle.KeyQuit) {
		return m, tea.Quit
	}

	if key.Matches(msg, zstyle.KeyBack) {
		return m, func() tea.Msg { return navigateMsg{view: viewList} }
	}

	if key.Matches(msg, zstyle.KeyUp) {
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyDown) {
		if m.cursor < len(m.fields)-1 {
			m.cursor++
		}
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyEnter) {
		return m.copy(m.fields[m.cursor].value, "copied!")
	}

	c := m.contact
	switch msg.String() {
	case "c":
		if c.Address == "" {
			m.flash = "no address"
			return m, clearFlashAfter()
		}
		return m.copy(c.Address, "copied address!")

	case "e":
		return m, func() tea.Msg { return editContactMsg{contact: c} }

	case "d":
		return m, func() tea.Msg { return forgetStartMsg{contact: c} }
	}

	return m, nil
}

func (m detailModel) copy(val, done string) (detailModel, tea.Cmd) {
	if err := copyToClipboard(val); err != nil {
		m.flash = "copy: " + err.Error()
		return m, clearFlashAfter()
	}
	m.flash = done
	return m, clearFlashAfter()
}

func (m detailModel) View() string {
	accentStyle := lipgloss.NewStyle().Foreground(accent).Bold(true)

	name := zstyle.Subtitle.Render(displayName(m.contact))
	s := "\n  " + contactBadge(m.contact) + " " + name + "\n\n"

	for i, f := range m.fields {
		label := zstyle.MutedText.Render(fmt.Sprintf("%-10s", f.label))
		if i == m.cursor {
			s += "  " + accentStyle.Render("▸") + " " + label + " " + f.value + "\n"
		} else {
			s += "    " + label + " " + f.value + "\n"
		}
	}

	s += "\n"

	if m.flash != "" {
		s += "  " + zstyle.StatusOK.Render(m.flash) + "\n"
	} else {
		s += "\n"
	}

	return s
}
