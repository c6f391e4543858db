package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zcircle/internal/avatar"
	"github.com/zarlcorp/zcircle/internal/contact"
)

const (
	fieldName = iota
	fieldAddress
	fieldPhone
	fieldEmail
	fieldThumbnail
	fieldNote
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"name",
	"address",
	"phone",
	"email",
	"thumbnail",
	"note",
}

// formModel adds a new contact or edits an existing one.
type formModel struct {
	inputs   [fieldCount]textinput.Model
	focus    int
	editing  bool
	existing contact.Contact
	flash    string
}

func newFormModel(existing *contact.Contact) formModel {
	var inputs [fieldCount]textinput.Model
	for i := range fieldCount {
		ti := textinput.New()
		ti.CharLimit = 256
		ti.Width = 50
		ti.Prompt = ""
		inputs[i] = ti
	}
	inputs[fieldPhone].Placeholder = "comma separated"
	inputs[fieldEmail].Placeholder = "comma separated"
	inputs[fieldThumbnail].Placeholder = "image path or url"

	m := formModel{inputs: inputs}

	if existing != nil {
		m.editing = true
		m.existing = *existing
		m.inputs[fieldName].SetValue(existing.DisplayName)
		m.inputs[fieldAddress].SetValue(existing.Address)
		m.inputs[fieldPhone].SetValue(strings.Join(existing.PhoneNumbers, ", "))
		m.inputs[fieldEmail].SetValue(strings.Join(existing.Emails, ", "))
		m.inputs[fieldThumbnail].SetValue(existing.ThumbnailPath)
		m.inputs[fieldNote].SetValue(existing.Note)
	}

	m.inputs[m.focus].Focus()
	return m
}

func (m formModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m formModel) Update(msg tea.Msg) (formModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	return m.updateInput(msg)
}

func (m formModel) handleKey(msg tea.KeyMsg) (formModel, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if key.Matches(msg, zstyle.KeyBack) {
		if m.editing {
			c := m.existing
			return m, func() tea.Msg { return viewContactMsg{contact: c} }
		}
		return m, func() tea.Msg { return navigateMsg{view: viewList} }
	}

	switch msg.String() {
	case "tab", "down":
		return m.moveFocus(1), textinput.Blink
	case "shift+tab", "up":
		return m.moveFocus(-1), textinput.Blink
	}

	if key.Matches(msg, zstyle.KeyEnter) {
		return m.submit()
	}

	return m.updateInput(msg)
}

func (m formModel) moveFocus(delta int) formModel {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + fieldCount) % fieldCount
	m.inputs[m.focus].Focus()
	return m
}

func (m formModel) updateInput(msg tea.Msg) (formModel, tea.Cmd) {
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// draft builds a contact from the current input values.
func (m formModel) draft() contact.Contact {
	c := m.existing
	c.DisplayName = strings.TrimSpace(m.inputs[fieldName].Value())
	c.Address = strings.TrimSpace(m.inputs[fieldAddress].Value())
	c.PhoneNumbers = splitList(m.inputs[fieldPhone].Value())
	c.Emails = splitList(m.inputs[fieldEmail].Value())
	c.ThumbnailPath = strings.TrimSpace(m.inputs[fieldThumbnail].Value())
	c.Note = strings.TrimSpace(m.inputs[fieldNote].Value())
	return c
}

func (m formModel) submit() (formModel, tea.Cmd) {
	c := m.draft()
	if c.DisplayName == "" && c.Address == "" {
		m.flash = "name or address is required"
		return m, clearFlashAfter()
	}

	if !m.editing {
		c.ID = contact.NewID()
		c.CreatedAt = time.Now().UTC()
	}

	return m, func() tea.Msg { return saveContactMsg{contact: c} }
}

// preview renders the avatar the draft would get if saved now.
func (m formModel) preview() string {
	c := m.draft()
	p := avatar.Props{Address: c.Address, ThumbnailPath: c.ThumbnailPath}
	if c.DisplayName != "" {
		p.Name = avatar.Name(c.DisplayName)
		p.Contact = &c
	}
	return renderAvatar(avatar.Render(p))
}

func (m formModel) View() string {
	action := "add contact"
	if m.editing {
		action = "edit contact"
	}
	s := fmt.Sprintf("\n  %s %s\n\n", m.preview(), zstyle.Title.Render(action))

	for i := range fieldCount {
		label := zstyle.MutedText.Render(fmt.Sprintf("%-10s", fieldLabels[i]))
		cursor := "  "
		if i == m.focus {
			cursor = "> "
		}
		s += fmt.Sprintf("  %s%s %s\n", cursor, label, m.inputs[i].View())
	}

	s += "\n"

	if m.flash != "" {
		s += "  " + zstyle.StatusErr.Render(m.flash) + "\n"
	} else {
		s += "\n"
	}

	return s
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
