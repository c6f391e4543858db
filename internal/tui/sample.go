package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zcircle/internal/contact"
)

// sampleModel previews a generated contact before it is saved.
type sampleModel struct {
	contact contact.Contact
	flash   string
	saved   bool
}

// saveContactMsg requests saving a contact.
type saveContactMsg struct {
	contact contact.Contact
}

// contactSavedMsg confirms a save from the sample view.
type contactSavedMsg struct{}

// flashMsg clears the flash after a timeout.
type flashMsg struct{}

func newSampleModel(c contact.Contact) sampleModel {
	return sampleModel{contact: c}
}

func (m sampleModel) Init() tea.Cmd {
	return nil
}

func (m sampleModel) Update(msg tea.Msg) (sampleModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case contactSavedMsg:
		m.saved = true
		m.flash = "saved"
		return m, clearFlashAfter()

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	return m, nil
}

func (m sampleModel) handleKey(msg tea.KeyMsg) (sampleModel, tea.Cmd) {
	if key.Matches(msg, zstyle.KeyQuit) {
		return m, tea.Quit
	}

	if key.Matches(msg, zstyle.KeyBack) {
		return m, func() tea.Msg { return navigateMsg{view: viewMenu} }
	}

	switch msg.String() {
	case "s":
		if m.saved {
			m.flash = "already saved"
			return m, clearFlashAfter()
		}
		c := m.contact
		return m, func() tea.Msg { return saveContactMsg{contact: c} }

	case "n":
		return m, func() tea.Msg { return navigateMsg{view: viewSample} }
	}

	return m, nil
}

func (m sampleModel) View() string {
	s := fmt.Sprintf("\n  %s %s\n\n", contactBadge(m.contact), zstyle.Title.Render(m.contact.DisplayName))

	for _, f := range contactFields(m.contact) {
		label := zstyle.MutedText.Render(fmt.Sprintf("%-10s", f.label))
		s += fmt.Sprintf("    %s %s\n", label, f.value)
	}

	s += "\n"

	if m.flash != "" {
		s += "  " + zstyle.StatusOK.Render(m.flash) + "\n"
	} else {
		s += "\n"
	}

	return s
}

func clearFlashAfter() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return flashMsg{}
	})
}
