package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"
)

// minPasswordLen applies only when creating a new contact book.
const minPasswordLen = 8

// passwordModel prompts for the password that unlocks the contact book.
// On first run the password is entered twice.
type passwordModel struct {
	input      textinput.Model
	firstRun   bool
	confirming bool
	unlocking  bool
	firstPass  string
	errMsg     string
}

// passwordSubmitMsg carries the accepted password to the root model.
type passwordSubmitMsg struct {
	password string
}

// passwordErrMsg reports a failed unlock.
type passwordErrMsg struct {
	err error
}

func newPasswordModel(firstRun bool) passwordModel {
	ti := textinput.New()
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '*'
	ti.CharLimit = 128
	ti.Width = 40
	ti.Focus()

	return passwordModel{input: ti, firstRun: firstRun}
}

func (m passwordModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m passwordModel) Update(msg tea.Msg) (passwordModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// q is a valid password character, only ctrl+c quits here
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.unlocking {
			return m, nil
		}
		if key.Matches(msg, zstyle.KeyEnter) {
			return m.submit()
		}

	case passwordErrMsg:
		m.reset()
		m.errMsg = msg.err.Error()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *passwordModel) reset() {
	m.input.SetValue("")
	m.confirming = false
	m.unlocking = false
	m.firstPass = ""
}

func (m passwordModel) submit() (passwordModel, tea.Cmd) {
	val := m.input.Value()
	if val == "" {
		return m, nil
	}

	if m.firstRun {
		if !m.confirming {
			if len(val) < minPasswordLen {
				m.input.SetValue("")
				m.errMsg = fmt.Sprintf("password must be at least %d characters", minPasswordLen)
				return m, nil
			}
			m.firstPass = val
			m.confirming = true
			m.input.SetValue("")
			m.errMsg = ""
			return m, nil
		}

		if val != m.firstPass {
			m.reset()
			m.errMsg = "passwords do not match"
			return m, nil
		}
	}

	m.errMsg = ""
	m.unlocking = true
	return m, func() tea.Msg { return passwordSubmitMsg{password: val} }
}

func (m passwordModel) prompt() string {
	switch {
	case m.unlocking:
		return "unlocking contact book..."
	case m.firstRun && m.confirming:
		return "confirm password:"
	case m.firstRun:
		return "create contact book password:"
	default:
		return "contact book password:"
	}
}

func (m passwordModel) View() string {
	indent := lipgloss.NewStyle().MarginLeft(2)
	logo := indent.Render(zstyle.StyledLogo(lipgloss.NewStyle().Foreground(accent)))
	name := indent.Render(zstyle.MutedText.Render("zcircle"))

	s := fmt.Sprintf("\n%s\n%s\n\n  %s\n", logo, name, m.prompt())
	if !m.unlocking {
		s += "  " + m.input.View() + "\n"
	}

	if m.errMsg != "" {
		s += "\n  " + zstyle.StatusErr.Render(m.errMsg)
	}

	return s + "\n"
}
