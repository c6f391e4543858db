package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zcircle/internal/contact"
	"github.com/zarlcorp/zcircle/internal/forget"
)

type forgetPhase int

const (
	forgetConfirm forgetPhase = iota
	forgetRunning
	forgetDone
)

// forgetContactMsg requests the forget cascade for a contact.
type forgetContactMsg struct {
	contact contact.Contact
}

// forgetResultMsg carries the result of a completed cascade.
type forgetResultMsg struct {
	result forget.Result
}

// forgetModel confirms a forget and then shows what was removed.
type forgetModel struct {
	contact contact.Contact
	plan    []string
	phase   forgetPhase
	result  forget.Result
	from    viewID
}

func newForgetModel(c contact.Contact, plan []string, from viewID) forgetModel {
	return forgetModel{contact: c, plan: plan, from: from}
}

func (m forgetModel) Init() tea.Cmd {
	return nil
}

func (m forgetModel) Update(msg tea.Msg) (forgetModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case forgetResultMsg:
		m.result = msg.result
		m.phase = forgetDone
		return m, backToListAfter()
	}

	return m, nil
}

func (m forgetModel) handleKey(msg tea.KeyMsg) (forgetModel, tea.Cmd) {
	switch m.phase {
	case forgetConfirm:
		if key.Matches(msg, zstyle.KeyQuit) {
			return m, tea.Quit
		}
		if msg.String() == "y" {
			m.phase = forgetRunning
			c := m.contact
			return m, func() tea.Msg { return forgetContactMsg{contact: c} }
		}
		// anything else cancels
		from := m.from
		return m, func() tea.Msg { return navigateMsg{view: from} }

	case forgetDone:
		return m, func() tea.Msg { return navigateMsg{view: viewList} }
	}
	return m, nil
}

func (m forgetModel) View() string {
	switch m.phase {
	case forgetRunning:
		return "\n  " + zstyle.MutedText.Render("forgetting "+displayName(m.contact)+"...") + "\n"
	case forgetDone:
		return m.viewDone()
	}
	return m.viewConfirm()
}

func (m forgetModel) viewConfirm() string {
	s := "\n  " + contactBadge(m.contact) + " " + zstyle.Subtitle.Render("forget "+displayName(m.contact)+"?") + "\n\n"

	s += "  " + zstyle.MutedText.Render("this will:") + "\n"
	for _, step := range m.plan {
		s += fmt.Sprintf("  %s %s\n", zstyle.StatusWarn.Render("-"), step)
	}

	s += "\n  " + zstyle.StatusWarn.Render("this cannot be undone.") + " (y/n)\n"
	return s
}

func (m forgetModel) viewDone() string {
	var b strings.Builder

	header := zstyle.StatusOK
	if m.result.HasErrors() {
		header = zstyle.StatusWarn
	}

	lines := strings.Split(m.result.Summary(), "\n")
	b.WriteString("\n  " + header.Render(lines[0]) + "\n\n")

	for _, line := range lines[1:] {
		if strings.Contains(line, ": ") {
			b.WriteString("  " + zstyle.StatusWarn.Render(line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}

	b.WriteString("\n  " + zstyle.MutedText.Render("press any key to continue") + "\n")
	return b.String()
}

// backToListAfter returns to the contact list once the result has been read.
func backToListAfter() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return navigateMsg{view: viewList}
	})
}
