package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"
)

type menuChoice int

const (
	menuBrowse menuChoice = iota
	menuAdd
	menuSample
	menuQuit
)

var menuItems = []string{
	"Browse contacts",
	"Add contact",
	"Generate sample contact",
	"Quit",
}

// menuModel is the main menu view.
type menuModel struct {
	cursor       int
	version      string
	contactCount int
}

// navigateMsg tells the root model to switch views.
type navigateMsg struct {
	view viewID
}

// addContactMsg opens an empty contact form.
type addContactMsg struct{}

func newMenuModel(version string) menuModel {
	return menuModel{version: version}
}

func (m menuModel) Init() tea.Cmd {
	return nil
}

func (m menuModel) Update(msg tea.Msg) (menuModel, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(km, zstyle.KeyQuit):
		return m, tea.Quit
	case key.Matches(km, zstyle.KeyUp):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(km, zstyle.KeyDown):
		if m.cursor < len(menuItems)-1 {
			m.cursor++
		}
	case key.Matches(km, zstyle.KeyEnter):
		return m, m.selectItem()
	}

	return m, nil
}

func (m menuModel) selectItem() tea.Cmd {
	switch menuChoice(m.cursor) {
	case menuBrowse:
		return func() tea.Msg { return navigateMsg{view: viewList} }
	case menuAdd:
		return func() tea.Msg { return addContactMsg{} }
	case menuSample:
		return func() tea.Msg { return navigateMsg{view: viewSample} }
	case menuQuit:
		return tea.Quit
	}
	return nil
}

func (m menuModel) View() string {
	title := zstyle.Title.Render("zcircle")
	ver := zstyle.MutedText.Render(m.version)

	s := fmt.Sprintf("\n  %s %s\n", title, ver)
	s += "  " + zstyle.MutedText.Render(fmt.Sprintf("%d contacts", m.contactCount)) + "\n\n"

	for i, item := range menuItems {
		if m.cursor == i {
			s += zstyle.Highlight.Render("  > "+item) + "\n"
		} else {
			s += "    " + item + "\n"
		}
	}

	s += "\n  " + zstyle.MutedText.Render("j/k navigate  enter select  q quit") + "\n\n"
	return s
}
