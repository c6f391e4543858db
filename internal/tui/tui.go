// Package tui implements the root Bubble Tea model for zcircle.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zfilesystem"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zcircle/internal/cli"
	"github.com/zarlcorp/zcircle/internal/contact"
	"github.com/zarlcorp/zcircle/internal/forget"
)

// TODO: switch to a zcircle accent once zstyle defines one.
var accent = zstyle.ZburnAccent

type viewID int

const (
	viewPassword viewID = iota
	viewMenu
	viewSample
	viewList
	viewDetail
	viewForm
	viewForget
)

// bookOpenedMsg carries an unlocked contact book.
type bookOpenedMsg struct {
	book *cli.Book
}

// Model is the root TUI model.
type Model struct {
	version  string
	dataDir  string
	gen      *contact.Generator
	book     *cli.Book
	firstRun bool

	active   viewID
	password passwordModel
	menu     menuModel
	sample   sampleModel
	list     listModel
	detail   detailModel
	form     formModel
	forget   forgetModel

	// terminal dimensions
	width  int
	height int
}

// New creates the root TUI model.
func New(version, dataDir string, gen *contact.Generator, firstRun bool) Model {
	return Model{
		version:  version,
		dataDir:  dataDir,
		gen:      gen,
		firstRun: firstRun,
		active:   viewPassword,
		password: newPasswordModel(firstRun),
		menu:     newMenuModel(version),
	}
}

func (m Model) Init() tea.Cmd {
	return m.password.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case passwordSubmitMsg:
		return m, m.openBook(msg.password)

	case bookOpenedMsg:
		m.book = msg.book
		return m.navigate(viewMenu)

	case navigateMsg:
		return m.navigate(msg.view)

	case addContactMsg:
		m.form = newFormModel(nil)
		m.active = viewForm
		return m, m.form.Init()

	case editContactMsg:
		c := msg.contact
		m.form = newFormModel(&c)
		m.active = viewForm
		return m, m.form.Init()

	case saveContactMsg:
		return m.handleSave(msg.contact)

	case viewContactMsg:
		m.detail = newDetailModel(msg.contact)
		m.active = viewDetail
		return m, nil

	case forgetStartMsg:
		return m.startForget(msg.contact)

	case forgetContactMsg:
		return m, m.executeForget(msg.contact)

	case forgetResultMsg:
		m.forget, _ = m.forget.Update(msg)
		return m, backToListAfter()
	}

	return m.updateActive(msg)
}

func (m Model) View() string {
	// password and menu draw their own header
	switch m.active {
	case viewPassword:
		return m.password.View()
	case viewMenu:
		return m.menu.View()
	}

	var content string
	switch m.active {
	case viewSample:
		content = m.sample.View()
	case viewList:
		content = m.list.View()
	case viewDetail:
		content = m.detail.View()
	case viewForm:
		content = m.form.View()
	case viewForget:
		content = m.forget.View()
	}

	header := zstyle.RenderHeader("zcircle", viewTitle(m.active), accent)
	sep := zstyle.RenderSeparator(m.width)
	footer := zstyle.RenderFooter(helpFor(m.active))

	return "\n" + header + "\n" + sep + "\n" + content + "\n" + footer + "\n"
}

func viewTitle(id viewID) string {
	switch id {
	case viewSample:
		return "Sample Contact"
	case viewList:
		return "Contacts"
	case viewDetail:
		return "Contact"
	case viewForm:
		return "Contact Form"
	case viewForget:
		return "Forget"
	}
	return ""
}

// helpFor returns keybinding pairs for each view's footer.
func helpFor(id viewID) []zstyle.HelpPair {
	switch id {
	case viewSample:
		return []zstyle.HelpPair{
			{Key: "s", Desc: "save"},
			{Key: "n", Desc: "new"},
			{Key: "esc", Desc: "back"},
			{Key: "q", Desc: "quit"},
		}
	case viewList:
		return []zstyle.HelpPair{
			{Key: "j/k", Desc: "navigate"},
			{Key: "enter", Desc: "view"},
			{Key: "a", Desc: "add"},
			{Key: "d", Desc: "forget"},
			{Key: "esc", Desc: "back"},
			{Key: "q", Desc: "quit"},
		}
	case viewDetail:
		return []zstyle.HelpPair{
			{Key: "enter", Desc: "copy field"},
			{Key: "c", Desc: "copy address"},
			{Key: "e", Desc: "edit"},
			{Key: "d", Desc: "forget"},
			{Key: "esc", Desc: "back"},
			{Key: "q", Desc: "quit"},
		}
	case viewForm:
		return []zstyle.HelpPair{
			{Key: "tab", Desc: "next"},
			{Key: "shift+tab", Desc: "prev"},
			{Key: "enter", Desc: "save"},
			{Key: "esc", Desc: "cancel"},
		}
	case viewForget:
		return []zstyle.HelpPair{
			{Key: "y", Desc: "confirm"},
			{Key: "n", Desc: "cancel"},
			{Key: "q", Desc: "quit"},
		}
	}
	return nil
}

func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.active {
	case viewPassword:
		m.password, cmd = m.password.Update(msg)
	case viewMenu:
		m.menu, cmd = m.menu.Update(msg)
	case viewSample:
		m.sample, cmd = m.sample.Update(msg)
	case viewList:
		m.list, cmd = m.list.Update(msg)
	case viewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case viewForm:
		m.form, cmd = m.form.Update(msg)
	case viewForget:
		m.forget, cmd = m.forget.Update(msg)
	}

	return m, cmd
}

// openBook unlocks the contact book off the update loop; key derivation
// is slow enough to freeze the prompt otherwise.
func (m Model) openBook(password string) tea.Cmd {
	dir := m.dataDir
	return func() tea.Msg {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return passwordErrMsg{err: fmt.Errorf("create data dir: %w", err)}
		}
		b, err := cli.OpenBook(zfilesystem.NewOSFileSystem(dir), password)
		if err != nil {
			return passwordErrMsg{err: err}
		}
		return bookOpenedMsg{book: b}
	}
}

func (m Model) navigate(view viewID) (tea.Model, tea.Cmd) {
	switch view {
	case viewMenu:
		mm := newMenuModel(m.version)
		if m.book != nil {
			if cs, err := m.book.Contacts.List(); err == nil {
				mm.contactCount = len(cs)
			}
		}
		m.menu = mm
		m.active = viewMenu
		return m, tea.ClearScreen

	case viewSample:
		m.sample = newSampleModel(m.gen.Generate())
		m.active = viewSample
		return m, tea.ClearScreen

	case viewList:
		m, cmd := m.loadList()
		return m, tea.Batch(cmd, tea.ClearScreen)

	case viewDetail, viewForget:
		m.active = view
		return m, tea.ClearScreen
	}

	return m, nil
}

func (m Model) loadList() (Model, tea.Cmd) {
	m.active = viewList
	if m.book == nil {
		m.list = newListModel(nil)
		return m, nil
	}

	cs, err := m.book.SortedContacts()
	if err != nil {
		m.list = newListModel(nil)
		m.list.flash = "load: " + err.Error()
		return m, clearFlashAfter()
	}

	m.list = newListModel(cs)
	return m, nil
}

func (m Model) handleSave(c contact.Contact) (tea.Model, tea.Cmd) {
	if m.book == nil {
		return m, nil
	}

	if err := m.book.Contacts.Put(c.ID, c); err != nil {
		if m.active == viewSample {
			m.sample.flash = "save: " + err.Error()
		} else {
			m.form.flash = "save: " + err.Error()
		}
		return m, clearFlashAfter()
	}

	if m.active == viewSample {
		var cmd tea.Cmd
		m.sample, cmd = m.sample.Update(contactSavedMsg{})
		return m, cmd
	}

	m.detail = newDetailModel(c)
	m.active = viewDetail
	return m, nil
}

func (m Model) startForget(c contact.Contact) (tea.Model, tea.Cmd) {
	from := m.active
	if from != viewDetail {
		from = viewList
	}
	m.forget = newForgetModel(c, forget.Plan(m.forgetRequest(c)), from)
	m.active = viewForget
	return m, nil
}

func (m Model) executeForget(c contact.Contact) tea.Cmd {
	req := m.forgetRequest(c)
	return func() tea.Msg {
		return forgetResultMsg{result: forget.Execute(req)}
	}
}

func (m Model) forgetRequest(c contact.Contact) forget.Request {
	req := forget.Request{Contact: c, Contacts: emptyContactStore{}}
	if m.book != nil {
		req.Contacts = m.book.Contacts
		req.Thumbnails = m.book.Thumbnails
	}
	return req
}

type emptyContactStore struct{}

func (emptyContactStore) Delete(string) error { return nil }

// Close cleans up resources. Call after the program exits.
func (m Model) Close() {
	if m.book != nil {
		m.book.Close()
	}
}
