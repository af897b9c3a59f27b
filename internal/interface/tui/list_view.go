package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/lqviet/vichat/internal/core/models"
)

type listPrompt int

const (
	promptNone listPrompt = iota
	promptNew
	promptRename
	promptDelete
)

type listModel struct {
	list     list.Model
	ready    bool
	loading  bool
	prompt   listPrompt
	input    textinput.Model
	targetID string // session the rename/delete prompt applies to
	width    int
	height   int
}

func (l *listModel) setSize(width, height int) {
	l.width = width
	l.height = height
	if l.ready {
		l.list.SetSize(width, height-2)
	}
}

type sessionListItem struct {
	session models.Session
	active  bool
}

func (i sessionListItem) FilterValue() string {
	return i.session.DisplayTitle()
}

func (i sessionListItem) Title() string {
	title := i.session.DisplayTitle()
	if i.active {
		return "* " + title
	}
	return title
}

func (i sessionListItem) Description() string {
	return fmt.Sprintf("started %s", humanize.Time(i.session.StartedAt))
}

type sessionDelegate struct {
	list.DefaultDelegate
}

func (d sessionDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	s, ok := item.(sessionListItem)
	if !ok {
		d.DefaultDelegate.Render(w, m, index, item)
		return
	}

	title := s.Title()
	desc := s.Description()
	if index == m.Index() {
		title = selectedItemStyle.Render(title)
		desc = selectedItemStyle.Faint(true).Render(desc)
	} else {
		title = itemStyle.Render(title)
		desc = itemStyle.Render(desc)
	}

	fmt.Fprintf(w, "%s\n%s", title, desc)
}

func (m *Model) rebuildSessionList(sessions []models.Session) {
	activeID, _ := m.app.Sessions.Active()
	items := make([]list.Item, len(sessions))
	for i, s := range sessions {
		items[i] = sessionListItem{session: s, active: s.ID == activeID}
	}

	if !m.list.ready {
		delegate := sessionDelegate{DefaultDelegate: list.NewDefaultDelegate()}
		l := list.New(items, delegate, m.width, m.height-2)
		l.SetShowStatusBar(false)
		l.SetShowHelp(false)
		l.SetShowTitle(false)
		l.SetFilteringEnabled(false)
		m.list.list = l
		m.list.ready = true
		return
	}
	m.list.list.SetItems(items)
}

func (m Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionsLoadedMsg:
		// A cached snapshot never overwrites a fresh server list.
		if msg.cached && m.list.ready {
			return m, nil
		}
		m.list.loading = msg.cached
		m.rebuildSessionList(msg.sessions)
		return m, nil

	case sessionCreatedMsg:
		m.rebuildSessionList(m.app.Sessions.Sessions())
		m.list.list.Select(0)
		return m, loadTranscript(m.app, msg.session.ID)

	case sessionRenamedMsg:
		m.rebuildSessionList(m.app.Sessions.Sessions())
		return m, nil

	case sessionDeletedMsg:
		m.rebuildSessionList(m.app.Sessions.Sessions())
		if msg.wasActive && msg.nextActive == "" {
			m.app.Transcript.Clear()
		}
		return m, nil

	case transcriptLoadedMsg:
		m.mode = chatView
		m.chat.open(msg.sessionID, m.app.Transcript.Entries())
		return m, nil

	case errMsg:
		m.status = errorStyle.Render(msg.err.Error())
		return m, nil

	case tea.KeyMsg:
		if m.list.prompt != promptNone {
			return m.updateListPrompt(msg)
		}
		return m.updateListKeys(msg)
	}

	return m, nil
}

func (m Model) updateListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit

	case "?":
		m.helpReturn = listView
		m.mode = helpView
		return m, nil

	case "enter":
		if selected, ok := m.list.list.SelectedItem().(sessionListItem); ok {
			m.app.Sessions.SetActive(selected.session.ID)
			return m, loadTranscript(m.app, selected.session.ID)
		}
		return m, nil

	case "n":
		m.list.prompt = promptNew
		m.list.input = newPromptInput("session title (optional)")
		return m, nil

	case "r":
		if selected, ok := m.list.list.SelectedItem().(sessionListItem); ok {
			m.list.prompt = promptRename
			m.list.targetID = selected.session.ID
			m.list.input = newPromptInput("new title")
			m.list.input.SetValue(selected.session.Title)
		}
		return m, nil

	case "d":
		if selected, ok := m.list.list.SelectedItem().(sessionListItem); ok {
			m.list.prompt = promptDelete
			m.list.targetID = selected.session.ID
		}
		return m, nil

	case "R":
		return m, refreshSessions(m.app)
	}

	var cmd tea.Cmd
	m.list.list, cmd = m.list.list.Update(msg)
	return m, cmd
}

func (m Model) updateListPrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.list.prompt == promptDelete {
		switch msg.String() {
		case "y", "Y":
			id := m.list.targetID
			m.list.prompt = promptNone
			m.list.targetID = ""
			return m, deleteSession(m.app, id)
		default:
			m.list.prompt = promptNone
			m.list.targetID = ""
			return m, nil
		}
	}

	switch msg.String() {
	case "esc":
		m.list.prompt = promptNone
		m.list.targetID = ""
		return m, nil

	case "enter":
		value := m.list.input.Value()
		prompt, id := m.list.prompt, m.list.targetID
		m.list.prompt = promptNone
		m.list.targetID = ""
		switch prompt {
		case promptNew:
			return m, createSession(m.app, m.user.ID, value)
		case promptRename:
			return m, renameSession(m.app, id, value)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list.input, cmd = m.list.input.Update(msg)
	return m, cmd
}

func newPromptInput(placeholder string) textinput.Model {
	input := textinput.New()
	input.Placeholder = placeholder
	input.CharLimit = 200
	input.Focus()
	return input
}

func (m Model) viewList() string {
	header := titleStyle.Render("vichat") + "  " + timestampStyle.Render(m.user.Greeting())

	var footer string
	switch m.list.prompt {
	case promptNew:
		footer = "new session: " + m.list.input.View()
	case promptRename:
		footer = "rename: " + m.list.input.View()
	case promptDelete:
		footer = errorStyle.Render("delete session? y/n")
	default:
		if m.status != "" {
			footer = m.status
		} else {
			footer = helpStyle.Render("enter open • n new • r rename • d delete • R refresh • ? help • q quit")
		}
	}

	if !m.list.ready || m.list.list.Items() == nil || len(m.list.list.Items()) == 0 {
		body := "Chưa có phiên chat nào. Nhấn 'n' để tạo phiên mới."
		if m.list.loading {
			body = "Đang tải danh sách phiên..."
		}
		return header + "\n\n" + body + "\n\n" + footer
	}

	return header + "\n" + m.list.list.View() + "\n" + footer
}
