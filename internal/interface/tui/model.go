// Package tui is the full-screen terminal client: login form, session list,
// and chat view, driven by a single bubbletea model. All backend calls run
// as tea.Cmds off the event loop; results come back as typed messages that
// carry the session id they belong to, so late answers for a session the
// user already left are dropped instead of rendered.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lqviet/vichat/internal/core/app"
	"github.com/lqviet/vichat/internal/core/models"
)

type viewMode int

const (
	authView viewMode = iota
	listView
	chatView
	helpView
)

type Model struct {
	app    *app.App
	mode   viewMode
	width  int
	height int

	user   models.User
	status string // one-line footer notice, cleared on next key

	auth authModel
	list listModel
	chat chatModel

	// View to return to when leaving help.
	helpReturn viewMode
}

func New(a *app.App) Model {
	return Model{
		app:  a,
		mode: authView,
		auth: newAuthModel(),
		chat: newChatModel(),
	}
}

func (m Model) Init() tea.Cmd {
	// Try the stored credential before showing the login form.
	return resumeSession(m.app)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.setSize(msg.Width, msg.Height)
		m.chat.setSize(msg.Width, msg.Height)
		return m, nil

	case SessionExpiredMsg:
		// Refresh loop lost the credential. Drop everything local and
		// fall back to the login form.
		m.app.Reset()
		m.user = models.User{}
		m.mode = authView
		m.auth = newAuthModel()
		m.auth.notice = "Phiên đăng nhập đã hết hạn. Vui lòng đăng nhập lại."
		return m, nil

	case resumedMsg:
		if msg.ok {
			m.user = msg.user
			m.mode = listView
			return m, tea.Batch(loadCachedSessions(m.app), refreshSessions(m.app))
		}
		return m, nil

	case loggedInMsg:
		m.user = msg.user
		m.mode = listView
		m.auth = newAuthModel()
		return m, refreshSessions(m.app)

	case registeredMsg:
		m.auth.toLogin("Tạo tài khoản thành công. Đăng nhập để tiếp tục.")
		return m, nil

	case tea.KeyMsg:
		m.status = ""
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	switch m.mode {
	case authView:
		return m.updateAuth(msg)
	case listView:
		return m.updateList(msg)
	case chatView:
		return m.updateChat(msg)
	case helpView:
		return m.updateHelp(msg)
	}
	return m, nil
}

func (m Model) View() string {
	switch m.mode {
	case authView:
		return m.viewAuth()
	case listView:
		return m.viewList()
	case chatView:
		return m.viewChat()
	case helpView:
		return m.viewHelp()
	}
	return ""
}
