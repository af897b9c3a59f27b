package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// authModel is the login/register form shown before a credential exists.
type authModel struct {
	registering bool
	inputs      []textinput.Model
	focus       int
	busy        bool
	notice      string
	errText     string
}

func newAuthModel() authModel {
	m := authModel{}
	m.buildInputs()
	return m
}

func (m *authModel) buildInputs() {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 120
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 120

	m.inputs = []textinput.Model{email, password}
	if m.registering {
		fullName := textinput.New()
		fullName.Placeholder = "full name"
		fullName.CharLimit = 120
		m.inputs = append(m.inputs, fullName)
	}
	m.focus = 0
}

// toLogin switches back to the login form with a notice, after a successful
// registration.
func (m *authModel) toLogin(notice string) {
	m.registering = false
	m.busy = false
	m.errText = ""
	m.notice = notice
	m.buildInputs()
}

func (m *authModel) setFocus(i int) {
	m.focus = (i + len(m.inputs)) % len(m.inputs)
	for j := range m.inputs {
		if j == m.focus {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
}

func (m *authModel) values() (email, password, fullName string) {
	email = strings.TrimSpace(m.inputs[0].Value())
	password = m.inputs[1].Value()
	if len(m.inputs) > 2 {
		fullName = strings.TrimSpace(m.inputs[2].Value())
	}
	return
}

func (m Model) updateAuth(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case authFailedMsg:
		m.auth.busy = false
		m.auth.errText = msg.err.Error()
		return m, nil

	case errMsg:
		m.auth.busy = false
		m.auth.errText = msg.err.Error()
		return m, nil

	case tea.KeyMsg:
		if m.auth.busy {
			return m, nil
		}
		m.auth.notice = ""

		switch msg.String() {
		case "esc":
			return m, tea.Quit

		case "ctrl+r":
			m.auth.registering = !m.auth.registering
			m.auth.errText = ""
			m.auth.buildInputs()
			return m, nil

		case "tab", "down":
			m.auth.setFocus(m.auth.focus + 1)
			return m, nil

		case "shift+tab", "up":
			m.auth.setFocus(m.auth.focus - 1)
			return m, nil

		case "enter":
			if m.auth.focus < len(m.auth.inputs)-1 {
				m.auth.setFocus(m.auth.focus + 1)
				return m, nil
			}
			email, password, fullName := m.auth.values()
			if email == "" || password == "" {
				m.auth.errText = "Vui lòng nhập đầy đủ thông tin."
				return m, nil
			}
			m.auth.busy = true
			m.auth.errText = ""
			if m.auth.registering {
				return m, doRegister(m.app, email, password, fullName)
			}
			return m, doLogin(m.app, email, password)
		}
	}

	var cmd tea.Cmd
	m.auth.inputs[m.auth.focus], cmd = m.auth.inputs[m.auth.focus].Update(msg)
	return m, cmd
}

func (m Model) viewAuth() string {
	var b strings.Builder

	if m.auth.registering {
		b.WriteString(titleStyle.Render("vichat / đăng ký"))
	} else {
		b.WriteString(titleStyle.Render("vichat / đăng nhập"))
	}
	b.WriteString("\n\n")

	for _, input := range m.auth.inputs {
		b.WriteString("  " + input.View() + "\n")
	}
	b.WriteString("\n")

	if m.auth.busy {
		b.WriteString("  ...\n")
	}
	if m.auth.notice != "" {
		b.WriteString("  " + noticeStyle.Render(m.auth.notice) + "\n")
	}
	if m.auth.errText != "" {
		b.WriteString("  " + errorStyle.Render(m.auth.errText) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("enter submit • tab next field • ctrl+r toggle register • esc quit"))
	return b.String()
}
