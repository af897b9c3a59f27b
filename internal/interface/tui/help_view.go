package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) updateHelp(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); ok {
		m.mode = m.helpReturn
		return m, nil
	}
	return m, nil
}

func (m Model) viewHelp() string {
	help := `
vichat - Help
═════════════

SESSION LIST
────────────
  ↑/↓, j/k     Navigate sessions
  Enter        Open session
  n            New session
  r            Rename session
  d            Delete session (asks y/n)
  R            Refresh from server
  ?            Show this help
  q            Quit

CHAT
────
  Type + Enter Send question
  ctrl+o       Upload a file (.pdf .doc .docx .txt, max 5 MiB)
  ctrl+y       Copy last answer to clipboard
  PgUp/PgDn    Scroll transcript
  esc          Back to session list
  ctrl+g       Show this help

Press any key to go back
`

	return helpStyle.Render(help)
}
