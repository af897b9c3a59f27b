package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"github.com/lqviet/vichat/internal/core/app"
	"github.com/lqviet/vichat/internal/core/transcript"
)

// chatModel is the transcript view for the active session: scrollback in a
// viewport, a textarea for the next question, and an optional file-path
// prompt for uploads.
type chatModel struct {
	sessionID string
	viewport  viewport.Model
	input     textarea.Model
	spin      spinner.Model
	ready     bool
	sending   bool

	uploading   bool // file-path prompt open
	uploadInput textinput.Model

	width  int
	height int
}

func newChatModel() chatModel {
	input := textarea.New()
	input.Placeholder = "Nhập câu hỏi..."
	input.SetHeight(3)
	input.CharLimit = 4000
	input.ShowLineNumbers = false

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return chatModel{
		input: input,
		spin:  spin,
	}
}

func (c *chatModel) setSize(width, height int) {
	c.width = width
	c.height = height
	c.input.SetWidth(width - 2)
	if c.ready {
		c.viewport.Width = width
		c.viewport.Height = c.viewportHeight()
	}
}

// viewportHeight leaves room for the header, textarea, and footer.
func (c *chatModel) viewportHeight() int {
	h := c.height - c.input.Height() - 4
	if h < 1 {
		h = 1
	}
	return h
}

// open binds the view to a session and replaces the scrollback in full.
func (c *chatModel) open(sessionID string, entries []transcript.Entry) {
	c.sessionID = sessionID
	c.sending = false
	c.uploading = false
	if !c.ready {
		c.viewport = viewport.New(c.width, c.viewportHeight())
		c.ready = true
	}
	c.setContent(entries)
	c.input.Reset()
	c.input.Focus()
}

func (c *chatModel) setContent(entries []transcript.Entry) {
	c.viewport.SetContent(renderTranscript(entries, c.viewport.Width))
	c.viewport.GotoBottom()
}

func renderTranscript(entries []transcript.Entry, width int) string {
	if len(entries) == 0 {
		return "Chưa có tin nhắn. Nhập câu hỏi bên dưới."
	}
	if width < 10 {
		width = 10
	}

	var b strings.Builder
	for _, entry := range entries {
		b.WriteString(questionStyle.Render("Bạn") + " " +
			timestampStyle.Render(entry.AskedAt.Local().Format("15:04")) + "\n")
		b.WriteString(wordwrap.String(entry.Question, width) + "\n")

		if entry.Attachment != "" {
			if entry.AttachmentErr != "" {
				b.WriteString(attachmentStyle.Render(
					fmt.Sprintf("📎 %s (tải lên thất bại: %s)", entry.Attachment, entry.AttachmentErr)) + "\n")
			} else {
				b.WriteString(attachmentStyle.Render("📎 "+entry.Attachment) + "\n")
			}
		}

		switch entry.State {
		case transcript.EntryPending:
			b.WriteString(answerStyle.Render("Trợ lý") + "\n")
			b.WriteString("...\n")
		default:
			for _, answer := range entry.Answers {
				if answer == transcript.FailureText {
					b.WriteString(failedStyle.Render(answer) + "\n")
					continue
				}
				b.WriteString(answerStyle.Render("Trợ lý") + "\n")
				b.WriteString(wordwrap.String(answer, width) + "\n")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) updateChat(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case answerMsg:
		// Answer for a session the user already left; the transcript
		// settle was a no-op and so is the view update.
		if msg.sessionID != m.chat.sessionID {
			return m, nil
		}
		m.chat.sending = false
		m.chat.setContent(m.app.Transcript.Entries())
		if msg.err != nil {
			m.status = errorStyle.Render(msg.err.Error())
		}
		return m, nil

	case uploadDoneMsg:
		m.chat.setContent(m.app.Transcript.Entries())
		if msg.err != nil {
			m.status = errorStyle.Render("tải lên thất bại: " + msg.err.Error())
		} else {
			m.status = noticeStyle.Render("Đã tải lên " + msg.filename)
		}
		return m, nil

	case transcriptLoadedMsg:
		if msg.sessionID == m.chat.sessionID {
			m.chat.setContent(msg.entries)
		}
		return m, nil

	case copiedMsg:
		m.status = noticeStyle.Render("Đã sao chép câu trả lời.")
		return m, nil

	case errMsg:
		m.status = errorStyle.Render(msg.err.Error())
		return m, nil

	case spinner.TickMsg:
		if !m.chat.sending {
			return m, nil
		}
		var cmd tea.Cmd
		m.chat.spin, cmd = m.chat.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.chat.uploading {
			return m.updateUploadPrompt(msg)
		}
		return m.updateChatKeys(msg)
	}

	var cmd tea.Cmd
	m.chat.viewport, cmd = m.chat.viewport.Update(msg)
	return m, cmd
}

func (m Model) updateChatKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = listView
		m.rebuildSessionList(m.app.Sessions.Sessions())
		return m, nil

	// ctrl+h doubles as backspace in most terminals, so help gets ctrl+g.
	case "ctrl+g":
		m.helpReturn = chatView
		m.mode = helpView
		return m, nil

	case "ctrl+o":
		m.chat.uploading = true
		m.chat.uploadInput = newPromptInput("đường dẫn tệp (.pdf .doc .docx .txt)")
		return m, nil

	case "ctrl+y":
		return m, copyLastAnswer(m.app)

	case "pgup":
		m.chat.viewport.HalfViewUp()
		return m, nil

	case "pgdown":
		m.chat.viewport.HalfViewDown()
		return m, nil

	case "enter":
		if m.chat.sending {
			// One in-flight question at a time; queueing a second would
			// reorder answers on slow backends.
			return m, nil
		}
		entry, err := m.app.Transcript.Begin(m.chat.sessionID, m.chat.input.Value())
		if err != nil {
			m.status = errorStyle.Render(err.Error())
			return m, nil
		}
		m.chat.input.Reset()
		m.chat.sending = true
		m.chat.setContent(m.app.Transcript.Entries())
		return m, tea.Batch(sendQuestion(m.app, entry), m.chat.spin.Tick)
	}

	var cmd tea.Cmd
	m.chat.input, cmd = m.chat.input.Update(msg)
	return m, cmd
}

func (m Model) updateUploadPrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.chat.uploading = false
		return m, nil

	case "enter":
		path := strings.TrimSpace(m.chat.uploadInput.Value())
		m.chat.uploading = false
		if path == "" {
			return m, nil
		}
		// Annotate the newest entry of this session, when there is one.
		entryID := ""
		entries := m.app.Transcript.Entries()
		if len(entries) > 0 {
			entryID = entries[len(entries)-1].ID
		}
		m.status = noticeStyle.Render("Đang tải lên...")
		return m, uploadFile(m.app, entryID, path)
	}

	var cmd tea.Cmd
	m.chat.uploadInput, cmd = m.chat.uploadInput.Update(msg)
	return m, cmd
}

// copyLastAnswer puts the most recent settled answer on the clipboard.
func copyLastAnswer(a *app.App) tea.Cmd {
	return func() tea.Msg {
		entries := a.Transcript.Entries()
		for i := len(entries) - 1; i >= 0; i-- {
			entry := entries[i]
			if entry.State != transcript.EntryDone || len(entry.Answers) == 0 {
				continue
			}
			if err := clipboard.WriteAll(entry.Answers[len(entry.Answers)-1]); err != nil {
				return errMsg{err}
			}
			return copiedMsg{}
		}
		return errMsg{fmt.Errorf("chưa có câu trả lời để sao chép")}
	}
}

func (m Model) viewChat() string {
	title := m.chat.sessionID
	if session, ok := m.app.Sessions.Get(m.chat.sessionID); ok {
		title = session.DisplayTitle()
	}
	header := titleStyle.Render(title)
	if m.chat.sending {
		header += "  " + m.chat.spin.View()
	}

	var footer string
	switch {
	case m.chat.uploading:
		footer = "upload: " + m.chat.uploadInput.View()
	case m.status != "":
		footer = m.status
	default:
		footer = helpStyle.Render("enter gửi • ctrl+o tải tệp • ctrl+y sao chép • esc danh sách phiên • ctrl+g trợ giúp")
	}

	return header + "\n" + m.chat.viewport.View() + "\n" + m.chat.input.View() + "\n" + footer
}
