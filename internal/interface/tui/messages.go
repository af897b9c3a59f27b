package tui

import (
	"context"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lqviet/vichat/internal/core/app"
	"github.com/lqviet/vichat/internal/core/models"
	"github.com/lqviet/vichat/internal/core/transcript"
)

// SessionExpiredMsg is injected from outside the event loop when the token
// refresh loop loses the credential.
type SessionExpiredMsg struct{}

type errMsg struct {
	err error
}

type resumedMsg struct {
	user models.User
	ok   bool
}

type loggedInMsg struct {
	user models.User
}

type registeredMsg struct {
	userID string
}

type authFailedMsg struct {
	err error
}

type sessionsLoadedMsg struct {
	sessions []models.Session
	cached   bool
}

type sessionCreatedMsg struct {
	session models.Session
}

type sessionRenamedMsg struct {
	session models.Session
}

type sessionDeletedMsg struct {
	nextActive string
	wasActive  bool
}

type transcriptLoadedMsg struct {
	sessionID string
	entries   []transcript.Entry
}

// answerMsg settles one optimistic entry. sessionID is the session the
// question was sent from; the chat view drops the message when the user has
// since switched away.
type answerMsg struct {
	sessionID string
	entryID   string
	err       error
}

type uploadDoneMsg struct {
	entryID  string
	filename string
	err      error
}

type copiedMsg struct{}

func resumeSession(a *app.App) tea.Cmd {
	return func() tea.Msg {
		user, ok, err := a.Gate.Resume(context.Background())
		if err != nil {
			return errMsg{err}
		}
		return resumedMsg{user: user, ok: ok}
	}
}

func doLogin(a *app.App, email, password string) tea.Cmd {
	return func() tea.Msg {
		user, err := a.Gate.Login(context.Background(), email, password)
		if err != nil {
			return authFailedMsg{err}
		}
		return loggedInMsg{user: user}
	}
}

func doRegister(a *app.App, email, password, fullName string) tea.Cmd {
	return func() tea.Msg {
		userID, err := a.Gate.Register(context.Background(), email, password, fullName)
		if err != nil {
			return authFailedMsg{err}
		}
		return registeredMsg{userID: userID}
	}
}

// loadCachedSessions renders the last known list immediately; the fresh
// fetch replaces it when refreshSessions comes back.
func loadCachedSessions(a *app.App) tea.Cmd {
	return func() tea.Msg {
		return sessionsLoadedMsg{sessions: a.Sessions.LoadCache(), cached: true}
	}
}

func refreshSessions(a *app.App) tea.Cmd {
	return func() tea.Msg {
		list, err := a.Sessions.Refresh(context.Background())
		if err != nil {
			return errMsg{err}
		}
		return sessionsLoadedMsg{sessions: list}
	}
}

func createSession(a *app.App, userID, title string) tea.Cmd {
	return func() tea.Msg {
		session, err := a.Sessions.Create(context.Background(), userID, title)
		if err != nil {
			return errMsg{err}
		}
		return sessionCreatedMsg{session: session}
	}
}

func renameSession(a *app.App, id, title string) tea.Cmd {
	return func() tea.Msg {
		session, err := a.Sessions.Rename(context.Background(), id, title)
		if err != nil {
			return errMsg{err}
		}
		return sessionRenamedMsg{session: session}
	}
}

func deleteSession(a *app.App, id string) tea.Cmd {
	return func() tea.Msg {
		nextActive, wasActive, err := a.Sessions.Delete(context.Background(), id)
		if err != nil {
			return errMsg{err}
		}
		return sessionDeletedMsg{nextActive: nextActive, wasActive: wasActive}
	}
}

func loadTranscript(a *app.App, sessionID string) tea.Cmd {
	return func() tea.Msg {
		entries, err := a.Transcript.Load(context.Background(), sessionID)
		if err != nil {
			return errMsg{err}
		}
		return transcriptLoadedMsg{sessionID: sessionID, entries: entries}
	}
}

// sendQuestion settles an entry appended earlier with Transcript.Begin. The
// settle methods patch by entry id and no-op when the transcript has been
// replaced, so a late answer can never land in another session's view.
func sendQuestion(a *app.App, entry transcript.Entry) tea.Cmd {
	return func() tea.Msg {
		resp, err := a.API.Ask(context.Background(), entry.SessionID, entry.Question)
		if err != nil {
			a.Transcript.Fail(entry.ID)
			return answerMsg{sessionID: entry.SessionID, entryID: entry.ID, err: err}
		}
		a.Transcript.Resolve(entry.ID, resp.Answer)
		return answerMsg{sessionID: entry.SessionID, entryID: entry.ID}
	}
}

// uploadFile pushes a document through the side channel and annotates the
// given entry with the result. entryID may be empty when no message
// accompanies the upload.
func uploadFile(a *app.App, entryID, path string) tea.Cmd {
	return func() tea.Msg {
		name := filepath.Base(path)

		f, err := os.Open(path)
		if err != nil {
			a.Transcript.AnnotateUpload(entryID, name, err)
			return uploadDoneMsg{entryID: entryID, filename: name, err: err}
		}
		defer func() {
			_ = f.Close()
		}()

		info, err := f.Stat()
		if err != nil {
			a.Transcript.AnnotateUpload(entryID, name, err)
			return uploadDoneMsg{entryID: entryID, filename: name, err: err}
		}

		_, err = a.API.UploadFile(context.Background(), name, f, info.Size())
		a.Transcript.AnnotateUpload(entryID, name, err)
		return uploadDoneMsg{entryID: entryID, filename: name, err: err}
	}
}
