// Package transcript holds the displayed question/answer history of the
// active session and the optimistic-append send path. Entries are tagged
// with their originating session id so an answer that arrives after the user
// switched sessions is never rendered into the wrong transcript.
package transcript

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lqviet/vichat/pkg/chatapi"
)

// FailureText is shown in place of an answer when a send fails, matching
// the original client's placeholder.
const FailureText = "⚠️ Gửi thất bại. Vui lòng thử lại."

// State tracks one entry through the send path: idle→sending→{done,failed}.
type State int

const (
	EntryDone State = iota
	EntryPending
	EntryFailed
)

// Entry is one user question with its ordered answers. Loaded entries are
// Done; optimistic entries start Pending and settle to Done or Failed.
type Entry struct {
	ID        string // client-generated, for reconciling optimistic appends
	SessionID string // originating session, the stale-send guard
	Question  string
	Answers   []string
	State     State
	AskedAt   time.Time

	// Side-channel upload annotations. A failed upload never blocks the
	// text message; it shows up here instead.
	Attachment    string
	AttachmentErr string
}

// Transcript is the display model for one session's history.
type Transcript struct {
	api *chatapi.Client
	log *zap.Logger

	mu        sync.Mutex
	sessionID string
	entries   []Entry
}

// New creates an empty transcript bound to the API client.
func New(api *chatapi.Client, logger *zap.Logger) *Transcript {
	return &Transcript{
		api: api,
		log: logger,
	}
}

// Load fetches the full ordered history of sessionID and replaces the
// displayed transcript wholesale. There is no incremental fetch.
func (t *Transcript) Load(ctx context.Context, sessionID string) ([]Entry, error) {
	conv, err := t.api.Conversation(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(conv.Items))
	for _, item := range conv.Items {
		entry := Entry{
			ID:        item.QuestionID,
			SessionID: sessionID,
			Question:  item.Question,
			State:     EntryDone,
			AskedAt:   item.QuestionTime,
		}
		for _, answer := range item.Answers {
			entry.Answers = append(entry.Answers, answer.Content)
		}
		entries = append(entries, entry)
	}

	t.mu.Lock()
	t.sessionID = sessionID
	t.entries = entries
	snapshot := t.snapshotLocked()
	t.mu.Unlock()
	return snapshot, nil
}

// SessionID returns the session whose history is currently displayed.
func (t *Transcript) SessionID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessionID
}

// Entries returns a copy of the displayed entries in submission order.
func (t *Transcript) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// Begin validates the question and appends it optimistically, before any
// network call. The returned entry id reconciles the eventual answer.
func (t *Transcript) Begin(sessionID, question string) (Entry, error) {
	if sessionID == "" {
		return Entry{}, &chatapi.ValidationError{Detail: "no active session"}
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return Entry{}, &chatapi.ValidationError{Detail: "question must not be empty"}
	}

	entry := Entry{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Question:  question,
		State:     EntryPending,
		AskedAt:   time.Now(),
	}

	t.mu.Lock()
	// Entries stay in submission order even under concurrent sends: append
	// happens here, settle patches in place.
	if t.sessionID == sessionID {
		t.entries = append(t.entries, entry)
	}
	t.mu.Unlock()
	return entry, nil
}

// Resolve settles an optimistic entry with its answer. A no-op when the
// entry is gone, i.e. the user switched sessions and the transcript was
// replaced; the settled answer is already on the server and shows up on the
// next load of that session.
func (t *Transcript) Resolve(entryID, answer string) {
	t.patch(entryID, func(e *Entry) {
		e.Answers = append(e.Answers, answer)
		e.State = EntryDone
	})
}

// Fail settles an optimistic entry with the visible failure placeholder.
// The message is never silently dropped.
func (t *Transcript) Fail(entryID string) {
	t.patch(entryID, func(e *Entry) {
		e.Answers = append(e.Answers, FailureText)
		e.State = EntryFailed
	})
}

// AnnotateUpload records a side-channel upload result on an entry. Upload
// failure is a visible annotation, not a blocking error.
func (t *Transcript) AnnotateUpload(entryID, filename string, err error) {
	t.patch(entryID, func(e *Entry) {
		e.Attachment = filename
		if err != nil {
			e.AttachmentErr = err.Error()
		}
	})
}

// Send runs the full send path synchronously: optimistic append, network
// call, settle. The TUI drives the same steps itself via Begin/Resolve/Fail
// so the append is visible before the call resolves.
func (t *Transcript) Send(ctx context.Context, sessionID, question string) (Entry, error) {
	entry, err := t.Begin(sessionID, question)
	if err != nil {
		return Entry{}, err
	}

	resp, err := t.api.Ask(ctx, sessionID, entry.Question)
	if err != nil {
		t.Fail(entry.ID)
		t.log.Warn("send failed", zap.String("session_id", sessionID), zap.Error(err))
		return t.get(entry.ID), err
	}

	t.Resolve(entry.ID, resp.Answer)
	return t.get(entry.ID), nil
}

// Clear empties the display, for logout or when no session remains.
func (t *Transcript) Clear() {
	t.mu.Lock()
	t.sessionID = ""
	t.entries = nil
	t.mu.Unlock()
}

func (t *Transcript) patch(entryID string, fn func(*Entry)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.entries {
		if t.entries[i].ID == entryID {
			fn(&t.entries[i])
			return
		}
	}
}

func (t *Transcript) snapshotLocked() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Transcript) get(entryID string) Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, entry := range t.entries {
		if entry.ID == entryID {
			return entry
		}
	}
	return Entry{}
}

