package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/lqviet/vichat/pkg/chatapi"
)

func chatBackend(t *testing.T, askStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/chat/sessions/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// Both sessions have one stored turn each.
		fmt.Fprintf(w, `{"session_id":"x","conversation":[{"question_id":"q1","question":"hello","question_time":"2025-05-01T10:00:00Z","answers":[{"id":"a1","question_id":"q1","content":"hi there","generated_by":"chatbot","created_at":"2025-05-01T10:00:01Z"}]}]}`)
	})
	mux.HandleFunc("/chat/", func(w http.ResponseWriter, r *http.Request) {
		if askStatus != http.StatusOK {
			w.WriteHeader(askStatus)
			fmt.Fprint(w, `{"detail":"Lỗi chat"}`)
			return
		}
		var req struct {
			SessionID string `json:"session_id"`
			Question  string `json:"question"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"question_id":"q2","answer_id":"a2","question":%q,"answer":"echo: %s","created_at":"2025-05-01T10:01:00Z"}`, req.Question, req.Question)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testTranscript(t *testing.T, askStatus int) *Transcript {
	t.Helper()
	server := chatBackend(t, askStatus)
	client := chatapi.NewClient(server.URL, time.Second)
	client.SetToken("tok")
	return New(client, zap.NewNop())
}

func TestLoadReplacesInFull(t *testing.T) {
	tr := testTranscript(t, http.StatusOK)

	entries, err := tr.Load(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Question != "hello" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if entries[0].Answers[0] != "hi there" {
		t.Fatalf("unexpected answer: %+v", entries[0].Answers)
	}
	if tr.SessionID() != "s1" {
		t.Fatalf("active session pointer not set, got %q", tr.SessionID())
	}

	// Loading another session replaces, never merges.
	if _, err := tr.Load(context.Background(), "s2"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := len(tr.Entries()); got != 1 {
		t.Fatalf("expected full replace, got %d entries", got)
	}
	if tr.SessionID() != "s2" {
		t.Fatalf("pointer not moved, got %q", tr.SessionID())
	}
}

func TestSendAppendsInSubmissionOrder(t *testing.T) {
	tr := testTranscript(t, http.StatusOK)
	ctx := context.Background()

	if _, err := tr.Load(ctx, "s1"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	entry, err := tr.Send(ctx, "s1", "  how are you  ")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if entry.Question != "how are you" {
		t.Fatalf("question not trimmed: %q", entry.Question)
	}
	if entry.State != EntryDone || entry.Answers[0] != "echo: how are you" {
		t.Fatalf("unexpected settled entry: %+v", entry)
	}

	entries := tr.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1].Question != "how are you" {
		t.Fatalf("send not appended after loaded history: %+v", entries)
	}
}

func TestSendValidation(t *testing.T) {
	tr := testTranscript(t, http.StatusOK)

	if _, err := tr.Send(context.Background(), "s1", "   "); err == nil {
		t.Fatal("expected ValidationError for blank question")
	}
	if _, err := tr.Send(context.Background(), "", "hello"); err == nil {
		t.Fatal("expected ValidationError without an active session")
	}
	if got := len(tr.Entries()); got != 0 {
		t.Fatalf("validation failures must not append, got %d entries", got)
	}
}

func TestFailedSendKeepsVisibleMarker(t *testing.T) {
	tr := testTranscript(t, http.StatusInternalServerError)
	ctx := context.Background()

	if _, err := tr.Load(ctx, "s1"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	entry, err := tr.Send(ctx, "s1", "hello again")
	if err == nil {
		t.Fatal("expected error")
	}
	if entry.State != EntryFailed {
		t.Fatalf("expected failed state, got %v", entry.State)
	}
	if entry.Answers[0] != FailureText {
		t.Fatalf("failure placeholder missing: %+v", entry.Answers)
	}

	// The question stays visible; nothing is silently dropped.
	entries := tr.Entries()
	if entries[len(entries)-1].Question != "hello again" {
		t.Fatalf("failed message dropped: %+v", entries)
	}
}

func TestOptimisticAppendBeforeSettle(t *testing.T) {
	tr := testTranscript(t, http.StatusOK)
	ctx := context.Background()

	if _, err := tr.Load(ctx, "s1"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	entry, err := tr.Begin("s1", "pending question")
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	entries := tr.Entries()
	last := entries[len(entries)-1]
	if last.Question != "pending question" || last.State != EntryPending {
		t.Fatalf("optimistic append missing: %+v", last)
	}

	tr.Resolve(entry.ID, "late answer")
	got := tr.Entries()
	settled := got[len(got)-1]
	if settled.State != EntryDone || settled.Answers[0] != "late answer" {
		t.Fatalf("entry not settled in place: %+v", settled)
	}
}

func TestStaleAnswerNeverCrossesSessions(t *testing.T) {
	tr := testTranscript(t, http.StatusOK)
	ctx := context.Background()

	if _, err := tr.Load(ctx, "sA"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	entry, err := tr.Begin("sA", "question for A")
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	// User switches to session B while A's send is in flight.
	if _, err := tr.Load(ctx, "sB"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// A's answer arrives late.
	tr.Resolve(entry.ID, "answer for A")

	for _, e := range tr.Entries() {
		if e.SessionID != "sB" {
			t.Fatalf("entry from session %q rendered into B's transcript", e.SessionID)
		}
		for _, a := range e.Answers {
			if a == "answer for A" {
				t.Fatal("A's answer appended to B's transcript")
			}
		}
	}
}

func TestBeginIgnoresInactiveSession(t *testing.T) {
	tr := testTranscript(t, http.StatusOK)
	ctx := context.Background()

	if _, err := tr.Load(ctx, "sB"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// A send issued for a session that is no longer displayed is tagged
	// with its origin and must not show up in the current view.
	if _, err := tr.Begin("sA", "question for A"); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	for _, e := range tr.Entries() {
		if e.SessionID == "sA" {
			t.Fatalf("foreign-session entry rendered: %+v", e)
		}
	}
}

func TestUploadAnnotationNeverBlocksMessage(t *testing.T) {
	tr := testTranscript(t, http.StatusOK)
	ctx := context.Background()

	if _, err := tr.Load(ctx, "s1"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	entry, err := tr.Send(ctx, "s1", "here is a file")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	tr.AnnotateUpload(entry.ID, "notes.pdf", &chatapi.UploadError{Detail: "Error processing file"})

	entries := tr.Entries()
	got := entries[len(entries)-1]
	if got.State != EntryDone {
		t.Fatalf("upload failure must not change message state: %+v", got)
	}
	if got.Attachment != "notes.pdf" || got.AttachmentErr == "" {
		t.Fatalf("upload failure should be a visible annotation: %+v", got)
	}
}
