package chatapi

import (
	"context"
	"net/http"
	"strings"
)

type askRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

// Conversation returns the full ordered question/answer history of one
// session. There is no incremental fetch; every load replaces the transcript.
func (c *Client) Conversation(ctx context.Context, sessionID string) (*Conversation, error) {
	if sessionID == "" {
		return nil, &ValidationError{Detail: "session id is required"}
	}
	var conv Conversation
	if err := c.get(ctx, "/chat/sessions/"+sessionID+"/conversation", &conv, true); err != nil {
		return nil, err
	}
	return &conv, nil
}

// Ask submits a question to a session and returns the generated answer.
// Never retried: the backend persists the question before answering, so a
// replay would duplicate it.
func (c *Client) Ask(ctx context.Context, sessionID, question string) (*ChatResponse, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, &ValidationError{Detail: "question must not be empty"}
	}
	if sessionID == "" {
		return nil, &ValidationError{Detail: "no active session"}
	}
	var resp ChatResponse
	if err := c.do(ctx, http.MethodPost, "/chat/", askRequest{SessionID: sessionID, Question: question}, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}
