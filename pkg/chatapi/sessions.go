package chatapi

import (
	"context"
	"net/http"
	"strings"
)

type createSessionRequest struct {
	UserID string `json:"user_id"`
	Title  string `json:"session_title"`
}

type updateSessionRequest struct {
	Title string `json:"session_title"`
}

// ListSessions returns the authenticated user's sessions in the server's
// order: newest first by started_at. Callers must not re-sort by any other
// key; the server's order is the display order.
func (c *Client) ListSessions(ctx context.Context) ([]Session, error) {
	var sessions []Session
	if err := c.get(ctx, "/chat/sessions/", &sessions, true); err != nil {
		return nil, err
	}
	return sessions, nil
}

// CreateSession creates a session owned by userID and returns the server's
// acknowledged copy.
func (c *Client) CreateSession(ctx context.Context, userID, title string) (*Session, error) {
	if userID == "" {
		return nil, &ValidationError{Detail: "user id is required"}
	}
	var session Session
	err := c.do(ctx, http.MethodPost, "/chat/sessions/", createSessionRequest{
		UserID: userID,
		Title:  strings.TrimSpace(title),
	}, &session, true)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// UpdateSession renames a session and returns the server's acknowledged copy.
func (c *Client) UpdateSession(ctx context.Context, id, title string) (*Session, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, &ValidationError{Detail: "session title must not be empty"}
	}
	var session Session
	if err := c.do(ctx, http.MethodPut, "/chat/sessions/"+id, updateSessionRequest{Title: title}, &session, true); err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteSession removes a session. The backend answers 200 with
// {"success":true} or 204; either way the body is irrelevant.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/chat/sessions/"+id, nil, nil, true)
}
