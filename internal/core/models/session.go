package models

import (
	"errors"
	"strings"
	"time"

	"github.com/lqviet/vichat/pkg/chatapi"
)

// Session is the client's view of a server-persisted conversation thread.
type Session struct {
	ID        string
	Title     string
	StartedAt time.Time
}

// Validate checks if the session has required fields
func (s *Session) Validate() error {
	if s.ID == "" {
		return errors.New("session id is required")
	}
	return nil
}

// DisplayTitle returns the title, falling back to the start time when the
// server stored a blank one.
func (s *Session) DisplayTitle() string {
	if t := strings.TrimSpace(s.Title); t != "" {
		return t
	}
	return "Phiên bắt đầu lúc " + s.StartedAt.Local().Format("02/01/2006 15:04")
}

// SessionFromAPI converts a wire session into the client's domain type.
func SessionFromAPI(s chatapi.Session) Session {
	return Session{
		ID:        s.ID,
		Title:     s.Title,
		StartedAt: s.StartedAt,
	}
}

// SessionsFromAPI converts a server list, preserving its order exactly.
func SessionsFromAPI(list []chatapi.Session) []Session {
	sessions := make([]Session, len(list))
	for i, s := range list {
		sessions[i] = SessionFromAPI(s)
	}
	return sessions
}
