package models

import (
	"testing"
	"time"

	"github.com/lqviet/vichat/pkg/chatapi"
)

func TestSessionValidate(t *testing.T) {
	s := &Session{Title: "Phiên 1"}
	if err := s.Validate(); err == nil {
		t.Error("expected error for missing id")
	}

	s.ID = "s1"
	if err := s.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSessionDisplayTitle(t *testing.T) {
	s := &Session{ID: "s1", Title: "  Kế hoạch  "}
	if got := s.DisplayTitle(); got != "Kế hoạch" {
		t.Errorf("DisplayTitle() = %q", got)
	}

	blank := &Session{ID: "s2", StartedAt: time.Date(2025, 5, 1, 10, 30, 0, 0, time.UTC)}
	if got := blank.DisplayTitle(); got == "" {
		t.Error("blank title should fall back to start time")
	}
}

func TestSessionsFromAPIPreservesOrder(t *testing.T) {
	list := []chatapi.Session{
		{ID: "s2", Title: "b"},
		{ID: "s1", Title: "a"},
		{ID: "s3", Title: "c"},
	}
	sessions := SessionsFromAPI(list)
	if len(sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(sessions))
	}
	for i, want := range []string{"s2", "s1", "s3"} {
		if sessions[i].ID != want {
			t.Errorf("sessions[%d].ID = %q, want %q", i, sessions[i].ID, want)
		}
	}
}

func TestUserGreeting(t *testing.T) {
	u := &User{Email: "a@x.com", FullName: "An Nguyễn"}
	if got := u.Greeting(); got != "An Nguyễn" {
		t.Errorf("Greeting() = %q", got)
	}

	u.FullName = ""
	if got := u.Greeting(); got != "a@x.com" {
		t.Errorf("Greeting() = %q", got)
	}
}
