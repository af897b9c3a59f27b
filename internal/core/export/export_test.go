package export

import (
	"strings"
	"testing"
	"time"

	"github.com/lqviet/vichat/internal/core/models"
	"github.com/lqviet/vichat/internal/core/transcript"
)

func TestRenderDefaultTemplate(t *testing.T) {
	session := models.Session{
		ID:        "s1",
		Title:     "Kế hoạch",
		StartedAt: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	entries := []transcript.Entry{
		{Question: "hello", Answers: []string{"hi there"}},
		{Question: "and?", Answers: []string{"first", "second"}},
	}

	out, err := Render("", session, entries)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	for _, want := range []string{"# Kế hoạch", "**Q:** hello", "**A:** hi there", "**A:** first", "**A:** second"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderCustomTemplate(t *testing.T) {
	session := models.Session{ID: "s1", Title: "T"}
	entries := []transcript.Entry{{Question: "q", Answers: []string{"a"}}}

	out, err := Render("{{#entries}}{{question}}|{{/entries}}", session, entries)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if strings.TrimSpace(out) != "q|" {
		t.Errorf("unexpected output: %q", out)
	}
}
