// Package export renders a session transcript to markdown through a
// mustache template. A custom template can be dropped into the config
// directory to override the default.
package export

import (
	"fmt"
	"strings"

	"github.com/cbroglie/mustache"

	"github.com/lqviet/vichat/internal/core/models"
	"github.com/lqviet/vichat/internal/core/transcript"
)

const DefaultTemplate = `# {{title}}

Session {{session_id}}, started {{started_at}}.

{{#entries}}
**Q:** {{question}}

{{#answers}}
**A:** {{.}}

{{/answers}}
{{/entries}}
`

// Render produces the markdown document for one session's transcript.
// template may be empty, in which case the default is used.
func Render(template string, session models.Session, entries []transcript.Entry) (string, error) {
	if template == "" {
		template = DefaultTemplate
	}

	entryCtx := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		entryCtx = append(entryCtx, map[string]any{
			"question": entry.Question,
			"answers":  entry.Answers,
			"asked_at": entry.AskedAt.Local().Format("2006-01-02 15:04"),
		})
	}

	out, err := mustache.Render(template, map[string]any{
		"title":      session.DisplayTitle(),
		"session_id": session.ID,
		"started_at": session.StartedAt.Local().Format("2006-01-02 15:04"),
		"entries":    entryCtx,
	})
	if err != nil {
		return "", fmt.Errorf("render export template: %w", err)
	}
	return strings.TrimRight(out, "\n") + "\n", nil
}
