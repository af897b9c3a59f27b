package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askSessionID string

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Send one question and print the answer",
	Long: `Send a question to a session and print the answer. Without --session
the most recent session is used; one is created if none exist.

Examples:
  vichat ask "Tóm tắt tài liệu vừa tải lên"
  vichat ask --session <id> "What changed?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVar(&askSessionID, "session", "", "Session id (default: most recent)")
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	user, err := requireAuth(cmd.Context(), a)
	if err != nil {
		return err
	}

	if _, err := a.Sessions.Refresh(cmd.Context()); err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	sessionID := askSessionID
	if sessionID == "" {
		if list := a.Sessions.Sessions(); len(list) > 0 {
			sessionID = list[0].ID
		} else {
			session, err := a.Sessions.Create(cmd.Context(), user.ID, "")
			if err != nil {
				return fmt.Errorf("failed to create session: %w", err)
			}
			sessionID = session.ID
		}
	} else if _, ok := a.Sessions.Get(sessionID); !ok {
		return fmt.Errorf("unknown session %s", sessionID)
	}
	a.Sessions.SetActive(sessionID)

	question := strings.Join(args, " ")
	if _, err := a.Transcript.Load(cmd.Context(), sessionID); err != nil {
		return fmt.Errorf("failed to load conversation: %w", err)
	}

	entry, err := a.Transcript.Send(cmd.Context(), sessionID, question)
	if err != nil {
		return fmt.Errorf("send failed: %w", err)
	}

	for _, answer := range entry.Answers {
		fmt.Println(answer)
	}
	return nil
}
