package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"
)

var (
	sessionsLimit int
	sessionsSince string
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage chat sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSessionsList(cmd, args)
	},
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions, newest first",
	Long: `List your chat sessions in the order the server returns them
(newest first).

Examples:
  vichat sessions list
  vichat sessions list --limit 10
  vichat sessions list --since yesterday
  vichat sessions list --since "last monday"`,
	RunE: runSessionsList,
}

var sessionsNewCmd = &cobra.Command{
	Use:   "new [title]",
	Short: "Create a session",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSessionsNew,
}

var sessionsRenameCmd = &cobra.Command{
	Use:   "rename <session-id> <title>",
	Short: "Rename a session",
	Args:  cobra.ExactArgs(2),
	RunE:  runSessionsRename,
}

var sessionsRmCmd = &cobra.Command{
	Use:   "rm <session-id>",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsRm,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsNewCmd)
	sessionsCmd.AddCommand(sessionsRenameCmd)
	sessionsCmd.AddCommand(sessionsRmCmd)
	sessionsListCmd.Flags().IntVar(&sessionsLimit, "limit", 20, "Maximum number of sessions to display")
	sessionsListCmd.Flags().StringVar(&sessionsSince, "since", "", "Only sessions started after this date (natural language ok)")
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := requireAuth(cmd.Context(), a); err != nil {
		return err
	}

	list, err := a.Sessions.Refresh(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if sessionsSince != "" {
		cutoff, err := parseSinceDate(sessionsSince)
		if err != nil {
			return err
		}
		filtered := list[:0]
		for _, s := range list {
			if s.StartedAt.After(cutoff) {
				filtered = append(filtered, s)
			}
		}
		list = filtered
	}

	if len(list) > sessionsLimit {
		list = list[:sessionsLimit]
	}

	if len(list) == 0 {
		fmt.Println("No sessions found. Run 'vichat sessions new' to start one.")
		return nil
	}

	fmt.Printf("Showing %d session(s)\n\n", len(list))
	for i, s := range list {
		fmt.Printf("[%d] %s\n", i+1, s.ID)
		fmt.Printf("    %s\n", s.DisplayTitle())
		fmt.Printf("    started %s\n", humanize.Time(s.StartedAt))
	}
	return nil
}

func runSessionsNew(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	user, err := requireAuth(cmd.Context(), a)
	if err != nil {
		return err
	}

	title := ""
	if len(args) > 0 {
		title = args[0]
	}

	session, err := a.Sessions.Create(cmd.Context(), user.ID, title)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	fmt.Printf("Created session %s (%s)\n", session.ID, session.DisplayTitle())
	return nil
}

func runSessionsRename(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := requireAuth(cmd.Context(), a); err != nil {
		return err
	}
	if _, err := a.Sessions.Refresh(cmd.Context()); err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	session, err := a.Sessions.Rename(cmd.Context(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to rename session: %w", err)
	}

	fmt.Printf("Renamed session %s to %q\n", session.ID, session.Title)
	return nil
}

func runSessionsRm(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := requireAuth(cmd.Context(), a); err != nil {
		return err
	}
	if _, err := a.Sessions.Refresh(cmd.Context()); err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if _, _, err := a.Sessions.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	fmt.Printf("Deleted session %s\n", args[0])
	return nil
}

// parseSinceDate accepts natural language ("yesterday", "last monday") and
// common date formats.
func parseSinceDate(s string) (time.Time, error) {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	if result, err := w.Parse(s, time.Now()); err == nil && result != nil {
		return result.Time, nil
	}

	for _, format := range []string{"2006-01-02", time.RFC3339, "02/01/2006"} {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("could not parse date %q", strings.TrimSpace(s))
}
