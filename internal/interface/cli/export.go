package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lqviet/vichat/internal/core/export"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Export a session transcript to markdown",
	Long: `Export a session's conversation to a markdown file.

By default writes session-<id>.md in the current directory. A custom
mustache template can be placed at ~/.config/vichat/export_template.mustache.

Examples:
  vichat export 42
  vichat export 42 --output ~/notes/chat.md
  vichat export 42 -o chat.md`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path (default: session-<id>.md in current directory)")
}

func runExport(cmd *cobra.Command, args []string) error {
	sessionID := args[0]

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

	session, ok := a.Sessions.Get(sessionID)
	if !ok {
		return fmt.Errorf("unknown session %s", sessionID)
	}

	entries, err := a.Transcript.Load(cmd.Context(), sessionID)
	if err != nil {
		return fmt.Errorf("failed to load conversation: %w", err)
	}

	doc, err := export.Render(a.Config.ExportTemplate, session, entries)
	if err != nil {
		return fmt.Errorf("failed to render transcript: %w", err)
	}

	outputPath := exportOutput
	if outputPath == "" {
		shortID := sessionID
		if len(shortID) > 8 {
			shortID = shortID[:8]
		}
		outputPath = fmt.Sprintf("session-%s.md", shortID)
	}
	if !filepath.IsAbs(outputPath) {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		outputPath = filepath.Join(cwd, outputPath)
	}

	if err := os.WriteFile(outputPath, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}

	fmt.Printf("Exported to %s\n", outputPath)
	return nil
}
