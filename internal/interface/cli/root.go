package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lqviet/vichat/internal/core/app"
	"github.com/lqviet/vichat/internal/core/models"
)

var (
	serverURL   string
	dbPath      string
	verbose     bool
	versionInfo string
)

// SetVersion sets the version information from build-time ldflags
func SetVersion(version, commit, date string) {
	versionInfo = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	rootCmd.Version = versionInfo
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vichat",
	Short: "Terminal client for the ViChat backend",
	Long: `vichat - chat with the ViChat backend from your terminal

Log in once and your credential is kept locally; the chat view, session
management, and file upload all talk to the same REST backend the web
client uses.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to TUI if no subcommand specified
		return tuiCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Backend base URL (default from config)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Local state database path (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
}

// newApp builds the component graph from flags and config.
func newApp() (*app.App, error) {
	a, err := app.New(app.Options{
		ServerURL: serverURL,
		DBPath:    dbPath,
		Verbose:   verbose,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}
	return a, nil
}

// requireAuth resumes the stored credential and fails with a hint when no
// valid login exists. Commands that talk to the backend call this first.
func requireAuth(ctx context.Context, a *app.App) (models.User, error) {
	user, ok, err := a.Gate.Resume(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to restore session: %w", err)
	}
	if !ok {
		return models.User{}, fmt.Errorf("not logged in. Run 'vichat login' first")
	}
	return user, nil
}
