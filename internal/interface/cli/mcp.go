package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lqviet/vichat/cmd/vichat/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Start MCP server exposing the chat backend",
	Long: `Start an MCP (Model Context Protocol) server over stdio so agent
tooling can list sessions, read conversations, and ask questions through
your stored credential. Log in with 'vichat login' first.

Configure in Claude Desktop's config file (~/.config/claude/config.json):
  {
    "mcpServers": {
      "vichat": {
        "command": "vichat",
        "args": ["serve-mcp"]
      }
    }
  }
`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	if err := mcp.StartServer(mcp.Options{
		ServerURL: serverURL,
		DBPath:    dbPath,
		Verbose:   verbose,
	}); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
