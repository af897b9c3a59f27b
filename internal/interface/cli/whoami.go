package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := requireAuth(cmd.Context(), a)
		if err != nil {
			return err
		}

		fmt.Printf("%s <%s>\n", user.Greeting(), user.Email)
		fmt.Printf("id: %s\n", user.ID)
		fmt.Printf("server: %s\n", a.API.BaseURL())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
