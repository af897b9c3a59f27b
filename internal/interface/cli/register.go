package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	registerEmail    string
	registerPassword string
	registerFullName string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	Long: `Create a new account on the backend. Registration does not log you in;
run 'vichat login' afterwards.

Examples:
  vichat register --email a@x.com --name "Nguyễn Văn A"`,
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Account email")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "Password (prompted when omitted)")
	registerCmd.Flags().StringVar(&registerFullName, "name", "", "Full name")
}

func runRegister(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	email := registerEmail
	if email == "" {
		email, err = promptLine("Email: ")
		if err != nil {
			return err
		}
	}
	password := registerPassword
	if password == "" {
		password, err = promptLine("Password: ")
		if err != nil {
			return err
		}
	}
	fullName := registerFullName
	if fullName == "" {
		fullName, err = promptLine("Full name: ")
		if err != nil {
			return err
		}
	}

	userID, err := a.Gate.Register(cmd.Context(), email, password, fullName)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	fmt.Printf("Account created (id %s). Run 'vichat login' to sign in.\n", userID)
	return nil
}
