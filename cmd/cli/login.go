package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/miportal/portal/internal/common"
	"github.com/miportal/portal/internal/views"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the student portal",
	Long: `Sign in with your username or email and password. Missing credentials are
asked for interactively. The token is kept for the next commands.`,
	RunE: runLogin,
}

func runLogin(cmd *cobra.Command, args []string) error {
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")

	if common.IsBlank(username) || len(password) == 0 {
		if err := promptCredentials(&username, &password); err != nil {
			return fmt.Errorf("login prompt cancelled: %w", err)
		}
	}

	err := sessionStore.Login(cmd.Context(), strings.TrimSpace(username), password)
	if err != nil {
		fmt.Println(errorStyle.Render(views.LoginErrorMessage(err)))
		return err
	}

	user := sessionStore.State().User

	fmt.Println()
	fmt.Println(successStyle.Render("Login successful!"))
	fmt.Printf("Signed in as %s (%s)\n", user.GetName(), user.GetIdentity())
	fmt.Println()

	return nil
}

func promptCredentials(username, password *string) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Description("Your username or email").
				Value(username).
				Validate(requiredField("username")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(password).
				Validate(requiredField("password")),
		),
	)

	return form.Run()
}

func requiredField(name string) func(string) error {
	return func(value string) error {
		if common.IsBlank(value) {
			return errors.New(name + " is required")
		}
		return nil
	}
}

func init() {
	loginCmd.Flags().StringP("username", "u", "", "Username or email")
	loginCmd.Flags().StringP("password", "p", "", "Password (prompted when omitted)")

	rootCmd.AddCommand(loginCmd)
}
