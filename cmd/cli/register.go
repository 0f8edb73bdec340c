package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/miportal/portal/internal/common"
	"github.com/miportal/portal/internal/models"
	"github.com/miportal/portal/internal/views"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a student account",
	Long: `Create a new student account. Fields not given as flags are asked for
interactively.`,
	RunE: runRegister,
}

func runRegister(cmd *cobra.Command, args []string) error {
	var request models.RegisterRequest
	request.Email, _ = cmd.Flags().GetString("email")
	request.FullName, _ = cmd.Flags().GetString("full-name")
	request.Username, _ = cmd.Flags().GetString("username")
	request.Password, _ = cmd.Flags().GetString("password")
	open, _ := cmd.Flags().GetBool("open")

	prompted := false
	if common.IsBlank(request.Email) || common.IsBlank(request.FullName) || len(request.Password) == 0 {
		if err := promptRegistration(&request); err != nil {
			return fmt.Errorf("registration cancelled: %w", err)
		}
		prompted = true
	}

	request.Email = strings.TrimSpace(request.Email)
	request.FullName = strings.TrimSpace(request.FullName)
	request.Username = strings.TrimSpace(request.Username)

	user, err := apiClient.Register(cmd.Context(), request)
	if err != nil {
		fmt.Println(errorStyle.Render(views.RegisterErrorMessage(err)))
		return err
	}

	if !open && prompted {
		open = confirmOpenDashboard()
	}

	if open {
		return runInteractive(cmd, registeredAppOptions(cmd, user))
	}

	fmt.Println()
	fmt.Println(successStyle.Render(views.RegisteredNotice))
	fmt.Printf("Run 'portal login -u %s' to continue.\n", user.GetIdentity())
	fmt.Println()

	return nil
}

// registeredAppOptions opens the login screen with the new identity filled
// in and the registration notice above the form.
func registeredAppOptions(cmd *cobra.Command, user *models.User) views.AppOptions {
	return views.AppOptions{
		Context:     cmd.Context(),
		Notice:      views.RegisteredNotice,
		Username:    user.GetIdentity(),
		LastWarning: lastWarning,
	}
}

func confirmOpenDashboard() bool {
	open := true
	err := huh.NewConfirm().
		Title("Account created. Sign in now?").
		Affirmative("Yes").
		Negative("No").
		Value(&open).
		Run()
	if err != nil {
		logrus.WithError(err).Debugln("Skipped dashboard prompt")
		return false
	}
	return open
}

func promptRegistration(request *models.RegisterRequest) error {
	var confirm string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&request.Email).
				Validate(func(value string) error {
					if !common.IsValidEmail(value) {
						return errors.New("enter a valid email address")
					}
					return nil
				}),
			huh.NewInput().
				Title("Full name").
				Value(&request.FullName).
				Validate(requiredField("full name")),
			huh.NewInput().
				Title("Username").
				Description("Optional, used to sign in instead of the email").
				Value(&request.Username),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&request.Password).
				Validate(requiredField("password")),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&confirm).
				Validate(func(value string) error {
					if value != request.Password {
						return errors.New("passwords do not match")
					}
					return nil
				}),
		),
	)

	return form.Run()
}

func init() {
	registerCmd.Flags().String("email", "", "Account email")
	registerCmd.Flags().String("full-name", "", "Full name")
	registerCmd.Flags().String("username", "", "Username (optional)")
	registerCmd.Flags().String("password", "", "Password (prompted when omitted)")
	registerCmd.Flags().Bool("open", false, "Open the dashboard to sign in after registering")

	rootCmd.AddCommand(registerCmd)
}
