package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored token",
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionStore.Logout()

		fmt.Println(successStyle.Render("Signed out."))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
