package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed in student",
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := restoreSession(cmd)
		if err != nil {
			fmt.Println(warningStyle.Render("Not signed in."))
			return err
		}

		user := state.User

		fmt.Println(headerStyle.Render(user.GetName()))
		if len(user.Username) > 0 {
			fmt.Printf("Username: %s\n", user.Username)
		}
		fmt.Printf("Email:    %s\n", user.Email)
		if len(user.Role) > 0 {
			fmt.Printf("Role:     %s\n", user.Role)
		}
		fmt.Printf("API:      %s\n", infoStyle.Render(apiClient.BaseURL()))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
