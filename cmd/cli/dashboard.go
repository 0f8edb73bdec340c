package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/miportal/portal/internal/views"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show your subjects, schedule and grades",
	Long: `Open the interactive dashboard. It signs you in first when there is no
stored session. Use --plain to print the dashboard once and exit.`,
	RunE: runDashboard,
}

func runDashboard(cmd *cobra.Command, args []string) error {
	plain, _ := cmd.Flags().GetBool("plain")
	if plain {
		return runPlainDashboard(cmd)
	}

	return runInteractive(cmd, views.AppOptions{
		Context:     cmd.Context(),
		LastWarning: lastWarning,
	})
}

func runInteractive(cmd *cobra.Command, opts views.AppOptions) error {
	app := views.NewApp(sessionStore, newDashboardLoader(), opts)

	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("dashboard failed: %w", err)
	}

	return nil
}

func runPlainDashboard(cmd *cobra.Command) error {
	state, err := restoreSession(cmd)
	if err != nil {
		fmt.Println(warningStyle.Render("Not signed in."))
		return err
	}

	token, _ := sessionStore.Token()
	board := newDashboardLoader().Load(cmd.Context(), token)

	fmt.Println(views.RenderDashboard(state.User, board))

	if err := board.Err(); err != nil {
		logrus.WithError(err).Debugln("Dashboard rendered with missing collections")
	}

	return nil
}

// lastWarning feeds the newest logged warning into the dashboard footer.
func lastWarning() string {
	entries := cfg.RecentLogs(1)
	if len(entries) == 0 {
		return ""
	}
	return entries[0].Message
}

func init() {
	dashboardCmd.Flags().Bool("plain", false, "Print the dashboard once instead of opening the interactive view")
	rootCmd.Flags().Bool("plain", false, "Print the dashboard once instead of opening the interactive view")

	rootCmd.AddCommand(dashboardCmd)
}
