package cli

import (
	"fmt"

	"github.com/miportal/portal/internal/devserver"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the demo data into the development database",
	Long: `Create the demo students, subjects, schedule and grades used by the
development API server. Existing records are kept.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := devserver.OpenStore(cfg.GetDevServerDatabase())
		if err != nil {
			return err
		}
		defer store.Close()

		report, err := store.Seed(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to seed development data: %w", err)
		}

		printSeedReport(report)
		return nil
	},
}

func printSeedReport(report devserver.SeedReport) {
	if report.Total() == 0 {
		fmt.Println(infoStyle.Render("Demo data already present."))
		return
	}

	fmt.Println(successStyle.Render("Demo data created"))
	fmt.Printf("  users:     %d\n", report.Users)
	fmt.Printf("  subjects:  %d\n", report.Subjects)
	fmt.Printf("  schedules: %d\n", report.Schedules)
	fmt.Printf("  grades:    %d\n", report.Grades)
	fmt.Printf("Sign in as student1 / %s\n", devserver.DemoPassword)
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
