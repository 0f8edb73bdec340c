package cli

import (
	"fmt"

	"github.com/miportal/portal/internal/common"
	"github.com/miportal/portal/internal/devserver"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the development API server",
	Long: `Start a local implementation of the portal API backed by SQLite.
Point the client at it with --api-url http://127.0.0.1:8000/api/v1.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if host, _ := cmd.Flags().GetString("host"); len(host) > 0 {
		cfg.DevServer.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.DevServer.Port = port
	}

	// Set up signal handling for graceful shutdown
	ctx, cleanup := common.WithInterrupt(cmd.Context())
	defer cleanup()

	server, err := devserver.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open development server: %w", err)
	}

	if seed, _ := cmd.Flags().GetBool("seed"); seed {
		report, err := server.Store.Seed(ctx)
		if err != nil {
			server.Close()
			return fmt.Errorf("failed to seed development data: %w", err)
		}
		printSeedReport(report)
	}

	fmt.Println("Starting development API server...")

	if err := server.Start(); err != nil {
		server.Close()
		return err
	}

	fmt.Println(successStyle.Render("Listening on http://" + cfg.GetDevServerAddress() + devserver.APIBasePath))
	fmt.Printf("Access tokens expire after %s.\n", common.FormatDuration(server.Tokens.TTL()))
	fmt.Println("Press Ctrl+C to stop.")

	<-ctx.Done()

	fmt.Println("\nShutting down gracefully...")
	server.Stop()
	fmt.Println("Server stopped")

	return nil
}

func init() {
	serveCmd.Flags().String("host", "", "Address to listen on (default from devserver.host)")
	serveCmd.Flags().Int("port", 0, "Port to listen on (default from devserver.port)")
	serveCmd.Flags().Bool("seed", false, "Insert the demo data before starting")

	rootCmd.AddCommand(serveCmd)
}
