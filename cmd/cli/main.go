package cli

import (
	"errors"
	"fmt"

	"github.com/miportal/portal/internal/api"
	"github.com/miportal/portal/internal/common"
	"github.com/miportal/portal/internal/config"
	"github.com/miportal/portal/internal/dashboard"
	"github.com/miportal/portal/internal/sessions"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// ErrNotSignedIn is returned by commands that need a session when none can
// be restored.
var ErrNotSignedIn = errors.New("not signed in, run 'portal login' first")

// Shared state built once per invocation by preRunConfigE
var (
	cfg          *config.Config
	apiClient    *api.Client
	sessionStore *sessions.Store
)

// loadConfig loads the configuration based on the --config flag or default locations
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, err := cmd.Flags().GetString("config")

	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	return config.Load(configFile)
}

func preRunConfigE(cmd *cobra.Command, _ []string) error {
	// Load configuration before any command runs
	var err error
	cfg, err = loadConfig(cmd)

	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// check if verbose flag is set
	verbose, err := cmd.Flags().GetBool("verbose")
	if err == nil && verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	// Get the api url override from the flag
	apiURL, err := cmd.Flags().GetString("api-url")
	if err == nil && len(apiURL) > 0 {
		if err := cfg.SetAPIURL(apiURL); err != nil {
			return fmt.Errorf("failed to set api url: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	apiClient, err = api.New(cfg.GetAPIURL(), api.Options{
		Timeout:  cfg.GetAPITimeout(),
		ClientID: common.GetClientIdentifier().String(),
	})
	if err != nil {
		return fmt.Errorf("failed to create api client: %w", err)
	}

	sessionStore = sessions.NewStore(apiClient, newTokenStore(cfg))

	return nil
}

func newTokenStore(cfg *config.Config) sessions.TokenStore {
	if cfg.Session.Ephemeral {
		logrus.Debugln("Keeping the credential token in memory only")
		return sessions.NewMemoryTokenStore()
	}
	return sessions.NewFileTokenStore(cfg.GetSessionDir(), cfg.GetAPIURL(), cfg.GetAPIHostname())
}

func newDashboardLoader() *dashboard.Loader {
	return dashboard.NewLoader(apiClient)
}

// restoreSession reattaches the persisted token and fails when there is no
// usable session.
func restoreSession(cmd *cobra.Command) (sessions.State, error) {
	sessionStore.Restore(cmd.Context())

	state := sessionStore.State()
	if !state.IsAuthenticated() {
		return state, ErrNotSignedIn
	}
	return state, nil
}

var rootCmd = &cobra.Command{
	Use:   "portal",
	Short: "MiPortal - your student portal in the terminal",
	Long: `MiPortal signs you in to the student portal and shows your subjects,
weekly schedule and grades.

Running portal without a subcommand opens the interactive dashboard.`,
	SilenceUsage:      true,
	PersistentPreRunE: preRunConfigE,
	RunE:              runDashboard,
}

func init() {

	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default is $HOME/.config/miportal/config.yaml)")
	rootCmd.PersistentFlags().String("api-url", "", "Override the portal API base URL (e.g., http://localhost:8000/api/v1)")

}

func GetCommandOptions() *cobra.Command {
	return rootCmd
}
