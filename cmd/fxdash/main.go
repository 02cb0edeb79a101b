package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/studiowebux/fxdash/internal/cli"
	"github.com/studiowebux/fxdash/internal/config"
	"github.com/studiowebux/fxdash/internal/keybinds"
	"github.com/studiowebux/fxdash/internal/logging"
	"github.com/studiowebux/fxdash/internal/tui"
	"github.com/studiowebux/fxdash/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fxdash",
	Short: "Exchange-rate platform dashboard",
	Long: `fxdash manages exchange-rate providers and subscribers from the terminal.

Run without arguments to start the interactive dashboard, or use a
subcommand for scripting.

Examples:
  fxdash                                   # Start the dashboard
  fxdash login -e admin@example.com        # Sign in (prompts for the password)
  fxdash providers list --sort name        # Table output
  fxdash providers list -o json -q '[].name'
  fxdash providers create -f provider.yaml
  fxdash mock                              # Local development backend`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

// Persistent flags
var (
	flagAPIURL   string
	flagLogLevel string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "Backend base URL (overrides settings and "+config.EnvAPIURL+")")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug/info/warn/error)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(subscribersCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(activityCmd)
	rootCmd.AddCommand(keybindsCmd)
	rootCmd.AddCommand(mockCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadSettings initializes ~/.fxdash and applies the persistent flags
func loadSettings() (config.Settings, error) {
	if err := config.Initialize(); err != nil {
		return config.Settings{}, fmt.Errorf("failed to initialize config: %w", err)
	}
	settings, err := config.Load()
	if err != nil {
		return settings, err
	}
	if flagAPIURL != "" {
		settings.APIURL = flagAPIURL
	}
	if flagLogLevel != "" {
		settings.LogLevel = flagLogLevel
	}
	return settings, nil
}

// newApp builds the App for a scripting command. Console logs default to
// warnings so command output stays clean.
func newApp() (*cli.App, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	level := flagLogLevel
	if level == "" {
		level = "warn"
	}
	return cli.NewApp(cli.AppOptions{Settings: settings, Log: logging.Console(level)})
}

func runTUI() error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	log, closer, err := logging.File(settings.LogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()

	keys, err := keybinds.LoadFromDir(config.ConfigDir)
	if err != nil {
		return fmt.Errorf("failed to load keybinds: %w", err)
	}
	if result := keybinds.NewValidator().ValidateRegistry(keys); result.HasErrors() {
		return fmt.Errorf("invalid keybinds:\n%s", result.String())
	} else if result.HasWarnings() {
		log.Warn().Str("warnings", result.String()).Msg("keybinding conflicts")
	}

	hook := &tui.ExpiryHook{}
	app, err := cli.NewApp(cli.AppOptions{
		Settings:         settings,
		Log:              log,
		OnSessionExpired: hook.Notify,
	})
	if err != nil {
		return err
	}
	defer app.Close()

	return tui.Run(app.DashboardDeps(keys, version.Version), hook)
}
