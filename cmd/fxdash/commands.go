package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/studiowebux/fxdash/internal/api"
	"github.com/studiowebux/fxdash/internal/cli"
	"github.com/studiowebux/fxdash/internal/config"
	"github.com/studiowebux/fxdash/internal/keybinds"
	"github.com/studiowebux/fxdash/internal/logging"
	"github.com/studiowebux/fxdash/internal/types"
	"github.com/studiowebux/fxdash/internal/version"
)

// Output flags shared by listing commands
var (
	flagOutput  string
	flagQuery   string
	flagSearch  string
	flagSort    string
	flagDesc    bool
	flagPage    int
	flagPerPage int
	flagStatus  string
	flagFilter  string
)

// Command-specific flags
var (
	flagEmail    string
	flagPassword string
	flagRemote   bool
	flagYes      bool
	flagFile     string
	flagLimit    int
	flagClear    bool
	flagCheck    bool

	flagMockConfig string
	flagMockHost   string
	flagMockPort   int

	flagProvider types.Provider
	flagTimeout  int
	flagRate     int
	flagInactive bool
)

func outputOptions() cli.OutputOptions {
	return cli.OutputOptions{
		Format:  flagOutput,
		Query:   flagQuery,
		Search:  flagSearch,
		Sort:    flagSort,
		Desc:    flagDesc,
		Page:    flagPage,
		PerPage: flagPerPage,
	}
}

func searchParams() api.SearchParams {
	return api.SearchParams{Query: flagFilter, Status: types.Status(flagStatus)}
}

func prompter() cli.Prompter {
	return cli.NewTerminalPrompter()
}

// withApp runs fn with a fresh App and closes it afterwards
func withApp(fn func(app *cli.App) error) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "text", "Output format (text/json/yaml)")
	cmd.Flags().StringVarP(&flagQuery, "query", "q", "", "JMESPath expression or $(command) applied to JSON output")
}

func addListFlags(cmd *cobra.Command) {
	addOutputFlags(cmd)
	cmd.Flags().StringVar(&flagFilter, "filter", "", "Backend name filter")
	cmd.Flags().StringVar(&flagStatus, "status", "", "Backend status filter (active/inactive)")
	cmd.Flags().StringVar(&flagSearch, "search", "", "Case-insensitive search across columns")
	cmd.Flags().StringVar(&flagSort, "sort", "", "Column key to sort by")
	cmd.Flags().BoolVar(&flagDesc, "desc", false, "Sort descending")
	cmd.Flags().IntVar(&flagPage, "page", 1, "Page to show")
	cmd.Flags().IntVar(&flagPerPage, "per-page", 0, "Rows per page (default from settings)")
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error {
			return app.Login(prompter(), cli.LoginOptions{Email: flagEmail, Password: flagPassword})
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error { return app.Logout() })
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error { return app.Whoami(flagRemote, outputOptions()) })
	},
}

var providersCmd = &cobra.Command{
	Use:     "providers",
	Aliases: []string{"provider", "p"},
	Short:   "Manage exchange-rate providers",
}

var providersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List providers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error { return app.ListProviders(searchParams(), outputOptions()) })
	},
}

var providersGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error { return app.GetProvider(args[0], outputOptions()) })
	},
}

var providersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a provider from flags or a YAML/JSON file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := providerFromFlags(cmd)
		if err != nil {
			return err
		}
		return withApp(func(app *cli.App) error {
			_, err := app.SaveProvider("", p)
			return err
		})
	},
}

var providersUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a provider from flags or a YAML/JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error {
			ctx, cancel := app.Context()
			defer cancel()
			if err := app.RequireSession(); err != nil {
				return err
			}
			current, err := app.Providers.Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to load provider %s: %w", args[0], err)
			}
			p, err := mergeProviderFlags(cmd, *current)
			if err != nil {
				return err
			}
			_, err = app.SaveProvider(args[0], p)
			return err
		})
	},
}

var providersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error { return app.DeleteProvider(prompter(), args[0], flagYes) })
	},
}

var subscribersCmd = &cobra.Command{
	Use:     "subscribers",
	Aliases: []string{"subscriber", "s"},
	Short:   "Manage exchange-rate subscribers",
}

var subscribersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List subscribers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error { return app.ListSubscribers(searchParams(), outputOptions()) })
	},
}

var subscribersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a subscriber",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error { return app.DeleteSubscriber(prompter(), args[0], flagYes) })
	},
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List backend user accounts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error { return app.ListUsers(outputOptions()) })
	},
}

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show or clear the local activity log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *cli.App) error {
			if flagClear {
				return app.ClearActivity()
			}
			return app.ShowActivity(flagLimit, outputOptions())
		})
	},
}

var keybindsCmd = &cobra.Command{
	Use:   "keybinds",
	Short: "Validate keybindings or write the defaults",
}

var keybindsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate " + keybinds.FileName,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		keys, err := keybinds.LoadFromDir(config.ConfigDir)
		if err != nil {
			return err
		}
		result := keybinds.NewValidator().ValidateRegistry(keys)
		fmt.Fprint(cmd.OutOrStdout(), result.String())
		if result.HasErrors() {
			return fmt.Errorf("keybindings are invalid")
		}
		return nil
	},
}

var keybindsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default bindings to " + keybinds.FileName,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		path := filepath.Join(config.ConfigDir, keybinds.FileName)
		if _, err := os.Stat(path); err == nil && !flagYes {
			return fmt.Errorf("%s already exists (use --yes to overwrite)", path)
		}
		if err := keybinds.SaveConfig(keybinds.ExportDefaults(), path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Run a local development backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		level := flagLogLevel
		if level == "" {
			level = "info"
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return cli.RunMock(ctx, cmd.OutOrStdout(), logging.Console(level), cli.MockOptions{
			ConfigPath: flagMockConfig,
			Host:       flagMockHost,
			Port:       flagMockPort,
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var checker *version.Checker
		if flagCheck {
			checker = version.NewChecker()
		}
		return cli.PrintVersion(cmd.Context(), cmd.OutOrStdout(), checker)
	},
}

func init() {
	loginCmd.Flags().StringVarP(&flagEmail, "email", "e", "", "Account email")
	loginCmd.Flags().StringVar(&flagPassword, "password", "", "Account password (prompted when omitted)")

	addOutputFlags(whoamiCmd)
	whoamiCmd.Flags().BoolVar(&flagRemote, "remote", false, "Ask the backend instead of the stored identity")

	addListFlags(providersListCmd)
	addListFlags(subscribersListCmd)
	addOutputFlags(providersGetCmd)

	for _, c := range []*cobra.Command{providersCreateCmd, providersUpdateCmd} {
		c.Flags().StringVarP(&flagFile, "file", "f", "", "Provider definition (YAML or JSON)")
		c.Flags().StringVar(&flagProvider.Name, "name", "", "Provider name")
		c.Flags().StringVar(&flagProvider.APIKey, "api-key", "", "Provider API key")
		c.Flags().StringVar(&flagProvider.APIURL, "url", "", "Provider API URL")
		c.Flags().StringVar(&flagProvider.Description, "description", "", "Description")
		c.Flags().IntVar(&flagRate, "rate-limit", 0, "Requests per hour")
		c.Flags().IntVar(&flagTimeout, "timeout", 0, "Timeout in seconds")
		c.Flags().BoolVar(&flagInactive, "inactive", false, "Mark the provider inactive")
	}

	providersDeleteCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Skip confirmation")
	subscribersDeleteCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Skip confirmation")
	keybindsInitCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Overwrite an existing file")

	addOutputFlags(usersCmd)
	usersCmd.Flags().StringVar(&flagSort, "sort", "", "Column key to sort by (email/name)")
	usersCmd.Flags().BoolVar(&flagDesc, "desc", false, "Sort descending")

	addOutputFlags(activityCmd)
	activityCmd.Flags().IntVarP(&flagLimit, "limit", "n", 0, "Entries to show")
	activityCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete the entries for the configured backend")

	mockCmd.Flags().StringVarP(&flagMockConfig, "config", "c", "", "Mock configuration (YAML or JSON)")
	mockCmd.Flags().StringVar(&flagMockHost, "host", "", "Listen host")
	mockCmd.Flags().IntVar(&flagMockPort, "port", 0, "Listen port")

	versionCmd.Flags().BoolVar(&flagCheck, "check", false, "Check for a newer release")

	providersCmd.AddCommand(providersListCmd, providersGetCmd, providersCreateCmd, providersUpdateCmd, providersDeleteCmd)
	subscribersCmd.AddCommand(subscribersListCmd, subscribersDeleteCmd)
	keybindsCmd.AddCommand(keybindsCheckCmd, keybindsInitCmd)
}

// providerFromFlags builds a new provider from --file then the field flags
func providerFromFlags(cmd *cobra.Command) (types.Provider, error) {
	p := types.NewProvider()
	if flagFile != "" {
		loaded, err := cli.LoadProviderFile(flagFile)
		if err != nil {
			return p, err
		}
		p = loaded
	}
	return mergeProviderFlags(cmd, p)
}

// mergeProviderFlags overlays the flags the user actually set onto p
func mergeProviderFlags(cmd *cobra.Command, p types.Provider) (types.Provider, error) {
	if flagFile != "" && cmd.Name() == "update" {
		loaded, err := cli.LoadProviderFile(flagFile)
		if err != nil {
			return p, err
		}
		loaded.ID = p.ID
		p = loaded
	}

	f := cmd.Flags()
	if f.Changed("name") {
		p.Name = flagProvider.Name
	}
	if f.Changed("api-key") {
		p.APIKey = flagProvider.APIKey
	}
	if f.Changed("url") {
		p.APIURL = flagProvider.APIURL
	}
	if f.Changed("description") {
		p.Description = flagProvider.Description
	}
	if f.Changed("rate-limit") {
		p.RateLimit = flagRate
	}
	if f.Changed("timeout") {
		p.Timeout = flagTimeout
	}
	if f.Changed("inactive") {
		p.Status = types.StatusActive
		if flagInactive {
			p.Status = types.StatusInactive
		}
	}
	return p, nil
}
