package cli

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "tourneyctl",
		Short: "CLI tool for the tournament registration bot",
		Long: `tourneyctl administers a running registration bot and its stores.

Remote commands talk to the bot's admin API: health checks, snapshots, and
simulated conversations that drive the same dialogue as Telegram.
The stores commands work directly on a data directory.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfg.NoColor {
				color.NoColor = true
			}

			// Load token from file if not provided via flag/env
			if err := cfg.LoadToken(); err != nil {
				return err
			}

			// Create HTTP client
			client = NewClient(cfg.ServerURL, cfg.Token)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: TOURNEY_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "Admin token (env: TOURNEY_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "Token file path (env: TOURNEY_TOKEN_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&cfg.NoColor, "no-color", cfg.NoColor, "Disable colored text output (env: NO_COLOR)")

	// Add subcommands
	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newSnapshotCmd())
	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newStoresCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		NewOutput(cfg.Output, os.Stdout).PrintError(err)
		os.Exit(1)
	}
}
