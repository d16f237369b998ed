package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/tourneybot/internal/config"
	"github.com/mcoot/tourneybot/internal/dependencies/clock"
	"github.com/mcoot/tourneybot/internal/services/roster"
)

func newStoresCmd() *cobra.Command {
	var dataDir string

	cmd := &cobra.Command{
		Use:   "stores",
		Short: "Work directly on the registration stores in a data directory",
	}

	cmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (env: DATA_DIR)")

	// File names come from the same variables the bot reads:
	// SPREADSHEET_FILE, JSON_FILE, DOCUMENT_FILE and BACKUP_DIR.
	open := func(cmd *cobra.Command) (*roster.Store, error) {
		stores, err := config.LoadStores()
		if err != nil {
			return nil, err
		}
		if cmd.Flags().Changed("data-dir") {
			stores.DataDir = dataDir
		}

		logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
		if cfg.Verbose {
			logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
		}
		return roster.New(stores.Roster(), clock.New(), logger), nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create any missing store with its empty layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open(cmd)
			if err != nil {
				return err
			}
			if err := store.EnsureStoresExist(cmd.Context()); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(StoresResult{Files: store.Paths()})
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "snapshot",
		Short: "Copy the stores into a timestamped backup directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open(cmd)
			if err != nil {
				return err
			}
			dir, err := store.Snapshot(cmd.Context())
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(SnapshotResult{Dir: dir})
			return nil
		},
	})

	return cmd
}
