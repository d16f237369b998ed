package cli

import (
	"github.com/spf13/cobra"
)

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Snapshot commands for a running bot",
	}

	cmd.AddCommand(newSnapshotCreateCmd())
	cmd.AddCommand(newSnapshotListCmd())

	return cmd
}

func newSnapshotCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Take a snapshot of the stores now",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result SnapshotResult

			if err := client.Post(cmd.Context(), "/api/v1/snapshots", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newSnapshotListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List snapshots, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result SnapshotList

			if err := client.Get(cmd.Context(), "/api/v1/snapshots", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}
