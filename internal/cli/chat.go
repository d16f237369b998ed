package cli

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Simulate a user's registration conversation",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(userID) == "" {
				return errors.New("--user is required")
			}
			return cmd.Root().PersistentPreRunE(cmd, args)
		},
	}

	cmd.PersistentFlags().StringVar(&userID, "user", "", "Simulated user ID")

	send := func(cmd *cobra.Command, kind, payload string) error {
		req := map[string]string{"kind": kind}
		if payload != "" {
			req["payload"] = payload
		}

		var result ChatReply

		path := fmt.Sprintf("/api/v1/conversations/%s/events", url.PathEscape(userID))
		if err := client.Post(cmd.Context(), path, req, &result); err != nil {
			return err
		}

		out := NewOutput(cfg.Output, cmd.OutOrStdout())
		out.Print(result)
		return nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "start",
		Short: "Start or restart registration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return send(cmd, "start", "")
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "select <country>",
		Short: "Press a country button",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return send(cmd, "select", args[0])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "say <text>",
		Short: "Send a text message",
		Long:  "Send a text message. Use \\n in the text for line breaks.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.ReplaceAll(strings.Join(args, " "), `\n`, "\n")
			return send(cmd, "text", text)
		},
	})

	return cmd
}
