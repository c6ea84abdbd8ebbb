package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/service/client"
)

var (
	snoozeCmd = &cobra.Command{
		Use:   "snooze",
		Short: "Snooze the ringing alarm.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConsole(cmd, func(ctx context.Context, c *client.Console) error {
				return c.Snooze(ctx)
			})
		},
	}

	dismissCmd = &cobra.Command{
		Use:   "dismiss",
		Short: "Stop the ringing alarm and remove it.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConsole(cmd, func(ctx context.Context, c *client.Console) error {
				return c.Dismiss(ctx)
			})
		},
	}

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Show a live clock with the alarm list and the ringing alarm.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConsole(cmd, func(ctx context.Context, c *client.Console) error {
				return c.Watch(ctx)
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(snoozeCmd, dismissCmd, watchCmd)
}
