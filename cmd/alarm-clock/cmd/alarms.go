package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/service/client"
)

var (
	// label is the optional text of a new alarm.
	label string
	// durationMinutes makes a new alarm stop on its own.
	durationMinutes int

	listCmd = &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List alarms in display order.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConsole(cmd, func(ctx context.Context, c *client.Console) error {
				return c.List(ctx)
			})
		},
	}

	addCmd = &cobra.Command{
		Use:   "add HH:MM",
		Short: "Add a daily alarm.",
		Long: `Adds an enabled alarm that rings every day at the given time.

The time may be given as 07:05, 7:05 or 7:05 pm. With --duration the alarm
stops ringing on its own after that many minutes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(cmd, func(ctx context.Context, c *client.Console) error {
				return c.Add(ctx, args[0], label, durationMinutes)
			})
		},
	}

	enableCmd = &cobra.Command{
		Use:   "enable ID",
		Short: "Enable an alarm.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(cmd, func(ctx context.Context, c *client.Console) error {
				return c.SetEnabled(ctx, args[0], true)
			})
		},
	}

	disableCmd = &cobra.Command{
		Use:   "disable ID",
		Short: "Disable an alarm without removing it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(cmd, func(ctx context.Context, c *client.Console) error {
				return c.SetEnabled(ctx, args[0], false)
			})
		},
	}

	deleteCmd = &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Remove an alarm.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(cmd, func(ctx context.Context, c *client.Console) error {
				return c.Delete(ctx, args[0])
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	addCmd.Flags().StringVarP(&label, "label", "l", "", "alarm label, at most 50 characters")
	addCmd.Flags().IntVarP(&durationMinutes, "duration", "d", 0, "stop ringing after this many minutes")

	rootCmd.AddCommand(listCmd, addCmd, enableCmd, disableCmd, deleteCmd)
}
