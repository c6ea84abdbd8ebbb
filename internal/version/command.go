package version

import (
	"fmt"

	"github.com/spf13/cobra"
)

// AttachCobraVersionCommand adds `version` to root. With --short only the
// release number is printed, which is what scripts comparing the CLI and the
// daemon need.
func AttachCobraVersionCommand(root *cobra.Command) {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show which alarm clock release this is.",
		Long: "Show the release of " + root.Name() + " with its commit, build date and platform.\n" +
			"The CLI and alarm-clockd should report the same release.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := Full()
			if short {
				info = Short()
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), info)

			return err
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "print the release number only")
	root.AddCommand(cmd)
}
