package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/khanglvm/duriancare/internal/version"
)

// NewVersionCmd creates the 'version' command
func NewVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display the current version, commit hash, and build date.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(cmd.OutOrStdout())
		},
	}

	return cmd
}

func runVersion(out io.Writer) error {
	b := version.Current()
	fmt.Fprintf(out, "Version:  %s\n", b.Version)
	fmt.Fprintf(out, "Commit:   %s\n", b.Commit)
	fmt.Fprintf(out, "Built:    %s\n", b.Date)
	if b.Dev() {
		fmt.Fprintln(out, "(development build)")
	}
	return nil
}
