package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/khanglvm/duriancare/internal/onboarding"
	"github.com/khanglvm/duriancare/internal/version"
)

// NewInfoCmd creates the 'info' command.
func NewInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "info",
		Short:   "Show app information and preferences",
		Long:    `Show what DurianCare does, its model architecture, preferences and where data is kept.`,
		Example: `  duriancare info`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd.OutOrStdout())
		},
	}

	return cmd
}

func runInfo(out io.Writer) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Fprintln(out, "🌿 DurianCare")
	fmt.Fprintln(out, onboarding.About)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Model architecture:")
	for _, l := range onboarding.ModelArchitecture() {
		fmt.Fprintf(out, "  %-4s %s\n", l.Short, l.Name)
		fmt.Fprintf(out, "       %s\n", l.Role)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "On-device processing:")
	fmt.Fprintf(out, "  %s\n\n", onboarding.Privacy)

	fmt.Fprintln(out, "Preferences:")
	fmt.Fprintf(out, "  Haptic feedback: %s\n\n", onOff(a.cfg.Preferences.Haptic))

	storageState := "available"
	if !a.kv.Enabled() {
		storageState = "unavailable"
	}
	fmt.Fprintln(out, "Storage:")
	fmt.Fprintf(out, "  Database: %s (%s)\n", a.kv.Path(), storageState)
	fmt.Fprintf(out, "  Scans:    %d\n\n", len(a.store.Load()))

	fmt.Fprintf(out, "Version: %s\n", version.GetVersion())
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
