package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/khanglvm/duriancare/internal/storage"
)

// NewResetCmd creates the 'reset' command that wipes all local data.
func NewResetCmd() *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Factory reset: wipe all local records",
		Long: `Permanently delete every logged scan and the onboarding state.
Preferences in ~/.duriancare.json are kept.`,
		Example: `  duriancare reset
  duriancare reset --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(cmd.InOrStdin(), cmd.OutOrStdout(), assumeYes)
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip confirmation prompt")

	return cmd
}

func runReset(in io.Reader, out io.Writer, assumeYes bool) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if !newPrompter(in, out, assumeYes).Confirm(storage.ResetPrompt) {
		fmt.Fprintln(out, "Cancelled.")
		return nil
	}

	if err := a.store.Reset(); err != nil {
		return err
	}

	fmt.Fprintln(out, "✓ All local records wiped")
	return nil
}
