package cli

import (
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"

	"github.com/khanglvm/duriancare/internal/onboarding"
	"github.com/khanglvm/duriancare/internal/ripeness"
)

const recentLimit = 3

// NewHomeCmd creates the 'home' command showing the dashboard.
func NewHomeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "home",
		Short: "Show the dashboard",
		Long: `Show scan totals and the most recent assessments.

The first run also shows the onboarding walkthrough.`,
		Example: `  duriancare home`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHome(cmd.OutOrStdout())
		},
	}

	return cmd
}

func runHome(out io.Writer) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.store.Onboarded() {
		printOnboarding(out)
		if err := a.store.SetOnboarded(); err != nil {
			log.Printf("Warning: failed to save onboarding: %v", err)
		}
	}

	fmt.Fprintln(out, "🌿 DurianCare")
	fmt.Fprintln(out, onboarding.About)
	fmt.Fprintln(out)

	s := a.history.Summary(recentLimit)
	if s.Total == 0 {
		fmt.Fprintln(out, "No scans yet.")
		fmt.Fprintln(out, "Run 'duriancare assess <image>' to assess your first durian.")
		return nil
	}

	fmt.Fprintf(out, "Total scans: %d", s.Total)
	for _, st := range ripeness.Statuses {
		fmt.Fprintf(out, "   %s: %d", st, s.Counts[st])
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Recent scans:")
	for _, r := range s.Recent {
		printRecordLine(out, r)
	}
	return nil
}

func printOnboarding(out io.Writer) {
	slides := onboarding.Slides()
	for i, s := range slides {
		fmt.Fprintf(out, "[%d/%d] %s\n", i+1, len(slides), s.Title)
		fmt.Fprintf(out, "      %s\n\n", s.Body)
	}
}

// NewOnboardCmd creates the 'onboard' command replaying the walkthrough.
func NewOnboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "onboard",
		Short:   "Show the onboarding walkthrough",
		Long:    `Show the onboarding walkthrough again and mark it as seen.`,
		Example: `  duriancare onboard`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnboard(cmd.OutOrStdout())
		},
	}

	return cmd
}

func runOnboard(out io.Writer) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	printOnboarding(out)
	if err := a.store.SetOnboarded(); err != nil {
		return fmt.Errorf("failed to save onboarding: %w", err)
	}
	fmt.Fprintln(out, "✓ Ready to scan")
	return nil
}
