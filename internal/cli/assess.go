package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/khanglvm/duriancare/internal/capture"
)

// NewAssessCmd creates the 'assess' command that classifies a photo.
func NewAssessCmd() *cobra.Command {
	var assumeYes bool
	var noSave bool

	cmd := &cobra.Command{
		Use:   "assess <image>",
		Short: "Assess the ripeness of a durian photo",
		Long: `Capture a still from an image file, classify its ripeness and
optionally log the result to your scan history.

Supported formats: JPEG, PNG and GIF. The still is re-encoded as JPEG
before it is stored.`,
		Example: `  duriancare assess durian.jpg
  duriancare assess durian.jpg --yes      # log without asking
  duriancare assess durian.jpg --no-save  # classify only`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssess(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), args[0], assumeYes, noSave)
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Log the result without asking")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Do not log the result")

	return cmd
}

func runAssess(ctx context.Context, in io.Reader, out io.Writer, path string, assumeYes, noSave bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	p := a.newPipeline()

	still, err := p.CaptureStill(ctx, capture.FileSource{Path: path})
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	fmt.Fprintf(out, "📷 Captured %dx%d still (%s)\n", still.Width, still.Height, humanize.Bytes(uint64(len(still.Data))))
	fmt.Fprintln(out, "🔍 Scanning...")

	res, err := p.Classify(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, capture.ErrDiscarded) {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s %s  (%.1f%% confidence)\n", statusIcon(res.Status), res.Status, res.Score)
	fmt.Fprintf(out, "Variety: %s\n\n", a.cfg.Capture.Variety)
	printFactors(out, res.Status)
	fmt.Fprintln(out)

	if noSave {
		p.Reset()
		fmt.Fprintln(out, "Not logged.")
		return nil
	}

	if !newPrompter(in, out, assumeYes).ask("Log this assessment?", true) {
		p.Reset()
		fmt.Fprintln(out, "Not logged.")
		return nil
	}

	rec, err := p.Commit()
	if err != nil {
		return fmt.Errorf("failed to log assessment: %w", err)
	}

	fmt.Fprintf(out, "✓ Logged as #%d\n", rec.ID)
	return nil
}
