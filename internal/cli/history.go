package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/khanglvm/duriancare/internal/history"
	"github.com/khanglvm/duriancare/internal/imaging"
)

// NewHistoryCmd creates the 'history' command group.
func NewHistoryCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "history [query]",
		Aliases: []string{"ls"},
		Short:   "List past assessments",
		Long: `List logged assessments, newest first.

An optional query filters by result, date or variety (case-insensitive).`,
		Example: `  duriancare history
  duriancare history ripe
  duriancare history 10/15
  duriancare history --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			return runHistoryList(cmd.OutOrStdout(), query, jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistoryRemoveCmd())

	return cmd
}

func runHistoryList(out io.Writer, query string, jsonOutput bool) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	records := a.history.List(query)

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		if query != "" {
			fmt.Fprintf(out, "No scans match %q.\n", query)
		} else {
			fmt.Fprintln(out, "No scans yet.")
		}
		return nil
	}

	fmt.Fprintf(out, "Scan history (%d):\n\n", len(records))
	for _, r := range records {
		printRecordLine(out, r)
	}
	return nil
}

func newHistoryShowCmd() *cobra.Command {
	var exportPath string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one assessment",
		Long:  `Show the details of one assessment and optionally save its image.`,
		Example: `  duriancare history show 1760520060000
  duriancare history show 1760520060000 --export scan.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return runHistoryShow(cmd.OutOrStdout(), id, exportPath)
		},
	}

	cmd.Flags().StringVarP(&exportPath, "export", "e", "", "Save the scan image to this file")

	return cmd
}

func runHistoryShow(out io.Writer, id int64, exportPath string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.history.Get(id)
	if err != nil {
		return err
	}

	printRecord(out, rec)

	if exportPath == "" {
		return nil
	}

	still, err := imaging.ParseDataURL(rec.Image)
	if err != nil {
		return fmt.Errorf("failed to read scan image: %w", err)
	}
	if filepath.Ext(exportPath) == "" {
		exportPath += still.Extension()
	}
	if err := os.WriteFile(exportPath, still.Data, 0644); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}

	fmt.Fprintf(out, "\n✓ Image saved to %s\n", exportPath)
	return nil
}

func newHistoryRemoveCmd() *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete assessments",
		Long:    `Permanently delete one or more assessments after confirmation.`,
		Example: `  duriancare history rm 1760520060000
  duriancare history rm 1760520060000 1760520122000 --yes`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := parseID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			return runHistoryRemove(cmd.InOrStdin(), cmd.OutOrStdout(), ids, assumeYes)
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip confirmation prompt")

	return cmd
}

func runHistoryRemove(in io.Reader, out io.Writer, ids []int64, assumeYes bool) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	confirm := newPrompter(in, out, assumeYes)

	if len(ids) == 1 {
		err := a.history.DeleteOne(ids[0], confirm)
		if errors.Is(err, history.ErrDeclined) {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Deleted scan %d\n", ids[0])
		return nil
	}

	for _, id := range ids {
		if !a.history.IsSelected(id) {
			a.history.ToggleSelect(id)
		}
	}

	n, err := a.history.DeleteSelection(confirm)
	if errors.Is(err, history.ErrDeclined) {
		fmt.Fprintln(out, "Cancelled.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "✓ Deleted %d scan(s)\n", n)
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid scan id %q", s)
	}
	return id, nil
}
