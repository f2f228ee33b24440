package cli

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/khanglvm/duriancare/internal/ripeness"
	"github.com/khanglvm/duriancare/internal/storage"
)

func statusIcon(s ripeness.Status) string {
	switch s {
	case ripeness.Ripe:
		return "🟢"
	case ripeness.Unripe:
		return "🟡"
	case ripeness.Overripe:
		return "🔴"
	default:
		return "⚪"
	}
}

func recordWhen(r storage.Record) string {
	if r.Time == "" {
		return r.Date
	}
	return r.Date + " " + r.Time
}

// printRecordLine prints a one-line summary of r.
func printRecordLine(out io.Writer, r storage.Record) {
	fmt.Fprintf(out, "  %s %-8s %5.1f%%  %-20s %s  [%d]\n",
		statusIcon(r.Result), r.Result, r.Confidence, recordWhen(r),
		humanize.Time(r.CreatedAt()), r.ID)
}

// printFactors prints the ripeness factor breakdown for status.
func printFactors(out io.Writer, status ripeness.Status) {
	fmt.Fprintln(out, "Ripeness factors:")
	for _, f := range ripeness.Factors(status) {
		fmt.Fprintf(out, "  %-18s %3d%%\n", f.Name, f.Percent)
	}
}

// printRecord prints the detail view of r.
func printRecord(out io.Writer, r storage.Record) {
	fmt.Fprintf(out, "%s %s\n", statusIcon(r.Result), r.Result)
	fmt.Fprintf(out, "  ID:         %d\n", r.ID)
	fmt.Fprintf(out, "  Variety:    %s\n", r.Variety)
	fmt.Fprintf(out, "  Confidence: %.1f%%\n", r.Confidence)
	fmt.Fprintf(out, "  Scanned:    %s (%s)\n", recordWhen(r), humanize.Time(r.CreatedAt()))
	fmt.Fprintf(out, "  Image:      %s\n", humanize.Bytes(uint64(len(r.Image))))
	fmt.Fprintln(out)
	printFactors(out, r.Result)
}
