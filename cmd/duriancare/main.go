/*
Package main is the entry point for the duriancare CLI.

duriancare assesses the ripeness of Puyat durian from a photo and keeps a
local history of past assessments.

Usage:
  duriancare [command]

Available Commands:
  home        Show the dashboard
  assess      Assess the ripeness of a durian photo
  history     List past assessments
  info        Show app information and preferences
  prefs       Show or change preferences
  reset       Factory reset: wipe all local records
  onboard     Show the onboarding walkthrough
  serve       Run the local HTTP API
  version     Show version information
  help        Help about any command

Examples:
  # Assess a photo and log the result
  duriancare assess durian.jpg

  # Find ripe scans
  duriancare history ripe

  # Serve the API for the mobile front end
  duriancare serve
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/khanglvm/duriancare/internal/cli"
	"github.com/khanglvm/duriancare/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "duriancare",
		Short: "Durian ripeness assessment for Puyat growers",
		Long: `duriancare assesses the ripeness of Puyat durian from a single photo
using a hybrid CNN-ViT model and keeps a local history of your scans.

Results are Ripe, Unripe or Overripe with a confidence score. Nothing
leaves your device: records live in a local database under ~/.duriancare.`,
		Version:      version.GetVersion(),
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cli.NewHomeCmd())
	rootCmd.AddCommand(cli.NewAssessCmd())
	rootCmd.AddCommand(cli.NewHistoryCmd())
	rootCmd.AddCommand(cli.NewInfoCmd())
	rootCmd.AddCommand(cli.NewPrefsCmd())
	rootCmd.AddCommand(cli.NewResetCmd())
	rootCmd.AddCommand(cli.NewOnboardCmd())
	rootCmd.AddCommand(cli.NewServeCmd())
	rootCmd.AddCommand(cli.NewVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
