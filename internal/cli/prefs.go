package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/khanglvm/duriancare/internal/config"
)

// NewPrefsCmd creates the 'prefs' command group.
func NewPrefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change preferences",
		Long:  `Show preferences stored in ~/.duriancare.json, or change one with a subcommand.`,
		Example: `  duriancare prefs
  duriancare prefs haptic off`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrefsShow(cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:       "haptic <on|off>",
		Short:     "Turn haptic feedback on or off",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrefsHaptic(cmd.OutOrStdout(), args[0] == "on")
		},
	})

	return cmd
}

// loadFileConfig reads the config file without environment overrides so
// saving it does not persist them.
func loadFileConfig() (*config.Config, string, error) {
	configPath, err := config.DefaultConfigPath()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get config path: %w", err)
	}

	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, configPath, nil
}

func runPrefsShow(out io.Writer) error {
	cfg, configPath, err := loadFileConfig()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Preferences (%s):\n", configPath)
	fmt.Fprintf(out, "  haptic  %s\n", onOff(cfg.Preferences.Haptic))
	return nil
}

func runPrefsHaptic(out io.Writer, on bool) error {
	cfg, configPath, err := loadFileConfig()
	if err != nil {
		return err
	}

	cfg.Preferences.Haptic = on
	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(out, "✓ Haptic feedback %s\n", onOff(on))
	return nil
}
