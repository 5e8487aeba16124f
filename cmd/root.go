package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mj1618/atspi-inspector/internal/config"
	"github.com/mj1618/atspi-inspector/internal/output"
	"github.com/mj1618/atspi-inspector/internal/platform"
	"github.com/mj1618/atspi-inspector/internal/platform/fixture"
	"github.com/mj1618/atspi-inspector/internal/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "atspi-inspector",
	Short: "Inspect the accessibility tree of Linux desktop applications",
	Long: `Browse the AT-SPI2 accessibility tree of running applications: list the
windows on the accessibility bus, build a window's tree, find the deepest
object under a point and render an outline overlay of the whole hierarchy.

Use --fixture to inspect a tree saved as YAML, JSON or TOML instead of the
live bus.`,
	SilenceUsage: true,
}

// cfg is the loaded configuration, available to every command's RunE.
var cfg = config.DefaultConfig()

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version.String()
	rootCmd.PersistentFlags().String("format", "yaml", "Output format: yaml, json")
	rootCmd.PersistentFlags().Bool("pretty", false, "Pretty-print JSON output")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (default from config, else warn)")
	rootCmd.PersistentFlags().String("config", "", "Config file (default $XDG_CONFIG_HOME/atspi-inspector/config.toml)")
	rootCmd.PersistentFlags().String("fixture", "", "Read the tree from a YAML/JSON/TOML fixture instead of the bus")
	rootCmd.PersistentFlags().String("bus-address", "", "Accessibility bus address (default: discovered, or $AT_SPI_BUS_ADDRESS)")
	rootCmd.PersistentPreRunE = setup
}

// setup loads the config, applies flag overrides and configures logging and
// output.
func setup(cmd *cobra.Command, args []string) error {
	path, _ := rootCmd.PersistentFlags().GetString("config")
	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg = loaded

	flags := rootCmd.PersistentFlags()
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("fixture") {
		cfg.Fixture, _ = flags.GetString("fixture")
	}
	if flags.Changed("bus-address") {
		cfg.BusAddress, _ = flags.GetString("bus-address")
	}

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	format, _ := flags.GetString("format")
	if output.OutputFormat, err = output.ParseFormat(format); err != nil {
		return err
	}
	output.PrettyOutput, _ = flags.GetBool("pretty")
	return nil
}

// newProvider returns the fixture provider when --fixture (or the config)
// names one, otherwise the live AT-SPI2 provider.
func newProvider() (*platform.Provider, error) {
	if cfg.Fixture != "" {
		client, err := fixture.Load(cfg.Fixture)
		if err != nil {
			return nil, fmt.Errorf("load fixture: %w", err)
		}
		slog.Debug("using fixture", "path", cfg.Fixture)
		return client.Provider(), nil
	}
	return platform.NewProvider(platform.Options{BusAddress: cfg.BusAddress})
}
