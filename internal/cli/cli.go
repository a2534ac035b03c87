// Package cli implements the cratepanel command-line interface.
//
// The commands lay out single panels (layout), compare the splice conflict
// strategies on one panel (compare), lay out whole crates from job files or
// panel lists (batch) and manage the user configuration (config). The CLI is
// built on cobra and logs through charmbracelet/log; --verbose switches the
// logger, and the engine it drives, to debug level.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/piwi3910/cratepanel/internal/gcode"
	"github.com/piwi3910/cratepanel/internal/model"
	"github.com/piwi3910/cratepanel/internal/project"
)

const appName = "cratepanel"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// SetVersion sets the version information displayed by --version.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// CLI holds shared state for all commands.
type CLI struct {
	Logger     *log.Logger
	configPath string
}

// New creates a new CLI instance with a logger writing to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Cratepanel lays out crate wall panels",
		Long:         `Cratepanel plans the stock sheets, cleats and klimp fasteners of shipping crate panels and writes shop drawings, labels and drilling programs for them.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("%s %s\ncommit: %s\nbuilt: %s\n", appName, version, commit, date))
	root.PersistentFlags().StringVar(&c.configPath, "config", project.DefaultConfigPath(), "config file (.toml or .json)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.compareCommand())
	root.AddCommand(c.batchCommand())
	root.AddCommand(c.configCommand())

	return root
}

// settingsFlags are the layout settings that can be overridden per run.
type settingsFlags struct {
	strategy      string
	threshold     float64
	stock         string
	cleatWidth    float64
	klimpDiameter float64
}

func (f *settingsFlags) register(cmd *cobra.Command) {
	defaults := model.DefaultSettings()
	cmd.Flags().StringVarP(&f.strategy, "strategy", "s", "", "splice conflict strategy: position, dimension, hybrid")
	cmd.Flags().Float64Var(&f.threshold, "hybrid-threshold", defaults.HybridThreshold, "largest growth the hybrid strategy accepts")
	cmd.Flags().StringVar(&f.stock, "stock", "", "stock sheet size as WIDTHxHEIGHT (e.g. 48x96)")
	cmd.Flags().Float64Var(&f.cleatWidth, "cleat-width", defaults.CleatMemberWidth, "cleat face width")
	cmd.Flags().Float64Var(&f.klimpDiameter, "klimp-diameter", defaults.KlimpDiameter, "klimp diameter")
}

// loadConfig reads the app config, falling back to defaults when missing.
func (c *CLI) loadConfig() (model.AppConfig, error) {
	cfg, err := project.LoadAppConfig(c.configPath)
	if err != nil {
		return model.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// applyFlags overrides s with every flag the user set explicitly.
func (f *settingsFlags) apply(cmd *cobra.Command, s *model.LayoutSettings, logger *log.Logger) error {
	flags := cmd.Flags()
	if flags.Changed("strategy") {
		strategy, ok := model.ParseStrategy(f.strategy)
		if !ok {
			logger.Warn("unknown strategy, using position", "strategy", f.strategy)
		}
		s.Strategy = strategy
	}
	if flags.Changed("hybrid-threshold") {
		s.HybridThreshold = f.threshold
	}
	if flags.Changed("stock") {
		w, h, err := parseSize(f.stock)
		if err != nil {
			return fmt.Errorf("--stock: %w", err)
		}
		s.Stock = model.StockSheet{Width: w, Height: h}
	}
	if flags.Changed("cleat-width") {
		s.CleatMemberWidth = f.cleatWidth
	}
	if flags.Changed("klimp-diameter") {
		s.KlimpDiameter = f.klimpDiameter
	}
	return nil
}

// parseSize parses "48x96" into its two dimensions.
func parseSize(s string) (float64, float64, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("size %q is not WIDTHxHEIGHT", s)
	}
	w, err := parseDimension(parts[0])
	if err != nil {
		return 0, 0, err
	}
	h, err := parseDimension(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

func parseDimension(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid dimension %q", s)
	}
	return v, nil
}

// gcodeFlags select and tune the pilot-hole drilling program.
type gcodeFlags struct {
	profile      string
	toolDiameter float64
	minClearance float64
}

func (f *gcodeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.profile, "profile", "", "G-code profile (default from config)")
	cmd.Flags().Float64Var(&f.toolDiameter, "tool-diameter", gcode.DefaultSettings().ToolDiameter, "pilot drill diameter")
	cmd.Flags().Float64Var(&f.minClearance, "drill-clearance", 0.25, "warn when a pilot hole comes closer than this to a cleat or edge")
}

// generator builds a G-code generator from the config, custom profiles
// next to the config file, and flags.
func (c *CLI) generator(cfg model.AppConfig, f gcodeFlags) (*gcode.Generator, error) {
	custom, err := project.LoadCustomProfiles(c.profilesPath())
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	name := f.profile
	if name == "" {
		name = cfg.DefaultGCodeProfile
	}
	settings := gcode.DefaultSettings()
	settings.ToolDiameter = f.toolDiameter
	return gcode.New(settings, gcode.GetProfile(name, custom...)), nil
}

// writeFile writes data to path, or to stdout when path is "-".
func writeFile(w io.Writer, path string, data []byte) error {
	if path == "-" {
		_, err := w.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
