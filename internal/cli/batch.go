package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/piwi3910/cratepanel/internal/engine"
	"github.com/piwi3910/cratepanel/internal/export"
	"github.com/piwi3910/cratepanel/internal/importer"
	"github.com/piwi3910/cratepanel/internal/model"
	"github.com/piwi3910/cratepanel/internal/project"
)

// recentJobsLimit bounds the recent job list kept in the config.
const recentJobsLimit = 10

// batchCommand lays out every panel of a crate.
func (c *CLI) batchCommand() *cobra.Command {
	var (
		settings    settingsFlags
		out         outputFlags
		drill       gcodeFlags
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "batch INPUT",
		Short: "Lay out all panels of a crate",
		Long: `Lay out all panels of a crate.

INPUT is a crate job (.yaml, .yml or .json) or a panel list (.csv, .xlsx or
.dxf). Job files may override the strategy, stock sheet and cleat width;
command-line flags override both the job and the config file. Panels are laid
out concurrently and reported in input order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			input := args[0]

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			s := model.DefaultSettings()
			cfg.ApplyToSettings(&s)

			crate, err := loadCrate(input, &s, logger)
			if err != nil {
				return err
			}
			if err := settings.apply(cmd, &s, logger); err != nil {
				return err
			}

			limit := cfg.Concurrency
			if cmd.Flags().Changed("concurrency") {
				limit = concurrency
			}

			p := newProgress(logger)
			result, err := engine.LayoutCrate(ctx, s, crate, engine.CrateOptions{
				Concurrency: limit,
				Options:     []engine.Option{engine.WithLogger(logger)},
			})
			if err != nil {
				return err
			}
			p.done(fmt.Sprintf("Laid out %d panels", len(result.Layouts)))

			if err := c.writeBatchOutputs(cmd.OutOrStdout(), result, s, cfg, out, drill); err != nil {
				return err
			}
			c.rememberJob(input, cfg, logger)
			return nil
		},
	}

	settings.register(cmd)
	out.register(cmd, "write one DXF drawing per panel into this directory", "write one drilling program per panel into this directory")
	drill.register(cmd)
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", 0, "panels laid out at once (0 = one per CPU)")

	return cmd
}

// loadCrate reads a crate job or imports a panel list. Job overrides are
// applied to s.
func loadCrate(path string, s *model.LayoutSettings, logger *log.Logger) (model.Crate, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		job, err := project.LoadCrateJob(path)
		if err != nil {
			return model.Crate{}, err
		}
		if !job.ApplyToSettings(s) {
			logger.Warn("unknown strategy in job, using position", "strategy", job.Strategy)
		}
		return job.Crate(), nil
	}

	imported := importer.Import(path)
	for _, w := range imported.Warnings {
		logger.Debug(w, "file", path)
	}
	for _, e := range imported.Errors {
		logger.Warn(e, "file", path)
	}
	if len(imported.Panels) == 0 {
		return model.Crate{}, fmt.Errorf("%s: no panels imported", path)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return model.Crate{Name: name, Panels: imported.Panels}, nil
}

func (c *CLI) writeBatchOutputs(w io.Writer, result model.CrateResult, s model.LayoutSettings, cfg model.AppConfig, out outputFlags, drill gcodeFlags) error {
	if out.json == "-" {
		return writeJSON(w, out.json, result)
	}

	printCrate(w, result, s)

	if out.json != "" {
		if err := writeJSON(w, out.json, result); err != nil {
			return err
		}
		printFile(w, out.json)
	}
	if out.dxf != "" {
		paths, err := export.ExportCrateDXF(out.dxf, result, s)
		if err != nil {
			return err
		}
		for _, path := range paths {
			printFile(w, path)
		}
	}
	if err := writeDocuments(w, result, s, out); err != nil {
		return err
	}
	if out.gcode != "" {
		gen, err := c.generator(cfg, drill)
		if err != nil {
			return err
		}
		warnDrillClearance(w, result, gen.Settings, drill.minClearance)
		for i, code := range gen.GenerateCrate(result) {
			name := strings.TrimSuffix(export.DXFFileName(i, result.Layouts[i].Panel()), ".dxf") + ".nc"
			path := filepath.Join(out.gcode, name)
			if err := writeFile(w, path, []byte(code)); err != nil {
				return fmt.Errorf("write gcode: %w", err)
			}
			printFile(w, path)
		}
	}
	return nil
}

// rememberJob records the input in the recent job list when a config file
// exists. A failure to save is logged, not returned.
func (c *CLI) rememberJob(input string, cfg model.AppConfig, logger *log.Logger) {
	if _, err := os.Stat(c.configPath); err != nil {
		return
	}
	abs, err := filepath.Abs(input)
	if err != nil {
		abs = input
	}
	project.AddRecentJob(&cfg, abs, recentJobsLimit)
	if err := project.SaveAppConfig(c.configPath, cfg); err != nil {
		logger.Warn("could not update recent jobs", "err", err)
	}
}

// printCrate prints a per-panel table and the crate material take-off.
func printCrate(w io.Writer, result model.CrateResult, s model.LayoutSettings) {
	printTitle(w, "%s", result.Name)

	rows := make([][]string, 0, len(result.Layouts))
	for i, lr := range result.Layouts {
		p := lr.Panel()
		accepted := 0
		for _, conflict := range lr.Cleats.Conflicts {
			if conflict.Resolution == model.ResolutionAccepted {
				accepted++
			}
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			p.Label,
			fmt.Sprintf("%.3f x %.3f", p.Width, p.Height),
			fmt.Sprintf("%d", lr.Cleats.Plan.SheetCount()),
			fmt.Sprintf("%d", len(lr.Cleats.All())),
			fmt.Sprintf("%d", len(lr.Klimps.Klimps)),
			fmt.Sprintf("%d/%d", accepted, len(lr.Cleats.Conflicts)),
			lr.Klimps.Report.Quality.String(),
		})
	}
	printTable(w, []string{"#", "Panel", "Size", "Sheets", "Cleats", "Klimps", "Accepted", "Spacing"}, rows)

	est := model.EstimateMaterial(result.Layouts, s)
	printKeyValue(w, "Stock sheets", fmt.Sprintf("%d (%.1f%% waste)", est.SheetsUsed, est.WastePercent))
	printKeyValue(w, "Cleats", fmt.Sprintf("%d pieces, %.1f linear, %.2f bd ft", est.CleatPieces, est.CleatLength, est.CleatBoardFeet))
	printKeyValue(w, "Klimps", fmt.Sprintf("%d", est.KlimpCount))
	printSuccess(w, "Run %s", result.RunID)
}
