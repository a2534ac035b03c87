package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piwi3910/cratepanel/internal/engine"
	"github.com/piwi3910/cratepanel/internal/export"
	"github.com/piwi3910/cratepanel/internal/gcode"
	"github.com/piwi3910/cratepanel/internal/model"
)

// outputFlags name the files a layout run writes.
type outputFlags struct {
	json   string
	dxf    string
	pdf    string
	labels string
	gcode  string
}

func (f *outputFlags) register(cmd *cobra.Command, dxfHelp, gcodeHelp string) {
	cmd.Flags().StringVar(&f.json, "json", "", "write the layout as JSON (- for stdout)")
	cmd.Flags().StringVar(&f.dxf, "dxf", "", dxfHelp)
	cmd.Flags().StringVar(&f.pdf, "pdf", "", "write a PDF shop drawing")
	cmd.Flags().StringVar(&f.labels, "labels", "", "write QR panel labels as PDF")
	cmd.Flags().StringVar(&f.gcode, "gcode", "", gcodeHelp)
}

// layoutCommand creates the layout command for a single panel.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		label    string
		settings settingsFlags
		out      outputFlags
		drill    gcodeFlags
	)

	cmd := &cobra.Command{
		Use:   "layout WIDTH HEIGHT",
		Short: "Lay out one crate panel",
		Long: `Lay out one crate panel.

The layout command plans the stock sheets of a WIDTH x HEIGHT panel, places
edge, intermediate and splice-support cleats, resolves splice conflicts with
the chosen strategy and fills the free face with klimps.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := parseDimension(args[0])
			if err != nil {
				return err
			}
			h, err := parseDimension(args[1])
			if err != nil {
				return err
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			s := model.DefaultSettings()
			cfg.ApplyToSettings(&s)
			if err := settings.apply(cmd, &s, c.Logger); err != nil {
				return err
			}

			return c.runLayout(cmd.Context(), cmd.OutOrStdout(), model.NewPanel(label, w, h), s, cfg, out, drill)
		},
	}

	cmd.Flags().StringVarP(&label, "label", "l", "Panel", "panel label")
	settings.register(cmd)
	out.register(cmd, "write a DXF drawing", "write a pilot-hole drilling program")
	drill.register(cmd)

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, w io.Writer, panel model.Panel, s model.LayoutSettings, cfg model.AppConfig, out outputFlags, drill gcodeFlags) error {
	logger := loggerFromContext(ctx)

	result, err := engine.New(s, engine.WithLogger(logger)).Layout(panel)
	if err != nil {
		return fmt.Errorf("layout %s: %w", panel.Label, err)
	}
	crate := model.CrateResult{Name: panel.Label, Layouts: []model.LayoutResult{result}}

	if out.json == "-" {
		return writeJSON(w, out.json, result)
	}

	printLayout(w, result)

	if out.json != "" {
		if err := writeJSON(w, out.json, result); err != nil {
			return err
		}
		printFile(w, out.json)
	}
	if out.dxf != "" {
		if err := export.ExportDXF(out.dxf, result, s); err != nil {
			return fmt.Errorf("write dxf: %w", err)
		}
		printFile(w, out.dxf)
	}
	if err := writeDocuments(w, crate, s, out); err != nil {
		return err
	}
	if out.gcode != "" {
		gen, err := c.generator(cfg, drill)
		if err != nil {
			return err
		}
		warnDrillClearance(w, crate, gen.Settings, drill.minClearance)
		code := gen.GeneratePanel(result, 1)
		if err := writeFile(w, out.gcode, []byte(code)); err != nil {
			return fmt.Errorf("write gcode: %w", err)
		}
		printFile(w, out.gcode)
		printProgram(w, code)
	}
	return nil
}

// writeDocuments writes the PDF drawing and labels when requested.
func writeDocuments(w io.Writer, result model.CrateResult, s model.LayoutSettings, out outputFlags) error {
	if out.pdf != "" {
		if err := export.ExportPDF(out.pdf, result, s); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		printFile(w, out.pdf)
	}
	if out.labels != "" {
		if err := export.ExportLabels(out.labels, result); err != nil {
			return fmt.Errorf("write labels: %w", err)
		}
		printFile(w, out.labels)
	}
	return nil
}

func warnDrillClearance(w io.Writer, result model.CrateResult, settings gcode.Settings, minClearance float64) {
	for _, msg := range gcode.FormatCollisionWarnings(gcode.CheckDrillClearance(result, settings, minClearance)) {
		printWarning(w, "%s", msg)
	}
}

// printProgram reads a generated program back and prints what it drills.
func printProgram(w io.Writer, code string) {
	sum := gcode.Summarize(code)
	printKeyValue(w, "Program", fmt.Sprintf("%d holes, %d plunges, %.3f deep, %.1f rapid travel", len(sum.Holes), sum.Plunges, sum.MaxDepth, sum.RapidDistance))
}

func writeJSON(w io.Writer, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	if err := writeFile(w, path, append(data, '\n')); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// printLayout prints the headline numbers of one panel layout.
func printLayout(w io.Writer, lr model.LayoutResult) {
	p := lr.Panel()
	plan := lr.Cleats.Plan

	printTitle(w, "%s", p.Label)
	printKeyValue(w, "Panel", fmt.Sprintf("%.3f x %.3f", p.Width, p.Height))
	if lr.Cleats.Adjustment > 0 {
		printKeyValue(w, "Grown", fmt.Sprintf("+%.3f wide, +%.3f high", lr.Cleats.WidthGrowth, lr.Cleats.HeightGrowth))
	}
	printKeyValue(w, "Sheets", fmt.Sprintf("%d (%d x %d, %s)", plan.SheetCount(), plan.SheetsAcross, plan.SheetsDown, plan.Orientation))
	cleats := fmt.Sprintf("%d edge, %d intermediate, %d splice", len(lr.Cleats.Edge), len(lr.Cleats.Vertical), len(lr.Cleats.Support))
	if n := len(lr.Cleats.Sections()); n > len(lr.Cleats.Support) {
		cleats += fmt.Sprintf(" in %d sections", n)
	}
	printKeyValue(w, "Cleats", cleats)
	if xs := lr.Cleats.VerticalPositions(); len(xs) > 0 {
		at := make([]string, len(xs))
		for i, x := range xs {
			at[i] = fmt.Sprintf("%.3f", x)
		}
		printKeyValue(w, "Intermediate at", strings.Join(at, ", "))
	}
	report := lr.Klimps.Report
	if report.Count > 1 {
		printKeyValue(w, "Klimps", fmt.Sprintf("%d (spacing %.2f to %.2f, %s)", report.Count, report.Min, report.Max, report.Quality))
	} else {
		printKeyValue(w, "Klimps", fmt.Sprintf("%d (%s)", report.Count, report.Quality))
	}
	for _, conflict := range lr.Cleats.Conflicts {
		if conflict.Resolution == model.ResolutionAccepted {
			printWarning(w, "%s splice at %.3f blocked by %s cleat, accepted", conflict.Splice.Axis, conflict.Splice.Position, conflict.Blocker)
		}
	}
}
