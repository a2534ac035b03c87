package engine

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/piwi3910/cratepanel/internal/model"
)

// Layouter runs the sheet, cleat and klimp passes for panels.
type Layouter struct {
	Settings model.LayoutSettings
	logger   *log.Logger
}

// Option configures a Layouter.
type Option func(*Layouter)

// WithLogger sets the logger used for debug tracing of layout passes.
func WithLogger(l *log.Logger) Option {
	return func(lo *Layouter) {
		if l != nil {
			lo.logger = l
		}
	}
}

func New(settings model.LayoutSettings, opts ...Option) *Layouter {
	lo := &Layouter{Settings: settings, logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(lo)
	}
	return lo
}

// Layout lays out one panel. Non-finite settings or panel values fail with
// model.ErrInvalidInput; zero or negative dimensions give an empty layout.
func (lo *Layouter) Layout(panel model.Panel) (model.LayoutResult, error) {
	if err := lo.Settings.Validate(); err != nil {
		return model.LayoutResult{}, fmt.Errorf("settings: %w", err)
	}
	if err := model.ValidatePanel(panel); err != nil {
		return model.LayoutResult{}, err
	}

	s := lo.Settings.ForPanel(panel).Normalized()
	cleats := PlaceCleats(panel, s)
	lo.logger.Debug("cleats placed",
		"panel", panel.Label,
		"orientation", cleats.Plan.Orientation,
		"sheets", cleats.Plan.SheetCount(),
		"intermediate", len(cleats.Vertical),
		"support", len(cleats.Support),
		"conflicts", len(cleats.Conflicts),
	)
	for _, c := range cleats.Conflicts {
		lo.logger.Debug("splice conflict",
			"panel", panel.Label,
			"axis", c.Splice.Axis,
			"at", c.Splice.Position,
			"blocker", c.Blocker,
			"resolution", c.Resolution,
		)
	}
	if cleats.Adjustment > 0 {
		lo.logger.Debug("panel grown",
			"panel", panel.Label,
			"strategy", s.Strategy,
			"width", cleats.Panel.Width,
			"height", cleats.Panel.Height,
		)
	}

	klimps := PlaceKlimps(KlimpInput{Panel: cleats.Panel, Cleats: cleats.All(), Settings: s})
	lo.logger.Debug("klimps placed",
		"panel", panel.Label,
		"exclusions", len(klimps.Exclusions),
		"zones", len(klimps.Zones),
		"klimps", len(klimps.Klimps),
		"quality", klimps.Report.Quality,
	)

	return model.LayoutResult{Input: panel, Cleats: cleats, Klimps: klimps}, nil
}
