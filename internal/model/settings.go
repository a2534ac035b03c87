package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Strategy selects how a splice that sits too close to an existing cleat
// edge is resolved.
type Strategy int

const (
	// StrategyPosition never grows the panel. Conflicts that cannot be
	// absorbed by sliding the support cleat are accepted. It is the default.
	StrategyPosition Strategy = iota
	// StrategyDimension grows the panel by the smallest increment that
	// restores clearance.
	StrategyDimension
	// StrategyHybrid grows the panel only when the growth stays at or below
	// LayoutSettings.HybridThreshold.
	StrategyHybrid
)

var strategyNames = map[Strategy]string{
	StrategyPosition:  "position",
	StrategyDimension: "dimension",
	StrategyHybrid:    "hybrid",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return strategyNames[StrategyPosition]
}

// Strategies returns every strategy in declaration order.
func Strategies() []Strategy {
	return []Strategy{StrategyPosition, StrategyDimension, StrategyHybrid}
}

// ParseStrategy maps a name to a Strategy. Unknown names map to
// StrategyPosition with ok=false; callers decide whether to warn.
func ParseStrategy(name string) (Strategy, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for s, sn := range strategyNames {
		if sn == n {
			return s, true
		}
	}
	return StrategyPosition, false
}

func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText never fails: unknown names fall back to StrategyPosition.
func (s *Strategy) UnmarshalText(text []byte) error {
	*s, _ = ParseStrategy(string(text))
	return nil
}

// ErrInvalidInput is returned when a caller passes values that are not
// finite numbers. Zero or negative dimensions are not invalid; they produce
// empty layouts.
var ErrInvalidInput = errors.New("invalid input")

// LayoutSettings holds every tunable of a layout pass. Nothing in the engine
// reads configuration from anywhere else.
type LayoutSettings struct {
	// Sheet material
	Stock              StockSheet `json:"stock" toml:"stock"`
	SheathingThickness float64    `json:"sheathing_thickness" toml:"sheathing_thickness"`

	// Cleats
	CleatMemberWidth float64 `json:"cleat_member_width" toml:"cleat_member_width"` // Face width of a cleat
	CleatThickness   float64 `json:"cleat_thickness" toml:"cleat_thickness"`
	MaxCleatSpacing  float64 `json:"max_cleat_spacing" toml:"max_cleat_spacing"` // Max centreline spacing of intermediate cleats
	SpliceClearance  float64 `json:"splice_clearance" toml:"splice_clearance"`   // Min distance from a splice to a cleat edge

	// Conflict resolution
	Strategy        Strategy `json:"strategy" toml:"strategy"`
	HybridThreshold float64  `json:"hybrid_threshold" toml:"hybrid_threshold"` // Max growth hybrid accepts
	AdjustIncrement float64  `json:"adjust_increment" toml:"adjust_increment"` // Growth is rounded up to this
	MaxAdjustSteps  int      `json:"max_adjust_steps" toml:"max_adjust_steps"` // Increments searched per axis

	// Klimps
	KlimpDiameter       float64 `json:"klimp_diameter" toml:"klimp_diameter"`
	KlimpMinSpacing     float64 `json:"klimp_min_spacing" toml:"klimp_min_spacing"`
	KlimpMaxSpacing     float64 `json:"klimp_max_spacing" toml:"klimp_max_spacing"`
	KlimpTargetSpacing  float64 `json:"klimp_target_spacing" toml:"klimp_target_spacing"`
	KlimpEdgeClearance  float64 `json:"klimp_edge_clearance" toml:"klimp_edge_clearance"`
	KlimpCleatClearance float64 `json:"klimp_cleat_clearance" toml:"klimp_cleat_clearance"`

	Epsilon float64 `json:"epsilon" toml:"epsilon"`
}

func DefaultSettings() LayoutSettings {
	return LayoutSettings{
		Stock:               StockSheet{Width: 48, Height: 96},
		SheathingThickness:  0.25,
		CleatMemberWidth:    3.5,
		CleatThickness:      0.75,
		MaxCleatSpacing:     24,
		SpliceClearance:     0.5,
		Strategy:            StrategyPosition,
		HybridThreshold:     2.0,
		AdjustIncrement:     0.25,
		MaxAdjustSteps:      192,
		KlimpDiameter:       1.0,
		KlimpMinSpacing:     16,
		KlimpMaxSpacing:     24,
		KlimpTargetSpacing:  20,
		KlimpEdgeClearance:  1.0,
		KlimpCleatClearance: 0.5,
		Epsilon:             1e-6,
	}
}

// ForPanel returns a copy of the settings with the panel's own material
// overrides applied.
func (s LayoutSettings) ForPanel(p Panel) LayoutSettings {
	if p.CleatMemberWidth > 0 {
		s.CleatMemberWidth = p.CleatMemberWidth
	}
	if p.CleatThickness > 0 {
		s.CleatThickness = p.CleatThickness
	}
	if p.SheathingThickness > 0 {
		s.SheathingThickness = p.SheathingThickness
	}
	return s
}

// Normalized replaces tuning values the engine cannot work with by their
// defaults: a non-positive klimp diameter, adjust increment or step bound,
// and klimp spacings no larger than the klimp diameter. A maximum spacing
// below the minimum is raised to the minimum.
func (s LayoutSettings) Normalized() LayoutSettings {
	d := DefaultSettings()
	if s.KlimpDiameter <= 0 {
		s.KlimpDiameter = d.KlimpDiameter
	}
	if s.KlimpMinSpacing <= s.KlimpDiameter {
		s.KlimpMinSpacing = d.KlimpMinSpacing
	}
	if s.KlimpMaxSpacing <= s.KlimpDiameter {
		s.KlimpMaxSpacing = d.KlimpMaxSpacing
	}
	if s.KlimpMaxSpacing < s.KlimpMinSpacing {
		s.KlimpMaxSpacing = s.KlimpMinSpacing
	}
	if s.KlimpTargetSpacing <= s.KlimpDiameter {
		s.KlimpTargetSpacing = d.KlimpTargetSpacing
	}
	if s.AdjustIncrement <= 0 {
		s.AdjustIncrement = d.AdjustIncrement
	}
	if s.MaxAdjustSteps <= 0 {
		s.MaxAdjustSteps = d.MaxAdjustSteps
	}
	return s
}

// Eps returns the comparison tolerance, never zero.
func (s LayoutSettings) Eps() float64 {
	if s.Epsilon > 0 {
		return s.Epsilon
	}
	return 1e-9
}

// Validate rejects non-finite numbers. It is the only precondition check of
// the engine; everything else degrades to empty results.
func (s LayoutSettings) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"stock.width", s.Stock.Width},
		{"stock.height", s.Stock.Height},
		{"sheathing_thickness", s.SheathingThickness},
		{"cleat_member_width", s.CleatMemberWidth},
		{"cleat_thickness", s.CleatThickness},
		{"max_cleat_spacing", s.MaxCleatSpacing},
		{"splice_clearance", s.SpliceClearance},
		{"hybrid_threshold", s.HybridThreshold},
		{"adjust_increment", s.AdjustIncrement},
		{"klimp_diameter", s.KlimpDiameter},
		{"klimp_min_spacing", s.KlimpMinSpacing},
		{"klimp_max_spacing", s.KlimpMaxSpacing},
		{"klimp_target_spacing", s.KlimpTargetSpacing},
		{"klimp_edge_clearance", s.KlimpEdgeClearance},
		{"klimp_cleat_clearance", s.KlimpCleatClearance},
		{"epsilon", s.Epsilon},
	}
	for _, f := range fields {
		if !finite(f.v) {
			return fmt.Errorf("%w: %s is %v", ErrInvalidInput, f.name, f.v)
		}
	}
	return nil
}

// ValidatePanel rejects panels with non-finite dimensions or exclusions.
func ValidatePanel(p Panel) error {
	dims := map[string]float64{
		"width":               p.Width,
		"height":              p.Height,
		"sheathing_thickness": p.SheathingThickness,
		"cleat_thickness":     p.CleatThickness,
		"cleat_member_width":  p.CleatMemberWidth,
	}
	for _, name := range []string{"width", "height", "sheathing_thickness", "cleat_thickness", "cleat_member_width"} {
		if !finite(dims[name]) {
			return fmt.Errorf("%w: panel %q %s is %v", ErrInvalidInput, p.Label, name, dims[name])
		}
	}
	for i, r := range p.NeighborExclusions {
		if !finite(r.XMin) || !finite(r.XMax) || !finite(r.YMin) || !finite(r.YMax) {
			return fmt.Errorf("%w: panel %q neighbor exclusion %d is not finite", ErrInvalidInput, p.Label, i)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
