package engine

import (
	"github.com/piwi3910/cratepanel/internal/model"
)

// StrategyComparison holds the layout and headline numbers for one
// conflict strategy.
type StrategyComparison struct {
	Strategy   model.Strategy
	Result     model.LayoutResult
	Width      float64 // Final panel width
	Height     float64 // Final panel height
	Adjustment float64
	Conflicts  int
	Accepted   int // Conflicts left unresolved
	Cleats     int
	Klimps     int
	Quality    model.Quality
	Estimate   model.MaterialEstimate
}

// CompareStrategies lays the panel out under every strategy, in the order
// returned by model.Strategies, so they can be compared side by side.
func CompareStrategies(settings model.LayoutSettings, panel model.Panel, opts ...Option) ([]StrategyComparison, error) {
	results := make([]StrategyComparison, 0, len(model.Strategies()))

	for _, strategy := range model.Strategies() {
		s := settings
		s.Strategy = strategy
		result, err := New(s, opts...).Layout(panel)
		if err != nil {
			return nil, err
		}

		accepted := 0
		for _, c := range result.Cleats.Conflicts {
			if c.Resolution == model.ResolutionAccepted {
				accepted++
			}
		}

		final := result.Panel()
		results = append(results, StrategyComparison{
			Strategy:   strategy,
			Result:     result,
			Width:      final.Width,
			Height:     final.Height,
			Adjustment: result.Cleats.Adjustment,
			Conflicts:  len(result.Cleats.Conflicts),
			Accepted:   accepted,
			Cleats:     len(result.Cleats.All()),
			Klimps:     len(result.Klimps.Klimps),
			Quality:    result.Klimps.Report.Quality,
			Estimate:   model.EstimateMaterial([]model.LayoutResult{result}, s),
		})
	}

	return results, nil
}
