package engine

import (
	"github.com/piwi3910/cratepanel/internal/model"
)

// resolver produces a complete cleat layout for a panel under one strategy.
type resolver func(p model.Panel, s model.LayoutSettings) model.CleatLayout

// resolvers is the dispatch table for conflict strategies. Strategies
// missing from the table use resolvePosition.
var resolvers = map[model.Strategy]resolver{
	model.StrategyPosition:  resolvePosition,
	model.StrategyDimension: resolveDimension,
	model.StrategyHybrid:    resolveHybrid,
}

// PlaceCleats computes the sheet plan, the edge, intermediate and
// splice-support cleats of a panel, and settles clearance conflicts with
// the strategy in s. The returned layout carries the final panel, which is
// larger than p only when the dimension or hybrid strategy grew it.
func PlaceCleats(p model.Panel, s model.LayoutSettings) model.CleatLayout {
	s = s.Normalized()
	resolve, ok := resolvers[s.Strategy]
	if !ok {
		resolve = resolvePosition
	}
	return resolve(p, s)
}

// resolvePosition never grows the panel. Conflicts are accepted as laid out.
func resolvePosition(p model.Panel, s model.LayoutSettings) model.CleatLayout {
	layout, conflicts := buildCleats(p, s)
	layout.Conflicts = append(layout.Conflicts, settle(conflicts, model.ResolutionAccepted)...)
	return layout
}

// resolveDimension grows the panel by the smallest whole number of
// adjustment increments that leaves no splice within the clearance of a
// cleat edge. When the bounded search finds none the position approach is
// used instead.
func resolveDimension(p model.Panel, s model.LayoutSettings) model.CleatLayout {
	g := growForClearance(p, s)
	if !g.ok || g.total() == 0 {
		return resolvePosition(p, s)
	}
	return grownLayout(p, g, s)
}

// resolveHybrid applies the dimension adjustment only when it does not
// exceed the hybrid threshold. A non-positive threshold always means the
// position approach.
func resolveHybrid(p model.Panel, s model.LayoutSettings) model.CleatLayout {
	if s.HybridThreshold <= 0 {
		return resolvePosition(p, s)
	}
	g := growForClearance(p, s)
	if !g.ok || g.total() == 0 || g.total() > s.HybridThreshold+s.Eps() {
		return resolvePosition(p, s)
	}
	return grownLayout(p, g, s)
}

func grownLayout(original model.Panel, g growth, s model.LayoutSettings) model.CleatLayout {
	layout, _ := buildCleats(g.panel, s)
	_, before := buildCleats(original, s)
	layout.Conflicts = append(layout.Conflicts, settle(before, model.ResolutionGrown)...)
	layout.WidthGrowth = g.width
	layout.HeightGrowth = g.height
	layout.Adjustment = g.total()
	return layout
}

func settle(conflicts []clearanceConflict, r model.Resolution) []model.Conflict {
	out := make([]model.Conflict, 0, len(conflicts))
	for _, c := range conflicts {
		out = append(out, model.Conflict{Splice: c.splice, Blocker: c.blocker, Resolution: r})
	}
	return out
}

// growth is the outcome of the dimension search.
type growth struct {
	panel  model.Panel
	width  float64
	height float64
	ok     bool
}

func (g growth) total() float64 { return g.width + g.height }

// growForClearance finds the smallest growth, in whole adjustment
// increments, that leaves no splice within the clearance of a cleat edge.
// The width is searched first against the vertical splice conflicts, then
// the height against whatever conflicts remain on the widened panel. Every
// candidate is a full layout recompute, since intermediate cleats and
// splices both move as a dimension grows. Each axis is searched up to
// MaxAdjustSteps increments; ok is false when that is not enough.
func growForClearance(p model.Panel, s model.LayoutSettings) growth {
	_, conflicts := buildCleats(p, s)
	g := growth{panel: p, ok: len(conflicts) == 0}
	if g.ok {
		return g
	}

	if onAxis(conflicts, model.Vertical) {
		widen := func(k int) model.Panel {
			return p.Resized(p.Width+float64(k)*s.AdjustIncrement, p.Height)
		}
		k, ok := searchSteps(s, widen, func(c []clearanceConflict) bool { return !onAxis(c, model.Vertical) })
		if !ok {
			return growth{panel: p}
		}
		g.width = float64(k) * s.AdjustIncrement
		g.panel = widen(k)
	}

	base := g.panel
	if _, conflicts := buildCleats(base, s); len(conflicts) > 0 {
		heighten := func(k int) model.Panel {
			return base.Resized(base.Width, base.Height+float64(k)*s.AdjustIncrement)
		}
		k, ok := searchSteps(s, heighten, func(c []clearanceConflict) bool { return len(c) == 0 })
		if !ok {
			return growth{panel: p}
		}
		g.height = float64(k) * s.AdjustIncrement
		g.panel = heighten(k)
	}

	g.ok = true
	return g
}

// searchSteps returns the first k in 1..MaxAdjustSteps whose panel lays out
// with conflicts accepted by done.
func searchSteps(s model.LayoutSettings, panelAt func(k int) model.Panel, done func([]clearanceConflict) bool) (int, bool) {
	for k := 1; k <= s.MaxAdjustSteps; k++ {
		if _, conflicts := buildCleats(panelAt(k), s); done(conflicts) {
			return k, true
		}
	}
	return 0, false
}

func onAxis(conflicts []clearanceConflict, axis model.Axis) bool {
	for _, c := range conflicts {
		if c.splice.Axis == axis {
			return true
		}
	}
	return false
}
