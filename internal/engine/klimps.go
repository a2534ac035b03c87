package engine

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/piwi3910/cratepanel/internal/model"
)

// KlimpInput is everything the klimp engine needs: the final (possibly
// grown) panel and every cleat laid on it.
type KlimpInput struct {
	Panel    model.Panel
	Cleats   []model.Cleat
	Settings model.LayoutSettings
}

func panelRect(p model.Panel) model.Rect {
	return model.Rect{XMin: 0, XMax: p.Width, YMin: 0, YMax: p.Height}
}

func clip(r, bounds model.Rect) model.Rect {
	return model.Rect{
		XMin: math.Max(r.XMin, bounds.XMin),
		XMax: math.Min(r.XMax, bounds.XMax),
		YMin: math.Max(r.YMin, bounds.YMin),
		YMax: math.Min(r.YMax, bounds.YMax),
	}
}

func sourceOf(role model.CleatRole) model.ZoneSource {
	switch role {
	case model.RoleIntermediate:
		return model.SourceIntermediateCleat
	case model.RoleSpliceSupport:
		return model.SourceSpliceCleat
	default:
		return model.SourceEdgeCleat
	}
}

// ExclusionZones returns one zone per cleat section footprint and one per
// neighbour exclusion, each grown by the cleat clearance plus the klimp
// radius so that a klimp centre outside every zone keeps its whole body
// clear. Zones are clipped to the panel.
func ExclusionZones(in KlimpInput) []model.ExclusionZone {
	zones := []model.ExclusionZone{}
	if in.Panel.Degenerate() {
		return zones
	}
	eps := in.Settings.Eps()
	margin := in.Settings.KlimpCleatClearance + in.Settings.KlimpDiameter/2
	bounds := panelRect(in.Panel)

	add := func(r model.Rect, src model.ZoneSource) {
		r = clip(r.Expand(margin, margin), bounds)
		if !r.Empty(eps) {
			zones = append(zones, model.ExclusionZone{Rect: r, Source: src})
		}
	}
	for _, c := range in.Cleats {
		for _, fp := range c.Footprints() {
			add(fp, sourceOf(c.Role))
		}
	}
	for _, r := range in.Panel.NeighborExclusions {
		add(r, model.SourceNeighbor)
	}
	return zones
}

// PlacementZones subtracts the exclusions from the panel inset by the edge
// clearance and drops leftovers narrower than half the minimum klimp spacing
// in either direction.
func PlacementZones(in KlimpInput, exclusions []model.ExclusionZone) []model.PlacementZone {
	zones := []model.PlacementZone{}
	if in.Panel.Degenerate() {
		return zones
	}
	s := in.Settings
	eps := s.Eps()
	inset := s.KlimpEdgeClearance + s.KlimpDiameter/2
	base := model.Rect{
		XMin: inset,
		XMax: in.Panel.Width - inset,
		YMin: inset,
		YMax: in.Panel.Height - inset,
	}

	minSide := s.KlimpMinSpacing / 2
	for _, r := range subtractExclusions(base, exclusions, eps) {
		if r.Width() < minSide-eps || r.Height() < minSide-eps {
			continue
		}
		zones = append(zones, model.PlacementZone{Rect: r, Width: r.Width(), Height: r.Height()})
	}
	return zones
}

// FillZone lays a grid of candidate klimp positions over a zone.
func FillZone(zone model.PlacementZone, s model.LayoutSettings) []model.Point {
	s = s.Normalized()
	xs := axisPositions(zone.Rect.XMin, zone.Rect.XMax, s)
	ys := axisPositions(zone.Rect.YMin, zone.Rect.YMax, s)
	points := make([]model.Point, 0, len(xs)*len(ys))
	for _, y := range ys {
		for _, x := range xs {
			points = append(points, model.Point{X: x, Y: y})
		}
	}
	return points
}

// axisPositions spreads klimps along [lo, hi]. A span shorter than the
// minimum spacing takes a single klimp at its middle. Otherwise the count
// starts from the target spacing and is nudged until the realised spacing
// lies within the minimum and maximum.
func axisPositions(lo, hi float64, s model.LayoutSettings) []float64 {
	eps := s.Eps()
	dim := hi - lo
	if dim < 0 {
		return nil
	}
	if dim < s.KlimpMinSpacing-eps || s.KlimpTargetSpacing <= 0 {
		return []float64{lo + dim/2}
	}

	n := int(math.Round(dim/s.KlimpTargetSpacing)) + 1
	if n < 2 {
		n = 2
	}
	for dim/float64(n-1) > s.KlimpMaxSpacing+eps && dim/float64(n) >= s.KlimpMinSpacing-eps {
		n++
	}
	for n > 2 && dim/float64(n-1) < s.KlimpMinSpacing-eps {
		n--
	}

	step := dim / float64(n-1)
	positions := make([]float64, n)
	for i := range positions {
		positions[i] = lo + float64(i)*step
	}
	return positions
}

// DeduplicateKlimps sorts candidates by y then x and keeps each one only if
// it is at least minSpacing from every klimp already kept. IDs are assigned
// 1..n in the kept order. The scan is sequential; its result depends on the
// order.
func DeduplicateKlimps(candidates []model.Klimp, minSpacing, eps float64) []model.Klimp {
	sorted := make([]model.Klimp, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Position, sorted[j].Position
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})

	kept := make([]model.Klimp, 0, len(sorted))
	for _, c := range sorted {
		ok := true
		for _, k := range kept {
			if distance(c.Position, k.Position) < minSpacing-eps {
				ok = false
				break
			}
		}
		if ok {
			c.ID = len(kept) + 1
			kept = append(kept, c)
		}
	}
	return kept
}

func distance(a, b model.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// pairwiseDistances returns the distance between every pair of klimps.
func pairwiseDistances(klimps []model.Klimp) []float64 {
	n := len(klimps)
	if n < 2 {
		return nil
	}
	d := make([]float64, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d = append(d, distance(klimps[i].Position, klimps[j].Position))
		}
	}
	return d
}

// SpacingReport grades the pairwise distances of the placed klimps.
func SpacingReport(klimps []model.Klimp, s model.LayoutSettings) model.SpacingReport {
	report := model.SpacingReport{Count: len(klimps), Quality: model.QualityNotApplicable}
	d := pairwiseDistances(klimps)
	if len(d) == 0 {
		return report
	}

	eps := s.Eps()
	report.Min = floats.Min(d)
	report.Max = floats.Max(d)
	report.Mean = stat.Mean(d, nil)

	minOK := report.Min >= s.KlimpMinSpacing-eps
	maxOK := report.Max <= s.KlimpMaxSpacing+eps
	switch {
	case minOK && maxOK:
		report.Quality = model.QualityExcellent
	case minOK:
		report.Quality = model.QualityGood
	default:
		report.Quality = model.QualityNeedsReview
	}
	return report
}

// PlaceKlimps runs the whole klimp pass: exclusions, placement zones,
// per-zone fill, global de-duplication and the spacing report.
func PlaceKlimps(in KlimpInput) model.KlimpLayout {
	in.Settings = in.Settings.Normalized()
	exclusions := ExclusionZones(in)
	zones := PlacementZones(in, exclusions)

	var candidates []model.Klimp
	for i, z := range zones {
		for _, pt := range FillZone(z, in.Settings) {
			candidates = append(candidates, model.Klimp{Position: pt, Zone: i})
		}
	}

	klimps := DeduplicateKlimps(candidates, in.Settings.KlimpMinSpacing, in.Settings.Eps())
	return model.KlimpLayout{
		Exclusions: exclusions,
		Zones:      zones,
		Klimps:     klimps,
		Report:     SpacingReport(klimps, in.Settings),
	}
}
