package engine

import (
	"math"
	"sort"

	"github.com/piwi3910/cratepanel/internal/model"
)

// band is the footprint of a cleat across its run.
type band struct {
	lo, hi float64
	role   model.CleatRole
}

func (b band) center() float64 { return (b.lo + b.hi) / 2 }

func bandOf(c model.Cleat) band {
	return band{lo: c.Lo(), hi: c.Hi(), role: c.Role}
}

// clearanceConflict is a splice closer than the splice clearance to the
// edge of a parallel cleat, or one that no support cleat can be fitted to.
type clearanceConflict struct {
	splice  model.Splice
	edge    float64
	blocker model.CleatRole
}

// IntermediatePositions returns the centrelines of the intermediate cleats
// needed across a dimension. The span between the two edge-cleat centrelines
// is divided into the fewest equal bays no wider than maxSpacing; positions
// are measured from the panel origin.
func IntermediatePositions(dimension, memberWidth, maxSpacing, eps float64) []float64 {
	if dimension <= 0 || memberWidth <= 0 || maxSpacing <= 0 {
		return []float64{}
	}
	span := dimension - memberWidth
	if span <= maxSpacing+eps {
		return []float64{}
	}
	bays := int(math.Ceil((span - eps) / maxSpacing))
	spacing := span / float64(bays)
	if spacing <= memberWidth+eps {
		// Cleats would touch or overlap their neighbours.
		return []float64{}
	}
	positions := make([]float64, 0, bays-1)
	for k := 1; k < bays; k++ {
		positions = append(positions, memberWidth/2+float64(k)*spacing)
	}
	return positions
}

// frameFits reports whether a panel can take a full edge-cleat frame.
func frameFits(p model.Panel, m, eps float64) bool {
	return !p.Degenerate() && m > 0 && p.Width >= 2*m-eps && p.Height >= 2*m-eps
}

// edgeCleats builds the perimeter frame. Top and bottom cleats run the full
// width; left and right cleats fit between them.
func edgeCleats(w, h, m, eps float64) []model.Cleat {
	cleats := []model.Cleat{
		horizontalCleat(model.RoleEdge, m/2, m, []model.CleatSection{{Start: 0, End: w}}),
		horizontalCleat(model.RoleEdge, h-m/2, m, []model.CleatSection{{Start: 0, End: w}}),
	}
	for _, x := range []float64{m / 2, w - m/2} {
		if c, ok := verticalCleat(model.RoleEdge, x, m, h, eps); ok {
			cleats = append(cleats, c)
		}
	}
	return cleats
}

func horizontalCleat(role model.CleatRole, y, m float64, sections []model.CleatSection) model.Cleat {
	return model.Cleat{Role: role, Orientation: model.Horizontal, Center: y, Width: m, Sections: sections}
}

// verticalCleat builds a cleat running between the top and bottom edge
// cleats. It reports false when there is no room between them.
func verticalCleat(role model.CleatRole, x, m, h, eps float64) (model.Cleat, bool) {
	sections := appendSection(nil, m, h-m, eps)
	if len(sections) == 0 {
		return model.Cleat{}, false
	}
	return model.Cleat{Role: role, Orientation: model.Vertical, Center: x, Width: m, Sections: sections}, true
}

func appendSection(sections []model.CleatSection, start, end, eps float64) []model.CleatSection {
	if end-start <= eps {
		return sections
	}
	return append(sections, model.CleatSection{Start: start, End: end})
}

// spanSections splits the run [start, end] into the gaps between the
// footprints of the crossing cleats. Gaps of zero or negative length are
// dropped.
func spanSections(start, end float64, crossing []model.Cleat, eps float64) []model.CleatSection {
	sorted := make([]model.Cleat, len(crossing))
	copy(sorted, crossing)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Lo() < sorted[j].Lo() })

	var sections []model.CleatSection
	cursor := start
	for _, c := range sorted {
		if c.Hi() <= start+eps || c.Lo() >= end-eps {
			continue
		}
		sections = appendSection(sections, cursor, c.Lo(), eps)
		cursor = math.Max(cursor, c.Hi())
	}
	return appendSection(sections, cursor, end, eps)
}

// spliceBacking is the decision for a single splice.
type spliceBacking struct {
	covered  bool // An existing cleat already backs the splice
	place    bool // A support cleat goes at center
	center   float64
	conflict *clearanceConflict
}

// backSplice decides how the splice at s is backed given the parallel cleat
// footprints. A support cleat is centred on the splice when possible; when
// that would overlap a neighbour it slides to abut it. Splices closer than
// clr to a cleat edge are reported as conflicts but still get the abutting
// support cleat when it fits inside [0, limit].
func backSplice(s float64, bands []band, m, clr, limit, eps float64) spliceBacking {
	for _, b := range bands {
		if s >= b.lo+clr-eps && s <= b.hi-clr+eps {
			return spliceBacking{covered: true}
		}
	}

	var res spliceBacking
	for _, b := range bands {
		for _, e := range [2]float64{b.lo, b.hi} {
			if res.conflict == nil && math.Abs(s-e) < clr-eps {
				res.conflict = &clearanceConflict{edge: e, blocker: b.role}
			}
		}
	}

	center := s
	if b, hit := firstOverlap(center, m, bands, eps); hit {
		if b.center() <= s {
			center = b.hi + m/2
		} else {
			center = b.lo - m/2
		}
		_, again := firstOverlap(center, m, bands, eps)
		outside := center-m/2 < -eps || center+m/2 > limit+eps
		if again || outside {
			if res.conflict == nil {
				edge := b.hi
				if b.center() > s {
					edge = b.lo
				}
				res.conflict = &clearanceConflict{edge: edge, blocker: b.role}
			}
			return res
		}
	}

	res.place = true
	res.center = center
	return res
}

func firstOverlap(center, m float64, bands []band, eps float64) (band, bool) {
	lo, hi := center-m/2, center+m/2
	for _, b := range bands {
		if lo < b.hi-eps && hi > b.lo+eps {
			return b, true
		}
	}
	return band{}, false
}

// buildCleats lays out every cleat of the panel as-is, without growing it.
// Splices that slid their support cleat are recorded as repositioned
// conflicts on the layout; clearance conflicts are returned for the caller's
// strategy to settle.
func buildCleats(p model.Panel, s model.LayoutSettings) (model.CleatLayout, []clearanceConflict) {
	eps := s.Eps()
	m := s.CleatMemberWidth
	layout := model.CleatLayout{
		Panel:    p,
		Plan:     PlanSheets(p.Width, p.Height, s.Stock, eps),
		Strategy: s.Strategy,
	}
	if !frameFits(p, m, eps) {
		return layout, nil
	}
	w, h := p.Width, p.Height
	clr := s.SpliceClearance

	layout.Edge = edgeCleats(w, h, m, eps)

	var vbands, hbands []band
	for _, c := range layout.Edge {
		if c.Orientation == model.Vertical {
			vbands = append(vbands, bandOf(c))
		} else {
			hbands = append(hbands, bandOf(c))
		}
	}

	for _, x := range IntermediatePositions(w, m, s.MaxCleatSpacing, eps) {
		if c, ok := verticalCleat(model.RoleIntermediate, x, m, h, eps); ok {
			layout.Vertical = append(layout.Vertical, c)
			vbands = append(vbands, bandOf(c))
		}
	}

	var conflicts []clearanceConflict
	note := func(sp model.Splice, b spliceBacking) {
		if b.conflict != nil {
			c := *b.conflict
			c.splice = sp
			conflicts = append(conflicts, c)
			return
		}
		if b.place && math.Abs(b.center-sp.Position) > eps {
			layout.Conflicts = append(layout.Conflicts, model.Conflict{
				Splice:     sp,
				Blocker:    blockerAt(b.center, m, sp.Position, vbands, hbands, sp.Axis, eps),
				Resolution: model.ResolutionRepositioned,
				Shift:      b.center - sp.Position,
			})
		}
	}

	// Vertical splices go first: their support cleats split the horizontal ones.
	var verticalSupport []model.Cleat
	for _, x := range layout.Plan.VerticalSplices {
		sp := model.Splice{Axis: model.Vertical, Position: x}
		b := backSplice(x, vbands, m, clr, w, eps)
		note(sp, b)
		if !b.place {
			continue
		}
		c, ok := verticalCleat(model.RoleSpliceSupport, b.center, m, h, eps)
		if !ok {
			conflicts = append(conflicts, clearanceConflict{splice: sp, edge: x, blocker: model.RoleEdge})
			continue
		}
		verticalSupport = append(verticalSupport, c)
		vbands = append(vbands, bandOf(c))
	}

	crossing := append(append([]model.Cleat(nil), layout.Vertical...), verticalSupport...)
	var horizontalSupport []model.Cleat
	for _, y := range layout.Plan.HorizontalSplices {
		sp := model.Splice{Axis: model.Horizontal, Position: y}
		b := backSplice(y, hbands, m, clr, h, eps)
		note(sp, b)
		if !b.place {
			continue
		}
		sections := spanSections(m, w-m, crossing, eps)
		if len(sections) == 0 {
			// Nowhere left to run a support cleat.
			conflicts = append(conflicts, clearanceConflict{splice: sp, edge: y, blocker: model.RoleEdge})
			continue
		}
		c := horizontalCleat(model.RoleSpliceSupport, b.center, m, sections)
		horizontalSupport = append(horizontalSupport, c)
		hbands = append(hbands, bandOf(c))
	}

	layout.Support = append(verticalSupport, horizontalSupport...)
	return layout, conflicts
}

// blockerAt finds the role of the cleat a slid support cleat now abuts.
func blockerAt(center, m, s float64, vbands, hbands []band, axis model.Axis, eps float64) model.CleatRole {
	bands := hbands
	if axis == model.Vertical {
		bands = vbands
	}
	edge := center - m/2
	if center < s {
		edge = center + m/2
	}
	for _, b := range bands {
		if math.Abs(b.hi-edge) <= eps || math.Abs(b.lo-edge) <= eps {
			return b.role
		}
	}
	return model.RoleEdge
}
