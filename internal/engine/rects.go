package engine

import (
	"math"

	"github.com/piwi3910/cratepanel/internal/model"
)

// subtractExclusions folds every exclusion over the starting set of free
// rectangles. Each step maps the current list to a new list; neither the
// input slice nor any intermediate list is modified.
func subtractExclusions(base model.Rect, exclusions []model.ExclusionZone, eps float64) []model.Rect {
	if base.Empty(eps) {
		return nil
	}
	free := []model.Rect{base}
	for _, excl := range exclusions {
		free = subtractFromAll(free, excl.Rect, eps)
	}
	return free
}

// subtractFromAll removes sub from every rectangle in rects.
func subtractFromAll(rects []model.Rect, sub model.Rect, eps float64) []model.Rect {
	next := make([]model.Rect, 0, len(rects))
	for _, r := range rects {
		next = append(next, subtractRect(r, sub, eps)...)
	}
	return next
}

// subtractRect subtracts one rectangle from another, returning up to 4
// rectangles: full-height strips left and right of the overlap, and the
// pieces below and above it between those strips. Pieces without positive
// area are dropped.
func subtractRect(base, sub model.Rect, eps float64) []model.Rect {
	if !base.Intersects(sub, eps) {
		return []model.Rect{base}
	}

	// The intersection area
	in := model.Rect{
		XMin: math.Max(base.XMin, sub.XMin),
		XMax: math.Min(base.XMax, sub.XMax),
		YMin: math.Max(base.YMin, sub.YMin),
		YMax: math.Min(base.YMax, sub.YMax),
	}

	candidates := []model.Rect{
		// Left
		{XMin: base.XMin, XMax: in.XMin, YMin: base.YMin, YMax: base.YMax},
		// Right
		{XMin: in.XMax, XMax: base.XMax, YMin: base.YMin, YMax: base.YMax},
		// Below
		{XMin: in.XMin, XMax: in.XMax, YMin: base.YMin, YMax: in.YMin},
		// Above
		{XMin: in.XMin, XMax: in.XMax, YMin: in.YMax, YMax: base.YMax},
	}

	result := make([]model.Rect, 0, len(candidates))
	for _, c := range candidates {
		if !c.Empty(eps) {
			result = append(result, c)
		}
	}
	return result
}
