package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/cratepanel/internal/model"
)

// segment is a line between two points, used for chaining loose LINE
// entities into closed outlines.
type segment struct {
	start model.Point
	end   model.Point
}

// ImportDXF reads panel outlines from a DXF drawing. Every closed
// LWPOLYLINE or closed chain of LINEs becomes one panel sized to its
// bounding box. Outlines that are not rectangles are imported with a warning.
func ImportDXF(path string) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var outlines [][]model.Point
	var segments []segment
	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			if len(e.Vertices) < 3 {
				result.Warnings = append(result.Warnings, "Skipped LWPOLYLINE with fewer than 3 vertices")
				continue
			}
			outline := make([]model.Point, len(e.Vertices))
			for i, v := range e.Vertices {
				outline[i] = model.Point{X: v[0], Y: v[1]}
			}
			outlines = append(outlines, outline)
		case *entity.Line:
			segments = append(segments, segment{
				start: model.Point{X: e.Start[0], Y: e.Start[1]},
				end:   model.Point{X: e.End[0], Y: e.End[1]},
			})
		}
	}
	outlines = append(outlines, chainSegments(segments, 0.01)...)

	if len(outlines) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	// Largest first, so the crate's big faces lead the list.
	sort.SliceStable(outlines, func(i, j int) bool {
		return outlineArea(outlines[i]) > outlineArea(outlines[j])
	})

	for _, outline := range outlines {
		bounds := boundingBox(outline)
		if bounds.Width() < 0.01 || bounds.Height() < 0.01 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Skipped degenerate shape (%.2f x %.2f)", bounds.Width(), bounds.Height()))
			continue
		}

		label := fmt.Sprintf("DXF Panel %d", len(result.Panels)+1)
		if area := outlineArea(outline); area < bounds.Width()*bounds.Height()*0.99 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s is not rectangular, using its %.2f x %.2f bounding box", label, bounds.Width(), bounds.Height()))
		}
		result.Panels = append(result.Panels, model.NewPanel(label, bounds.Width(), bounds.Height()))
	}

	return result
}

// chainSegments connects segments into closed outlines. Open chains are
// dropped.
func chainSegments(segs []segment, tolerance float64) [][]model.Point {
	used := make([]bool, len(segs))
	var outlines [][]model.Point

	for startIdx := range segs {
		if used[startIdx] {
			continue
		}
		chain := []model.Point{segs[startIdx].start, segs[startIdx].end}
		used[startIdx] = true

		for changed := true; changed; {
			changed = false
			tail := chain[len(chain)-1]
			for i, seg := range segs {
				if used[i] {
					continue
				}
				if pointsClose(tail, seg.start, tolerance) {
					chain = append(chain, seg.end)
				} else if pointsClose(tail, seg.end, tolerance) {
					chain = append(chain, seg.start)
				} else {
					continue
				}
				used[i] = true
				changed = true
				break
			}
		}

		if len(chain) >= 4 && pointsClose(chain[0], chain[len(chain)-1], tolerance) {
			outlines = append(outlines, chain[:len(chain)-1])
		}
	}
	return outlines
}

func pointsClose(a, b model.Point, tolerance float64) bool {
	return math.Hypot(a.X-b.X, a.Y-b.Y) <= tolerance
}

// outlineArea computes the absolute area of a polygon using the shoelace formula.
func outlineArea(o []model.Point) float64 {
	n := len(o)
	if n < 3 {
		return 0
	}
	var area float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += o[i].X*o[j].Y - o[j].X*o[i].Y
	}
	return math.Abs(area) / 2
}

func boundingBox(o []model.Point) model.Rect {
	r := model.Rect{XMin: math.Inf(1), XMax: math.Inf(-1), YMin: math.Inf(1), YMax: math.Inf(-1)}
	for _, p := range o {
		r.XMin = math.Min(r.XMin, p.X)
		r.XMax = math.Max(r.XMax, p.X)
		r.YMin = math.Min(r.YMin, p.Y)
		r.YMax = math.Max(r.YMax, p.Y)
	}
	return r
}
