package gcode

import (
	"fmt"

	"github.com/piwi3910/cratepanel/internal/model"
)

// DrillCollision is a pilot hole whose drill bit would cut into a cleat or
// run off the panel.
type DrillCollision struct {
	PanelIndex int
	PanelLabel string
	KlimpID    int
	X, Y       float64
	Role       string  // Cleat role, "panel edge" or "off panel"
	Clearance  float64 // Distance from the bit's edge to the obstacle; negative means overlap
}

// CheckDrillClearance reports holes where a bit of the configured diameter
// would come closer than minClearance to a cleat footprint or the panel edge.
// The klimp engine already keeps klimps clear for the klimp diameter; this
// catches drills wider than that.
func CheckDrillClearance(result model.CrateResult, settings Settings, minClearance float64) []DrillCollision {
	radius := settings.ToolDiameter / 2
	var collisions []DrillCollision

	for panelIdx, lr := range result.Layouts {
		panel := lr.Panel()
		edge := model.Rect{XMax: panel.Width, YMax: panel.Height}
		for _, k := range lr.Klimps.Klimps {
			p := k.Position
			report := func(role string, dist float64) {
				collisions = append(collisions, DrillCollision{
					PanelIndex: panelIdx,
					PanelLabel: panel.Label,
					KlimpID:    k.ID,
					X:          p.X,
					Y:          p.Y,
					Role:       role,
					Clearance:  dist - radius,
				})
			}

			if !edge.Contains(p, 0) {
				report("off panel", -edge.Distance(p))
				continue
			}
			if d := edgeDistance(edge, p); d-radius < minClearance {
				report("panel edge", d)
				continue
			}
			// Only report the first obstacle per hole to avoid flooding.
			for _, c := range lr.Cleats.All() {
				hit := false
				for _, fp := range c.Footprints() {
					if d := fp.Distance(p); d-radius < minClearance {
						report(c.Role.String(), d)
						hit = true
						break
					}
				}
				if hit {
					break
				}
			}
		}
	}
	return collisions
}

// edgeDistance is the distance from an interior point to the nearest side
// of the rectangle.
func edgeDistance(r model.Rect, p model.Point) float64 {
	return min(p.X-r.XMin, r.XMax-p.X, p.Y-r.YMin, r.YMax-p.Y)
}

// FormatCollisionWarnings produces human-readable warning messages.
func FormatCollisionWarnings(collisions []DrillCollision) []string {
	warnings := make([]string, 0, len(collisions))
	for _, c := range collisions {
		warnings = append(warnings, fmt.Sprintf(
			"Panel %d (%s): drill for klimp %d at (%.2f, %.2f) is too close to %s, clearance: %.3f in",
			c.PanelIndex+1, c.PanelLabel, c.KlimpID, c.X, c.Y, c.Role, c.Clearance,
		))
	}
	return warnings
}
