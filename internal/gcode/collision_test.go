package gcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/cratepanel/internal/model"
)

func collisionLayout(klimps ...model.Point) model.CrateResult {
	panel := model.Panel{Label: "Side", Width: 40, Height: 40}
	lr := model.LayoutResult{
		Input: panel,
		Cleats: model.CleatLayout{
			Panel: panel,
			Edge: []model.Cleat{
				{Role: model.RoleEdge, Orientation: model.Horizontal, Center: 1.75, Width: 3.5,
					Sections: []model.CleatSection{{Start: 0, End: 40}}},
			},
		},
	}
	for i, p := range klimps {
		lr.Klimps.Klimps = append(lr.Klimps.Klimps, model.Klimp{ID: i + 1, Position: p})
	}
	return model.CrateResult{Layouts: []model.LayoutResult{lr}}
}

func TestCheckDrillClearance_Clear(t *testing.T) {
	result := collisionLayout(model.Point{X: 20, Y: 20})
	assert.Empty(t, CheckDrillClearance(result, DefaultSettings(), 0.5))
}

func TestCheckDrillClearance_WideBitHitsCleat(t *testing.T) {
	// 4.5 is one klimp radius plus clearance above the cleat, fine for a
	// 1" klimp but not for a 2" bit.
	result := collisionLayout(model.Point{X: 20, Y: 4.5})
	s := DefaultSettings()

	assert.Empty(t, CheckDrillClearance(result, s, 0.5))

	s.ToolDiameter = 2
	collisions := CheckDrillClearance(result, s, 0.5)
	require.Len(t, collisions, 1)
	assert.Equal(t, "Edge", collisions[0].Role)
	assert.Equal(t, 1, collisions[0].KlimpID)
	assert.InDelta(t, 0.0, collisions[0].Clearance, 1e-9)
}

func TestCheckDrillClearance_PanelEdge(t *testing.T) {
	result := collisionLayout(model.Point{X: 0.3, Y: 20})
	collisions := CheckDrillClearance(result, DefaultSettings(), 0.5)
	require.Len(t, collisions, 1)
	assert.Equal(t, "panel edge", collisions[0].Role)
	assert.InDelta(t, 0.175, collisions[0].Clearance, 1e-9)
}

func TestCheckDrillClearance_OffPanel(t *testing.T) {
	result := collisionLayout(model.Point{X: -0.5, Y: 20})
	collisions := CheckDrillClearance(result, DefaultSettings(), 0.5)
	require.Len(t, collisions, 1)
	assert.Equal(t, "off panel", collisions[0].Role)
	assert.InDelta(t, -0.625, collisions[0].Clearance, 1e-9)
}

func TestFormatCollisionWarnings(t *testing.T) {
	warnings := FormatCollisionWarnings([]DrillCollision{
		{PanelIndex: 0, PanelLabel: "Side", KlimpID: 3, X: 1, Y: 2, Role: "Edge", Clearance: -0.25},
	})
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "Panel 1 (Side)")
	assert.Contains(t, warnings[0], "klimp 3")
	assert.Contains(t, warnings[0], "-0.250")
}
