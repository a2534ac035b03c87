package model

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in     string
		want   Strategy
		wantOK bool
	}{
		{"position", StrategyPosition, true},
		{"dimension", StrategyDimension, true},
		{" Hybrid ", StrategyHybrid, true},
		{"", StrategyPosition, false},
		{"grow-everything", StrategyPosition, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseStrategy(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestStrategy_UnknownValueStringsAsPosition(t *testing.T) {
	assert.Equal(t, "position", Strategy(42).String())
}

func TestStrategy_JSONUsesNames(t *testing.T) {
	data, err := json.Marshal(struct {
		S Strategy `json:"s"`
	}{StrategyHybrid})
	require.NoError(t, err)
	assert.JSONEq(t, `{"s":"hybrid"}`, string(data))

	var back struct {
		S Strategy `json:"s"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"s":"no-such-thing"}`), &back))
	assert.Equal(t, StrategyPosition, back.S, "unknown names fall back to position")
}

func TestRect_Intersects(t *testing.T) {
	a := Rect{XMin: 0, XMax: 10, YMin: 0, YMax: 10}
	assert.True(t, a.Intersects(Rect{XMin: 5, XMax: 15, YMin: 5, YMax: 15}, 1e-9))
	assert.False(t, a.Intersects(Rect{XMin: 10, XMax: 20, YMin: 0, YMax: 10}, 1e-9), "touching is not overlapping")
	assert.False(t, a.Intersects(Rect{XMin: 11, XMax: 20, YMin: 11, YMax: 20}, 1e-9))
}

func TestRect_Distance(t *testing.T) {
	r := Rect{XMin: 0, XMax: 10, YMin: 0, YMax: 10}
	assert.Equal(t, 0.0, r.Distance(Point{X: 5, Y: 5}))
	assert.InDelta(t, 3.0, r.Distance(Point{X: 13, Y: 5}), 1e-12)
	assert.InDelta(t, 5.0, r.Distance(Point{X: 13, Y: 14}), 1e-12)
}

func TestCleat_FootprintsFollowOrientation(t *testing.T) {
	h := Cleat{Orientation: Horizontal, Center: 10, Width: 4, Sections: []CleatSection{{Start: 2, End: 8}}}
	assert.Equal(t, []Rect{{XMin: 2, XMax: 8, YMin: 8, YMax: 12}}, h.Footprints())

	v := Cleat{Orientation: Vertical, Center: 10, Width: 4, Sections: []CleatSection{{Start: 2, End: 8}, {Start: 9, End: 20}}}
	fp := v.Footprints()
	require.Len(t, fp, 2)
	assert.Equal(t, Rect{XMin: 8, XMax: 12, YMin: 9, YMax: 20}, fp[1])
	assert.Equal(t, 17.0, v.Length())
}

func TestPanel_ResizedDoesNotAliasExclusions(t *testing.T) {
	p := NewPanel("Side", 40, 50)
	p.NeighborExclusions = []Rect{{XMin: 0, XMax: 1, YMin: 0, YMax: 1}}

	grown := p.Resized(40, 51)
	grown.NeighborExclusions[0].XMax = 99

	assert.Equal(t, 1.0, p.NeighborExclusions[0].XMax)
	assert.Equal(t, 50.0, p.Height)
	assert.Equal(t, p.ID, grown.ID)
	assert.Len(t, p.ID, 8)
}

func TestSheetPlan_Splices(t *testing.T) {
	sp := SheetPlan{HorizontalSplices: []float64{4}, VerticalSplices: []float64{12, 60}}
	assert.Equal(t, []Splice{
		{Axis: Horizontal, Position: 4},
		{Axis: Vertical, Position: 12},
		{Axis: Vertical, Position: 60},
	}, sp.Splices())
}

func TestSplice_Seam(t *testing.T) {
	p := Panel{Width: 96, Height: 48}

	from, to := Splice{Axis: Horizontal, Position: 4}.Seam(p)
	assert.Equal(t, Point{Y: 4}, from)
	assert.Equal(t, Point{X: 96, Y: 4}, to)

	from, to = Splice{Axis: Vertical, Position: 12}.Seam(p)
	assert.Equal(t, Point{X: 12}, from)
	assert.Equal(t, Point{X: 12, Y: 48}, to)
}

func TestValidatePanel(t *testing.T) {
	assert.NoError(t, ValidatePanel(Panel{Width: 0, Height: -5}), "degenerate is not invalid")

	err := ValidatePanel(Panel{Label: "bad", Width: math.NaN(), Height: 10})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	err = ValidatePanel(Panel{Width: 10, Height: 10, NeighborExclusions: []Rect{{XMax: math.Inf(1)}}})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestLayoutSettings_Validate(t *testing.T) {
	s := DefaultSettings()
	assert.NoError(t, s.Validate())

	s.KlimpMinSpacing = math.Inf(-1)
	err := s.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "klimp_min_spacing")
}

func TestLayoutSettings_Normalized(t *testing.T) {
	d := DefaultSettings()
	assert.Equal(t, d, d.Normalized())

	s := DefaultSettings()
	s.KlimpDiameter = 0
	s.KlimpMinSpacing = 1e-12
	s.KlimpMaxSpacing = 0
	s.KlimpTargetSpacing = -1
	s.AdjustIncrement = 0
	s.MaxAdjustSteps = -1
	n := s.Normalized()
	assert.Equal(t, d.KlimpDiameter, n.KlimpDiameter)
	assert.Equal(t, d.KlimpMinSpacing, n.KlimpMinSpacing)
	assert.Equal(t, d.KlimpMaxSpacing, n.KlimpMaxSpacing)
	assert.Equal(t, d.KlimpTargetSpacing, n.KlimpTargetSpacing)
	assert.Equal(t, d.AdjustIncrement, n.AdjustIncrement)
	assert.Equal(t, d.MaxAdjustSteps, n.MaxAdjustSteps)
	assert.Zero(t, s.AdjustIncrement, "receiver untouched")

	s = DefaultSettings()
	s.KlimpMaxSpacing = 10
	assert.Equal(t, s.KlimpMinSpacing, s.Normalized().KlimpMaxSpacing, "max raised to min")

	s = DefaultSettings()
	s.KlimpDiameter = 2
	s.KlimpMinSpacing = 2
	assert.Equal(t, d.KlimpMinSpacing, s.Normalized().KlimpMinSpacing, "spacing must exceed the diameter")
}

func TestLayoutSettings_ForPanel(t *testing.T) {
	s := DefaultSettings()
	p := Panel{CleatMemberWidth: 5.5}
	ps := s.ForPanel(p)
	assert.Equal(t, 5.5, ps.CleatMemberWidth)
	assert.Equal(t, s.CleatThickness, ps.CleatThickness)
	assert.Equal(t, 3.5, s.CleatMemberWidth, "original settings untouched")
}
