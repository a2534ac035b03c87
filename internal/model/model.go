package model

import (
	"math"

	"github.com/google/uuid"
)

// Axis identifies the direction a splice or cleat runs in.
type Axis int

const (
	Horizontal Axis = iota // Runs along the panel width (constant y)
	Vertical               // Runs along the panel height (constant x)
)

func (a Axis) String() string {
	switch a {
	case Vertical:
		return "Vertical"
	default:
		return "Horizontal"
	}
}

// CleatRole classifies why a cleat exists.
type CleatRole int

const (
	RoleEdge CleatRole = iota
	RoleIntermediate
	RoleSpliceSupport
)

func (r CleatRole) String() string {
	switch r {
	case RoleIntermediate:
		return "Intermediate"
	case RoleSpliceSupport:
		return "SpliceSupport"
	default:
		return "Edge"
	}
}

// Point is a 2D coordinate on the panel face. The origin is the bottom-left
// corner of the panel, x grows along the width and y along the height.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Rect is an axis-aligned rectangle given by its bounds.
type Rect struct {
	XMin float64 `json:"xmin" yaml:"xmin"`
	XMax float64 `json:"xmax" yaml:"xmax"`
	YMin float64 `json:"ymin" yaml:"ymin"`
	YMax float64 `json:"ymax" yaml:"ymax"`
}

func (r Rect) Width() float64  { return r.XMax - r.XMin }
func (r Rect) Height() float64 { return r.YMax - r.YMin }

// Empty reports whether the rectangle has no positive area.
func (r Rect) Empty(eps float64) bool {
	return r.Width() <= eps || r.Height() <= eps
}

// Expand grows the rectangle by dx on the left and right and dy on the
// bottom and top.
func (r Rect) Expand(dx, dy float64) Rect {
	return Rect{XMin: r.XMin - dx, XMax: r.XMax + dx, YMin: r.YMin - dy, YMax: r.YMax + dy}
}

// Intersects returns true if the two rectangles overlap by more than eps
// (touching edges do not count).
func (r Rect) Intersects(o Rect, eps float64) bool {
	return r.XMin < o.XMax-eps && r.XMax > o.XMin+eps &&
		r.YMin < o.YMax-eps && r.YMax > o.YMin+eps
}

// Contains returns true if p lies inside r or on its boundary.
func (r Rect) Contains(p Point, eps float64) bool {
	return p.X >= r.XMin-eps && p.X <= r.XMax+eps && p.Y >= r.YMin-eps && p.Y <= r.YMax+eps
}

// Distance returns the Euclidean distance from p to the closest point of r.
// Points inside r are at distance zero.
func (r Rect) Distance(p Point) float64 {
	dx := math.Max(math.Max(r.XMin-p.X, 0), p.X-r.XMax)
	dy := math.Max(math.Max(r.YMin-p.Y, 0), p.Y-r.YMax)
	return math.Hypot(dx, dy)
}

// Panel is one flat face of a crate. A layout pass never mutates a panel;
// when the cleat engine grows a dimension it returns a new Panel.
type Panel struct {
	ID                 string  `json:"id" yaml:"id"`
	Label              string  `json:"label" yaml:"label"`
	Width              float64 `json:"width" yaml:"width"`
	Height             float64 `json:"height" yaml:"height"`
	SheathingThickness float64 `json:"sheathing_thickness,omitempty" yaml:"sheathing_thickness,omitempty"`
	CleatThickness     float64 `json:"cleat_thickness,omitempty" yaml:"cleat_thickness,omitempty"`
	CleatMemberWidth   float64 `json:"cleat_member_width,omitempty" yaml:"cleat_member_width,omitempty"`

	// NeighborExclusions are areas of this panel's face occupied by cleats of
	// adjoining panels (end and side panels overlap at the corners).
	NeighborExclusions []Rect `json:"neighbor_exclusions,omitempty" yaml:"neighbor_exclusions,omitempty"`
}

func NewPanel(label string, w, h float64) Panel {
	return Panel{
		ID:     uuid.New().String()[:8],
		Label:  label,
		Width:  w,
		Height: h,
	}
}

// Degenerate reports whether the panel has no usable area.
func (p Panel) Degenerate() bool {
	return p.Width <= 0 || p.Height <= 0
}

// Resized returns a copy of the panel with new dimensions.
func (p Panel) Resized(w, h float64) Panel {
	cp := p
	cp.Width = w
	cp.Height = h
	cp.NeighborExclusions = append([]Rect(nil), p.NeighborExclusions...)
	return cp
}

// StockSheet is the raw sheet material panels are built from.
type StockSheet struct {
	Width  float64 `json:"width" yaml:"width" toml:"width"`
	Height float64 `json:"height" yaml:"height" toml:"height"`
}

// Rotated returns the sheet with its axes swapped.
func (s StockSheet) Rotated() StockSheet {
	return StockSheet{Width: s.Height, Height: s.Width}
}

// SheetOrientation records which way the stock sheets were laid.
type SheetOrientation int

const (
	OrientationStandard SheetOrientation = iota // Sheet width along the panel width
	OrientationRotated                          // Sheet axes swapped
)

func (o SheetOrientation) String() string {
	if o == OrientationRotated {
		return "Rotated"
	}
	return "Standard"
}

// SheetPlan is the planner's decision for one panel.
type SheetPlan struct {
	Orientation  SheetOrientation `json:"orientation"`
	SheetWidth   float64          `json:"sheet_width"`  // Along the panel width
	SheetHeight  float64          `json:"sheet_height"` // Along the panel height
	SheetsAcross int              `json:"sheets_across"`
	SheetsDown   int              `json:"sheets_down"`

	HorizontalSplices []float64 `json:"horizontal_splices"` // y coordinates
	VerticalSplices   []float64 `json:"vertical_splices"`   // x coordinates
}

// SheetCount returns the total number of stock sheets the plan consumes.
func (sp SheetPlan) SheetCount() int {
	return sp.SheetsAcross * sp.SheetsDown
}

// Splices returns every splice of the plan, horizontal ones first.
func (sp SheetPlan) Splices() []Splice {
	out := make([]Splice, 0, len(sp.HorizontalSplices)+len(sp.VerticalSplices))
	for _, y := range sp.HorizontalSplices {
		out = append(out, Splice{Axis: Horizontal, Position: y})
	}
	for _, x := range sp.VerticalSplices {
		out = append(out, Splice{Axis: Vertical, Position: x})
	}
	return out
}

// Splice is a seam between two adjacent stock sheets. Position is measured
// along the perpendicular axis: y for horizontal splices, x for vertical ones.
type Splice struct {
	Axis     Axis    `json:"axis"`
	Position float64 `json:"position"`
}

// Seam returns the end points of the splice line across p.
func (s Splice) Seam(p Panel) (from, to Point) {
	if s.Axis == Vertical {
		return Point{X: s.Position}, Point{X: s.Position, Y: p.Height}
	}
	return Point{Y: s.Position}, Point{X: p.Width, Y: s.Position}
}

// CleatSection is a contiguous span of a cleat along its run.
type CleatSection struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (cs CleatSection) Length() float64 { return cs.End - cs.Start }

// Cleat is a reinforcing strip. Center is the centreline coordinate across
// the run (y for horizontal cleats, x for vertical ones). Sections are the
// spans along the run the cleat actually occupies.
type Cleat struct {
	Role        CleatRole      `json:"role"`
	Orientation Axis           `json:"orientation"`
	Center      float64        `json:"center"`
	Width       float64        `json:"width"`
	Sections    []CleatSection `json:"sections"`
}

// Lo and Hi are the footprint bounds across the run.
func (c Cleat) Lo() float64 { return c.Center - c.Width/2 }
func (c Cleat) Hi() float64 { return c.Center + c.Width/2 }

// Length returns the total length of all sections.
func (c Cleat) Length() float64 {
	var total float64
	for _, s := range c.Sections {
		total += s.Length()
	}
	return total
}

// Footprints returns one rectangle per section.
func (c Cleat) Footprints() []Rect {
	rects := make([]Rect, 0, len(c.Sections))
	for _, s := range c.Sections {
		if c.Orientation == Horizontal {
			rects = append(rects, Rect{XMin: s.Start, XMax: s.End, YMin: c.Lo(), YMax: c.Hi()})
		} else {
			rects = append(rects, Rect{XMin: c.Lo(), XMax: c.Hi(), YMin: s.Start, YMax: s.End})
		}
	}
	return rects
}

// Resolution describes how a splice conflict was settled.
type Resolution int

const (
	ResolutionRepositioned Resolution = iota // Support cleat slid within tolerance
	ResolutionGrown                          // Panel dimension was grown
	ResolutionAccepted                       // Conflict left in place
)

func (r Resolution) String() string {
	switch r {
	case ResolutionGrown:
		return "Grown"
	case ResolutionAccepted:
		return "Accepted"
	default:
		return "Repositioned"
	}
}

// Conflict records a splice that could not be backed by a cleat centred on it.
type Conflict struct {
	Splice     Splice     `json:"splice"`
	Blocker    CleatRole  `json:"blocker"`
	Resolution Resolution `json:"resolution"`
	Shift      float64    `json:"shift,omitempty"` // Support cleat offset from the splice
}

// CleatLayout is the cleat engine's result.
type CleatLayout struct {
	Panel      Panel      `json:"panel"` // Final panel, possibly grown
	Plan       SheetPlan  `json:"plan"`
	Strategy   Strategy   `json:"strategy"`
	Edge       []Cleat    `json:"edge"`
	Vertical   []Cleat    `json:"intermediate_vertical"`
	Support    []Cleat    `json:"splice_support"`
	Conflicts  []Conflict `json:"conflicts,omitempty"`
	Adjustment float64    `json:"adjustment"` // Total growth applied to the panel

	WidthGrowth  float64 `json:"width_growth"`
	HeightGrowth float64 `json:"height_growth"`
}

// All returns every cleat in the layout.
func (cl CleatLayout) All() []Cleat {
	out := make([]Cleat, 0, len(cl.Edge)+len(cl.Vertical)+len(cl.Support))
	out = append(out, cl.Edge...)
	out = append(out, cl.Vertical...)
	out = append(out, cl.Support...)
	return out
}

// VerticalPositions returns the centrelines of the intermediate vertical cleats.
func (cl CleatLayout) VerticalPositions() []float64 {
	out := make([]float64, len(cl.Vertical))
	for i, c := range cl.Vertical {
		out[i] = c.Center
	}
	return out
}

// Sections returns all splice-support sections in order.
func (cl CleatLayout) Sections() []CleatSection {
	var out []CleatSection
	for _, c := range cl.Support {
		out = append(out, c.Sections...)
	}
	return out
}

// ZoneSource tags what produced an exclusion zone.
type ZoneSource int

const (
	SourceEdgeCleat ZoneSource = iota
	SourceIntermediateCleat
	SourceSpliceCleat
	SourceNeighbor
)

func (s ZoneSource) String() string {
	switch s {
	case SourceIntermediateCleat:
		return "intermediate"
	case SourceSpliceCleat:
		return "splice"
	case SourceNeighbor:
		return "neighbor"
	default:
		return "edge"
	}
}

// ExclusionZone is an area where klimps may not be placed.
type ExclusionZone struct {
	Rect   Rect       `json:"rect"`
	Source ZoneSource `json:"source"`
}

// PlacementZone is an area known to be free of exclusions.
type PlacementZone struct {
	Rect   Rect    `json:"rect"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Klimp is a placed fastener.
type Klimp struct {
	ID       int   `json:"id"`
	Position Point `json:"position"`
	Zone     int   `json:"zone"` // Index into KlimpLayout.Zones
}

// Quality grades a klimp spacing report.
type Quality int

const (
	QualityNotApplicable Quality = iota
	QualityExcellent
	QualityGood
	QualityNeedsReview
)

func (q Quality) String() string {
	switch q {
	case QualityExcellent:
		return "Excellent"
	case QualityGood:
		return "Good"
	case QualityNeedsReview:
		return "Needs Review"
	default:
		return "N/A"
	}
}

// SpacingReport summarises pairwise distances between placed klimps.
type SpacingReport struct {
	Count   int     `json:"count"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Mean    float64 `json:"mean"`
	Quality Quality `json:"quality"`
}

// KlimpLayout is the klimp engine's result.
type KlimpLayout struct {
	Exclusions []ExclusionZone `json:"exclusions"`
	Zones      []PlacementZone `json:"zones"`
	Klimps     []Klimp         `json:"klimps"`
	Report     SpacingReport   `json:"report"`
}

// LayoutResult ties the three passes together for one panel.
type LayoutResult struct {
	Input  Panel       `json:"input"`
	Cleats CleatLayout `json:"cleats"`
	Klimps KlimpLayout `json:"klimps"`
}

// Panel returns the final (possibly grown) panel.
func (lr LayoutResult) Panel() Panel {
	return lr.Cleats.Panel
}

// Crate is a named set of panels laid out together.
type Crate struct {
	Name   string  `json:"name" yaml:"name"`
	Panels []Panel `json:"panels" yaml:"panels"`
}

// CrateResult holds one layout per crate panel, in input order.
type CrateResult struct {
	RunID   string         `json:"run_id"`
	Name    string         `json:"name"`
	Layouts []LayoutResult `json:"layouts"`
}
