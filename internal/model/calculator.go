package model

// MaterialEstimate holds the material take-off for one or more panel layouts.
type MaterialEstimate struct {
	Panels          int     `json:"panels"`
	SheetsUsed      int     `json:"sheets_used"`      // Whole stock sheets consumed
	SheathingArea   float64 `json:"sheathing_area"`   // Panel face area (sq in)
	StockArea       float64 `json:"stock_area"`       // Area of the sheets consumed (sq in)
	WastePercent    float64 `json:"waste_percent"`    // Stock area not in any panel
	CleatLength     float64 `json:"cleat_length"`     // Total linear length of all cleat sections (in)
	CleatBoardFeet  float64 `json:"cleat_board_feet"` // Cleat volume in board feet
	CleatPieces     int     `json:"cleat_pieces"`     // Number of cleat sections to cut
	KlimpCount      int     `json:"klimp_count"`
	SheathingVolume float64 `json:"sheathing_volume"` // cu in
}

// cubicInchesPerBoardFoot is 12" x 12" x 1".
const cubicInchesPerBoardFoot = 144.0

// EstimateMaterial computes the take-off for a set of layouts. Panels with
// zero or negative dimensions contribute nothing.
func EstimateMaterial(layouts []LayoutResult, settings LayoutSettings) MaterialEstimate {
	var est MaterialEstimate
	stockArea := settings.Stock.Width * settings.Stock.Height

	for _, lr := range layouts {
		p := lr.Panel()
		est.Panels++
		if p.Degenerate() {
			continue
		}
		ps := settings.ForPanel(p)

		est.SheetsUsed += lr.Cleats.Plan.SheetCount()
		est.SheathingArea += p.Width * p.Height
		est.SheathingVolume += p.Width * p.Height * ps.SheathingThickness

		for _, c := range lr.Cleats.All() {
			length := c.Length()
			est.CleatLength += length
			est.CleatPieces += len(c.Sections)
			est.CleatBoardFeet += length * c.Width * ps.CleatThickness / cubicInchesPerBoardFoot
		}
		est.KlimpCount += len(lr.Klimps.Klimps)
	}

	est.StockArea = float64(est.SheetsUsed) * stockArea
	if est.StockArea > 0 {
		est.WastePercent = (est.StockArea - est.SheathingArea) / est.StockArea * 100.0
	}
	return est
}
