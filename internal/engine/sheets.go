package engine

import (
	"math"

	"github.com/piwi3910/cratepanel/internal/model"
)

// sheetArrangement is one way of tiling a panel with stock sheets.
type sheetArrangement struct {
	orientation model.SheetOrientation
	sheet       model.StockSheet
	across      int
	down        int
}

func (a sheetArrangement) total() int { return a.across * a.down }

// PlanSheets decides how a width x height panel is covered with stock
// sheets and where the seams fall. Both sheet orientations are evaluated;
// the one using fewer sheets wins, and on a tie the one with fewer
// horizontal splices wins. Degenerate panels or stock produce an empty plan.
func PlanSheets(width, height float64, stock model.StockSheet, eps float64) model.SheetPlan {
	empty := model.SheetPlan{HorizontalSplices: []float64{}, VerticalSplices: []float64{}}
	if width <= 0 || height <= 0 || stock.Width <= 0 || stock.Height <= 0 {
		return empty
	}

	standard := arrange(model.OrientationStandard, stock, width, height, eps)
	rotated := arrange(model.OrientationRotated, stock.Rotated(), width, height, eps)

	best := standard
	switch {
	case rotated.total() < standard.total():
		best = rotated
	case rotated.total() == standard.total() && rotated.down < standard.down:
		best = rotated
	}

	return model.SheetPlan{
		Orientation:       best.orientation,
		SheetWidth:        best.sheet.Width,
		SheetHeight:       best.sheet.Height,
		SheetsAcross:      best.across,
		SheetsDown:        best.down,
		HorizontalSplices: SpliceCoordinates(height, best.sheet.Height, eps),
		VerticalSplices:   SpliceCoordinates(width, best.sheet.Width, eps),
	}
}

func arrange(o model.SheetOrientation, sheet model.StockSheet, width, height, eps float64) sheetArrangement {
	return sheetArrangement{
		orientation: o,
		sheet:       sheet,
		across:      sheetsAlong(width, sheet.Width, eps),
		down:        sheetsAlong(height, sheet.Height, eps),
	}
}

// sheetsAlong is ceil(length/sheet) with a tolerance so a span that is a
// hair over a whole number of sheets does not take an extra one.
func sheetsAlong(length, sheet, eps float64) int {
	if length <= 0 || sheet <= 0 {
		return 0
	}
	n := int(math.Ceil((length - eps) / sheet))
	if n < 1 {
		n = 1
	}
	return n
}

// SpliceCoordinates returns the seam positions along a span of the given
// length tiled with sheets of sheetLength. The partial (remainder) sheet is
// laid first, so the first seam sits at length-(n-1)*sheetLength and the
// following ones one sheet apart. A span that needs a single sheet has no
// seams, and seams at either end of the span are never reported.
func SpliceCoordinates(length, sheetLength, eps float64) []float64 {
	n := sheetsAlong(length, sheetLength, eps)
	if n <= 1 {
		return []float64{}
	}
	first := length - float64(n-1)*sheetLength
	splices := make([]float64, 0, n-1)
	for k := 0; k < n-1; k++ {
		s := first + float64(k)*sheetLength
		if s <= eps || s >= length-eps {
			continue
		}
		splices = append(splices, s)
	}
	return splices
}
