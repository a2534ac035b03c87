// Package export writes crate panel layouts to shop formats: PDF drawings,
// QR-coded panel labels and DXF files.
package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/cratepanel/internal/model"
)

// rgb is a fill or stroke color.
type rgb struct {
	R, G, B int
}

// roleColors gives each cleat role a fixed fill, shared with the DXF layers.
var roleColors = map[model.CleatRole]rgb{
	model.RoleEdge:          {R: 121, G: 85, B: 72},  // brown
	model.RoleIntermediate:  {R: 33, G: 150, B: 243}, // blue
	model.RoleSpliceSupport: {R: 255, G: 152, B: 0},  // orange
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// canvas maps panel coordinates (inches, origin bottom-left) to page
// coordinates (mm, origin top-left).
type canvas struct {
	scale, left, bottom float64
}

func (c canvas) x(v float64) float64 { return c.left + v*c.scale }
func (c canvas) y(v float64) float64 { return c.bottom - v*c.scale }

func (c canvas) rect(pdf *fpdf.Fpdf, r model.Rect, style string) {
	pdf.Rect(c.x(r.XMin), c.y(r.YMax), r.Width()*c.scale, r.Height()*c.scale, style)
}

// ExportPDF writes a shop drawing with one page per panel followed by a
// crate summary page.
func ExportPDF(path string, result model.CrateResult, settings model.LayoutSettings) error {
	if len(result.Layouts) == 0 {
		return fmt.Errorf("no panels to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	for i, lr := range result.Layouts {
		pdf.AddPage()
		renderPanelPage(pdf, lr, i+1)
	}

	pdf.AddPage()
	renderSummaryPage(pdf, result, settings)

	return pdf.OutputFileAndClose(path)
}

// renderPanelPage draws a single panel layout on the current PDF page.
func renderPanelPage(pdf *fpdf.Fpdf, lr model.LayoutResult, panelNum int) {
	p := lr.Panel()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Panel %d: %s (%.3f x %.3f in)", panelNum, p.Label, p.Width, p.Height)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Sheets: %d (%s) | Cleats: %d | Klimps: %d | Spacing: %s | Strategy: %s",
		lr.Cleats.Plan.SheetCount(), lr.Cleats.Plan.Orientation, len(lr.Cleats.All()),
		len(lr.Klimps.Klimps), lr.Klimps.Report.Quality, lr.Cleats.Strategy)
	if lr.Cleats.Adjustment > 0 {
		stats += fmt.Sprintf(" | Grown %.3f in", lr.Cleats.Adjustment)
	}
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	if p.Degenerate() {
		return
	}

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight
	scale := math.Min(drawWidth/p.Width, drawHeight/p.Height)
	canvasW := p.Width * scale
	canvasH := p.Height * scale
	cv := canvas{
		scale:  scale,
		left:   marginLeft + (drawWidth-canvasW)/2,
		bottom: drawAreaTop + canvasH,
	}

	// Sheathing
	pdf.SetFillColor(222, 196, 150)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	cv.rect(pdf, model.Rect{XMax: p.Width, YMax: p.Height}, "FD")

	// Neighbor panels' cleats
	pdf.SetFillColor(230, 230, 230)
	pdf.SetLineWidth(0.15)
	for _, r := range p.NeighborExclusions {
		cv.rect(pdf, r, "FD")
		drawHatchPattern(pdf, cv.x(r.XMin), cv.y(r.YMax), r.Width()*scale, r.Height()*scale)
	}

	// Cleats
	pdf.SetDrawColor(30, 30, 30)
	pdf.SetLineWidth(0.3)
	for _, c := range lr.Cleats.All() {
		col := roleColors[c.Role]
		pdf.SetFillColor(col.R, col.G, col.B)
		for _, fp := range c.Footprints() {
			cv.rect(pdf, fp, "FD")
		}
	}

	drawSplices(pdf, cv, lr.Cleats.Plan, p)
	drawKlimps(pdf, cv, lr.Klimps.Klimps)
	drawDimensionAnnotations(pdf, p, cv, canvasW, canvasH)
	drawLegend(pdf, lr, cv.bottom+7)
}

// drawSplices renders sheet seams as dashed red lines.
func drawSplices(pdf *fpdf.Fpdf, cv canvas, plan model.SheetPlan, p model.Panel) {
	pdf.SetDrawColor(200, 0, 0)
	pdf.SetLineWidth(0.25)
	pdf.SetDashPattern([]float64{1.5, 1}, 0)
	for _, sp := range plan.Splices() {
		a, b := sp.Seam(p)
		pdf.Line(cv.x(a.X), cv.y(a.Y), cv.x(b.X), cv.y(b.Y))
	}
	pdf.SetDashPattern([]float64{}, 0)
}

func drawKlimps(pdf *fpdf.Fpdf, cv canvas, klimps []model.Klimp) {
	pdf.SetFillColor(76, 175, 80)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.2)
	pdf.SetFont("Helvetica", "", 5)
	for _, k := range klimps {
		x, y := cv.x(k.Position.X), cv.y(k.Position.Y)
		pdf.Circle(x, y, 1.2, "FD")
		pdf.Text(x+1.5, y-1.5, fmt.Sprintf("%d", k.ID))
	}
}

// drawHatchPattern draws diagonal lines inside a rectangle to indicate exclusion zones.
func drawHatchPattern(pdf *fpdf.Fpdf, x, y, w, h float64) {
	pdf.SetDrawColor(150, 150, 150)
	pdf.SetLineWidth(0.15)

	spacing := 3.0
	for d := spacing; d < w+h; d += spacing {
		x1 := x + math.Max(0, d-h)
		y1 := y + math.Min(h, d)
		x2 := x + math.Min(w, d)
		y2 := y + math.Max(0, d-w)
		pdf.Line(x1, y1, x2, y2)
	}
}

// drawDimensionAnnotations adds width and height labels outside the panel.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, p model.Panel, cv canvas, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%.3f in", p.Width)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(cv.left+(canvasW-wLabelW)/2, cv.bottom+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("%.3f in", p.Height)
	midY := cv.bottom - canvasH/2
	pdf.TransformBegin()
	pdf.TransformRotate(90, cv.left-3, midY)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(cv.left-3-hLabelW/2, midY-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawLegend lists the cleat roles and the splice conflicts below the drawing.
func drawLegend(pdf *fpdf.Fpdf, lr model.LayoutResult, y float64) {
	pdf.SetFont("Helvetica", "", 7)
	pdf.SetTextColor(0, 0, 0)
	x := marginLeft
	for _, role := range []model.CleatRole{model.RoleEdge, model.RoleIntermediate, model.RoleSpliceSupport} {
		col := roleColors[role]
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(x, y+0.5, 3, 3, "F")
		pdf.SetXY(x+4, y)
		pdf.CellFormat(30, 4, role.String(), "", 0, "L", false, 0, "")
		x += 36
	}

	for _, c := range lr.Cleats.Conflicts {
		y += 4
		pdf.SetXY(marginLeft, y)
		text := fmt.Sprintf("%s splice at %.3f blocked by %s cleat: %s",
			c.Splice.Axis, c.Splice.Position, c.Blocker, c.Resolution)
		if c.Shift != 0 {
			text += fmt.Sprintf(" (shift %.3f)", c.Shift)
		}
		pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, text, "", 0, "L", false, 0, "")
	}
}

// renderSummaryPage draws the crate table and the material take-off.
func renderSummaryPage(pdf *fpdf.Fpdf, result model.CrateResult, settings model.LayoutSettings) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	title := "Crate Summary"
	if result.Name != "" {
		title += ": " + result.Name
	}
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, title, "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	colWidths := []float64{12, 45, 42, 42, 18, 18, 18, 22, 30}
	headers := []string{"#", "Panel", "Input", "Final", "Sheets", "Cleats", "Klimps", "Conflicts", "Spacing"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, lr := range result.Layouts {
		p := lr.Panel()
		rowData := []string{
			fmt.Sprintf("%d", i+1),
			p.Label,
			fmt.Sprintf("%.3f x %.3f", lr.Input.Width, lr.Input.Height),
			fmt.Sprintf("%.3f x %.3f", p.Width, p.Height),
			fmt.Sprintf("%d", lr.Cleats.Plan.SheetCount()),
			fmt.Sprintf("%d", len(lr.Cleats.All())),
			fmt.Sprintf("%d", len(lr.Klimps.Klimps)),
			fmt.Sprintf("%d", len(lr.Cleats.Conflicts)),
			lr.Klimps.Report.Quality.String(),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		xPos = marginLeft
		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	est := model.EstimateMaterial(result.Layouts, settings)
	y += 8
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Material", "", 0, "L", false, 0, "")
	y += 9

	items := []struct {
		label string
		value string
	}{
		{"Stock Sheets", fmt.Sprintf("%d of %.0f x %.0f in", est.SheetsUsed, settings.Stock.Width, settings.Stock.Height)},
		{"Sheathing Waste", fmt.Sprintf("%.1f%%", est.WastePercent)},
		{"Cleat Pieces", fmt.Sprintf("%d", est.CleatPieces)},
		{"Cleat Length", fmt.Sprintf("%.1f in (%.2f bd ft)", est.CleatLength, est.CleatBoardFeet)},
		{"Klimps", fmt.Sprintf("%d", est.KlimpCount)},
	}

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range items {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(50, 5, item.label+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(80, 5, item.value, "", 0, "L", false, 0, "")
		y += 5
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	footer := "Generated by cratepanel"
	if result.RunID != "" {
		footer += " | run " + result.RunID
	}
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, footer, "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}
