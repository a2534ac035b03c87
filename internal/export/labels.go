package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/cratepanel/internal/model"
)

// LabelInfo holds the data encoded into each panel label's QR code.
type LabelInfo struct {
	RunID      string  `json:"run,omitempty"`
	PanelIndex int     `json:"panel"`
	PanelID    string  `json:"id"`
	Label      string  `json:"label"`
	Width      float64 `json:"width_in"`
	Height     float64 `json:"height_in"`
	Grown      bool    `json:"grown,omitempty"`
	Sheets     int     `json:"sheets"`
	Cleats     int     `json:"cleats"`
	Klimps     int     `json:"klimps"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
const (
	labelMarginTop  = 12.7 // mm
	labelMarginLeft = 4.8  // mm
	labelWidth      = 66.7 // mm per label
	labelHeight     = 25.4 // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // mm
	labelPadding    = 2.0  // mm
)

// CollectLabelInfos extracts one label per panel layout.
func CollectLabelInfos(result model.CrateResult) []LabelInfo {
	labels := make([]LabelInfo, 0, len(result.Layouts))
	for i, lr := range result.Layouts {
		p := lr.Panel()
		labels = append(labels, LabelInfo{
			RunID:      result.RunID,
			PanelIndex: i + 1,
			PanelID:    p.ID,
			Label:      p.Label,
			Width:      p.Width,
			Height:     p.Height,
			Grown:      lr.Cleats.Adjustment > 0,
			Sheets:     lr.Cleats.Plan.SheetCount(),
			Cleats:     len(lr.Cleats.All()),
			Klimps:     len(lr.Klimps.Klimps),
		})
	}
	return labels
}

// ExportLabels generates a PDF of QR-coded labels, one per panel, on an
// Avery 5160 sheet (3 columns x 10 rows on US Letter).
func ExportLabels(path string, result model.CrateResult) error {
	labels := CollectLabelInfos(result)
	if len(labels) == 0 {
		return fmt.Errorf("no panels to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		x := labelMarginLeft + float64(posOnPage%labelCols)*labelWidth
		y := labelMarginTop + float64(posOnPage/labelCols)*labelHeight

		if err := renderLabel(pdf, x, y, label); err != nil {
			return fmt.Errorf("failed to render label for %q: %w", label.Label, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, info LabelInfo) error {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}
	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%d_%s", info.PanelIndex, info.PanelID)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(imgName, opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions(imgName, x+labelWidth-qrSize-labelPadding, y+(labelHeight-qrSize)/2, qrSize, qrSize, false, opts, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	name := info.Label
	if pdf.GetStringWidth(name) > textW {
		for len(name) > 0 && pdf.GetStringWidth(name+"...") > textW {
			name = name[:len(name)-1]
		}
		name += "..."
	}
	pdf.CellFormat(textW, 4.5, name, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	pdf.CellFormat(textW, 3.5, fmt.Sprintf("%.3f x %.3f in", info.Width, info.Height), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	counts := fmt.Sprintf("Panel %d | %d sheets | %d cleats | %d klimps", info.PanelIndex, info.Sheets, info.Cleats, info.Klimps)
	pdf.CellFormat(textW, 3, counts, "", 1, "L", false, 0, "")

	if info.Grown {
		pdf.SetXY(textX, y+labelPadding+12.5)
		pdf.SetFont("Helvetica", "I", 6)
		pdf.SetTextColor(150, 100, 0)
		pdf.CellFormat(textW, 3, "Grown to clear splices", "", 0, "L", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)
	return nil
}
