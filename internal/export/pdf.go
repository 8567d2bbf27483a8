package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/rectbin/internal/model"
)

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	statsHeight  = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// ExportPDF writes a report with one page per bin showing its layout,
// followed by a summary page.
func ExportPDF(path string, result model.PackResult) error {
	if len(result.Bins) == 0 {
		return fmt.Errorf("%w: no bins", ErrNothingToExport)
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	// One page per bin
	for _, bin := range result.Bins {
		pdf.AddPage()
		renderBinPage(pdf, bin)
	}

	// Summary page
	pdf.AddPage()
	renderSummaryPage(pdf, result)

	return pdf.OutputFileAndClose(path)
}

// renderBinPage draws a single bin on the current page. Bin coordinates
// have their origin at the bottom-left corner, so y is flipped.
func renderBinPage(pdf *fpdf.Fpdf, bin model.BinResult) {
	cfg := bin.Config

	// Title
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Bin %d (%d x %d)", bin.Index+1, cfg.Width, cfg.Height)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	// Stats line
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Items: %d | Used area: %d | Bin area: %d | Usage: %.1f%% | Heuristic: %s",
		len(bin.Used), bin.UsedArea(), cfg.Area(), bin.Usage()*100, cfg.Heuristic)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	// Calculate drawing area
	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - statsHeight

	// Scale the bin to fit the drawing area
	scale := math.Min(drawWidth/float64(cfg.Width), drawHeight/float64(cfg.Height))
	canvasW := float64(cfg.Width) * scale
	canvasH := float64(cfg.Height) * scale

	// Center the drawing horizontally
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	toPage := func(r model.Rectangle) (x, y, w, h float64) {
		return offsetX + float64(r.X)*scale,
			offsetY + float64(flipY(r.Y, r.Height, cfg.Height))*scale,
			float64(r.Width) * scale,
			float64(r.Height) * scale
	}

	// Bin background
	pdf.SetFillColor(235, 235, 235)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	// Unusable border strips
	drawBorders(pdf, cfg, toPage)

	// Draw placed items
	for i, r := range bin.Used {
		col := colorFor(i)
		px, py, pw, ph := toPage(r)

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(px, py, pw, ph, "FD")

		// Window cut-out shows through
		if win, ok := r.WindowRect(); ok {
			wx, wy, ww, wh := toPage(win)
			pdf.SetFillColor(255, 255, 255)
			pdf.SetLineWidth(0.2)
			pdf.Rect(wx, wy, ww, wh, "FD")
		}

		// Item label (only if rectangle is large enough)
		if pw > 15 && ph > 8 {
			pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
			pdf.SetTextColor(0, 0, 0)

			label := r.Label
			dims := fmt.Sprintf("%dx%d", r.Width, r.Height)
			labelW := pdf.GetStringWidth(label)
			dimsW := pdf.GetStringWidth(dims)

			// First line: label
			if labelW < pw-2 {
				pdf.SetXY(px+(pw-labelW)/2, py+ph/2-4)
				pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
			}
			// Second line: dimensions
			if ph > 14 && dimsW < pw-2 {
				pdf.SetXY(px+(pw-dimsW)/2, py+ph/2)
				pdf.CellFormat(dimsW, 4, dims, "", 0, "C", false, 0, "")
			}
		}
	}

	// Dimension annotations along the edges
	drawDimensionAnnotations(pdf, cfg, offsetX, offsetY, canvasW, canvasH)
	// Items legend at bottom of page
	drawItemsLegend(pdf, bin, offsetY+canvasH+5)
}

// drawBorders hatches the left and bottom border strips where nothing is placed.
func drawBorders(pdf *fpdf.Fpdf, cfg model.BinConfig, toPage func(model.Rectangle) (x, y, w, h float64)) {
	var zones []model.Rectangle
	if cfg.LeftBorder > 0 {
		zones = append(zones, model.Rect(0, 0, cfg.LeftBorder, cfg.Height))
	}
	if cfg.BottomBorder > 0 {
		zones = append(zones, model.Rect(0, 0, cfg.Width, cfg.BottomBorder))
	}

	for _, zone := range zones {
		zx, zy, zw, zh := toPage(zone)

		pdf.SetFillColor(255, 200, 200)
		pdf.SetDrawColor(200, 0, 0)
		pdf.SetLineWidth(0.3)
		pdf.Rect(zx, zy, zw, zh, "FD")
		drawHatchPattern(pdf, zx, zy, zw, zh)
	}
	// Reset text color
	pdf.SetTextColor(0, 0, 0)
}

// drawHatchPattern draws diagonal lines inside a rectangle.
func drawHatchPattern(pdf *fpdf.Fpdf, x, y, w, h float64) {
	pdf.SetDrawColor(200, 0, 0)
	pdf.SetLineWidth(0.15)

	spacing := 4.0
	for d := spacing; d < w+h; d += spacing {
		x1 := x + math.Max(0, d-h)
		y1 := y + math.Min(h, d)
		x2 := x + math.Min(w, d)
		y2 := y + math.Max(0, d-w)
		pdf.Line(x1, y1, x2, y2)
	}
}

// drawDimensionAnnotations adds width and height labels outside the bin outline.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, cfg model.BinConfig, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	// Width annotation (below the bin)
	widthLabel := fmt.Sprintf("%d", cfg.Width)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	// Height annotation (left of the bin, rotated)
	heightLabel := fmt.Sprintf("%d", cfg.Height)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(offsetX-3-hLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawItemsLegend renders a compact legend of placed items below the layout.
func drawItemsLegend(pdf *fpdf.Fpdf, bin model.BinResult, startY float64) {
	if len(bin.Used) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Items placed:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight

	for i, r := range bin.Used {
		col := colorFor(i)
		label := fmt.Sprintf("%s (%dx%d)", r.Label, r.Width, r.Height)
		if r.Rotated {
			label += " R"
		}
		if r.HasWindow() {
			label += " W"
		}
		labelW := pdf.GetStringWidth(label) + 6

		// Wrap to next line if needed
		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}

		// Color swatch
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")

		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")

		xPos += labelW + 2
	}
}

// renderSummaryPage draws the final page with overall statistics.
func renderSummaryPage(pdf *fpdf.Fpdf, result model.PackResult) {
	// Title
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Packing Summary", "", 0, "L", false, 0, "")

	// Separator line
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	// Overall statistics
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Statistics", "", 0, "L", false, 0, "")
	y += 9

	summaryItems := []struct {
		label string
		value string
	}{
		{"Bins Used", fmt.Sprintf("%d", len(result.Bins))},
		{"Overall Usage", fmt.Sprintf("%.1f%%", result.TotalUsage()*100)},
		{"Items Placed", fmt.Sprintf("%d", result.PlacedCount())},
		{"Unplaced Items", fmt.Sprintf("%d", len(result.Unplaced))},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5

	// Per-bin breakdown table
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Bin Breakdown", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{20, 45, 45, 30, 35, 60}
	headers := []string{"Bin", "Dimensions", "Borders", "Items", "Usage", "Used / Total Area"}

	// Table header
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	// Table rows
	pdf.SetFont("Helvetica", "", 9)
	for i, bin := range result.Bins {
		if y > pageHeight-marginBottom-10 {
			pdf.AddPage()
			y = marginTop
		}
		xPos = marginLeft
		rowData := []string{
			fmt.Sprintf("%d", bin.Index+1),
			fmt.Sprintf("%d x %d", bin.Config.Width, bin.Config.Height),
			fmt.Sprintf("L %d / B %d", bin.Config.LeftBorder, bin.Config.BottomBorder),
			fmt.Sprintf("%d", len(bin.Used)),
			fmt.Sprintf("%.1f%%", bin.Usage()*100),
			fmt.Sprintf("%d / %d", bin.UsedArea(), bin.Config.Area()),
		}

		// Alternate row background
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	// Unplaced items warning
	if len(result.Unplaced) > 0 {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, "WARNING: Unplaced Items", "", 0, "L", false, 0, "")
		y += 8

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)

		for _, r := range result.Unplaced {
			if y > pageHeight-marginBottom-5 {
				pdf.AddPage()
				y = marginTop
			}
			pdf.SetXY(marginLeft+5, y)
			text := fmt.Sprintf("- %s: %d x %d", r.Label, r.Width, r.Height)
			pdf.CellFormat(200, 5, text, "", 0, "L", false, 0, "")
			y += 5
		}
	}

	// Footer
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by rectbin", "", 0, "C", false, 0, "")
}

// labelFontSize returns an appropriate font size based on the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
