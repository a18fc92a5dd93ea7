// Package export writes free-space results to PDF reports, QR-coded label
// sheets and Excel workbooks.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/gapfinder/internal/model"
)

// ErrNoResult is returned when a project has not been computed yet.
var ErrNoResult = errors.New("no free-space result to export")

// rgb is a fill or stroke color.
type rgb struct {
	R, G, B int
}

// freeColors mirrors the color scheme used in the UI layout canvas.
var freeColors = []rgb{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

var obstacleColor = rgb{R: 90, G: 90, B: 90}

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

	summaryQRSize  = 60.0
	maxTableRows   = 20
	freeFillAlpha  = 0.25
	freeLabelAlpha = 1.0
)

// ExportPDF renders the project's layout and free space on one page,
// followed by a summary page with statistics, the free-space table and a QR
// code carrying the free rectangles as JSON.
func ExportPDF(path string, proj model.Project) error {
	if proj.Result == nil {
		return ErrNoResult
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	renderLayoutPage(pdf, proj)

	pdf.AddPage()
	if err := renderSummaryPage(pdf, proj); err != nil {
		return err
	}

	return pdf.OutputFileAndClose(path)
}

// renderLayoutPage draws the outer rectangle, the free space and the
// obstacles to scale.
func renderLayoutPage(pdf *fpdf.Fpdf, proj model.Project) {
	outer := proj.Layout.Outer
	result := *proj.Result
	units := string(proj.Settings.Units)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("%s (%g x %g %s)", proj.Name, outer.Width, outer.Height, units)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Obstacles: %d | Free rectangles: %d | Free area: %.1f sq %s | Occupancy: %.1f%%",
		len(proj.Layout.Obstacles), len(result.Free), result.FreeArea(), units, proj.Layout.Occupancy())
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight

	scale := fitScale(outer.Width, outer.Height, drawWidth, drawHeight)
	canvasW := outer.Width * scale
	canvasH := outer.Height * scale

	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop
	toPage := func(x, y float64) (float64, float64) {
		return offsetX + (x-outer.Left)*scale, offsetY + (y-outer.Top)*scale
	}

	// Outer background
	pdf.SetFillColor(245, 245, 240)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	// Free rectangles overlap, so they are drawn translucent
	for i, f := range result.Free {
		col := freeColors[i%len(freeColors)]
		x, y := toPage(f.Rect.Left, f.Rect.Top)
		pdf.SetAlpha(freeFillAlpha, "Normal")
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(x, y, f.Rect.Width*scale, f.Rect.Height*scale, "F")
		pdf.SetAlpha(freeLabelAlpha, "Normal")
		pdf.SetDrawColor(col.R, col.G, col.B)
		pdf.SetLineWidth(0.3)
		pdf.Rect(x, y, f.Rect.Width*scale, f.Rect.Height*scale, "D")
	}

	for _, o := range proj.Layout.Obstacles {
		x, y := toPage(o.Rect.Left, o.Rect.Top)
		ow, oh := o.Rect.Width*scale, o.Rect.Height*scale

		pdf.SetFillColor(obstacleColor.R, obstacleColor.G, obstacleColor.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(x, y, ow, oh, "FD")

		if ow > 15 && oh > 6 {
			pdf.SetFont("Helvetica", "", labelFontSize(ow, oh))
			pdf.SetTextColor(255, 255, 255)
			labelW := pdf.GetStringWidth(o.Label)
			if labelW < ow-2 {
				pdf.SetXY(x+(ow-labelW)/2, y+oh/2-2)
				pdf.CellFormat(labelW, 4, o.Label, "", 0, "C", false, 0, "")
			}
		}
	}
	pdf.SetTextColor(0, 0, 0)

	drawDimensionAnnotations(pdf, outer.Width, outer.Height, units, offsetX, offsetY, canvasW, canvasH)
	drawFreeLegend(pdf, result, units, offsetY+canvasH+6)
}

// fitScale returns the factor that fits a w x h drawing into the available
// area. Degenerate sizes fall back to 1.
func fitScale(w, h, availW, availH float64) float64 {
	scale := math.Inf(1)
	if w > 0 {
		scale = availW / w
	}
	if h > 0 {
		scale = math.Min(scale, availH/h)
	}
	if math.IsInf(scale, 1) {
		return 1
	}
	return scale
}

// drawDimensionAnnotations adds width and height labels outside the outer rectangle.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, width, height float64, units string, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%g %s", width, units)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("%g %s", height, units)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(offsetX-3-hLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawFreeLegend renders a compact legend of the free rectangles under the drawing.
func drawFreeLegend(pdf *fpdf.Fpdf, result model.Result, units string, startY float64) {
	if len(result.Free) == 0 {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetXY(marginLeft, startY)
		pdf.CellFormat(100, 4, "No free space left.", "", 0, "L", false, 0, "")
		return
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Free space:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight
	maxY := pageHeight - marginBottom

	for i, f := range result.Free {
		col := freeColors[i%len(freeColors)]
		label := fmt.Sprintf("%s %gx%g %s", f.ID, f.Rect.Width, f.Rect.Height, units)
		labelW := pdf.GetStringWidth(label) + 6

		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}
		if startY+4 > maxY {
			pdf.SetXY(xPos, startY-5)
			pdf.CellFormat(20, 4, fmt.Sprintf("+%d more", len(result.Free)-i), "", 0, "L", false, 0, "")
			break
		}

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")

		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")

		xPos += labelW + 2
	}
}

// renderSummaryPage draws statistics, the free-space table, the settings
// and the QR code.
func renderSummaryPage(pdf *fpdf.Fpdf, proj model.Project) error {
	result := *proj.Result
	units := string(proj.Settings.Units)

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Free Space Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Statistics", "", 0, "L", false, 0, "")
	y += 9

	largest := "-"
	if l, ok := result.Largest(); ok {
		largest = fmt.Sprintf("%gx%g %s at (%g, %g)", l.Rect.Width, l.Rect.Height, units, l.Rect.Left, l.Rect.Top)
	}
	usable := result.Usable(proj.Settings.MinWidth, proj.Settings.MinHeight)

	summaryItems := []struct {
		label string
		value string
	}{
		{"Obstacles", fmt.Sprintf("%d", len(proj.Layout.Obstacles))},
		{"Maximal Free Rectangles", fmt.Sprintf("%d", len(result.Free))},
		{"Usable Free Rectangles", fmt.Sprintf("%d", len(usable))},
		{"Free Area", fmt.Sprintf("%.1f sq %s", result.FreeArea(), units)},
		{"Largest Free Rectangle", largest},
		{"Candidates (horizontal / vertical)", fmt.Sprintf("%d / %d", result.Stats.HorizontalCandidates, result.Stats.VerticalCandidates)},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(65, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(80, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5
	y = renderFreeTable(pdf, usable, units, y)

	y += 8
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Finder Settings", "", 0, "L", false, 0, "")
	y += 9

	settingsItems := []struct {
		label string
		value string
	}{
		{"Tolerance", fmt.Sprintf("%g", proj.Settings.Tolerance)},
		{"Expand Strips", fmt.Sprintf("%t", proj.Settings.ExpandStrips)},
		{"Minimum Size", fmt.Sprintf("%g x %g %s", proj.Settings.MinWidth, proj.Settings.MinHeight, units)},
	}

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range settingsItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(50, 5, item.label+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 5, item.value, "", 0, "L", false, 0, "")
		y += 5
	}

	if err := drawResultQR(pdf, result); err != nil {
		return err
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by GapFinder - Maximal Empty Rectangle Finder", "", 0, "C", false, 0, "")
	return nil
}

// renderFreeTable draws up to maxTableRows usable free rectangles and
// returns the y position below the table.
func renderFreeTable(pdf *fpdf.Fpdf, usable []model.FreeSpace, units string, y float64) float64 {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Free Space (largest first)", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{12, 25, 30, 30, 40}
	headers := []string{"#", "ID", "Position", "Size", "Area"}

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
	for i, f := range usable {
		if i == maxTableRows {
			pdf.SetXY(marginLeft, y)
			pdf.CellFormat(100, 5, fmt.Sprintf("... %d more", len(usable)-maxTableRows), "", 0, "L", false, 0, "")
			y += 5
			break
		}
		rowData := []string{
			fmt.Sprintf("%d", i+1),
			f.ID,
			fmt.Sprintf("%g, %g", f.Rect.Left, f.Rect.Top),
			fmt.Sprintf("%g x %g", f.Rect.Width, f.Rect.Height),
			fmt.Sprintf("%.1f sq %s", f.Rect.Area(), units),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		xPos = marginLeft
		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 5, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 5
	}
	return y
}

// drawResultQR places the QR code in the top-right corner of the summary
// page. Results too large for one code get a note instead.
func drawResultQR(pdf *fpdf.Fpdf, result model.Result) error {
	x := pageWidth - marginRight - summaryQRSize
	y := marginTop + 18

	png, err := resultQR(result)
	if errors.Is(err, ErrTooLargeForQR) {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetXY(x, y)
		pdf.MultiCell(summaryQRSize, 4, "Too many free rectangles to fit in a QR code.", "1", "C", false)
		return nil
	}
	if err != nil {
		return err
	}

	pdf.RegisterImageOptionsReader("result_qr", fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
	pdf.ImageOptions("result_qr", x, y, summaryQRSize, summaryQRSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(x, y+summaryQRSize+1)
	pdf.CellFormat(summaryQRSize, 4, "Free rectangles (JSON)", "", 0, "C", false, 0, "")
	return nil
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
