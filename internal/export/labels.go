package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/gapfinder/internal/model"
)

// ErrTooLargeForQR is returned when the payload exceeds what a single QR
// code can hold.
var ErrTooLargeForQR = errors.New("payload too large for a QR code")

// maxQRPayload is the byte capacity of a version 40 QR code at the lowest
// recovery level.
const maxQRPayload = 2953

// FreeSpaceInfo holds the data encoded into a free-space QR code.
type FreeSpaceInfo struct {
	ID     string  `json:"id"`
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
// Each label cell is approximately 66.7mm x 25.4mm on US Letter paper.
const (
	labelMarginTop  = 12.7 // mm
	labelMarginLeft = 4.8  // mm
	labelWidth      = 66.7 // mm per label
	labelHeight     = 25.4 // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// CollectFreeSpaceInfos extracts the QR payload for every free rectangle.
func CollectFreeSpaceInfos(result model.Result) []FreeSpaceInfo {
	infos := make([]FreeSpaceInfo, 0, len(result.Free))
	for _, f := range result.Free {
		infos = append(infos, FreeSpaceInfo{
			ID:     f.ID,
			Left:   f.Rect.Left,
			Top:    f.Rect.Top,
			Width:  f.Rect.Width,
			Height: f.Rect.Height,
		})
	}
	return infos
}

// encodeQR marshals v to JSON and renders it as a PNG QR code.
func encodeQR(v any, level qrcode.RecoveryLevel) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal QR payload: %w", err)
	}
	if len(data) > maxQRPayload {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLargeForQR, len(data))
	}
	png, err := qrcode.Encode(string(data), level, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	return png, nil
}

// resultQR encodes all free rectangles of a result into one QR code.
func resultQR(result model.Result) ([]byte, error) {
	return encodeQR(CollectFreeSpaceInfos(result), qrcode.Low)
}

// ExportLabels generates a PDF of QR-coded labels, one per usable free
// rectangle, largest first. Each label shows the rectangle's ID, size and
// position next to a QR code of the same data. Labels are laid out on a
// standard label sheet format (Avery 5160 / 3 columns x 10 rows on US Letter).
func ExportLabels(path string, proj model.Project) error {
	if proj.Result == nil {
		return ErrNoResult
	}

	usable := proj.Result.Usable(proj.Settings.MinWidth, proj.Settings.MinHeight)
	if len(usable) == 0 {
		return fmt.Errorf("no free space to generate labels for")
	}
	infos := CollectFreeSpaceInfos(model.Result{Free: usable})

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, info := range infos {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, x, y, info, string(proj.Settings.Units)); err != nil {
			return fmt.Errorf("failed to render label for %q: %w", info.ID, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, info FreeSpaceInfo, units string) error {
	// Light border for cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrPNG, err := encodeQR(info, qrcode.Medium)
	if err != nil {
		return err
	}

	imgName := "qr_" + info.ID
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	pdf.CellFormat(textW, 4.5, "Free "+info.ID, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	pdf.CellFormat(textW, 3.5, fmt.Sprintf("%g x %g %s", info.Width, info.Height, units), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	pdf.CellFormat(textW, 3, fmt.Sprintf("@ (%g, %g)", info.Left, info.Top), "", 1, "L", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	return nil
}
