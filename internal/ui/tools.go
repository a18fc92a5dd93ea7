package ui

import (
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/gapfinder/internal/engine"
	"github.com/piwi3910/gapfinder/internal/export"
)

// showPlaceDialog asks for an element size and highlights the best spot for
// it on the results canvas.
func (a *App) showPlaceDialog() {
	widthEntry := widget.NewEntry()
	widthEntry.SetPlaceHolder("Element width")
	heightEntry := widget.NewEntry()
	heightEntry.SetPlaceHolder("Element height")

	form := dialog.NewForm("Place Element", "Place", "Cancel",
		[]*widget.FormItem{
			widget.NewFormItem("Width", widthEntry),
			widget.NewFormItem("Height", heightEntry),
		},
		func(ok bool) {
			if !ok {
				return
			}
			w, errW := strconv.ParseFloat(strings.TrimSpace(widthEntry.Text), 64)
			h, errH := strconv.ParseFloat(strings.TrimSpace(heightEntry.Text), 64)
			if errW != nil || errH != nil || w <= 0 || h <= 0 {
				dialog.ShowError(fmt.Errorf("width and height must be numbers > 0"), a.window)
				return
			}
			a.placeElement(w, h)
		},
		a.window,
	)
	form.Resize(fyne.NewSize(350, 200))
	form.Show()
}

func (a *App) placeElement(w, h float64) {
	if a.project.Result == nil {
		a.runFinder()
		if a.project.Result == nil {
			return
		}
	}

	p, ok := engine.Place(a.project.Result.Rects(), w, h,
		a.project.Settings.AllowRotation, a.project.Settings.Tolerance)
	if !ok {
		dialog.ShowInformation("No Space",
			fmt.Sprintf("No free rectangle can hold a %s x %s element.", formatNumber(w), formatNumber(h)),
			a.window)
		return
	}

	a.logger.Info("element placed", "width", w, "height", h, "at", p.Rect.String(), "rotated", p.Rotated)
	a.tabs.SelectIndex(tabResults)
	if a.resultCanvas != nil {
		r := p.Rect
		a.resultCanvas.SetHighlight(&r)
	}

	msg := fmt.Sprintf("Place at (%s, %s), size %s x %s.",
		formatNumber(p.Rect.Left), formatNumber(p.Rect.Top),
		formatNumber(p.Rect.Width), formatNumber(p.Rect.Height))
	if p.Rotated {
		msg += "\nThe element is rotated."
	}
	dialog.ShowInformation("Placement Found", msg, a.window)
}

// verifyResult re-checks the current result against the layout.
func (a *App) verifyResult() {
	if a.project.Result == nil {
		dialog.ShowInformation("No Result", "Find free space first.", a.window)
		return
	}

	report := engine.Verify(a.project.Layout.Outer, a.project.Layout.Rects(),
		a.project.Result.Rects(), a.project.Settings.Tolerance)
	if report.OK() {
		dialog.ShowInformation("Verification Passed",
			fmt.Sprintf("All %d free rectangles are maximal, empty and cover the free area.",
				len(a.project.Result.Free)),
			a.window)
		return
	}

	a.logger.Warn("verification failed", "violations", len(report.Violations), "truncated", report.Truncated)
	msg := strings.Join(report.Violations, "\n")
	if report.Truncated {
		msg += "\n..."
	}
	dialog.ShowError(fmt.Errorf("verification failed:\n%s", msg), a.window)
}

// showCompareDialog runs the finder with alternative settings side by side.
func (a *App) showCompareDialog() {
	results := engine.CompareScenarios(engine.BuildDefaultScenarios(a.project.Settings), a.project.Layout)

	bold := fyne.TextStyle{Bold: true}
	grid := container.NewGridWithColumns(6,
		widget.NewLabelWithStyle("Scenario", fyne.TextAlignLeading, bold),
		widget.NewLabelWithStyle("Free", fyne.TextAlignLeading, bold),
		widget.NewLabelWithStyle("Usable", fyne.TextAlignLeading, bold),
		widget.NewLabelWithStyle("Candidates", fyne.TextAlignLeading, bold),
		widget.NewLabelWithStyle("Largest Area", fyne.TextAlignLeading, bold),
		widget.NewLabelWithStyle("Free Area", fyne.TextAlignLeading, bold),
	)
	for _, r := range results {
		if r.Err != nil {
			grid.Add(widget.NewLabel(r.Scenario.Name))
			errLabel := widget.NewLabel(r.Err.Error())
			errLabel.Importance = widget.DangerImportance
			grid.Add(errLabel)
			for i := 0; i < 4; i++ {
				grid.Add(widget.NewLabel(""))
			}
			continue
		}
		grid.Add(widget.NewLabel(r.Scenario.Name))
		grid.Add(widget.NewLabel(strconv.Itoa(r.FreeCount)))
		grid.Add(widget.NewLabel(strconv.Itoa(r.UsableCount)))
		grid.Add(widget.NewLabel(strconv.Itoa(r.Candidates)))
		grid.Add(widget.NewLabel(formatNumber(r.LargestArea)))
		grid.Add(widget.NewLabel(formatNumber(r.FreeArea)))
	}

	d := dialog.NewCustom("Compare Settings", "Close", container.NewVScroll(grid), a.window)
	d.Resize(fyne.NewSize(750, 300))
	d.Show()
}

// ─── Export Functions ───────────────────────────────────────

// exportTo asks for a destination and runs write, computing the result first
// if needed.
func (a *App) exportTo(kind, fileName string, write func(path string) error) {
	if a.project.Result == nil {
		a.runFinder()
		if a.project.Result == nil {
			return
		}
	}

	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		// The exporters write the file themselves
		path := writer.URI().Path()
		writer.Close()
		if err := write(path); err != nil {
			a.logger.Error("export failed", "kind", kind, "path", path, "error", err)
			dialog.ShowError(err, a.window)
			return
		}
		a.logger.Info("exported", "kind", kind, "path", path)
		dialog.ShowInformation("Export Complete", fmt.Sprintf("%s saved to %s", kind, path), a.window)
	}, a.window)
	d.SetFileName(fileName)
	d.Show()
}

func (a *App) exportPDF() {
	a.exportTo("PDF report", a.project.Name+".pdf", func(path string) error {
		return export.ExportPDF(path, a.project)
	})
}

func (a *App) exportXLSX() {
	a.exportTo("Excel workbook", a.project.Name+".xlsx", func(path string) error {
		return export.ExportXLSX(path, a.project)
	})
}

func (a *App) exportLabels() {
	a.exportTo("Labels", a.project.Name+"-labels.pdf", func(path string) error {
		return export.ExportLabels(path, a.project)
	})
}
