package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/gapfinder/internal/model"
)

// Sheet names of the exported workbook.
const (
	ObstacleSheet = "Obstacles"
	FreeSheet     = "FreeSpace"
	SummarySheet  = "Summary"
)

// ExportXLSX writes the layout and its free space to an Excel workbook. The
// obstacle sheet comes first and carries an "outer" row, so the workbook
// can be imported again as a layout.
func ExportXLSX(path string, proj model.Project) error {
	if proj.Result == nil {
		return ErrNoResult
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ObstacleSheet); err != nil {
		return fmt.Errorf("failed to name obstacle sheet: %w", err)
	}
	if _, err := f.NewSheet(FreeSheet); err != nil {
		return fmt.Errorf("failed to create free space sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E6E6E6"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	outer := proj.Layout.Outer
	obstacleRows := [][]interface{}{
		{"Label", "Left", "Top", "Width", "Height", "ID"},
		{"outer", outer.Left, outer.Top, outer.Width, outer.Height, ""},
	}
	for _, o := range proj.Layout.Obstacles {
		obstacleRows = append(obstacleRows, []interface{}{
			o.Label, o.Rect.Left, o.Rect.Top, o.Rect.Width, o.Rect.Height, o.ID,
		})
	}
	if err := writeRows(f, ObstacleSheet, obstacleRows, headerStyle); err != nil {
		return err
	}

	usable := make(map[string]bool)
	for _, u := range proj.Result.Usable(proj.Settings.MinWidth, proj.Settings.MinHeight) {
		usable[u.ID] = true
	}
	freeRows := [][]interface{}{
		{"ID", "Left", "Top", "Width", "Height", "Area", "Usable"},
	}
	for _, fs := range proj.Result.Free {
		freeRows = append(freeRows, []interface{}{
			fs.ID, fs.Rect.Left, fs.Rect.Top, fs.Rect.Width, fs.Rect.Height, fs.Rect.Area(), usable[fs.ID],
		})
	}
	if err := writeRows(f, FreeSheet, freeRows, headerStyle); err != nil {
		return err
	}

	stats := proj.Result.Stats
	summaryRows := [][]interface{}{
		{"Metric", "Value"},
		{"Project", proj.Name},
		{"Units", string(proj.Settings.Units)},
		{"Obstacles", len(proj.Layout.Obstacles)},
		{"Occupancy %", proj.Layout.Occupancy()},
		{"Maximal free rectangles", len(proj.Result.Free)},
		{"Usable free rectangles", len(usable)},
		{"Free area", proj.Result.FreeArea()},
		{"Horizontal candidates", stats.HorizontalCandidates},
		{"Vertical candidates", stats.VerticalCandidates},
		{"Distinct candidates", stats.Distinct},
		{"Tolerance", proj.Settings.Tolerance},
		{"Expand strips", proj.Settings.ExpandStrips},
	}
	if err := writeRows(f, SummarySheet, summaryRows, headerStyle); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// writeRows writes rows starting at A1 and styles the first one as a header.
func writeRows(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
