// Package importer provides CSV, Excel and DXF import of obstacle layouts.
// It supports automatic delimiter detection, flexible column mapping, and
// case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/gapfinder/internal/geom"
	"github.com/piwi3910/gapfinder/internal/model"
)

// OuterLabel marks the row that defines the outer rectangle.
const OuterLabel = "outer"

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Obstacles []model.Obstacle
	Outer     geom.Rect
	HasOuter  bool // Outer came from the file rather than the bounding box
	Errors    []string
	Warnings  []string
}

// Layout assembles the imported rectangles into a layout.
func (r ImportResult) Layout() model.Layout {
	obstacles := r.Obstacles
	if obstacles == nil {
		obstacles = []model.Obstacle{}
	}
	return model.Layout{Outer: r.Outer, Obstacles: obstacles}
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Label  int
	Left   int
	Top    int
	Width  int
	Height int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"label":  {"label", "name", "id", "node", "description", "desc", "item"},
	"left":   {"left", "x", "x0", "min x", "minx", "pos x", "posx"},
	"top":    {"top", "y", "y0", "min y", "miny", "pos y", "posy"},
	"width":  {"width", "w", "size x", "sizex", "dx"},
	"height": {"height", "h", "size y", "sizey", "dy", "depth"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		// Prefer delimiters with higher consistency and more columns
		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// It performs case-insensitive matching against known aliases for each column role.
// Returns the mapping and true if a header was detected, or a default positional
// mapping and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Label: -1, Left: -1, Top: -1, Width: -1, Height: -1}
	slots := map[string]*int{
		"label":  &mapping.Label,
		"left":   &mapping.Left,
		"top":    &mapping.Top,
		"width":  &mapping.Width,
		"height": &mapping.Height,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				if slot := slots[role]; *slot == -1 {
					*slot = i
				}
			}
		}
	}

	if !isHeader {
		// Fall back to positional mapping: Label, Left, Top, Width, Height
		return ColumnMapping{Label: 0, Left: 1, Top: 2, Width: 3, Height: 4}, false
	}

	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseNumber(row []string, idx int, name, rowLabel string) (float64, string) {
	s := getCell(row, idx)
	if s == "" {
		return 0, fmt.Sprintf("%s: Missing %s value", rowLabel, name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, name, s)
	}
	return v, ""
}

// parseRow extracts a labelled rectangle from a row using the given column
// mapping. Returns the label, the rectangle and any error message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, count int) (string, geom.Rect, string) {
	label := getCell(row, mapping.Label)
	if label == "" {
		label = fmt.Sprintf("Obstacle %d", count+1)
	}

	var vals [4]float64
	for i, col := range []struct {
		idx  int
		name string
	}{
		{mapping.Left, "left"},
		{mapping.Top, "top"},
		{mapping.Width, "width"},
		{mapping.Height, "height"},
	} {
		v, errMsg := parseNumber(row, col.idx, col.name, rowLabel)
		if errMsg != "" {
			return "", geom.Rect{}, errMsg
		}
		vals[i] = v
	}

	r, err := geom.NewRect(vals[0], vals[1], vals[2], vals[3])
	if err != nil {
		return "", geom.Rect{}, fmt.Sprintf("%s: Width and height must not be negative", rowLabel)
	}
	return label, r, ""
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports obstacles from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
// Supports comma, semicolon, tab, and pipe delimiters.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", result.Warnings)
}

// ImportCSVFromReader imports obstacles from a CSV reader with a specific delimiter.
// This is useful for testing or when the delimiter is already known.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", nil)
}

// ImportExcel imports obstacles from an Excel (.xlsx) file.
// Reads the first sheet and auto-detects column mapping from headers.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// importFromRows is the shared import logic for both CSV and Excel data.
// It detects headers, maps columns, and parses each row into obstacles.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		missing := []string{}
		if mapping.Left == -1 {
			missing = append(missing, "Left")
		}
		if mapping.Top == -1 {
			missing = append(missing, "Top")
		}
		if mapping.Width == -1 {
			missing = append(missing, "Width")
		}
		if mapping.Height == -1 {
			missing = append(missing, "Height")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 5 {
		// An unrecognised header still has a non-numeric left column
		if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][1]), 64); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		label, rect, errMsg := parseRow(row, mapping, rowLabel, len(result.Obstacles))
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}

		if strings.EqualFold(label, OuterLabel) {
			if result.HasOuter {
				result.Warnings = append(result.Warnings, fmt.Sprintf("%s: Duplicate outer row ignored", rowLabel))
				continue
			}
			result.Outer = rect
			result.HasOuter = true
			continue
		}

		if rect.Area() == 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %s has zero area", rowLabel, label))
		}
		result.Obstacles = append(result.Obstacles, model.Obstacle{
			ID:    newID(),
			Label: label,
			Rect:  rect,
		})
	}

	finishLayout(&result)
	return result
}

func newID() string {
	return uuid.New().String()[:8]
}

// finishLayout fills in the outer rectangle when the file had none and
// warns about obstacles the finder will reject or mis-handle.
func finishLayout(result *ImportResult) {
	if !result.HasOuter {
		bounds, ok := geom.Bounds(result.Layout().Rects())
		if !ok {
			if len(result.Errors) == 0 {
				result.Errors = append(result.Errors, "No obstacles or outer rectangle found")
			}
			return
		}
		result.Outer = bounds
		result.Warnings = append(result.Warnings, "No outer rectangle found, using the bounding box of all obstacles")
	}

	for _, o := range result.Obstacles {
		if !result.Outer.Contains(o.Rect, 0) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s %v extends beyond the outer rectangle %v", o.Label, o.Rect, result.Outer))
		}
	}
	for i := 0; i < len(result.Obstacles); i++ {
		for j := i + 1; j < len(result.Obstacles); j++ {
			a, b := result.Obstacles[i], result.Obstacles[j]
			if a.Rect.Overlaps(b.Rect, 0) {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("%s overlaps %s", a.Label, b.Label))
			}
		}
	}
}
