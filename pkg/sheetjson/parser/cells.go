package parser

import (
	"strconv"
	"strings"
	"time"

	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/models"
	"github.com/xuri/excelize/v2"
)

// ReadCells reads every row of sheetName. Rows keep their physical position, so row 0 is
// always the first row of the sheet even when it is empty.
func ReadCells(w *Workbook, sheetName string) (*models.SheetData, error) {
	rows, err := w.file.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	// GetRows trims trailing empty cells and rows, which would hide formula cells that
	// have no cached value, so the used range sets the minimum extent.
	lastCol, lastRow := 0, len(rows)
	if dim, err := w.file.GetSheetDimension(sheetName); err == nil {
		if c, r, ok := parseDimension(dim); ok {
			lastCol = c
			lastRow = max(lastRow, r)
		}
	}

	sheet := &models.SheetData{Name: sheetName, Rows: make([][]models.Cell, lastRow)}
	for rowIdx := 0; rowIdx < lastRow; rowIdx++ {
		var raw []string
		if rowIdx < len(rows) {
			raw = rows[rowIdx]
		}
		width := max(len(raw), lastCol)

		cells := make([]models.Cell, width)
		for colIdx := 0; colIdx < width; colIdx++ {
			var value string
			if colIdx < len(raw) {
				value = raw[colIdx]
			}
			cellName, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return nil, err
			}
			cell, err := w.readCell(sheetName, cellName, value)
			if err != nil {
				return nil, err
			}
			cells[colIdx] = cell
		}
		sheet.Rows[rowIdx] = cells
	}

	return sheet, nil
}

// readCell resolves one cell from its raw stored value and declared type.
func (w *Workbook) readCell(sheetName, cellName, raw string) (models.Cell, error) {
	if raw == "" {
		formula, err := w.file.GetCellFormula(sheetName, cellName)
		if err != nil {
			return models.Cell{}, err
		}
		if formula == "" {
			return models.BlankCell(), nil
		}
		return w.calculate(sheetName, cellName), nil
	}

	cellType, err := w.file.GetCellType(sheetName, cellName)
	if err != nil {
		return models.Cell{}, err
	}

	switch cellType {
	case excelize.CellTypeBool:
		return models.BoolCell(parseBool(raw)), nil
	case excelize.CellTypeError:
		return models.ErrorCell(raw), nil
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		// CellTypeFormula is the "str" type: a formula whose cached result is text.
		return models.StringCell(raw), nil
	case excelize.CellTypeDate:
		t, err := parseISODate(raw)
		if err != nil {
			return models.Cell{Kind: models.CellUnknown, Text: raw}, nil
		}
		return models.DateCell(0, t), nil
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		return w.numberCell(sheetName, cellName, raw), nil
	}
	return models.Cell{Kind: models.CellUnknown, Text: raw}, nil
}

// numberCell parses a stored number, decoding it as a date when its style says so.
func (w *Workbook) numberCell(sheetName, cellName, raw string) models.Cell {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return models.Cell{Kind: models.CellUnknown, Text: raw}
	}

	if w.isDateStyled(sheetName, cellName) {
		if t, err := excelize.ExcelDateToTime(v, w.date1904); err == nil {
			c := models.DateCell(v, t)
			c.Text = raw
			return c
		}
	}

	c := models.NumberCell(v)
	c.Text = raw
	return c
}

// isDateStyled reports whether the cell's number format is a date format.
func (w *Workbook) isDateStyled(sheetName, cellName string) bool {
	styleID, err := w.file.GetCellStyle(sheetName, cellName)
	if err != nil {
		return false
	}
	if isDate, ok := w.dateStyles[styleID]; ok {
		return isDate
	}

	isDate := false
	if style, err := w.file.GetStyle(styleID); err == nil && style != nil {
		code := ""
		if style.CustomNumFmt != nil {
			code = *style.CustomNumFmt
		}
		isDate = isDateFormat(style.NumFmt, code)
	}
	w.dateStyles[styleID] = isDate
	return isDate
}

func parseBool(raw string) bool {
	return raw == "1" || strings.EqualFold(raw, "true")
}

// parseISODate parses the ISO 8601 value of a "d"-typed cell.
func parseISODate(raw string) (time.Time, error) {
	layouts := []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05", "2006-01-02"}
	var err error
	for _, layout := range layouts {
		var t time.Time
		if t, err = time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, err
}
