package parser

import (
	"strconv"
	"strings"

	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/models"
	"github.com/xuri/excelize/v2"
)

// errorCodes are the formula error values a cell can hold.
var errorCodes = map[string]bool{
	"#NULL!":        true,
	"#DIV/0!":       true,
	"#VALUE!":       true,
	"#REF!":         true,
	"#NAME?":        true,
	"#NUM!":         true,
	"#N/A":          true,
	"#GETTING_DATA": true,
	"#SPILL!":       true,
	"#CALC!":        true,
	"#UNKNOWN!":     true,
	"#FIELD!":       true,
	"#BLOCKED!":     true,
	"#CONNECT!":     true,
	"#BUSY!":        true,
	"#EXTERNAL!":    true,
	"#PYTHON!":      true,
	"#TIMEOUT!":     true,
}

// IsErrorCode reports whether s is a spreadsheet error value such as "#N/A".
func IsErrorCode(s string) bool {
	return errorCodes[strings.ToUpper(strings.TrimSpace(s))]
}

// calculate evaluates a formula cell that carries no cached result. The result type is
// inferred from the calculated text: booleans, error values, numbers, then strings.
func (w *Workbook) calculate(sheetName, cellName string) models.Cell {
	result, err := w.file.CalcCellValue(sheetName, cellName, excelize.Options{RawCellValue: true})
	if err != nil {
		switch {
		case IsErrorCode(result):
			return models.ErrorCell(strings.TrimSpace(result))
		case IsErrorCode(err.Error()):
			return models.ErrorCell(strings.TrimSpace(err.Error()))
		}
		return models.Cell{Kind: models.CellUnknown, Text: result}
	}

	switch {
	case result == "":
		return models.BlankCell()
	case result == "TRUE" || result == "FALSE":
		return models.BoolCell(result == "TRUE")
	case IsErrorCode(result):
		return models.ErrorCell(result)
	}
	if _, err := strconv.ParseFloat(result, 64); err == nil {
		return w.numberCell(sheetName, cellName, result)
	}
	return models.StringCell(result)
}
