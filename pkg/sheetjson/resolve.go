package sheetjson

import (
	"math"
	"strings"
	"time"

	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/models"
)

// ErrorValuePrefix starts every diagnostic string emitted in place of a cell value.
const ErrorValuePrefix = "#ERROR: "

// UnknownCellValue is emitted for cells of unrecognized type.
const UnknownCellValue = ErrorValuePrefix + "Unknown Cell Type"

// DateLayout is the layout of date-formatted cells in the output.
const DateLayout = time.RFC3339Nano

var errorCodeNames = map[string]string{
	"#NULL!":        "NULL",
	"#DIV/0!":       "DIV0",
	"#VALUE!":       "VALUE",
	"#REF!":         "REF",
	"#NAME?":        "NAME",
	"#NUM!":         "NUM",
	"#N/A":          "NA",
	"#SPILL!":       "SPILL",
	"#CALC!":        "CALC",
	"#GETTING_DATA": "GETTING_DATA",
}

// maxExactInt is 2^63; whole numbers at or beyond it do not fit an int64.
const maxExactInt = 1 << 63

// ResolveCell maps one cell to its JSON value: nil, bool, int64, float64, or string.
// It never fails; error and unknown cells become "#ERROR: ..." strings.
func ResolveCell(c models.Cell) any {
	switch c.Kind {
	case models.CellBlank:
		return nil
	case models.CellBool:
		return c.Bool
	case models.CellNumber:
		if c.IsDate {
			return c.Time.UTC().Round(time.Millisecond).Format(DateLayout)
		}
		return resolveNumber(c.Number)
	case models.CellString:
		if strings.TrimSpace(c.Text) == "" {
			return nil
		}
		return c.Text
	case models.CellError:
		return ErrorValuePrefix + errorCodeName(c.Text)
	}
	return UnknownCellValue
}

// resolveNumber keeps integer semantics for whole numbers; spreadsheets store every
// number as a double.
func resolveNumber(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ErrorValuePrefix + "NUM"
	}
	if v == math.Trunc(v) && math.Abs(v) < maxExactInt {
		return int64(v)
	}
	return v
}

func errorCodeName(code string) string {
	code = strings.TrimSpace(code)
	if name, ok := errorCodeNames[strings.ToUpper(code)]; ok {
		return name
	}
	return code
}
