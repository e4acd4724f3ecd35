package parser

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

// parseDimension parses a used-range reference like A1:D10 (or a single cell like A1)
// and returns the 1-based last column and last row it covers.
func parseDimension(ref string) (lastCol, lastRow int, ok bool) {
	ref = strings.ReplaceAll(strings.TrimSpace(ref), "$", "")
	if ref == "" {
		return 0, 0, false
	}

	parts := strings.Split(ref, ":")
	if len(parts) > 2 {
		return 0, 0, false
	}

	endCol, endRow, err := excelize.CellNameToCoordinates(parts[len(parts)-1])
	if err != nil {
		return 0, 0, false
	}
	return endCol, endRow, true
}
