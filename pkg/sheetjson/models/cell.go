// Package models defines the data structures shared by the workbook reader and the exporter.
package models

import (
	"strings"
	"time"
)

// CellKind is the type of a cell after any formula has been replaced by its evaluated result.
type CellKind int

const (
	// CellBlank is an empty cell, or a position with no cell at all.
	CellBlank CellKind = iota
	// CellBool holds Bool.
	CellBool
	// CellNumber holds Number. IsDate marks date-formatted numbers.
	CellNumber
	// CellString holds Text.
	CellString
	// CellError holds the error code (e.g. "#DIV/0!") in Text.
	CellError
	// CellUnknown is a cell whose type could not be determined.
	CellUnknown
)

var cellKindNames = map[CellKind]string{
	CellBlank:   "blank",
	CellBool:    "bool",
	CellNumber:  "number",
	CellString:  "string",
	CellError:   "error",
	CellUnknown: "unknown",
}

func (k CellKind) String() string {
	if name, ok := cellKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Cell is one resolved spreadsheet cell.
type Cell struct {
	Kind CellKind
	// Text is the string value, the error code, or the raw literal of a number or bool.
	Text string
	// Number is the numeric value of a CellNumber.
	Number float64
	// Bool is the value of a CellBool.
	Bool bool
	// IsDate marks a CellNumber whose number format is a date or time format.
	IsDate bool
	// Time is the decoded calendar value when IsDate is set.
	Time time.Time
}

// IsBlank reports whether the cell is empty or a whitespace-only string.
func (c Cell) IsBlank() bool {
	switch c.Kind {
	case CellBlank:
		return true
	case CellString:
		return strings.TrimSpace(c.Text) == ""
	}
	return false
}

// BlankCell returns an empty cell.
func BlankCell() Cell {
	return Cell{Kind: CellBlank}
}

// StringCell returns a text cell.
func StringCell(s string) Cell {
	return Cell{Kind: CellString, Text: s}
}

// NumberCell returns a plain numeric cell.
func NumberCell(v float64) Cell {
	return Cell{Kind: CellNumber, Number: v}
}

// BoolCell returns a boolean cell.
func BoolCell(b bool) Cell {
	return Cell{Kind: CellBool, Bool: b}
}

// DateCell returns a date-formatted numeric cell.
func DateCell(serial float64, t time.Time) Cell {
	return Cell{Kind: CellNumber, Number: serial, IsDate: true, Time: t}
}

// ErrorCell returns an error cell carrying code, e.g. "#N/A".
func ErrorCell(code string) Cell {
	return Cell{Kind: CellError, Text: code}
}
