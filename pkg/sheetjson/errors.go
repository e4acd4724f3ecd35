package sheetjson

import (
	"errors"
	"fmt"

	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/schema"
)

// ErrFileNotFound indicates the input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrInvalidFormat indicates the input is not a readable xlsx workbook.
var ErrInvalidFormat = errors.New("invalid xlsx format")

// ErrSheetOutOfRange indicates a sheet position outside the workbook.
var ErrSheetOutOfRange = errors.New("sheet index out of range")

// ErrSchema matches every SchemaError via errors.Is.
var ErrSchema = schema.ErrSchema

// SchemaError reports a malformed or inconsistent header row.
type SchemaError = schema.Error

// ExportError represents an error while exporting one sheet.
type ExportError struct {
	SheetName string
	Sheet     int
	Err       error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error in sheet %q (#%d): %v", e.SheetName, e.Sheet, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// NewExportError creates a new ExportError. A wrapped SchemaError records the sheet name.
func NewExportError(sheetName string, sheet int, err error) *ExportError {
	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) && schemaErr.Sheet == "" {
		schemaErr.Sheet = sheetName
	}
	return &ExportError{
		SheetName: sheetName,
		Sheet:     sheet,
		Err:       err,
	}
}
