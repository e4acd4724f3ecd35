package parser

import (
	"io"

	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/models"
	"github.com/xuri/excelize/v2"
)

// Workbook reads sheets out of an excelize file as resolved cells.
type Workbook struct {
	file     *excelize.File
	sheets   []string
	date1904 bool
	// dateStyles caches whether a style index carries a date number format.
	dateStyles map[int]bool
}

// Open reads an xlsx workbook from r.
func Open(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	return NewWorkbook(f), nil
}

// OpenFile reads an xlsx workbook from path.
func OpenFile(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	return NewWorkbook(f), nil
}

// NewWorkbook wraps an already opened file. The Workbook takes ownership of f.
func NewWorkbook(f *excelize.File) *Workbook {
	w := &Workbook{
		file:       f,
		sheets:     f.GetSheetList(),
		dateStyles: make(map[int]bool),
	}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		w.date1904 = *props.Date1904
	}
	return w
}

// SheetCount returns the number of sheets.
func (w *Workbook) SheetCount() int {
	return len(w.sheets)
}

// SheetName returns the name of the sheet at position i.
func (w *Workbook) SheetName(i int) string {
	return w.sheets[i]
}

// ReadSheet returns all cells of the sheet at position i. Formula cells are resolved to
// their cached result, or calculated when the file carries no cached value.
func (w *Workbook) ReadSheet(i int) (*models.SheetData, error) {
	return ReadCells(w, w.sheets[i])
}

// Close releases the underlying file.
func (w *Workbook) Close() error {
	return w.file.Close()
}
