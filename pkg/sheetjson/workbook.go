package sheetjson

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/sirupsen/logrus"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/models"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/parser"
)

// Source is a fully loaded workbook. Formula cells must already carry evaluated results.
type Source interface {
	SheetCount() int
	SheetName(i int) string
	ReadSheet(i int) (*models.SheetData, error)
}

// Workbook is an export handle over one loaded workbook. It caches each sheet's cells and
// SheetContext on first export. A Workbook must not be used by concurrent callers.
type Workbook struct {
	src     Source
	opts    Options
	closer  io.Closer
	keyFn   func(string) string
	log     logrus.FieldLogger
	ignoreS []*regexp.Regexp
	ignoreC []*regexp.Regexp

	sheets   map[int]*models.SheetData
	contexts map[int]*SheetContext
}

// New returns an export handle over src.
func New(src Source, opts Options) (*Workbook, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	keyFn, err := opts.keyFunc()
	if err != nil {
		return nil, err
	}
	ignoreSheets, err := compilePatterns("sheet", opts.IgnoreSheetPatterns)
	if err != nil {
		return nil, err
	}
	ignoreColumns, err := compilePatterns("column", opts.IgnoreColumnPatterns)
	if err != nil {
		return nil, err
	}

	w := &Workbook{
		src:      src,
		opts:     opts,
		keyFn:    keyFn,
		log:      opts.logger(),
		ignoreS:  ignoreSheets,
		ignoreC:  ignoreColumns,
		sheets:   make(map[int]*models.SheetData),
		contexts: make(map[int]*SheetContext),
	}
	if c, ok := src.(io.Closer); ok {
		w.closer = c
	}
	return w, nil
}

// Open reads an xlsx workbook from r.
func Open(r io.Reader, opts Options) (*Workbook, error) {
	src, err := parser.Open(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	w, err := New(src, opts)
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	return w, nil
}

// OpenBytes reads an xlsx workbook held in memory.
func OpenBytes(data []byte, opts Options) (*Workbook, error) {
	return Open(bytes.NewReader(data), opts)
}

// OpenFile reads an xlsx workbook from path.
func OpenFile(path string, opts Options) (*Workbook, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	src, err := parser.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	w, err := New(src, opts)
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	return w, nil
}

// Close releases the underlying workbook, if it holds resources.
func (w *Workbook) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}

// SheetCount returns the number of sheets.
func (w *Workbook) SheetCount() int {
	return w.src.SheetCount()
}

// SheetName returns the name of the sheet at position i.
func (w *Workbook) SheetName(i int) string {
	return w.src.SheetName(i)
}

// SheetContext returns the cached context of sheet i, building it on first use.
func (w *Workbook) SheetContext(i int) (*SheetContext, error) {
	if i < 0 || i >= w.src.SheetCount() {
		return nil, fmt.Errorf("%w: %d", ErrSheetOutOfRange, i)
	}
	if sc, ok := w.contexts[i]; ok {
		return sc, nil
	}

	sheet, err := w.sheet(i)
	if err != nil {
		return nil, err
	}
	sc, err := BuildSheetContext(sheet, w.ignoreC, w.keyFn, w.log)
	if err != nil {
		return nil, NewExportError(w.src.SheetName(i), i, err)
	}
	w.contexts[i] = sc
	return sc, nil
}

func (w *Workbook) sheet(i int) (*models.SheetData, error) {
	if sheet, ok := w.sheets[i]; ok {
		return sheet, nil
	}
	sheet, err := w.src.ReadSheet(i)
	if err != nil {
		return nil, NewExportError(w.src.SheetName(i), i, err)
	}
	w.sheets[i] = sheet
	return sheet, nil
}
