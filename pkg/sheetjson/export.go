package sheetjson

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/models"
)

// ExportSheet exports sheet i as an array of row objects. The header row is row 0; blank
// rows are dropped.
func (w *Workbook) ExportSheet(i int) ([]any, error) {
	sc, err := w.SheetContext(i)
	if err != nil {
		return nil, err
	}
	sheet, err := w.sheet(i)
	if err != nil {
		return nil, err
	}

	name := w.src.SheetName(i)
	log := w.log.WithFields(logrus.Fields{"sheet": name, "position": i})

	rows := make([]any, 0, max(len(sheet.Rows)-HeaderRow-1, 0))
	skipped := 0
	for r := HeaderRow + 1; r < len(sheet.Rows); r++ {
		if sheet.IsBlankRow(r) {
			skipped++
			continue
		}
		if w.opts.MaxRows > 0 && len(rows) >= w.opts.MaxRows {
			log.WithField("max_rows", w.opts.MaxRows).Debug("Row limit reached")
			break
		}
		obj, err := sc.GenerateRow(sheet, r, w.keyFn)
		if err != nil {
			return nil, NewExportError(name, i, err)
		}
		rows = append(rows, obj)
	}

	log.WithFields(logrus.Fields{"rows": len(rows), "blank_rows": skipped}).Debug("Exported sheet")
	return rows, nil
}

// SheetResult is the exported rows of one sheet.
type SheetResult struct {
	Name     string
	Position int
	Rows     []any
}

// ExportSheets exports every sheet not matching an ignore pattern, in workbook order.
func (w *Workbook) ExportSheets() ([]SheetResult, error) {
	results := make([]SheetResult, 0, w.src.SheetCount())
	for i := 0; i < w.src.SheetCount(); i++ {
		name := w.src.SheetName(i)
		if matchesAny(w.ignoreS, name) {
			w.log.WithField("sheet", name).Debug("Skipping ignored sheet")
			continue
		}
		rows, err := w.ExportSheet(i)
		if err != nil {
			return nil, err
		}
		results = append(results, SheetResult{Name: name, Position: i, Rows: rows})
	}
	return results, nil
}

// ExportWorkbook exports every non-ignored sheet and combines them in the configured
// output format.
func (w *Workbook) ExportWorkbook() (any, error) {
	results, err := w.ExportSheets()
	if err != nil {
		return nil, err
	}
	return Combine(results, w.opts.OutputFormat())
}

// Combine shapes exported sheets into one workbook value.
func Combine(results []SheetResult, format OutputFormat) (any, error) {
	switch format {
	case FormatArrayOfSheets, "":
		out := make([]any, 0, len(results))
		for _, res := range results {
			out = append(out, res.Rows)
		}
		return out, nil

	case FormatObjectBySheetName:
		out := NewObject()
		for _, res := range results {
			// Sheets sharing a name are merged, never overwritten.
			prev, ok := out.Get(res.Name)
			if !ok {
				prev = make([]any, 0, len(res.Rows))
			}
			out.Set(res.Name, append(prev.([]any), res.Rows...))
		}
		return out, nil

	case FormatArrayOfNamedSheets:
		out := make([]any, 0, len(results))
		for _, res := range results {
			named := NewObject()
			named.Set(res.Name, res.Rows)
			out = append(out, named)
		}
		return out, nil
	}
	return nil, fmt.Errorf("invalid output format: %s", format)
}

// ExportEnvelope exports the workbook and wraps it with document metadata.
func (w *Workbook) ExportEnvelope(meta models.DocumentMetadata) (*models.Envelope, error) {
	data, err := w.ExportWorkbook()
	if err != nil {
		return nil, err
	}
	return &models.Envelope{Metadata: meta, Data: data}, nil
}
