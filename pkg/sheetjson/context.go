package sheetjson

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/models"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/schema"
)

// HeaderRow is the position of the header row in every sheet.
const HeaderRow = 0

// SheetContext is the schema of one sheet, built once from its header row and read-only
// afterwards.
type SheetContext struct {
	// Schema holds the top-level properties in first-appearance order.
	Schema *schema.Properties
	// ColumnIndex maps each full header string to its zero-based column.
	ColumnIndex map[string]int
}

// BuildSheetContext builds the context of a sheet from its header row. Blank header cells
// and headers matching any of ignoreColumns are skipped. keyFn is the output key transform,
// used to reject identifiers that would collide after transformation.
func BuildSheetContext(sheet *models.SheetData, ignoreColumns []*regexp.Regexp, keyFn func(string) string, log logrus.FieldLogger) (*SheetContext, error) {
	sc := &SheetContext{
		Schema:      schema.NewProperties(),
		ColumnIndex: make(map[string]int),
	}
	if len(sheet.Rows) <= HeaderRow {
		return sc, nil
	}

	for col, cell := range sheet.Rows[HeaderRow] {
		header := headerText(cell)
		if strings.TrimSpace(header) == "" {
			continue
		}
		if matchesAny(ignoreColumns, header) {
			log.WithFields(logrus.Fields{"sheet": sheet.Name, "column": col, "header": header}).Debug("Skipping ignored column")
			continue
		}
		if _, ok := sc.ColumnIndex[header]; ok {
			return nil, &SchemaError{Kind: schema.KindDuplicateHeader, Header: header}
		}
		if err := schema.Build(sc.Schema, header); err != nil {
			return nil, err
		}
		sc.ColumnIndex[header] = col
	}

	if err := sc.validate(keyFn); err != nil {
		return nil, err
	}
	return sc, nil
}

// validate checks that every array index has a backing column and that no two
// identifiers in one scope produce the same output key.
func (sc *SheetContext) validate(keyFn func(string) string) error {
	if err := checkKeys("", sc.Schema, keyFn); err != nil {
		return err
	}
	return schema.WalkLeaves(sc.Schema, func(path string) error {
		if _, ok := sc.ColumnIndex[path]; !ok {
			return schema.NewNonContiguousError(path)
		}
		return nil
	})
}

func checkKeys(prefix string, scope *schema.Properties, keyFn func(string) string) error {
	seen := make(map[string]string, scope.Len())
	for pair := scope.Oldest(); pair != nil; pair = pair.Next() {
		key := keyFn(pair.Key)
		if other, ok := seen[key]; ok {
			return &SchemaError{Kind: schema.KindDuplicateKey, Header: schema.ChildPath(prefix, other), Token: key}
		}
		seen[key] = pair.Key
		if err := checkKeys(schema.ChildPath(prefix, pair.Key), pair.Value.Children, keyFn); err != nil {
			return err
		}
	}
	return nil
}

// headerText returns the text of a header cell.
func headerText(c models.Cell) string {
	switch c.Kind {
	case models.CellBlank:
		return ""
	case models.CellBool:
		if c.Bool {
			return "TRUE"
		}
		return "FALSE"
	case models.CellNumber:
		if c.Text == "" {
			return strconv.FormatFloat(c.Number, 'f', -1, 64)
		}
	}
	return c.Text
}
