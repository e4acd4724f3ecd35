package sheetjson

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/models"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/schema"
)

// Object is a JSON object that keeps keys in schema order when marshaled.
type Object = orderedmap.OrderedMap[string, any]

// NewObject returns an empty ordered JSON object.
func NewObject() *Object {
	return orderedmap.New[string, any]()
}

// generator assembles the JSON value of one data row.
type generator struct {
	ctx   *SheetContext
	sheet *models.SheetData
	row   int
	keyFn func(string) string
}

// GenerateRow builds the object for one data row: a token for every top-level property,
// in schema order.
func (sc *SheetContext) GenerateRow(sheet *models.SheetData, row int, keyFn func(string) string) (*Object, error) {
	g := generator{ctx: sc, sheet: sheet, row: row, keyFn: keyFn}
	return g.object("", sc.Schema)
}

// object builds a nested object from a scope; child paths are parentPath.childIdentifier.
func (g *generator) object(prefix string, scope *schema.Properties) (*Object, error) {
	obj := NewObject()
	for pair := scope.Oldest(); pair != nil; pair = pair.Next() {
		path := schema.ChildPath(prefix, pair.Key)
		value, err := g.token(path, pair.Value)
		if err != nil {
			return nil, err
		}
		key := g.keyFn(pair.Key)
		if _, present := obj.Set(key, value); present {
			return nil, &SchemaError{Kind: schema.KindDuplicateKey, Header: path, Token: key}
		}
	}
	return obj, nil
}

// token generates the value of one property at path.
func (g *generator) token(path string, prop *schema.Property) (any, error) {
	if !prop.IsArray() {
		return g.element(path, prop)
	}

	arr := make([]any, 0, prop.ArrayLen())
	for i := 0; i < prop.ArrayLen(); i++ {
		value, err := g.element(schema.IndexedPath(path, i), prop)
		if err != nil {
			return nil, err
		}
		arr = append(arr, value)
	}
	return arr, nil
}

// element generates an object for properties with children, otherwise a scalar leaf.
func (g *generator) element(path string, prop *schema.Property) (any, error) {
	if prop.IsObject() {
		return g.object(path, prop.Children)
	}
	return g.primitive(path)
}

// primitive resolves the scalar leaf at path via the column index.
func (g *generator) primitive(path string) (any, error) {
	col, ok := g.ctx.ColumnIndex[path]
	if !ok {
		// A missing column can only come from a gap in array indices.
		return nil, schema.NewNonContiguousError(path)
	}
	return ResolveCell(g.sheet.Cell(g.row, col)), nil
}
