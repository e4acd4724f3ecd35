package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson"
)

func row(key string, value any) *sheetjson.Object {
	obj := sheetjson.NewObject()
	obj.Set(key, value)
	return obj
}

func TestToJSON(t *testing.T) {
	v := []any{row("url", "a<b>&c")}

	compact, err := ToJSON(v, false)
	require.NoError(t, err)
	assert.Equal(t, `[{"url":"a<b>&c"}]`, string(compact))

	pretty, err := ToJSON(v, true)
	require.NoError(t, err)
	assert.Equal(t, "[\n  {\n    \"url\": \"a<b>&c\"\n  }\n]", string(pretty))
}

func TestSheetFileName(t *testing.T) {
	assert.Equal(t, "Q1_Q2 sales.json", SheetFileName("Q1/Q2 sales"))
	assert.Equal(t, "Sheet1.json", SheetFileName("Sheet1"))
}

func TestWriteSheetFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sheets")
	results := []sheetjson.SheetResult{
		{Name: "A", Position: 0, Rows: []any{row("n", int64(1))}},
		{Name: "B", Position: 1, Rows: []any{}},
		{Name: "A", Position: 2, Rows: []any{row("n", int64(2))}},
	}

	written, err := WriteSheetFiles(results, dir, false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "A.json"), filepath.Join(dir, "B.json")}, written)

	data, err := os.ReadFile(filepath.Join(dir, "A.json"))
	require.NoError(t, err)
	assert.Equal(t, `[{"n":1},{"n":2}]`, string(data))

	data, err = os.ReadFile(filepath.Join(dir, "B.json"))
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}
