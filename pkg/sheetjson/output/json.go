// Package output serializes exported values to JSON.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ukaji3/sheetjson-go/pkg/sheetjson"
)

// ContentType is the media type of every serialized payload.
const ContentType = "application/json"

// ToJSON serializes v. HTML characters are not escaped; pretty output is indented by two
// spaces. The result never carries a trailing newline.
func ToJSON(v any, pretty bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// SheetFileName returns a file name for a sheet's export, with path separators replaced.
func SheetFileName(sheetName string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, sheetName)
	return name + ".json"
}

// WriteSheetFiles writes one <sheet>.json per exported sheet into dir. Sheets sharing a name
// are merged into one file.
func WriteSheetFiles(results []sheetjson.SheetResult, dir string, pretty bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	merged, err := sheetjson.Combine(results, sheetjson.FormatObjectBySheetName)
	if err != nil {
		return nil, err
	}

	var written []string
	obj := merged.(*sheetjson.Object)
	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		data, err := ToJSON(pair.Value, pretty)
		if err != nil {
			return written, fmt.Errorf("serializing sheet %q: %w", pair.Key, err)
		}
		path := filepath.Join(dir, SheetFileName(pair.Key))
		if err := os.WriteFile(path, data, 0644); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}
