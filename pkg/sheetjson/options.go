// Package sheetjson transcodes spreadsheets whose header row encodes a nested schema
// (dotted paths with optional array indices) into JSON, one object per data row.
package sheetjson

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// OutputFormat selects the top-level shape of a workbook export.
type OutputFormat string

const (
	// FormatArrayOfSheets emits one array whose elements are each sheet's row array.
	FormatArrayOfSheets OutputFormat = "array_of_sheets"
	// FormatObjectBySheetName emits one object keyed by sheet name. Sheets sharing a name
	// have their rows merged under one key.
	FormatObjectBySheetName OutputFormat = "object_by_sheet_name"
	// FormatArrayOfNamedSheets emits one array of single-key objects, { "<sheet>": rows }.
	FormatArrayOfNamedSheets OutputFormat = "array_of_named_sheets"
)

// ParseOutputFormat parses a format name. Dashes are accepted in place of underscores.
func ParseOutputFormat(s string) (OutputFormat, error) {
	f := OutputFormat(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	switch f {
	case FormatArrayOfSheets, FormatObjectBySheetName, FormatArrayOfNamedSheets:
		return f, nil
	case "":
		return FormatArrayOfSheets, nil
	}
	return "", fmt.Errorf("invalid output format: %s (must be array_of_sheets, object_by_sheet_name, or array_of_named_sheets)", s)
}

// Options configures export behavior.
type Options struct {
	// IgnoreSheetPatterns excludes sheets whose name matches any pattern from workbook exports.
	IgnoreSheetPatterns []string
	// IgnoreColumnPatterns excludes header columns whose text matches any pattern.
	IgnoreColumnPatterns []string
	// Format is the workbook-level output shape. Empty means FormatArrayOfSheets.
	Format OutputFormat
	// Naming transforms identifiers into output keys. Empty means NamingRaw.
	Naming NamingConvention
	// KeyFunc, if set, overrides Naming.
	KeyFunc func(identifier string) string
	// MaxRows caps the number of rows emitted per sheet. Zero means no limit.
	MaxRows int
	// Logger receives debug output. If nil, nothing is logged.
	Logger logrus.FieldLogger
}

// DefaultOptions returns default export options: raw key names, nothing ignored,
// array-of-sheets output.
func DefaultOptions() Options {
	return Options{
		Format: FormatArrayOfSheets,
		Naming: NamingRaw,
	}
}

// OutputFormat returns the configured format, defaulting to FormatArrayOfSheets.
func (o Options) OutputFormat() OutputFormat {
	if o.Format == "" {
		return FormatArrayOfSheets
	}
	return o.Format
}

// Validate checks that the patterns compile and the format and naming are known.
func (o Options) Validate() error {
	if _, err := ParseOutputFormat(string(o.Format)); err != nil {
		return err
	}
	if _, err := o.keyFunc(); err != nil {
		return err
	}
	if _, err := compilePatterns("sheet", o.IgnoreSheetPatterns); err != nil {
		return err
	}
	if _, err := compilePatterns("column", o.IgnoreColumnPatterns); err != nil {
		return err
	}
	if o.MaxRows < 0 {
		return fmt.Errorf("invalid max rows: %d", o.MaxRows)
	}
	return nil
}

// keyFunc returns the identifier transform to apply at object assembly.
func (o Options) keyFunc() (func(string) string, error) {
	if o.KeyFunc != nil {
		return o.KeyFunc, nil
	}
	return o.Naming.Func()
}

func (o Options) logger() logrus.FieldLogger {
	if o.Logger != nil {
		return o.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func compilePatterns(kind string, patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s ignore pattern %q: %w", kind, p, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
