package schema

import (
	"errors"
	"fmt"
)

// ErrSchema matches every *Error via errors.Is.
var ErrSchema = errors.New("schema error")

// ErrorKind classifies a structural header problem.
type ErrorKind string

const (
	// KindMalformedToken marks a header token that does not match the grammar.
	KindMalformedToken ErrorKind = "malformed_token"
	// KindNonContiguousArray marks an array index with no backing column.
	KindNonContiguousArray ErrorKind = "non_contiguous_array"
	// KindDuplicateHeader marks a header string that appears in more than one column.
	KindDuplicateHeader ErrorKind = "duplicate_header"
	// KindDuplicateKey marks two identifiers that map to the same output key.
	KindDuplicateKey ErrorKind = "duplicate_key"
)

// Error reports a structural problem in a sheet's header row. It is fatal for the sheet.
type Error struct {
	Kind ErrorKind
	// Header is the full header string, or the missing column path for KindNonContiguousArray.
	Header string
	// Token is the offending token or output key, when there is one.
	Token string
	// Sheet is the name of the sheet, filled in by the exporter.
	Sheet string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindMalformedToken:
		return fmt.Sprintf("invalid token %q in column header %q: identifier syntax cannot be parsed", e.Token, e.Header)
	case KindNonContiguousArray:
		return fmt.Sprintf("cannot find column %q: array indices must be contiguous with no gaps", e.Header)
	case KindDuplicateHeader:
		return fmt.Sprintf("column header %q appears more than once", e.Header)
	case KindDuplicateKey:
		return fmt.Sprintf("output key %q is produced by more than one identifier near %q", e.Token, e.Header)
	}
	return fmt.Sprintf("schema error in column header %q", e.Header)
}

// Is makes errors.Is(err, ErrSchema) true for any *Error.
func (e *Error) Is(target error) bool {
	return target == ErrSchema
}

func newMalformedTokenError(header, token string) *Error {
	return &Error{Kind: KindMalformedToken, Header: header, Token: token}
}

// NewNonContiguousError reports a missing column behind an array index.
func NewNonContiguousError(path string) *Error {
	return &Error{Kind: KindNonContiguousArray, Header: path}
}
