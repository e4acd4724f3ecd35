// Package schema parses dotted/indexed column headers into a nested property tree.
//
// A header such as "address.lines[2]" is a dot-separated list of tokens. Each token is an
// identifier made of word characters, optionally followed by a bracketed array index.
package schema

import (
	"regexp"
	"strconv"
	"strings"
)

// tokenPattern anchors the whole token: identifier ( "[" index "]" )?. Indices have no
// leading zeros, so every accepted token formats back to its own text.
var tokenPattern = regexp.MustCompile(`^([\p{L}\p{Mn}\p{Nd}\p{Pc}]+)(?:\[(0|[1-9][0-9]*)\])?$`)

// Separator joins the tokens of a header.
const Separator = "."

// Token is one segment of a header string.
type Token struct {
	// Identifier names the schema field.
	Identifier string
	// Index is the array element addressed by the token. Only meaningful when HasIndex is set.
	Index int
	// HasIndex reports whether the token carried a bracketed index.
	HasIndex bool
}

// String renders the token back into header syntax.
func (t Token) String() string {
	if !t.HasIndex {
		return t.Identifier
	}
	return IndexedPath(t.Identifier, t.Index)
}

// ParseToken parses a single token taken from header.
func ParseToken(token, header string) (Token, error) {
	m := tokenPattern.FindStringSubmatch(token)
	if m == nil {
		return Token{}, newMalformedTokenError(header, token)
	}

	t := Token{Identifier: m[1]}
	if m[2] != "" {
		idx, err := strconv.Atoi(m[2])
		if err != nil {
			return Token{}, newMalformedTokenError(header, token)
		}
		t.Index = idx
		t.HasIndex = true
	}
	return t, nil
}

// ParseHeader splits header on the separator and parses every token.
func ParseHeader(header string) ([]Token, error) {
	parts := strings.Split(header, Separator)
	tokens := make([]Token, 0, len(parts))
	for _, part := range parts {
		t, err := ParseToken(part, header)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, nil
}

// FormatHeader is the inverse of ParseHeader.
func FormatHeader(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.String()
	}
	return strings.Join(parts, Separator)
}

// ChildPath returns the full path of a named child below parent.
func ChildPath(parent, identifier string) string {
	if parent == "" {
		return identifier
	}
	return parent + Separator + identifier
}

// IndexedPath returns the path of element i of the array at path.
func IndexedPath(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}
