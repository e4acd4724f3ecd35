package sheetjson

import (
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"
)

// NamingConvention names a transform from schema identifiers to output keys.
type NamingConvention string

const (
	// NamingRaw keeps identifiers as written in the header row.
	NamingRaw NamingConvention = "raw"
	// NamingCamel lower-camel-cases identifiers. Underscores split words and acronyms are
	// folded: "First_Name" -> "firstName", "userID" -> "userId", "URL" -> "url". Use
	// NamingRaw to keep identifiers such as "first_name" or "userID" as written.
	NamingCamel NamingConvention = "camel"
	// NamingSnake snake-cases identifiers ("FirstName" -> "first_name").
	NamingSnake NamingConvention = "snake"
	// NamingKebab kebab-cases identifiers ("FirstName" -> "first-name").
	NamingKebab NamingConvention = "kebab"
)

// ParseNamingConvention parses a convention name. Empty means NamingRaw.
func ParseNamingConvention(s string) (NamingConvention, error) {
	n := NamingConvention(strings.ToLower(strings.TrimSpace(s)))
	if n == "" {
		return NamingRaw, nil
	}
	if _, err := n.Func(); err != nil {
		return "", err
	}
	return n, nil
}

// Func returns the key transform for the convention.
func (n NamingConvention) Func() (func(string) string, error) {
	switch n {
	case "", NamingRaw:
		return rawKey, nil
	case NamingCamel:
		return strcase.ToLowerCamel, nil
	case NamingSnake:
		return strcase.ToSnake, nil
	case NamingKebab:
		return strcase.ToKebab, nil
	}
	return nil, fmt.Errorf("invalid naming convention: %s (must be raw, camel, snake, or kebab)", string(n))
}

func rawKey(identifier string) string {
	return identifier
}
