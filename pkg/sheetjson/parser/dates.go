package parser

import (
	"strings"
)

// isDateFormat reports whether a number format renders its value as a date or time.
func isDateFormat(numFmtID int, formatCode string) bool {
	switch numFmtID {
	case 14, 15, 16, 17, 18, 19, 20, 21, 22,
		27, 28, 29, 30, 31, 32, 33, 34, 35, 36,
		45, 46, 47, 50, 51, 52, 53, 54, 55, 56, 57, 58:
		return true
	}

	if formatCode == "" {
		return false
	}
	return isDateFormatCode(formatCode)
}

// isDateFormatCode scans the first section of a custom format code for date or time
// placeholders, ignoring quoted literals, escaped characters, and bracketed modifiers
// such as colors and locales. Elapsed-time brackets ([h], [mm], [ss]) count as time.
func isDateFormatCode(code string) bool {
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch ch {
		case ';':
			return false
		case '"':
			end := strings.IndexByte(code[i+1:], '"')
			if end < 0 {
				return false
			}
			i += end + 1
		case '\\', '_', '*':
			i++
		case '[':
			end := strings.IndexByte(code[i+1:], ']')
			if end < 0 {
				return false
			}
			if isElapsedTime(code[i+1 : i+1+end]) {
				return true
			}
			i += end + 1
		default:
			switch ch | 0x20 {
			case 'y', 'm', 'd', 'h', 's':
				return true
			}
		}
	}
	return false
}

func isElapsedTime(modifier string) bool {
	if modifier == "" {
		return false
	}
	m := strings.ToLower(modifier)
	first := m[0]
	if first != 'h' && first != 'm' && first != 's' {
		return false
	}
	return strings.Trim(m, string(first)) == ""
}
