package ingest

import "strings"

// builtinDateFormats built-in number format ids that render dates or times.
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	45: true, 46: true, 47: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

// isDateFormat reports whether a number format id or custom code renders a date.
func isDateFormat(numFmt int, custom string) bool {
	if builtinDateFormats[numFmt] {
		return true
	}
	if custom == "" {
		return false
	}
	return isDateFormatCode(custom)
}

// isDateFormatCode looks for date tokens outside quoted literals,
// bracketed sections and escaped characters. Only the first section counts.
func isDateFormatCode(code string) bool {
	if i := strings.IndexByte(code, ';'); i >= 0 {
		code = code[:i]
	}

	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case inQuote:
			if ch == '"' {
				inQuote = false
			}
		case inBracket:
			if ch == ']' {
				inBracket = false
			}
		case ch == '"':
			inQuote = true
		case ch == '[':
			inBracket = true
		case ch == '\\' || ch == '_' || ch == '*':
			i++ // skip the escaped / padding character
		default:
			switch ch | 0x20 { // ascii lower
			case 'd', 'm', 'y', 'h', 's':
				return true
			}
		}
	}
	return false
}
