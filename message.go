package fpo

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// FormatMessage builds the deprecation message for affected, which must be
// sorted by position and free of duplicates. One name uses the singular
// grammar, more than one the plural grammar. An empty list yields "".
func FormatMessage(affected []Param) string {
	var b strings.Builder
	switch len(affected) {
	case 0:
		return ""
	case 1:
		b.WriteString("Passing ")
		b.WriteString(quote(affected[0].Name))
		b.WriteString(" as keyword (at position ")
		b.WriteString(strconv.Itoa(affected[0].Position))
		b.WriteString(") is deprecated and will stop working in a future release. ")
		b.WriteString("Pass it positionally to suppress this warning.")
	default:
		b.WriteString("Passing [")
		for i, p := range affected {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(quote(p.Name))
		}
		b.WriteString("] arguments as keywords (at positions [")
		for i, p := range affected {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Itoa(p.Position))
		}
		b.WriteString("], respectively) is deprecated and will stop working in a future release. ")
		b.WriteString("Pass them positionally to suppress this warning.")
	}
	return b.String()
}

// quote renders s the way a repr of a string literal looks: single quotes,
// unless s holds a single quote and no double quote.
func quote(s string) string {
	q := byte('\'')
	if strings.IndexByte(s, '\'') >= 0 && strings.IndexByte(s, '"') < 0 {
		q = '"'
	}

	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte(q)
	for _, r := range s {
		switch {
		case r == '\\' || r == rune(q):
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case !unicode.IsPrint(r) && r < 0x100:
			fmt.Fprintf(&b, `\x%02x`, r)
		case !unicode.IsPrint(r):
			// strconv gives \u or \U escapes without the surrounding quotes.
			esc := strconv.QuoteRuneToASCII(r)
			b.WriteString(esc[1 : len(esc)-1])
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(q)
	return b.String()
}
