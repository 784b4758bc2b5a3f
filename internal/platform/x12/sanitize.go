package x12

import "strings"

// reserved holds the X12 structural characters: the segment terminator,
// element separator, repetition separator, an alternate repetition character
// seen in legacy feeds, and the escape character. Any of these inside field
// data would corrupt the interchange, so they are stripped, not escaped.
const reserved = "~*^|\\"

// Sanitize removes the reserved separator characters from free-text field
// data and trims surrounding whitespace.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(reserved, r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// StripDecimal renders an ICD-10 code for the wire: HI segments carry codes
// without the decimal point (Z59.0 becomes Z590).
func StripDecimal(code string) string {
	return strings.ReplaceAll(strings.TrimSpace(code), ".", "")
}
