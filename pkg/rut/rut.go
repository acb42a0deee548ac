// Package rut implements parsing, validation and formatting of Chilean
// national identifiers (RUT). Charts may be stored with or without dot/dash
// separators depending on the import that produced them, so every lookup
// path normalizes through this package before comparing.
package rut

import (
	"strings"
	"unicode"
)

// Normalize strips separators (dots, dashes, whitespace), upper-cases the
// check character and removes leading zeros from the numeric body. An empty
// input normalizes to the empty string; it is not an error.
func Normalize(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r == '.' || r == '-' || unicode.IsSpace(r):
			// separator, drop
		default:
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	s := b.String()
	if s == "" {
		return ""
	}
	body, dv := s[:len(s)-1], s[len(s)-1:]
	body = strings.TrimLeft(body, "0")
	return body + dv
}

// Validate reports whether raw is a well-formed RUT with a correct check
// digit. The body must be at least 7 digits. The check digit follows the
// modulus-11 algorithm with weights cycling 2..7 over the reversed digits;
// remainder 11 maps to '0' and 10 maps to 'K'.
func Validate(raw string) bool {
	s := Normalize(raw)
	if len(s) < 2 {
		return false
	}
	body, dv := s[:len(s)-1], s[len(s)-1]
	if len(body) < 7 {
		return false
	}
	for _, r := range body {
		if r < '0' || r > '9' {
			return false
		}
	}
	return checkDigit(body) == dv
}

// Format renders raw in the canonical display form with thousand-separator
// dots and a dash before the check character, e.g. "12.345.678-9". Invalidly
// short input is returned normalized but unformatted; empty input yields "".
func Format(raw string) string {
	s := Normalize(raw)
	if len(s) < 2 {
		return s
	}
	body, dv := s[:len(s)-1], s[len(s)-1:]

	var groups []string
	for len(body) > 3 {
		groups = append([]string{body[len(body)-3:]}, groups...)
		body = body[:len(body)-3]
	}
	groups = append([]string{body}, groups...)

	return strings.Join(groups, ".") + "-" + dv
}

// checkDigit computes the expected check character for a numeric body.
func checkDigit(body string) byte {
	sum := 0
	weight := 2
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * weight
		weight++
		if weight > 7 {
			weight = 2
		}
	}
	switch expected := 11 - sum%11; expected {
	case 11:
		return '0'
	case 10:
		return 'K'
	default:
		return byte('0' + expected)
	}
}
