package sanitization

import (
	"regexp"
	"strings"
	"unicode"
)

var multiSpace = regexp.MustCompile(`\s+`)

// SanitizeLine prepares a single-line field such as a name: control
// characters are dropped, any run of whitespace (line breaks included)
// becomes one space, and the ends are trimmed.
func SanitizeLine(input string) string {
	safe := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, input)

	return strings.TrimSpace(multiSpace.ReplaceAllString(safe, " "))
}

// SanitizeEmail trims an email address and drops control characters. Inner
// spaces are kept so that validation rejects them.
func SanitizeEmail(input string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, strings.TrimSpace(input))
}

// SanitizeText prepares free text such as a message: line endings become
// \n, other control characters except tabs are dropped, and the ends are
// trimmed. Inner line breaks are kept.
func SanitizeText(input string) string {
	safe := strings.ReplaceAll(input, "\r\n", "\n")
	safe = strings.ReplaceAll(safe, "\r", "\n")
	safe = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, safe)

	return strings.TrimSpace(safe)
}
