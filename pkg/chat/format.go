// Package chat formats and sanitizes chat text. Colours use the host's section sign codes,
// e.g. "§c" for red.
package chat

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	codeGreen  = "§a"
	codeRed    = "§c"
	codeOrange = "§6"
	codeYellow = "§e"
	codeGray   = "§7"
	codeBlue   = "§9"
	codeReset  = "§r"
)

func color(code, s string) string { return code + s + codeReset }

func Green(s string) string  { return color(codeGreen, s) }
func Red(s string) string    { return color(codeRed, s) }
func Orange(s string) string { return color(codeOrange, s) }
func Yellow(s string) string { return color(codeYellow, s) }
func Gray(s string) string   { return color(codeGray, s) }
func Blue(s string) string   { return color(codeBlue, s) }

// Fail formats a rejected action the player can correct.
func Fail(s string) string { return Orange(s) }

func Success(s string) string { return Green(s) }

// matches colour and formatting codes
var codeSanitizer = regexp.MustCompile("§.")

// Sanitize returns s, cleared of colour codes and surrounding whitespace.
func Sanitize(s string) string {
	s = codeSanitizer.ReplaceAllLiteralString(s, "")
	return strings.TrimSpace(s)
}

// Filter keeps letters, digits and the given extra runes (and spaces if whitespaceAllowed).
func Filter(s string, whitespaceAllowed bool, extra ...rune) (filtered string) {
	s = Sanitize(s)

	keep := func(r rune) bool {
		for _, e := range extra {
			if r == e {
				return true
			}
		}
		return unicode.IsLetter(r) || unicode.IsDigit(r) || (whitespaceAllowed && unicode.IsSpace(r))
	}

	var b strings.Builder
	for _, r := range s {
		if keep(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// List joins items like "a, b and c".
func List(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}
