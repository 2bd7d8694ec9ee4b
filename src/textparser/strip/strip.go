package strip

import (
	"regexp"
	"strings"
)

var typography = strings.NewReplacer(
	"\u201c", `"`, // left double quote
	"\u201d", `"`,
	"\u2018", "'",
	"\u2019", "'",
	"\u2026", "...",
	"%", "-percent",
	"\u2014", ";", // em dash
	"\u2013", "-", // en dash
	"\u00a0", " ",
	"\u00ad", "", // soft hyphen
	"\u200b", "", // zero-width space
	"\u200c", "",
	"\u200d", "",
	"\u2032", " feet",
	"\u2033", " inches",
)

var reBrackets = regexp.MustCompile(`\[(.*?)\]`)
var reAngles = regexp.MustCompile(`^[<>]+|[<>]+$`)

// Typography replaces characters the synthesis model reads badly.
func Typography(text string) string {
	return typography.Replace(text)
}

// Brackets unwraps [X] into X. Brackets mark stage directions upstream and
// would otherwise be read aloud.
func Brackets(text string) string {
	return reBrackets.ReplaceAllString(text, "$1")
}

// Angles trims leading and trailing angle brackets off a chunk.
func Angles(text string) string {
	return strings.TrimSpace(reAngles.ReplaceAllString(strings.TrimSpace(text), ""))
}
