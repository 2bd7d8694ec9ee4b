package scrape

import (
	"net/url"
	"path"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// titleReplacer spells out the characters chapter titles commonly carry
// so file names stay plain ASCII and sort predictably.
var titleReplacer = strings.NewReplacer(
	"\u00a0", " ",
	"\u00b4", "'",
	" \u0301", "'",
	"\u00e4", "ae",
	"\u0101", "aa",
	"\u00e9", "e",
	"\u00f6", "oo",
	"\u016b", "uu",
	"\"", "'",
	"\u2026", "...",
	"\u2014", "-",
	"\u2013", "-",
	"\u2019", "'",
	"\u2018", "'",
	"`", "'",
	"\u201c", "'",
	"\u201d", "'",
	"\t", " ",
	"~", "-",
	":", "",
	"\u00fb", "uu",
	"\u00fa", "uu",
	"\u00fc", "uu",
	"\u00f4", "oo",
	"\u00f3", "oo",
	"\u00f2", "oo",
	"\u00f1", "nn",
	"\u00ed", "ii",
	"\u00ec", "ii",
	"\u00ee", "ii",
	"\u00e7", "c",
	"\u00df", "ss",
)

var unsafeName = regexp.MustCompile(`[\\/:*?"<>|]`)

// CleanTitle applies the typographic table to a scraped title.
func CleanTitle(title string) string {
	return strings.TrimSpace(titleReplacer.Replace(title))
}

// SanitizeTitle makes a cleaned title safe for use as a file name. Accents
// the table does not cover are folded away.
func SanitizeTitle(title string) string {
	title = unsafeName.ReplaceAllString(title, "")
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, title); err == nil {
		title = folded
	}
	return strings.TrimSpace(title)
}

// slugTitle derives a title from the last path segment of a chapter URL.
func slugTitle(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	slug := path.Base(strings.TrimSuffix(u.Path, "/"))
	if slug == "." || slug == "/" {
		return ""
	}
	return strings.ReplaceAll(slug, "-", " ")
}
