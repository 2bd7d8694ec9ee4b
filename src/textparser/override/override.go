package override

import (
	"fmt"
	"regexp"
	"sort"
)

// Apply replaces whole-word occurrences of each key of replacements with its
// value. Keys are applied in sorted order so output is stable across runs.
func Apply(text string, replacements map[string]string) string {
	if len(replacements) == 0 {
		return text
	}
	keys := make([]string, 0, len(replacements))
	for k := range replacements {
		if k != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		re := regexp.MustCompile(fmt.Sprintf(`\b%s\b`, regexp.QuoteMeta(k)))
		text = re.ReplaceAllLiteralString(text, replacements[k])
	}
	return text
}
