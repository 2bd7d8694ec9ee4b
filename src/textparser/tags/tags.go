package tags

import (
	"fmt"
	"regexp"
	"strings"
)

var reTag = regexp.MustCompile(`<<[^>]+>>`)

// Protected holds text with every <<...>> tag swapped for an opaque
// placeholder. Placeholders are delimited by private-use runes so they never
// join an adjacent word and break \b matches.
type Protected struct {
	Text string
	tags []string
}

func Protect(text string) Protected {
	p := Protected{}
	p.Text = reTag.ReplaceAllStringFunc(text, func(tag string) string {
		p.tags = append(p.tags, tag)
		return placeholder(len(p.tags) - 1)
	})
	return p
}

// Restore puts the original tags back into text.
func (p Protected) Restore(text string) string {
	if len(p.tags) == 0 {
		return text
	}
	pairs := make([]string, 0, len(p.tags)*2)
	for i, tag := range p.tags {
		pairs = append(pairs, placeholder(i), tag)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

func placeholder(i int) string {
	return fmt.Sprintf("\ue000%d\ue001", i)
}
