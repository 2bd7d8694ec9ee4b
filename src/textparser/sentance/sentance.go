package sentance

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jdkato/prose/v2"
)

// DefaultLimit is the largest chunk, in characters, the synthesis model
// handles without drifting.
const DefaultLimit = 250

var reSpace = regexp.MustCompile(`\s+`)

// Sentences tokenizes text into sentences. If the tokenizer fails the whole
// text is returned as one sentence.
func Sentences(text string) []string {
	doc, err := prose.NewDocument(text,
		prose.WithTokenization(false),
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return []string{reSpace.ReplaceAllString(text, " ")}
	}
	sent := doc.Sentences()
	sentances := make([]string, 0, len(sent))
	for _, s := range sent {
		sentances = append(sentances, reSpace.ReplaceAllString(s.Text, " "))
	}
	return sentances
}

// Split packs the sentences of text into chunks of at most limit characters.
// A sentence longer than limit is hard-split on whitespace; a single word
// longer than limit becomes its own chunk.
func Split(text string, limit int) []string {
	if limit <= 0 {
		limit = DefaultLimit
	}

	chunks := []string{}
	current := ""
	flush := func() {
		if c := strings.TrimSpace(current); c != "" {
			chunks = append(chunks, c)
		}
		current = ""
	}

	for _, s := range Sentences(text) {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}

		if runeLen(s) > limit {
			flush()
			for _, word := range strings.Fields(s) {
				if current != "" && runeLen(current)+1+runeLen(word) > limit {
					flush()
				}
				current = join(current, word)
			}
			flush()
			continue
		}

		if current != "" && runeLen(current)+1+runeLen(s) > limit {
			flush()
		}
		current = join(current, s)
	}
	flush()

	return chunks
}

func join(current, next string) string {
	if current == "" {
		return next
	}
	return current + " " + next
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
