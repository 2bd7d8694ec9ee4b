package sentance

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passage = `The gate opened slowly. Kael stepped through, his sword drawn and his breath held. ` +
	`Beyond lay a hall of pale stone, lit by lanterns that had burned for a thousand years without tending. ` +
	`"Who goes there?" a voice called. He did not answer. Somewhere far below, water dripped onto stone, ` +
	`and the sound carried up through the hollow pillars like the ticking of a great clock. ` +
	`He counted the drops. Ten. Twenty. Then silence.`

func TestSplitRespectsLimit(t *testing.T) {
	for _, limit := range []int{40, 80, 120, DefaultLimit} {
		for _, c := range Split(passage, limit) {
			assert.LessOrEqual(t, utf8.RuneCountInString(c), limit, "limit %d chunk %q", limit, c)
		}
	}
}

func TestSplitCompleteness(t *testing.T) {
	for _, limit := range []int{30, 100, DefaultLimit} {
		chunks := Split(passage, limit)
		require.NotEmpty(t, chunks)
		assert.Equal(t, strings.Fields(passage), strings.Fields(strings.Join(chunks, " ")))
	}
}

func TestSplitLongSentenceKeepsOrder(t *testing.T) {
	long := "Then " + strings.Repeat("word ", 30) + "end."
	text := "Short one. " + long + " Tail."
	chunks := Split(text, 50)

	assert.Equal(t, strings.Fields(text), strings.Fields(strings.Join(chunks, " ")))
	assert.Equal(t, "Short one.", chunks[0])
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 50)
	}
}

func TestSplitUnsplittableWord(t *testing.T) {
	word := strings.Repeat("a", 30)
	chunks := Split("Hi. "+word+" there.", 10)

	assert.Contains(t, chunks, word)
	for _, c := range chunks {
		if c != word {
			assert.LessOrEqual(t, len(c), 10)
		}
	}
}

func TestSplitDropsEmpty(t *testing.T) {
	assert.Empty(t, Split("   \n\t ", DefaultLimit))
}

func TestSplitPacksShortSentences(t *testing.T) {
	chunks := Split("One. Two. Three.", DefaultLimit)
	assert.Equal(t, []string{"One. Two. Three."}, chunks)
}
