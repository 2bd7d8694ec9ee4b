package scrape

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func parseBody(t *testing.T, markup string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader("<html><body>" + markup + "</body></html>"))
	require.NoError(t, err)
	body := find(doc, func(n *html.Node) bool { return isElement(n, "body") })
	require.NotNil(t, body)
	return body
}

func render(t *testing.T, systemType, markup string) []string {
	t.Helper()
	root := parseBody(t, markup)
	r, ok := RendererFor(systemType)
	require.True(t, ok)
	unwrapPlainWeight(root)
	r(root)
	return strippedStrings(root)
}

func TestRenderTable(t *testing.T) {
	got := render(t, "table", `<p>Before</p><table><tbody><tr><td>Level: 5<br>HP: 10</td></tr></tbody></table>`)
	assert.Equal(t, []string{"Before", "<<SPEAKER=system>>Level: 5\nHP: 10<</SPEAKER>>"}, got)
}

func TestRenderCenter(t *testing.T) {
	got := render(t, "center", `<p style="text-align: center;">You  gained<br> a level</p><p>Onwards.</p>`)
	assert.Equal(t, []string{"<<SPEAKER=system>>You gained a level<</SPEAKER>>", "Onwards."}, got)
}

func TestRenderBold(t *testing.T) {
	got := render(t, "bold", `<p>He read <strong>Skill  acquired</strong> twice.</p>`)
	assert.Equal(t, []string{"He read", "<<SPEAKER=system>>Skill acquired<</SPEAKER>>", "twice."}, got)
}

func TestRenderItalicOnlyBracketed(t *testing.T) {
	got := render(t, "italic", `<p><em>[Quest complete]</em> and <em>thought</em></p>`)
	assert.Equal(t, []string{"<<SPEAKER=system>>[Quest complete]<</SPEAKER>>", "and", "thought"}, got)
}

func TestRenderBracket(t *testing.T) {
	got := render(t, "bracket", `<p>[Strength +1]</p><p><em>[whisper]</em></p><p>plain</p>`)
	assert.Equal(t, []string{
		"<<SPEAKER=system>>Strength +1<</SPEAKER>>",
		"<<SPEAKER=fable>>whisper<</SPEAKER>>",
		"plain",
	}, got)
}

func TestRenderAngle(t *testing.T) {
	got := render(t, "angle", `<p>&lt;Level Up&gt; he said</p>`)
	assert.Equal(t, []string{"<<SPEAKER=system>>Level Up<</SPEAKER>> he said"}, got)
}

func TestUnwrapPlainWeight(t *testing.T) {
	got := render(t, "italic", `<p><em style="font-weight: 400">[aside]</em> <em>[Status]</em></p>`)
	assert.Equal(t, []string{"[aside]", "<<SPEAKER=system>>[Status]<</SPEAKER>>"}, got)
}

func TestRendererFor(t *testing.T) {
	_, ok := RendererFor("sparkles")
	assert.False(t, ok)

	r, ok := RendererFor("")
	require.True(t, ok)
	root := parseBody(t, `<p><strong>kept</strong></p>`)
	r(root)
	assert.Equal(t, []string{"kept"}, strippedStrings(root))

	_, ok = RendererFor("BOLD")
	assert.True(t, ok)
}
