package scrape

import (
	"regexp"
	"strings"

	"github.com/robert-clayton/audiobook/src/configure"
	"github.com/robert-clayton/audiobook/src/textparser/parts"
	"golang.org/x/net/html"
)

// Renderer rewrites the in-story system messages of a chapter body into
// speaker tagged text, in place.
type Renderer func(root *html.Node)

var renderers = map[string]Renderer{
	configure.SystemTypeTable:   renderTable,
	configure.SystemTypeCenter:  renderCenter,
	configure.SystemTypeBold:    renderBold,
	configure.SystemTypeItalic:  renderItalic,
	configure.SystemTypeBracket: renderBracket,
	configure.SystemTypeAngle:   renderAngle,
}

// RendererFor returns the renderer registered for a series system type. An
// empty type renders nothing.
func RendererFor(systemType string) (Renderer, bool) {
	if systemType == "" {
		return func(*html.Node) {}, true
	}
	r, ok := renderers[strings.ToLower(systemType)]
	return r, ok
}

func speakerTag(speaker, text string) string {
	return "<<SPEAKER=" + speaker + ">>" + text + "<</SPEAKER>>"
}

// unwrapPlainWeight flattens em and span elements that only reset the font
// weight, so bold and italic renderers do not pick them up.
func unwrapPlainWeight(root *html.Node) {
	nodes := findAll(root, func(n *html.Node) bool {
		if !isElement(n, "em", "span") {
			return false
		}
		style, _ := attr(n, "style")
		return strings.Contains(style, "font-weight: 400")
	})
	for _, n := range nodes {
		replaceWithText(n, rawText(n))
	}
}

func renderTable(root *html.Node) {
	for _, table := range findAll(root, func(n *html.Node) bool { return isElement(n, "table") }) {
		for _, body := range findAll(table, func(n *html.Node) bool { return isElement(n, "tbody") }) {
			for _, br := range findAll(body, func(n *html.Node) bool { return isElement(n, "br") }) {
				replaceWithText(br, " ")
			}
			text := strings.Join(strippedStrings(body), "\n")
			replaceWithText(body, speakerTag(parts.SpeakerSystem, text))
		}
	}
}

var centered = regexp.MustCompile(`text-align:\s*center`)

func renderCenter(root *html.Node) {
	nodes := findAll(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		style, _ := attr(n, "style")
		return centered.MatchString(style)
	})
	for _, n := range nodes {
		if text := collapseWhitespace(rawText(n)); text != "" {
			replaceWithText(n, speakerTag(parts.SpeakerSystem, text))
		}
	}
}

func renderBold(root *html.Node) {
	for _, n := range findAll(root, func(n *html.Node) bool { return isElement(n, "strong", "b") }) {
		if text := collapseWhitespace(rawText(n)); text != "" {
			replaceWithText(n, speakerTag(parts.SpeakerSystem, text))
		}
	}
}

// renderItalic only tags italics written as a bracketed status line.
func renderItalic(root *html.Node) {
	for _, n := range findAll(root, func(n *html.Node) bool { return isElement(n, "em", "i") }) {
		text := collapseWhitespace(rawText(n))
		if strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]") {
			replaceWithText(n, speakerTag(parts.SpeakerSystem, text))
		}
	}
}

var bracketed = regexp.MustCompile(`\[.*?\]`)

// renderBracket tags whole text runs holding a [bracketed] message. Brackets
// inside italics belong to a second voice, fable.
func renderBracket(root *html.Node) {
	for _, t := range textNodes(root) {
		if !bracketed.MatchString(t.Data) {
			continue
		}
		speaker := parts.SpeakerSystem
		if isElement(t.Parent, "em", "i") {
			speaker = "fable"
		}
		text := strings.NewReplacer("[", "", "]", "").Replace(t.Data)
		t.Data = speakerTag(speaker, strings.TrimSpace(text))
	}
}

var angled = regexp.MustCompile(`<([^<>]+)>`)

// renderAngle tags <angle bracketed> messages within the text.
func renderAngle(root *html.Node) {
	for _, t := range textNodes(root) {
		if !angled.MatchString(t.Data) {
			continue
		}
		t.Data = angled.ReplaceAllStringFunc(t.Data, func(m string) string {
			inner := strings.TrimSpace(m[1 : len(m)-1])
			if inner == "" {
				return m
			}
			return speakerTag(parts.SpeakerSystem, inner)
		})
	}
}
