package voice

import (
	"regexp"
	"strings"

	"github.com/robert-clayton/audiobook/src/textparser/parts"
)

var (
	reSpan    = regexp.MustCompile(`(?s)<<SPEAKER=[^>]+>>.*?<</SPEAKER>>`)
	reSpeaker = regexp.MustCompile(`(?s)^<<SPEAKER=([^>]+)>>(.*?)<</SPEAKER>>$`)
)

// Segment splits text into speaker runs in document order. Text outside a
// tag goes to the narrator. An unterminated tag never matches the span
// pattern, so it is read by the narrator as written.
func Segment(text string) []parts.Segment {
	returnPts := []parts.Segment{}

	last := 0
	for _, loc := range reSpan.FindAllStringIndex(text, -1) {
		returnPts = appendRun(returnPts, parts.SpeakerDefault, text[last:loc[0]])
		returnPts = appendTagged(returnPts, text[loc[0]:loc[1]])
		last = loc[1]
	}
	returnPts = appendRun(returnPts, parts.SpeakerDefault, text[last:])

	return returnPts
}

func appendTagged(pts []parts.Segment, span string) []parts.Segment {
	m := reSpeaker.FindStringSubmatch(span)
	if m == nil {
		return appendRun(pts, parts.SpeakerDefault, span)
	}
	speaker := strings.ToLower(strings.TrimSpace(m[1]))
	if speaker == "" {
		speaker = parts.SpeakerDefault
	}
	return appendRun(pts, speaker, m[2])
}

func appendRun(pts []parts.Segment, speaker, text string) []parts.Segment {
	text = strings.TrimSpace(text)
	if text == "" {
		return pts
	}
	return append(pts, parts.Segment{Speaker: speaker, Text: text})
}
