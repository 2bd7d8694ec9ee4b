package textparser

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/robert-clayton/audiobook/src/errs"
	"github.com/robert-clayton/audiobook/src/textparser/acronym"
	"github.com/robert-clayton/audiobook/src/textparser/override"
	"github.com/robert-clayton/audiobook/src/textparser/parts"
	"github.com/robert-clayton/audiobook/src/textparser/sentance"
	"github.com/robert-clayton/audiobook/src/textparser/strip"
	"github.com/robert-clayton/audiobook/src/textparser/voice"
	"golang.org/x/text/encoding/charmap"
)

const cleanedSuffix = "_cleaned.txt"

// Undecodable is a byte of the raw chapter that was not valid UTF-8.
type Undecodable struct {
	Byte   byte
	Offset int
}

// Normalize cleans raw chapter text for synthesis. Invalid UTF-8 bytes are
// reported and decoded as Windows-1252, which is what stray bytes in scraped
// web text nearly always are.
func Normalize(raw []byte, replacements map[string]string) (string, []Undecodable) {
	text, bad := decode(raw)

	text = strip.Typography(text)
	text = override.Apply(text, replacements)
	text = acronym.Apply(text)
	text = strip.Brackets(text)

	return text, bad
}

// NormalizeFile normalizes the chapter at path and writes the result into
// dir. The returned path is the intermediate artifact the caller must
// remove once the chapter is finished.
func NormalizeFile(path, dir string, replacements map[string]string) (string, []Undecodable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", nil, errs.Wrap(errs.ErrInputMissing, "validate", "read chapter", err)
	}

	text, bad := Normalize(raw, replacements)

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	cleaned := filepath.Join(dir, base+cleanedSuffix)
	if err := os.WriteFile(cleaned, []byte(text), 0o644); err != nil {
		return "", bad, errs.Wrap(errs.ErrInputMissing, "validate", "write cleaned chapter", err)
	}
	return cleaned, bad, nil
}

// IsCleaned reports whether path is a normalized intermediate.
func IsCleaned(path string) bool {
	return strings.HasSuffix(path, cleanedSuffix)
}

// Process segments normalized text by speaker and chunks each segment.
func Process(text string, limit int) parts.ChunkList {
	stat := parts.ChunkList{}
	for segIdx, seg := range voice.Segment(text) {
		chunkIdx := 0
		for _, c := range sentance.Split(seg.Text, limit) {
			c = strip.Angles(c)
			if c == "" {
				continue
			}
			stat = append(stat, parts.Chunk{
				SegmentIdx: segIdx,
				ChunkIdx:   chunkIdx,
				Speaker:    seg.Speaker,
				Value:      c,
			})
			chunkIdx++
		}
	}
	return stat
}

func decode(raw []byte) (string, []Undecodable) {
	if utf8.Valid(raw) {
		return string(raw), nil
	}

	var (
		sb  strings.Builder
		bad []Undecodable
	)
	sb.Grow(len(raw))
	for i := 0; i < len(raw); {
		r, size := utf8.DecodeRune(raw[i:])
		if r == utf8.RuneError && size == 1 {
			bad = append(bad, Undecodable{Byte: raw[i], Offset: i})
			sb.WriteRune(charmap.Windows1252.DecodeByte(raw[i]))
			i++
			continue
		}
		sb.WriteRune(r)
		i += size
	}
	return sb.String(), bad
}
