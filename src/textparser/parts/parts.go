package parts

import "fmt"

const (
	SpeakerDefault = "default" // series narrator
	SpeakerSystem  = "system"  // series system voice
)

type Segment struct {
	Speaker string
	Text    string
}

func (s Segment) IsDefault() bool {
	return s.Speaker == SpeakerDefault
}

func (s Segment) IsSystem() bool {
	return s.Speaker == SpeakerSystem
}

type Chunk struct {
	SegmentIdx int
	ChunkIdx   int
	Speaker    string
	Value      string
}

// Key is the cache key of a synthesized chunk. Speaker must already be the
// resolved voice id so a remapped speaker never reuses a stale artifact.
func (c Chunk) Key(base, voice string) string {
	return fmt.Sprintf("%s_part%d_%s_%d", base, c.SegmentIdx, voice, c.ChunkIdx)
}

type ChunkList []Chunk

// Len returns the total number of characters across all chunks.
func (cl ChunkList) Len() int {
	n := 0
	for _, c := range cl {
		n += len(c.Value)
	}
	return n
}

// Segments groups chunks by segment index preserving document order.
func (cl ChunkList) Segments() [][]Chunk {
	var out [][]Chunk
	last := -1
	for _, c := range cl {
		if c.SegmentIdx != last {
			out = append(out, nil)
			last = c.SegmentIdx
		}
		out[len(out)-1] = append(out[len(out)-1], c)
	}
	return out
}
