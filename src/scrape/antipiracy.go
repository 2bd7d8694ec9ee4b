package scrape

import (
	"math/bits"
	"strings"
	"unicode"

	"github.com/go-dedup/simhash"
	"github.com/gobuffalo/packr/v2"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxDistance is the largest hamming distance between fingerprints still
// treated as the same notice.
const maxDistance = 8

// lines longer than this are story text, never a notice
const maxNoticeLen = 300

var denylist []string

func init() {
	box := packr.New("scrape-static", "./static")
	data, err := box.Find("antiscrapes.json")
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &denylist); err != nil {
		panic(err)
	}
}

// Filter drops the anti-piracy notices sites splice into chapter text. It
// is a best effort denylist: exact matches, a couple of telltale phrases and
// simhash near-duplicates of known notices.
type Filter struct {
	exact   map[string]struct{}
	hashes  []uint64
	phrases []string
}

// NewFilter builds a filter over the given notices.
func NewFilter(notices []string) *Filter {
	f := &Filter{
		exact:   make(map[string]struct{}, len(notices)),
		hashes:  make([]uint64, 0, len(notices)),
		phrases: []string{"on Amazon", "Royal Road"},
	}
	for _, n := range notices {
		f.exact[n] = struct{}{}
		f.hashes = append(f.hashes, fingerprint(n))
	}
	return f
}

// DefaultFilter uses the bundled notice list.
func DefaultFilter() *Filter {
	return NewFilter(denylist)
}

func (f *Filter) Blocked(line string) bool {
	if _, ok := f.exact[line]; ok {
		return true
	}
	for _, p := range f.phrases {
		if strings.Contains(line, p) {
			return true
		}
	}
	if len(line) > maxNoticeLen || len(words(line)) < 4 {
		return false
	}
	h := fingerprint(line)
	for _, known := range f.hashes {
		if bits.OnesCount64(h^known) <= maxDistance {
			return true
		}
	}
	return false
}

// noticeFeatures fingerprints a line by its lowercased word bigrams, so case
// and punctuation drift do not change the hash.
type noticeFeatures struct {
	words []string
}

func (n noticeFeatures) GetFeatures() []simhash.Feature {
	features := make([]simhash.Feature, 0, len(n.words))
	if len(n.words) == 1 {
		return append(features, simhash.NewFeature([]byte(n.words[0])))
	}
	for i := 0; i+1 < len(n.words); i++ {
		features = append(features, simhash.NewFeature([]byte(n.words[i]+" "+n.words[i+1])))
	}
	return features
}

func fingerprint(line string) uint64 {
	return simhash.NewSimhash().GetSimhash(noticeFeatures{words: words(line)})
}

func words(line string) []string {
	line = strings.ReplaceAll(strings.ToLower(line), "\u2019", "'")
	return strings.FieldsFunc(line, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}
