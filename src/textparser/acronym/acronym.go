package acronym

import (
	"fmt"
	"regexp"

	"github.com/gobuffalo/packr/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/robert-clayton/audiobook/src/textparser/tags"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type entry struct {
	Acronym string `json:"acronym"`
	Spoken  string `json:"spoken"`
}

type rule struct {
	re     *regexp.Regexp
	spoken string
}

var rules []rule

func init() {
	box := packr.New("acronym-static", "./static")
	data, err := box.Find("acronyms.json")
	if err != nil {
		panic(err)
	}

	entries := []entry{}
	if err := json.Unmarshal(data, &entries); err != nil {
		panic(err)
	}

	rules = make([]rule, len(entries))
	for i, e := range entries {
		rules[i] = rule{
			re:     regexp.MustCompile(fmt.Sprintf(`(?i)\b%s\b`, regexp.QuoteMeta(e.Acronym))),
			spoken: e.Spoken,
		}
	}
}

// Apply spells out known acronyms. Speaker tags are never touched.
func Apply(text string) string {
	p := tags.Protect(text)
	out := p.Text
	for _, r := range rules {
		out = r.re.ReplaceAllLiteralString(out, r.spoken)
	}
	return p.Restore(out)
}
