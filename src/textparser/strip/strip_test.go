package strip

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypography(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"“Hi,” she said", `"Hi," she said`},
		{"it’s", "it's"},
		{"wait…", "wait..."},
		{"50%", "50-percent"},
		{"yes—no", "yes;no"},
		{"1–2", "1-2"},
		{"a\u00a0b", "a b"},
		{"in\u200bvis\u00adible\u200c\u200d", "invisible"},
		{"6′ 2″", "6 feet 2 inches"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Typography(tt.in), tt.in)
	}
}

func TestBrackets(t *testing.T) {
	assert.Equal(t, "Skill acquired: Fireball", Brackets("[Skill acquired: Fireball]"))
	assert.Equal(t, "a b c", Brackets("[a] b [c]"))
	assert.Equal(t, "no brackets", Brackets("no brackets"))
}

func TestAngles(t *testing.T) {
	assert.Equal(t, "Status window", Angles("<Status window>"))
	assert.Equal(t, "a < b", Angles(" a < b "))
}
