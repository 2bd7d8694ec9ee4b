package override

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyWholeWordOnly(t *testing.T) {
	out := Apply("Kael met Kaelin at the gate.", map[string]string{"Kael": "Kale"})
	assert.Equal(t, "Kale met Kaelin at the gate.", out)
}

func TestApplyCaseSensitive(t *testing.T) {
	out := Apply("mana and Mana", map[string]string{"mana": "magic"})
	assert.Equal(t, "magic and Mana", out)
}

func TestApplyEmpty(t *testing.T) {
	assert.Equal(t, "unchanged", Apply("unchanged", nil))
}

func TestApplyQuotesRegexMeta(t *testing.T) {
	out := Apply("Lv.3 reached", map[string]string{"Lv": "Level"})
	assert.Equal(t, "Level.3 reached", out)
}
