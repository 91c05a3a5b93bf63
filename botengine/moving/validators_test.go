package moving

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFloorInfo(t *testing.T) {
	cases := []struct {
		in       string
		floor    int
		elevator bool
	}{
		{"3 этаж, лифт есть", 3, true},
		{"3 этаж без лифта", 3, false},
		{"этаж 5, лифта нет", 5, false},
		{"частный дом", 1, true},
		{"private house", 1, true},
		{"קומה 4, אין מעלית", 4, false},
		{"2nd floor, elevator", 2, true},
		{"7", 7, true},
		{"", 1, true},
		{"не знаю", 1, true},
	}
	for _, c := range cases {
		floor, elev := ParseFloorInfo(c.in)
		assert.Equal(t, c.floor, floor, "floor for %q", c.in)
		assert.Equal(t, c.elevator, elev, "elevator for %q", c.in)
	}
}

func TestDetectLanguage(t *testing.T) {
	lang, conf := DetectLanguage("нужно перевезти диван")
	assert.Equal(t, LangRU, lang)
	assert.GreaterOrEqual(t, conf, 0.5)

	lang, conf = DetectLanguage("I need to move a sofa")
	assert.Equal(t, LangEN, lang)
	assert.GreaterOrEqual(t, conf, 0.5)

	// Any Hebrew letters win even in mixed text.
	lang, conf = DetectLanguage("צריך להעביר sofa")
	assert.Equal(t, LangHE, lang)
	assert.GreaterOrEqual(t, conf, 0.3)

	lang, _ = DetectLanguage("12")
	assert.Empty(t, lang)
}

func TestLooksTooShort(t *testing.T) {
	assert.True(t, LooksTooShort("ок", 5))
	assert.True(t, LooksTooShort("да", 2))
	assert.True(t, LooksTooShort("...", 2))
	assert.True(t, LooksTooShort("аб", 5))
	assert.False(t, LooksTooShort("диван и коробки", 5))
}

func TestParseChoices(t *testing.T) {
	assert.Equal(t, []string{"1", "3"}, ParseChoices("1 3"))
	assert.Equal(t, []string{"2"}, ParseChoices("2"))
	assert.Equal(t, []string{"1", "2", "3"}, ParseChoices("1, 2, 3"))
	assert.Nil(t, ParseChoices("5"))
	assert.Nil(t, ParseChoices("1 и упаковка"))
}

func TestParseExtrasInput(t *testing.T) {
	choices, details := ParseExtrasInput("1 3")
	assert.Equal(t, []string{"1", "3"}, choices)
	assert.Empty(t, details)

	choices, details = ParseExtrasInput("1 3 + нет парковки")
	assert.Equal(t, []string{"1", "3"}, choices)
	assert.Equal(t, "нет парковки", details)

	choices, details = ParseExtrasInput("2, узкая лестница")
	assert.Equal(t, []string{"2"}, choices)
	assert.Equal(t, "узкая лестница", details)

	choices, details = ParseExtrasInput("1 and no parking")
	assert.Equal(t, []string{"1"}, choices)
	assert.Equal(t, "no parking", details)

	choices, details = ParseExtrasInput("узкая лестница, нет парковки")
	assert.Nil(t, choices)
	assert.Equal(t, "узкая лестница, нет парковки", details)

	choices, details = ParseExtrasInput("1 3 нет парковки")
	assert.Equal(t, []string{"1", "3"}, choices)
	assert.Equal(t, "нет парковки", details)
}

func TestMapExtraChoicesSortedDedup(t *testing.T) {
	assert.Equal(t, []string{"loaders", "assembly"}, mapExtraChoices([]string{"2", "1", "2"}))
	assert.Empty(t, mapExtraChoices([]string{"4"}))
}

func TestDetectIntent(t *testing.T) {
	assert.Equal(t, IntentReset, DetectIntent("заново"))
	assert.Equal(t, IntentReset, DetectIntent("/start"))
	assert.Equal(t, IntentConfirm, DetectIntent("готово"))
	assert.Equal(t, IntentConfirm, DetectIntent("Done"))
	assert.Equal(t, IntentDecline, DetectIntent("нет"))
	assert.Equal(t, IntentDecline, DetectIntent("skip"))
	assert.Equal(t, IntentNone, DetectIntent("диван"))
}
