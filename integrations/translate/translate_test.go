package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/moveline/leadgate/core/config"
)

func TestNewTranslatorSelection(t *testing.T) {
	cfg := &config.Config{}
	cfg.Operator.TranslationEnabled = false
	assert.Nil(t, NewTranslator(cfg))

	cfg.Operator.TranslationEnabled = true
	cfg.Operator.TranslationProvider = "openai"
	assert.Nil(t, NewTranslator(cfg), "missing API key disables the provider")

	cfg.APIKeys.OpenAI = "sk-test"
	assert.IsType(t, &openaiTranslator{}, NewTranslator(cfg))

	cfg.Operator.TranslationProvider = "gemini"
	assert.Nil(t, NewTranslator(cfg))
	cfg.APIKeys.Gemini = "g-test"
	assert.IsType(t, &geminiTranslator{}, NewTranslator(cfg))

	cfg.Operator.TranslationProvider = "none"
	assert.Nil(t, NewTranslator(cfg))
}

func TestMergeTranslatedKeepsOriginalsOnGaps(t *testing.T) {
	orig := Fields{CargoDescription: "диван и шкаф", AddrFrom: "Тель-Авив"}
	out := mergeTranslated(orig, Fields{CargoDescription: "sofa and wardrobe"})

	assert.Equal(t, "sofa and wardrobe", out.CargoDescription)
	assert.Equal(t, "Тель-Авив", out.AddrFrom, "untranslated field keeps original")
	assert.Empty(t, out.AddrTo, "empty input fields stay empty")
	assert.Empty(t, out.DetailsFree)
}

func TestFieldsEmpty(t *testing.T) {
	assert.True(t, Fields{}.Empty())
	assert.False(t, Fields{AddrTo: "Haifa"}.Empty())
}

func TestLangName(t *testing.T) {
	assert.Equal(t, "Russian", langName("ru"))
	assert.Equal(t, "Hebrew", langName("HE"))
	assert.Equal(t, "fr", langName("fr"))
}
