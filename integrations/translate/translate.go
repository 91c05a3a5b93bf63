package translate

import (
	"context"
	"strings"

	"github.com/moveline/leadgate/core/config"
)

// Fields are the free-text lead values eligible for translation. Phone
// numbers, ids and prices never go through the translator.
type Fields struct {
	CargoDescription string `json:"cargo_description"`
	AddrFrom         string `json:"addr_from"`
	AddrTo           string `json:"addr_to"`
	DetailsFree      string `json:"details_free"`
}

// Empty reports whether there is nothing to translate.
func (f Fields) Empty() bool {
	return f.CargoDescription == "" && f.AddrFrom == "" && f.AddrTo == "" && f.DetailsFree == ""
}

// ITranslator translates lead fields between languages. Implementations
// return the input unchanged for fields they could not translate.
type ITranslator interface {
	Translate(ctx context.Context, f Fields, sourceLang, targetLang string) (Fields, error)
}

var langNames = map[string]string{
	"ru": "Russian",
	"en": "English",
	"he": "Hebrew",
}

// langName maps an internal language code to the name used in prompts.
func langName(code string) string {
	if n, ok := langNames[strings.ToLower(code)]; ok {
		return n
	}
	return code
}

// NewTranslator picks the provider from the operator configuration.
// Returns nil when translation is disabled or no API key is available,
// callers treat a nil translator as a no-op.
func NewTranslator(cfg *config.Config) ITranslator {
	if cfg == nil || !cfg.Operator.TranslationEnabled {
		return nil
	}
	switch cfg.Operator.TranslationProvider {
	case "gemini":
		if cfg.APIKeys.Gemini == "" {
			return nil
		}
		return NewGeminiTranslator(cfg.APIKeys.Gemini, "")
	case "openai":
		if cfg.APIKeys.OpenAI == "" {
			return nil
		}
		return NewOpenAITranslator(cfg.APIKeys.OpenAI, "")
	default:
		return nil
	}
}
