package translate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

type geminiTranslator struct {
	apiKey string
	model  string
}

// NewGeminiTranslator translates lead fields with a Gemini model using
// structured JSON output. An empty model falls back to gemini-2.5-flash.
func NewGeminiTranslator(apiKey, model string) ITranslator {
	if model == "" {
		model = defaultGeminiModel
	}
	return &geminiTranslator{apiKey: apiKey, model: model}
}

func (t *geminiTranslator) Translate(ctx context.Context, f Fields, sourceLang, targetLang string) (Fields, error) {
	if f.Empty() || sourceLang == targetLang {
		return f, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  t.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return f, err
	}

	input, err := json.Marshal(f)
	if err != nil {
		return f, err
	}

	prompt := fmt.Sprintf(
		"Translate the non-empty values of this JSON object from %s to %s. "+
			"Keep empty values empty. Preserve addresses, proper nouns, and numbers as-is.\n\n%s",
		langName(sourceLang), langName(targetLang), input)

	contents := []*genai.Content{
		{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	genConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseJsonSchema: &genai.Schema{
			Type: "object",
			Properties: map[string]*genai.Schema{
				"cargo_description": {Type: "string"},
				"addr_from":         {Type: "string"},
				"addr_to":           {Type: "string"},
				"details_free":      {Type: "string"},
			},
			Required: []string{"cargo_description", "addr_from", "addr_to", "details_free"},
		},
	}

	result, err := client.Models.GenerateContent(ctx, t.model, contents, genConfig)
	if err != nil {
		return f, err
	}
	if result == nil {
		return f, fmt.Errorf("empty response from gemini")
	}

	var out Fields
	if err := json.Unmarshal([]byte(result.Text()), &out); err != nil {
		logrus.WithError(err).Warn("[TRANSLATE] failed to parse gemini response")
		return f, err
	}
	return mergeTranslated(f, out), nil
}
