package translate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sirupsen/logrus"
)

const defaultOpenAIModel = "gpt-4o-mini"

type openaiTranslator struct {
	apiKey string
	model  string
}

// NewOpenAITranslator translates lead fields with an OpenAI chat model.
// An empty model falls back to gpt-4o-mini.
func NewOpenAITranslator(apiKey, model string) ITranslator {
	if model == "" {
		model = defaultOpenAIModel
	}
	return &openaiTranslator{apiKey: apiKey, model: model}
}

func (t *openaiTranslator) Translate(ctx context.Context, f Fields, sourceLang, targetLang string) (Fields, error) {
	if f.Empty() || sourceLang == targetLang {
		return f, nil
	}

	client := openai.NewClient(option.WithAPIKey(t.apiKey))

	input, err := json.Marshal(f)
	if err != nil {
		return f, err
	}

	systemPrompt := fmt.Sprintf(
		"You are a professional translator. Translate the non-empty values of the "+
			"given JSON object from %s to %s. Keep empty values empty. "+
			"Preserve addresses, proper nouns, and numbers as-is. "+
			"Return only the translated JSON object.",
		langName(sourceLang), langName(targetLang))

	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"cargo_description": map[string]any{"type": "string"},
			"addr_from":         map[string]any{"type": "string"},
			"addr_to":           map[string]any{"type": "string"},
			"details_free":      map[string]any{"type": "string"},
		},
		"required":             []string{"cargo_description", "addr_from", "addr_to", "details_free"},
		"additionalProperties": false,
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(t.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(string(input)),
		},
		Temperature: openai.Float(0.1),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "lead_translation",
					Schema: any(schema),
					Strict: openai.Bool(true),
				},
			},
		},
	}

	completion, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return f, err
	}
	if len(completion.Choices) == 0 {
		return f, fmt.Errorf("no response from openai")
	}

	var out Fields
	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), &out); err != nil {
		logrus.WithError(err).Warn("[TRANSLATE] failed to parse openai response")
		return f, err
	}
	return mergeTranslated(f, out), nil
}

// mergeTranslated keeps the original value wherever the model returned an
// empty string for a field that had content.
func mergeTranslated(orig, out Fields) Fields {
	if out.CargoDescription == "" {
		out.CargoDescription = orig.CargoDescription
	}
	if out.AddrFrom == "" {
		out.AddrFrom = orig.AddrFrom
	}
	if out.AddrTo == "" {
		out.AddrTo = orig.AddrTo
	}
	if out.DetailsFree == "" {
		out.DetailsFree = orig.DetailsFree
	}
	// Fields that were empty on input stay empty on output.
	if orig.CargoDescription == "" {
		out.CargoDescription = ""
	}
	if orig.AddrFrom == "" {
		out.AddrFrom = ""
	}
	if orig.AddrTo == "" {
		out.AddrTo = ""
	}
	if orig.DetailsFree == "" {
		out.DetailsFree = ""
	}
	return out
}
