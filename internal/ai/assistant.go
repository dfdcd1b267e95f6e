package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"

	"workshop-manager/internal/core"
)

// AssistantService answers business questions over a snapshot of the
// workshop data. Implementations never mutate anything; a failure here
// must degrade to a chat-visible message, not take the dashboard down.
type AssistantService interface {
	Analyze(ctx context.Context, question string, snapshot core.Snapshot) (*core.AssistantReply, error)
}

type Assistant struct {
	client *openai.Client
}

func NewAssistant(apiKey string) *Assistant {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Assistant{client: &client}
}

// Analyze sends the question plus the JSON snapshot to the model and
// parses the structured reply. The snapshot is the model's only source of
// business data; the business rules stated in the prompt mirror the
// aggregation engine exactly.
func (a *Assistant) Analyze(ctx context.Context, question string, snapshot core.Snapshot) (*core.AssistantReply, error) {
	snapJSON, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	prompt := fmt.Sprintf(`You are the business analyst of a small textile workshop.
Answer the owner's question using ONLY the business data below.
Rules of the business:
1. A flat tax of %s (as a fraction) applies to positive production gross profit; losses are never taxed.
2. Other expenses reduce the final balance after production net profit.
3. All amounts are in %s.
Be friendly but focused on financial results and efficiency.

Business data (JSON):
%s

Question: %s`, snapshot.TaxRate, snapshot.Currency, snapJSON, question)

	schemaStruct := generateSchema()
	schemaJSON, err := json.Marshal(schemaStruct)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(shared.ChatModelGPT4o),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "business_analysis",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("An executive answer grounded in the workshop's financial snapshot"),
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	var reply core.AssistantReply
	if err := json.Unmarshal([]byte(content), &reply); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}
	return &reply, nil
}

func generateSchema() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v core.AssistantReply
	return reflector.Reflect(v)
}
