package ai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

const systemPrompt = `You are the analytics assistant for a retail point-of-sale system.
You answer questions from store managers about sales, revenue, stock, and the product catalog.
Rules:
1. Always fetch real figures with the provided tools before answering. Never invent numbers.
2. Report money with two decimal places.
3. If a question cannot be answered from the available data, say so plainly.
4. Keep answers short and factual.`

// maxToolRounds bounds the tool loop so a misbehaving model cannot spin
// forever against the database.
const maxToolRounds = 8

// Assistant answers manager questions by calling read tools against the live
// services and summarizing the results.
type Assistant struct {
	client   *openai.Client
	registry *ToolRegistry
}

// NewAssistant constructs an Assistant with the given tool registry.
func NewAssistant(apiKey string, registry *ToolRegistry) *Assistant {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Assistant{client: &client, registry: registry}
}

// Ask runs the tool loop: the model calls read tools as it sees fit, tool
// results feed the next round, and the first round with no tool calls yields
// the final answer.
func (a *Assistant) Ask(ctx context.Context, question string) (string, error) {
	params := responses.ResponseNewParams{
		Model:        shared.ResponsesModel(shared.ChatModelGPT4o),
		Instructions: param.NewOpt(systemPrompt),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(question),
		},
		Tools: a.registry.ToOpenAITools(),
	}

	for round := 0; round < maxToolRounds; round++ {
		resp, err := a.client.Responses.New(ctx, params)
		if err != nil {
			return "", fmt.Errorf("openai responses error: %w", err)
		}

		var outputs responses.ResponseInputParam
		for _, item := range resp.Output {
			if item.Type != "function_call" {
				continue
			}
			call := item.AsFunctionCall()
			result, err := a.executeTool(ctx, call)
			if err != nil {
				// Surface the failure to the model so it can answer with
				// what it has instead of aborting the whole question.
				result = fmt.Sprintf(`{"error": %q}`, err.Error())
			}
			outputs = append(outputs,
				responses.ResponseInputItemParamOfFunctionCallOutput(call.CallID, result))
		}

		if len(outputs) == 0 {
			answer := resp.OutputText()
			if answer == "" {
				return "", fmt.Errorf("empty response content")
			}
			return answer, nil
		}

		params = responses.ResponseNewParams{
			Model:              shared.ResponsesModel(shared.ChatModelGPT4o),
			Instructions:       param.NewOpt(systemPrompt),
			PreviousResponseID: param.NewOpt(resp.ID),
			Input: responses.ResponseNewParamsInputUnion{
				OfInputItemList: outputs,
			},
			Tools: a.registry.ToOpenAITools(),
		}
	}

	return "", fmt.Errorf("tool loop exceeded %d rounds without a final answer", maxToolRounds)
}

func (a *Assistant) executeTool(ctx context.Context, call responses.ResponseFunctionToolCall) (string, error) {
	tool, ok := a.registry.Get(call.Name)
	if !ok {
		return "", fmt.Errorf("unknown tool %q", call.Name)
	}

	params := map[string]any{}
	if call.Arguments != "" {
		if err := decodeArguments(call.Arguments, &params); err != nil {
			return "", fmt.Errorf("tool %s: %w", call.Name, err)
		}
	}
	return tool.Handler(ctx, params)
}
