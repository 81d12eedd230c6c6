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

// ChatMode selects the model tier for an assistant reply.
type ChatMode string

const (
	// ChatFast is the default: short, cheap answers for quick questions.
	ChatFast ChatMode = "fast"
	// ChatThink routes to the larger model for deeper analysis.
	ChatThink ChatMode = "think"
)

const fastSystemPrompt = `You are SmartShodhai Assistant, a helpful AI for Bangladeshi shop owners.
Use a friendly, professional Bangladeshi tone (e.g., Assalamu Alaikum, Bhai, Kemon achen).
Keep answers EXTREMELY short, simple, and direct. Use ৳ for currency.
Use terms like 'Baki' for dues and 'Hishab' for accounts.
Focus on providing quick business insights. If a user asks to update stock or record a sale, confirm the details simply.`

const thinkSystemPrompt = `You are SmartShodhai Assistant. Use a friendly Bangladeshi business tone.
Provide deep analysis but summarize for a busy shop owner. Use ৳ for all amounts.
Analyze and solve complex business problems for the distributor.`

// AssistantService answers shop-owner questions, optionally grounded on a
// snapshot of the current business data.
type AssistantService interface {
	Chat(ctx context.Context, prompt, businessContext string, mode ChatMode) (string, error)
	// ChatStream delivers the reply incrementally through onDelta. A non-nil
	// error from onDelta aborts the stream.
	ChatStream(ctx context.Context, prompt, businessContext string, mode ChatMode, onDelta func(string) error) error
}

type Assistant struct {
	client *openai.Client
}

func NewAssistant(apiKey string) *Assistant {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Assistant{client: &client}
}

func (a *Assistant) chatParams(prompt, businessContext string, mode ChatMode) responses.ResponseNewParams {
	model := shared.ChatModelGPT4oMini
	instructions := fastSystemPrompt
	if mode == ChatThink {
		model = shared.ChatModelGPT4o
		instructions = thinkSystemPrompt
	}
	if businessContext != "" {
		instructions += "\n\nHere is the current business data to help you answer accurately:\n" + businessContext
	}

	return responses.ResponseNewParams{
		Model:        shared.ResponsesModel(model),
		Instructions: param.NewOpt(instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
	}
}

func (a *Assistant) Chat(ctx context.Context, prompt, businessContext string, mode ChatMode) (string, error) {
	resp, err := a.client.Responses.New(ctx, a.chatParams(prompt, businessContext, mode))
	if err != nil {
		return "", fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return "", fmt.Errorf("empty response content")
	}
	return content, nil
}

func (a *Assistant) ChatStream(ctx context.Context, prompt, businessContext string, mode ChatMode, onDelta func(string) error) error {
	stream := a.client.Responses.NewStreaming(ctx, a.chatParams(prompt, businessContext, mode))
	defer stream.Close()

	for stream.Next() {
		event := stream.Current()
		if event.Type != "response.output_text.delta" {
			continue
		}
		if err := onDelta(event.Delta.OfString); err != nil {
			return err
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("openai stream error: %w", err)
	}
	return nil
}
