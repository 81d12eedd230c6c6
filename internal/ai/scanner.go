package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"smartshodhai/internal/core"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

const labelPrompt = `Identify this product, its brand, and suggested category.
This is for a Bangladeshi FMCG store. Estimate a sensible retail price in taka
if none is printed, and report your recognition confidence.`

const ledgerPrompt = `Read this handwritten account book (khata) page.
Extract:
1. List of products (Name, Quantity, Unit Price).
2. Customer Name (if written).
3. Due/Baki amount (if written).
4. Determine if this records a Sale (Outgoing), a Purchase (Incoming), or a stock check (Audit).`

const describePrompt = `Analyze this image and explain what is happening in the
context of a retail business in Bangladesh. Keep it simple and use ৳.`

// ScannerService reads shop photos: product labels and handwritten khata
// pages. Results are normalized and validated before they reach the caller.
type ScannerService interface {
	// AnalyzeProductLabel identifies a single product from a label photo.
	AnalyzeProductLabel(ctx context.Context, image []byte, mimeType string) (*core.DetectedItem, error)
	// AnalyzeLedgerPage reads a handwritten ledger page into a ScanResult.
	AnalyzeLedgerPage(ctx context.Context, image []byte, mimeType string) (*core.ScanResult, error)
	// Describe returns a free-form reading of an arbitrary business photo.
	Describe(ctx context.Context, image []byte, mimeType, prompt string) (string, error)
}

type Scanner struct {
	client *openai.Client
}

func NewScanner(apiKey string) *Scanner {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Scanner{client: &client}
}

// imageInput builds a single user message carrying the prompt text and the
// image as a data URL.
func imageInput(prompt string, image []byte, mimeType string) responses.ResponseNewParamsInputUnion {
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	return responses.ResponseNewParamsInputUnion{
		OfInputItemList: responses.ResponseInputParam{
			responses.ResponseInputItemUnionParam{
				OfMessage: &responses.EasyInputMessageParam{
					Role: responses.EasyInputMessageRoleUser,
					Content: responses.EasyInputMessageContentUnionParam{
						OfInputItemContentList: responses.ResponseInputMessageContentListParam{
							responses.ResponseInputContentUnionParam{
								OfInputText: &responses.ResponseInputTextParam{Text: prompt},
							},
							responses.ResponseInputContentUnionParam{
								OfInputImage: &responses.ResponseInputImageParam{
									ImageURL: param.NewOpt(dataURL),
									Detail:   responses.ResponseInputImageDetailAuto,
								},
							},
						},
					},
				},
			},
		},
	}
}

// structuredParams builds a vision request whose output must conform to the
// JSON schema reflected from target.
func structuredParams(prompt string, image []byte, mimeType string, schemaName, schemaDesc string, target any) (responses.ResponseNewParams, error) {
	schemaJSON, err := json.Marshal(generateSchema(target))
	if err != nil {
		return responses.ResponseNewParams{}, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return responses.ResponseNewParams{}, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}

	return responses.ResponseNewParams{
		Model: shared.ResponsesModel(shared.ChatModelGPT4o),
		Input: imageInput(prompt, image, mimeType),
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        schemaName,
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt(schemaDesc),
				},
			},
		},
	}, nil
}

func (s *Scanner) AnalyzeProductLabel(ctx context.Context, image []byte, mimeType string) (*core.DetectedItem, error) {
	params, err := structuredParams(labelPrompt, image, mimeType,
		"product_label", "A single product identified from a label photo", core.DetectedItem{})
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}
	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	var item core.DetectedItem
	if err := json.Unmarshal([]byte(content), &item); err != nil {
		return nil, fmt.Errorf("failed to parse label analysis: %w", err)
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	// Run the shared normalization path by wrapping the single item.
	wrapper := core.ScanResult{Mode: core.ScanModeProduct, Intent: core.IntentIncoming, Items: []core.DetectedItem{item}}
	wrapper.Normalize()
	if err := wrapper.Validate(); err != nil {
		return nil, fmt.Errorf("label analysis validation failed: %w", err)
	}
	return &wrapper.Items[0], nil
}

func (s *Scanner) AnalyzeLedgerPage(ctx context.Context, image []byte, mimeType string) (*core.ScanResult, error) {
	params, err := structuredParams(ledgerPrompt, image, mimeType,
		"ledger_page", "The contents of a handwritten shop ledger page", core.ScanResult{})
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}
	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	var result core.ScanResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("failed to parse ledger analysis: %w", err)
	}
	result.Mode = core.ScanModeBook

	result.Normalize()
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("ledger analysis validation failed: %w", err)
	}
	return &result, nil
}

func (s *Scanner) Describe(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
	if prompt == "" {
		prompt = describePrompt
	}

	resp, err := s.client.Responses.New(ctx, responses.ResponseNewParams{
		Model: shared.ResponsesModel(shared.ChatModelGPT4oMini),
		Input: imageInput(prompt, image, mimeType),
	})
	if err != nil {
		return "", fmt.Errorf("openai responses error: %w", err)
	}
	content := resp.OutputText()
	if content == "" {
		return "", fmt.Errorf("empty response content")
	}
	return content, nil
}

// generateSchema reflects a strict JSON schema from a Go struct for the
// structured-output API.
func generateSchema(v any) interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	return reflector.Reflect(v)
}
