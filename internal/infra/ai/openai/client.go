package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/bryanwahyu/petmoji/internal/domain/ai"
	"github.com/bryanwahyu/petmoji/internal/infra/ai/prompt"
)

const (
	defaultModel = "gpt-4o-mini"
	maxTokens    = 256
)

type Client struct {
	*openai.Client
	model string
}

func NewClient(apiKey, model string) *Client {
	return NewClientWithConfig(openai.DefaultConfig(apiKey), model)
}

// NewClientWithConfig allows a custom base URL (proxies, Azure, tests).
func NewClientWithConfig(cfg openai.ClientConfig, model string) *Client {
	if model == "" {
		model = defaultModel
	}
	return &Client{Client: openai.NewClientWithConfig(cfg), model: model}
}

func (c *Client) Name() string  { return "openai" }
func (c *Client) Model() string { return c.model }

func (c *Client) AssignEmoji(ctx context.Context, in ai.Request) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "pet_emoji_" + in.Prompt.Version,
				Schema: replySchema(in.Prompt),
				Strict: true,
			},
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: in.Prompt.System},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt.UserText(in.Prompt)},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    in.Photo.DataURI(),
							Detail: openai.ImageURLDetailLow,
						},
					},
				},
			},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if isReasoningModel(c.model) {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		if isQuota(err) {
			return "", fmt.Errorf("%w: %v", ai.ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ai.ErrEmptyReply
	}
	msg := resp.Choices[0].Message
	if msg.Refusal != "" {
		return "", fmt.Errorf("model refused: %s", msg.Refusal)
	}
	return msg.Content, nil
}

func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}

func isQuota(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return false
}

// replySchema is the strict JSON schema for the reply. Strict mode needs every
// property listed as required, so confidence only appears when the prompt asks for it.
func replySchema(p ai.Prompt) *jsonschema.Definition {
	props := map[string]jsonschema.Definition{
		"emoji":   {Type: jsonschema.String, Description: "The emoji representing the pet's expression or mood."},
		"comment": {Type: jsonschema.String, Description: "A short, fun comment about the pet's expression or mood."},
	}
	required := []string{"emoji", "comment"}
	if p.WithConfidence {
		props["confidence"] = jsonschema.Definition{Type: jsonschema.Number, Description: "Confidence in the detected emotion, 0 to 100."}
		required = append(required, "confidence")
	}
	return &jsonschema.Definition{
		Type:                 jsonschema.Object,
		Properties:           props,
		Required:             required,
		AdditionalProperties: false,
	}
}
