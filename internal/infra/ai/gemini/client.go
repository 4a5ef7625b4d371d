package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/bryanwahyu/petmoji/internal/domain/ai"
	"github.com/bryanwahyu/petmoji/internal/infra/ai/prompt"
)

const (
	defaultModel = "gemini-2.5-flash"
	maxTokens    = 256
)

// Client calls Gemini through the Google GenAI SDK with a response schema.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a Gemini API client authenticated by API key.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	return NewClientWithConfig(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}, model)
}

// NewClientWithConfig allows Vertex AI backends or a custom base URL.
func NewClientWithConfig(ctx context.Context, cfg *genai.ClientConfig, model string) (*Client, error) {
	if model == "" {
		model = defaultModel
	}
	cli, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating GenAI client: %w", err)
	}
	return &Client{client: cli, model: model}, nil
}

func (c *Client) Name() string  { return "gemini" }
func (c *Client) Model() string { return c.model }

// AssignEmoji sends the photo inline next to the instruction text.
func (c *Client) AssignEmoji(ctx context.Context, in ai.Request) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt.UserText(in.Prompt)),
			genai.NewPartFromBytes(in.Photo.Data, in.Photo.MIMEType),
		}, genai.RoleUser),
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(in.Prompt.System, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    replySchema(in.Prompt),
		MaxOutputTokens:   maxTokens,
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		if isQuota(err) {
			return "", fmt.Errorf("%w: %v", ai.ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", ai.ErrEmptyReply
	}
	return text, nil
}

func isQuota(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED"
	}
	return false
}

func replySchema(p ai.Prompt) *genai.Schema {
	lo, hi := 0.0, 100.0
	s := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"emoji":   {Type: genai.TypeString, Description: "The emoji representing the pet's expression or mood."},
			"comment": {Type: genai.TypeString, Description: "A short, fun comment about the pet's expression or mood."},
		},
		Required:         []string{"emoji", "comment"},
		PropertyOrdering: []string{"emoji", "comment"},
	}
	if p.WithConfidence {
		s.Properties["confidence"] = &genai.Schema{
			Type:        genai.TypeNumber,
			Description: "Confidence in the detected emotion, 0 to 100.",
			Minimum:     &lo,
			Maximum:     &hi,
		}
		s.Required = append(s.Required, "confidence")
		s.PropertyOrdering = append(s.PropertyOrdering, "confidence")
	}
	return s
}
