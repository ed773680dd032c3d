package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client is the LLM surface the pipeline stages call. Stages name a model
// tier; the client maps tiers to concrete models.
type Client interface {
	// GenerateContent produces free-form text on the given tier.
	GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GenerateJSON produces structured JSON on the given tier, at a low
	// temperature for consistent output.
	GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GenerateCreativeJSON generates JSON content at a higher temperature,
	// for copywriting tasks where varied phrasing is wanted.
	GenerateCreativeJSON(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GetModel reports the concrete model name serving a tier.
	GetModel(tier ModelTier) string
	// Close releases the provider connection.
	Close() error
}

// Generation temperatures. Extraction and classification want determinism;
// message drafting wants varied phrasing.
const (
	structuredTemperature = 0.1
	creativeTemperature   = 0.8
)

// NewClient builds the provider client. Gemini is the only provider wired
// in; the indirection exists so stages depend on Client, not the SDK.
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	return NewGeminiClient(ctx, config, apiKey)
}

// GeminiClient talks to the Gemini API through the official SDK.
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient dials Gemini with the given API key.
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("missing API key")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to dial Gemini: %w", err)
	}

	return &GeminiClient{client: client, config: config}, nil
}

// GenerateContent generates free-form text at the structured temperature.
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.generate(ctx, prompt, tier, structuredTemperature, false)
}

// GenerateJSON produces structured JSON at the structured temperature.
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.generate(ctx, prompt, tier, structuredTemperature, true)
}

// GenerateCreativeJSON produces JSON at the copywriting temperature.
func (c *GeminiClient) GenerateCreativeJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.generate(ctx, prompt, tier, creativeTemperature, true)
}

// generate runs one completion. jsonMode asks the API for application/json
// output; the response is still fence-stripped because models occasionally
// wrap JSON in markdown anyway.
func (c *GeminiClient) generate(ctx context.Context, prompt string, tier ModelTier, temperature float32, jsonMode bool) (string, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", fmt.Errorf("tier %s has no model configured", tier)
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	if jsonMode {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return "", err
	}
	if jsonMode {
		text = CleanJSONBlock(text)
	}
	return text, nil
}

// GetModel reports the concrete model name serving a tier.
func (c *GeminiClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close shuts down the underlying SDK client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("response carried no candidates")
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", fmt.Errorf("response candidate carried no content")
	}

	var sb strings.Builder
	for _, part := range content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("response carried no text parts")
	}
	return sb.String(), nil
}
