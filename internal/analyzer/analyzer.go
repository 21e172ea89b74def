// Package analyzer turns the assembled report tables into a written
// analysis using the Gemini API.
package analyzer

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	"sitewatch/internal/core"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

// Client wraps a Gemini connection configured for report analysis.
type Client struct {
	gClient   *genai.Client
	modelName string
	template  string
}

// Options control model selection and prompt overrides.
type Options struct {
	Model        string
	TemplatePath string // optional: replaces the built-in analysis prompt
}

// NewClient connects to the Gemini API. The API key is required; model
// and template fall back to built-in defaults.
func NewClient(ctx context.Context, apiKey string, opts Options) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: gemini API key is required", core.ErrInvalidInput)
	}

	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	modelName := opts.Model
	if modelName == "" {
		modelName = DefaultModel
	}

	template := analysisPromptTemplate
	if opts.TemplatePath != "" {
		data, err := os.ReadFile(opts.TemplatePath)
		if err != nil {
			return nil, fmt.Errorf("reading prompt template: %w", err)
		}
		template = string(data)
	}
	if !strings.Contains(template, promptDataPlaceholder) {
		return nil, fmt.Errorf("%w: prompt template missing %s placeholder", core.ErrInvalidInput, promptDataPlaceholder)
	}

	return &Client{gClient: gClient, modelName: modelName, template: template}, nil
}

// Analyze sends the report tables to the model and returns the written
// analysis as markdown.
func (c *Client) Analyze(ctx context.Context, reportData string) (string, error) {
	prompt := strings.Replace(c.template, promptDataPlaceholder, reportData, 1)

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	// Low temperature keeps the analysis anchored to the table values.
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(0.2)),
		TopP:            genai.Ptr(float32(0.8)),
		MaxOutputTokens: 8000,
	}

	resp, err := c.gClient.Models.GenerateContent(ctx, c.modelName, contents, config)
	if err != nil {
		return "", fmt.Errorf("%w: generating analysis: %v", core.ErrUpstreamFailure, err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty response from model", core.ErrUpstreamFailure)
	}

	return text, nil
}

// Model reports the model name in use.
func (c *Client) Model() string {
	return c.modelName
}

// Ping sends a trivial prompt to verify the key and model.
func (c *Client) Ping(ctx context.Context) error {
	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: "Reply with the single word: ok"}},
		Role:  "user",
	}}

	resp, err := c.gClient.Models.GenerateContent(ctx, c.modelName, contents, nil)
	if err != nil {
		return fmt.Errorf("%w: gemini check failed: %v", core.ErrUpstreamFailure, err)
	}
	if resp.Text() == "" {
		return fmt.Errorf("%w: gemini check returned empty response", core.ErrUpstreamFailure)
	}
	return nil
}
