package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Config holds OpenAI-compatible client configuration.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	VisionModel string
	// Timeout bounds every capability call. A generation call that never
	// returns would otherwise stall its whole stage.
	Timeout time.Duration
}

// OpenAIClient implements Client against any OpenAI-compatible endpoint.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	visionModel string
	timeout     time.Duration
}

// NewOpenAIClient creates a client for the configured endpoint.
func NewOpenAIClient(cfg Config) (*OpenAIClient, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	openaiConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		openaiConfig.BaseURL = cfg.BaseURL
	}

	visionModel := cfg.VisionModel
	if visionModel == "" {
		visionModel = cfg.Model
	}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(openaiConfig),
		model:       cfg.Model,
		visionModel: visionModel,
		timeout:     cfg.Timeout,
	}, nil
}

// GenerateText performs a single-turn completion request.
func (c *OpenAIClient) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// AnalyzeImage sends the image alongside the prompt to the vision model.
func (c *OpenAIClient) AnalyzeImage(ctx context.Context, image []byte, prompt string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("image is empty")
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.visionModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("vision request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("vision request returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}
