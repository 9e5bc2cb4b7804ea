package completion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/pitchscoop/pitchscoop-backend/internal/config"
	"github.com/pitchscoop/pitchscoop-backend/internal/metrics"
)

// OpenAIClient talks to Azure OpenAI (or plain OpenAI) chat completions
type OpenAIClient struct {
	client     *openai.Client
	deployment string
	timeout    time.Duration
	name       string
}

// NewOpenAIClient creates a client from provider configuration
func NewOpenAIClient(cfg config.ProviderConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("provider API key is required")
	}

	var clientConfig openai.ClientConfig
	name := "openai"
	if cfg.Type == "azure-openai" {
		if cfg.Endpoint == "" {
			return nil, errors.New("azure-openai requires an endpoint")
		}
		clientConfig = openai.DefaultAzureConfig(cfg.APIKey, cfg.Endpoint)
		if cfg.APIVersion != "" {
			clientConfig.APIVersion = cfg.APIVersion
		}
		name = "azure-openai"
	} else {
		clientConfig = openai.DefaultConfig(cfg.APIKey)
		if cfg.Endpoint != "" {
			clientConfig.BaseURL = cfg.Endpoint
		}
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &OpenAIClient{
		client:     openai.NewClientWithConfig(clientConfig),
		deployment: cfg.Deployment,
		timeout:    timeout,
		name:       name,
	}, nil
}

// Name returns the provider name
func (c *OpenAIClient) Name() string {
	return c.name
}

// Complete performs a non-streaming chat completion
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	openAIReq := openai.ChatCompletionRequest{
		Model:       c.deployment,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	for _, m := range req.Messages {
		openAIReq.Messages = append(openAIReq.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	if req.JSONOnly {
		openAIReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openAIReq)
	metrics.CompletionLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty choice list", ErrUnavailable)
	}

	return &Response{
		Content:          resp.Choices[0].Message.Content,
		Model:            resp.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}
