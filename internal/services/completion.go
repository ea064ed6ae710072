package services

import (
	"context"
	"errors"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"medilink-backend/internal/models"
)

// CompletionConfig is fixed at construction and read-only afterwards, so one
// client is safe to share across sessions.
type CompletionConfig struct {
	Token        string
	Endpoint     string
	Model        string
	SystemPrompt string
	MaxTokens    int
	Temperature  float64
	MaxRetries   int
	RetryDelay   time.Duration
}

// CompletionClient wraps the external chat-completion endpoint with bounded
// retry and linear backoff. It never mutates the transcript it is given; the
// caller appends the returned reply.
type CompletionClient struct {
	client       *openai.Client
	model        string
	systemPrompt string
	maxTokens    int
	temperature  float32
	maxRetries   int
	retryDelay   time.Duration
}

// NewCompletionClient fails fast on a missing credential; a bad token is a
// deployment problem, not something to retry at request time.
func NewCompletionClient(cfg CompletionConfig) (*CompletionClient, error) {
	if cfg.Token == "" {
		return nil, errors.New("completion: API token is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = defaultTriagePrompt
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1000
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}

	clientCfg := openai.DefaultConfig(cfg.Token)
	if cfg.Endpoint != "" {
		clientCfg.BaseURL = cfg.Endpoint
	}

	return &CompletionClient{
		client:       openai.NewClientWithConfig(clientCfg),
		model:        cfg.Model,
		systemPrompt: cfg.SystemPrompt,
		maxTokens:    cfg.MaxTokens,
		temperature:  float32(cfg.Temperature),
		maxRetries:   cfg.MaxRetries,
		retryDelay:   cfg.RetryDelay,
	}, nil
}

// Complete sends the system prompt plus the full transcript and returns the
// assistant's reply text.
func (c *CompletionClient) Complete(ctx context.Context, transcript []models.Message) (string, error) {
	oaMsgs := make([]openai.ChatCompletionMessage, 0, len(transcript)+1)
	oaMsgs = append(oaMsgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: c.systemPrompt,
	})
	for _, m := range transcript {
		role := m.Role
		if role != openai.ChatMessageRoleSystem && role != openai.ChatMessageRoleUser && role != openai.ChatMessageRoleAssistant {
			// coerce anything unknown to user
			role = openai.ChatMessageRoleUser
		}
		oaMsgs = append(oaMsgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	return c.createWithRetry(ctx, oaMsgs)
}

// AnalyzeImage runs a one-shot text plus image_url request through the same
// retry path.
func (c *CompletionClient) AnalyzeImage(ctx context.Context, imageURL string) (string, error) {
	if strings.TrimSpace(imageURL) == "" {
		return "", &ValidationError{Fields: map[string]string{"image_url": "Image URL is required"}}
	}

	oaMsgs := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: c.systemPrompt},
		{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: imageAnalysisPrompt},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: imageURL}},
			},
		},
	}

	return c.createWithRetry(ctx, oaMsgs)
}

// createWithRetry retries every failure class up to the budget, waiting
// retryDelay × attempt between tries, then surfaces the last error
// classified. Distinguishing retryable from non-retryable statuses up front
// is deliberately not attempted; the budget is small and uniform retry keeps
// the policy predictable.
func (c *CompletionClient) createWithRetry(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err == nil {
			if len(resp.Choices) == 0 {
				err = errors.New("completion: response contained no choices")
			} else {
				return resp.Choices[0].Message.Content, nil
			}
		}
		lastErr = err

		if attempt == c.maxRetries {
			break
		}
		select {
		case <-time.After(c.retryDelay * time.Duration(attempt)):
		case <-ctx.Done():
			// Cancellation mid-backoff still surfaces classified.
			return "", classifyCompletionError(ctx.Err())
		}
	}

	return "", classifyCompletionError(lastErr)
}

// classifyCompletionError maps the last observed failure to a caller-facing
// category: invalid credential, upstream unavailable, or generic failure.
func classifyCompletionError(err error) error {
	status := 0
	message := ""

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatusCode
		message = apiErr.Message
	} else if errors.As(err, &reqErr) {
		status = reqErr.HTTPStatusCode
		if reqErr.Err != nil {
			message = reqErr.Err.Error()
		}
	} else if err != nil {
		message = err.Error()
	}

	switch {
	case status == 401 || status == 403 || strings.Contains(strings.ToLower(message), "token"):
		return &AuthTokenError{Message: "Invalid API token. Please check your credentials."}
	case status == 502 || status == 503 || status == 504:
		return &UnavailableError{Message: "The analysis service is temporarily unavailable. Please try again in a few moments."}
	default:
		return &AIError{Message: "Failed to analyze symptoms. Please try again."}
	}
}
