package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/heywrite/prompts"
	"go.uber.org/zap"
)

const DefaultChatURL = "https://api.deepseek.com/v1/chat/completions"

// ChatDrafter drafts directly against an OpenAI compatible chat completions
// API instead of the backend. It has no access to the corpus, so it never
// returns sources.
type ChatDrafter struct {
	apiKey      string
	httpClient  *http.Client
	url         string
	model       string
	temperature float64
	maxTokens   int
	metrics     *Metrics
}

var _ Drafter = (*ChatDrafter)(nil)

func NewChatDrafter(url, apiKey, model string, opts ...Option) (*ChatDrafter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: chat drafter requires an api key", ErrValidation)
	}
	if url == "" {
		url = DefaultChatURL
	}
	if model == "" {
		model = "deepseek-chat"
	}

	settings := applyOptions(opts)
	return &ChatDrafter{
		apiKey:      apiKey,
		httpClient:  settings.httpClient,
		url:         url,
		model:       model,
		temperature: settings.temperature,
		maxTokens:   settings.maxTokens,
		metrics:     settings.metrics,
	}, nil
}

func (c *ChatDrafter) GetModel() string {
	return c.model
}

func (c *ChatDrafter) Generate(ctx context.Context, req DraftRequest) (*DraftResponse, error) {
	return c.draft(ctx, OpGenerate, req, false)
}

func (c *ChatDrafter) GenerateWithTemplate(ctx context.Context, req DraftRequest) (*DraftResponse, error) {
	return c.draft(ctx, OpGenerateTemplate, req, true)
}

func (c *ChatDrafter) draft(ctx context.Context, op string, req DraftRequest, withTemplate bool) (*DraftResponse, error) {
	start := time.Now()
	if err := Validate(req); err != nil {
		c.metrics.observe(op, start, err)
		return nil, err
	}

	systemPrompt, userPrompt, err := prompts.RenderDraftPrompt(req.Intent, string(req.Tone), string(req.Language), withTemplate)
	if err != nil {
		return nil, fmt.Errorf("error rendering prompt: %w", err)
	}

	messages := make([]Message, 0, len(req.History)+2)
	messages = append(messages, Message{Role: "system", Content: systemPrompt})
	messages = append(messages, req.History...)
	messages = append(messages, Message{Role: RoleUser, Content: userPrompt})

	reply, err := c.makeRequest(ctx, op, chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	c.metrics.observe(op, start, err)
	if err != nil {
		return nil, err
	}
	return &DraftResponse{Reply: reply}, nil
}

func (c *ChatDrafter) makeRequest(ctx context.Context, op string, request chatRequest) (string, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("Chat completion request failed", zap.String("op", op), zap.Error(err))
		return "", newNetworkError(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", newNetworkError(op, fmt.Errorf("error reading response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		gwErr := newStatusError(op, resp.StatusCode, body)
		logger.Error("Chat completion returned failure status",
			zap.String("op", op), zap.Int("status", resp.StatusCode), zap.String("message", gwErr.Message))
		return "", gwErr
	}

	var response chatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", &Error{Op: op, StatusCode: resp.StatusCode, Message: fmt.Sprintf("invalid response body: %v", err), Err: err}
	}

	if len(response.Choices) == 0 {
		return "", &Error{Op: op, StatusCode: resp.StatusCode, Message: "no choices in response"}
	}

	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

// chat completions wire types
type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}
