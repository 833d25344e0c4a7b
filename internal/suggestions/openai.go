package suggestions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultBaseURL targets the public OpenAI API.
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultModel is the completion model used when none is configured.
	DefaultModel = "gpt-3.5-turbo"

	systemPersona  = "You are a helpful assistant for meeting planning."
	temperature    = 0.7
	maxTokens      = 500
	requestTimeout = 30 * time.Second
)

var errEmptyCompletion = errors.New("suggestions: completion response carried no choices")

// ChatClientConfig describes an OpenAI-compatible chat-completions endpoint.
type ChatClientConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// ChatClient calls a chat-completions endpoint with the fixed parameters
// this service uses for every suggestion kind.
type ChatClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewChatClient constructs the client, or nil when no API key is configured
// so the generator serves fallbacks only.
func NewChatClient(cfg ChatClientConfig) *ChatClient {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: requestTimeout}
	}
	return &ChatClient{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		model:   model,
		client:  client,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends the prompt with the fixed system persona and returns the
// raw completion content.
func (c *ChatClient) Complete(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPersona},
			{Role: "user", Content: prompt},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+c.apiKey)

	response, err := c.client.Do(request)
	if err != nil {
		return "", err
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return "", fmt.Errorf("suggestions: completion request failed with status %d", response.StatusCode)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return "", err
	}

	var decoded chatResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", err
	}
	if len(decoded.Choices) == 0 {
		return "", errEmptyCompletion
	}
	return decoded.Choices[0].Message.Content, nil
}

// extractStringList pulls the first JSON array literal out of free-form
// completion text (from the first '[' to the last ']', newlines allowed) and
// parses it as a list of strings.
func extractStringList(content string) ([]string, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start == -1 || end == -1 || end < start {
		return nil, errors.New("suggestions: no JSON array in completion")
	}
	var values []string
	if err := json.Unmarshal([]byte(content[start:end+1]), &values); err != nil {
		return nil, err
	}
	return values, nil
}
