package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	// DefaultBaseURL targets the standard OpenAI endpoint. Azure and
	// compatible proxies override it via Options.BaseURL.
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultModel is the checker's fixed model identifier.
	DefaultModel = "gpt-4.1"

	defaultMaxTokens = 2048
)

// Compile-time interface check
var _ Invoker = (*OpenAIClient)(nil)

// OpenAIClient calls an OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// Options configures an OpenAIClient. Zero values fall back to the
// package defaults.
type Options struct {
	Model   string
	BaseURL string
	// HTTPClient lets tests inject a transport. The client carries no
	// timeout of its own; every call is bounded by the caller's ctx.
	HTTPClient *http.Client
}

// NewOpenAIClient creates a client for the given API key. The key is
// resolved by the caller; this package never reads the environment.
func NewOpenAIClient(apiKey string, opts Options) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	c := &OpenAIClient{
		apiKey:  apiKey,
		model:   opts.Model,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		client:  opts.HTTPClient,
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.client == nil {
		c.client = &http.Client{}
	}
	return c, nil
}

func (c *OpenAIClient) Name() string { return "openai" }

// Model returns the fixed model identifier this client invokes.
func (c *OpenAIClient) Model() string { return c.model }

// Invoke sends one chat completion request and returns the response
// text. The call is bounded entirely by ctx; there are no retries.
func (c *OpenAIClient) Invoke(ctx context.Context, req Request) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	body := chatRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", &InvocationError{Kind: KindTransport, Err: fmt.Errorf("marshaling request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", &InvocationError{Kind: KindTransport, Err: fmt.Errorf("creating request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return "", ClassifyContextError(ctx, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", ClassifyContextError(ctx, err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return "", &InvocationError{
			Kind: KindTransport,
			Err:  fmt.Errorf("API error (status %d): %s", httpResp.StatusCode, truncateBody(respBody)),
		}
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", &InvocationError{Kind: KindTransport, Err: fmt.Errorf("parsing response: %w", err)}
	}
	if len(result.Choices) == 0 {
		return "", &InvocationError{Kind: KindTransport, Err: fmt.Errorf("response contained no choices")}
	}

	return result.Choices[0].Message.Content, nil
}

func truncateBody(b []byte) string {
	const limit = 512
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}

type chatRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
