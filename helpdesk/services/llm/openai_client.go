// helpdesk/services/llm/openai_client.go
package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	httputils "helpdesk/helpdesk/utils/http"
	"helpdesk/helpdesk/utils/logging"
)

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint
// (OpenAI, Groq, a local gateway).
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewOpenAIClient(apiKey, baseURL string, httpClient *http.Client) *OpenAIClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &OpenAIClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *OpenAIClient) Name() string { return "openai" }

type gptChatRequest struct {
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens,omitempty"`
	Stream    bool      `json:"stream"`
}

type gptResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete executes a single non-streaming completion. The system prompt
// goes in as the first message.
func (c *OpenAIClient) Complete(ctx context.Context, req ChatRequest) (string, error) {
	defer logging.LogDuration(ctx, "openai_complete")()

	messages := make([]Message, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: req.System})
	}
	messages = append(messages, req.Messages...)

	gptReq := gptChatRequest{
		Model:     req.Model,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
		Stream:    false,
	}

	var parsed gptResponse
	url := fmt.Sprintf("%s/chat/completions", c.baseURL)
	if err := httputils.PostJSONWithAuth(ctx, c.httpClient, url, c.apiKey, gptReq, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) > 0 && parsed.Choices[0].Message.Content != "" {
		return parsed.Choices[0].Message.Content, nil
	}
	return "", errEmptyReply
}
