// helpdesk/services/llm/llm.go
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"helpdesk/helpdesk/config"
	"helpdesk/helpdesk/utils/logging"

	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is one non-streaming completion call.
type ChatRequest struct {
	Model     string
	System    string
	Messages  []Message
	MaxTokens int
}

// Provider is a single chat-completion backend. Errors are returned as-is,
// the Generator decides what the user sees.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

var errEmptyReply = errors.New("no response from model")

// Generator turns a conversation into a reply and never fails: provider
// errors become one of the persona's fallback strings.
type Generator struct {
	provider  Provider
	persona   config.Persona
	model     string
	maxTokens int
}

func NewGenerator(provider Provider, persona config.Persona, model string, maxTokens int) *Generator {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if persona.SystemPrompt == "" {
		persona = DefaultPersona()
	}
	return &Generator{
		provider:  provider,
		persona:   persona,
		model:     model,
		maxTokens: maxTokens,
	}
}

func (g *Generator) ProviderName() string {
	return g.provider.Name()
}

// Generate sends history plus the current message, appended once as the
// final user turn. A single attempt is made.
func (g *Generator) Generate(ctx context.Context, history []Message, current string) string {
	defer logging.LogDuration(ctx, "llm_generate")()

	messages := make([]Message, 0, len(history)+1)
	for _, m := range history {
		role := RoleAssistant
		if m.Role == RoleUser {
			role = RoleUser
		}
		messages = append(messages, Message{Role: role, Content: m.Content})
	}
	messages = append(messages, Message{Role: RoleUser, Content: current})

	logging.AppLogger.Info("Calling model",
		zap.String("provider", g.provider.Name()),
		zap.Int("messages", len(messages)),
		zap.Int("current_len", len(current)),
	)

	reply, err := g.complete(ctx, ChatRequest{
		Model:     g.model,
		System:    g.persona.SystemPrompt,
		Messages:  messages,
		MaxTokens: g.maxTokens,
	})
	if err == nil && strings.TrimSpace(reply) == "" {
		err = errEmptyReply
	}
	if err != nil {
		kind := Classify(err)
		logging.ErrorLogger.Error("LLM error",
			zap.String("provider", g.provider.Name()),
			zap.String("kind", kind.String()),
			zap.Error(err),
		)
		return g.fallback(kind)
	}
	return reply
}

func (g *Generator) complete(ctx context.Context, req ChatRequest) (reply string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider panic: %v", r)
		}
	}()
	return g.provider.Complete(ctx, req)
}

func (g *Generator) fallback(kind FailureKind) string {
	f := g.persona.Fallbacks
	switch kind {
	case FailureRateLimit:
		return f.RateLimit
	case FailureTimeout:
		return f.Timeout
	case FailureAuth:
		return f.Auth
	default:
		return f.Unavailable
	}
}

const providerTimeout = 30 * time.Second

// NewProviderFromConfig picks the backend named by LLM_PROVIDER.
func NewProviderFromConfig(cfg config.Config) (Provider, error) {
	switch cfg.LLMProvider {
	case config.ProviderAnthropic, "":
		return NewAnthropicClient(cfg.ClaudeAPIKey, option.WithRequestTimeout(providerTimeout)), nil
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, &http.Client{Timeout: providerTimeout}), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
}
