package llm

import (
	"context"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/docman-dev/docman/internal/docman"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-sonnet-4-5"

type messagesAPI interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// AnthropicSuggester asks a Claude model through the Messages API.
type AnthropicSuggester struct {
	messages  messagesAPI
	model     string
	maxTokens int64
	timeout   time.Duration
}

// AnthropicOption configures an AnthropicSuggester.
type AnthropicOption func(*AnthropicSuggester)

// WithModel selects the model.
func WithModel(model string) AnthropicOption {
	return func(s *AnthropicSuggester) {
		if model != "" {
			s.model = model
		}
	}
}

// WithMaxTokens bounds the response length.
func WithMaxTokens(n int64) AnthropicOption {
	return func(s *AnthropicSuggester) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

// WithTimeout bounds each request. Zero disables the per-call deadline.
func WithTimeout(d time.Duration) AnthropicOption {
	return func(s *AnthropicSuggester) {
		s.timeout = d
	}
}

// NewAnthropicSuggester creates a suggester authenticated with apiKey.
func NewAnthropicSuggester(apiKey string, opts ...AnthropicOption) (*AnthropicSuggester, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return newAnthropicSuggester(&client.Messages, opts...), nil
}

func newAnthropicSuggester(messages messagesAPI, opts ...AnthropicOption) *AnthropicSuggester {
	s := &AnthropicSuggester{
		messages:  messages,
		model:     DefaultModel,
		maxTokens: 1024,
		timeout:   60 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Model returns the configured model name.
func (s *AnthropicSuggester) Model() string {
	return s.model
}

// Suggest sends the prompt pair and parses the reply.
func (s *AnthropicSuggester) Suggest(ctx context.Context, req Request) (docman.Suggestion, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: s.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.User)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Type: "text", Text: req.System}}
	}

	msg, err := s.messages.New(ctx, params)
	if err != nil {
		return docman.Suggestion{}, errors.Wrap(err, "anthropic request failed")
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return ParseSuggestion(text.String())
}
