// Package openai builds and sends streaming requests to OpenAI-compatible
// chat and completion endpoints.
package openai

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/germanamz/promptly/pkg/chats/message"
	"github.com/germanamz/promptly/pkg/chats/tagged"
	"github.com/germanamz/promptly/pkg/modeladapter"
	"github.com/germanamz/promptly/pkg/settings"
)

const (
	completionsPath     = "/completions"
	chatCompletionsPath = "/chat/completions"
)

// Kind selects the endpoint variant and its response schema.
type Kind int

const (
	// KindChat posts a structured message list to /chat/completions.
	KindChat Kind = iota
	// KindCompletion posts a raw prompt to /completions.
	KindCompletion
)

// String returns a short name for the kind.
func (k Kind) String() string {
	if k == KindCompletion {
		return "completion"
	}

	return "chat"
}

// Path returns the endpoint path relative to the API base URL.
func (k Kind) Path() string {
	if k == KindCompletion {
		return completionsPath
	}

	return chatCompletionsPath
}

// KindFor picks the completion endpoint when a tokenizer URL is configured
// and the chat endpoint otherwise.
func KindFor(tokenizerURL string) Kind {
	if strings.TrimSpace(tokenizerURL) != "" {
		return KindCompletion
	}

	return KindChat
}

// Options carries the optional sampling parameters. Nil fields are omitted
// from the wire body.
type Options struct {
	MaxTokens        *int     `json:"max_tokens,omitempty"`
	Temperature      *float64 `json:"temperature,omitempty"`
	TopK             *int     `json:"top_k,omitempty"`
	TopP             *float64 `json:"top_p,omitempty"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64 `json:"presence_penalty,omitempty"`
}

// OptionsFrom parses the user-entered parameters. Empty or malformed values
// are left nil.
func OptionsFrom(p settings.Params) Options {
	return Options{
		MaxTokens:        settings.ParseInt(p.MaxTokens),
		Temperature:      settings.ParseFloat(p.Temperature),
		TopK:             settings.ParseInt(p.TopK),
		TopP:             settings.ParseFloat(p.TopP),
		FrequencyPenalty: settings.ParseFloat(p.FrequencyPenalty),
		PresencePenalty:  settings.ParseFloat(p.PresencePenalty),
	}
}

// CompletionRequest is the body of a /completions call.
type CompletionRequest struct {
	Model  string `json:"model,omitempty"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Options
}

// ChatRequest is the body of a /chat/completions call.
type ChatRequest struct {
	Model    string            `json:"model,omitempty"`
	Messages []message.Message `json:"messages"`
	Stream   bool              `json:"stream"`
	Options
}

// BuildCompletionRequest builds a streaming completion body. One trailing
// end-of-turn marker is removed from the prompt.
func BuildCompletionRequest(model, prompt string, params settings.Params) CompletionRequest {
	return CompletionRequest{
		Model:   model,
		Prompt:  tagged.TrimTrailingEndOfTurn(prompt),
		Stream:  true,
		Options: OptionsFrom(params),
	}
}

// BuildChatRequest builds a streaming chat body from msgs.
func BuildChatRequest(model string, msgs []message.Message, params settings.Params) ChatRequest {
	if msgs == nil {
		msgs = []message.Message{}
	}

	return ChatRequest{
		Model:    model,
		Messages: msgs,
		Stream:   true,
		Options:  OptionsFrom(params),
	}
}

// UserAgent identifies promptly to the endpoint.
const UserAgent = "promptly"

// Adapter streams requests to an OpenAI-compatible API.
type Adapter struct {
	modeladapter.ModelAdapter
}

// New creates an Adapter for baseURL (for example "https://api.openai.com/v1")
// authenticating with a bearer apiKey. A nil client uses a default client.
func New(baseURL, apiKey string, client *http.Client) *Adapter {
	a := &Adapter{ModelAdapter: modeladapter.New(baseURL, apiKey, client)}
	a.UserAgent = UserAgent

	return a
}

// Stream posts body to the endpoint for kind and returns the open event
// stream. The caller must close it.
func (a *Adapter) Stream(ctx context.Context, kind Kind, body any) (io.ReadCloser, error) {
	rc, err := a.PostStream(ctx, kind.Path(), body)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}

	return rc, nil
}
