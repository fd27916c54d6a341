package model

import (
	"context"
	"fmt"

	"github.com/hermes-ai/hermes/chat"
)

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the model.
// Parameters is a JSON Schema object (draft agnostic, minimal subset expected).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON Schema
}

// Request captures the normalized model input produced by the agent loop.
type Request struct {
	Instructions string           `json:"instructions"` // System prompt
	Contents     []chat.Content   `json:"contents"`     // Conversation converted to provider messages
	Tools        []ToolDefinition `json:"tools,omitempty"`
	Stream       bool             `json:"stream,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a model.
type Response struct {
	ID           string       `json:"id"`
	Partial      bool         `json:"partial"` // Indicates if this is a partial response
	Content      chat.Content `json:"content"`
	FinishReason string       `json:"finish_reason"` // "stop", "length", "tool_calls", etc.
	Usage        *TokenUsage  `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "azure", "anthropic", "gemini", ...
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface required by the agent loop to drive generation.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
//
// Besides canned text completions keyed by the latest user input it can be
// scripted to request function calls: the first generation matching a prompt
// with a registered call emits the call, the follow-up turn (which carries
// the tool response) falls through to the canned text answer.
type MockModel struct {
	info      Info
	responses map[string]string
	fnCalls   map[string][]chat.FunctionCall
}

// NewMockModel constructs a MockModel with basic tool support enabled.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info: Info{
			Name:          name,
			Provider:      provider,
			SupportsTools: true,
		},
		responses: make(map[string]string),
		fnCalls:   make(map[string][]chat.FunctionCall),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) { m.responses[prompt] = response }

// AddFunctionCalls scripts function call requests for an input prompt.
func (m *MockModel) AddFunctionCalls(prompt string, calls ...chat.FunctionCall) {
	m.fnCalls[prompt] = calls
}

// Generate implements Model; emits optional streaming char chunks then the final response.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(respCh)
		defer close(errCh)

		if len(req.Contents) == 0 {
			errCh <- fmt.Errorf("no contents provided")
			return
		}

		inputText, sawToolResponse := lastUserInput(req.Contents)

		if calls, ok := m.fnCalls[inputText]; ok && !sawToolResponse {
			parts := make([]chat.Part, 0, len(calls))
			for _, fc := range calls {
				parts = append(parts, chat.FunctionCallPart{FunctionCall: fc})
			}
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
			case respCh <- Response{
				Content:      chat.Content{Role: "assistant", Parts: parts},
				FinishReason: "tool_calls",
			}:
			}
			return
		}

		full := m.responses[inputText]
		if full == "" {
			full = fmt.Sprintf("Mock response to: %s", inputText)
		}

		if req.Stream {
			for _, r := range full {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{
					Partial: true,
					Content: chat.Content{
						Role:  "assistant",
						Parts: []chat.Part{chat.TextPart{Text: string(r)}},
					},
				}:
				}
			}
		}

		respCh <- Response{
			Content:      chat.NewAssistantText(full),
			FinishReason: "stop",
		}
	}()

	return respCh, errCh
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }

// lastUserInput finds the most recent user text and reports whether a tool
// response appears after it (i.e. this is a follow-up turn).
func lastUserInput(contents []chat.Content) (string, bool) {
	var input string
	var toolAfter bool
	for _, c := range contents {
		switch c.Role {
		case "user":
			input = c.Text()
			toolAfter = false
		case "tool":
			toolAfter = true
		}
	}
	return input, toolAfter
}
