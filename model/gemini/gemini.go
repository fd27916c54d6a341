// Package gemini provides a model wrapper for the Google Gemini API using
// the google.golang.org/genai SDK. It converts hermes' normalized request
// shape (instructions, contents, JSON-schema tool definitions) into genai
// contents and function declarations and maps candidate parts back.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"github.com/hermes-ai/hermes/chat"
	"github.com/hermes-ai/hermes/model"
)

// Options configures the Gemini model adapter.
type Options struct {
	Model       string
	Temperature float64
	APIKey      string
}

// Model wraps the Gemini GenerateContent API behind the generic model.Model interface.
type Model struct {
	client *genai.Client
	opts   Options
}

// NewModel creates a new Gemini model using the official genai client.
func NewModel(optFns ...func(o *Options)) (*Model, error) {
	opts := Options{
		Model:       "gemini-2.0-flash",
		Temperature: 0.7,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Model{client: client, opts: opts}, nil
}

// NewModelFromClient creates a new Gemini model from an existing client.
func NewModelFromClient(client *genai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:       "gemini-2.0-flash",
		Temperature: 0.7,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Generate implements non-streaming generation with function calling support.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		if req.Stream {
			errCh <- fmt.Errorf("streaming not yet implemented for Gemini model")
			return
		}

		config := &genai.GenerateContentConfig{
			Temperature: genai.Ptr(float32(m.opts.Temperature)),
		}

		if sys := systemText(req); sys != "" {
			config.SystemInstruction = &genai.Content{
				Parts: []*genai.Part{genai.NewPartFromText(sys)},
			}
		}

		if len(req.Tools) > 0 {
			config.Tools = buildTools(req.Tools)
		}

		resp, err := m.client.Models.GenerateContent(ctx, m.opts.Model, buildContents(req.Contents), config)
		if err != nil {
			errCh <- fmt.Errorf("gemini api error: %w", err)
			return
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			errCh <- fmt.Errorf("no candidates returned")
			return
		}

		candidate := resp.Candidates[0]

		var parts []chat.Part
		for _, p := range candidate.Content.Parts {
			switch {
			case p.FunctionCall != nil:
				args := ""
				if argsBytes, err := json.Marshal(p.FunctionCall.Args); err == nil {
					args = string(argsBytes)
				}
				parts = append(parts, chat.FunctionCallPart{
					FunctionCall: chat.FunctionCall{
						ID:        p.FunctionCall.ID,
						Name:      p.FunctionCall.Name,
						Arguments: args,
					},
				})
			case p.Text != "":
				parts = append(parts, chat.TextPart{Text: p.Text})
			}
		}

		finishReason := "stop"
		if candidate.FinishReason != "" && candidate.FinishReason != genai.FinishReasonStop {
			finishReason = string(candidate.FinishReason)
		}
		for _, p := range parts {
			if _, ok := p.(chat.FunctionCallPart); ok {
				finishReason = "tool_calls"
				break
			}
		}

		response := model.Response{
			Content:      chat.Content{Role: "assistant", Parts: parts},
			FinishReason: finishReason,
		}
		if resp.UsageMetadata != nil {
			response.Usage = &model.TokenUsage{
				PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
				CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
				TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
			}
		}

		out <- response
	}()

	return out, errCh
}

// Info implements the model.Model interface.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          m.opts.Model,
		Provider:      "gemini",
		SupportsTools: true,
	}
}

// systemText merges request instructions with any system-role contents.
func systemText(req model.Request) string {
	text := req.Instructions
	for _, c := range req.Contents {
		if c.Role != "system" {
			continue
		}
		if t := c.Text(); t != "" {
			if text != "" {
				text += "\n\n"
			}
			text += t
		}
	}
	return text
}

// buildContents converts hermes contents into genai contents. Tool responses
// become function response parts attributed to the user role as required by
// the Gemini API.
func buildContents(contents []chat.Content) []*genai.Content {
	var out []*genai.Content
	for _, c := range contents {
		switch c.Role {
		case "system":
			continue // handled via SystemInstruction
		case "assistant":
			var parts []*genai.Part
			for _, p := range c.Parts {
				switch part := p.(type) {
				case chat.TextPart:
					if part.Text != "" {
						parts = append(parts, genai.NewPartFromText(part.Text))
					}
				case chat.FunctionCallPart:
					var args map[string]any
					if part.FunctionCall.Arguments != "" {
						_ = json.Unmarshal([]byte(part.FunctionCall.Arguments), &args)
					}
					parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{
						ID:   part.FunctionCall.ID,
						Name: part.FunctionCall.Name,
						Args: args,
					}})
				}
			}
			if len(parts) > 0 {
				out = append(out, &genai.Content{Role: genai.RoleModel, Parts: parts})
			}
		case "tool":
			var parts []*genai.Part
			for _, p := range c.Parts {
				fr, ok := p.(chat.FunctionResponsePart)
				if !ok {
					continue
				}
				payload := map[string]any{}
				if fr.FunctionResponse.Error != "" {
					payload["error"] = fr.FunctionResponse.Error
				} else {
					payload["output"] = fmt.Sprintf("%v", fr.FunctionResponse.Response)
				}
				parts = append(parts, &genai.Part{FunctionResponse: &genai.FunctionResponse{
					ID:       fr.FunctionResponse.ID,
					Name:     fr.FunctionResponse.Name,
					Response: payload,
				}})
			}
			if len(parts) > 0 {
				out = append(out, &genai.Content{Role: genai.RoleUser, Parts: parts})
			}
		default:
			if text := c.Text(); text != "" {
				out = append(out, &genai.Content{
					Role:  genai.RoleUser,
					Parts: []*genai.Part{genai.NewPartFromText(text)},
				})
			}
		}
	}
	return out
}

// buildTools converts hermes tool definitions into genai function declarations.
func buildTools(tools []model.ToolDefinition) []*genai.Tool {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        t.Function.Name,
			Description: t.Function.Description,
			Parameters:  toSchema(t.Function.Parameters),
		})
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

// toSchema converts the minimal JSON-schema map used by tools into a genai.Schema.
func toSchema(schema map[string]any) *genai.Schema {
	if schema == nil {
		return &genai.Schema{Type: genai.TypeObject}
	}

	out := &genai.Schema{Type: schemaType(schema["type"])}

	if desc, ok := schema["description"].(string); ok {
		out.Description = desc
	}

	if props, ok := schema["properties"].(map[string]any); ok {
		out.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			if sub, ok := raw.(map[string]any); ok {
				out.Properties[name] = toSchema(sub)
			}
		}
	}

	switch req := schema["required"].(type) {
	case []string:
		out.Required = req
	case []any:
		for _, r := range req {
			if s, ok := r.(string); ok {
				out.Required = append(out.Required, s)
			}
		}
	}

	if items, ok := schema["items"].(map[string]any); ok {
		out.Items = toSchema(items)
	}

	switch enum := schema["enum"].(type) {
	case []string:
		out.Enum = enum
	case []any:
		for _, e := range enum {
			if s, ok := e.(string); ok {
				out.Enum = append(out.Enum, s)
			}
		}
	}

	return out
}

func schemaType(raw any) genai.Type {
	t, _ := raw.(string)
	switch t {
	case "string":
		return genai.TypeString
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	default:
		return genai.TypeObject
	}
}
