package chat

// Part represents a polymorphic segment of role-based content. Concrete part
// types implement the unexported isPart marker enabling a closed set.
type Part interface{ isPart() }

// TextPart is a plain text content segment.
type TextPart struct {
	Text string // Plain UTF-8 text
}

// isPart implements the Part interface for TextPart.
func (TextPart) isPart() {}

// FunctionCall describes a tool invocation requested by the model.
type FunctionCall struct {
	ID        string `json:"id,omitempty"`        // Provider-assigned call id (generated if absent)
	Name      string `json:"name"`                // Tool name
	Arguments string `json:"arguments,omitempty"` // Serialized JSON argument payload
}

// FunctionCallPart wraps a FunctionCall as a content part.
type FunctionCallPart struct {
	FunctionCall FunctionCall
}

// isPart implements the Part interface for FunctionCallPart.
func (FunctionCallPart) isPart() {}

// FunctionResponse describes the outcome of a function call.
type FunctionResponse struct {
	ID       string `json:"id,omitempty"`       // Matches originating FunctionCall ID
	Name     string `json:"name"`               // Tool name
	Response any    `json:"response,omitempty"` // Successful result (any JSON-serializable shape)
	Error    string `json:"error,omitempty"`    // Populated on failure
}

// FunctionResponsePart wraps a FunctionResponse as a content part.
type FunctionResponsePart struct {
	FunctionResponse FunctionResponse
}

// isPart implements the Part interface for FunctionResponsePart.
func (FunctionResponsePart) isPart() {}

// Content holds a role plus ordered parts.
type Content struct {
	Role  string `json:"role,omitempty"` // Conversation role (system, user, assistant, tool)
	Parts []Part `json:"parts"`          // Ordered heterogeneous parts
}

// NewUserText builds a user message from plain text.
func NewUserText(text string) Content {
	return Content{Role: "user", Parts: []Part{TextPart{Text: text}}}
}

// NewAssistantText builds an assistant message from plain text.
func NewAssistantText(text string) Content {
	return Content{Role: "assistant", Parts: []Part{TextPart{Text: text}}}
}

// NewSystemText builds a system message from plain text.
func NewSystemText(text string) Content {
	return Content{Role: "system", Parts: []Part{TextPart{Text: text}}}
}

// Text concatenates the text parts of the content.
func (c Content) Text() string {
	var out string
	for _, p := range c.Parts {
		if tp, ok := p.(TextPart); ok {
			out += tp.Text
		}
	}
	return out
}

// FunctionCalls returns the function call parts of the content in order.
func (c Content) FunctionCalls() []FunctionCall {
	var calls []FunctionCall
	for _, p := range c.Parts {
		if fc, ok := p.(FunctionCallPart); ok {
			calls = append(calls, fc.FunctionCall)
		}
	}
	return calls
}
