package chat

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// DefaultMaxMessages bounds the history when no explicit limit is given.
	DefaultMaxMessages = 20

	// tokensPerMessage approximates per-message framing overhead
	// (<|start|>role ... <|end|>) used by chat completion formats.
	tokensPerMessage = 3
)

// HistoryOptions configures a History instance.
type HistoryOptions struct {
	// MaxMessages caps the number of retained messages. Oldest messages are
	// evicted first. Values < 1 fall back to DefaultMaxMessages.
	MaxMessages int

	// TokenBudget optionally caps the total token footprint of the retained
	// messages. 0 disables token-based trimming.
	TokenBudget int

	// Model selects the tokenizer encoding for the token budget. Unknown
	// models fall back to the cl100k_base encoding.
	Model string
}

// History is a goroutine-safe bounded FIFO of conversation messages.
//
// Trimming applies on every Add: first the message cap, then (if configured)
// the token budget. The most recent message is always retained even when it
// alone exceeds the budget, so a conversation can never trim itself empty.
type History struct {
	mu       sync.Mutex
	messages []Content
	maxLen   int
	budget   int
	encoding *tiktoken.Tiktoken
}

// encodingCache avoids repeated BPE initialization per model.
var (
	encodingCache   = map[string]*tiktoken.Tiktoken{}
	encodingCacheMu sync.Mutex
)

func encodingForModel(model string) (*tiktoken.Tiktoken, error) {
	encodingCacheMu.Lock()
	defer encodingCacheMu.Unlock()

	if enc, ok := encodingCache[model]; ok {
		return enc, nil
	}

	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("failed to get encoding: %w", err)
		}
	}

	encodingCache[model] = enc

	return enc, nil
}

// NewHistory constructs a History with defaults suitable for chat agents.
func NewHistory(optFns ...func(o *HistoryOptions)) (*History, error) {
	opts := HistoryOptions{MaxMessages: DefaultMaxMessages}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxMessages < 1 {
		opts.MaxMessages = DefaultMaxMessages
	}

	h := &History{maxLen: opts.MaxMessages, budget: opts.TokenBudget}

	if opts.TokenBudget > 0 {
		enc, err := encodingForModel(opts.Model)
		if err != nil {
			return nil, err
		}
		h.encoding = enc
	}

	return h, nil
}

// Add appends messages to the history and trims to the configured bounds.
func (h *History) Add(messages ...Content) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, messages...)
	h.trim()
}

// Seed replaces the history with the given messages (trimmed to bounds).
// Useful for resuming a conversation from persisted state.
func (h *History) Seed(messages []Content) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append([]Content(nil), messages...)
	h.trim()
}

// Messages returns a defensive copy of the retained messages.
func (h *History) Messages() []Content {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Content, len(h.messages))
	copy(out, h.messages)
	return out
}

// Len returns the number of retained messages.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

// Clear drops all retained messages.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = nil
}

// trim enforces the message cap and token budget. Caller must hold mu.
func (h *History) trim() {
	if len(h.messages) > h.maxLen {
		h.messages = h.messages[len(h.messages)-h.maxLen:]
	}

	if h.encoding == nil || h.budget <= 0 {
		return
	}

	for len(h.messages) > 1 && h.totalTokens() > h.budget {
		h.messages = h.messages[1:]
	}
}

// totalTokens sums the token footprint of retained messages. Caller must hold mu.
func (h *History) totalTokens() int {
	total := tokensPerMessage // reply priming
	for _, m := range h.messages {
		total += h.messageTokens(m)
	}
	return total
}

func (h *History) messageTokens(c Content) int {
	total := tokensPerMessage
	total += len(h.encoding.Encode(c.Role, nil, nil))
	for _, p := range c.Parts {
		switch part := p.(type) {
		case TextPart:
			total += len(h.encoding.Encode(part.Text, nil, nil))
		case FunctionCallPart:
			total += len(h.encoding.Encode(part.FunctionCall.Name, nil, nil))
			total += len(h.encoding.Encode(part.FunctionCall.Arguments, nil, nil))
		case FunctionResponsePart:
			total += len(h.encoding.Encode(part.FunctionResponse.Name, nil, nil))
			total += len(h.encoding.Encode(fmt.Sprintf("%v", part.FunctionResponse.Response), nil, nil))
		}
	}
	return total
}
