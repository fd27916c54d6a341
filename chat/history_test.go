package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContent_Text(t *testing.T) {
	c := Content{Role: "assistant", Parts: []Part{
		TextPart{Text: "hello "},
		FunctionCallPart{FunctionCall: FunctionCall{Name: "tool"}},
		TextPart{Text: "world"},
	}}
	assert.Equal(t, "hello world", c.Text())
}

func TestContent_FunctionCalls(t *testing.T) {
	c := Content{Role: "assistant", Parts: []Part{
		TextPart{Text: "calling"},
		FunctionCallPart{FunctionCall: FunctionCall{ID: "1", Name: "a"}},
		FunctionCallPart{FunctionCall: FunctionCall{ID: "2", Name: "b"}},
	}}

	calls := c.FunctionCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "a", calls[0].Name)
	assert.Equal(t, "b", calls[1].Name)
}

func TestHistory_BoundedFIFO(t *testing.T) {
	h, err := NewHistory(func(o *HistoryOptions) {
		o.MaxMessages = 4
	})
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		h.Add(NewUserText(string(rune('a' + i))))
	}

	messages := h.Messages()
	require.Len(t, messages, 4)
	// Oldest messages evicted first.
	assert.Equal(t, "c", messages[0].Text())
	assert.Equal(t, "f", messages[3].Text())
}

func TestHistory_DefaultMax(t *testing.T) {
	h, err := NewHistory()
	require.NoError(t, err)

	for i := 0; i < DefaultMaxMessages+5; i++ {
		h.Add(NewUserText("m"))
	}

	assert.Equal(t, DefaultMaxMessages, h.Len())
}

func TestHistory_TokenBudget(t *testing.T) {
	h, err := NewHistory(func(o *HistoryOptions) {
		o.MaxMessages = 100
		o.TokenBudget = 50
		o.Model = "gpt-4o-mini"
	})
	require.NoError(t, err)

	long := strings.Repeat("lorem ipsum dolor sit amet ", 10)
	h.Add(NewUserText(long), NewAssistantText(long), NewUserText("short question"))

	// Older long messages trimmed to fit the budget, latest retained.
	messages := h.Messages()
	require.NotEmpty(t, messages)
	assert.Equal(t, "short question", messages[len(messages)-1].Text())
	assert.Less(t, len(messages), 3)
}

func TestHistory_TokenBudgetKeepsLastMessage(t *testing.T) {
	h, err := NewHistory(func(o *HistoryOptions) {
		o.TokenBudget = 1
	})
	require.NoError(t, err)

	h.Add(NewUserText(strings.Repeat("overflow ", 100)))

	// A single message always survives, even over budget.
	assert.Equal(t, 1, h.Len())
}

func TestHistory_Seed(t *testing.T) {
	h, err := NewHistory(func(o *HistoryOptions) {
		o.MaxMessages = 2
	})
	require.NoError(t, err)

	h.Add(NewUserText("old"))
	h.Seed([]Content{NewUserText("a"), NewAssistantText("b"), NewUserText("c")})

	messages := h.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "b", messages[0].Text())
	assert.Equal(t, "c", messages[1].Text())
}

func TestHistory_MessagesReturnsCopy(t *testing.T) {
	h, err := NewHistory()
	require.NoError(t, err)

	h.Add(NewUserText("original"))

	messages := h.Messages()
	messages[0] = NewUserText("mutated")

	assert.Equal(t, "original", h.Messages()[0].Text())
}

func TestHistory_Clear(t *testing.T) {
	h, err := NewHistory()
	require.NoError(t, err)

	h.Add(NewUserText("a"), NewAssistantText("b"))
	h.Clear()

	assert.Equal(t, 0, h.Len())
}
