package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hermes-ai/hermes/chat"
)

func collect(t *testing.T, respCh <-chan Response, errCh <-chan error) []Response {
	t.Helper()

	var responses []Response
	for resp := range respCh {
		responses = append(responses, resp)
	}
	require.NoError(t, <-errCh)

	return responses
}

func TestMockModel_CannedResponse(t *testing.T) {
	m := NewMockModel("mock-1", "mock")
	m.AddResponse("hello", "hi there")

	respCh, errCh := m.Generate(context.Background(), Request{
		Contents: []chat.Content{chat.NewUserText("hello")},
	})

	responses := collect(t, respCh, errCh)
	require.Len(t, responses, 1)
	assert.Equal(t, "hi there", responses[0].Content.Text())
	assert.Equal(t, "stop", responses[0].FinishReason)
}

func TestMockModel_DefaultResponse(t *testing.T) {
	m := NewMockModel("mock-1", "mock")

	respCh, errCh := m.Generate(context.Background(), Request{
		Contents: []chat.Content{chat.NewUserText("anything")},
	})

	responses := collect(t, respCh, errCh)
	require.Len(t, responses, 1)
	assert.Equal(t, "Mock response to: anything", responses[0].Content.Text())
}

func TestMockModel_Streaming(t *testing.T) {
	m := NewMockModel("mock-1", "mock")
	m.AddResponse("stream it", "abc")

	respCh, errCh := m.Generate(context.Background(), Request{
		Contents: []chat.Content{chat.NewUserText("stream it")},
		Stream:   true,
	})

	responses := collect(t, respCh, errCh)
	require.Len(t, responses, 4) // 3 partial chunks + final

	var streamed string
	for _, resp := range responses[:3] {
		assert.True(t, resp.Partial)
		streamed += resp.Content.Text()
	}
	assert.Equal(t, "abc", streamed)

	final := responses[3]
	assert.False(t, final.Partial)
	assert.Equal(t, "abc", final.Content.Text())
}

func TestMockModel_ScriptedFunctionCalls(t *testing.T) {
	m := NewMockModel("mock-1", "mock")
	m.AddFunctionCalls("what is 2+3?", chat.FunctionCall{
		ID:        "call-1",
		Name:      "calculate_sum",
		Arguments: `{"a":2,"b":3}`,
	})
	m.AddResponse("what is 2+3?", "The sum is 5.")

	// First turn: no tool response yet, so the scripted call fires.
	respCh, errCh := m.Generate(context.Background(), Request{
		Contents: []chat.Content{chat.NewUserText("what is 2+3?")},
	})

	responses := collect(t, respCh, errCh)
	require.Len(t, responses, 1)
	assert.Equal(t, "tool_calls", responses[0].FinishReason)

	calls := responses[0].Content.FunctionCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "calculate_sum", calls[0].Name)

	// Follow-up turn carries the tool response, so the canned text answers.
	respCh, errCh = m.Generate(context.Background(), Request{
		Contents: []chat.Content{
			chat.NewUserText("what is 2+3?"),
			responses[0].Content,
			{
				Role: "tool",
				Parts: []chat.Part{chat.FunctionResponsePart{
					FunctionResponse: chat.FunctionResponse{ID: "call-1", Name: "calculate_sum", Response: 5.0},
				}},
			},
		},
	})

	responses = collect(t, respCh, errCh)
	require.Len(t, responses, 1)
	assert.Equal(t, "The sum is 5.", responses[0].Content.Text())
}

func TestMockModel_NoContents(t *testing.T) {
	m := NewMockModel("mock-1", "mock")

	respCh, errCh := m.Generate(context.Background(), Request{})
	for range respCh {
	}

	require.Error(t, <-errCh)
}

func TestMockModel_Info(t *testing.T) {
	m := NewMockModel("mock-1", "mock")

	info := m.Info()
	assert.Equal(t, "mock-1", info.Name)
	assert.Equal(t, "mock", info.Provider)
	assert.True(t, info.SupportsTools)
}
