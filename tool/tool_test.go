package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hermes-ai/hermes/internal/util"
)

// -------------------- Schema & Validation Tests --------------------

type sampleSchema struct {
	A string `json:"a" description:"Field A"`
	B *int   `json:"b" description:"Optional pointer field"`
	C int    `json:"c,omitempty" description:"Omit empty field"`
}

func TestCreateSchema(t *testing.T) {
	schema := util.CreateSchema(sampleSchema{})
	props, ok := schema["properties"].(map[string]any)
	assert.True(t, ok)
	assert.Contains(t, props, "a")
	assert.Contains(t, props, "b")
	assert.Contains(t, props, "c")
	// Required only includes non-pointer, non-omitempty exported fields
	req, _ := schema["required"].([]string)
	assert.ElementsMatch(t, []string{"a"}, req)
}

func TestValidateParameters(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"x": map[string]any{"type": "integer"},
		},
		"required": []string{"x"},
	}

	// Success
	err := util.ValidateParameters(map[string]any{"x": 5}, schema)
	assert.NoError(t, err)

	// Missing required
	err = util.ValidateParameters(map[string]any{}, schema)
	assert.Error(t, err)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "x", vErr.Field)

	// Wrong type
	err = util.ValidateParameters(map[string]any{"x": "not-int"}, schema)
	assert.Error(t, err)
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Message, "expected type integer")

	// JSON-decoded schemas carry []any required lists
	schema["required"] = []any{"x"}
	err = util.ValidateParameters(map[string]any{}, schema)
	assert.Error(t, err)
}

// -------------------- FunctionTool Tests --------------------

func TestFunctionTool_Success(t *testing.T) {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
			"b": map[string]any{"type": "number"},
		},
		"required": []string{"a", "b"},
	}

	sumTool := NewFunctionTool("sum", "Add numbers", params, func(_ context.Context, args map[string]any) (any, error) {
		return args["a"].(float64) + args["b"].(float64), nil
	})

	result, err := sumTool.Call(context.Background(), map[string]any{"a": 2.0, "b": 3.0})
	assert.NoError(t, err)
	assert.Equal(t, 5.0, result)
}

func TestFunctionTool_ValidationError(t *testing.T) {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
		},
		"required": []string{"a"},
	}
	tTool := NewFunctionTool("test", "Test", params, func(_ context.Context, _ map[string]any) (any, error) {
		return 0, nil
	})

	_, err := tTool.Call(context.Background(), map[string]any{})
	assert.Error(t, err)
	toolErr, ok := err.(*ToolError)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
}

func TestFunctionTool_ExecutionError(t *testing.T) {
	failing := NewFunctionTool("fail", "Always fails", map[string]any{"type": "object"}, func(_ context.Context, _ map[string]any) (any, error) {
		return nil, errors.New("boom")
	})

	_, err := failing.Call(context.Background(), map[string]any{})
	toolErr, ok := err.(*ToolError)
	require.True(t, ok)
	assert.Equal(t, "EXECUTION_ERROR", toolErr.Code)
	assert.Equal(t, "boom", toolErr.Message)
}

func TestFunctionTool_CustomToolErrorForwarded(t *testing.T) {
	custom := NewFunctionTool("quota", "Quota limited", map[string]any{"type": "object"}, func(_ context.Context, _ map[string]any) (any, error) {
		return nil, NewToolError("quota", "limit exceeded", "QUOTA_ERROR")
	})

	_, err := custom.Call(context.Background(), map[string]any{})
	toolErr, ok := err.(*ToolError)
	require.True(t, ok)
	assert.Equal(t, "QUOTA_ERROR", toolErr.Code)
}

func TestNewFunctionToolFromStruct(t *testing.T) {
	type args struct {
		City string `json:"city" description:"City name"`
	}

	weather := NewFunctionToolFromStruct("get_weather", "Get weather", args{}, func(_ context.Context, a map[string]any) (any, error) {
		return "sunny in " + a["city"].(string), nil
	})

	props, ok := weather.Parameters()["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "city")

	result, err := weather.Call(context.Background(), map[string]any{"city": "Lisbon"})
	require.NoError(t, err)
	assert.Equal(t, "sunny in Lisbon", result)
}

// -------------------- AgentTool Tests --------------------

type fakeExecutor struct {
	name        string
	description string
	lastInput   string
	response    string
	err         error
}

func (f *fakeExecutor) Name() string        { return f.name }
func (f *fakeExecutor) Description() string { return f.description }

func (f *fakeExecutor) Execute(_ context.Context, input string) (string, error) {
	f.lastInput = input
	return f.response, f.err
}

func TestAgentTool_NameDerivation(t *testing.T) {
	at := NewAgentTool(&fakeExecutor{name: "Market Analyst"})
	assert.Equal(t, "consult_market_analyst", at.Name())

	at = NewAgentTool(&fakeExecutor{name: "  Según-Experto 2 "})
	assert.Equal(t, "consult_según_experto_2", at.Name())
}

func TestAgentTool_Call(t *testing.T) {
	exec := &fakeExecutor{name: "Analyst", description: "Knows things", response: "the answer"}
	at := NewAgentTool(exec)

	result, err := at.Call(context.Background(), map[string]any{"query": "what gives?"})
	require.NoError(t, err)
	assert.Equal(t, "the answer", result)
	assert.Equal(t, "what gives?", exec.lastInput)
}

func TestAgentTool_MissingQuery(t *testing.T) {
	at := NewAgentTool(&fakeExecutor{name: "Analyst"})

	_, err := at.Call(context.Background(), map[string]any{})
	toolErr, ok := err.(*ToolError)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
}

func TestAgentTool_ExecutorError(t *testing.T) {
	at := NewAgentTool(&fakeExecutor{name: "Analyst", err: errors.New("downstream failure")})

	_, err := at.Call(context.Background(), map[string]any{"query": "q"})
	toolErr, ok := err.(*ToolError)
	require.True(t, ok)
	assert.Equal(t, "EXECUTION_ERROR", toolErr.Code)
	assert.Contains(t, toolErr.Message, "downstream failure")
}

func TestToolError_Error(t *testing.T) {
	err := NewToolError("sum", "bad input", "VALIDATION_ERROR")
	assert.Equal(t, "tool error [VALIDATION_ERROR] in sum: bad input", err.Error())

	err = &ToolError{Tool: "sum", Message: "bad input"}
	assert.Equal(t, "tool error in sum: bad input", err.Error())
}
