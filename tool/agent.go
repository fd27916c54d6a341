package tool

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

// Executor is the minimal surface an agent must expose to be consulted as a
// tool. Defined here (rather than importing the agent type) so the package
// stays free of dependency cycles.
type Executor interface {
	Name() string
	Description() string
	Execute(ctx context.Context, input string) (string, error)
}

// AgentTool exposes a nested agent as a callable tool named
// consult_<snake_cased_agent_name>. The model passes a single query string;
// the sub-agent's final text response is returned as the tool result.
type AgentTool struct {
	executor Executor
	name     string
}

// NewAgentTool wraps an agent (or any Executor) as a tool.
func NewAgentTool(executor Executor) *AgentTool {
	return &AgentTool{
		executor: executor,
		name:     "consult_" + snakeCase(executor.Name()),
	}
}

// Name returns the derived consult_<agent> tool name.
func (t *AgentTool) Name() string { return t.name }

// Description explains the specialist to the calling model.
func (t *AgentTool) Description() string {
	return fmt.Sprintf(
		"Consult the specialized agent '%s'. Agent description: %s. "+
			"Pass the question or task to be processed by this specialist.",
		t.executor.Name(), t.executor.Description(),
	)
}

// Parameters declares the single query argument.
func (t *AgentTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The question or task to be processed by the agent",
			},
		},
		"required": []string{"query"},
	}
}

// Call delegates the query to the wrapped agent and returns its response text.
func (t *AgentTool) Call(ctx context.Context, args map[string]any) (any, error) {
	raw, ok := args["query"]
	if !ok {
		return nil, NewToolError(t.name, "missing required field 'query'", "VALIDATION_ERROR")
	}
	query, ok := raw.(string)
	if !ok || query == "" {
		return nil, NewToolError(t.name, "field 'query' must be a non-empty string", "VALIDATION_ERROR")
	}

	response, err := t.executor.Execute(ctx, query)
	if err != nil {
		return nil, &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("consulting %s failed: %v", t.executor.Name(), err),
			Code:    "EXECUTION_ERROR",
		}
	}

	return response, nil
}

// snakeCase lowers a display name ("Market Analyst" -> "market_analyst").
func snakeCase(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.TrimSpace(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
