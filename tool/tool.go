// Package tool implements the function calling subsystem that lets agents
// invoke structured capabilities (APIs, computations, side-effects) with
// schema validated arguments and consistent error handling. Nested agents are
// exposed through the same interface via AgentTool, so delegation to a
// specialist agent looks like any other function call to the model.
package tool

import (
	"context"
	"fmt"

	"github.com/hermes-ai/hermes/internal/util"
)

// Tool defines the interface for extending agent capabilities with external functions.
//
// Tools are registered with agents to enable function calling, allowing
// agents to perform actions beyond text generation such as API calls,
// calculations, database queries, or consulting other agents.
//
// Tool implementations should:
//   - Provide clear, descriptive names and descriptions
//   - Define proper JSON schema for parameters
//   - Handle errors gracefully
//   - Be safe for concurrent use
type Tool interface {
	// Name returns the unique identifier for this tool.
	// Names should follow function naming conventions (snake_case recommended).
	Name() string

	// Description returns a human-readable description of what this tool does.
	// This description is provided to the LLM to help it decide when to use the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected input format.
	// The schema is used for argument validation and LLM function calling.
	Parameters() map[string]any

	// Call executes the tool with structured arguments. The context carries
	// cancellation from the owning agent execution; implementations should
	// respect it for long-running work.
	Call(ctx context.Context, args map[string]any) (any, error)
}

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}
