package prompt

import (
	"fmt"
	"strings"
	"time"

	"github.com/hermes-ai/hermes/internal/util"
)

// ToolInfo carries the name/description pair listed in the tool roster of a
// system prompt.
type ToolInfo struct {
	Name        string
	Description string
}

// Indent normalizes a block of text so every line carries exactly the given
// indentation. Leading whitespace on each line is stripped first, which lets
// templates be written with natural Go source indentation.
func Indent(text string, spaces int) string {
	pad := strings.Repeat(" ", spaces)
	lines := strings.Split(text, "\n")
	formatted := make([]string, len(lines))
	for i, line := range lines {
		formatted[i] = pad + strings.TrimLeft(line, " \t")
	}
	return strings.Join(formatted, "\n")
}

// IndentPreservingEmpty behaves like Indent but leaves empty lines empty
// instead of padding them.
func IndentPreservingEmpty(text string, spaces int) string {
	pad := strings.Repeat(" ", spaces)
	lines := strings.Split(text, "\n")
	formatted := make([]string, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			formatted[i] = ""
			continue
		}
		formatted[i] = pad + strings.TrimLeft(line, " \t")
	}
	return strings.Join(formatted, "\n")
}

// systemPromptTemplate structures the agent's identity, behavior guidelines
// and reasoning guidance. Rendered through text/template.
const systemPromptTemplate = `# Identity (Agent Profile):
Your name is: '{{.Name}}'
Your description is: '{{.Description}}'

# Instructions (Behavior Guidelines):
{{.Instructions}}

# Thinking Process (Chain of Thought):
1. First, analyze the user's query carefully to understand the intent and context
2. Break down complex problems into smaller, manageable steps
3. Consider available tools and resources that could help solve this problem
4. Evaluate different approaches before selecting the best one
5. Explain your reasoning step by step when appropriate
6. Verify your solution makes sense before providing the final answer

# Response Structure (How to Reply):
- For complex queries: Show your thinking process before giving the final answer
- For simple queries: Provide a direct response with optional brief explanation
- Always maintain a helpful and professional tone

# Current date and time (for context):
{{.Now}}`

// BuildSystemPrompt renders the full system prompt for an agent: identity,
// instructions, reasoning and response guidance, the current timestamp and a
// numbered roster of available tools.
func BuildSystemPrompt(name, description, instructions string, tools []ToolInfo, now time.Time) (string, error) {
	rendered, err := util.RenderTemplate(systemPromptTemplate, map[string]any{
		"Name":         name,
		"Description":  description,
		"Instructions": instructions,
		"Now":          now.Format("02/01/2006 15:04:05"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render system prompt: %w", err)
	}

	if len(tools) == 0 {
		return rendered, nil
	}

	var b strings.Builder
	b.WriteString(rendered)
	b.WriteString("\n\n# Available tools (to assist you):\n")
	for i, t := range tools {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, t.Name, t.Description)
	}

	return b.String(), nil
}

// EnhanceInput wraps the raw user input with an extracted-keywords section so
// the model can focus on the salient terms. With no keywords the input is
// returned unchanged.
func EnhanceInput(input string, keywords []string) string {
	if len(keywords) == 0 {
		return input
	}

	return fmt.Sprintf(
		"# User Input (to be processed):\n%s\n\n# Extracted Keywords For User Input (to focus on):\n%s",
		input, strings.Join(keywords, ", "),
	)
}
