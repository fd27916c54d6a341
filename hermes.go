// Package hermes provides a compact agent orchestration layer over LLM
// provider SDKs. An Agent pairs an identity (name, description, system
// prompt) with a provider/model selection, a tool set and a bounded chat
// history. Tools may be plain functions or other Agents, enabling multi-agent
// delegation with a single line of wiring. Most applications:
//  1. Create one or more Agents via New() (provider, model, prompt, tools)
//  2. Optionally wrap specialist Agents as tools of a coordinator Agent
//  3. Call Execute to run the tool-calling loop and obtain the response text
//
// All defaults are safe for local development: keys are discovered from the
// environment, history is bounded, and logging is silent unless a logger is
// supplied.
package hermes

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hermes-ai/hermes/chat"
	"github.com/hermes-ai/hermes/logging"
	"github.com/hermes-ai/hermes/model"
	"github.com/hermes-ai/hermes/prompt"
	"github.com/hermes-ai/hermes/provider"
	"github.com/hermes-ai/hermes/tool"
)

// ErrMaxToolIterations signals that the model kept requesting tools past the
// configured iteration cap. The last assistant text (possibly empty) is still
// returned alongside this error.
var ErrMaxToolIterations = errors.New("maximum tool iterations reached")

// Options configures an Agent instance.
type Options struct {
	// Provider selects the LLM vendor ("openai", "azure", "anthropic",
	// "google"/"gemini"). Ignored when LLM is set.
	Provider string

	// Model is the provider-specific model identifier (e.g. "gpt-4o-mini").
	Model string

	// APIKey optionally holds one or more comma-separated API keys. When
	// several keys are given a random one is selected before each execution.
	// Empty means discovery from conventional environment variables.
	APIKey string

	// Name identifies the agent; it appears in the system prompt and in the
	// consult_<name> tool when the agent is nested under another agent.
	Name string

	// Description is a short statement of the agent's purpose, shown both in
	// its own system prompt and to parent agents deciding whether to consult it.
	Description string

	// Prompt holds the behavior guidelines (static text or dynamic provider).
	Prompt Instruction

	// Tools the agent may call during execution. Use NewAgentTool to expose
	// another agent here.
	Tools []tool.Tool

	// Temperature controls response randomness, clamped to [0, 1].
	Temperature float64

	// MaxChatHistoryLength caps the retained conversation messages.
	MaxChatHistoryLength int

	// HistoryTokenBudget optionally caps the history's token footprint
	// (0 disables token-based trimming).
	HistoryTokenBudget int

	// MaxToolIterations caps model→tool round trips per execution.
	MaxToolIterations int

	// MaxParallelTools caps concurrent tool calls within one model turn.
	// 0 means one goroutine per call.
	MaxParallelTools int

	// DisableKeywordExtraction turns off input augmentation with extracted
	// keywords.
	DisableKeywordExtraction bool

	// Logger receives structured execution logs (defaults to NoOp).
	Logger logging.Logger

	// LLM overrides provider/model resolution with a concrete model client.
	// Primarily useful for testing and custom providers.
	LLM model.Model
}

// Agent is a configured wrapper around an LLM call loop with an identity,
// prompt and tool set.
//
// Execute calls on the same Agent are serialized so the shared history stays
// consistent; distinct Agents execute independently. An Agent must not be
// registered (directly or transitively) as one of its own tools.
type Agent struct {
	name        string
	description string
	instruction Instruction
	temperature float64

	providerName  string
	modelName     string
	keys          *provider.KeyRing
	llm           model.Model
	providerBuilt bool // llm came from provider.New, eligible for key rotation

	tools    []tool.Tool          // roster order
	registry map[string]tool.Tool // lookup by name

	history   *chat.History
	extractor *prompt.KeywordExtractor
	executor  *toolExecutor
	logger    logging.Logger

	maxToolIterations int

	mu sync.Mutex // serializes Execute
}

// New constructs an Agent. Provider and Model are required unless a concrete
// LLM override is supplied.
func New(optFns ...func(o *Options)) (*Agent, error) {
	opts := Options{
		Temperature:          0.7,
		MaxChatHistoryLength: chat.DefaultMaxMessages,
		MaxToolIterations:    10,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.LLM == nil && (opts.Provider == "" || opts.Model == "") {
		return nil, fmt.Errorf("provider and model are required")
	}
	if opts.Name == "" {
		return nil, fmt.Errorf("agent name is required")
	}

	// Clamp temperature into the supported range rather than erroring;
	// callers routinely pass provider-specific values like 1.2.
	if opts.Temperature < 0 {
		opts.Temperature = 0
	}
	if opts.Temperature > 1 {
		opts.Temperature = 1
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	history, err := chat.NewHistory(func(o *chat.HistoryOptions) {
		o.MaxMessages = opts.MaxChatHistoryLength
		o.TokenBudget = opts.HistoryTokenBudget
		o.Model = opts.Model
	})
	if err != nil {
		return nil, err
	}

	a := &Agent{
		name:              opts.Name,
		description:       opts.Description,
		instruction:       opts.Prompt,
		temperature:       opts.Temperature,
		providerName:      opts.Provider,
		modelName:         opts.Model,
		keys:              provider.NewKeyRing(opts.Provider, opts.APIKey),
		llm:               opts.LLM,
		history:           history,
		executor:          newToolExecutor(opts.MaxParallelTools, logger),
		logger:            logger,
		maxToolIterations: opts.MaxToolIterations,
		registry:          make(map[string]tool.Tool, len(opts.Tools)),
	}

	for _, t := range opts.Tools {
		if _, exists := a.registry[t.Name()]; exists {
			return nil, fmt.Errorf("duplicate tool name: %s", t.Name())
		}
		a.tools = append(a.tools, t)
		a.registry[t.Name()] = t
	}

	if !opts.DisableKeywordExtraction {
		a.extractor = prompt.NewKeywordExtractor()
	}

	if a.llm == nil {
		llm, err := provider.New(a.providerName, a.modelName, a.keys.Pick(), a.temperature)
		if err != nil {
			return nil, err
		}
		a.llm = llm
		a.providerBuilt = true
	}

	return a, nil
}

// NewAgentTool exposes an agent as a consult_<name> tool for use by another agent.
func NewAgentTool(a *Agent) tool.Tool { return tool.NewAgentTool(a) }

// Name returns the agent's name.
func (a *Agent) Name() string { return a.name }

// Description returns the agent's purpose statement.
func (a *Agent) Description() string { return a.description }

// Tools returns the agent's registered tools in roster order.
func (a *Agent) Tools() []tool.Tool {
	out := make([]tool.Tool, len(a.tools))
	copy(out, a.tools)
	return out
}

// History exposes the agent's bounded conversation history.
func (a *Agent) History() *chat.History { return a.history }

// Execute runs one conversational turn: the input is augmented with extracted
// keywords, sent to the model together with the system prompt, history and
// tool definitions, and the tool-calling loop runs until the model produces a
// final text answer. Input and answer are appended to the history.
func (a *Agent) Execute(ctx context.Context, input string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	runID := uuid.NewString()

	a.logger.Debug("agent.execute.start", "agent", a.name, "run", runID)

	// Rotate to a fresh random key when several are configured. Rotation only
	// applies to provider-built clients; an explicit LLM override stays put.
	if a.providerBuilt && a.keys.Len() > 1 {
		key := a.keys.Pick()
		a.logger.Debug("agent.key.rotate", "agent", a.name, "key", provider.Masked(key))

		llm, err := provider.New(a.providerName, a.modelName, key, a.temperature)
		if err != nil {
			return "", fmt.Errorf("failed to rotate api key: %w", err)
		}
		a.llm = llm
	}

	instructions, err := a.systemPrompt(ctx)
	if err != nil {
		return "", err
	}

	enhanced := input
	if a.extractor != nil {
		if keywords := a.extractor.Extract(input); len(keywords) > 0 {
			a.logger.Debug("agent.input.keywords", "agent", a.name, "keywords", keywords)
			enhanced = prompt.EnhanceInput(input, keywords)
		}
	}

	contents := append(a.history.Messages(), chat.NewUserText(enhanced))

	var finalText string
	for iteration := 0; iteration < a.maxToolIterations; iteration++ {
		resp, err := a.generate(ctx, model.Request{
			Instructions: instructions,
			Contents:     contents,
			Tools:        a.toolDefinitions(),
		})
		if err != nil {
			return "", fmt.Errorf("agent %s execution failed: %w", a.name, err)
		}

		calls := resp.Content.FunctionCalls()
		if len(calls) == 0 {
			finalText = resp.Content.Text()

			a.history.Add(chat.NewUserText(input), chat.NewAssistantText(finalText))
			a.logger.Info(
				"agent.execute.complete",
				"agent", a.name,
				"run", runID,
				"iterations", iteration+1,
			)

			return finalText, nil
		}

		// Providers may omit call IDs; assign them so responses correlate.
		for i := range calls {
			if calls[i].ID == "" {
				calls[i].ID = uuid.NewString()
			}
		}

		assistantParts := make([]chat.Part, 0, len(calls)+1)
		if text := resp.Content.Text(); text != "" {
			assistantParts = append(assistantParts, chat.TextPart{Text: text})
		}
		for _, fc := range calls {
			assistantParts = append(assistantParts, chat.FunctionCallPart{FunctionCall: fc})
		}
		contents = append(contents, chat.Content{Role: "assistant", Parts: assistantParts})

		responseParts := a.executor.run(ctx, a.registry, calls)
		toolParts := make([]chat.Part, len(responseParts))
		for i, rp := range responseParts {
			toolParts[i] = rp
		}
		contents = append(contents, chat.Content{Role: "tool", Parts: toolParts})

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}

	a.logger.Warn("agent.execute.max_iterations", "agent", a.name, "run", runID)

	return finalText, ErrMaxToolIterations
}

// systemPrompt resolves the instruction source and renders the full system prompt.
func (a *Agent) systemPrompt(ctx context.Context) (string, error) {
	instructions, err := a.instruction.Resolve(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to resolve instructions: %w", err)
	}

	infos := make([]prompt.ToolInfo, len(a.tools))
	for i, t := range a.tools {
		infos[i] = prompt.ToolInfo{Name: t.Name(), Description: t.Description()}
	}

	return prompt.BuildSystemPrompt(a.name, a.description, instructions, infos, time.Now())
}

// toolDefinitions converts registered tools into the wire format models expect.
func (a *Agent) toolDefinitions() []model.ToolDefinition {
	if len(a.tools) == 0 {
		return nil
	}
	defs := make([]model.ToolDefinition, len(a.tools))
	for i, t := range a.tools {
		defs[i] = model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		}
	}
	return defs
}

// generate drains the model's channels and returns the final (non-partial)
// response, honoring context cancellation.
func (a *Agent) generate(ctx context.Context, req model.Request) (model.Response, error) {
	start := time.Now()

	respCh, errCh := a.llm.Generate(ctx, req)

	var final model.Response
	var sawFinal bool
	for respCh != nil || errCh != nil {
		select {
		case <-ctx.Done():
			return model.Response{}, ctx.Err()
		case resp, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			if !resp.Partial {
				final = resp
				sawFinal = true
			}
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return model.Response{}, err
			}
		}
	}

	if !sawFinal {
		return model.Response{}, fmt.Errorf("model returned no final response")
	}

	info := a.llm.Info()
	tokens := 0
	if final.Usage != nil {
		tokens = final.Usage.TotalTokens
	}
	a.logger.Debug(
		"agent.model.call",
		"agent", a.name,
		"model", info.Name,
		"provider", info.Provider,
		"tokens", tokens,
		"duration_ms", time.Since(start).Milliseconds(),
		"finish_reason", final.FinishReason,
	)

	return final, nil
}
