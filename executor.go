package hermes

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/hermes-ai/hermes/chat"
	"github.com/hermes-ai/hermes/logging"
	"github.com/hermes-ai/hermes/tool"
)

// toolExecutor runs a batch of function calls issued by a single model turn,
// possibly in parallel, and returns one response part per call in the
// original order. It must:
//   - Respect context cancellation
//   - Never panic (recover internally and surface the failure as a tool error)
//   - Produce exactly one FunctionResponse per incoming FunctionCall
type toolExecutor struct {
	maxParallel int
	logger      logging.Logger
}

func newToolExecutor(maxParallel int, logger logging.Logger) *toolExecutor {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &toolExecutor{maxParallel: maxParallel, logger: logger}
}

// run executes all calls against the registry and returns ordered response parts.
func (e *toolExecutor) run(
	ctx context.Context,
	registry map[string]tool.Tool,
	calls []chat.FunctionCall,
) []chat.FunctionResponsePart {
	n := len(calls)
	if n == 0 {
		return nil
	}

	// Fast path: single call, execute inline.
	if n == 1 {
		return []chat.FunctionResponsePart{e.executeSingle(ctx, registry, calls[0])}
	}

	maxPar := e.maxParallel
	if maxPar <= 0 || maxPar > n {
		maxPar = n
	}

	results := make([]chat.FunctionResponsePart, n)
	sem := make(chan struct{}, maxPar)
	var wg sync.WaitGroup

	batchStart := time.Now()
	for i := range calls {
		if ctx.Err() != nil {
			results[i] = cancelledResponse(calls[i], ctx.Err())
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, fc chat.FunctionCall) {
			defer wg.Done()
			defer func() { <-sem }()
			results[idx] = e.executeSingle(ctx, registry, fc)
		}(i, calls[i])
	}
	wg.Wait()

	e.logger.Debug(
		"agent.functions.batch.complete",
		"count", n,
		"parallelism", maxPar,
		"duration_ms", time.Since(batchStart).Milliseconds(),
	)

	return results
}

func (e *toolExecutor) executeSingle(
	ctx context.Context,
	registry map[string]tool.Tool,
	fc chat.FunctionCall,
) chat.FunctionResponsePart {
	e.logger.Debug("agent.function.start", "function", fc.Name, "function_call_id", fc.ID)

	start := time.Now()
	var (
		result any
		err    error
	)
	func() { // panic safety
		defer func() {
			if r := recover(); r != nil {
				err = &panicErr{val: r, stack: debug.Stack()}
				e.logger.Error("agent.function.panic", "function", fc.Name, "recover", r)
			}
		}()
		result, err = executeTool(ctx, registry, fc.Name, fc.Arguments)
	}()

	e.logger.Info(
		"agent.function.executed",
		"function", fc.Name,
		"duration_ms", time.Since(start).Milliseconds(),
		"error", err != nil,
	)

	resp := chat.FunctionResponse{ID: fc.ID, Name: fc.Name}
	if err != nil {
		resp.Error = err.Error()
	} else {
		resp.Response = result
	}

	return chat.FunctionResponsePart{FunctionResponse: resp}
}

func cancelledResponse(fc chat.FunctionCall, err error) chat.FunctionResponsePart {
	return chat.FunctionResponsePart{FunctionResponse: chat.FunctionResponse{
		ID:    fc.ID,
		Name:  fc.Name,
		Error: err.Error(),
	}}
}

// executeTool centralizes tool lookup & argument decoding.
func executeTool(ctx context.Context, registry map[string]tool.Tool, toolName, args string) (any, error) {
	impl, ok := registry[toolName]
	if !ok {
		return nil, fmt.Errorf("tool %s not found", toolName)
	}

	var argMap map[string]any
	if args == "" {
		argMap = map[string]any{}
	} else if err := json.Unmarshal([]byte(args), &argMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal args: %w", err)
	}

	return impl.Call(ctx, argMap)
}

type panicErr struct {
	val   any
	stack []byte
}

func (p *panicErr) Error() string { return fmt.Sprintf("panic recovered: %v", p.val) }
