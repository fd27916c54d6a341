package hermes

import "context"

// InstructionProvider supplies dynamic instruction text at runtime.
// Implementations can derive instructions from the environment, a feature
// flag service, the time of day, etc.
type InstructionProvider interface {
	Instruction(ctx context.Context) (string, error)
}

// InstructionFunc is a functional adapter to allow ordinary functions to be
// used as InstructionProviders.
type InstructionFunc func(ctx context.Context) (string, error)

// Instruction implements InstructionProvider.
func (f InstructionFunc) Instruction(ctx context.Context) (string, error) { return f(ctx) }

// Instruction represents either a static instruction string or a dynamic
// provider. This mirrors a union of string | provider in a Go-idiomatic way.
type Instruction struct {
	text     string
	provider InstructionProvider
}

// NewInstructionFromText creates an Instruction from a static string.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromProvider creates an Instruction from a dynamic provider.
func NewInstructionFromProvider(p InstructionProvider) Instruction { return Instruction{provider: p} }

// NewInstructionFromFunc creates an Instruction from a function.
func NewInstructionFromFunc(f func(ctx context.Context) (string, error)) Instruction {
	return Instruction{provider: InstructionFunc(f)}
}

// IsStatic returns true if the instruction is backed by a static string.
func (i Instruction) IsStatic() bool { return i.provider == nil }

// Resolve returns the instruction text, invoking the provider if needed.
func (i Instruction) Resolve(ctx context.Context) (string, error) {
	if i.provider != nil {
		return i.provider.Instruction(ctx)
	}
	return i.text, nil
}
