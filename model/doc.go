// Package model defines the provider-agnostic abstractions for driving
// language models inside hermes.
//
// Core goals:
//   - Unify streaming + non-streaming generation behind a single interface
//   - Normalize tool / function call representation (ToolDefinition)
//   - Keep request/response shapes minimal and transport independent
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (OpenAI, Azure OpenAI, Anthropic, Gemini) implement the Model
// interface from this package so the agent loop remains decoupled from
// vendor SDKs.
package model
