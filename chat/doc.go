// Package chat defines the role-based content model shared by agents and
// model adapters, plus a bounded conversation history.
//
// Content pairs a conversational role (system, user, assistant, tool) with an
// ordered list of heterogeneous parts. The part union is intentionally small:
// plain text, function call requests and function call responses. History
// keeps the most recent messages within a configurable message count and an
// optional token budget so long conversations never outgrow a model's
// context window.
package chat
