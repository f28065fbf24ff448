// Package llm: LLMProvider interface.
// Adapters (xAI, OpenAI, ...) implement this interface so the reading pipeline
// is never coupled to a specific LLM vendor.
package llm

import "context"

// LLMProvider is the model-agnostic interface for text generation.
type LLMProvider interface {
	// ChatCompletion performs a non-streaming chat completion.
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// ModelInfo returns static metadata about the provider/model.
	ModelInfo() ModelMeta

	// HealthCheck returns nil if the provider is reachable and accepts the credential.
	HealthCheck(ctx context.Context) error
}
