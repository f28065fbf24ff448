// Package llm defines the model-agnostic LLM provider abstraction.
// All types here are shared between the provider interface and adapters.
package llm

// Message represents a single turn in a conversation (role + content).
type Message struct {
	Role    string // "system" | "user" | "assistant"
	Content string
}

// ChatRequest is the input for a non-streaming chat completion.
type ChatRequest struct {
	// Model overrides the provider default when non-empty.
	Model       string
	Messages    []Message
	Temperature float32
	MaxTokens   int
}

// ChatResponse is the output from a non-streaming chat completion.
type ChatResponse struct {
	Content    string // The assistant message text.
	StopReason string // "stop" | "length" | ...
	Tokens     int    // Total tokens consumed (prompt + completion).
	Model      string // Model that produced the answer, as reported by the backend.
}

// ModelMeta describes the model / provider identity.
type ModelMeta struct {
	ID       string // e.g. "grok-beta", "gpt-4o"
	Provider string // e.g. "xai", "openai"
}

// Credential is a resolved API key together with the backend it unlocks.
type Credential struct {
	Provider string
	Key      string
	Source   string // name of the CredentialSource that produced it
}
