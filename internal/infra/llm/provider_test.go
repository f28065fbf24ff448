// Compile-time interface satisfaction check.
// Ensures *OpenAICompatProvider satisfies LLMProvider without running any HTTP calls.
package llm

import "testing"

func TestOpenAICompatProvider_ImplementsLLMProvider(t *testing.T) {
	t.Parallel()

	var _ LLMProvider = &OpenAICompatProvider{}
}
