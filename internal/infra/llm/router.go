// Package llm: provider router.
// Router turns a resolved Credential into a ready LLMProvider. Each backend
// registers a ProviderFactory under its provider name.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"sort"
)

// ProviderFactory builds a provider bound to one credential.
type ProviderFactory func(cred Credential) (LLMProvider, error)

// Router selects a LLMProvider for each request based on the credential's provider.
type Router struct {
	factories map[string]ProviderFactory
}

// NewRouter creates a Router with an initial set of factories.
func NewRouter(factories map[string]ProviderFactory) *Router {
	fs := make(map[string]ProviderFactory, len(factories))
	for k, v := range factories {
		fs[k] = v
	}
	return &Router{factories: fs}
}

// Register adds (or replaces) a factory under the given provider name.
func (r *Router) Register(provider string, f ProviderFactory) {
	r.factories[provider] = f
}

// Route returns a provider for cred.
// Returns an error if no factory is registered for cred.Provider.
func (r *Router) Route(_ context.Context, cred Credential) (LLMProvider, error) {
	f, ok := r.factories[cred.Provider]
	if !ok {
		return nil, fmt.Errorf("llm router: provider %q not registered (available: %v)", cred.Provider, r.keys())
	}
	return f(cred)
}

// keys returns the registered provider names (for error messages).
func (r *Router) keys() []string {
	out := make([]string, 0, len(r.factories))
	for k := range r.factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// OpenAICompatFactory returns a factory that binds an OpenAICompatProvider to each credential.
func OpenAICompatFactory(httpClient *http.Client, provider, baseURL, model string) ProviderFactory {
	return func(cred Credential) (LLMProvider, error) {
		if baseURL == "" {
			return nil, fmt.Errorf("llm router: no base URL configured for %q", provider)
		}
		return NewOpenAICompatProvider(httpClient, provider, baseURL, cred.Key, model), nil
	}
}
