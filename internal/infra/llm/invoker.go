package llm

import (
	"context"
	"fmt"
)

const (
	readingTemperature = 0.7
	readingMaxTokens   = 3000
)

// Invoker resolves a credential, routes it to a provider and performs one completion.
// There is no retry: one Generate is at most one model call.
type Invoker struct {
	router  *Router
	sources []CredentialSource
}

// NewInvoker creates an Invoker probing sources in the given order.
func NewInvoker(router *Router, sources ...CredentialSource) *Invoker {
	return &Invoker{router: router, sources: sources}
}

// WithSources returns a copy of the invoker with extra sources appended at the lowest priority.
func (i *Invoker) WithSources(extra ...CredentialSource) *Invoker {
	sources := make([]CredentialSource, 0, len(i.sources)+len(extra))
	sources = append(sources, i.sources...)
	sources = append(sources, extra...)
	return &Invoker{router: i.router, sources: sources}
}

// Generate sends prompt as a single user message.
// A missing credential is returned as *CredentialError; everything else is a wrapped transport error.
func (i *Invoker) Generate(ctx context.Context, prompt string) (*ChatResponse, error) {
	cred, err := Resolve(ctx, i.sources)
	if err != nil {
		return nil, err
	}
	provider, err := i.router.Route(ctx, cred)
	if err != nil {
		return nil, err
	}
	resp, err := provider.ChatCompletion(ctx, ChatRequest{
		Messages:    []Message{{Role: "user", Content: prompt}},
		Temperature: readingTemperature,
		MaxTokens:   readingMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generate via %s (%s): %w", cred.Provider, cred.Source, err)
	}
	if resp.Model == "" {
		resp.Model = provider.ModelInfo().ID
	}
	return resp, nil
}
