package llm

import (
	"context"
	"strings"
)

// Provider names understood by the Router.
const (
	ProviderXAI    = "xai"
	ProviderOpenAI = "openai"
)

// CredentialSource is one probe in the priority-ordered credential chain.
// Lookup returns "" when the source has nothing to offer.
type CredentialSource struct {
	Name     string
	Provider string
	Lookup   func(ctx context.Context) string

	// Local marks a key persisted on the caller's own machine.
	Local bool
}

// StaticSource wraps a value known at startup (an env var read by config.Load).
func StaticSource(name, provider, key string) CredentialSource {
	return CredentialSource{
		Name:     name,
		Provider: provider,
		Lookup:   func(context.Context) string { return key },
	}
}

// DefaultSources returns the server-side chain:
// XAI_API_KEY, OPENAI_API_KEY, NEXT_PUBLIC_OPENAI_API_KEY, then the per-request key.
func DefaultSources(xaiKey, openAIKey, publicOpenAIKey string) []CredentialSource {
	return []CredentialSource{
		StaticSource("XAI_API_KEY", ProviderXAI, xaiKey),
		StaticSource("OPENAI_API_KEY", ProviderOpenAI, openAIKey),
		StaticSource("NEXT_PUBLIC_OPENAI_API_KEY", ProviderOpenAI, publicOpenAIKey),
		RequestKeySource(),
	}
}

type requestKeyCtxKey struct{}

// WithRequestKey attaches a caller-supplied API key to ctx.
func WithRequestKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, requestKeyCtxKey{}, key)
}

// RequestKey returns the key stored by WithRequestKey, or "".
func RequestKey(ctx context.Context) string {
	key, _ := ctx.Value(requestKeyCtxKey{}).(string)
	return key
}

// RequestKeySource reads the key a caller attached to the request context.
func RequestKeySource() CredentialSource {
	return CredentialSource{Name: "request", Provider: ProviderOpenAI, Lookup: RequestKey}
}

// Resolve walks sources in order and returns the first non-blank key.
// Returns *CredentialError when no source yields one.
func Resolve(ctx context.Context, sources []CredentialSource) (Credential, error) {
	credErr := &CredentialError{}
	for _, src := range sources {
		credErr.LocalStore = credErr.LocalStore || src.Local
		if src.Lookup == nil {
			continue
		}
		if key := strings.TrimSpace(src.Lookup(ctx)); key != "" {
			return Credential{Provider: src.Provider, Key: key, Source: src.Name}, nil
		}
	}
	return Credential{}, credErr
}

// CredentialError reports that no API key could be found anywhere.
// It is the only model-side failure surfaced to callers.
type CredentialError struct {
	// LocalStore is set when the chain included a local key store, so the
	// message can point at the command that fills it.
	LocalStore bool
}

func (e *CredentialError) Error() string {
	local := "4. Store a key in your client's local storage"
	if e.LocalStore {
		local = "4. Store a key locally with 'arcana key set'"
	}
	return "no AI API key found. Please set one of the following:\n" +
		"1. OPENAI_API_KEY environment variable\n" +
		"2. NEXT_PUBLIC_OPENAI_API_KEY environment variable\n" +
		"3. Pass apiKey in the reading request\n" +
		local
}
