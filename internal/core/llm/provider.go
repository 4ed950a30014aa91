package llm

import "context"

// ProviderName identifies an LLM provider.
type ProviderName string

// Provider name constants.
const (
	ProviderLocal ProviderName = "local"
	ProviderCloud ProviderName = "cloud"
	ProviderMock  ProviderName = "mock"
)

// Provider is a text-generation backend. Implementations return the raw
// model output already passed through Clean; validation happens upstream.
type Provider interface {
	// Name returns the provider identifier.
	Name() ProviderName

	// IsAvailable returns true if the provider is configured and reachable
	// enough to try. It is a cheap check, not a guarantee.
	IsAvailable() bool

	// Generate produces one candidate message for the given prompt.
	Generate(ctx context.Context, prompt string) (string, error)
}
