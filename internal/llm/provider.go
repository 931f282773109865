package llm

import "context"

// Embedder turns text into an embedding vector. Errors propagate to the
// caller unchanged; the caller owns the fallback decision.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Provider defines the interface for the generative model service
type Provider interface {
	Embedder

	// Name returns the provider identifier
	Name() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// GenerateText generates a text completion for a prompt
	GenerateText(ctx context.Context, prompt string) (string, error)

	// GenerateFromFile generates text from an instruction plus inline file
	// data, used to extract text from opaque binary formats
	GenerateFromFile(ctx context.Context, mimeType string, data []byte, instruction string) (string, error)
}
