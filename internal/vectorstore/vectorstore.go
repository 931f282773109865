package vectorstore

import (
	"context"

	"docchat/internal/domain"
)

const (
	// DefaultTopK is how many documents ground a chat turn
	DefaultTopK = 3

	// MaxStoredContentBytes caps the content kept retrievable in a vector
	// record's payload. Content beyond this is not retrievable verbatim.
	MaxStoredContentBytes = 40000
)

// Match is one search hit: a stored document with its similarity score.
// Content is the truncated payload copy, not necessarily the full text.
type Match struct {
	DocumentID string
	SessionID  string
	Content    string
	Metadata   domain.DocumentMetadata
	Score      float64
}

// Health reports the remote index's availability and statistics
type Health struct {
	Available   bool
	VectorCount int64
	Dimension   int
	Detail      string
}

// Store wraps a remote vector index. Implementations are best-effort: any
// returned error is a signal to fall back, never a reason to crash, and
// every call re-attempts initialization if an earlier one failed.
//
// Every query is scoped to a session id by an exact-match payload filter.
// That filter is the sole tenancy-isolation mechanism: without it, search
// would leak documents across sessions.
type Store interface {
	Health(ctx context.Context) Health
	StoreDocument(ctx context.Context, doc *domain.Document) error
	SearchDocuments(ctx context.Context, sessionID, query string, topK int) ([]Match, error)
	SessionDocuments(ctx context.Context, sessionID string) ([]Match, error)
}
