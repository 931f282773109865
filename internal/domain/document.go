package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StorageTier identifies which store holds a document
type StorageTier string

const (
	TierVector   StorageTier = "vector"
	TierFallback StorageTier = "fallback"
)

// DocumentMetadata describes the uploaded file a document came from
type DocumentMetadata struct {
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	IngestedAt  time.Time `json:"ingested_at"`
}

// Document is the extracted text of one uploaded file. Content is always
// non-empty: an upload whose extraction yields nothing is rejected before a
// Document exists. A document is written to exactly one storage tier and is
// never updated or deleted afterwards.
type Document struct {
	ID        string           `json:"id"`
	SessionID string           `json:"session_id"`
	Content   string           `json:"content"`
	Metadata  DocumentMetadata `json:"metadata"`
}

// NewDocumentID derives a per-upload unique id. The random component keeps
// two same-instant uploads for one session from colliding; the session
// prefix keeps ids greppable per tenant.
func NewDocumentID(sessionID, filename string, now time.Time) string {
	return fmt.Sprintf("%s_%d_%s_%s",
		sessionID, now.UnixNano(), uuid.NewString()[:8], sanitizeFilename(filename))
}

func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}
