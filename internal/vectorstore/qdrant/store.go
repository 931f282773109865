package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"docchat/internal/config"
	"docchat/internal/domain"
	"docchat/internal/llm"
	"docchat/internal/vectorstore"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// session listings page through at most this many points
const listLimit = 100

// pointNamespace maps document ids onto the UUID point ids Qdrant requires
var pointNamespace = uuid.MustParse("95f61dd1-6d35-4a74-9f22-00f6b46b46c5")

// Store is a REST client to Qdrant backing the vector tier. The collection
// is resolved lazily on first use and re-attempted after failures, so an
// unreachable index at startup does not poison later calls.
type Store struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	embedder   llm.Embedder
	client     *http.Client

	mu    sync.Mutex
	ready bool
}

var _ vectorstore.Store = (*Store)(nil)

func NewStore(cfg config.QdrantConfig, embedder llm.Embedder) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		dimension:  cfg.Dimension,
		embedder:   embedder,
		client:     &http.Client{Timeout: timeout},
	}
}

// ensureReady creates the collection if missing. Idempotent; safe to call
// before every operation.
func (s *Store) ensureReady(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     s.dimension,
			"distance": "Cosine",
		},
	}
	if err := s.doJSON(ctx, http.MethodPut, fmt.Sprintf("%s/collections/%s", s.url, s.collection), body, nil); err != nil {
		return &domain.StoreError{Op: "initialize", Err: err}
	}

	s.ready = true
	return nil
}

func (s *Store) Health(ctx context.Context) vectorstore.Health {
	if err := s.ensureReady(ctx); err != nil {
		return vectorstore.Health{Available: false, Detail: err.Error()}
	}

	var resp struct {
		Result struct {
			PointsCount int64 `json:"points_count"`
			Config      struct {
				Params struct {
					Vectors struct {
						Size int `json:"size"`
					} `json:"vectors"`
				} `json:"params"`
			} `json:"config"`
		} `json:"result"`
	}
	if err := s.doJSON(ctx, http.MethodGet, fmt.Sprintf("%s/collections/%s", s.url, s.collection), nil, &resp); err != nil {
		return vectorstore.Health{Available: false, Detail: err.Error()}
	}

	return vectorstore.Health{
		Available:   true,
		VectorCount: resp.Result.PointsCount,
		Dimension:   resp.Result.Config.Params.Vectors.Size,
	}
}

func (s *Store) StoreDocument(ctx context.Context, doc *domain.Document) error {
	if err := s.ensureReady(ctx); err != nil {
		return err
	}

	vector, err := s.embedder.Embed(ctx, doc.Content)
	if err != nil {
		return &domain.StoreError{Op: "embed", Err: err}
	}

	point := map[string]any{
		"id":     pointID(doc.ID),
		"vector": vector,
		"payload": map[string]any{
			"document_id":  doc.ID,
			"session_id":   doc.SessionID,
			"content":      truncate(doc.Content, vectorstore.MaxStoredContentBytes),
			"filename":     doc.Metadata.Filename,
			"content_type": doc.Metadata.ContentType,
			"size_bytes":   doc.Metadata.SizeBytes,
			"ingested_at":  time.Now().UTC().Format(time.RFC3339Nano),
		},
	}
	body := map[string]any{"points": []any{point}}

	if err := s.doJSON(ctx, http.MethodPut, fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, s.collection), body, nil); err != nil {
		return &domain.StoreError{Op: "upsert", Err: err}
	}

	log.Debug().Str("document_id", doc.ID).Str("session_id", doc.SessionID).Msg("stored vector record")
	return nil
}

func (s *Store) SearchDocuments(ctx context.Context, sessionID, query string, topK int) ([]vectorstore.Match, error) {
	if err := s.ensureReady(ctx); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = vectorstore.DefaultTopK
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, &domain.StoreError{Op: "embed", Err: err}
	}

	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
		"filter":       sessionFilter(sessionID),
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := s.doJSON(ctx, http.MethodPost, fmt.Sprintf("%s/collections/%s/points/search", s.url, s.collection), req, &resp); err != nil {
		return nil, &domain.StoreError{Op: "search", Err: err}
	}

	matches := make([]vectorstore.Match, 0, len(resp.Result))
	for _, r := range resp.Result {
		m := matchFromPayload(r.Payload)
		m.Score = r.Score
		matches = append(matches, m)
	}
	return matches, nil
}

// SessionDocuments lists a session's records through Qdrant's scroll API,
// filtered on the session id. Completeness is bounded by listLimit.
func (s *Store) SessionDocuments(ctx context.Context, sessionID string) ([]vectorstore.Match, error) {
	if err := s.ensureReady(ctx); err != nil {
		return nil, err
	}

	req := map[string]any{
		"filter":       sessionFilter(sessionID),
		"limit":        listLimit,
		"with_payload": true,
	}
	var resp struct {
		Result struct {
			Points []struct {
				Payload map[string]any `json:"payload"`
			} `json:"points"`
		} `json:"result"`
	}
	if err := s.doJSON(ctx, http.MethodPost, fmt.Sprintf("%s/collections/%s/points/scroll", s.url, s.collection), req, &resp); err != nil {
		return nil, &domain.StoreError{Op: "scroll", Err: err}
	}

	matches := make([]vectorstore.Match, 0, len(resp.Result.Points))
	for _, p := range resp.Result.Points {
		matches = append(matches, matchFromPayload(p.Payload))
	}
	return matches, nil
}

func sessionFilter(sessionID string) map[string]any {
	return map[string]any{
		"must": []any{
			map[string]any{
				"key":   "session_id",
				"match": map[string]any{"value": sessionID},
			},
		},
	}
}

func matchFromPayload(payload map[string]any) vectorstore.Match {
	m := vectorstore.Match{}
	if v, ok := payload["document_id"].(string); ok {
		m.DocumentID = v
	}
	if v, ok := payload["session_id"].(string); ok {
		m.SessionID = v
	}
	if v, ok := payload["content"].(string); ok {
		m.Content = v
	}
	if v, ok := payload["filename"].(string); ok {
		m.Metadata.Filename = v
	}
	if v, ok := payload["content_type"].(string); ok {
		m.Metadata.ContentType = v
	}
	if v, ok := payload["size_bytes"].(float64); ok {
		m.Metadata.SizeBytes = int64(v)
	}
	if v, ok := payload["ingested_at"].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			m.Metadata.IngestedAt = t
		}
	}
	return m
}

// pointID derives the deterministic UUID point id Qdrant requires from a
// document id.
func pointID(documentID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(documentID)).String()
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut]
}

func (s *Store) doJSON(ctx context.Context, method, url string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// 409 means the collection already exists, which is fine for create
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusConflict {
		return fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
