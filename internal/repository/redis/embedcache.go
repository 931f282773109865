package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"docchat/internal/llm"
	"github.com/rs/zerolog/log"
)

const (
	embeddingCachePrefix = "emb:"
	embeddingCacheTTL    = 24 * time.Hour
)

// EmbeddingCache is a read-through decorator over an Embedder. The same
// text always embeds to the same vector, so entries are keyed by a content
// hash. Cache trouble is never a reason to fail an embed: misses and write
// errors fall through to the wrapped embedder.
type EmbeddingCache struct {
	client *Client
	next   llm.Embedder
}

var _ llm.Embedder = (*EmbeddingCache)(nil)

// NewEmbeddingCache wraps next with a Redis read-through cache
func NewEmbeddingCache(client *Client, next llm.Embedder) *EmbeddingCache {
	return &EmbeddingCache{client: client, next: next}
}

func (c *EmbeddingCache) Embed(ctx context.Context, text string) ([]float32, error) {
	key := embeddingCacheKey(text)

	if data, err := c.client.rdb.Get(ctx, key).Bytes(); err == nil {
		var vector []float32
		if err := json.Unmarshal(data, &vector); err == nil && len(vector) > 0 {
			return vector, nil
		}
	}

	vector, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(vector); err == nil {
		if err := c.client.rdb.Set(ctx, key, data, embeddingCacheTTL).Err(); err != nil {
			log.Warn().Err(err).Msg("failed to cache embedding")
		}
	}

	return vector, nil
}

func embeddingCacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return embeddingCachePrefix + hex.EncodeToString(sum[:])
}
