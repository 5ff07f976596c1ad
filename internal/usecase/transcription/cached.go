package transcription

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/johnquangdev/radio-transcriber/internal/domain/entities"
	"github.com/johnquangdev/radio-transcriber/internal/infrastructure/cache"
)

const cacheKeyPrefix = "transcript:"

// CachedSource memoizes another source by audio content hash. Cache failures
// are logged and never fail the call.
type CachedSource struct {
	next   Source
	store  cache.Store
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedSource wraps next with a transcript cache
func NewCachedSource(next Source, store cache.Store, ttl time.Duration, logger *zap.Logger) *CachedSource {
	return &CachedSource{next: next, store: store, ttl: ttl, logger: logger}
}

// Produce implements Source
func (c *CachedSource) Produce(ctx context.Context, audioPath string) (*entities.SourceTranscript, error) {
	key, err := ContentKey(audioPath)
	if err != nil {
		return c.next.Produce(ctx, audioPath)
	}

	data, found, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		c.warn("transcript cache read failed", key, err)
	case found:
		var cached entities.SourceTranscript
		if err := msgpack.Unmarshal(data, &cached); err != nil {
			c.warn("transcript cache entry is corrupt", key, err)
			break
		}
		if c.logger != nil {
			c.logger.Info("♻️ Transcript cache hit",
				zap.String("file", filepath.Base(audioPath)),
				zap.String("backend", cached.Backend),
			)
		}
		return &cached, nil
	}

	out, err := c.next.Produce(ctx, audioPath)
	if err != nil {
		return nil, err
	}

	encoded, err := msgpack.Marshal(out)
	if err != nil {
		c.warn("transcript cache encode failed", key, err)
		return out, nil
	}
	if err := c.store.Set(ctx, key, encoded, c.ttl); err != nil {
		c.warn("transcript cache write failed", key, err)
	}
	return out, nil
}

func (c *CachedSource) warn(msg, key string, err error) {
	if c.logger != nil {
		c.logger.Warn(msg, zap.String("key", key), zap.Error(err))
	}
}

// ContentKey derives the cache key of an audio file from its sha256 digest
func ContentKey(audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash audio: %w", err)
	}
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil)), nil
}
