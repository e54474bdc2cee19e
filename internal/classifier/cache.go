package classifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CachedDetector wraps a Detector with a Redis verdict cache keyed by the
// SHA-256 of the image bytes, so re-submissions of the same photo skip the
// detector. Cache failures degrade to a direct call.
type CachedDetector struct {
	inner  Detector
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedDetector builds the caching wrapper. A nil client disables caching.
func NewCachedDetector(inner Detector, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedDetector {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedDetector{inner: inner, client: client, ttl: ttl, logger: logger}
}

// Detect checks the cache before delegating to the wrapped detector.
func (d *CachedDetector) Detect(ctx context.Context, image []byte) ([]Detection, error) {
	if d.client == nil {
		return d.inner.Detect(ctx, image)
	}

	key := cacheKey(image)
	if raw, err := d.client.Get(ctx, key).Result(); err == nil {
		var cached []Detection
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return cached, nil
		}
	} else if err != redis.Nil {
		d.logger.Warn("classifier cache read failed", zap.Error(err))
	}

	detections, err := d.inner.Detect(ctx, image)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(detections); err == nil {
		if err := d.client.Set(ctx, key, raw, d.ttl).Err(); err != nil {
			d.logger.Warn("classifier cache write failed", zap.Error(err))
		}
	}
	return detections, nil
}

func cacheKey(image []byte) string {
	sum := sha256.Sum256(image)
	return "classifier:verdict:" + hex.EncodeToString(sum[:])
}
