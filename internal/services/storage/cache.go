package storage

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/propstack/property-media/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "img_opt:"

// OptimizationCacheKey hashes the upload content plus the knobs that change
// the output, so a re-submitted identical form hits the cache.
func OptimizationCacheKey(data []byte, maxWidth, maxHeight, quality int, format string) string {
	hash := sha256.New()
	hash.Write(data)
	hash.Write([]byte(fmt.Sprintf("opt_%d_%d_%d_%s", maxWidth, maxHeight, quality, format)))
	return fmt.Sprintf("%s%x", cacheKeyPrefix, hash.Sum(nil))
}

// CachedOptimization returns a previously stored result. Cache errors are a
// miss, never a failure.
func (s *Service) CachedOptimization(ctx context.Context, cacheKey string) (*models.OptimizationResult, bool) {
	if s.redisClient == nil {
		return nil, false
	}

	data, err := s.redisClient.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("Cache get failed", zap.Error(err))
		}
		return nil, false
	}

	var result models.OptimizationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false
	}
	return &result, true
}

// StoreOptimization caches a result best-effort.
func (s *Service) StoreOptimization(ctx context.Context, cacheKey string, result *models.OptimizationResult) {
	if s.redisClient == nil {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.redisClient.Set(ctx, cacheKey, data, s.cacheDuration).Err(); err != nil {
		s.logger.Warn("Cache set failed", zap.Error(err))
	}
}
