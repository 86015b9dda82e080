package storage

import (
	"context"
	"fmt"

	"github.com/propstack/property-media/internal/models"
	"go.uber.org/zap"
)

// DeleteImages removes the objects behind the given public URLs. It prefers
// one batched delete and degrades to per-key deletes when the batch call
// fails, so one bad key cannot block the rest. URLs that cannot be mapped to
// a key are counted as errors up front.
func (s *Service) DeleteImages(ctx context.Context, urls []string) *models.CleanupResult {
	result := &models.CleanupResult{}

	var keys []string
	for _, url := range urls {
		if url == "" {
			continue
		}
		key, ok := ExtractKeyFromURL(url, s.bucket)
		if !ok {
			result.AddError(fmt.Sprintf("cannot resolve storage key from %s", url))
			continue
		}
		keys = append(keys, key)
	}

	if len(keys) == 0 {
		return result
	}
	if s.store == nil {
		result.AddError(ErrNotConfigured.Error())
		return result
	}

	removed, err := s.store.RemoveFiles(keys)
	if err != nil {
		s.logger.Warn("Batch delete failed, retrying per file",
			zap.Int("keys", len(keys)),
			zap.Error(err))
		s.deleteIndividually(keys, result)
		return result
	}

	result.SuccessCount += len(keys)
	if removed < len(keys) {
		// The store silently skips keys that are already gone; record the
		// shortfall as a warning, not a failure.
		result.Errors = append(result.Errors,
			fmt.Sprintf("store removed %d of %d requested objects", removed, len(keys)))
	}
	return result
}

func (s *Service) deleteIndividually(keys []string, result *models.CleanupResult) {
	for _, key := range keys {
		if _, err := s.store.RemoveFiles([]string{key}); err != nil {
			result.AddError(fmt.Sprintf("delete %s: %v", key, err))
			continue
		}
		result.SuccessCount++
	}
}

// RemovedImages is the order-independent set difference previous − current:
// the URLs an edit dropped and cleanup may now delete. Images retained across
// the edit are never returned.
func RemovedImages(previous, current []string) []string {
	kept := make(map[string]struct{}, len(current))
	for _, url := range current {
		kept[url] = struct{}{}
	}

	var removed []string
	for _, url := range previous {
		if url == "" {
			continue
		}
		if _, ok := kept[url]; !ok {
			removed = append(removed, url)
		}
	}
	return removed
}
