package storage

import (
	"bytes"
	"context"
	"errors"
	"strings"
)

var ErrNotConfigured = errors.New("storage backend not configured")

// Upload puts the buffer under key and returns its public URL. Uploads never
// overwrite: a key collision is a genuine error, not a conflict to merge.
func (s *Service) Upload(ctx context.Context, data []byte, key, contentType, cacheControl string) (string, error) {
	if s.store == nil {
		return "", ErrNotConfigured
	}

	if err := s.store.UploadFile(key, bytes.NewReader(data), contentType, cacheControl); err != nil {
		return "", err
	}
	return s.store.PublicURL(key), nil
}

// IsBucketNotFound classifies the misconfiguration the upload handler reports
// with setup help instead of a hard failure.
func IsBucketNotFound(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "bucket not found") || strings.Contains(msg, "bucket does not exist")
}
