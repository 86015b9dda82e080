package storage

import (
	"fmt"
	"io"
	"time"

	"github.com/propstack/property-media/internal/config"
	"github.com/redis/go-redis/v9"
	storage_go "github.com/supabase-community/storage-go"
	"go.uber.org/zap"
)

// ObjectStore is the narrow surface this pipeline needs from the remote
// bucket: put bytes, resolve a public URL, remove keys, probe liveness.
type ObjectStore interface {
	UploadFile(key string, data io.Reader, contentType, cacheControl string) error
	PublicURL(key string) string
	RemoveFiles(keys []string) (int, error)
	Ping() error
}

type Service struct {
	store         ObjectStore
	redisClient   *redis.Client
	bucket        string
	logger        *zap.Logger
	cacheDuration time.Duration
}

// New builds a service over any ObjectStore. A nil store means the backend is
// unconfigured; callers check Configured and degrade instead of failing.
func New(store ObjectStore, redisClient *redis.Client, bucket string, cacheDuration time.Duration, logger *zap.Logger) *Service {
	return &Service{
		store:         store,
		redisClient:   redisClient,
		bucket:        bucket,
		logger:        logger,
		cacheDuration: cacheDuration,
	}
}

// NewSupabase wires the service to Supabase Storage plus an optional Redis
// dedupe cache, from config.
func NewSupabase(cfg *config.Config, logger *zap.Logger) *Service {
	var store ObjectStore
	if cfg.Supabase.URL != "" && cfg.Supabase.KEY != "" && cfg.Supabase.BUCKET != "" {
		sbClient := storage_go.NewClient(cfg.Supabase.URL+"/storage/v1", cfg.Supabase.KEY, nil)
		store = &supabaseStore{client: sbClient, bucket: cfg.Supabase.BUCKET}
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	return New(store, redisClient, cfg.Supabase.BUCKET, cfg.Storage.CacheDuration, logger)
}

func (s *Service) Configured() bool {
	return s.store != nil
}

func (s *Service) Bucket() string {
	return s.bucket
}

// supabaseStore adapts the storage-go client to ObjectStore.
type supabaseStore struct {
	client *storage_go.Client
	bucket string
}

func (s *supabaseStore) UploadFile(key string, data io.Reader, contentType, cacheControl string) error {
	upsert := false
	_, err := s.client.UploadFile(s.bucket, key, data, storage_go.FileOptions{
		ContentType:  &contentType,
		CacheControl: &cacheControl,
		Upsert:       &upsert,
	})
	if err != nil {
		return fmt.Errorf("failed to upload to supabase: %w", err)
	}
	return nil
}

func (s *supabaseStore) PublicURL(key string) string {
	return s.client.GetPublicUrl(s.bucket, key).SignedURL
}

func (s *supabaseStore) RemoveFiles(keys []string) (int, error) {
	removed, err := s.client.RemoveFile(s.bucket, keys)
	if err != nil {
		return 0, fmt.Errorf("failed to remove from supabase: %w", err)
	}
	return len(removed), nil
}

func (s *supabaseStore) Ping() error {
	_, err := s.client.ListFiles(s.bucket, "", storage_go.FileSearchOptions{})
	return err
}

var _ ObjectStore = (*supabaseStore)(nil)
