package storage

import (
	"github.com/redis/go-redis/v9"
	storage_go "github.com/supabase-community/storage-go"

	"github.com/tryonme/outfit-server/internal/config"
)

// Service wraps the two external stores: Supabase object storage for result
// images and Redis for sessions and statistics counters. Either side may be
// unconfigured; callers must check Configured/RedisClient before use.
type Service struct {
	sbClient    *storage_go.Client
	redisClient *redis.Client
	bucket      string
}

func NewService(cfg *config.Config) (*Service, error) {
	s := &Service{bucket: cfg.Supabase.BUCKET}

	if cfg.Supabase.URL != "" && cfg.Supabase.KEY != "" {
		s.sbClient = storage_go.NewClient(cfg.Supabase.URL+"/storage/v1", cfg.Supabase.KEY, nil)
	}

	if cfg.Redis.Addr != "" {
		s.redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	return s, nil
}

// Configured reports whether object storage uploads are possible.
func (s *Service) Configured() bool {
	return s != nil && s.sbClient != nil && s.bucket != ""
}

// RedisClient exposes the shared Redis connection, or nil when unconfigured.
func (s *Service) RedisClient() *redis.Client {
	if s == nil {
		return nil
	}
	return s.redisClient
}
