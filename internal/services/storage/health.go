package storage

import "context"

// HealthCheck probes the bucket and the dedupe cache.
func (s *Service) HealthCheck(ctx context.Context) map[string]string {
	status := make(map[string]string)

	if s.store == nil {
		status["supabase"] = "not configured"
	} else if err := s.store.Ping(); err != nil {
		status["supabase"] = "unhealthy: " + err.Error()
	} else {
		status["supabase"] = "healthy"
	}

	if s.redisClient == nil {
		status["redis"] = "not configured"
	} else if err := s.redisClient.Ping(ctx).Err(); err != nil {
		status["redis"] = "unhealthy: " + err.Error()
	} else {
		status["redis"] = "healthy"
	}

	return status
}
