package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/chamada-api/internal/models"
	"github.com/noah-isme/chamada-api/pkg/jobs"
)

type jobEnqueuer interface {
	Enqueue(job jobs.Job) (bool, error)
}

type dashboardWarmer interface {
	Today() models.Date
	Warm(ctx context.Context, day models.Date) error
}

// WarmupService drops cached statistics after attendance writes and schedules a
// background recomputation of today's dashboard.
type WarmupService struct {
	cache     *CacheService
	queue     jobEnqueuer
	dashboard dashboardWarmer
	logger    *zap.Logger
}

// NewWarmupService constructs a WarmupService. A nil queue only invalidates.
func NewWarmupService(cache *CacheService, queue jobEnqueuer, dashboard dashboardWarmer, logger *zap.Logger) *WarmupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WarmupService{cache: cache, queue: queue, dashboard: dashboard, logger: logger}
}

// AttendanceChanged invalidates every dashboard and statistics entry and enqueues
// a warm-up. Failures are logged; the write that triggered it already succeeded.
func (s *WarmupService) AttendanceChanged(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, dashboardCachePrefix+"*", statisticsCachePrefix+"*"); err != nil {
		s.logger.Warn("statistics invalidation failed", zap.Error(err))
	}
	if s.queue == nil || s.dashboard == nil {
		return
	}
	day := s.dashboard.Today()
	job := jobs.Job{
		ID:       uuid.NewString(),
		Key:      dashboardCacheKey(day),
		Payload:  day,
		Enqueued: time.Now().UTC(),
	}
	queued, err := s.queue.Enqueue(job)
	if err != nil {
		s.logger.Warn("warm-up enqueue failed", zap.String("key", job.Key), zap.Error(err))
		return
	}
	if !queued {
		s.logger.Debug("warm-up already pending", zap.String("key", job.Key))
	}
}

// WarmupHandler returns the queue handler that recomputes the dashboard named by
// the job payload.
func WarmupHandler(dashboard dashboardWarmer) jobs.Handler {
	return func(ctx context.Context, job jobs.Job) error {
		day, ok := job.Payload.(models.Date)
		if !ok {
			return fmt.Errorf("warm-up job %s: unexpected payload %T", job.ID, job.Payload)
		}
		return dashboard.Warm(ctx, day)
	}
}
