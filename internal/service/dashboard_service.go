package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/chamada-api/internal/dto"
	"github.com/noah-isme/chamada-api/internal/models"
	"github.com/noah-isme/chamada-api/internal/stats"
	appErrors "github.com/noah-isme/chamada-api/pkg/errors"
)

const dashboardCachePrefix = "dashboard:"

type snapshotLoader interface {
	Load(ctx context.Context, scope models.AttendanceScope) (stats.Input, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL   time.Duration
	Location   *time.Location
	Thresholds stats.Thresholds
}

// DashboardService composes the statistics bundle shown on the dashboard.
type DashboardService struct {
	loader snapshotLoader
	cache  *CacheService
	logger *zap.Logger
	now    func() time.Time
	cfg    DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Loader snapshotLoader
	Cache  *CacheService
	Logger *zap.Logger
	Config DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	cfg.Thresholds = cfg.Thresholds.WithDefaults()
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		loader: params.Loader,
		cache:  params.Cache,
		logger: logger,
		now:    time.Now,
		cfg:    cfg,
	}
}

// Today returns the reference day in the configured school timezone.
func (s *DashboardService) Today() models.Date {
	return models.Today(s.now(), s.cfg.Location)
}

// Stats returns the bundle for the reference day (today when ref is zero) and
// reports whether it came from cache.
func (s *DashboardService) Stats(ctx context.Context, ref models.Date) (*dto.DashboardStats, bool, error) {
	if ref.IsZero() {
		ref = s.Today()
	}
	key := dashboardCacheKey(ref)

	if s.cache != nil {
		var cached dto.DashboardStats
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("dashboard cache read failed, recomputing", zap.String("key", key), zap.Error(err))
		} else if hit {
			return &cached, true, nil
		}
	}

	gen := s.cache.Generation()
	bundle, err := s.compute(ctx, ref)
	if err != nil {
		return nil, false, err
	}
	s.persistCache(ctx, key, bundle, gen)
	return bundle, false, nil
}

// Warm recomputes the bundle for day and overwrites the cached copy. The result
// is dropped when attendance changed while it was being computed.
func (s *DashboardService) Warm(ctx context.Context, day models.Date) error {
	gen := s.cache.Generation()
	bundle, err := s.compute(ctx, day)
	if err != nil {
		return err
	}
	if s.cache == nil {
		return nil
	}
	_, err = s.cache.SetIfCurrent(ctx, dashboardCacheKey(day), bundle, s.cfg.CacheTTL, gen)
	return err
}

func (s *DashboardService) compute(ctx context.Context, ref models.Date) (*dto.DashboardStats, error) {
	in, err := s.loader.Load(ctx, models.AttendanceScope{})
	if err != nil {
		s.logger.Error("dashboard fetch failed", zap.String("date", ref.String()), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrDashboardUnavailable.Code, appErrors.ErrDashboardUnavailable.Status, appErrors.ErrDashboardUnavailable.Message)
	}
	bundle := stats.Compute(in, ref, s.cfg.Thresholds)
	return &bundle, nil
}

func (s *DashboardService) persistCache(ctx context.Context, key string, value interface{}, gen uint64) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.SetIfCurrent(ctx, key, value, s.cfg.CacheTTL, gen); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func dashboardCacheKey(day models.Date) string {
	return fmt.Sprintf("%sstats:%s", dashboardCachePrefix, day)
}
