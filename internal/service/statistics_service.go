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

const statisticsCachePrefix = "statistics:"

// StatisticsServiceConfig tunes the statistics endpoints.
type StatisticsServiceConfig struct {
	CacheTTL   time.Duration
	Location   *time.Location
	Thresholds stats.Thresholds
}

// StatisticsService serves per-class statistics, the absentee list and weekly risk alerts.
type StatisticsService struct {
	loader snapshotLoader
	cache  *CacheService
	logger *zap.Logger
	now    func() time.Time
	cfg    StatisticsServiceConfig
}

// NewStatisticsService constructs a StatisticsService.
func NewStatisticsService(loader snapshotLoader, cache *CacheService, cfg StatisticsServiceConfig, logger *zap.Logger) *StatisticsService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	cfg.Thresholds = cfg.Thresholds.WithDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatisticsService{loader: loader, cache: cache, logger: logger, now: time.Now, cfg: cfg}
}

// ClassStats returns attendance totals and rates for every class.
func (s *StatisticsService) ClassStats(ctx context.Context) ([]dto.ClassAttendanceStats, bool, error) {
	key := statisticsCachePrefix + "classes"
	var result []dto.ClassAttendanceStats
	hit, err := s.cached(ctx, key, &result, func(in stats.Input) interface{} {
		result = stats.ClassStats(in.Classes, in.Students, in.Attendance, s.cfg.Thresholds)
		return result
	}, models.AttendanceScope{})
	if err != nil {
		return nil, false, err
	}
	return result, hit, nil
}

// Absentees lists students with at least minAbsences absences. A non-positive
// minimum falls back to the configured default.
func (s *StatisticsService) Absentees(ctx context.Context, minAbsences int) (*dto.AbsenteeReport, bool, error) {
	if minAbsences <= 0 {
		minAbsences = s.cfg.Thresholds.AbsenteeMin
	}
	key := fmt.Sprintf("%sabsentees:%d", statisticsCachePrefix, minAbsences)
	var result dto.AbsenteeReport
	hit, err := s.cached(ctx, key, &result, func(in stats.Input) interface{} {
		result = stats.Absentees(in.Classes, in.Students, in.Attendance, minAbsences)
		return result
	}, models.AttendanceScope{})
	if err != nil {
		return nil, false, err
	}
	return &result, hit, nil
}

// WeeklyRisk returns the students with repeated absences in the business-day
// window ending at ref (today when zero).
func (s *StatisticsService) WeeklyRisk(ctx context.Context, ref models.Date) ([]dto.WeeklyRiskAlert, bool, error) {
	if ref.IsZero() {
		ref = models.Today(s.now(), s.cfg.Location)
	}
	days := stats.BusinessDays(ref, stats.BusinessDayWindow)
	from, to := days[0], days[len(days)-1]
	key := fmt.Sprintf("%sweekly-risk:%s", statisticsCachePrefix, ref)

	var result []dto.WeeklyRiskAlert
	hit, err := s.cached(ctx, key, &result, func(in stats.Input) interface{} {
		result = stats.WeeklyRisk(in.Classes, in.Students, in.Attendance, ref, s.cfg.Thresholds)
		return result
	}, models.AttendanceScope{From: &from, To: &to})
	if err != nil {
		return nil, false, err
	}
	return result, hit, nil
}

// cached serves dest from cache when possible and otherwise loads the rows in
// scope, runs build and stores its result.
func (s *StatisticsService) cached(ctx context.Context, key string, dest interface{}, build func(stats.Input) interface{}, scope models.AttendanceScope) (bool, error) {
	if s.cache != nil {
		hit, err := s.cache.Get(ctx, key, dest)
		if err != nil {
			s.logger.Warn("statistics cache read failed, recomputing", zap.String("key", key), zap.Error(err))
		} else if hit {
			return true, nil
		}
	}

	gen := s.cache.Generation()
	in, err := s.loader.Load(ctx, scope)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance statistics")
	}
	value := build(in)
	if s.cache != nil {
		if _, err := s.cache.SetIfCurrent(ctx, key, value, s.cfg.CacheTTL, gen); err != nil {
			s.logger.Warn("statistics cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return false, nil
}
