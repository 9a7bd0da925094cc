package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/chamada-api/internal/models"
	"github.com/noah-isme/chamada-api/internal/stats"
)

type studentLister interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
}

type classLister interface {
	List(ctx context.Context) ([]models.Class, error)
}

type attendanceSnapshotter interface {
	Snapshot(ctx context.Context, scope models.AttendanceScope) ([]models.Attendance, error)
}

// SnapshotLoader fetches the three row sets the aggregator needs. The fetches
// run concurrently and the first failure cancels the others.
type SnapshotLoader struct {
	students   studentLister
	classes    classLister
	attendance attendanceSnapshotter
	metrics    *MetricsService
}

// NewSnapshotLoader constructs a SnapshotLoader.
func NewSnapshotLoader(students studentLister, classes classLister, attendance attendanceSnapshotter, metrics *MetricsService) *SnapshotLoader {
	return &SnapshotLoader{students: students, classes: classes, attendance: attendance, metrics: metrics}
}

// Load returns every student, every class and the attendance rows inside scope.
func (l *SnapshotLoader) Load(ctx context.Context, scope models.AttendanceScope) (stats.Input, error) {
	var in stats.Input
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		start := time.Now()
		rows, err := l.students.List(gctx, models.StudentFilter{})
		l.metrics.ObserveDBQuery("snapshot_students", time.Since(start))
		in.Students = rows
		return err
	})
	g.Go(func() error {
		start := time.Now()
		rows, err := l.classes.List(gctx)
		l.metrics.ObserveDBQuery("snapshot_classes", time.Since(start))
		in.Classes = rows
		return err
	})
	g.Go(func() error {
		start := time.Now()
		rows, err := l.attendance.Snapshot(gctx, scope)
		l.metrics.ObserveDBQuery("snapshot_attendance", time.Since(start))
		in.Attendance = rows
		return err
	})

	if err := g.Wait(); err != nil {
		return stats.Input{}, err
	}
	return in, nil
}
