package stats

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/noah-isme/chamada-api/internal/dto"
	"github.com/noah-isme/chamada-api/internal/models"
)

var shortMonths = [12]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

type monthTally struct {
	key       string
	year      int
	month     int
	presences int
	absences  int
}

// MonthWindowStart returns the first day of the oldest month in the monthly series.
func MonthWindowStart(ref models.Date) models.Date {
	return ref.FirstOfMonth().AddMonths(-(MonthWindow - 1))
}

// MonthlyFrequency groups the records of the last MonthWindow calendar months by
// year-month. Only months with at least one record appear, ordered by month key.
func MonthlyFrequency(records []models.Attendance, ref models.Date) []dto.MonthlyFrequencyPoint {
	from, to := MonthWindowStart(ref), ref.EndOfMonth()

	tallies := make(map[string]*monthTally)
	for _, r := range records {
		if !r.Date.Between(from, to) {
			continue
		}
		key := r.Date.MonthKey()
		t, ok := tallies[key]
		if !ok {
			t = &monthTally{key: key, year: r.Date.Year(), month: int(r.Date.Month())}
			tallies[key] = t
		}
		if r.Present {
			t.presences++
		} else {
			t.absences++
		}
	}

	ordered := lo.Values(tallies)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].key < ordered[j].key })

	points := make([]dto.MonthlyFrequencyPoint, 0, len(ordered))
	for _, t := range ordered {
		total := t.presences + t.absences
		points = append(points, dto.MonthlyFrequencyPoint{
			Label:          monthLabel(t.year, t.month),
			Month:          t.key,
			Presences:      t.presences,
			Absences:       t.absences,
			Records:        total,
			PresentPercent: percent(t.presences, total),
		})
	}
	return points
}

// ClassifyTrend compares the mean attendance of the older and newer halves of the
// series. The older half holds floor(n/2) points. A difference has to exceed margin
// to count; series shorter than MinTrendPoints are stable.
func ClassifyTrend(points []dto.MonthlyFrequencyPoint, margin float64) dto.Trend {
	if len(points) < MinTrendPoints {
		return dto.TrendStable
	}
	half := len(points) / 2
	older := meanPercent(points[:half])
	recent := meanPercent(points[half:])

	switch {
	case recent > older+margin:
		return dto.TrendRising
	case recent < older-margin:
		return dto.TrendFalling
	default:
		return dto.TrendStable
	}
}

func meanPercent(points []dto.MonthlyFrequencyPoint) float64 {
	sum := lo.SumBy(points, func(p dto.MonthlyFrequencyPoint) float64 { return p.PresentPercent })
	return sum / float64(len(points))
}

func monthLabel(year, month int) string {
	return fmt.Sprintf("%s/%02d", shortMonths[month-1], year%100)
}
