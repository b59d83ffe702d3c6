// Package analytics buckets parcels by creation period and sums either
// parcel counts or monetary value for the dashboard charts.
package analytics

import (
	"sort"
	"strconv"
	"time"

	"github.com/BearBump/ParcelDesk/internal/apperr"
	"github.com/BearBump/ParcelDesk/internal/models"
)

type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

type Metric string

const (
	MetricVolume  Metric = "volume"
	MetricFinance Metric = "finance"
)

type Bucket struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Aggregate emits buckets in ascending chronological order. The grouping map
// has no usable iteration order, so keys are sorted explicitly; labels are
// zero-padded ISO so lexicographic == chronological.
func Aggregate(parcels []*models.Parcel, period Period, metric Metric) ([]Bucket, error) {
	switch period {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
	default:
		return nil, apperr.Validation("period", "unknown period: "+string(period))
	}
	switch metric {
	case MetricVolume, MetricFinance:
	default:
		return nil, apperr.Validation("metric", "unknown metric: "+string(metric))
	}

	grouped := map[string]float64{}
	for _, p := range parcels {
		if p.CreationDate.IsZero() {
			continue
		}
		key := bucketKey(p.CreationDate, period)
		if metric == MetricVolume {
			grouped[key]++
			continue
		}
		// Non-numeric values count as 0, the parcel still lands in its bucket.
		v, err := strconv.ParseFloat(p.ParcelValue, 64)
		if err != nil {
			v = 0
		}
		grouped[key] += v
	}

	keys := make([]string, 0, len(grouped))
	for k := range grouped {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Bucket, 0, len(keys))
	for _, k := range keys {
		out = append(out, Bucket{Label: k, Value: grouped[k]})
	}
	return out, nil
}

func bucketKey(t time.Time, period Period) string {
	switch period {
	case PeriodWeekly:
		return startOfWeek(t).Format("2006-01-02")
	case PeriodMonthly:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

// startOfWeek truncates to the preceding (or same) Sunday.
func startOfWeek(t time.Time) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -int(day.Weekday()))
}
