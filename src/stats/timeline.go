package stats

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"memo-registry/src/domain"
)

var ErrUnknownBucket = errors.New("bucket must be one of day, week, month, year")

// BucketKind selects the time period of a timeline
type BucketKind string

const (
	BucketDay   BucketKind = "day"
	BucketWeek  BucketKind = "week"
	BucketMonth BucketKind = "month"
	BucketYear  BucketKind = "year"
)

// yearSpan is how many years before now the year timeline starts
const yearSpan = 5

var weekdayLabels = [...]string{"日曜日", "月曜日", "火曜日", "水曜日", "木曜日", "金曜日", "土曜日"}

// ParseBucketKind accepts day, week, month or year in any case
func ParseBucketKind(s string) (BucketKind, error) {
	switch k := BucketKind(strings.ToLower(strings.TrimSpace(s))); k {
	case BucketDay, BucketWeek, BucketMonth, BucketYear:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBucket, s)
	}
}

// Timeline is a labelled count series for the line chart
type Timeline struct {
	Kind   BucketKind `json:"kind"`
	Labels []string   `json:"labels"`
	Counts []int      `json:"counts"`
}

// CountsByTimeBucket builds the buckets of kind around now and counts the
// records whose date, formatted with the bucket's label format, equals a
// bucket label.
//
// Matching is by label only: a "day" bucket counts every record on that
// weekday in any week, and "week" and "month" buckets ignore the year.
func CountsByTimeBucket(records []domain.MemoRecord, kind BucketKind, now time.Time) (Timeline, error) {
	var (
		labels []string
		format func(time.Time) string
	)

	switch kind {
	case BucketDay:
		format = weekdayLabel
		start := now.AddDate(0, 0, -int(now.Weekday()))
		for i := 0; i < 7; i++ {
			labels = append(labels, format(start.AddDate(0, 0, i)))
		}
	case BucketWeek:
		format = weekLabel
		year, _ := now.ISOWeek()
		// 12月28日は必ずその年の最終ISO週に含まれる
		_, last := time.Date(year, time.December, 28, 0, 0, 0, 0, now.Location()).ISOWeek()
		for w := 1; w <= last; w++ {
			labels = append(labels, formatWeek(w))
		}
	case BucketMonth:
		format = monthLabel
		for m := time.January; m <= time.December; m++ {
			labels = append(labels, formatMonth(m))
		}
	case BucketYear:
		format = yearLabel
		for y := now.Year() - yearSpan; y <= now.Year(); y++ {
			labels = append(labels, strconv.Itoa(y))
		}
	default:
		return Timeline{}, fmt.Errorf("%w: %q", ErrUnknownBucket, kind)
	}

	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}

	counts := make([]int, len(labels))
	for _, r := range records {
		d, ok := r.ParsedDate()
		if !ok {
			continue
		}
		if i, ok := index[format(d)]; ok {
			counts[i]++
		}
	}

	return Timeline{Kind: kind, Labels: labels, Counts: counts}, nil
}

func weekdayLabel(t time.Time) string { return weekdayLabels[t.Weekday()] }

func weekLabel(t time.Time) string {
	_, w := t.ISOWeek()
	return formatWeek(w)
}

func formatWeek(w int) string { return fmt.Sprintf("第%d週", w) }

func monthLabel(t time.Time) string { return formatMonth(t.Month()) }

func formatMonth(m time.Month) string { return fmt.Sprintf("%d月", int(m)) }

func yearLabel(t time.Time) string { return strconv.Itoa(t.Year()) }
