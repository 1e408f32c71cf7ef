package query

import (
	"strings"
	"time"

	"memo-registry/src/domain"

	"golang.org/x/text/cases"
)

// Filter returns the records matching every set predicate of c, in input
// order. Empty criteria return records unchanged.
func Filter(records []domain.MemoRecord, c domain.FilterCriteria) []domain.MemoRecord {
	if c.IsEmpty() {
		return records
	}

	fold := cases.Fold()
	subject := fold.String(c.Subject)
	from, hasFrom := domain.ParseDate(c.From)
	to, hasTo := domain.ParseDate(c.To)
	if hasTo {
		// 終了日は当日の終わりまで含む
		to = to.Add(24*time.Hour - time.Nanosecond)
	}

	out := make([]domain.MemoRecord, 0, len(records))
	for _, r := range records {
		if subject != "" && !strings.Contains(fold.String(r.Subject), subject) {
			continue
		}
		if c.Teacher != "" && r.Teacher != c.Teacher {
			continue
		}
		if c.Department != "" && r.Department != c.Department {
			continue
		}
		if hasFrom || hasTo {
			d, ok := r.ParsedDate()
			if !ok {
				continue
			}
			if hasFrom && d.Before(from) {
				continue
			}
			if hasTo && d.After(to) {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}
