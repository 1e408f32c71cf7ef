package stats

import (
	"time"

	"memo-registry/src/domain"
)

// Summary is the dashboard header of the main view
type Summary struct {
	Total       int                `json:"total"`
	ThisMonth   int                `json:"this_month"`
	ThisYear    int                `json:"this_year"`
	Departments int                `json:"departments"`
	Latest      *domain.MemoRecord `json:"latest,omitempty"`
}

// Summarize counts records dated in now's month and year and picks the
// record with the latest date. Ties keep the earlier-inserted record.
func Summarize(records []domain.MemoRecord, departments []string, now time.Time) Summary {
	s := Summary{Total: len(records), Departments: len(departments)}

	var latest time.Time
	for i, r := range records {
		d, ok := r.ParsedDate()
		if !ok {
			continue
		}
		if d.Year() == now.Year() {
			s.ThisYear++
			if d.Month() == now.Month() {
				s.ThisMonth++
			}
		}
		if s.Latest == nil || d.After(latest) {
			rec := records[i].Clone()
			s.Latest = &rec
			latest = d
		}
	}
	return s
}
