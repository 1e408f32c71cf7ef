package query

import (
	"cmp"
	"slices"

	"memo-registry/src/domain"
)

// Sort returns a stably sorted copy of records. An unset spec keeps the
// input order. Records whose date does not parse sort last in both
// directions when sorting by date.
func Sort(records []domain.MemoRecord, spec domain.SortSpec) []domain.MemoRecord {
	out := slices.Clone(records)
	if !spec.IsSet() || !spec.Field.IsValid() {
		return out
	}

	sign := 1
	if spec.Direction == domain.Descending {
		sign = -1
	}

	if spec.Field == domain.SortDate {
		slices.SortStableFunc(out, func(a, b domain.MemoRecord) int {
			da, okA := a.ParsedDate()
			db, okB := b.ParsedDate()
			switch {
			case !okA && !okB:
				return 0
			case !okA:
				return 1
			case !okB:
				return -1
			}
			return sign * da.Compare(db)
		})
		return out
	}

	key := stringKey(spec.Field)
	slices.SortStableFunc(out, func(a, b domain.MemoRecord) int {
		return sign * cmp.Compare(key(a), key(b))
	})
	return out
}

func stringKey(f domain.SortField) func(domain.MemoRecord) string {
	switch f {
	case domain.SortMemoNumber:
		return func(m domain.MemoRecord) string { return m.MemoNumber }
	case domain.SortTeacher:
		return func(m domain.MemoRecord) string { return m.Teacher }
	case domain.SortSubject:
		return func(m domain.MemoRecord) string { return m.Subject }
	default:
		return func(m domain.MemoRecord) string { return m.Department }
	}
}
