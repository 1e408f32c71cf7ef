package query

import "memo-registry/src/domain"

// Paginate returns the page-th slice of size records and the page count.
// Callers clamp page beforehand; an out-of-range page yields an empty slice.
func Paginate(records []domain.MemoRecord, page, size int) ([]domain.MemoRecord, int) {
	if size <= 0 {
		size = domain.DefaultPageSize
	}
	totalPages := domain.TotalPages(len(records), size)
	if page < 1 || page > totalPages {
		return []domain.MemoRecord{}, totalPages
	}

	start := (page - 1) * size
	if start >= len(records) {
		return []domain.MemoRecord{}, totalPages
	}
	end := min(start+size, len(records))
	return records[start:end], totalPages
}

// Result is one rendered table page
type Result struct {
	Records    []domain.MemoRecord `json:"memos"`
	Total      int                 `json:"total"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	TotalPages int                 `json:"total_pages"`
}

// Run applies filter, sort and pagination in order. page is clamped to the
// filtered count before slicing.
func Run(records []domain.MemoRecord, c domain.FilterCriteria, spec domain.SortSpec, page domain.PageState) Result {
	filtered := Filter(records, c)
	sorted := Sort(filtered, spec)
	page = page.Clamp(len(sorted))
	slice, totalPages := Paginate(sorted, page.Page, page.Size)
	return Result{
		Records:    slice,
		Total:      len(sorted),
		Page:       page.Page,
		Limit:      page.Size,
		TotalPages: totalPages,
	}
}
