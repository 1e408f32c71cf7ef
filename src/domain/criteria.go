package domain

import (
	"errors"
	"strings"
)

// DefaultPageSize is the fixed number of rows per table page
const DefaultPageSize = 10

var ErrInvalidSortField = errors.New("sort field must be one of memoNumber, date, teacher, subject, department")

// FilterCriteria holds the independent predicates of the memo table.
// Empty fields match everything.
type FilterCriteria struct {
	Subject    string `json:"subject" form:"subject"`
	Teacher    string `json:"teacher" form:"teacher"`
	Department string `json:"department" form:"department"`
	From       string `json:"from" form:"from"`
	To         string `json:"to" form:"to"`
}

// IsEmpty reports whether no predicate is set
func (c FilterCriteria) IsEmpty() bool {
	return c == FilterCriteria{}
}

// SortField names a sortable MemoRecord column
type SortField string

const (
	SortNone       SortField = ""
	SortMemoNumber SortField = "memoNumber"
	SortDate       SortField = "date"
	SortTeacher    SortField = "teacher"
	SortSubject    SortField = "subject"
	SortDepartment SortField = "department"
)

// IsValid validates if the sort field is a known column
func (f SortField) IsValid() bool {
	switch f {
	case SortMemoNumber, SortDate, SortTeacher, SortSubject, SortDepartment:
		return true
	default:
		return false
	}
}

// ParseSortField accepts the column name in any case; "" yields SortNone
func ParseSortField(s string) (SortField, error) {
	if s == "" {
		return SortNone, nil
	}
	for _, f := range []SortField{SortMemoNumber, SortDate, SortTeacher, SortSubject, SortDepartment} {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return SortNone, ErrInvalidSortField
}

// Direction is the sort order
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseDirection maps "desc" to Descending and anything else to Ascending
func ParseDirection(s string) Direction {
	if strings.EqualFold(s, string(Descending)) {
		return Descending
	}
	return Ascending
}

// SortSpec is the single active sort column. The zero value is unsorted.
type SortSpec struct {
	Field     SortField `json:"field"`
	Direction Direction `json:"direction"`
}

// IsSet reports whether a sort column is active
func (s SortSpec) IsSet() bool {
	return s.Field != SortNone
}

// Toggle returns the spec after clicking the header of field:
// the active field flips direction, a new field starts ascending.
func (s SortSpec) Toggle(field SortField) SortSpec {
	if s.Field == field && s.Direction == Ascending {
		return SortSpec{Field: field, Direction: Descending}
	}
	return SortSpec{Field: field, Direction: Ascending}
}

// PageState is the 1-based current page of the memo table
type PageState struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

// NewPageState returns page 1 with the default size
func NewPageState() PageState {
	return PageState{Page: 1, Size: DefaultPageSize}
}

// TotalPages returns max(1, ceil(count/size))
func TotalPages(count, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if count <= 0 {
		return 1
	}
	return (count + size - 1) / size
}

// Clamp keeps Page within [1, TotalPages(count, Size)]
func (p PageState) Clamp(count int) PageState {
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	total := TotalPages(count, p.Size)
	if p.Page > total {
		p.Page = total
	}
	if p.Page < 1 {
		p.Page = 1
	}
	return p
}
