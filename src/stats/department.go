package stats

import "memo-registry/src/domain"

// DepartmentCount is the number of records filed under one department
type DepartmentCount struct {
	Department string `json:"department"`
	Count      int    `json:"count"`
}

// DepartmentCounts holds per-department counts in department order.
// Total counts every record, including those whose department is unknown
// or empty.
type DepartmentCounts struct {
	Counts []DepartmentCount `json:"counts"`
	Total  int               `json:"total"`
}

// Map returns the counts keyed by department
func (d DepartmentCounts) Map() map[string]int {
	m := make(map[string]int, len(d.Counts))
	for _, c := range d.Counts {
		m[c.Department] = c.Count
	}
	return m
}

// Labels and Values split the counts into chart series
func (d DepartmentCounts) Labels() []string {
	labels := make([]string, len(d.Counts))
	for i, c := range d.Counts {
		labels[i] = c.Department
	}
	return labels
}

func (d DepartmentCounts) Values() []int {
	values := make([]int, len(d.Counts))
	for i, c := range d.Counts {
		values[i] = c.Count
	}
	return values
}

// CountsByDepartment counts records per known department
func CountsByDepartment(records []domain.MemoRecord, departments []string) DepartmentCounts {
	index := make(map[string]int, len(departments))
	counts := make([]DepartmentCount, 0, len(departments))
	for _, d := range departments {
		if _, dup := index[d]; dup {
			continue
		}
		index[d] = len(counts)
		counts = append(counts, DepartmentCount{Department: d})
	}

	for _, r := range records {
		if i, ok := index[r.Department]; ok {
			counts[i].Count++
		}
	}

	return DepartmentCounts{Counts: counts, Total: len(records)}
}
