package domain

// DefaultDepartments is used when no department list has been persisted
var DefaultDepartments = []string{"教務課", "予算課", "人事課", "総務課"}

// ContainsDepartment reports whether name is in departments
func ContainsDepartment(departments []string, name string) bool {
	for _, d := range departments {
		if d == name {
			return true
		}
	}
	return false
}

type departmentName struct {
	Department string `validate:"required,max=50,safe_label"`
}

// ValidateDepartmentName applies the MemoRecord.Department rule to name,
// so every listed department can be used on a record
func ValidateDepartmentName(name string) error {
	return recordValidator.Validate(&departmentName{Department: name})
}
