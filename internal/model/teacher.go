package model

import "time"

// Academic ranks a teacher can hold, ordered junior to senior.
var TeacherTitles = []string{
	"Araştırma Görevlisi",
	"Öğretim Görevlisi",
	"Öğretim Üyesi",
	"Doçent",
	"Profesör",
}

// ValidTeacherTitle reports whether s is a known academic rank.
func ValidTeacherTitle(s string) bool {
	for _, t := range TeacherTitles {
		if t == s {
			return true
		}
	}
	return false
}

// Teacher is a profile record linked 1:1 to a User with role=teacher.
type Teacher struct {
	ID             uint64    `json:"id"`
	UserID         uint64    `json:"userId"`
	EmployeeNumber string    `json:"employeeNumber"`
	Department     string    `json:"department"`
	Title          string    `json:"title"`
	Specialization string    `json:"specialization"`
	PhoneNumber    *string   `json:"phoneNumber,omitempty"`
	OfficeLocation *string   `json:"officeLocation,omitempty"`
	HireDate       time.Time `json:"hireDate"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	Owner *UserSummary `json:"user,omitempty"`
}
