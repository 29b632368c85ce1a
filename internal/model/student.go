package model

import "time"

// Student is a profile record linked 1:1 to a User with role=student.
// The optional contact fields are pointers so an absent value is omitted
// from JSON rather than rendered as an empty string.
type Student struct {
	ID             uint64    `json:"id"`
	UserID         uint64    `json:"userId"`
	StudentNumber  string    `json:"studentNumber"`
	ClassLevel     string    `json:"classLevel"`
	Department     string    `json:"department"`
	PhoneNumber    *string   `json:"phoneNumber,omitempty"`
	Address        *string   `json:"address,omitempty"`
	EnrollmentDate time.Time `json:"enrollmentDate"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	// Owner carries selected fields of the linked User when the repository
	// joins it in for display. Nil when not loaded.
	Owner *UserSummary `json:"user,omitempty"`
}

// UserSummary is the slice of a User embedded in profile and course
// responses: enough to show who a record belongs to without exposing the
// whole account.
type UserSummary struct {
	ID        uint64 `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	IsActive  bool   `json:"isActive"`
}
