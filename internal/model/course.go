package model

import (
	"errors"
	"time"
)

// Semesters a course can run in.
const (
	SemesterFall   = "Fall"
	SemesterSpring = "Spring"
	SemesterSummer = "Summer"
)

// ValidSemester reports whether s is a known semester.
func ValidSemester(s string) bool {
	return s == SemesterFall || s == SemesterSpring || s == SemesterSummer
}

// Weekdays accepted in a schedule slot.
var ScheduleDays = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// ValidScheduleDay reports whether s is a known weekday name.
func ValidScheduleDay(s string) bool {
	for _, d := range ScheduleDays {
		if d == s {
			return true
		}
	}
	return false
}

// ScheduleSlot is one meeting of a course. Times are HH:MM strings; the
// system stores and serves the schedule but never checks it for conflicts.
type ScheduleSlot struct {
	Day       string `json:"day"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Classroom string `json:"classroom"`
}

// Enrollment gate errors. The repository raises them from inside the
// enrollment transaction and handlers map them onto HTTP statuses.
var (
	ErrCourseInactive  = errors.New("cannot enroll in inactive course")
	ErrAlreadyEnrolled = errors.New("student already enrolled in course")
	ErrCapacityFull    = errors.New("course capacity full")
	ErrNotEnrolled     = errors.New("student not enrolled in course")
)

// Course mirrors the `courses` table plus its enrollment set.
type Course struct {
	ID                 uint64         `json:"id"`
	Name               string         `json:"name"`
	Code               string         `json:"code"`
	Description        string         `json:"description"`
	Credits            int            `json:"credits"`
	TeacherID          uint64         `json:"teacherId"`
	Department         string         `json:"department"`
	Semester           string         `json:"semester"`
	AcademicYear       string         `json:"academicYear"`
	Schedule           []ScheduleSlot `json:"schedule"`
	EnrolledStudentIDs []uint64       `json:"enrolledStudents"`
	MaxCapacity        int            `json:"maxCapacity"`
	IsActive           bool           `json:"isActive"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
}

// IsEnrolled reports whether the student id is in the enrollment set.
func (c *Course) IsEnrolled(studentID uint64) bool {
	for _, id := range c.EnrolledStudentIDs {
		if id == studentID {
			return true
		}
	}
	return false
}

// EnrollmentGate decides whether studentID may be added to the course,
// checking activation, duplicates and capacity in that order. The caller
// must hold the course row locked so the decision stays atomic with the
// following insert.
func (c *Course) EnrollmentGate(studentID uint64) error {
	if !c.IsActive {
		return ErrCourseInactive
	}
	if c.IsEnrolled(studentID) {
		return ErrAlreadyEnrolled
	}
	if len(c.EnrolledStudentIDs) >= c.MaxCapacity {
		return ErrCapacityFull
	}
	return nil
}

// UnenrollmentGate decides whether studentID may be removed.
func (c *Course) UnenrollmentGate(studentID uint64) error {
	if !c.IsEnrolled(studentID) {
		return ErrNotEnrolled
	}
	return nil
}
