// Package queue defines message payloads exchanged over the message broker.
package queue

// EnrollmentQueueName is the durable queue enrollment changes flow over.
const EnrollmentQueueName = "enrollment.changed"

// Actions carried by EnrollmentChangedEvent.
const (
	ActionEnrolled   = "enrolled"
	ActionUnenrolled = "unenrolled"
)

// EnrollmentChangedEvent is published whenever a student joins or
// leaves a course. It carries enough context for downstream consumers
// to log or notify without querying the primary database.
type EnrollmentChangedEvent struct {
	Action        string `json:"action"`
	CourseID      uint64 `json:"course_id"`
	CourseCode    string `json:"course_code"`
	CourseName    string `json:"course_name"`
	StudentID     uint64 `json:"student_id"`
	StudentNumber string `json:"student_number"`
	ActorUserID   uint64 `json:"actor_user_id"`
	ActorRole     string `json:"actor_role"`
	Enrolled      int    `json:"enrolled"`
	MaxCapacity   int    `json:"max_capacity"`
	OccurredAt    string `json:"occurred_at"`
}
