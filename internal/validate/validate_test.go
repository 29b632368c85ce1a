package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCourseCodePattern(t *testing.T) {
	for _, ok := range []string{"CS101", "MATH201", "EE999", "ABCD123"} {
		assert.NoError(t, Var(ok, "coursecode"), ok)
	}
	for _, bad := range []string{"C101", "cs101", "CS1011", "CS10", "ABCDE123", "CS-101", ""} {
		assert.Error(t, Var(bad, "coursecode"), bad)
	}
}

func TestAcademicYearPattern(t *testing.T) {
	assert.NoError(t, Var("2024-2025", "academicyear"))
	assert.Error(t, Var("2024/2025", "academicyear"))
	assert.Error(t, Var("24-25", "academicyear"))
	assert.Error(t, Var("2024-25", "academicyear"))
}

func TestHHMMPattern(t *testing.T) {
	for _, ok := range []string{"00:00", "09:30", "13:45", "23:59"} {
		assert.NoError(t, Var(ok, "hhmm"), ok)
	}
	for _, bad := range []string{"24:00", "9:30", "12:60", "12-30", "noon"} {
		assert.Error(t, Var(bad, "hhmm"), bad)
	}
}

func TestEnumTags(t *testing.T) {
	assert.NoError(t, Var("student", "role"))
	assert.Error(t, Var("superuser", "role"))

	assert.NoError(t, Var("Fall", "semester"))
	assert.Error(t, Var("Winter", "semester"))

	assert.NoError(t, Var("Wednesday", "weekday"))
	assert.Error(t, Var("wednesday", "weekday"))

	assert.NoError(t, Var("Doçent", "teachertitle"))
	assert.Error(t, Var("Dekan", "teachertitle"))
}

func TestStructFlattensFailures(t *testing.T) {
	type req struct {
		Email string `validate:"required,email"`
		Code  string `validate:"required,coursecode"`
	}
	err := Struct(&req{Email: "not-an-email", Code: "bad"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Email")
	assert.Contains(t, err.Error(), "Code")

	assert.NoError(t, Struct(&req{Email: "a@b.edu", Code: "CS101"}))
}
