package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCourse() Course {
	return Course{
		ID:                 1,
		Name:               "Algorithms",
		Code:               "CS301",
		MaxCapacity:        2,
		IsActive:           true,
		EnrolledStudentIDs: []uint64{10},
	}
}

func TestEnrollmentGate(t *testing.T) {
	t.Run("allows a new student while seats remain", func(t *testing.T) {
		c := testCourse()
		require.NoError(t, c.EnrollmentGate(20))
	})

	t.Run("rejects inactive course before anything else", func(t *testing.T) {
		c := testCourse()
		c.IsActive = false
		// Even an already-enrolled student hits the activation gate first.
		assert.ErrorIs(t, c.EnrollmentGate(10), ErrCourseInactive)
		assert.ErrorIs(t, c.EnrollmentGate(20), ErrCourseInactive)
	})

	t.Run("rejects duplicate enrollment", func(t *testing.T) {
		c := testCourse()
		assert.ErrorIs(t, c.EnrollmentGate(10), ErrAlreadyEnrolled)
	})

	t.Run("duplicate wins over capacity for an enrolled student", func(t *testing.T) {
		c := testCourse()
		c.EnrolledStudentIDs = []uint64{10, 11}
		assert.ErrorIs(t, c.EnrollmentGate(10), ErrAlreadyEnrolled)
	})

	t.Run("rejects when full", func(t *testing.T) {
		c := testCourse()
		c.EnrolledStudentIDs = []uint64{10, 11}
		assert.ErrorIs(t, c.EnrollmentGate(20), ErrCapacityFull)
	})

	t.Run("boundary seat is grantable exactly once", func(t *testing.T) {
		c := testCourse()
		require.NoError(t, c.EnrollmentGate(20))
		c.EnrolledStudentIDs = append(c.EnrolledStudentIDs, 20)
		assert.ErrorIs(t, c.EnrollmentGate(30), ErrCapacityFull)
	})
}

func TestUnenrollmentGate(t *testing.T) {
	c := testCourse()
	assert.NoError(t, c.UnenrollmentGate(10))
	assert.ErrorIs(t, c.UnenrollmentGate(20), ErrNotEnrolled)

	// Deactivating the course does not block leaving it.
	c.IsActive = false
	assert.NoError(t, c.UnenrollmentGate(10))
}

func TestIsEnrolled(t *testing.T) {
	c := testCourse()
	assert.True(t, c.IsEnrolled(10))
	assert.False(t, c.IsEnrolled(99))

	c.EnrolledStudentIDs = nil
	assert.False(t, c.IsEnrolled(10))
}

func TestValidSemester(t *testing.T) {
	assert.True(t, ValidSemester(SemesterFall))
	assert.True(t, ValidSemester(SemesterSpring))
	assert.True(t, ValidSemester(SemesterSummer))
	assert.False(t, ValidSemester("Winter"))
	assert.False(t, ValidSemester("fall"))
}

func TestValidScheduleDay(t *testing.T) {
	assert.True(t, ValidScheduleDay("Monday"))
	assert.True(t, ValidScheduleDay("Sunday"))
	assert.False(t, ValidScheduleDay("monday"))
	assert.False(t, ValidScheduleDay(""))
}
