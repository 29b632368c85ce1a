package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ozgekaya/student-info-api/internal/validate"
)

func validCourseReq() courseCreateReq {
	return courseCreateReq{
		Name:         "Algorithms",
		Code:         "CS301",
		Credits:      4,
		Department:   "Computer Science",
		Semester:     "Fall",
		AcademicYear: "2026-2027",
		Schedule: []scheduleSlotReq{
			{Day: "Monday", StartTime: "09:00", EndTime: "11:00", Classroom: "B-204"},
		},
		MaxCapacity: 40,
	}
}

func TestCourseCreateBounds(t *testing.T) {
	require.NoError(t, validate.Struct(validCourseReq()))

	t.Run("credits capped at 8", func(t *testing.T) {
		req := validCourseReq()
		req.Credits = 8
		assert.NoError(t, validate.Struct(req))
		req.Credits = 9
		assert.Error(t, validate.Struct(req))
		req.Credits = 30
		assert.Error(t, validate.Struct(req))
		req.Credits = 0
		assert.Error(t, validate.Struct(req))
	})

	t.Run("capacity capped at 200", func(t *testing.T) {
		req := validCourseReq()
		req.MaxCapacity = 200
		assert.NoError(t, validate.Struct(req))
		req.MaxCapacity = 201
		assert.Error(t, validate.Struct(req))
		req.MaxCapacity = 500
		assert.Error(t, validate.Struct(req))
		req.MaxCapacity = 0
		assert.Error(t, validate.Struct(req))
	})

	t.Run("schedule slots are validated individually", func(t *testing.T) {
		req := validCourseReq()
		req.Schedule[0].StartTime = "25:00"
		assert.Error(t, validate.Struct(req))
	})
}

func TestCourseUpdateBounds(t *testing.T) {
	intp := func(n int) *int { return &n }

	assert.NoError(t, validate.Struct(courseUpdateReq{Credits: intp(8), MaxCapacity: intp(200)}))
	assert.Error(t, validate.Struct(courseUpdateReq{Credits: intp(9)}))
	assert.Error(t, validate.Struct(courseUpdateReq{MaxCapacity: intp(201)}))
	assert.Error(t, validate.Struct(courseUpdateReq{Credits: intp(0)}))
}
