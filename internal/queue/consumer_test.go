package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleMessageAppendsAuditLine(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	ev := EnrollmentChangedEvent{
		Action:        ActionEnrolled,
		CourseID:      3,
		CourseCode:    "CS301",
		CourseName:    "Algorithms",
		StudentID:     12,
		StudentNumber: "2021001",
		ActorUserID:   5,
		ActorRole:     "student",
		Enrolled:      18,
		MaxCapacity:   30,
		OccurredAt:    "2026-08-30T10:00:00Z",
	}
	body, err := json.Marshal(ev)
	require.NoError(t, err)

	require.NoError(t, handleMessage(body))
	require.NoError(t, handleMessage(body))

	data, err := os.ReadFile(filepath.Join(dir, "logs", "enrollment.log"))
	require.NoError(t, err)
	line := string(data)
	assert.Contains(t, line, "Student enrolled")
	assert.Contains(t, line, "course=CS301")
	assert.Contains(t, line, "student_id=12 (2021001)")
	assert.Contains(t, line, "seats=18/30")
	assert.Equal(t, 2, countLines(line))
}

func countLines(s string) int {
	n := 0
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	return n
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	assert.Error(t, handleMessage([]byte("{not json")))
}
