package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ozgekaya/student-info-api/internal/auth"
	"github.com/ozgekaya/student-info-api/internal/model"
	"github.com/ozgekaya/student-info-api/internal/repository"
)

var (
	admin      = auth.Identity{UserID: 1, Email: "admin@uni.edu", Role: model.RoleAdmin}
	teacherOne = auth.Identity{UserID: 2, Email: "t1@uni.edu", Role: model.RoleTeacher}
	studentOne = auth.Identity{UserID: 3, Email: "s1@uni.edu", Role: model.RoleStudent}
)

func TestCourseListFilter(t *testing.T) {
	f := CourseListFilter(teacherOne, 7)
	require.NotNil(t, f.TeacherID)
	assert.Equal(t, uint64(7), *f.TeacherID)
	assert.False(t, f.ActiveOnly, "teachers see their inactive courses too")

	f = CourseListFilter(studentOne, 0)
	assert.Nil(t, f.TeacherID)
	assert.True(t, f.ActiveOnly)

	f = CourseListFilter(admin, 0)
	assert.Nil(t, f.TeacherID)
	assert.True(t, f.ActiveOnly)
}

func TestStudentListFilter(t *testing.T) {
	f, ok := StudentListFilter(admin, "")
	require.True(t, ok)
	assert.Nil(t, f.Department)

	f, ok = StudentListFilter(teacherOne, "Mathematics")
	require.True(t, ok)
	require.NotNil(t, f.Department)
	assert.Equal(t, "Mathematics", *f.Department)

	_, ok = StudentListFilter(studentOne, "")
	assert.False(t, ok)
}

func TestCanViewCourse(t *testing.T) {
	active := model.Course{ID: 1, TeacherID: 7, IsActive: true}
	inactive := model.Course{ID: 2, TeacherID: 7, IsActive: false, EnrolledStudentIDs: []uint64{30}}

	assert.True(t, CanViewCourse(admin, inactive, 0, 0))

	assert.True(t, CanViewCourse(teacherOne, active, 7, 0))
	assert.False(t, CanViewCourse(teacherOne, active, 8, 0), "teachers do not see courses they do not own")

	assert.True(t, CanViewCourse(studentOne, active, 0, 0))
	assert.False(t, CanViewCourse(studentOne, inactive, 0, 31))
	assert.True(t, CanViewCourse(studentOne, inactive, 0, 30), "enrollment keeps an inactive course visible")
}

func TestCanUpdateCourseAndStrip(t *testing.T) {
	c := model.Course{ID: 1, TeacherID: 7}
	assert.True(t, CanUpdateCourse(admin, c, 0))
	assert.True(t, CanUpdateCourse(teacherOne, c, 7))
	assert.False(t, CanUpdateCourse(teacherOne, c, 8))
	assert.False(t, CanUpdateCourse(studentOne, c, 0))

	code := "CS999"
	name := "New name"
	newOwner := uint64(9)
	upd := StripCourseUpdate(teacherOne, repository.CourseUpdate{Code: &code, Name: &name, TeacherID: &newOwner})
	assert.Nil(t, upd.Code)
	assert.Nil(t, upd.TeacherID, "teachers cannot hand a course to someone else")
	assert.Equal(t, &name, upd.Name)

	upd = StripCourseUpdate(admin, repository.CourseUpdate{Code: &code, TeacherID: &newOwner})
	assert.Equal(t, &code, upd.Code)
	assert.Equal(t, &newOwner, upd.TeacherID, "admins may reassign a course")
}

func TestCanViewStudent(t *testing.T) {
	st := model.Student{ID: 5, UserID: 3, Department: "Physics"}

	assert.True(t, CanViewStudent(admin, st, ""))
	assert.True(t, CanViewStudent(studentOne, st, ""), "students see their own profile")
	assert.False(t, CanViewStudent(auth.Identity{UserID: 9, Role: model.RoleStudent}, st, ""))
	assert.True(t, CanViewStudent(teacherOne, st, "Physics"))
	assert.False(t, CanViewStudent(teacherOne, st, "Mathematics"))
}

func TestCanUpdateStudent(t *testing.T) {
	st := model.Student{ID: 5, UserID: 3}
	assert.True(t, CanUpdateStudent(admin, st))
	assert.True(t, CanUpdateStudent(studentOne, st))
	assert.False(t, CanUpdateStudent(teacherOne, st), "teachers view but never edit students")
}

func TestTeacherViewFor(t *testing.T) {
	profile := model.Teacher{ID: 4, UserID: 2, Department: "Physics"}

	assert.Equal(t, TeacherViewFull, TeacherViewFor(admin, profile))
	assert.Equal(t, TeacherViewFull, TeacherViewFor(teacherOne, profile), "own profile is fully visible")

	colleague := auth.Identity{UserID: 8, Role: model.RoleTeacher}
	assert.Equal(t, TeacherViewStaff, TeacherViewFor(colleague, profile))
	assert.Equal(t, TeacherViewStudent, TeacherViewFor(studentOne, profile))
}

func TestStripTeacherSelfUpdate(t *testing.T) {
	title := "Profesör"
	dep := "Physics"
	num := "EMP-9"
	hired := time.Date(2020, 9, 1, 0, 0, 0, 0, time.UTC)
	spec := "Optics"

	upd := StripTeacherSelfUpdate(teacherOne, repository.TeacherUpdate{
		Title: &title, Department: &dep, EmployeeNumber: &num, HireDate: &hired,
		Specialization: &spec,
	})
	assert.Nil(t, upd.Title)
	assert.Nil(t, upd.Department)
	assert.Nil(t, upd.EmployeeNumber)
	assert.Nil(t, upd.HireDate)
	assert.Equal(t, &spec, upd.Specialization, "ordinary fields survive")

	upd = StripTeacherSelfUpdate(admin, repository.TeacherUpdate{Title: &title})
	assert.Equal(t, &title, upd.Title)
}

func TestUserAccessRules(t *testing.T) {
	assert.True(t, CanAccessUser(admin, 99))
	assert.True(t, CanAccessUser(studentOne, 3))
	assert.False(t, CanAccessUser(studentOne, 4))

	active := true
	upd := StripUserUpdate(studentOne, repository.UserUpdate{IsActive: &active})
	assert.Nil(t, upd.IsActive)
	upd = StripUserUpdate(admin, repository.UserUpdate{IsActive: &active})
	assert.Equal(t, &active, upd.IsActive)

	assert.True(t, CanDeleteUser(admin, 99))
	assert.False(t, CanDeleteUser(admin, admin.UserID), "admins never delete themselves")
	assert.False(t, CanDeleteUser(teacherOne, 99))
}

func TestCanActOnStudent(t *testing.T) {
	own := model.Student{ID: 5, UserID: 3}
	other := model.Student{ID: 6, UserID: 4}

	assert.True(t, CanActOnStudent(studentOne, own))
	assert.False(t, CanActOnStudent(studentOne, other))
	assert.True(t, CanActOnStudent(teacherOne, other))
	assert.True(t, CanActOnStudent(admin, other))
}
