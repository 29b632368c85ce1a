// Package policy decides who may see and change what. Every function is
// a pure predicate or transform over an authenticated Identity and
// already-loaded records, so the rules are testable without a database.
// Handlers load the facts, policy decides, repositories execute.
package policy

import (
	"github.com/ozgekaya/student-info-api/internal/auth"
	"github.com/ozgekaya/student-info-api/internal/model"
	"github.com/ozgekaya/student-info-api/internal/repository"
)

// CourseListFilter builds the listing filter for the caller. Teachers
// see their own courses, active or not; everyone else sees only active
// courses. ownTeacherID is the caller's teacher profile id and is
// ignored for other roles.
func CourseListFilter(id auth.Identity, ownTeacherID uint64) repository.CourseFilter {
	if id.Role == model.RoleTeacher {
		tid := ownTeacherID
		return repository.CourseFilter{TeacherID: &tid}
	}
	return repository.CourseFilter{ActiveOnly: true}
}

// StudentListFilter builds the student listing filter. Students may not
// list at all; teachers are confined to their own department; admins
// list everything. ownDepartment is the caller's teacher department.
func StudentListFilter(id auth.Identity, ownDepartment string) (repository.StudentFilter, bool) {
	switch id.Role {
	case model.RoleAdmin:
		return repository.StudentFilter{}, true
	case model.RoleTeacher:
		dep := ownDepartment
		return repository.StudentFilter{Department: &dep}, true
	default:
		return repository.StudentFilter{}, false
	}
}

// CanViewCourse reports whether the caller may read a single course.
// Teachers see only what they own, students see active courses plus any
// course they are enrolled in, admins see everything. studentProfileID
// is the caller's student profile id, zero when they have none.
func CanViewCourse(id auth.Identity, c model.Course, teacherProfileID, studentProfileID uint64) bool {
	switch id.Role {
	case model.RoleAdmin:
		return true
	case model.RoleTeacher:
		return c.TeacherID == teacherProfileID
	case model.RoleStudent:
		return c.IsActive || c.IsEnrolled(studentProfileID)
	}
	return false
}

// CanUpdateCourse reports whether the caller may change a course:
// the owning teacher or an admin.
func CanUpdateCourse(id auth.Identity, c model.Course, teacherProfileID uint64) bool {
	switch id.Role {
	case model.RoleAdmin:
		return true
	case model.RoleTeacher:
		return c.TeacherID == teacherProfileID
	}
	return false
}

// StripCourseUpdate drops the fields a non-admin may not touch: the
// course code, and reassignment to another teacher.
func StripCourseUpdate(id auth.Identity, upd repository.CourseUpdate) repository.CourseUpdate {
	if id.Role != model.RoleAdmin {
		upd.Code = nil
		upd.TeacherID = nil
	}
	return upd
}

// CanViewStudent reports whether the caller may read a student profile:
// the student themself, a teacher from the same department, or an
// admin. callerDepartment is the caller's teacher department.
func CanViewStudent(id auth.Identity, st model.Student, callerDepartment string) bool {
	switch id.Role {
	case model.RoleAdmin:
		return true
	case model.RoleTeacher:
		return st.Department == callerDepartment
	case model.RoleStudent:
		return st.UserID == id.UserID
	}
	return false
}

// CanUpdateStudent reports whether the caller may change a student
// profile: the student themself or an admin. Teachers can look but not
// touch.
func CanUpdateStudent(id auth.Identity, st model.Student) bool {
	return id.Role == model.RoleAdmin || st.UserID == id.UserID
}

// TeacherView is how much of a teacher profile the caller gets to see.
type TeacherView int

const (
	// TeacherViewFull exposes the whole profile.
	TeacherViewFull TeacherView = iota
	// TeacherViewStaff hides contact details and the employee number.
	TeacherViewStaff
	// TeacherViewStudent additionally hides the hire date.
	TeacherViewStudent
)

// TeacherViewFor picks the projection of a teacher profile for the
// caller. The teacher themself and admins get everything; colleagues
// lose phone, office and employee number; students also lose the hire
// date.
func TeacherViewFor(id auth.Identity, t model.Teacher) TeacherView {
	if id.Role == model.RoleAdmin || t.UserID == id.UserID {
		return TeacherViewFull
	}
	if id.Role == model.RoleTeacher {
		return TeacherViewStaff
	}
	return TeacherViewStudent
}

// CanUpdateTeacher reports whether the caller may change a teacher
// profile: the teacher themself or an admin.
func CanUpdateTeacher(id auth.Identity, t model.Teacher) bool {
	return id.Role == model.RoleAdmin || t.UserID == id.UserID
}

// StripTeacherSelfUpdate drops the employment fields a teacher may not
// change on their own profile. Rank, department, employee number and
// hire date stay admin-only.
func StripTeacherSelfUpdate(id auth.Identity, upd repository.TeacherUpdate) repository.TeacherUpdate {
	if id.Role != model.RoleAdmin {
		upd.Title = nil
		upd.Department = nil
		upd.EmployeeNumber = nil
		upd.HireDate = nil
	}
	return upd
}

// CanAccessUser reports whether the caller may view or update a user
// account: themselves or an admin.
func CanAccessUser(id auth.Identity, userID uint64) bool {
	return id.Role == model.RoleAdmin || id.UserID == userID
}

// StripUserUpdate drops is_active for non-admin callers; users do not
// disable or re-enable accounts, their own included.
func StripUserUpdate(id auth.Identity, upd repository.UserUpdate) repository.UserUpdate {
	if id.Role != model.RoleAdmin {
		upd.IsActive = nil
	}
	return upd
}

// CanDeleteUser reports whether the caller may delete a user account.
// Only admins delete accounts, and never their own.
func CanDeleteUser(id auth.Identity, userID uint64) bool {
	return id.Role == model.RoleAdmin && id.UserID != userID
}

// CanActOnStudent reports whether the caller may enroll or unenroll the
// given student. Students act only on their own profile; teachers and
// admins act on anyone.
func CanActOnStudent(id auth.Identity, st model.Student) bool {
	if id.Role == model.RoleStudent {
		return st.UserID == id.UserID
	}
	return true
}
