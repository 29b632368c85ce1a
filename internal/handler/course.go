package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ozgekaya/student-info-api/internal/auth"
	"github.com/ozgekaya/student-info-api/internal/config"
	"github.com/ozgekaya/student-info-api/internal/model"
	"github.com/ozgekaya/student-info-api/internal/policy"
	"github.com/ozgekaya/student-info-api/internal/queue"
	"github.com/ozgekaya/student-info-api/internal/repository"
	queue_publisher "github.com/ozgekaya/student-info-api/internal/service"
	"github.com/ozgekaya/student-info-api/internal/utils/response"
	"github.com/ozgekaya/student-info-api/internal/validate"
)

// CourseHandler serves the course and enrollment endpoints.
type CourseHandler struct {
	Cfg      config.Config
	Courses  *repository.CourseRepo
	Teachers *repository.TeacherRepo
	Students *repository.StudentRepo
}

func NewCourseHandler(cfg config.Config, co *repository.CourseRepo, t *repository.TeacherRepo, s *repository.StudentRepo) *CourseHandler {
	return &CourseHandler{Cfg: cfg, Courses: co, Teachers: t, Students: s}
}

type scheduleSlotReq struct {
	Day       string `json:"day" validate:"required,weekday"`
	StartTime string `json:"startTime" validate:"required,hhmm"`
	EndTime   string `json:"endTime" validate:"required,hhmm"`
	Classroom string `json:"classroom" validate:"required,min=1,max=50"`
}

type courseCreateReq struct {
	Name         string            `json:"name" validate:"required,min=1,max=100"`
	Code         string            `json:"code" validate:"required,coursecode"`
	Description  string            `json:"description" validate:"max=500"`
	Credits      int               `json:"credits" validate:"required,min=1,max=8"`
	TeacherID    uint64            `json:"teacherId"`
	Department   string            `json:"department" validate:"required,min=1,max=100"`
	Semester     string            `json:"semester" validate:"required,semester"`
	AcademicYear string            `json:"academicYear" validate:"required,academicyear"`
	Schedule     []scheduleSlotReq `json:"schedule" validate:"required,min=1,dive"`
	MaxCapacity  int               `json:"maxCapacity" validate:"required,min=1,max=200"`
	IsActive     *bool             `json:"isActive"`
}

type courseUpdateReq struct {
	Name         *string           `json:"name" validate:"omitempty,min=1,max=100"`
	Code         *string           `json:"code" validate:"omitempty,coursecode"`
	Description  *string           `json:"description" validate:"omitempty,max=500"`
	Credits      *int              `json:"credits" validate:"omitempty,min=1,max=8"`
	TeacherID    *uint64           `json:"teacherId" validate:"omitempty,min=1"`
	Department   *string           `json:"department" validate:"omitempty,min=1,max=100"`
	Semester     *string           `json:"semester" validate:"omitempty,semester"`
	AcademicYear *string           `json:"academicYear" validate:"omitempty,academicyear"`
	Schedule     []scheduleSlotReq `json:"schedule" validate:"omitempty,min=1,dive"`
	MaxCapacity  *int              `json:"maxCapacity" validate:"omitempty,min=1,max=200"`
	IsActive     *bool             `json:"isActive"`
}

type enrollReq struct {
	StudentID uint64 `json:"studentId"`
}

// courseDetail is the single-course response with the roster attached.
type courseDetail struct {
	model.Course
	Roster []repository.EnrolledStudent `json:"roster"`
}

func toSlots(in []scheduleSlotReq) []model.ScheduleSlot {
	out := make([]model.ScheduleSlot, 0, len(in))
	for _, s := range in {
		out = append(out, model.ScheduleSlot{
			Day: s.Day, StartTime: s.StartTime, EndTime: s.EndTime, Classroom: s.Classroom,
		})
	}
	return out
}

// callerTeacherID resolves the caller's teacher profile id, zero when
// they have none.
func (h *CourseHandler) callerTeacherID(ctx context.Context, id auth.Identity) (uint64, error) {
	if id.Role != model.RoleTeacher {
		return 0, nil
	}
	t, err := h.Teachers.GetByUserID(ctx, id.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return t.ID, nil
}

// callerStudentID resolves the caller's student profile id, zero when
// they have none.
func (h *CourseHandler) callerStudentID(ctx context.Context, id auth.Identity) (uint64, error) {
	if id.Role != model.RoleStudent {
		return 0, nil
	}
	st, err := h.Students.GetByUserID(ctx, id.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return st.ID, nil
}

// Create opens a new course. Teachers always own what they create; any
// teacherId they send is overridden with their own profile. Admins must
// name an existing teacher.
func (h *CourseHandler) Create(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return fail(c, h.Cfg, http.StatusUnauthorized, "unauthorized", err)
	}
	var req courseCreateReq
	if err := c.Bind(&req); err != nil {
		return fail(c, h.Cfg, http.StatusBadRequest, "invalid request body", err)
	}
	if err := validate.Struct(&req); err != nil {
		return fail(c, h.Cfg, http.StatusBadRequest, "validation failed", err)
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	teacherID := req.TeacherID
	if id.Role == model.RoleTeacher {
		own, err := h.callerTeacherID(ctx, id)
		if err != nil {
			return serverError(c, h.Cfg, err)
		}
		if own == 0 {
			return fail(c, h.Cfg, http.StatusNotFound, "teacher profile not found", nil)
		}
		teacherID = own
	} else {
		if teacherID == 0 {
			return fail(c, h.Cfg, http.StatusBadRequest, "teacherId required", nil)
		}
		if _, err := h.Teachers.GetByID(ctx, teacherID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fail(c, h.Cfg, http.StatusNotFound, "teacher not found", err)
			}
			return serverError(c, h.Cfg, err)
		}
	}
	if taken, err := h.Courses.CodeExists(ctx, req.Code, 0); err != nil {
		return serverError(c, h.Cfg, err)
	} else if taken {
		return fail(c, h.Cfg, http.StatusConflict, "course code already in use", nil)
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	course, err := h.Courses.Create(ctx, model.Course{
		Name:         req.Name,
		Code:         req.Code,
		Description:  req.Description,
		Credits:      req.Credits,
		TeacherID:    teacherID,
		Department:   req.Department,
		Semester:     req.Semester,
		AcademicYear: req.AcademicYear,
		Schedule:     toSlots(req.Schedule),
		MaxCapacity:  req.MaxCapacity,
		IsActive:     active,
	})
	if err != nil {
		if errors.Is(err, repository.ErrCodeExists) {
			return fail(c, h.Cfg, http.StatusConflict, "course code already in use", err)
		}
		return serverError(c, h.Cfg, err)
	}
	return response.OK(c, http.StatusCreated, "course created", course)
}

// List pages through courses. Teachers see everything they own, active
// or not; students and admins browse active courses.
func (h *CourseHandler) List(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return fail(c, h.Cfg, http.StatusUnauthorized, "unauthorized", err)
	}
	page, limit, offset := pageParams(c)

	ctx, cancel := dbCtx(c)
	defer cancel()

	ownTeacherID, err := h.callerTeacherID(ctx, id)
	if err != nil {
		return serverError(c, h.Cfg, err)
	}
	filter := policy.CourseListFilter(id, ownTeacherID)

	courses, total, err := h.Courses.List(ctx, filter, limit, offset)
	if err != nil {
		return serverError(c, h.Cfg, err)
	}
	return response.Page(c, "courses", courses, response.NewPagination(page, limit, total))
}

// Get returns one course with its roster, policy-gated per role.
func (h *CourseHandler) Get(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return fail(c, h.Cfg, http.StatusUnauthorized, "unauthorized", err)
	}
	courseID, err := paramID(c, "id")
	if err != nil {
		return fail(c, h.Cfg, http.StatusBadRequest, "invalid course id", err)
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	course, err := h.Courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, h.Cfg, http.StatusNotFound, "course not found", err)
		}
		return serverError(c, h.Cfg, err)
	}
	teacherID, err := h.callerTeacherID(ctx, id)
	if err != nil {
		return serverError(c, h.Cfg, err)
	}
	studentID, err := h.callerStudentID(ctx, id)
	if err != nil {
		return serverError(c, h.Cfg, err)
	}
	if !policy.CanViewCourse(id, course, teacherID, studentID) {
		return fail(c, h.Cfg, http.StatusForbidden, "forbidden", nil)
	}
	roster, err := h.Courses.EnrolledStudents(ctx, courseID)
	if err != nil {
		return serverError(c, h.Cfg, err)
	}
	return response.OK(c, http.StatusOK, "course", courseDetail{Course: course, Roster: roster})
}

// Update changes a course: the owning teacher or an admin. Teachers
// cannot change the code; that edit is dropped silently.
func (h *CourseHandler) Update(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return fail(c, h.Cfg, http.StatusUnauthorized, "unauthorized", err)
	}
	courseID, err := paramID(c, "id")
	if err != nil {
		return fail(c, h.Cfg, http.StatusBadRequest, "invalid course id", err)
	}
	var req courseUpdateReq
	if err := c.Bind(&req); err != nil {
		return fail(c, h.Cfg, http.StatusBadRequest, "invalid request body", err)
	}
	if err := validate.Struct(&req); err != nil {
		return fail(c, h.Cfg, http.StatusBadRequest, "validation failed", err)
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	course, err := h.Courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, h.Cfg, http.StatusNotFound, "course not found", err)
		}
		return serverError(c, h.Cfg, err)
	}
	teacherID, err := h.callerTeacherID(ctx, id)
	if err != nil {
		return serverError(c, h.Cfg, err)
	}
	if !policy.CanUpdateCourse(id, course, teacherID) {
		return fail(c, h.Cfg, http.StatusForbidden, "forbidden", nil)
	}

	upd := policy.StripCourseUpdate(id, repository.CourseUpdate{
		Name:         req.Name,
		Code:         req.Code,
		Description:  req.Description,
		Credits:      req.Credits,
		TeacherID:    req.TeacherID,
		Department:   req.Department,
		Semester:     req.Semester,
		AcademicYear: req.AcademicYear,
		Schedule:     toSlots(req.Schedule),
		MaxCapacity:  req.MaxCapacity,
		IsActive:     req.IsActive,
	})
	if req.Schedule == nil {
		upd.Schedule = nil
	}
	if upd.Code != nil {
		if taken, err := h.Courses.CodeExists(ctx, *upd.Code, courseID); err != nil {
			return serverError(c, h.Cfg, err)
		} else if taken {
			return fail(c, h.Cfg, http.StatusConflict, "course code already in use", nil)
		}
	}
	if upd.TeacherID != nil {
		if _, err := h.Teachers.GetByID(ctx, *upd.TeacherID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fail(c, h.Cfg, http.StatusNotFound, "teacher not found", err)
			}
			return serverError(c, h.Cfg, err)
		}
	}

	course, err = h.Courses.Update(ctx, courseID, upd)
	if err != nil {
		if errors.Is(err, repository.ErrCodeExists) {
			return fail(c, h.Cfg, http.StatusConflict, "course code already in use", err)
		}
		return serverError(c, h.Cfg, err)
	}
	return response.OK(c, http.StatusOK, "course updated", course)
}

// Delete removes a course. Admin only by route; refused while any
// student is still enrolled.
func (h *CourseHandler) Delete(c echo.Context) error {
	courseID, err := paramID(c, "id")
	if err != nil {
		return fail(c, h.Cfg, http.StatusBadRequest, "invalid course id", err)
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Courses.Delete(ctx, courseID); err != nil {
		if errors.Is(err, repository.ErrInvalidState) {
			return fail(c, h.Cfg, http.StatusBadRequest, "course still has enrolled students", err)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, h.Cfg, http.StatusNotFound, "course not found", err)
		}
		return serverError(c, h.Cfg, err)
	}
	return response.OK(c, http.StatusOK, "course deleted", nil)
}

// resolveEnrollTarget picks the student an enrollment acts on. Students
// default to their own profile and may not name anyone else; teachers
// and admins must name a student.
func (h *CourseHandler) resolveEnrollTarget(ctx context.Context, id auth.Identity, studentID uint64) (model.Student, int, string, error) {
	if id.Role == model.RoleStudent && studentID == 0 {
		st, err := h.Students.GetByUserID(ctx, id.UserID)
		if errors.Is(err, repository.ErrNotFound) {
			return model.Student{}, http.StatusNotFound, "student profile not found", err
		}
		if err != nil {
			return model.Student{}, http.StatusInternalServerError, "internal server error", err
		}
		return st, 0, "", nil
	}
	if studentID == 0 {
		return model.Student{}, http.StatusBadRequest, "studentId required", nil
	}
	st, err := h.Students.GetByID(ctx, studentID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Student{}, http.StatusNotFound, "student not found", err
	}
	if err != nil {
		return model.Student{}, http.StatusInternalServerError, "internal server error", err
	}
	if !policy.CanActOnStudent(id, st) {
		return model.Student{}, http.StatusForbidden, "cannot act on another student", nil
	}
	return st, 0, "", nil
}

// publishEnrollment emits the change event in the background; the
// enrollment itself never waits on the broker.
func publishEnrollment(action string, course model.Course, st model.Student, actor auth.Identity) {
	ev := queue.EnrollmentChangedEvent{
		Action:        action,
		CourseID:      course.ID,
		CourseCode:    course.Code,
		CourseName:    course.Name,
		StudentID:     st.ID,
		StudentNumber: st.StudentNumber,
		ActorUserID:   actor.UserID,
		ActorRole:     actor.Role,
		Enrolled:      len(course.EnrolledStudentIDs),
		MaxCapacity:   course.MaxCapacity,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queue_publisher.PublishEnrollmentChanged(ctx, ev)
	}()
}

// Enroll adds a student to a course. The activation check runs before
// the target is resolved so an inactive course answers 400 even to a
// caller with no profile.
func (h *CourseHandler) Enroll(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return fail(c, h.Cfg, http.StatusUnauthorized, "unauthorized", err)
	}
	courseID, err := paramID(c, "id")
	if err != nil {
		return fail(c, h.Cfg, http.StatusBadRequest, "invalid course id", err)
	}
	var req enrollReq
	if err := c.Bind(&req); err != nil {
		return fail(c, h.Cfg, http.StatusBadRequest, "invalid request body", err)
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	course, err := h.Courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, h.Cfg, http.StatusNotFound, "course not found", err)
		}
		return serverError(c, h.Cfg, err)
	}
	if !course.IsActive {
		return fail(c, h.Cfg, http.StatusBadRequest, "cannot enroll in inactive course", nil)
	}

	st, status, msg, err := h.resolveEnrollTarget(ctx, id, req.StudentID)
	if status != 0 {
		return fail(c, h.Cfg, status, msg, err)
	}

	course, err = h.Courses.Enroll(ctx, courseID, st.ID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrCourseInactive):
			return fail(c, h.Cfg, http.StatusBadRequest, "cannot enroll in inactive course", err)
		case errors.Is(err, model.ErrAlreadyEnrolled):
			return fail(c, h.Cfg, http.StatusConflict, "student already enrolled", err)
		case errors.Is(err, model.ErrCapacityFull):
			return fail(c, h.Cfg, http.StatusBadRequest, "course capacity full", err)
		case errors.Is(err, repository.ErrNotFound):
			return fail(c, h.Cfg, http.StatusNotFound, "course not found", err)
		}
		return serverError(c, h.Cfg, err)
	}
	publishEnrollment(queue.ActionEnrolled, course, st, id)
	return response.OK(c, http.StatusOK, "student enrolled", course)
}

// Unenroll removes a student from a course. Works on inactive courses
// too; only membership matters.
func (h *CourseHandler) Unenroll(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return fail(c, h.Cfg, http.StatusUnauthorized, "unauthorized", err)
	}
	courseID, err := paramID(c, "id")
	if err != nil {
		return fail(c, h.Cfg, http.StatusBadRequest, "invalid course id", err)
	}
	studentID, err := paramID(c, "studentId")
	if err != nil {
		return fail(c, h.Cfg, http.StatusBadRequest, "invalid student id", err)
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if _, err := h.Courses.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, h.Cfg, http.StatusNotFound, "course not found", err)
		}
		return serverError(c, h.Cfg, err)
	}
	st, status, msg, err := h.resolveEnrollTarget(ctx, id, studentID)
	if status != 0 {
		return fail(c, h.Cfg, status, msg, err)
	}

	course, err := h.Courses.Unenroll(ctx, courseID, st.ID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNotEnrolled):
			return fail(c, h.Cfg, http.StatusNotFound, "student not enrolled in course", err)
		case errors.Is(err, repository.ErrNotFound):
			return fail(c, h.Cfg, http.StatusNotFound, "course not found", err)
		}
		return serverError(c, h.Cfg, err)
	}
	publishEnrollment(queue.ActionUnenrolled, course, st, id)
	return response.OK(c, http.StatusOK, "student unenrolled", course)
}
