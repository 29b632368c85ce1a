package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ozgekaya/student-info-api/internal/config"
	"github.com/ozgekaya/student-info-api/internal/model"
	"github.com/ozgekaya/student-info-api/internal/policy"
	"github.com/ozgekaya/student-info-api/internal/repository"
	"github.com/ozgekaya/student-info-api/internal/utils/response"
	"github.com/ozgekaya/student-info-api/internal/validate"
)

// StudentHandler serves the student profile endpoints.
type StudentHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Students *repository.StudentRepo
	Teachers *repository.TeacherRepo
}

func NewStudentHandler(cfg config.Config, u *repository.UserRepo, s *repository.StudentRepo, t *repository.TeacherRepo) *StudentHandler {
	return &StudentHandler{Cfg: cfg, Users: u, Students: s, Teachers: t}
}

type studentCreateReq struct {
	UserID         uint64  `json:"userId" validate:"required,min=1"`
	StudentNumber  string  `json:"studentNumber" validate:"required,min=1,max=32"`
	ClassLevel     string  `json:"classLevel" validate:"required,min=1,max=32"`
	Department     string  `json:"department" validate:"required,min=1,max=100"`
	PhoneNumber    *string `json:"phoneNumber" validate:"omitempty,max=32"`
	Address        *string `json:"address" validate:"omitempty,max=200"`
	EnrollmentDate string  `json:"enrollmentDate" validate:"required"`
}

type studentUpdateReq struct {
	StudentNumber  *string `json:"studentNumber" validate:"omitempty,min=1,max=32"`
	ClassLevel     *string `json:"classLevel" validate:"omitempty,min=1,max=32"`
	Department     *string `json:"department" validate:"omitempty,min=1,max=100"`
	PhoneNumber    *string `json:"phoneNumber" validate:"omitempty,max=32"`
	Address        *string `json:"address" validate:"omitempty,max=200"`
	EnrollmentDate *string `json:"enrollmentDate"`
}

// parseDate accepts a full timestamp or a bare date.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// callerDepartment loads the teacher department of the caller, empty
// when the caller has no teacher profile.
func (h *StudentHandler) callerDepartment(c echo.Context, userID uint64) (string, error) {
	ctx, cancel := dbCtx(c)
	defer cancel()
	t, err := h.Teachers.GetByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return t.Department, nil
}

// Create registers a student profile for an existing user. Admin only
// by route. The user must exist, must hold the student role, must not
// already have a profile, and the student number must be free; the
// checks run in that order so the client gets the most specific error.
func (h *StudentHandler) Create(c echo.Context) error {
	var req studentCreateReq
	if err := c.Bind(&req); err != nil {
		return fail(c, h.Cfg, http.StatusBadRequest, "invalid request body", err)
	}
	if err := validate.Struct(&req); err != nil {
		return fail(c, h.Cfg, http.StatusBadRequest, "validation failed", err)
	}
	enrolledAt, err := parseDate(req.EnrollmentDate)
	if err != nil {
		return fail(c, h.Cfg, http.StatusBadRequest, "invalid enrollmentDate", err)
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, h.Cfg, http.StatusNotFound, "user not found", err)
		}
		return serverError(c, h.Cfg, err)
	}
	if u.Role != model.RoleStudent {
		return fail(c, h.Cfg, http.StatusBadRequest, "user does not have the student role", nil)
	}
	if _, err := h.Students.GetByUserID(ctx, req.UserID); err == nil {
		return fail(c, h.Cfg, http.StatusConflict, "student profile already exists", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return serverError(c, h.Cfg, err)
	}
	if taken, err := h.Students.NumberExists(ctx, req.StudentNumber, 0); err != nil {
		return serverError(c, h.Cfg, err)
	} else if taken {
		return fail(c, h.Cfg, http.StatusConflict, "student number already in use", nil)
	}

	st, err := h.Students.Create(ctx, model.Student{
		UserID:         req.UserID,
		StudentNumber:  req.StudentNumber,
		ClassLevel:     req.ClassLevel,
		Department:     req.Department,
		PhoneNumber:    req.PhoneNumber,
		Address:        req.Address,
		EnrollmentDate: enrolledAt,
	})
	if err != nil {
		// The insert re-raises conflicts that raced past the checks above.
		if errors.Is(err, repository.ErrProfileExists) {
			return fail(c, h.Cfg, http.StatusConflict, "student profile already exists", err)
		}
		if errors.Is(err, repository.ErrStudentNumberExists) {
			return fail(c, h.Cfg, http.StatusConflict, "student number already in use", err)
		}
		return serverError(c, h.Cfg, err)
	}
	return response.OK(c, http.StatusCreated, "student created", st)
}

// List pages through student profiles. Admins see everyone, teachers
// only their own department, students nobody.
func (h *StudentHandler) List(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return fail(c, h.Cfg, http.StatusUnauthorized, "unauthorized", err)
	}
	dept := ""
	if id.Role == model.RoleTeacher {
		if dept, err = h.callerDepartment(c, id.UserID); err != nil {
			return serverError(c, h.Cfg, err)
		}
	}
	filter, allowed := policy.StudentListFilter(id, dept)
	if !allowed {
		return fail(c, h.Cfg, http.StatusForbidden, "forbidden", nil)
	}
	page, limit, offset := pageParams(c)

	ctx, cancel := dbCtx(c)
	defer cancel()

	students, total, err := h.Students.List(ctx, filter, limit, offset)
	if err != nil {
		return serverError(c, h.Cfg, err)
	}
	return response.Page(c, "students", students, response.NewPagination(page, limit, total))
}

// ByDepartment lists the students of one department. Teachers may only
// ask for their own department.
func (h *StudentHandler) ByDepartment(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return fail(c, h.Cfg, http.StatusUnauthorized, "unauthorized", err)
	}
	department := c.Param("department")
	if department == "" {
		return fail(c, h.Cfg, http.StatusBadRequest, "department required", nil)
	}
	switch id.Role {
	case model.RoleAdmin:
	case model.RoleTeacher:
		dept, err := h.callerDepartment(c, id.UserID)
		if err != nil {
			return serverError(c, h.Cfg, err)
		}
		if dept != department {
			return fail(c, h.Cfg, http.StatusForbidden, "forbidden", nil)
		}
	default:
		return fail(c, h.Cfg, http.StatusForbidden, "forbidden", nil)
	}
	page, limit, offset := pageParams(c)

	ctx, cancel := dbCtx(c)
	defer cancel()

	students, total, err := h.Students.List(ctx, repository.StudentFilter{Department: &department}, limit, offset)
	if err != nil {
		return serverError(c, h.Cfg, err)
	}
	return response.Page(c, "students", students, response.NewPagination(page, limit, total))
}

// Get returns one student profile: the student themself, a teacher of
// the same department, or an admin.
func (h *StudentHandler) Get(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return fail(c, h.Cfg, http.StatusUnauthorized, "unauthorized", err)
	}
	studentID, err := paramID(c, "id")
	if err != nil {
		return fail(c, h.Cfg, http.StatusBadRequest, "invalid student id", err)
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	st, err := h.Students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, h.Cfg, http.StatusNotFound, "student not found", err)
		}
		return serverError(c, h.Cfg, err)
	}
	dept := ""
	if id.Role == model.RoleTeacher {
		if dept, err = h.callerDepartment(c, id.UserID); err != nil {
			return serverError(c, h.Cfg, err)
		}
	}
	if !policy.CanViewStudent(id, st, dept) {
		return fail(c, h.Cfg, http.StatusForbidden, "forbidden", nil)
	}
	return response.OK(c, http.StatusOK, "student", st)
}

// Update changes a student profile: the student themself or an admin.
func (h *StudentHandler) Update(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return fail(c, h.Cfg, http.StatusUnauthorized, "unauthorized", err)
	}
	studentID, err := paramID(c, "id")
	if err != nil {
		return fail(c, h.Cfg, http.StatusBadRequest, "invalid student id", err)
	}

	var req studentUpdateReq
	if err := c.Bind(&req); err != nil {
		return fail(c, h.Cfg, http.StatusBadRequest, "invalid request body", err)
	}
	if err := validate.Struct(&req); err != nil {
		return fail(c, h.Cfg, http.StatusBadRequest, "validation failed", err)
	}
	upd := repository.StudentUpdate{
		StudentNumber: req.StudentNumber,
		ClassLevel:    req.ClassLevel,
		Department:    req.Department,
		PhoneNumber:   req.PhoneNumber,
		Address:       req.Address,
	}
	if req.EnrollmentDate != nil {
		enrolledAt, err := parseDate(*req.EnrollmentDate)
		if err != nil {
			return fail(c, h.Cfg, http.StatusBadRequest, "invalid enrollmentDate", err)
		}
		upd.EnrollmentDate = &enrolledAt
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	st, err := h.Students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, h.Cfg, http.StatusNotFound, "student not found", err)
		}
		return serverError(c, h.Cfg, err)
	}
	if !policy.CanUpdateStudent(id, st) {
		return fail(c, h.Cfg, http.StatusForbidden, "forbidden", nil)
	}
	if req.StudentNumber != nil {
		if taken, err := h.Students.NumberExists(ctx, *req.StudentNumber, studentID); err != nil {
			return serverError(c, h.Cfg, err)
		} else if taken {
			return fail(c, h.Cfg, http.StatusConflict, "student number already in use", nil)
		}
	}

	st, err = h.Students.Update(ctx, studentID, upd)
	if err != nil {
		if errors.Is(err, repository.ErrStudentNumberExists) {
			return fail(c, h.Cfg, http.StatusConflict, "student number already in use", err)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, h.Cfg, http.StatusNotFound, "student not found", err)
		}
		return serverError(c, h.Cfg, err)
	}
	return response.OK(c, http.StatusOK, "student updated", st)
}

// Delete removes a student profile and its enrollments. Admin only by
// route.
func (h *StudentHandler) Delete(c echo.Context) error {
	studentID, err := paramID(c, "id")
	if err != nil {
		return fail(c, h.Cfg, http.StatusBadRequest, "invalid student id", err)
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Students.Delete(ctx, studentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, h.Cfg, http.StatusNotFound, "student not found", err)
		}
		return serverError(c, h.Cfg, err)
	}
	return response.OK(c, http.StatusOK, "student deleted", nil)
}
