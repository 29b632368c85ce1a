package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ozgekaya/student-info-api/internal/auth"
	"github.com/ozgekaya/student-info-api/internal/config"
	"github.com/ozgekaya/student-info-api/internal/model"
	"github.com/ozgekaya/student-info-api/internal/policy"
	"github.com/ozgekaya/student-info-api/internal/repository"
	"github.com/ozgekaya/student-info-api/internal/utils/response"
	"github.com/ozgekaya/student-info-api/internal/validate"
)

// TeacherHandler serves the teacher profile endpoints.
type TeacherHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Teachers *repository.TeacherRepo
}

func NewTeacherHandler(cfg config.Config, u *repository.UserRepo, t *repository.TeacherRepo) *TeacherHandler {
	return &TeacherHandler{Cfg: cfg, Users: u, Teachers: t}
}

type teacherCreateReq struct {
	UserID         uint64  `json:"userId" validate:"required,min=1"`
	EmployeeNumber string  `json:"employeeNumber" validate:"required,min=1,max=32"`
	Department     string  `json:"department" validate:"required,min=1,max=100"`
	Title          string  `json:"title" validate:"required,teachertitle"`
	Specialization string  `json:"specialization" validate:"required,min=1,max=100"`
	PhoneNumber    *string `json:"phoneNumber" validate:"omitempty,max=32"`
	OfficeLocation *string `json:"officeLocation" validate:"omitempty,max=100"`
	HireDate       string  `json:"hireDate" validate:"required"`
}

type teacherUpdateReq struct {
	EmployeeNumber *string `json:"employeeNumber" validate:"omitempty,min=1,max=32"`
	Department     *string `json:"department" validate:"omitempty,min=1,max=100"`
	Title          *string `json:"title" validate:"omitempty,teachertitle"`
	Specialization *string `json:"specialization" validate:"omitempty,min=1,max=100"`
	PhoneNumber    *string `json:"phoneNumber" validate:"omitempty,max=32"`
	OfficeLocation *string `json:"officeLocation" validate:"omitempty,max=100"`
	HireDate       *string `json:"hireDate"`
}

// Trimmed projections of a teacher profile. Colleagues do not get
// contact details or the employee number; students also lose the hire
// date.
type teacherStaffView struct {
	ID             uint64             `json:"id"`
	UserID         uint64             `json:"userId"`
	Department     string             `json:"department"`
	Title          string             `json:"title"`
	Specialization string             `json:"specialization"`
	HireDate       time.Time          `json:"hireDate"`
	Owner          *model.UserSummary `json:"user,omitempty"`
}

type teacherStudentView struct {
	ID             uint64             `json:"id"`
	UserID         uint64             `json:"userId"`
	Department     string             `json:"department"`
	Title          string             `json:"title"`
	Specialization string             `json:"specialization"`
	Owner          *model.UserSummary `json:"user,omitempty"`
}

// projectTeacher applies the caller's view level to one profile.
func projectTeacher(id auth.Identity, t model.Teacher) interface{} {
	switch policy.TeacherViewFor(id, t) {
	case policy.TeacherViewFull:
		return t
	case policy.TeacherViewStaff:
		return teacherStaffView{
			ID: t.ID, UserID: t.UserID, Department: t.Department,
			Title: t.Title, Specialization: t.Specialization,
			HireDate: t.HireDate, Owner: t.Owner,
		}
	default:
		return teacherStudentView{
			ID: t.ID, UserID: t.UserID, Department: t.Department,
			Title: t.Title, Specialization: t.Specialization, Owner: t.Owner,
		}
	}
}

func projectTeachers(id auth.Identity, ts []model.Teacher) []interface{} {
	out := make([]interface{}, 0, len(ts))
	for _, t := range ts {
		out = append(out, projectTeacher(id, t))
	}
	return out
}

// Create registers a teacher profile for an existing user. Admin only
// by route; same precondition order as student creation.
func (h *TeacherHandler) Create(c echo.Context) error {
	var req teacherCreateReq
	if err := c.Bind(&req); err != nil {
		return fail(c, h.Cfg, http.StatusBadRequest, "invalid request body", err)
	}
	if err := validate.Struct(&req); err != nil {
		return fail(c, h.Cfg, http.StatusBadRequest, "validation failed", err)
	}
	hiredAt, err := parseDate(req.HireDate)
	if err != nil {
		return fail(c, h.Cfg, http.StatusBadRequest, "invalid hireDate", err)
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
	if u.Role != model.RoleTeacher {
		return fail(c, h.Cfg, http.StatusBadRequest, "user does not have the teacher role", nil)
	}
	if _, err := h.Teachers.GetByUserID(ctx, req.UserID); err == nil {
		return fail(c, h.Cfg, http.StatusConflict, "teacher profile already exists", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return serverError(c, h.Cfg, err)
	}
	if taken, err := h.Teachers.NumberExists(ctx, req.EmployeeNumber, 0); err != nil {
		return serverError(c, h.Cfg, err)
	} else if taken {
		return fail(c, h.Cfg, http.StatusConflict, "employee number already in use", nil)
	}

	t, err := h.Teachers.Create(ctx, model.Teacher{
		UserID:         req.UserID,
		EmployeeNumber: req.EmployeeNumber,
		Department:     req.Department,
		Title:          req.Title,
		Specialization: req.Specialization,
		PhoneNumber:    req.PhoneNumber,
		OfficeLocation: req.OfficeLocation,
		HireDate:       hiredAt,
	})
	if err != nil {
		if errors.Is(err, repository.ErrProfileExists) {
			return fail(c, h.Cfg, http.StatusConflict, "teacher profile already exists", err)
		}
		if errors.Is(err, repository.ErrEmployeeNumberExists) {
			return fail(c, h.Cfg, http.StatusConflict, "employee number already in use", err)
		}
		return serverError(c, h.Cfg, err)
	}
	return response.OK(c, http.StatusCreated, "teacher created", t)
}

// List pages through teacher profiles, open to every authenticated
// role. Each entry is projected for the caller.
func (h *TeacherHandler) List(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return fail(c, h.Cfg, http.StatusUnauthorized, "unauthorized", err)
	}
	page, limit, offset := pageParams(c)

	ctx, cancel := dbCtx(c)
	defer cancel()

	teachers, total, err := h.Teachers.List(ctx, repository.TeacherFilter{}, limit, offset)
	if err != nil {
		return serverError(c, h.Cfg, err)
	}
	return response.Page(c, "teachers", projectTeachers(id, teachers), response.NewPagination(page, limit, total))
}

// ByDepartment lists the teachers of one department.
func (h *TeacherHandler) ByDepartment(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return fail(c, h.Cfg, http.StatusUnauthorized, "unauthorized", err)
	}
	department := c.Param("department")
	if department == "" {
		return fail(c, h.Cfg, http.StatusBadRequest, "department required", nil)
	}
	page, limit, offset := pageParams(c)

	ctx, cancel := dbCtx(c)
	defer cancel()

	teachers, total, err := h.Teachers.List(ctx, repository.TeacherFilter{Department: &department}, limit, offset)
	if err != nil {
		return serverError(c, h.Cfg, err)
	}
	return response.Page(c, "teachers", projectTeachers(id, teachers), response.NewPagination(page, limit, total))
}

// ByTitle lists the teachers holding one academic rank.
func (h *TeacherHandler) ByTitle(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return fail(c, h.Cfg, http.StatusUnauthorized, "unauthorized", err)
	}
	title := c.Param("title")
	if !model.ValidTeacherTitle(title) {
		return fail(c, h.Cfg, http.StatusBadRequest, "unknown title", nil)
	}
	page, limit, offset := pageParams(c)

	ctx, cancel := dbCtx(c)
	defer cancel()

	teachers, total, err := h.Teachers.List(ctx, repository.TeacherFilter{Title: &title}, limit, offset)
	if err != nil {
		return serverError(c, h.Cfg, err)
	}
	return response.Page(c, "teachers", projectTeachers(id, teachers), response.NewPagination(page, limit, total))
}

// Get returns one teacher profile, projected for the caller.
func (h *TeacherHandler) Get(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return fail(c, h.Cfg, http.StatusUnauthorized, "unauthorized", err)
	}
	teacherID, err := paramID(c, "id")
	if err != nil {
		return fail(c, h.Cfg, http.StatusBadRequest, "invalid teacher id", err)
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	t, err := h.Teachers.GetByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, h.Cfg, http.StatusNotFound, "teacher not found", err)
		}
		return serverError(c, h.Cfg, err)
	}
	return response.OK(c, http.StatusOK, "teacher", projectTeacher(id, t))
}

// Update changes a teacher profile: the teacher themself or an admin.
// Self-updates cannot touch the employment fields; those edits are
// silently dropped.
func (h *TeacherHandler) Update(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return fail(c, h.Cfg, http.StatusUnauthorized, "unauthorized", err)
	}
	teacherID, err := paramID(c, "id")
	if err != nil {
		return fail(c, h.Cfg, http.StatusBadRequest, "invalid teacher id", err)
	}

	var req teacherUpdateReq
	if err := c.Bind(&req); err != nil {
		return fail(c, h.Cfg, http.StatusBadRequest, "invalid request body", err)
	}
	if err := validate.Struct(&req); err != nil {
		return fail(c, h.Cfg, http.StatusBadRequest, "validation failed", err)
	}
	upd := repository.TeacherUpdate{
		EmployeeNumber: req.EmployeeNumber,
		Department:     req.Department,
		Title:          req.Title,
		Specialization: req.Specialization,
		PhoneNumber:    req.PhoneNumber,
		OfficeLocation: req.OfficeLocation,
	}
	if req.HireDate != nil {
		hiredAt, err := parseDate(*req.HireDate)
		if err != nil {
			return fail(c, h.Cfg, http.StatusBadRequest, "invalid hireDate", err)
		}
		upd.HireDate = &hiredAt
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	t, err := h.Teachers.GetByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, h.Cfg, http.StatusNotFound, "teacher not found", err)
		}
		return serverError(c, h.Cfg, err)
	}
	if !policy.CanUpdateTeacher(id, t) {
		return fail(c, h.Cfg, http.StatusForbidden, "forbidden", nil)
	}
	upd = policy.StripTeacherSelfUpdate(id, upd)
	if upd.EmployeeNumber != nil {
		if taken, err := h.Teachers.NumberExists(ctx, *upd.EmployeeNumber, teacherID); err != nil {
			return serverError(c, h.Cfg, err)
		} else if taken {
			return fail(c, h.Cfg, http.StatusConflict, "employee number already in use", nil)
		}
	}

	t, err = h.Teachers.Update(ctx, teacherID, upd)
	if err != nil {
		if errors.Is(err, repository.ErrEmployeeNumberExists) {
			return fail(c, h.Cfg, http.StatusConflict, "employee number already in use", err)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, h.Cfg, http.StatusNotFound, "teacher not found", err)
		}
		return serverError(c, h.Cfg, err)
	}
	return response.OK(c, http.StatusOK, "teacher updated", t)
}

// Delete removes a teacher profile. Admin only by route; refused while
// the teacher still owns an active course.
func (h *TeacherHandler) Delete(c echo.Context) error {
	teacherID, err := paramID(c, "id")
	if err != nil {
		return fail(c, h.Cfg, http.StatusBadRequest, "invalid teacher id", err)
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Teachers.Delete(ctx, teacherID); err != nil {
		if errors.Is(err, repository.ErrInvalidState) {
			return fail(c, h.Cfg, http.StatusBadRequest, "teacher still owns active courses", err)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, h.Cfg, http.StatusNotFound, "teacher not found", err)
		}
		return serverError(c, h.Cfg, err)
	}
	return response.OK(c, http.StatusOK, "teacher deleted", nil)
}
