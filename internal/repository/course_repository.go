package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/ozgekaya/student-info-api/internal/model"
)

// CourseRepo provides CRUD operations over courses and owns the
// enrollment transitions. The schedule is stored as a JSON column and
// (un)marshalled here; the enrollment set lives in course_students.
type CourseRepo struct{ db *sql.DB }

func NewCourseRepo(db *sql.DB) *CourseRepo { return &CourseRepo{db: db} }

// ErrCodeExists is raised when another course already uses the code.
var ErrCodeExists = errors.New("course code already exists")

const courseCols = `id, name, code, description, credits, teacher_id, department,
       semester, academic_year, schedule, max_capacity, is_active, created_at, updated_at`

func scanCourse(row interface{ Scan(...any) error }) (model.Course, error) {
	var c model.Course
	var schedule []byte
	err := row.Scan(&c.ID, &c.Name, &c.Code, &c.Description, &c.Credits, &c.TeacherID,
		&c.Department, &c.Semester, &c.AcademicYear, &schedule, &c.MaxCapacity,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return c, err
	}
	if err := json.Unmarshal(schedule, &c.Schedule); err != nil {
		return c, err
	}
	c.EnrolledStudentIDs = []uint64{}
	return c, nil
}

// Create inserts a course and returns the stored row.
func (r *CourseRepo) Create(ctx context.Context, c model.Course) (model.Course, error) {
	schedule, err := json.Marshal(c.Schedule)
	if err != nil {
		return model.Course{}, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO courses (name, code, description, credits, teacher_id, department,
		 semester, academic_year, schedule, max_capacity, is_active) VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		c.Name, c.Code, c.Description, c.Credits, c.TeacherID, c.Department,
		c.Semester, c.AcademicYear, schedule, c.MaxCapacity, c.IsActive)
	if err != nil {
		if isDuplicateKey(err, "uq_courses_code") {
			return model.Course{}, ErrCodeExists
		}
		return model.Course{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Course{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a course together with its enrolled student ids.
func (r *CourseRepo) GetByID(ctx context.Context, id uint64) (model.Course, error) {
	c, err := scanCourse(r.db.QueryRowContext(ctx,
		"SELECT "+courseCols+" FROM courses WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrNotFound
	}
	if err != nil {
		return c, err
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT student_id FROM course_students WHERE course_id=? ORDER BY created_at", id)
	if err != nil {
		return c, err
	}
	defer rows.Close()
	for rows.Next() {
		var sid uint64
		if err := rows.Scan(&sid); err != nil {
			return c, err
		}
		c.EnrolledStudentIDs = append(c.EnrolledStudentIDs, sid)
	}
	return c, rows.Err()
}

// CodeExists reports whether another course already uses the given
// code. excludeID skips the record being updated.
func (r *CourseRepo) CodeExists(ctx context.Context, code string, excludeID uint64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM courses WHERE code=? AND id<>?", code, excludeID).Scan(&n)
	return n > 0, err
}

// EnrolledStudent is the roster view of one enrollment.
type EnrolledStudent struct {
	ID            uint64 `json:"id"`
	StudentNumber string `json:"studentNumber"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Department    string `json:"department"`
}

// EnrolledStudents returns the roster of a course in enrollment order.
func (r *CourseRepo) EnrolledStudents(ctx context.Context, courseID uint64) ([]EnrolledStudent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT s.id, s.student_number, u.first_name, u.last_name, s.department
		 FROM course_students cs
		 JOIN students s ON s.id = cs.student_id
		 JOIN users u ON u.id = s.user_id
		 WHERE cs.course_id=? ORDER BY cs.created_at`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	roster := []EnrolledStudent{}
	for rows.Next() {
		var e EnrolledStudent
		if err := rows.Scan(&e.ID, &e.StudentNumber, &e.FirstName, &e.LastName, &e.Department); err != nil {
			return nil, err
		}
		roster = append(roster, e)
	}
	return roster, rows.Err()
}

// CourseFilter narrows a listing. The policy engine builds it from the
// caller's role: teachers see their own courses including inactive
// ones, everyone else only active courses.
type CourseFilter struct {
	TeacherID  *uint64
	ActiveOnly bool
}

// List returns one page of courses plus the total count. Enrollment ids
// for the whole page are loaded with a single IN query.
func (r *CourseRepo) List(ctx context.Context, f CourseFilter, limit, offset int) ([]model.Course, int, error) {
	conds := []string{}
	args := []any{}
	if f.TeacherID != nil {
		conds = append(conds, "teacher_id=?")
		args = append(args, *f.TeacherID)
	}
	if f.ActiveOnly {
		conds = append(conds, "is_active=1")
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}
	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM courses"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+courseCols+" FROM courses"+where+
			" ORDER BY department, academic_year DESC, semester LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	courses := make([]model.Course, 0, limit)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, 0, err
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.fillEnrollments(ctx, courses); err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}

// fillEnrollments loads the enrollment ids for every course in the slice
// at once and distributes them back.
func (r *CourseRepo) fillEnrollments(ctx context.Context, courses []model.Course) error {
	if len(courses) == 0 {
		return nil
	}
	byID := make(map[uint64]*model.Course, len(courses))
	marks := make([]string, 0, len(courses))
	args := make([]any, 0, len(courses))
	for i := range courses {
		byID[courses[i].ID] = &courses[i]
		marks = append(marks, "?")
		args = append(args, courses[i].ID)
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT course_id, student_id FROM course_students WHERE course_id IN ("+
			strings.Join(marks, ",")+") ORDER BY created_at", args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var cid, sid uint64
		if err := rows.Scan(&cid, &sid); err != nil {
			return err
		}
		if c, ok := byID[cid]; ok {
			c.EnrolledStudentIDs = append(c.EnrolledStudentIDs, sid)
		}
	}
	return rows.Err()
}

// CourseUpdate carries the mutable course fields. The policy layer
// clears Code and TeacherID before the call when the owning teacher,
// not an admin, is editing; only admins reassign a course.
type CourseUpdate struct {
	Name         *string
	Code         *string
	Description  *string
	Credits      *int
	TeacherID    *uint64
	Department   *string
	Semester     *string
	AcademicYear *string
	Schedule     []model.ScheduleSlot
	MaxCapacity  *int
	IsActive     *bool
}

// Update applies the set fields and returns the refreshed row.
func (r *CourseRepo) Update(ctx context.Context, id uint64, upd CourseUpdate) (model.Course, error) {
	sets := make([]string, 0, 10)
	args := make([]any, 0, 11)
	add := func(col string, v any) {
		sets = append(sets, col+"=?")
		args = append(args, v)
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Code != nil {
		add("code", *upd.Code)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Credits != nil {
		add("credits", *upd.Credits)
	}
	if upd.TeacherID != nil {
		add("teacher_id", *upd.TeacherID)
	}
	if upd.Department != nil {
		add("department", *upd.Department)
	}
	if upd.Semester != nil {
		add("semester", *upd.Semester)
	}
	if upd.AcademicYear != nil {
		add("academic_year", *upd.AcademicYear)
	}
	if upd.Schedule != nil {
		schedule, err := json.Marshal(upd.Schedule)
		if err != nil {
			return model.Course{}, err
		}
		add("schedule", schedule)
	}
	if upd.MaxCapacity != nil {
		add("max_capacity", *upd.MaxCapacity)
	}
	if upd.IsActive != nil {
		add("is_active", *upd.IsActive)
	}
	if len(sets) > 0 {
		args = append(args, id)
		if _, err := r.db.ExecContext(ctx,
			"UPDATE courses SET "+strings.Join(sets, ",")+" WHERE id=?", args...); err != nil {
			if isDuplicateKey(err, "uq_courses_code") {
				return model.Course{}, ErrCodeExists
			}
			return model.Course{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a course. It refuses while any student is enrolled;
// the count and the delete run in one transaction so a concurrent
// enrollment cannot slip through.
func (r *CourseRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var enrolled int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM course_students WHERE course_id=? FOR UPDATE", id).Scan(&enrolled); err != nil {
		return err
	}
	if enrolled > 0 {
		return ErrInvalidState
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM courses WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// lockCourse loads a course inside tx with its row locked, plus the
// current enrollment ids, so the gate decision is atomic with the write.
func lockCourse(ctx context.Context, tx *sql.Tx, courseID uint64) (model.Course, error) {
	c, err := scanCourse(tx.QueryRowContext(ctx,
		"SELECT "+courseCols+" FROM courses WHERE id=? FOR UPDATE", courseID))
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrNotFound
	}
	if err != nil {
		return c, err
	}
	rows, err := tx.QueryContext(ctx,
		"SELECT student_id FROM course_students WHERE course_id=?", courseID)
	if err != nil {
		return c, err
	}
	defer rows.Close()
	for rows.Next() {
		var sid uint64
		if err := rows.Scan(&sid); err != nil {
			return c, err
		}
		c.EnrolledStudentIDs = append(c.EnrolledStudentIDs, sid)
	}
	return c, rows.Err()
}

// Enroll adds a student to a course after the activation, duplicate and
// capacity gates pass. The course row is locked for the duration, so
// two racing enrollments for the last seat serialize and the loser gets
// the capacity error. Returns the refreshed course.
func (r *CourseRepo) Enroll(ctx context.Context, courseID, studentID uint64) (model.Course, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Course{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	c, err := lockCourse(ctx, tx, courseID)
	if err != nil {
		return model.Course{}, err
	}
	if err := c.EnrollmentGate(studentID); err != nil {
		return model.Course{}, err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO course_students (course_id, student_id) VALUES (?,?)",
		courseID, studentID); err != nil {
		if isDuplicateKey(err, "") {
			return model.Course{}, model.ErrAlreadyEnrolled
		}
		return model.Course{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Course{}, err
	}
	committed = true
	return r.GetByID(ctx, courseID)
}

// Unenroll removes a student from a course. Removal is allowed even on
// an inactive course; only membership is checked.
func (r *CourseRepo) Unenroll(ctx context.Context, courseID, studentID uint64) (model.Course, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Course{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	c, err := lockCourse(ctx, tx, courseID)
	if err != nil {
		return model.Course{}, err
	}
	if err := c.UnenrollmentGate(studentID); err != nil {
		return model.Course{}, err
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM course_students WHERE course_id=? AND student_id=?",
		courseID, studentID); err != nil {
		return model.Course{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Course{}, err
	}
	committed = true
	return r.GetByID(ctx, courseID)
}
