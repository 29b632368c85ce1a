package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/ozgekaya/student-info-api/internal/model"
)

// StudentRepo provides CRUD operations over student profiles. Reads join
// the owning user in so responses can show who a profile belongs to.
type StudentRepo struct{ db *sql.DB }

func NewStudentRepo(db *sql.DB) *StudentRepo { return &StudentRepo{db: db} }

// Profile-specific conflict values, mapped by handlers onto HTTP 409.
var (
	ErrProfileExists       = errors.New("profile already exists for user")
	ErrStudentNumberExists = errors.New("student number already exists")
)

const studentSelect = `SELECT s.id, s.user_id, s.student_number, s.class_level, s.department,
       s.phone_number, s.address, s.enrollment_date, s.created_at, s.updated_at,
       u.id, u.first_name, u.last_name, u.email, u.is_active
FROM students s
JOIN users u ON u.id = s.user_id`

func scanStudent(row interface{ Scan(...any) error }) (model.Student, error) {
	var st model.Student
	var phone, addr sql.NullString
	var owner model.UserSummary
	err := row.Scan(&st.ID, &st.UserID, &st.StudentNumber, &st.ClassLevel, &st.Department,
		&phone, &addr, &st.EnrollmentDate, &st.CreatedAt, &st.UpdatedAt,
		&owner.ID, &owner.FirstName, &owner.LastName, &owner.Email, &owner.IsActive)
	if err != nil {
		return st, err
	}
	if phone.Valid {
		st.PhoneNumber = &phone.String
	}
	if addr.Valid {
		st.Address = &addr.String
	}
	st.Owner = &owner
	return st, nil
}

// Create inserts a student profile and returns the stored row. The
// handler checks the user's existence, role and profile uniqueness
// first; the unique indexes catch the race where two creations pass
// those checks concurrently.
func (r *StudentRepo) Create(ctx context.Context, st model.Student) (model.Student, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO students (user_id, student_number, class_level, department,
		 phone_number, address, enrollment_date) VALUES (?,?,?,?,?,?,?)`,
		st.UserID, st.StudentNumber, st.ClassLevel, st.Department,
		st.PhoneNumber, st.Address, st.EnrollmentDate)
	if err != nil {
		if isDuplicateKey(err, "uq_students_user") {
			return model.Student{}, ErrProfileExists
		}
		if isDuplicateKey(err, "uq_students_number") {
			return model.Student{}, ErrStudentNumberExists
		}
		return model.Student{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Student{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a student profile with its owner summary.
func (r *StudentRepo) GetByID(ctx context.Context, id uint64) (model.Student, error) {
	st, err := scanStudent(r.db.QueryRowContext(ctx, studentSelect+" WHERE s.id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return st, ErrNotFound
	}
	return st, err
}

// GetByUserID fetches the profile belonging to a user, if any.
func (r *StudentRepo) GetByUserID(ctx context.Context, userID uint64) (model.Student, error) {
	st, err := scanStudent(r.db.QueryRowContext(ctx, studentSelect+" WHERE s.user_id=? LIMIT 1", userID))
	if errors.Is(err, sql.ErrNoRows) {
		return st, ErrNotFound
	}
	return st, err
}

// NumberExists reports whether another student already uses the given
// student number. excludeID skips the record being updated.
func (r *StudentRepo) NumberExists(ctx context.Context, number string, excludeID uint64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM students WHERE student_number=? AND id<>?",
		number, excludeID).Scan(&n)
	return n > 0, err
}

// StudentFilter narrows a listing. A nil Department means no filter;
// the policy engine sets it to the caller's department for teachers.
type StudentFilter struct {
	Department *string
}

// List returns one page of student profiles ordered by student number,
// plus the total count for the filter.
func (r *StudentRepo) List(ctx context.Context, f StudentFilter, limit, offset int) ([]model.Student, int, error) {
	where := ""
	args := []any{}
	if f.Department != nil {
		where = " WHERE s.department=?"
		args = append(args, *f.Department)
	}
	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM students s"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx,
		studentSelect+where+" ORDER BY s.student_number LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	students := make([]model.Student, 0, limit)
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, 0, err
		}
		students = append(students, st)
	}
	return students, total, rows.Err()
}

// StudentUpdate carries the mutable profile fields. userId is absent on
// purpose: a profile can never be re-linked to a different user.
type StudentUpdate struct {
	StudentNumber  *string
	ClassLevel     *string
	Department     *string
	PhoneNumber    *string
	Address        *string
	EnrollmentDate *time.Time
}

// Update applies the set fields and returns the refreshed row.
func (r *StudentRepo) Update(ctx context.Context, id uint64, upd StudentUpdate) (model.Student, error) {
	sets := make([]string, 0, 6)
	args := make([]any, 0, 7)
	add := func(col string, v any) {
		sets = append(sets, col+"=?")
		args = append(args, v)
	}
	if upd.StudentNumber != nil {
		add("student_number", *upd.StudentNumber)
	}
	if upd.ClassLevel != nil {
		add("class_level", *upd.ClassLevel)
	}
	if upd.Department != nil {
		add("department", *upd.Department)
	}
	if upd.PhoneNumber != nil {
		add("phone_number", *upd.PhoneNumber)
	}
	if upd.Address != nil {
		add("address", *upd.Address)
	}
	if upd.EnrollmentDate != nil {
		add("enrollment_date", *upd.EnrollmentDate)
	}
	if len(sets) > 0 {
		args = append(args, id)
		if _, err := r.db.ExecContext(ctx,
			"UPDATE students SET "+strings.Join(sets, ",")+" WHERE id=?", args...); err != nil {
			if isDuplicateKey(err, "uq_students_number") {
				return model.Student{}, ErrStudentNumberExists
			}
			return model.Student{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a student profile together with its enrollment rows,
// in one transaction, so no course is left referencing a missing
// student.
func (r *StudentRepo) Delete(ctx context.Context, id uint64) error {
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
	if _, err := tx.ExecContext(ctx, "DELETE FROM course_students WHERE student_id=?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM students WHERE id=?", id)
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
