package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/ozgekaya/student-info-api/internal/model"
)

// TeacherRepo provides CRUD operations over teacher profiles.
type TeacherRepo struct{ db *sql.DB }

func NewTeacherRepo(db *sql.DB) *TeacherRepo { return &TeacherRepo{db: db} }

// ErrEmployeeNumberExists is raised when another teacher already uses
// the employee number.
var ErrEmployeeNumberExists = errors.New("employee number already exists")

const teacherSelect = `SELECT t.id, t.user_id, t.employee_number, t.department, t.title,
       t.specialization, t.phone_number, t.office_location, t.hire_date, t.created_at, t.updated_at,
       u.id, u.first_name, u.last_name, u.email, u.is_active
FROM teachers t
JOIN users u ON u.id = t.user_id`

func scanTeacher(row interface{ Scan(...any) error }) (model.Teacher, error) {
	var t model.Teacher
	var phone, office sql.NullString
	var owner model.UserSummary
	err := row.Scan(&t.ID, &t.UserID, &t.EmployeeNumber, &t.Department, &t.Title,
		&t.Specialization, &phone, &office, &t.HireDate, &t.CreatedAt, &t.UpdatedAt,
		&owner.ID, &owner.FirstName, &owner.LastName, &owner.Email, &owner.IsActive)
	if err != nil {
		return t, err
	}
	if phone.Valid {
		t.PhoneNumber = &phone.String
	}
	if office.Valid {
		t.OfficeLocation = &office.String
	}
	t.Owner = &owner
	return t, nil
}

// Create inserts a teacher profile and returns the stored row.
func (r *TeacherRepo) Create(ctx context.Context, t model.Teacher) (model.Teacher, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO teachers (user_id, employee_number, department, title,
		 specialization, phone_number, office_location, hire_date) VALUES (?,?,?,?,?,?,?,?)`,
		t.UserID, t.EmployeeNumber, t.Department, t.Title,
		t.Specialization, t.PhoneNumber, t.OfficeLocation, t.HireDate)
	if err != nil {
		if isDuplicateKey(err, "uq_teachers_user") {
			return model.Teacher{}, ErrProfileExists
		}
		if isDuplicateKey(err, "uq_teachers_number") {
			return model.Teacher{}, ErrEmployeeNumberExists
		}
		return model.Teacher{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Teacher{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a teacher profile with its owner summary.
func (r *TeacherRepo) GetByID(ctx context.Context, id uint64) (model.Teacher, error) {
	t, err := scanTeacher(r.db.QueryRowContext(ctx, teacherSelect+" WHERE t.id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrNotFound
	}
	return t, err
}

// GetByUserID fetches the profile belonging to a user, if any.
func (r *TeacherRepo) GetByUserID(ctx context.Context, userID uint64) (model.Teacher, error) {
	t, err := scanTeacher(r.db.QueryRowContext(ctx, teacherSelect+" WHERE t.user_id=? LIMIT 1", userID))
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrNotFound
	}
	return t, err
}

// NumberExists reports whether another teacher already uses the given
// employee number.
func (r *TeacherRepo) NumberExists(ctx context.Context, number string, excludeID uint64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM teachers WHERE employee_number=? AND id<>?",
		number, excludeID).Scan(&n)
	return n > 0, err
}

// TeacherFilter narrows a listing by department and/or title.
type TeacherFilter struct {
	Department *string
	Title      *string
}

// List returns one page of teacher profiles ordered by department and
// rank, plus the total count for the filter.
func (r *TeacherRepo) List(ctx context.Context, f TeacherFilter, limit, offset int) ([]model.Teacher, int, error) {
	conds := []string{}
	args := []any{}
	if f.Department != nil {
		conds = append(conds, "t.department=?")
		args = append(args, *f.Department)
	}
	if f.Title != nil {
		conds = append(conds, "t.title=?")
		args = append(args, *f.Title)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}
	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM teachers t"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx,
		teacherSelect+where+" ORDER BY t.department, t.title DESC LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	teachers := make([]model.Teacher, 0, limit)
	for rows.Next() {
		t, err := scanTeacher(rows)
		if err != nil {
			return nil, 0, err
		}
		teachers = append(teachers, t)
	}
	return teachers, total, rows.Err()
}

// TeacherUpdate carries the mutable profile fields. The policy layer
// clears Title, Department, EmployeeNumber and HireDate before the call
// when a teacher edits their own profile; only admins change those.
type TeacherUpdate struct {
	EmployeeNumber *string
	Department     *string
	Title          *string
	Specialization *string
	PhoneNumber    *string
	OfficeLocation *string
	HireDate       *time.Time
}

// Update applies the set fields and returns the refreshed row.
func (r *TeacherRepo) Update(ctx context.Context, id uint64, upd TeacherUpdate) (model.Teacher, error) {
	sets := make([]string, 0, 7)
	args := make([]any, 0, 8)
	add := func(col string, v any) {
		sets = append(sets, col+"=?")
		args = append(args, v)
	}
	if upd.EmployeeNumber != nil {
		add("employee_number", *upd.EmployeeNumber)
	}
	if upd.Department != nil {
		add("department", *upd.Department)
	}
	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Specialization != nil {
		add("specialization", *upd.Specialization)
	}
	if upd.PhoneNumber != nil {
		add("phone_number", *upd.PhoneNumber)
	}
	if upd.OfficeLocation != nil {
		add("office_location", *upd.OfficeLocation)
	}
	if upd.HireDate != nil {
		add("hire_date", *upd.HireDate)
	}
	if len(sets) > 0 {
		args = append(args, id)
		if _, err := r.db.ExecContext(ctx,
			"UPDATE teachers SET "+strings.Join(sets, ",")+" WHERE id=?", args...); err != nil {
			if isDuplicateKey(err, "uq_teachers_number") {
				return model.Teacher{}, ErrEmployeeNumberExists
			}
			return model.Teacher{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a teacher profile. It refuses while the teacher still
// owns any active course; the count and the delete run in one
// transaction so a course activated in between cannot slip through.
func (r *TeacherRepo) Delete(ctx context.Context, id uint64) error {
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
	var active int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM courses WHERE teacher_id=? AND is_active=1 FOR UPDATE",
		id).Scan(&active); err != nil {
		return err
	}
	if active > 0 {
		return ErrInvalidState
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM teachers WHERE id=?", id)
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
