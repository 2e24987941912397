package sqlxrepos

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/edumanage/edurisk/core/student"
)

// studentRow shadows Student.RiskReasons with a driver-aware type; the
// embedded field carries db:"-" so the two never clash.
type studentRow struct {
	student.Student
	RiskReasons pq.StringArray `db:"risk_reasons"`
}

func newStudentRow(s student.Student) studentRow {
	return studentRow{Student: s, RiskReasons: s.RiskReasons}
}

func (row studentRow) toStudent() student.Student {
	s := row.Student
	s.RiskReasons = row.RiskReasons
	return s
}

const studentCols = `prn, name, division, email, phone, cgpa, attendance, midsem_marks, endsem_marks,
backlogs, disciplinary, risk_score, risk_level, risk_reasons, created_at, updated_at`

const upsertStudentQuery = `
INSERT INTO student (` + studentCols + `)
VALUES (:prn, :name, :division, :email, :phone, :cgpa, :attendance, :midsem_marks, :endsem_marks,
        :backlogs, :disciplinary, :risk_score, :risk_level, :risk_reasons, :created_at, :updated_at)
ON CONFLICT (prn) DO UPDATE SET
    name         = EXCLUDED.name,
    division     = EXCLUDED.division,
    email        = EXCLUDED.email,
    phone        = EXCLUDED.phone,
    cgpa         = EXCLUDED.cgpa,
    attendance   = EXCLUDED.attendance,
    midsem_marks = EXCLUDED.midsem_marks,
    endsem_marks = EXCLUDED.endsem_marks,
    backlogs     = EXCLUDED.backlogs,
    disciplinary = EXCLUDED.disciplinary,
    risk_score   = EXCLUDED.risk_score,
    risk_level   = EXCLUDED.risk_level,
    risk_reasons = EXCLUDED.risk_reasons,
    updated_at   = EXCLUDED.updated_at`

type studentRepository struct {
	db *sqlx.DB
}

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(s student.Student) (student.Student, error) {
	q := `INSERT INTO student (` + studentCols + `)
VALUES (:prn, :name, :division, :email, :phone, :cgpa, :attendance, :midsem_marks, :endsem_marks,
        :backlogs, :disciplinary, :risk_score, :risk_level, :risk_reasons, :created_at, :updated_at)`
	if _, err := repo.db.NamedExec(q, newStudentRow(s)); err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return student.Student{}, student.ErrPRNExists
		}
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return s, nil
}

func (repo *studentRepository) GetStudentByPRN(prn string) (student.Student, error) {
	var row studentRow
	err := repo.db.Get(&row, `SELECT `+studentCols+` FROM student WHERE prn = $1`, prn)
	if err == sql.ErrNoRows {
		return student.Student{}, student.ErrNotFound
	}
	if err != nil {
		return student.Student{}, errors.Wrap(err, "getting student")
	}
	return row.toStudent(), nil
}

func (repo *studentRepository) QueryAllStudents() ([]student.Student, error) {
	var rows []studentRow
	if err := repo.db.Select(&rows, `SELECT `+studentCols+` FROM student ORDER BY prn`); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return toStudents(rows), nil
}

func (repo *studentRepository) FilterStudents(filter student.QueryFilter) ([]student.Student, error) {
	where := make([]string, 0, 2)
	args := make([]interface{}, 0, 2)
	if filter.Division != "" {
		args = append(args, filter.Division)
		where = append(where, fmt.Sprintf("division = $%d", len(args)))
	}
	if filter.MinRiskScore != nil {
		args = append(args, *filter.MinRiskScore)
		where = append(where, fmt.Sprintf("risk_score >= $%d", len(args)))
	}

	q := `SELECT ` + studentCols + ` FROM student`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY prn"

	var rows []studentRow
	if err := repo.db.Select(&rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering students")
	}
	return toStudents(rows), nil
}

func (repo *studentRepository) SaveStudents(students ...student.Student) error {
	if len(students) == 0 {
		return nil
	}

	tx, err := repo.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "beginning tx")
	}
	for _, s := range students {
		if _, err = tx.NamedExec(upsertStudentQuery, newStudentRow(s)); err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "upserting student %s", s.PRN)
		}
	}
	return errors.Wrap(tx.Commit(), "committing tx")
}

func (repo *studentRepository) DeleteStudentsByPRN(prns ...string) error {
	if len(prns) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM student WHERE prn IN (?)`, prns)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	_, err = repo.db.Exec(repo.db.Rebind(q), args...)
	return errors.Wrap(err, "deleting students")
}

func (repo *studentRepository) ClearUploadedFields() error {
	_, err := repo.db.Exec(`
UPDATE student SET
    cgpa         = NULL,
    attendance   = NULL,
    midsem_marks = NULL,
    endsem_marks = NULL,
    backlogs     = 0,
    disciplinary = FALSE,
    risk_score   = 0,
    risk_level   = '',
    risk_reasons = '{}',
    updated_at   = now()`)
	return errors.Wrap(err, "clearing uploaded fields")
}

func (repo *studentRepository) ReplaceAllStudents(students ...student.Student) error {
	tx, err := repo.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "beginning tx")
	}
	if _, err = tx.Exec(`DELETE FROM student`); err != nil {
		_ = tx.Rollback()
		return errors.Wrap(err, "clearing registry")
	}
	for _, s := range students {
		if _, err = tx.NamedExec(upsertStudentQuery, newStudentRow(s)); err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "inserting student %s", s.PRN)
		}
	}
	return errors.Wrap(tx.Commit(), "committing tx")
}

func toStudents(rows []studentRow) []student.Student {
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toStudent())
	}
	return students
}

type uploadLogRepository struct {
	db *sqlx.DB
}

func NewUploadLogRepository(db *sqlx.DB) student.UploadLogRepository {
	return &uploadLogRepository{db: db}
}

func (repo *uploadLogRepository) LogUpload(entry student.UploadLog) (student.UploadLog, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	q := `
INSERT INTO upload_log (id, source, division, uploaded_at, matched_count, unmatched_count, blocked_count, skipped_count)
VALUES (:id, :source, :division, :uploaded_at, :matched_count, :unmatched_count, :blocked_count, :skipped_count)`
	if _, err := repo.db.NamedExec(q, entry); err != nil {
		return student.UploadLog{}, errors.Wrap(err, "inserting upload log")
	}
	return entry, nil
}

func (repo *uploadLogRepository) QueryUploads(division string) ([]student.UploadLog, error) {
	q := `SELECT * FROM upload_log`
	args := make([]interface{}, 0, 1)
	if division != "" {
		q += ` WHERE division = $1`
		args = append(args, division)
	}
	q += ` ORDER BY uploaded_at DESC`

	var entries []student.UploadLog
	if err := repo.db.Select(&entries, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying upload logs")
	}
	return entries, nil
}
