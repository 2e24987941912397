package sqlxrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/edumanage/edurisk/core/alert"
)

const alertCols = `id, student_prn, student_name, recipient, risk_score, message, sent_at, read`

type alertRepository struct {
	db *sqlx.DB
}

func NewAlertRepository(db *sqlx.DB) alert.Repository {
	return &alertRepository{db: db}
}

func (repo *alertRepository) CreateAlert(a alert.Alert) (alert.Alert, error) {
	q := `
INSERT INTO alert (` + alertCols + `)
VALUES (:id, :student_prn, :student_name, :recipient, :risk_score, :message, :sent_at, :read)`
	if _, err := repo.db.NamedExec(q, a); err != nil {
		return alert.Alert{}, errors.Wrap(err, "inserting alert")
	}
	return a, nil
}

func (repo *alertRepository) GetAlertByID(id string) (alert.Alert, error) {
	var a alert.Alert
	err := repo.db.Get(&a, `SELECT `+alertCols+` FROM alert WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return alert.Alert{}, alert.ErrNotFound
	}
	if err != nil {
		return alert.Alert{}, errors.Wrap(err, "getting alert")
	}
	return a, nil
}

func (repo *alertRepository) QueryAlertsByPRN(prn string) ([]alert.Alert, error) {
	var alerts []alert.Alert
	err := repo.db.Select(&alerts, `SELECT `+alertCols+` FROM alert WHERE student_prn = $1 ORDER BY sent_at DESC`, prn)
	if err != nil {
		return nil, errors.Wrap(err, "querying alerts")
	}
	return alerts, nil
}

func (repo *alertRepository) MarkAlertRead(id string) error {
	res, err := repo.db.Exec(`UPDATE alert SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "marking alert read")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return alert.ErrNotFound
	}
	return nil
}
