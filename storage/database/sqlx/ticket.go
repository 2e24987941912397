package sqlxrepos

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/edumanage/edurisk/core/ticket"
)

const ticketCols = `id, student_prn, division, title, description, category, status,
reply_text, reply_author, reply_date, created_at, updated_at`

type ticketRepository struct {
	db *sqlx.DB
}

func NewTicketRepository(db *sqlx.DB) ticket.Repository {
	return &ticketRepository{db: db}
}

func (repo *ticketRepository) CreateTicket(t ticket.Ticket) (ticket.Ticket, error) {
	q := `
INSERT INTO ticket (` + ticketCols + `)
VALUES (:id, :student_prn, :division, :title, :description, :category, :status,
        :reply_text, :reply_author, :reply_date, :created_at, :updated_at)`
	if _, err := repo.db.NamedExec(q, t); err != nil {
		return ticket.Ticket{}, errors.Wrap(err, "inserting ticket")
	}
	return t, nil
}

func (repo *ticketRepository) GetTicketByID(id string) (ticket.Ticket, error) {
	var t ticket.Ticket
	err := repo.db.Get(&t, `SELECT `+ticketCols+` FROM ticket WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return ticket.Ticket{}, ticket.ErrNotFound
	}
	if err != nil {
		return ticket.Ticket{}, errors.Wrap(err, "getting ticket")
	}
	return t, nil
}

func (repo *ticketRepository) QueryAllTickets() ([]ticket.Ticket, error) {
	var tickets []ticket.Ticket
	err := repo.db.Select(&tickets, `SELECT `+ticketCols+` FROM ticket ORDER BY created_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "querying tickets")
	}
	return tickets, nil
}

func (repo *ticketRepository) FilterTickets(filter ticket.QueryFilter) ([]ticket.Ticket, error) {
	where := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)
	if filter.Division != "" {
		args = append(args, filter.Division)
		where = append(where, fmt.Sprintf("division = $%d", len(args)))
	}
	if filter.StudentPRN != "" {
		args = append(args, filter.StudentPRN)
		where = append(where, fmt.Sprintf("student_prn = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	q := `SELECT ` + ticketCols + ` FROM ticket`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC"

	var tickets []ticket.Ticket
	if err := repo.db.Select(&tickets, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering tickets")
	}
	return tickets, nil
}

func (repo *ticketRepository) UpdateTicket(t ticket.Ticket) (ticket.Ticket, error) {
	q := `
UPDATE ticket SET
    status       = :status,
    reply_text   = :reply_text,
    reply_author = :reply_author,
    reply_date   = :reply_date,
    updated_at   = :updated_at
WHERE id = :id`
	res, err := repo.db.NamedExec(q, t)
	if err != nil {
		return ticket.Ticket{}, errors.Wrap(err, "updating ticket")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ticket.Ticket{}, ticket.ErrNotFound
	}
	return t, nil
}
