package inmemdb

import (
	"sort"

	"github.com/edumanage/edurisk/core/ticket"
)

type ticketRepository struct {
	db *ticketTable
}

func NewTicketRepository(db *DB) ticket.Repository {
	return &ticketRepository{db: db.ticket}
}

func (repo *ticketRepository) query() []ticket.Ticket {
	tickets := make([]ticket.Ticket, 0, len(repo.db.table))
	for _, t := range repo.db.table {
		tickets = append(tickets, *t)
	}
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].CreatedAt.After(tickets[j].CreatedAt) })
	return tickets
}

func (repo *ticketRepository) CreateTicket(t ticket.Ticket) (ticket.Ticket, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.table[t.ID] = &t
	return t, nil
}

func (repo *ticketRepository) GetTicketByID(id string) (ticket.Ticket, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.table[id]; ok {
		return *t, nil
	}
	return ticket.Ticket{}, ticket.ErrNotFound
}

func (repo *ticketRepository) QueryAllTickets() ([]ticket.Ticket, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *ticketRepository) FilterTickets(filter ticket.QueryFilter) ([]ticket.Ticket, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tickets := make([]ticket.Ticket, 0)
	for _, t := range repo.query() {
		if filter.Division != "" && t.Division != filter.Division {
			continue
		}
		if filter.StudentPRN != "" && t.StudentPRN != filter.StudentPRN {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		tickets = append(tickets, t)
	}
	return tickets, nil
}

func (repo *ticketRepository) UpdateTicket(t ticket.Ticket) (ticket.Ticket, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[t.ID]; !ok {
		return ticket.Ticket{}, ticket.ErrNotFound
	}
	repo.db.table[t.ID] = &t
	return t, nil
}
