package ticket

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/edumanage/edurisk/core"
)

type (
	Repository interface {
		CreateTicket(t Ticket) (Ticket, error)
		GetTicketByID(id string) (Ticket, error)
		QueryAllTickets() ([]Ticket, error)
		// FilterTickets applies AND operation on available QueryFilter fields.
		FilterTickets(filter QueryFilter) ([]Ticket, error)
		UpdateTicket(t Ticket) (Ticket, error)
	}

	// Service drives the Pending -> answered -> Solved lifecycle. All
	// transitions are legal, deliberately: a Solved ticket can be
	// reopened, and reopening never clears a stored reply.
	Service struct {
		repo           Repository
		answeredStatus Status
	}
)

func NewService(repo Repository, conf *core.Config) *Service {
	answered := Status(conf.Tickets.AnsweredStatus)
	if !ValidStatus(answered) || answered == StatusPending {
		answered = StatusInProgress
	}
	return &Service{repo: repo, answeredStatus: answered}
}

// AnsweredStatus is the status AttachReply forces; which one depends on
// the deployment (In Progress vs Replied).
func (svc *Service) AnsweredStatus() Status { return svc.answeredStatus }

// Submit creates the ticket in Pending.
func (svc *Service) Submit(nt NewTicket) (Ticket, error) {
	now := time.Now().UTC()
	return svc.repo.CreateTicket(Ticket{
		ID:          uuid.New().String(),
		StudentPRN:  nt.StudentPRN,
		Division:    nt.Division,
		Title:       nt.Title,
		Description: nt.Description,
		Category:    nt.Category,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// SetStatus moves the ticket to any known status. Reply fields, if set,
// are left alone, including when the ticket is moved back to Pending.
func (svc *Service) SetStatus(id string, status Status) (Ticket, error) {
	if !ValidStatus(status) {
		return Ticket{}, ErrUnknownStatus
	}
	t, err := svc.repo.GetTicketByID(id)
	if err != nil {
		return Ticket{}, err
	}
	t.Status = status
	t.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTicket(t)
}

// AttachReply sets the reply fields and forces the answered status. It is
// a single semantic transition: a reply can never exist on a ticket still
// marked Pending.
func (svc *Service) AttachReply(id, text, author string) (Ticket, error) {
	t, err := svc.repo.GetTicketByID(id)
	if err != nil {
		return Ticket{}, err
	}
	now := time.Now().UTC()
	t.ReplyText = null.StringFrom(core.CleanString(text))
	t.ReplyAuthor = null.StringFrom(core.CleanString(author))
	t.ReplyDate = null.TimeFrom(now)
	t.Status = svc.answeredStatus
	t.UpdatedAt = now
	return svc.repo.UpdateTicket(t)
}

func (svc *Service) GetByID(id string) (Ticket, error) {
	return svc.repo.GetTicketByID(id)
}

func (svc *Service) QueryAll() ([]Ticket, error) {
	return svc.repo.QueryAllTickets()
}

func (svc *Service) Filter(filter QueryFilter) ([]Ticket, error) {
	filter.Clean()
	if filter.IsEmpty() {
		return svc.repo.QueryAllTickets()
	}
	return svc.repo.FilterTickets(filter)
}
