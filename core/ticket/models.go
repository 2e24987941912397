package ticket

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/edumanage/edurisk/core"
)

var (
	// errors
	ErrNotFound      = errors.New("ticket not found")
	ErrUnknownStatus = errors.New("unknown ticket status")
)

type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	// StatusReplied is the "has been answered" status of the alternate
	// deployment; functionally equivalent to In Progress.
	StatusReplied Status = "Replied"
	StatusSolved  Status = "Solved"
)

// Statuses a caller may set explicitly. None is terminal: a Solved ticket
// can be reopened.
var Statuses = []Status{StatusPending, StatusInProgress, StatusReplied, StatusSolved}

func ValidStatus(s Status) bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

type Category string

const (
	CategoryAcademic   Category = "Academic"
	CategoryAttendance Category = "Attendance"
	CategoryExam       Category = "Exam"
	CategoryPersonal   Category = "Personal"
	CategoryOther      Category = "Other"
)

// Ticket is a student-submitted query with an optional teacher reply.
// A reply is never attached without the status leaving Pending.
type Ticket struct {
	ID          string      `json:"id" db:"id"`
	StudentPRN  string      `json:"student_prn" db:"student_prn"`
	Division    string      `json:"division" db:"division"`
	Title       string      `json:"title" db:"title"`
	Description string      `json:"description" db:"description"`
	Category    Category    `json:"category" db:"category"`
	Status      Status      `json:"status" db:"status"`
	ReplyText   null.String `json:"reply_text" db:"reply_text"`
	ReplyAuthor null.String `json:"reply_author" db:"reply_author"`
	ReplyDate   null.Time   `json:"reply_date" db:"reply_date"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"` // UTC
}

func (t Ticket) HasReply() bool { return t.ReplyText.Valid }

// NewTicket contains information needed to submit a new Ticket.
type NewTicket struct {
	StudentPRN  string   `json:"student_prn" validate:"required,prn"`
	Division    string   `json:"division" validate:"omitempty,division"`
	Title       string   `json:"title" validate:"required,max=255"`
	Description string   `json:"description" validate:"required"`
	Category    Category `json:"category" validate:"omitempty,oneof=Academic Attendance Exam Personal Other"`
}

func (nt *NewTicket) Validate(validate *validator.Validate) error {
	nt.StudentPRN = core.CleanString(nt.StudentPRN, true /* upper */)
	nt.Division = core.CleanString(nt.Division, true /* upper */)
	nt.Title = core.CleanString(nt.Title)
	nt.Description = core.CleanString(nt.Description)
	return validate.Struct(nt)
}

type QueryFilter struct {
	Division   string `query:"division"`
	StudentPRN string `query:"student_prn"`
	Status     Status `query:"status"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Division == "" && qf.StudentPRN == "" && qf.Status == ""
}

func (qf *QueryFilter) Clean() {
	qf.Division = core.CleanString(qf.Division, true /* upper */)
	qf.StudentPRN = core.CleanString(qf.StudentPRN, true /* upper */)
}
