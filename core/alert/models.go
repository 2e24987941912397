package alert

import (
	"errors"
	"time"
)

var (
	// errors
	ErrNotFound = errors.New("alert not found")
)

// Alert is one delivered (or attempted) notification, kept for the
// student-facing notifications view.
type Alert struct {
	ID          string    `json:"id" db:"id"`
	StudentPRN  string    `json:"student_prn" db:"student_prn"`
	StudentName string    `json:"student_name" db:"student_name"`
	Recipient   string    `json:"recipient" db:"recipient"` // phone number
	RiskScore   int       `json:"risk_score" db:"risk_score"`
	Message     string    `json:"message" db:"message"`
	SentAt      time.Time `json:"sent_at" db:"sent_at"` // UTC
	Read        bool      `json:"read" db:"read"`
}

// Outcome is the per-recipient result of one dispatch fan-out.
type Outcome struct {
	StudentPRN string `json:"student_prn"`
	Err        error  `json:"-"`
}

func (o Outcome) OK() bool { return o.Err == nil }
