package student

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/edumanage/edurisk/core"
)

var (
	// errors
	ErrNotFound  = errors.New("student not found")
	ErrPRNExists = errors.New("a student with this PRN already exists")
)

// Student is a registry entry, keyed by the immutable PRN.
//
// Attendance, CGPA and marks are nullable: a seeded record carries none of
// them until a teacher upload fills them in. RiskScore/RiskLevel/RiskReasons
// are always derived from the other fields at the time of the last
// recompute; they are never written independently.
type Student struct {
	PRN          string       `json:"prn" db:"prn"`
	Name         string       `json:"name" db:"name"`
	Division     string       `json:"division" db:"division"`
	Email        string       `json:"email" db:"email"`
	Phone        string       `json:"phone" db:"phone"`
	CGPA         null.Float64 `json:"cgpa" db:"cgpa"`
	Attendance   null.Float64 `json:"attendance" db:"attendance"`
	MidsemMarks  null.Float64 `json:"midsem_marks" db:"midsem_marks"`
	EndsemMarks  null.Float64 `json:"endsem_marks" db:"endsem_marks"`
	Backlogs     int          `json:"backlogs" db:"backlogs"`
	Disciplinary bool         `json:"disciplinary" db:"disciplinary"`
	RiskScore    int          `json:"risk_score" db:"risk_score"`
	RiskLevel    RiskLevel    `json:"risk_level,omitempty" db:"risk_level"`
	RiskReasons  []string     `json:"risk_reasons,omitempty" db:"-"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"` // UTC
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"` // UTC
}

// HasRisk reports whether a risk recompute has ever run for this record.
func (s Student) HasRisk() bool { return s.RiskLevel != "" }

// IncomingRecord is one row of a teacher upload: an all-optional bag of
// fields around a mandatory PRN. A null field means "not provided, leave
// the registry value alone"; it is distinct from a provided zero.
type IncomingRecord struct {
	PRN          string       `json:"prn"`
	Name         null.String  `json:"name"`
	Email        null.String  `json:"email"`
	Phone        null.String  `json:"phone"`
	Attendance   null.Float64 `json:"attendance"`
	CGPA         null.Float64 `json:"cgpa"`
	MidsemMarks  null.Float64 `json:"midsem_marks"`
	EndsemMarks  null.Float64 `json:"endsem_marks"`
	Backlogs     null.Int     `json:"backlogs"`
	Disciplinary null.Bool    `json:"disciplinary"`
}

// UploadBatch is an ordered teacher upload plus its metadata. Ordering is
// significant: later records for the same PRN win field-by-field.
type UploadBatch struct {
	Source     string           `json:"source" validate:"omitempty,max=255"`
	Division   string           `json:"division" validate:"omitempty,division"`
	ReceivedAt time.Time        `json:"received_at"`
	Records    []IncomingRecord `json:"records" validate:"required"`
}

func (b *UploadBatch) Validate(validate *validator.Validate) error {
	b.Source = core.CleanString(b.Source)
	b.Division = core.CleanString(b.Division, true /* upper */)
	return validate.Struct(b)
}

// UploadResult partitions one batch's PRNs. Immutable once produced.
type UploadResult struct {
	Matched   []string `json:"matched"`
	Unmatched []string `json:"unmatched"`
	Blocked   []string `json:"blocked,omitempty"` // PRNs outside the caller's division scope
	Alerts    []string `json:"alerts"`            // post-merge attendance below the alert threshold
	Skipped   int      `json:"skipped"`           // records dropped for missing PRN
}

// UploadLog is the audit record persisted per batch: counts and metadata
// only, never the batch content.
type UploadLog struct {
	ID             string    `json:"id" db:"id"`
	Source         string    `json:"source" db:"source"`
	Division       string    `json:"division" db:"division"`
	UploadedAt     time.Time `json:"uploaded_at" db:"uploaded_at"` // UTC
	MatchedCount   int       `json:"matched_count" db:"matched_count"`
	UnmatchedCount int       `json:"unmatched_count" db:"unmatched_count"`
	BlockedCount   int       `json:"blocked_count" db:"blocked_count"`
	SkippedCount   int       `json:"skipped_count" db:"skipped_count"`
}

type QueryFilter struct {
	Division     string `query:"division"`
	MinRiskScore *int   `query:"min_risk_score"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Division == "" && qf.MinRiskScore == nil
}

func (qf *QueryFilter) Clean() {
	qf.Division = core.CleanString(qf.Division, true /* upper */)
}

// DashboardStats is the per-division aggregate consumed by the
// presentation layer. Missing attendance/CGPA values count as zero in the
// averages, matching the observed dashboards.
type DashboardStats struct {
	Total          int     `json:"total"`
	HighRisk       int     `json:"high_risk"`
	AvgCGPA        float64 `json:"avg_cgpa"`
	AvgAttendance  float64 `json:"avg_attendance"`
	AvgMidsemMarks float64 `json:"avg_midsem_marks"`
}
