package student

import (
	"math"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/edumanage/edurisk/core"
)

// UnmatchedPolicy decides what happens to an uploaded PRN the registry has
// never seen. Both behaviors exist in production; the choice is
// configuration, never an assumption.
type UnmatchedPolicy string

const (
	// RejectUnmatched reports the PRN back to the caller (closed,
	// registry-authoritative deployments).
	RejectUnmatched UnmatchedPolicy = "reject"
	// CreateUnmatched synthesizes a new record with documented defaults
	// (open, self-registering deployments).
	CreateUnmatched UnmatchedPolicy = "create"
)

// Defaults for records synthesized under CreateUnmatched.
const (
	defaultAttendance = 75.0
	defaultCGPA       = 7.0

	// DefaultAlertThreshold is the attendance floor below which a merged
	// record becomes alert-worthy.
	DefaultAlertThreshold = 60.0
)

// ReconcileConfig parameterizes one reconciliation run.
type ReconcileConfig struct {
	Policy         Policy
	AlertThreshold float64
	Unmatched      UnmatchedPolicy
	// Seed is an optional secondary master roster: a PRN absent from the
	// registry but present here is inserted as seed-plus-upload.
	Seed map[string]Student
	// Division scopes the run to the uploading teacher's cohort; records
	// matching a student in another division are blocked, not merged.
	// Empty disables scoping.
	Division string
}

func (cfg ReconcileConfig) withDefaults() ReconcileConfig {
	if cfg.Policy.GradeBands == nil {
		cfg.Policy = DefaultPolicy()
	}
	if cfg.AlertThreshold == 0 {
		cfg.AlertThreshold = DefaultAlertThreshold
	}
	if cfg.Unmatched == "" {
		cfg.Unmatched = RejectUnmatched
	}
	return cfg
}

// Reconcile merges an upload batch into a copy of the registry snapshot and
// partitions the batch's PRNs into matched / unmatched / blocked / alert-worthy.
//
// It performs no I/O and never mutates its inputs: persistence, audit
// logging and notification are the caller's business, applied only after
// the whole batch has been computed (all-or-nothing visibility).
//
// Records are processed in batch order; when a PRN appears twice, the later
// record's present fields win. Risk is recomputed if and only if the merged
// record holds both an attendance and a CGPA value; otherwise the prior
// risk fields stay as they are. Records without a PRN are dropped and
// counted in Skipped.
func Reconcile(registry map[string]Student, batch UploadBatch, cfg ReconcileConfig) (map[string]Student, UploadResult) {
	cfg = cfg.withDefaults()

	next := make(map[string]Student, len(registry))
	for prn, s := range registry {
		next[prn] = s
	}

	ts := batch.ReceivedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	res := UploadResult{
		Matched:   []string{},
		Unmatched: []string{},
		Alerts:    []string{},
	}
	seen := map[string]bool{}
	addOnce := func(list *[]string, key, prn string) {
		if !seen[key+prn] {
			seen[key+prn] = true
			*list = append(*list, prn)
		}
	}

	for _, rec := range batch.Records {
		prn := core.CleanString(rec.PRN, true /* upper */)
		if prn == "" {
			res.Skipped++
			continue
		}

		cur, ok := next[prn]
		if !ok {
			if seeded, found := cfg.Seed[prn]; found {
				cur = seeded
				cur.PRN = prn
				ok = true
			}
		}
		if !ok {
			if cfg.Unmatched != CreateUnmatched {
				addOnce(&res.Unmatched, "u", prn)
				continue
			}
			cur = Student{
				PRN:        prn,
				Division:   cfg.Division,
				Attendance: null.Float64From(defaultAttendance),
				CGPA:       null.Float64From(defaultCGPA),
				CreatedAt:  ts,
			}
		}

		if cfg.Division != "" && cur.Division != "" && cur.Division != cfg.Division {
			addOnce(&res.Blocked, "b", prn)
			continue
		}

		merged := merge(cur, rec)
		if merged.Attendance.Valid && merged.CGPA.Valid {
			r := cfg.Policy.Compute(RiskInput{
				Attendance:    merged.Attendance.Float64,
				CGPA:          merged.CGPA.Float64,
				Backlogs:      merged.Backlogs,
				Disciplinary:  merged.Disciplinary,
				PeriodicMarks: merged.MidsemMarks,
			})
			merged.RiskScore = r.Score
			merged.RiskLevel = r.Level
			merged.RiskReasons = r.Reasons
		}
		if merged.CreatedAt.IsZero() {
			merged.CreatedAt = ts
		}
		merged.UpdatedAt = ts

		next[prn] = merged
		addOnce(&res.Matched, "m", prn)

		if merged.Attendance.Valid && merged.Attendance.Float64 < cfg.AlertThreshold {
			addOnce(&res.Alerts, "a", prn)
		}
	}

	return next, res
}

// merge overlays the record's present fields onto the student; absent
// fields leave the registry value untouched. Numeric inputs are clamped,
// never rejected.
func merge(s Student, rec IncomingRecord) Student {
	if rec.Name.Valid {
		s.Name = core.CleanString(rec.Name.String)
	}
	if rec.Email.Valid {
		s.Email = core.CleanString(rec.Email.String)
	}
	if rec.Phone.Valid {
		s.Phone = core.CleanString(rec.Phone.String)
	}
	if rec.Attendance.Valid {
		s.Attendance = null.Float64From(clamp(rec.Attendance.Float64, 0, 100))
	}
	if rec.CGPA.Valid {
		s.CGPA = null.Float64From(math.Max(rec.CGPA.Float64, 0))
	}
	if rec.MidsemMarks.Valid {
		s.MidsemMarks = null.Float64From(math.Max(rec.MidsemMarks.Float64, 0))
	}
	if rec.EndsemMarks.Valid {
		s.EndsemMarks = null.Float64From(math.Max(rec.EndsemMarks.Float64, 0))
	}
	if rec.Backlogs.Valid {
		if rec.Backlogs.Int < 0 {
			s.Backlogs = 0
		} else {
			s.Backlogs = rec.Backlogs.Int
		}
	}
	if rec.Disciplinary.Valid {
		s.Disciplinary = rec.Disciplinary.Bool
	}
	return s
}
