package student

import (
	"math"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/edumanage/edurisk/core"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// LevelScheme maps a risk score to a coarse level. Two schemes are in
// production use; neither is "the" correct one.
type LevelScheme string

const (
	// ThreeTierLevels: High >= 70, Medium 40-69, Low < 40.
	ThreeTierLevels LevelScheme = "three-tier"
	// TwoTierLevels is the legacy single split: High >= 50, else Low.
	TwoTierLevels LevelScheme = "two-tier"
)

type (
	// Band scores values strictly below Below. Bands are evaluated in
	// order; the first hit wins.
	Band struct {
		Below  float64
		Points int
		Reason string
	}

	// IntBand scores counts of at least AtLeast. First hit wins.
	IntBand struct {
		AtLeast int
		Points  int
		Reason  string
	}
)

var (
	AttendanceBands = []Band{
		{Below: 60, Points: 30, Reason: "Very low attendance (<60%)"},
		{Below: 75, Points: 20, Reason: "Low attendance (<75%)"},
	}

	// DefaultGradeBands is the three-step CGPA table.
	DefaultGradeBands = []Band{
		{Below: 5.0, Points: 35, Reason: "Very low CGPA (<5.0)"},
		{Below: 6.0, Points: 25, Reason: "Low CGPA (<6.0)"},
		{Below: 7.0, Points: 20, Reason: "Below average CGPA (<7.0)"},
	}

	// LegacyGradeBands shifts the mid threshold to 6.5; a second calling
	// convention in the system still depends on it.
	LegacyGradeBands = []Band{
		{Below: 5.0, Points: 35, Reason: "Very low CGPA (<5.0)"},
		{Below: 6.5, Points: 25, Reason: "Low CGPA (<6.5)"},
	}

	// MarksBands score the periodic test as a percentage of full marks.
	MarksBands = []Band{
		{Below: 40, Points: 25, Reason: "Very low marks (<40%)"},
		{Below: 60, Points: 15, Reason: "Low marks (<60%)"},
	}

	BacklogBands = []IntBand{
		{AtLeast: 4, Points: 30, Reason: "High backlog count (4+)"},
		{AtLeast: 2, Points: 20, Reason: "Multiple backlogs (2-3)"},
	}
)

const (
	disciplinaryPoints = 10
	disciplinaryReason = "Disciplinary record on file"

	maxRiskScore            = 100
	defaultMaxPeriodicMarks = 50
)

// Policy is a named, selectable scoring strategy: a grade-band table, a
// level scheme and the periodic-marks scale.
type Policy struct {
	GradeBands       []Band
	Levels           LevelScheme
	MaxPeriodicMarks float64
}

func DefaultPolicy() Policy {
	return Policy{
		GradeBands:       DefaultGradeBands,
		Levels:           ThreeTierLevels,
		MaxPeriodicMarks: defaultMaxPeriodicMarks,
	}
}

// NewPolicy builds a Policy from configuration, rejecting unknown variant
// names so a typo cannot silently fall back to a default.
func NewPolicy(conf core.RiskConfig) (Policy, error) {
	p := DefaultPolicy()

	switch conf.GradeBands {
	case "", "default":
	case "legacy":
		p.GradeBands = LegacyGradeBands
	default:
		return Policy{}, errors.Errorf("unknown grade-band table %q", conf.GradeBands)
	}

	switch LevelScheme(conf.LevelScheme) {
	case "", ThreeTierLevels:
	case TwoTierLevels:
		p.Levels = TwoTierLevels
	default:
		return Policy{}, errors.Errorf("unknown level scheme %q", conf.LevelScheme)
	}

	if conf.MaxPeriodicMarks > 0 {
		p.MaxPeriodicMarks = conf.MaxPeriodicMarks
	}
	return p, nil
}

// RiskInput are the raw indicators a risk recompute runs on.
type RiskInput struct {
	Attendance   float64
	CGPA         float64
	Backlogs     int
	Disciplinary bool
	// PeriodicMarks: a valid zero is treated the same as absent. A genuine
	// zero score therefore cannot be expressed; this conflation exists in
	// the upstream data feeds and is preserved deliberately.
	PeriodicMarks null.Float64
}

type RiskResult struct {
	Score   int
	Level   RiskLevel
	Reasons []string
}

// Compute is total over its input domain: out-of-range numbers are clamped,
// never rejected. Scoring is additive over the band tables, capped at 100,
// and reasons accumulate in evaluation order (attendance, CGPA, periodic
// marks, backlogs, disciplinary).
func (p Policy) Compute(in RiskInput) RiskResult {
	attendance := clamp(in.Attendance, 0, 100)
	cgpa := math.Max(in.CGPA, 0)

	var score int
	reasons := make([]string, 0, 4)

	addBand := func(value float64, bands []Band) {
		for _, b := range bands {
			if value < b.Below {
				score += b.Points
				reasons = append(reasons, b.Reason)
				return
			}
		}
	}

	addBand(attendance, AttendanceBands)
	addBand(cgpa, p.GradeBands)

	if in.PeriodicMarks.Valid && in.PeriodicMarks.Float64 != 0 {
		maxMarks := p.MaxPeriodicMarks
		if maxMarks <= 0 {
			maxMarks = defaultMaxPeriodicMarks
		}
		pct := clamp(in.PeriodicMarks.Float64, 0, maxMarks) / maxMarks * 100
		addBand(pct, MarksBands)
	}

	for _, b := range BacklogBands {
		if in.Backlogs >= b.AtLeast {
			score += b.Points
			reasons = append(reasons, b.Reason)
			break
		}
	}

	if in.Disciplinary {
		score += disciplinaryPoints
		reasons = append(reasons, disciplinaryReason)
	}

	if score > maxRiskScore {
		score = maxRiskScore
	}

	return RiskResult{Score: score, Level: p.level(score), Reasons: reasons}
}

func (p Policy) level(score int) RiskLevel {
	if p.Levels == TwoTierLevels {
		if score >= 50 {
			return RiskHigh
		}
		return RiskLow
	}
	switch {
	case score >= 70:
		return RiskHigh
	case score >= 40:
		return RiskMedium
	default:
		return RiskLow
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
