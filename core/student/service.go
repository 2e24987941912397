package student

import (
	"fmt"
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/edumanage/edurisk/core"
)

type (
	Repository interface {
		CreateStudent(s Student) (Student, error)
		GetStudentByPRN(prn string) (Student, error)
		QueryAllStudents() ([]Student, error)
		// FilterStudents applies AND operation on available QueryFilter fields.
		FilterStudents(filter QueryFilter) ([]Student, error)
		// SaveStudents upserts the given records as one unit: either all
		// are applied or none is.
		SaveStudents(students ...Student) error
		DeleteStudentsByPRN(prns ...string) error
		// ClearUploadedFields unsets everything a teacher upload may have
		// written (attendance, CGPA, marks, risk fields) on all records.
		ClearUploadedFields() error
		// ReplaceAllStudents discards the registry and installs the given
		// roster.
		ReplaceAllStudents(students ...Student) error
	}

	UploadLogRepository interface {
		LogUpload(entry UploadLog) (UploadLog, error)
		QueryUploads(division string) ([]UploadLog, error)
	}

	Service struct {
		repo    Repository
		uploads UploadLogRepository
		logger  core.Logger
		policy  Policy
		conf    core.RiskConfig
	}
)

func NewService(repo Repository, uploads UploadLogRepository, logger core.Logger, conf *core.Config) (*Service, error) {
	policy, err := NewPolicy(conf.Risk)
	if err != nil {
		return nil, errors.Wrap(err, "building risk policy")
	}
	return &Service{
		repo:    repo,
		uploads: uploads,
		logger:  logger,
		policy:  policy,
		conf:    conf.Risk,
	}, nil
}

func (svc *Service) Policy() Policy { return svc.policy }

// ProcessUpload reconciles one batch against the registry, persists the
// merged records, and writes the audit entry. The registry is only touched
// after the whole batch has been computed; on a persistence error nothing
// is applied and the error is returned.
//
// Alert dispatch is deliberately not done here: the caller hands
// UploadResult.Alerts to the alert service once persistence has succeeded.
func (svc *Service) ProcessUpload(batch UploadBatch) (UploadResult, error) {
	students, err := svc.repo.QueryAllStudents()
	if err != nil {
		return UploadResult{}, errors.Wrap(err, "loading registry snapshot")
	}
	registry := make(map[string]Student, len(students))
	for _, s := range students {
		registry[s.PRN] = s
	}

	next, res := Reconcile(registry, batch, ReconcileConfig{
		Policy:         svc.policy,
		AlertThreshold: svc.conf.AlertThreshold,
		Unmatched:      UnmatchedPolicy(svc.conf.UnmatchedPolicy),
		Division:       batch.Division,
	})

	changed := make([]Student, 0, len(res.Matched))
	for _, prn := range res.Matched {
		changed = append(changed, next[prn])
	}
	if err = svc.repo.SaveStudents(changed...); err != nil {
		return UploadResult{}, errors.Wrap(err, "applying batch")
	}

	if res.Skipped > 0 {
		svc.logger.Warn(fmt.Sprintf("upload %q: skipped %d record(s) with no PRN", batch.Source, res.Skipped))
	}
	if len(res.Unmatched) > 0 {
		svc.logger.Info(fmt.Sprintf("upload %q: %d unmatched PRN(s)", batch.Source, len(res.Unmatched)))
	}

	if _, err = svc.uploads.LogUpload(UploadLog{
		Source:         batch.Source,
		Division:       batch.Division,
		UploadedAt:     batch.ReceivedAt,
		MatchedCount:   len(res.Matched),
		UnmatchedCount: len(res.Unmatched),
		BlockedCount:   len(res.Blocked),
		SkippedCount:   res.Skipped,
	}); err != nil {
		// the batch is already applied; audit failure must not undo it
		svc.logger.Error(fmt.Sprintf("upload %q: recording audit entry: %v", batch.Source, err), err)
	}

	return res, nil
}

func (svc *Service) GetByPRN(prn string) (Student, error) {
	return svc.repo.GetStudentByPRN(core.CleanString(prn, true /* upper */))
}

func (svc *Service) QueryAll() ([]Student, error) {
	return svc.repo.QueryAllStudents()
}

func (svc *Service) Filter(filter QueryFilter) ([]Student, error) {
	filter.Clean()
	if filter.IsEmpty() {
		return svc.repo.QueryAllStudents()
	}
	return svc.repo.FilterStudents(filter)
}

// HighRisk lists students at or above the configured high-risk score,
// highest first.
func (svc *Service) HighRisk(division string) ([]Student, error) {
	threshold := svc.conf.HighRiskThreshold
	students, err := svc.repo.FilterStudents(QueryFilter{
		Division:     core.CleanString(division, true /* upper */),
		MinRiskScore: &threshold,
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(students, func(i, j int) bool { return students[i].RiskScore > students[j].RiskScore })
	return students, nil
}

// Dashboard aggregates one division for the presentation layer.
func (svc *Service) Dashboard(division string) (DashboardStats, error) {
	students, err := svc.repo.FilterStudents(QueryFilter{Division: core.CleanString(division, true /* upper */)})
	if err != nil {
		return DashboardStats{}, err
	}

	stats := DashboardStats{Total: len(students)}
	if stats.Total == 0 {
		return stats, nil
	}

	var cgpaSum, attSum, marksSum float64
	for _, s := range students {
		cgpaSum += s.CGPA.Float64 // missing counts as zero, as observed
		attSum += s.Attendance.Float64
		marksSum += s.MidsemMarks.Float64
		if s.RiskScore >= svc.conf.HighRiskThreshold {
			stats.HighRisk++
		}
	}
	n := float64(stats.Total)
	stats.AvgCGPA = math.Round(cgpaSum/n*100) / 100
	stats.AvgAttendance = math.Round(attSum / n)
	stats.AvgMidsemMarks = math.Round(marksSum / n)
	return stats, nil
}

func (svc *Service) Delete(prns ...string) error {
	for i, prn := range prns {
		prns[i] = core.CleanString(prn, true /* upper */)
	}
	return svc.repo.DeleteStudentsByPRN(prns...)
}

// ClearUploadedData unsets all upload-derived fields, registry-wide.
func (svc *Service) ClearUploadedData() error {
	return svc.repo.ClearUploadedFields()
}

// ResetToSeed discards the registry and restores the seed roster.
func (svc *Service) ResetToSeed() error {
	return svc.repo.ReplaceAllStudents(SeedRoster()...)
}

func (svc *Service) Uploads(division string) ([]UploadLog, error) {
	return svc.uploads.QueryUploads(core.CleanString(division, true /* upper */))
}
