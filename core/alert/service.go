package alert

import (
	"context"
	"fmt"
	"net/mail"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/edumanage/edurisk/core"
	"github.com/edumanage/edurisk/core/student"
)

const defaultSendTimeout = 5 * time.Second

type (
	Repository interface {
		CreateAlert(a Alert) (Alert, error)
		GetAlertByID(id string) (Alert, error)
		// QueryAlertsByPRN returns a student's alerts, most recent first.
		QueryAlertsByPRN(prn string) ([]Alert, error)
		MarkAlertRead(id string) error
	}

	// Service fans one batch of alert-worthy students out to the
	// notification channel. Each dispatch is independent: one student's
	// failed send never blocks the others, and nothing is retried.
	// One attempt per student per batch.
	Service struct {
		repo    Repository
		sms     core.SMSService
		mail    core.EmailService // optional second channel
		logger  core.Logger
		timeout time.Duration
	}
)

func NewService(repo Repository, sms core.SMSService, mailSvc core.EmailService, logger core.Logger, conf *core.Config) *Service {
	timeout := conf.Alerts.SendTimeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &Service{
		repo:    repo,
		sms:     sms,
		mail:    mailSvc,
		logger:  logger,
		timeout: timeout,
	}
}

// AttendanceMessage is the fixed dispatch template embedding name and
// attendance.
func AttendanceMessage(s student.Student) string {
	return fmt.Sprintf(
		"EduRisk Alert: Dear %s, your attendance has dropped to %.0f%%. Please contact your division teacher immediately.",
		s.Name, s.Attendance.Float64,
	)
}

// Dispatch sends the attendance alert to every given student concurrently
// and returns one Outcome per student, in input order. Duplicate sends
// across batches are tolerated, not deduplicated.
func (svc *Service) Dispatch(ctx context.Context, students []student.Student) []Outcome {
	outcomes := make([]Outcome, len(students))

	var wg sync.WaitGroup
	for i, s := range students {
		wg.Add(1)
		go func(i int, s student.Student) {
			defer wg.Done()
			outcomes[i] = svc.notify(ctx, s, AttendanceMessage(s))
		}(i, s)
	}
	wg.Wait()

	return outcomes
}

// Notify is the manually-triggered path: an operator-supplied free-text
// message for a single student.
func (svc *Service) Notify(ctx context.Context, s student.Student, message string) Outcome {
	return svc.notify(ctx, s, message)
}

func (svc *Service) notify(ctx context.Context, s student.Student, message string) Outcome {
	out := Outcome{StudentPRN: s.PRN}

	if s.Phone == "" {
		out.Err = errors.Errorf("student %s has no phone number on record", s.PRN)
		svc.logger.Warn(out.Err.Error())
		return out
	}

	sendCtx, cancel := context.WithTimeout(ctx, svc.timeout)
	defer cancel()

	if err := svc.sms.Send(sendCtx, core.SMSMessage{To: s.Phone, Body: message}); err != nil {
		out.Err = errors.Wrapf(err, "sending alert to %s", s.PRN)
		svc.logger.Error(fmt.Sprintf("alert dispatch failed for %s: %v", s.PRN, err), err)
		return out
	}

	// best-effort second channel; no outcome impact
	if svc.mail != nil && s.Email != "" {
		svc.mail.SendMessages(&core.EmailMessage{
			To:      []mail.Address{{Name: s.Name, Address: s.Email}},
			Subject: "Attendance alert",
			Body:    message,
		})
	}

	if _, err := svc.repo.CreateAlert(Alert{
		ID:          uuid.New().String(),
		StudentPRN:  s.PRN,
		StudentName: s.Name,
		Recipient:   s.Phone,
		RiskScore:   s.RiskScore,
		Message:     message,
		SentAt:      time.Now().UTC(),
	}); err != nil {
		// the SMS is out; a failed inbox write must not fail the dispatch
		svc.logger.Error(fmt.Sprintf("recording alert for %s: %v", s.PRN, err), err)
	}

	return out
}

func (svc *Service) QueryByPRN(prn string) ([]Alert, error) {
	return svc.repo.QueryAlertsByPRN(core.CleanString(prn, true /* upper */))
}

func (svc *Service) MarkRead(id string) error {
	return svc.repo.MarkAlertRead(id)
}
