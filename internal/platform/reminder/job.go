// Package reminder emails patients ahead of their appointments on a cron
// schedule.
package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/dental/clinic/internal/domain/identity"
	"github.com/dental/clinic/internal/domain/scheduling"
	"github.com/dental/clinic/internal/platform/metrics"
	"github.com/dental/clinic/pkg/clinicdate"
)

const (
	OutcomeSent    = "sent"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

type Appointments interface {
	ListBetween(ctx context.Context, from, to string) ([]scheduling.Appointment, error)
}

type Patients interface {
	GetPatient(ctx context.Context, id int64) (*identity.Patient, error)
}

type Doctors interface {
	DoctorName(ctx context.Context, id int64) (string, error)
}

// Result counts what one run did with the appointments in its window.
type Result struct {
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// Job sends one reminder per appointment slot per process. Moving an
// appointment to a new date or time earns it a fresh reminder. Failed
// deliveries are retried on the next run; appointments without a patient
// email are skipped for good.
type Job struct {
	appointments Appointments
	patients     Patients
	doctors      Doctors
	notifier     Notifier
	templates    *TemplateEngine
	lead         time.Duration
	loc          *time.Location
	now          func() time.Time
	metrics      *metrics.Collectors
	logger       zerolog.Logger

	mu      sync.Mutex
	handled map[slot]time.Time // slot -> start, pruned once started

	cron *cron.Cron
}

func NewJob(a Appointments, p Patients, n Notifier, lead time.Duration) *Job {
	return &Job{
		appointments: a,
		patients:     p,
		notifier:     n,
		templates:    NewTemplateEngine(),
		lead:         lead,
		loc:          time.Local,
		now:          time.Now,
		logger:       zerolog.Nop(),
		handled:      make(map[slot]time.Time),
	}
}

func (j *Job) WithDoctors(d Doctors) *Job {
	j.doctors = d
	return j
}

func (j *Job) WithLocation(loc *time.Location) *Job {
	j.loc = loc
	return j
}

func (j *Job) WithClock(now func() time.Time) *Job {
	j.now = now
	return j
}

func (j *Job) WithMetrics(m *metrics.Collectors) *Job {
	j.metrics = m
	return j
}

func (j *Job) WithLogger(l zerolog.Logger) *Job {
	j.logger = l
	return j
}

// Start schedules RunOnce with a standard five-field cron spec. Runs that
// would overlap a slow predecessor are skipped.
func (j *Job) Start(schedule string) error {
	c := cron.New(
		cron.WithLocation(j.loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := c.AddFunc(schedule, j.tick); err != nil {
		return fmt.Errorf("schedule reminders %q: %w", schedule, err)
	}
	c.Start()
	j.cron = c
	j.logger.Info().Str("schedule", schedule).Dur("lead", j.lead).Msg("reminder job started")
	return nil
}

// Stop halts the scheduler and waits for a running pass to finish.
func (j *Job) Stop() {
	if j.cron == nil {
		return
	}
	<-j.cron.Stop().Done()
	j.cron = nil
}

func (j *Job) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if _, err := j.RunOnce(ctx); err != nil {
		j.logger.Error().Err(err).Msg("reminder run failed")
	}
}

// RunOnce reminds every patient whose appointment starts between now and
// now plus the lead time.
func (j *Job) RunOnce(ctx context.Context) (Result, error) {
	var res Result

	now := j.now().In(j.loc)
	end := now.Add(j.lead)
	appts, err := j.appointments.ListBetween(ctx, clinicdate.FormatDate(now), clinicdate.FormatDate(end))
	if err != nil {
		return res, fmt.Errorf("list appointments: %w", err)
	}
	j.prune(now)

	for _, a := range appts {
		start, err := time.ParseInLocation(clinicdate.DateLayout+" "+clinicdate.TimeLayout, a.Date+" "+a.Time, j.loc)
		if err != nil || start.Before(now) || start.After(end) {
			continue
		}
		key := slot{id: a.ID, date: a.Date, time: a.Time}
		if j.wasHandled(key) {
			continue
		}

		outcome, err := j.remind(ctx, a)
		switch outcome {
		case OutcomeSent:
			res.Sent++
			j.markHandled(key, start)
		case OutcomeSkipped:
			res.Skipped++
			j.markHandled(key, start)
		default:
			res.Failed++
			j.logger.Warn().Err(err).Int64("appointment_id", a.ID).Msg("reminder not delivered")
		}
		j.count(outcome)
	}

	j.logger.Info().
		Int("sent", res.Sent).
		Int("failed", res.Failed).
		Int("skipped", res.Skipped).
		Msg("reminder run complete")
	return res, nil
}

func (j *Job) remind(ctx context.Context, a scheduling.Appointment) (string, error) {
	p, err := j.patients.GetPatient(ctx, a.PatientID)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("load patient %d: %w", a.PatientID, err)
	}
	if p.Email == "" {
		return OutcomeSkipped, nil
	}

	doctor := "your dentist"
	if j.doctors != nil {
		if name, err := j.doctors.DoctorName(ctx, a.DoctorID); err == nil && name != "" {
			doctor = name
		}
	}

	subject, body, err := j.templates.Render(AppointmentReminder, map[string]string{
		"patient_name": p.FullName(),
		"date":         clinicdate.FormatDateDisplay(a.Date),
		"time":         clinicdate.FormatTimeDisplay(a.Time),
		"type":         a.Type,
		"doctor":       doctor,
		"reference":    a.ReferenceNumber,
	})
	if err != nil {
		return OutcomeFailed, err
	}
	if err := j.notifier.Send(ctx, p.Email, subject, body); err != nil {
		return OutcomeFailed, err
	}
	return OutcomeSent, nil
}

type slot struct {
	id   int64
	date string
	time string
}

func (j *Job) wasHandled(k slot) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	_, ok := j.handled[k]
	return ok
}

func (j *Job) markHandled(k slot, start time.Time) {
	j.mu.Lock()
	j.handled[k] = start
	j.mu.Unlock()
}

// prune forgets slots that have already started; they can never be
// reminded again.
func (j *Job) prune(now time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for k, start := range j.handled {
		if start.Before(now) {
			delete(j.handled, k)
		}
	}
}

func (j *Job) count(outcome string) {
	if j.metrics != nil {
		j.metrics.RemindersSent.WithLabelValues(outcome).Inc()
	}
}
