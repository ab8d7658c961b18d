package scheduling

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/dental/clinic/internal/platform/metrics"
	"github.com/dental/clinic/pkg/clinicdate"
)

// maxReferenceAttempts bounds retries when a generated reference number is
// already taken.
const maxReferenceAttempts = 5

type Service struct {
	appointments AppointmentRepository
	doctors      DoctorDirectory
	window       int
	now          func() time.Time
	metrics      *metrics.Collectors
}

// NewService wires the scheduling service. window is the conflict window
// in minutes; zero or less selects DefaultConflictWindow.
func NewService(appt AppointmentRepository, doctors DoctorDirectory, window int) *Service {
	if window <= 0 {
		window = DefaultConflictWindow
	}
	return &Service{appointments: appt, doctors: doctors, window: window, now: time.Now}
}

// WithClock sets the source of "now". Its location decides what today is.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) WithMetrics(m *metrics.Collectors) *Service {
	s.metrics = m
	return s
}

func (s *Service) today() string {
	return clinicdate.Today(s.now())
}

// normalize validates the form fields in the order the console reports
// them and rewrites date and time into API format.
func normalize(a *Appointment) error {
	if a.PatientID <= 0 {
		return invalid("patientId", "Please select a patient")
	}
	if strings.TrimSpace(a.Date) == "" {
		return invalid("date", "Please select a date")
	}
	if strings.TrimSpace(a.Time) == "" {
		return invalid("time", "Please select a time")
	}
	a.Type = strings.TrimSpace(a.Type)
	if a.Type == "" {
		return invalid("type", "Please select appointment type")
	}
	if a.DoctorID <= 0 {
		return invalid("doctorId", "Please select a doctor")
	}
	if a.NurseID <= 0 {
		return invalid("nurseId", "Please select a nurse")
	}

	date, err := clinicdate.NormalizeDate(a.Date)
	if err != nil {
		return invalid("date", err.Error())
	}
	t, err := clinicdate.NormalizeTime(a.Time)
	if err != nil {
		return invalid("time", err.Error())
	}
	a.Date, a.Time = date, t
	return nil
}

func (s *Service) List(ctx context.Context, tab Tab) ([]Appointment, error) {
	all, err := s.appointments.List(ctx, AppointmentFilter{})
	if err != nil {
		return nil, err
	}
	return Filter(all, tab, s.today()), nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID int64) ([]Appointment, error) {
	return s.appointments.List(ctx, AppointmentFilter{PatientID: patientID})
}

// ListBetween returns appointments dated from..to inclusive, by date and time.
func (s *Service) ListBetween(ctx context.Context, from, to string) ([]Appointment, error) {
	appts, err := s.appointments.List(ctx, AppointmentFilter{From: from, To: to})
	if err != nil {
		return nil, err
	}
	SortByDateTime(appts, false)
	return appts, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

// Create stores a new appointment with a fresh reference number. A returned
// Conflict is a warning only; the appointment has been saved.
func (s *Service) Create(ctx context.Context, a *Appointment) (*Conflict, error) {
	if err := normalize(a); err != nil {
		return nil, err
	}
	ref, err := s.NewReferenceNumber(ctx)
	if err != nil {
		return nil, err
	}
	a.ReferenceNumber = ref

	conflict, err := s.CheckConflict(ctx, Candidate{Date: a.Date, Time: a.Time, DoctorID: a.DoctorID})
	if err != nil {
		return nil, err
	}
	if err := s.appointments.Create(ctx, a); err != nil {
		return nil, err
	}
	return conflict, nil
}

// Update replaces an appointment's fields. The reference number never
// changes.
func (s *Service) Update(ctx context.Context, a *Appointment) (*Conflict, error) {
	if err := normalize(a); err != nil {
		return nil, err
	}
	existing, err := s.appointments.GetByID(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	a.ReferenceNumber = existing.ReferenceNumber

	conflict, err := s.CheckConflict(ctx, Candidate{Date: a.Date, Time: a.Time, DoctorID: a.DoctorID, ExcludeID: a.ID})
	if err != nil {
		return nil, err
	}
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	return conflict, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.appointments.Delete(ctx, id)
}

// CheckConflict runs the double-booking check against the current
// appointments. An incomplete candidate yields no conflict.
func (s *Service) CheckConflict(ctx context.Context, cand Candidate) (*Conflict, error) {
	if !cand.complete() {
		return nil, nil
	}
	date, err := clinicdate.NormalizeDate(cand.Date)
	if err != nil {
		return nil, invalid("date", err.Error())
	}
	cand.Date = date
	t, err := clinicdate.NormalizeTime(cand.Time)
	if err != nil {
		return nil, invalid("time", err.Error())
	}
	cand.Time = t

	sameDay, err := s.appointments.List(ctx, AppointmentFilter{DoctorID: cand.DoctorID, From: cand.Date, To: cand.Date})
	if err != nil {
		return nil, err
	}
	clash := FindConflict(sameDay, cand, s.window)
	if clash == nil {
		return nil, nil
	}

	name := ""
	if s.doctors != nil {
		// an unknown doctor still gets a warning, just without a name
		name, _ = s.doctors.DoctorName(ctx, clash.DoctorID)
	}
	if s.metrics != nil {
		s.metrics.ConflictsDetected.Inc()
	}
	return NewConflict(clash, name), nil
}

// NewReferenceNumber returns an unused reference number for the current year.
func (s *Service) NewReferenceNumber(ctx context.Context) (string, error) {
	year := s.now().Year()
	for i := 0; i < maxReferenceAttempts; i++ {
		ref, err := NewReferenceNumber(year, rand.Reader)
		if err != nil {
			return "", err
		}
		taken, err := s.appointments.ReferenceExists(ctx, ref)
		if err != nil {
			return "", err
		}
		if !taken {
			return ref, nil
		}
	}
	return "", fmt.Errorf("could not allocate a unique reference number after %d attempts", maxReferenceAttempts)
}

func (s *Service) Month(ctx context.Context, m Month) (MonthView, error) {
	first := fmt.Sprintf("%04d-%02d-01", m.Year, int(m.Month))
	last := fmt.Sprintf("%04d-%02d-%02d", m.Year, int(m.Month), m.DaysIn())
	appts, err := s.appointments.List(ctx, AppointmentFilter{From: first, To: last})
	if err != nil {
		return MonthView{}, err
	}
	return BuildMonth(m, appts, s.today()), nil
}

// CurrentMonth is the calendar page a "Today" jump lands on.
func (s *Service) CurrentMonth() Month {
	return MonthOf(s.now())
}

func (s *Service) Day(ctx context.Context, date string) ([]AgendaItem, error) {
	d, err := clinicdate.NormalizeDate(date)
	if err != nil {
		return nil, invalid("date", err.Error())
	}
	appts, err := s.appointments.List(ctx, AppointmentFilter{From: d, To: d})
	if err != nil {
		return nil, err
	}
	return DayAgenda(appts, d, s.now()), nil
}
