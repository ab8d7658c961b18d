package dashboard

import (
	"context"
	"time"

	"github.com/dental/clinic/internal/domain/ehr"
	"github.com/dental/clinic/internal/domain/identity"
	"github.com/dental/clinic/internal/domain/scheduling"
	"github.com/dental/clinic/internal/domain/supply"
	"github.com/dental/clinic/pkg/clinicdate"
)

type Patients interface {
	CountPatients(ctx context.Context) (int, error)
	GetPatientView(ctx context.Context, id int64) (*identity.PatientView, error)
}

type Appointments interface {
	List(ctx context.Context, tab scheduling.Tab) ([]scheduling.Appointment, error)
	ListByPatient(ctx context.Context, patientID int64) ([]scheduling.Appointment, error)
}

type Supplies interface {
	LowStock(ctx context.Context) ([]supply.View, error)
}

type Records interface {
	ListByPatient(ctx context.Context, patientID int64) ([]ehr.EHR, error)
}

type Service struct {
	patients     Patients
	appointments Appointments
	supplies     Supplies
	records      Records
	now          func() time.Time
}

func NewService(p Patients, a Appointments, s Supplies, r Records) *Service {
	return &Service{patients: p, appointments: a, supplies: s, records: r, now: time.Now}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	count, err := s.patients.CountPatients(ctx)
	if err != nil {
		return Summary{}, err
	}
	appts, err := s.appointments.List(ctx, scheduling.TabAll)
	if err != nil {
		return Summary{}, err
	}
	low, err := s.supplies.LowStock(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(appts, count, low, s.now()), nil
}

// PatientDetail gathers a patient's appointments (newest first), health
// records and last visit.
func (s *Service) PatientDetail(ctx context.Context, patientID int64) (*PatientDetail, error) {
	p, err := s.patients.GetPatientView(ctx, patientID)
	if err != nil {
		return nil, err
	}
	appts, err := s.appointments.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	recs, err := s.records.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	scheduling.SortByDateTime(appts, true)
	if appts == nil {
		appts = []scheduling.Appointment{}
	}
	if recs == nil {
		recs = []ehr.EHR{}
	}
	return &PatientDetail{
		Patient:      *p,
		Appointments: appts,
		Records:      recs,
		LastVisit:    LastVisit(appts, clinicdate.Today(s.now())),
	}, nil
}
