package identity

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/dental/clinic/pkg/clinicdate"
)

type Service struct {
	patients PatientRepository
	doctors  DoctorRepository
	nurses   NurseRepository
	now      func() time.Time
}

func NewService(patients PatientRepository, doctors DoctorRepository, nurses NurseRepository) *Service {
	return &Service{patients: patients, doctors: doctors, nurses: nurses, now: time.Now}
}

// WithClock sets the source of "today" used for ages.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// -- Patient --

func (s *Service) validatePatient(p *Patient) error {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.MiddleName = strings.TrimSpace(p.MiddleName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Phone = strings.TrimSpace(p.Phone)

	if p.FirstName == "" {
		return invalid("first", "First name is required")
	}
	if p.LastName == "" {
		return invalid("last", "Last name is required")
	}
	if !Genders[p.Gender] {
		return invalid("gender", "Gender must be Male, Female or Other")
	}
	if p.DateOfBirth == "" {
		return invalid("dob", "Date of birth is required")
	}
	dob, err := clinicdate.NormalizeDate(p.DateOfBirth)
	if err != nil {
		return invalid("dob", err.Error())
	}
	if dob > clinicdate.Today(s.now()) {
		return invalid("dob", "Date of birth cannot be in the future")
	}
	p.DateOfBirth = dob
	if p.Phone == "" {
		return invalid("phone", "Phone is required")
	}
	if p.Email != "" {
		if err := validEmail(p.Email); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if err := s.validatePatient(p); err != nil {
		return err
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id int64) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

// GetPatientView returns the patient with today's age.
func (s *Service) GetPatientView(ctx context.Context, id int64) (*PatientView, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v := NewPatientView(*p, s.now())
	return &v, nil
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	if err := s.validatePatient(p); err != nil {
		return err
	}
	return s.patients.Update(ctx, p)
}

func (s *Service) DeletePatient(ctx context.Context, id int64) error {
	return s.patients.Delete(ctx, id)
}

// ListPatients returns every patient matching q, sorted. Paging is left to
// the caller so the total reflects the filtered set.
func (s *Service) ListPatients(ctx context.Context, q PatientQuery) ([]PatientView, error) {
	all, err := s.patients.List(ctx)
	if err != nil {
		return nil, err
	}
	return FilterPatients(all, q, s.now()), nil
}

func (s *Service) SearchPatients(ctx context.Context, term string) ([]Patient, error) {
	all, err := s.patients.List(ctx)
	if err != nil {
		return nil, err
	}
	return Autocomplete(all, term), nil
}

func (s *Service) CountPatients(ctx context.Context) (int, error) {
	all, err := s.patients.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(all), nil
}

// -- Doctor --

func validateStaff(name, email, phone *string) error {
	*name = strings.TrimSpace(*name)
	*email = strings.TrimSpace(*email)
	*phone = strings.TrimSpace(*phone)
	if *name == "" {
		return invalid("name", "Name is required")
	}
	if *phone == "" {
		return invalid("phone", "Phone is required")
	}
	if *email == "" {
		return invalid("email", "Email is required")
	}
	return validEmail(*email)
}

func validEmail(email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return invalid("email", "Email address is invalid")
	}
	return nil
}

func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) error {
	if err := validateStaff(&d.Name, &d.Email, &d.Phone); err != nil {
		return err
	}
	return s.doctors.Create(ctx, d)
}

func (s *Service) GetDoctor(ctx context.Context, id int64) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) UpdateDoctor(ctx context.Context, d *Doctor) error {
	if err := validateStaff(&d.Name, &d.Email, &d.Phone); err != nil {
		return err
	}
	return s.doctors.Update(ctx, d)
}

func (s *Service) DeleteDoctor(ctx context.Context, id int64) error {
	return s.doctors.Delete(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context) ([]Doctor, error) {
	return s.doctors.List(ctx)
}

// DoctorName resolves the name shown in scheduling conflict warnings.
func (s *Service) DoctorName(ctx context.Context, id int64) (string, error) {
	d, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return d.Name, nil
}

// -- Nurse --

func (s *Service) CreateNurse(ctx context.Context, n *Nurse) error {
	if err := validateStaff(&n.Name, &n.Email, &n.Phone); err != nil {
		return err
	}
	return s.nurses.Create(ctx, n)
}

func (s *Service) GetNurse(ctx context.Context, id int64) (*Nurse, error) {
	return s.nurses.GetByID(ctx, id)
}

func (s *Service) UpdateNurse(ctx context.Context, n *Nurse) error {
	if err := validateStaff(&n.Name, &n.Email, &n.Phone); err != nil {
		return err
	}
	return s.nurses.Update(ctx, n)
}

func (s *Service) DeleteNurse(ctx context.Context, id int64) error {
	return s.nurses.Delete(ctx, id)
}

func (s *Service) ListNurses(ctx context.Context) ([]Nurse, error) {
	return s.nurses.List(ctx)
}
