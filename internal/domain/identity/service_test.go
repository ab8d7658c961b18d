package identity

import (
	"context"
	"errors"
	"testing"
	"time"
)

var fixedToday = day(2024, time.June, 15)

func newTestService() *Service {
	return NewService(NewPatientRepoMemory(), NewDoctorRepoMemory(), NewNurseRepoMemory()).
		WithClock(func() time.Time { return fixedToday })
}

func validPatient() *Patient {
	return &Patient{FirstName: " Jane ", LastName: "Doe", Gender: "Female", DateOfBirth: "2000-06-15", Phone: "555-1234"}
}

func TestService_CreatePatient(t *testing.T) {
	svc := newTestService()
	p := validPatient()
	if err := svc.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == 0 || p.CreatedAt.IsZero() {
		t.Errorf("expected id and timestamps, got %+v", p)
	}
	if p.FirstName != "Jane" {
		t.Errorf("expected trimmed first name, got %q", p.FirstName)
	}

	v, err := svc.GetPatientView(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Age != 24 {
		t.Errorf("expected age 24, got %d", v.Age)
	}
}

func TestService_CreatePatient_Validation(t *testing.T) {
	svc := newTestService()
	tests := []struct {
		name   string
		mutate func(p *Patient)
		field  string
	}{
		{"first", func(p *Patient) { p.FirstName = "" }, "first"},
		{"last", func(p *Patient) { p.LastName = "  " }, "last"},
		{"gender", func(p *Patient) { p.Gender = "Unknown" }, "gender"},
		{"missing dob", func(p *Patient) { p.DateOfBirth = "" }, "dob"},
		{"bad dob", func(p *Patient) { p.DateOfBirth = "2000-13-01" }, "dob"},
		{"future dob", func(p *Patient) { p.DateOfBirth = "2030-01-01" }, "dob"},
		{"phone", func(p *Patient) { p.Phone = "" }, "phone"},
		{"email", func(p *Patient) { p.Email = "not-an-email" }, "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPatient()
			tt.mutate(p)
			err := svc.CreatePatient(context.Background(), p)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, ve.Field)
			}
		})
	}
}

func TestService_UpdateAndDeletePatient(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	p := validPatient()
	svc.CreatePatient(ctx, p)
	created := p.CreatedAt

	edit := validPatient()
	edit.ID = p.ID
	edit.Phone = "555-9999"
	if err := svc.UpdatePatient(ctx, edit); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !edit.CreatedAt.Equal(created) {
		t.Error("update must keep the creation time")
	}
	got, _ := svc.GetPatient(ctx, p.ID)
	if got.Phone != "555-9999" {
		t.Errorf("expected updated phone, got %q", got.Phone)
	}

	if err := svc.DeletePatient(ctx, p.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.GetPatient(ctx, p.ID); !errors.Is(err, ErrPatientNotFound) {
		t.Errorf("expected ErrPatientNotFound, got %v", err)
	}
	if err := svc.DeletePatient(ctx, p.ID); !errors.Is(err, ErrPatientNotFound) {
		t.Errorf("expected ErrPatientNotFound on second delete, got %v", err)
	}
}

func TestService_ListAndSearchPatients(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	for _, p := range samplePatients() {
		p := p
		p.ID = 0
		if err := svc.CreatePatient(ctx, &p); err != nil {
			t.Fatalf("create %s: %v", p.FirstName, err)
		}
	}

	views, err := svc.ListPatients(ctx, PatientQuery{Gender: "Female", Sort: SortByAge})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 2 || views[0].FirstName != "Zoe" {
		t.Errorf("unexpected list %+v", views)
	}

	found, _ := svc.SearchPatients(ctx, "garc")
	if len(found) != 1 || found[0].LastName != "Garcia" {
		t.Errorf("unexpected search result %+v", found)
	}

	n, _ := svc.CountPatients(ctx)
	if n != 4 {
		t.Errorf("expected 4 patients, got %d", n)
	}
}

func TestService_Doctors(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if err := svc.CreateDoctor(ctx, &Doctor{Name: "Dr. Who", Phone: "1"}); err == nil {
		t.Error("expected error for missing email")
	}
	if err := svc.CreateDoctor(ctx, &Doctor{Name: "Dr. Who", Phone: "1", Email: "who"}); err == nil {
		t.Error("expected error for invalid email")
	}

	d := &Doctor{Name: "Dr. Smith", Phone: "555", Email: "smith@clinic.test", Specialization: "Orthodontics"}
	if err := svc.CreateDoctor(ctx, d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	name, err := svc.DoctorName(ctx, d.ID)
	if err != nil || name != "Dr. Smith" {
		t.Errorf("DoctorName = %q, %v", name, err)
	}
	if _, err := svc.DoctorName(ctx, 99); !errors.Is(err, ErrDoctorNotFound) {
		t.Errorf("expected ErrDoctorNotFound, got %v", err)
	}

	d.Name = "Dr. Jones"
	if err := svc.UpdateDoctor(ctx, d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	list, _ := svc.ListDoctors(ctx)
	if len(list) != 1 || list[0].Name != "Dr. Jones" {
		t.Errorf("unexpected doctors %+v", list)
	}
	if err := svc.DeleteDoctor(ctx, d.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestService_Nurses(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	n := &Nurse{Name: "Nina", Phone: "555", Email: "nina@clinic.test"}
	if err := svc.CreateNurse(ctx, n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := svc.GetNurse(ctx, n.ID)
	if err != nil || got.Name != "Nina" {
		t.Errorf("GetNurse = %+v, %v", got, err)
	}
	missing := &Nurse{ID: 42, Name: "Ghost", Phone: "1", Email: "g@clinic.test"}
	if err := svc.UpdateNurse(ctx, missing); !errors.Is(err, ErrNurseNotFound) {
		t.Errorf("expected ErrNurseNotFound, got %v", err)
	}
	list, _ := svc.ListNurses(ctx)
	if len(list) != 1 {
		t.Errorf("expected 1 nurse, got %d", len(list))
	}
}
