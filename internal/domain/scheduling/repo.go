package scheduling

import (
	"context"
)

type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id int64) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id int64) error
	// List returns matching appointments in insertion order.
	List(ctx context.Context, f AppointmentFilter) ([]Appointment, error)
	ReferenceExists(ctx context.Context, ref string) (bool, error)
}

// DoctorDirectory resolves doctor names for conflict messages.
type DoctorDirectory interface {
	DoctorName(ctx context.Context, id int64) (string, error)
}
