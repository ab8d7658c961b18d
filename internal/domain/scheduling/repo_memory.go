package scheduling

import (
	"context"
	"time"

	"github.com/dental/clinic/internal/platform/memstore"
)

type appointmentRepoMemory struct {
	table *memstore.Table[Appointment]
	now   func() time.Time
}

func NewAppointmentRepoMemory() AppointmentRepository {
	return &appointmentRepoMemory{
		table: memstore.NewTable[Appointment](nil),
		now:   time.Now,
	}
}

func (r *appointmentRepoMemory) Create(ctx context.Context, a *Appointment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := r.now()
	a.CreatedAt, a.UpdatedAt = now, now
	*a = r.table.Insert(*a, func(v *Appointment, id int64) { v.ID = id })
	return nil
}

func (r *appointmentRepoMemory) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a, ok := r.table.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (r *appointmentRepoMemory) Update(ctx context.Context, a *Appointment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	updated, ok, _ := r.table.Update(a.ID, func(v *Appointment) error {
		created := v.CreatedAt
		*v = *a
		v.CreatedAt = created
		v.UpdatedAt = r.now()
		return nil
	})
	if !ok {
		return ErrNotFound
	}
	*a = updated
	return nil
}

func (r *appointmentRepoMemory) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !r.table.Delete(id) {
		return ErrNotFound
	}
	return nil
}

func (r *appointmentRepoMemory) List(ctx context.Context, f AppointmentFilter) ([]Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.table.List(f.matches), nil
}

func (r *appointmentRepoMemory) ReferenceExists(ctx context.Context, ref string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return len(r.table.List(func(a Appointment) bool { return a.ReferenceNumber == ref })) > 0, nil
}
