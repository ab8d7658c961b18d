package identity

import (
	"context"
	"time"

	"github.com/dental/clinic/internal/platform/memstore"
)

// record is the pointer side of a stored identity type.
type record[T any] interface {
	*T
	key() int64
	setID(id int64)
	stamp(created, updated time.Time)
	created() time.Time
}

type memoryRepo[T any, P record[T]] struct {
	table    *memstore.Table[T]
	notFound error
	now      func() time.Time
}

func newMemoryRepo[T any, P record[T]](notFound error) *memoryRepo[T, P] {
	return &memoryRepo[T, P]{
		table:    memstore.NewTable[T](nil),
		notFound: notFound,
		now:      time.Now,
	}
}

func NewPatientRepoMemory() PatientRepository {
	return newMemoryRepo[Patient](ErrPatientNotFound)
}

func NewDoctorRepoMemory() DoctorRepository {
	return newMemoryRepo[Doctor](ErrDoctorNotFound)
}

func NewNurseRepoMemory() NurseRepository {
	return newMemoryRepo[Nurse](ErrNurseNotFound)
}

func (r *memoryRepo[T, P]) Create(ctx context.Context, v *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := r.now()
	P(v).stamp(now, now)
	*v = r.table.Insert(*v, func(row *T, id int64) { P(row).setID(id) })
	return nil
}

func (r *memoryRepo[T, P]) GetByID(ctx context.Context, id int64) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, ok := r.table.Get(id)
	if !ok {
		return nil, r.notFound
	}
	return &v, nil
}

func (r *memoryRepo[T, P]) Update(ctx context.Context, v *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	updated, ok, _ := r.table.Update(P(v).key(), func(row *T) error {
		created := P(row).created()
		*row = *v
		P(row).stamp(created, r.now())
		return nil
	})
	if !ok {
		return r.notFound
	}
	*v = updated
	return nil
}

func (r *memoryRepo[T, P]) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !r.table.Delete(id) {
		return r.notFound
	}
	return nil
}

func (r *memoryRepo[T, P]) List(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.table.List(nil), nil
}
