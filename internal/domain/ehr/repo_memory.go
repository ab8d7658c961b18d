package ehr

import (
	"context"
	"time"

	"github.com/dental/clinic/internal/platform/memstore"
)

type repoMemory struct {
	records *memstore.Table[EHR]
	changes *memstore.Table[ChangeLog]
	now     func() time.Time
}

func NewRepoMemory() Repository {
	return &repoMemory{
		records: memstore.NewTable(EHR.Clone),
		changes: memstore.NewTable[ChangeLog](nil),
		now:     time.Now,
	}
}

func (r *repoMemory) Create(ctx context.Context, rec *EHR) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := r.now()
	rec.CreatedAt, rec.UpdatedAt = now, now
	*rec = r.records.Insert(*rec, func(v *EHR, id int64) { v.ID = id })
	return nil
}

func (r *repoMemory) GetByID(ctx context.Context, id int64) (*EHR, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, ok := r.records.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (r *repoMemory) Update(ctx context.Context, rec *EHR, changes []ChangeLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	updated, ok, _ := r.records.Update(rec.ID, func(v *EHR) error {
		created := v.CreatedAt
		*v = rec.Clone()
		v.CreatedAt = created
		v.UpdatedAt = r.now()
		return nil
	})
	if !ok {
		return ErrNotFound
	}
	*rec = updated
	for _, c := range changes {
		r.changes.Insert(c, func(v *ChangeLog, id int64) { v.ID = id })
	}
	return nil
}

func (r *repoMemory) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !r.records.Delete(id) {
		return ErrNotFound
	}
	return nil
}

func (r *repoMemory) List(ctx context.Context, patientID int64) ([]EHR, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.records.List(func(v EHR) bool {
		return patientID == 0 || v.PatientID == patientID
	}), nil
}

func (r *repoMemory) ListChanges(ctx context.Context, ehrIDs []int64) ([]ChangeLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	want := make(map[int64]bool, len(ehrIDs))
	for _, id := range ehrIDs {
		want[id] = true
	}
	return r.changes.List(func(c ChangeLog) bool { return want[c.EHRID] }), nil
}
