package supply

import (
	"context"
	"time"

	"github.com/dental/clinic/internal/platform/memstore"
)

type repoMemory struct {
	supplies     *memstore.Table[Supply]
	transactions *memstore.Table[StockTransaction]
	now          func() time.Time
}

func NewRepoMemory() Repository {
	return &repoMemory{
		supplies:     memstore.NewTable[Supply](nil),
		transactions: memstore.NewTable[StockTransaction](nil),
		now:          time.Now,
	}
}

func (r *repoMemory) Create(ctx context.Context, s *Supply) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := r.now()
	s.CreatedAt, s.UpdatedAt = now, now
	*s = r.supplies.Insert(*s, func(v *Supply, id int64) { v.ID = id })
	return nil
}

func (r *repoMemory) GetByID(ctx context.Context, id int64) (*Supply, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, ok := r.supplies.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (r *repoMemory) Update(ctx context.Context, s *Supply) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	updated, ok, _ := r.supplies.Update(s.ID, func(v *Supply) error {
		created := v.CreatedAt
		*v = *s
		v.CreatedAt = created
		v.UpdatedAt = r.now()
		return nil
	})
	if !ok {
		return ErrNotFound
	}
	*s = updated
	return nil
}

func (r *repoMemory) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !r.supplies.Delete(id) {
		return ErrNotFound
	}
	return nil
}

func (r *repoMemory) List(ctx context.Context) ([]Supply, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.supplies.List(nil), nil
}

func (r *repoMemory) ApplyTransaction(ctx context.Context, tx *StockTransaction, adjust func(*Supply) error) (*Supply, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	updated, ok, err := r.supplies.Update(tx.SupplyID, func(v *Supply) error {
		if err := adjust(v); err != nil {
			return err
		}
		v.UpdatedAt = r.now()
		return nil
	})
	if !ok {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	tx.CreatedAt = r.now()
	*tx = r.transactions.Insert(*tx, func(v *StockTransaction, id int64) { v.ID = id })
	return &updated, nil
}

func (r *repoMemory) ListTransactions(ctx context.Context, supplyID int64) ([]StockTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items := r.transactions.List(func(t StockTransaction) bool {
		return supplyID == 0 || t.SupplyID == supplyID
	})
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items, nil
}
