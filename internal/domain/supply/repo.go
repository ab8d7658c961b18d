package supply

import "context"

type Repository interface {
	Create(ctx context.Context, s *Supply) error
	GetByID(ctx context.Context, id int64) (*Supply, error)
	Update(ctx context.Context, s *Supply) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]Supply, error)

	// ApplyTransaction locks the supply, lets adjust change it, then stores
	// the new quantity and tx together. An error from adjust aborts both.
	ApplyTransaction(ctx context.Context, tx *StockTransaction, adjust func(*Supply) error) (*Supply, error)
	// ListTransactions returns transactions newest first; supplyID zero
	// lists all of them.
	ListTransactions(ctx context.Context, supplyID int64) ([]StockTransaction, error)
}
