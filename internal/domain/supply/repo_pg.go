package supply

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dental/clinic/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const supplyCols = `id, name, category, quantity, minimum_quantity, unit, created_at, updated_at`

func scanSupply(row pgx.Row) (*Supply, error) {
	var s Supply
	err := row.Scan(&s.ID, &s.Name, &s.Category, &s.Quantity, &s.MinimumQuantity, &s.Unit, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &s, err
}

func (r *repoPG) Create(ctx context.Context, s *Supply) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO supplies (name, category, quantity, minimum_quantity, unit)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		s.Name, s.Category, s.Quantity, s.MinimumQuantity, s.Unit,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Supply, error) {
	return scanSupply(r.conn(ctx).QueryRow(ctx, `SELECT `+supplyCols+` FROM supplies WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, s *Supply) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE supplies SET name=$2, category=$3, quantity=$4, minimum_quantity=$5, unit=$6, updated_at=NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		s.ID, s.Name, s.Category, s.Quantity, s.MinimumQuantity, s.Unit,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM supplies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context) ([]Supply, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+supplyCols+` FROM supplies ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Supply{}
	for rows.Next() {
		s, err := scanSupply(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *s)
	}
	return items, rows.Err()
}

func (r *repoPG) ApplyTransaction(ctx context.Context, tx *StockTransaction, adjust func(*Supply) error) (*Supply, error) {
	var out *Supply
	err := db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		q := r.conn(ctx)
		s, err := scanSupply(q.QueryRow(ctx, `SELECT `+supplyCols+` FROM supplies WHERE id = $1 FOR UPDATE`, tx.SupplyID))
		if err != nil {
			return err
		}
		if err := adjust(s); err != nil {
			return err
		}
		if err := q.QueryRow(ctx,
			`UPDATE supplies SET quantity=$2, updated_at=NOW() WHERE id = $1 RETURNING updated_at`,
			s.ID, s.Quantity,
		).Scan(&s.UpdatedAt); err != nil {
			return err
		}
		if err := q.QueryRow(ctx, `
			INSERT INTO stock_transactions (supply_id, type, quantity, date, notes, recorded_by)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at`,
			tx.SupplyID, tx.Type, tx.Quantity, tx.Date, tx.Notes, tx.RecordedBy,
		).Scan(&tx.ID, &tx.CreatedAt); err != nil {
			return err
		}
		out = s
		return nil
	})
	return out, err
}

func (r *repoPG) ListTransactions(ctx context.Context, supplyID int64) ([]StockTransaction, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, supply_id, type, quantity, to_char(date, 'YYYY-MM-DD'), notes, recorded_by, created_at
		FROM stock_transactions
		WHERE $1 = 0 OR supply_id = $1
		ORDER BY id DESC`, supplyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []StockTransaction{}
	for rows.Next() {
		var t StockTransaction
		if err := rows.Scan(&t.ID, &t.SupplyID, &t.Type, &t.Quantity, &t.Date, &t.Notes, &t.RecordedBy, &t.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}
