package supply

import (
	"context"
	"strings"
	"time"

	"github.com/dental/clinic/internal/platform/metrics"
	"github.com/dental/clinic/pkg/clinicdate"
)

type Service struct {
	repo      Repository
	threshold int
	now       func() time.Time
	metrics   *metrics.Collectors
}

// NewService wires the inventory service. threshold zero or less selects
// DefaultLowStockThreshold.
func NewService(repo Repository, threshold int) *Service {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	return &Service{repo: repo, threshold: threshold, now: time.Now}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) WithMetrics(m *metrics.Collectors) *Service {
	s.metrics = m
	return s
}

func (s *Service) Threshold() int { return s.threshold }

func validateSupply(sp *Supply) error {
	sp.Name = strings.TrimSpace(sp.Name)
	sp.Category = strings.TrimSpace(sp.Category)
	sp.Unit = strings.TrimSpace(sp.Unit)
	if sp.Name == "" {
		return invalid("name", "Supply name is required")
	}
	if sp.Unit == "" {
		return invalid("unit", "Unit is required")
	}
	if sp.Quantity < 0 {
		return invalid("quantity", "Quantity cannot be negative")
	}
	if sp.MinimumQuantity < 0 {
		return invalid("minimumQuantity", "Minimum quantity cannot be negative")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, sp *Supply) error {
	if err := validateSupply(sp); err != nil {
		return err
	}
	return s.repo.Create(ctx, sp)
}

func (s *Service) Get(ctx context.Context, id int64) (View, error) {
	sp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return View{}, err
	}
	return View{Supply: *sp, Status: StatusOf(sp.Quantity, s.threshold)}, nil
}

func (s *Service) Update(ctx context.Context, sp *Supply) error {
	if err := validateSupply(sp); err != nil {
		return err
	}
	return s.repo.Update(ctx, sp)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, q Query) ([]View, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(all, q, s.threshold), nil
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return Categories(all), nil
}

// LowStock lists every supply at or below the threshold, out of stock
// included.
func (s *Service) LowStock(ctx context.Context) ([]View, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []View{}
	for _, v := range Filter(all, Query{Stock: StockAll}, s.threshold) {
		if v.Status != InStock {
			out = append(out, v)
		}
	}
	return out, nil
}

// RecordTransaction adjusts the supply's quantity by tx and stores tx. The
// date defaults to today.
func (s *Service) RecordTransaction(ctx context.Context, tx *StockTransaction, actor string) (*Supply, error) {
	if tx.SupplyID <= 0 {
		return nil, invalid("supplyId", "Please select a supply")
	}
	tx.Type = TransactionType(strings.ToLower(string(tx.Type)))
	if tx.Type != TransactionIn && tx.Type != TransactionOut {
		return nil, invalid("type", "Transaction type must be in or out")
	}
	if tx.Quantity < 1 {
		return nil, invalid("quantity", "Quantity must be at least 1")
	}
	if tx.Date == "" {
		tx.Date = clinicdate.Today(s.now())
	} else if !clinicdate.IsValidDate(tx.Date) {
		return nil, invalid("date", "Date must be YYYY-MM-DD")
	}
	tx.Notes = strings.TrimSpace(tx.Notes)
	tx.RecordedBy = actor

	sp, err := s.repo.ApplyTransaction(ctx, tx, func(sp *Supply) error {
		q, err := Apply(*sp, *tx)
		if err != nil {
			return err
		}
		sp.Quantity = q
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.StockTransactions.WithLabelValues(string(tx.Type)).Inc()
	}
	return sp, nil
}

// Transactions lists a supply's history; supplyID zero lists everything.
func (s *Service) Transactions(ctx context.Context, supplyID int64) ([]StockTransaction, error) {
	if supplyID != 0 {
		if _, err := s.repo.GetByID(ctx, supplyID); err != nil {
			return nil, err
		}
	}
	return s.repo.ListTransactions(ctx, supplyID)
}
