package supply

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/dental/clinic/internal/platform/metrics"
)

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestService() *Service {
	return NewService(NewRepoMemory(), 0).WithClock(func() time.Time { return fixedNow })
}

func seed(t *testing.T, svc *Service, supplies ...Supply) []int64 {
	t.Helper()
	ids := []int64{}
	for i := range supplies {
		if err := svc.Create(context.Background(), &supplies[i]); err != nil {
			t.Fatalf("seed %q: %v", supplies[i].Name, err)
		}
		ids = append(ids, supplies[i].ID)
	}
	return ids
}

func TestService_CreateValidation(t *testing.T) {
	svc := newTestService()
	tests := []struct {
		in   Supply
		want string
	}{
		{Supply{Unit: "box"}, "Supply name is required"},
		{Supply{Name: "Gloves"}, "Unit is required"},
		{Supply{Name: "Gloves", Unit: "box", Quantity: -1}, "Quantity cannot be negative"},
		{Supply{Name: "Gloves", Unit: "box", MinimumQuantity: -2}, "Minimum quantity cannot be negative"},
	}
	for _, tt := range tests {
		err := svc.Create(context.Background(), &tt.in)
		if err == nil || err.Error() != tt.want {
			t.Errorf("Create(%+v) = %v, want %q", tt.in, err, tt.want)
		}
	}
}

func TestService_RecordTransaction(t *testing.T) {
	svc := newTestService()
	m := metrics.New()
	svc.WithMetrics(m)
	ctx := context.Background()
	ids := seed(t, svc, Supply{Name: "Face Masks", Category: "PPE", Quantity: 4, Unit: "box"})

	tx := &StockTransaction{SupplyID: ids[0], Type: "IN", Quantity: 20}
	sp, err := svc.RecordTransaction(ctx, tx, "nurse.joy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sp.Quantity != 24 || tx.ID == 0 || tx.Date != "2024-03-10" || tx.RecordedBy != "nurse.joy" || tx.Type != TransactionIn {
		t.Errorf("unexpected result %+v / %+v", sp, tx)
	}

	_, err = svc.RecordTransaction(ctx, &StockTransaction{SupplyID: ids[0], Type: TransactionOut, Quantity: 25}, "")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if v, _ := svc.Get(ctx, ids[0]); v.Quantity != 24 {
		t.Errorf("rejected transaction changed quantity to %d", v.Quantity)
	}

	if _, err := svc.RecordTransaction(ctx, &StockTransaction{SupplyID: ids[0], Type: TransactionOut, Quantity: 24}, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, _ := svc.Get(ctx, ids[0])
	if v.Quantity != 0 || v.Status != OutOfStock {
		t.Errorf("expected out of stock, got %+v", v)
	}

	history, _ := svc.Transactions(ctx, ids[0])
	if len(history) != 2 || history[0].Type != TransactionOut {
		t.Errorf("expected two transactions newest first, got %+v", history)
	}
	if got := testutil.ToFloat64(m.StockTransactions.WithLabelValues("in")); got != 1 {
		t.Errorf("expected 1 in transaction counted, got %v", got)
	}
}

func TestService_RecordTransactionValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	ids := seed(t, svc, Supply{Name: "Gloves", Quantity: 5, Unit: "box"})

	tests := []struct {
		tx   StockTransaction
		want string
	}{
		{StockTransaction{Type: TransactionIn, Quantity: 1}, "Please select a supply"},
		{StockTransaction{SupplyID: ids[0], Type: "adjust", Quantity: 1}, "Transaction type must be in or out"},
		{StockTransaction{SupplyID: ids[0], Type: TransactionIn}, "Quantity must be at least 1"},
		{StockTransaction{SupplyID: ids[0], Type: TransactionIn, Quantity: 1, Date: "10/03/2024"}, "Date must be YYYY-MM-DD"},
	}
	for _, tt := range tests {
		tx := tt.tx
		_, err := svc.RecordTransaction(ctx, &tx, "")
		if err == nil || err.Error() != tt.want {
			t.Errorf("RecordTransaction(%+v) = %v, want %q", tt.tx, err, tt.want)
		}
	}

	_, err := svc.RecordTransaction(ctx, &StockTransaction{SupplyID: 99, Type: TransactionIn, Quantity: 1}, "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestService_LowStock(t *testing.T) {
	svc := newTestService()
	seed(t, svc, sampleSupplies()...)
	low, err := svc.LowStock(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(low) != 3 {
		t.Errorf("expected 3 low or out items, got %+v", low)
	}
}

func TestService_Transactions_UnknownSupply(t *testing.T) {
	svc := newTestService()
	if _, err := svc.Transactions(context.Background(), 7); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	all, err := svc.Transactions(context.Background(), 0)
	if err != nil || len(all) != 0 {
		t.Errorf("expected empty history, got %v, %v", all, err)
	}
}
