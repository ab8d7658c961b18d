package supply

import (
	"errors"
	"time"
)

var (
	ErrNotFound            = errors.New("supply not found")
	ErrTransactionNotFound = errors.New("stock transaction not found")
)

// Supply is one stocked consumable.
type Supply struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	Quantity        int       `json:"quantity"`
	MinimumQuantity int       `json:"minimumQuantity"`
	Unit            string    `json:"unit"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type TransactionType string

const (
	TransactionIn  TransactionType = "in"
	TransactionOut TransactionType = "out"
)

// StockTransaction records stock received (in) or used (out).
type StockTransaction struct {
	ID         int64           `json:"id"`
	SupplyID   int64           `json:"supplyId"`
	Type       TransactionType `json:"type"`
	Quantity   int             `json:"quantity"`
	Date       string          `json:"date"`
	Notes      string          `json:"notes,omitempty"`
	RecordedBy string          `json:"recordedBy,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
