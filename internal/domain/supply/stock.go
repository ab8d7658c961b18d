package supply

import (
	"fmt"
	"strings"
)

// DefaultLowStockThreshold is the quantity at or below which a supply is
// reported as low.
const DefaultLowStockThreshold = 10

type StockStatus string

const (
	InStock    StockStatus = "In Stock"
	LowStock   StockStatus = "Low Stock"
	OutOfStock StockStatus = "Out of Stock"
)

func StatusOf(quantity, threshold int) StockStatus {
	switch {
	case quantity <= 0:
		return OutOfStock
	case quantity <= threshold:
		return LowStock
	}
	return InStock
}

// StockFilter narrows a supply list by stock level.
type StockFilter string

const (
	StockAll StockFilter = "all"
	StockLow StockFilter = "low"
	StockOut StockFilter = "out"
)

// CategoryAll disables the category filter.
const CategoryAll = "all"

type Query struct {
	Search   string
	Category string
	Stock    StockFilter
}

func ParseQuery(search, category, stock string) (Query, error) {
	q := Query{Search: strings.TrimSpace(search), Category: category, Stock: StockFilter(strings.ToLower(stock))}
	if q.Category == "" {
		q.Category = CategoryAll
	}
	switch q.Stock {
	case "":
		q.Stock = StockAll
	case StockAll, StockLow, StockOut:
	default:
		return Query{}, invalid("stock", fmt.Sprintf("invalid stock filter %q: expected all, low or out", stock))
	}
	return q, nil
}

// View is a supply with its derived stock status.
type View struct {
	Supply
	Status StockStatus `json:"status"`
}

// Filter applies search, category and stock filters in that order. Search
// matches name or category case-insensitively. The low filter excludes
// items that are already out of stock.
func Filter(supplies []Supply, q Query, threshold int) []View {
	term := strings.ToLower(q.Search)
	out := []View{}
	for _, s := range supplies {
		if term != "" && !strings.Contains(strings.ToLower(s.Name), term) &&
			!strings.Contains(strings.ToLower(s.Category), term) {
			continue
		}
		if q.Category != "" && q.Category != CategoryAll && s.Category != q.Category {
			continue
		}
		status := StatusOf(s.Quantity, threshold)
		if q.Stock == StockLow && status != LowStock {
			continue
		}
		if q.Stock == StockOut && status != OutOfStock {
			continue
		}
		out = append(out, View{Supply: s, Status: status})
	}
	return out
}

// Categories lists distinct non-empty categories in first-seen order.
func Categories(supplies []Supply) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, s := range supplies {
		if s.Category == "" || seen[s.Category] {
			continue
		}
		seen[s.Category] = true
		out = append(out, s.Category)
	}
	return out
}

// Apply returns the quantity left after tx. Taking out more than is in
// stock is rejected.
func Apply(s Supply, tx StockTransaction) (int, error) {
	switch tx.Type {
	case TransactionIn:
		return s.Quantity + tx.Quantity, nil
	case TransactionOut:
		if tx.Quantity > s.Quantity {
			return s.Quantity, invalid("quantity", fmt.Sprintf("Insufficient stock: only %d %s of %s available", s.Quantity, s.Unit, s.Name))
		}
		return s.Quantity - tx.Quantity, nil
	}
	return s.Quantity, invalid("type", fmt.Sprintf("invalid transaction type %q: expected in or out", tx.Type))
}
