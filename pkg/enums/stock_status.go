package enums

import "fmt"

// StockStatus represents the canonical availability states of a product.
type StockStatus string

const (
	StockStatusInStock      StockStatus = "IN_STOCK"
	StockStatusLowStock     StockStatus = "LOW_STOCK"
	StockStatusOutOfStock   StockStatus = "OUT_OF_STOCK"
	StockStatusBackorder    StockStatus = "BACKORDER"
	StockStatusDiscontinued StockStatus = "DISCONTINUED"
)

var validStockStatuses = []StockStatus{
	StockStatusInStock,
	StockStatusLowStock,
	StockStatusOutOfStock,
	StockStatusBackorder,
	StockStatusDiscontinued,
}

// String implements fmt.Stringer.
func (s StockStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StockStatus.
func (s StockStatus) IsValid() bool {
	for _, candidate := range validStockStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStockStatus converts raw input into a StockStatus.
func ParseStockStatus(value string) (StockStatus, error) {
	for _, candidate := range validStockStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock status %q", value)
}

// StockStatuses returns all known stock statuses in canonical order.
func StockStatuses() []StockStatus {
	out := make([]StockStatus, len(validStockStatuses))
	copy(out, validStockStatuses)
	return out
}
