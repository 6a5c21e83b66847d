package inventory

import "github.com/tbeauty/backend/internal/domain/shared"

// Location is where a stock row physically lives
type Location string

const (
	LocationMainWarehouse      Location = "main_warehouse"
	LocationSecondaryWarehouse Location = "secondary_warehouse"
	LocationRetailStore        Location = "retail_store"
	LocationOnlineFulfillment  Location = "online_fulfillment"
)

// IsValid checks if the location is a known location
func (l Location) IsValid() bool {
	switch l {
	case LocationMainWarehouse, LocationSecondaryWarehouse, LocationRetailStore, LocationOnlineFulfillment:
		return true
	}
	return false
}

// String returns the string representation of Location
func (l Location) String() string {
	return string(l)
}

// Label returns the display label, e.g. "Main Warehouse"
func (l Location) Label() string {
	return shared.Label(string(l))
}

// Code returns the short code used in generated SKUs
func (l Location) Code() string {
	switch l {
	case LocationMainWarehouse:
		return "MW"
	case LocationSecondaryWarehouse:
		return "SW"
	case LocationRetailStore:
		return "RS"
	case LocationOnlineFulfillment:
		return "OF"
	}
	return "XX"
}

// StockStatus is derived from current and minimum stock, never stored
type StockStatus string

const (
	StockStatusInStock    StockStatus = "in_stock"
	StockStatusLowStock   StockStatus = "low_stock"
	StockStatusOutOfStock StockStatus = "out_of_stock"
)

// ClassifyStock returns out_of_stock at zero, low_stock up to and including
// the minimum, and in_stock above it.
func ClassifyStock(current, minimum int) StockStatus {
	switch {
	case current <= 0:
		return StockStatusOutOfStock
	case current <= minimum:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}
