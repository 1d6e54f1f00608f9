package product

import "github.com/shopspring/decimal"

// Product is one catalog entry. Price is the current unit price; carts
// snapshot it at add-time rather than referencing it.
type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Stock       int             `json:"stock"`
}
