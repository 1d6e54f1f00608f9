package order

import "github.com/shopspring/decimal"

// Order is an immutable purchase record produced by checkout.
type Order struct {
	ID        int             `json:"orderId"`
	UserID    int             `json:"userId"`
	Total     decimal.Decimal `json:"total"`
	Status    string          `json:"status"`
	CreatedAt string          `json:"createdAt,omitempty"`
	Items     []Item          `json:"items,omitempty"`
}

// Item snapshots one cart line at checkout time, including the product name
// so later catalog edits do not rewrite history.
type Item struct {
	ID        int             `json:"id"`
	OrderID   int             `json:"orderId"`
	ProductID int             `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Ticket is the receipt record issued alongside an order.
type Ticket struct {
	ID       int    `json:"id"`
	OrderID  int    `json:"orderId"`
	Number   string `json:"number"`
	IssuedAt string `json:"issuedAt,omitempty"`
}
