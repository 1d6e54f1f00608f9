package cart

import "github.com/shopspring/decimal"

// Cart statuses. A user has at most one open cart at a time; the cart closes
// only as part of a successful checkout.
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

type Cart struct {
	ID        int    `json:"cartId"`
	UserID    int    `json:"userId"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Line is one product entry inside a cart. UnitPrice is snapshotted when the
// product is added; re-adding the same product overwrites it with the price
// supplied on the latest add.
type Line struct {
	ID        int             `json:"lineId"`
	CartID    int             `json:"cartId"`
	ProductID int             `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Item is a cart line joined with the product display fields the frontend
// renders, plus the computed subtotal.
type Item struct {
	LineID      int             `json:"lineId"`
	ProductID   int             `json:"productId"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
}
