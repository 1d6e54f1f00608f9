package order

import (
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("order not found")

// Repository persists orders and tickets. CreateInTx runs inside the
// caller's transaction so checkout can make issuance and cart clearing
// atomic.
type Repository interface {
	CreateInTx(tx *sql.Tx, userID int, items []Item, total decimal.Decimal) (Order, error)
	ListByUser(userID int) ([]Order, error)
	TicketByOrder(orderID, userID int) (Ticket, error)
}
