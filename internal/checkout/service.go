package checkout

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/dvalery/tienda-backend/internal/cart"
	"github.com/dvalery/tienda-backend/internal/order"
)

var (
	ErrEmptyCart     = errors.New("cart is empty, nothing to checkout")
	ErrOrderIssuance = errors.New("order issuance failed")
)

// Result is what a successful checkout reports back to the client.
type Result struct {
	OrderID int             `json:"orderId"`
	Total   decimal.Decimal `json:"total"`
}

// CartStore is the slice of the cart repository checkout needs: a locked
// read of the open cart and its lines, and the clear/close step, all inside
// one transaction.
type CartStore interface {
	OpenCartForUpdate(tx *sql.Tx, userID int) (int, error)
	ItemsInTx(tx *sql.Tx, cartID int) ([]cart.Item, error)
	CloseCartInTx(tx *sql.Tx, cartID int) error
}

// OrderWriter issues the immutable order inside the same transaction.
type OrderWriter interface {
	CreateInTx(tx *sql.Tx, userID int, items []order.Item, total decimal.Decimal) (order.Order, error)
}

// Service converts an open cart into an order. The snapshot, issuance and
// cart close run in a single transaction holding a row lock on the cart, so
// a concurrent add can neither be dropped by the clear nor double-counted,
// and an issuance failure leaves the cart fully intact.
type Service struct {
	db     *sql.DB
	carts  CartStore
	orders OrderWriter
}

func NewService(db *sql.DB, carts CartStore, orders OrderWriter) *Service {
	return &Service{db: db, carts: carts, orders: orders}
}

func (s *Service) Checkout(userID int) (Result, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return Result{}, fmt.Errorf("begin checkout for user %d: %w", userID, err)
	}
	defer tx.Rollback()

	cartID, err := s.carts.OpenCartForUpdate(tx, userID)
	if err == sql.ErrNoRows {
		// no open cart means no lines
		return Result{}, ErrEmptyCart
	}
	if err != nil {
		return Result{}, err
	}

	items, err := s.carts.ItemsInTx(tx, cartID)
	if err != nil {
		return Result{}, err
	}
	if len(items) == 0 {
		return Result{}, ErrEmptyCart
	}

	// totals use the snapshotted line prices, not current catalog prices
	total := decimal.Zero
	orderItems := make([]order.Item, 0, len(items))
	for _, it := range items {
		total = total.Add(it.Subtotal)
		orderItems = append(orderItems, order.Item{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}

	ord, err := s.orders.CreateInTx(tx, userID, orderItems, total)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrOrderIssuance, err)
	}

	if err := s.carts.CloseCartInTx(tx, cartID); err != nil {
		// still inside the transaction: rolling back retracts the order
		// too, so no duplicate can be created by a later retry
		slog.Error("failed to close cart after order issuance, rolling back",
			"err", err, "user", userID, "cart", cartID, "order", ord.ID)
		return Result{}, err
	}

	if err := tx.Commit(); err != nil {
		return Result{}, fmt.Errorf("commit checkout for user %d: %w", userID, err)
	}

	return Result{OrderID: ord.ID, Total: total}, nil
}
