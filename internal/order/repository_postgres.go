package order

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const StatusCompleted = "completed"

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateInTx inserts the order, its item snapshots and the ticket row inside
// the supplied transaction. Nothing is visible until the caller commits.
func (r *PostgresRepository) CreateInTx(tx *sql.Tx, userID int, items []Item, total decimal.Decimal) (Order, error) {
	ord := Order{UserID: userID, Total: total, Status: StatusCompleted}

	err := tx.QueryRow(
		`INSERT INTO orders (user_id, total, status) VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		userID, total, ord.Status,
	).Scan(&ord.ID, &ord.CreatedAt)
	if err != nil {
		return Order{}, fmt.Errorf("insert order for user %d: %w", userID, err)
	}

	for _, it := range items {
		err := tx.QueryRow(
			`INSERT INTO order_items (order_id, product_id, name, quantity, unit_price)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			ord.ID, it.ProductID, it.Name, it.Quantity, it.UnitPrice,
		).Scan(&it.ID)
		if err != nil {
			return Order{}, fmt.Errorf("insert order %d item: %w", ord.ID, err)
		}
		it.OrderID = ord.ID
		ord.Items = append(ord.Items, it)
	}

	if _, err := tx.Exec(
		`INSERT INTO tickets (order_id, number) VALUES ($1, $2)`,
		ord.ID, uuid.NewString(),
	); err != nil {
		return Order{}, fmt.Errorf("insert ticket for order %d: %w", ord.ID, err)
	}

	return ord, nil
}

func (r *PostgresRepository) ListByUser(userID int) ([]Order, error) {
	rows, err := r.db.Query(
		`SELECT id, user_id, total, status, created_at FROM orders WHERE user_id = $1 ORDER BY id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list orders for user %d: %w", userID, err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	ids := make([]int, 0)
	for rows.Next() {
		var ord Order
		if err := rows.Scan(&ord.ID, &ord.UserID, &ord.Total, &ord.Status, &ord.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, ord)
		ids = append(ids, ord.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return orders, nil
	}

	itemRows, err := r.db.Query(
		`SELECT id, order_id, product_id, name, quantity, unit_price
		 FROM order_items WHERE order_id = ANY($1::int[]) ORDER BY id`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer itemRows.Close()

	byOrder := make(map[int][]Item, len(ids))
	for itemRows.Next() {
		var it Item
		if err := itemRows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		orders[i].Items = byOrder[orders[i].ID]
	}
	return orders, nil
}

// TicketByOrder returns the ticket for an order, scoped to the owning user so
// one user cannot read another's receipts.
func (r *PostgresRepository) TicketByOrder(orderID, userID int) (Ticket, error) {
	var t Ticket
	err := r.db.QueryRow(
		`SELECT t.id, t.order_id, t.number, t.issued_at
		 FROM tickets t
		 INNER JOIN orders o ON o.id = t.order_id
		 WHERE t.order_id = $1 AND o.user_id = $2`,
		orderID, userID,
	).Scan(&t.ID, &t.OrderID, &t.Number, &t.IssuedAt)
	if err == sql.ErrNoRows {
		return Ticket{}, ErrNotFound
	}
	if err != nil {
		return Ticket{}, fmt.Errorf("get ticket for order %d: %w", orderID, err)
	}

	return t, nil
}
