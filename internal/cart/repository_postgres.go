package cart

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	selectOpenCart = `SELECT id FROM carts WHERE user_id = $1 AND status = 'open'`

	// writers take this lock so they serialize against the FOR UPDATE lock
	// checkout holds across its snapshot-and-close transaction
	lockOpenCart = selectOpenCart + ` FOR NO KEY UPDATE`

	// a mutation by line id locks the owning cart row the same way
	lockCartOfLine = `
		SELECT c.id FROM carts c
		INNER JOIN cart_items ci ON ci.cart_id = c.id
		WHERE ci.id = $1
		FOR NO KEY UPDATE OF c`

	// relies on the partial unique index on (user_id) WHERE status = 'open';
	// a concurrent insert makes this return no rows, in which case the
	// winner's row is selected instead.
	insertOpenCart = `
		INSERT INTO carts (user_id, status)
		VALUES ($1, 'open')
		ON CONFLICT (user_id) WHERE status = 'open' DO NOTHING
		RETURNING id`

	// merge-on-add: quantities sum, the supplied price wins
	upsertLine = `
		INSERT INTO cart_items (cart_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity,
		              unit_price = EXCLUDED.unit_price`

	selectItems = `
		SELECT ci.id, ci.product_id, ci.quantity, ci.unit_price,
		       (ci.quantity * ci.unit_price) AS subtotal,
		       p.name, p.description, p.image
		FROM cart_items ci
		INNER JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) EnsureOpenCart(userID int) (int, error) {
	var id int
	err := r.db.QueryRow(selectOpenCart, userID).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("resolve open cart for user %d: %w", userID, err)
	}

	err = r.db.QueryRow(insertOpenCart, userID).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("create open cart for user %d: %w", userID, err)
	}

	// lost the race to a concurrent EnsureOpenCart; fetch the winner's cart
	if err := r.db.QueryRow(selectOpenCart, userID).Scan(&id); err != nil {
		return 0, fmt.Errorf("resolve open cart for user %d after conflict: %w", userID, err)
	}
	return id, nil
}

// ensureOpenCartLocked is the writer-side variant of EnsureOpenCart: it
// resolves the open cart inside tx and locks its row, blocking until a
// checkout in flight for the same cart commits or rolls back. Without the
// lock an add landing between checkout's snapshot and its clear would be
// silently dropped or stranded in a closed cart.
func (r *PostgresRepository) ensureOpenCartLocked(tx *sql.Tx, userID int) (int, error) {
	var id int
	err := tx.QueryRow(lockOpenCart, userID).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("lock open cart for user %d: %w", userID, err)
	}

	// a row inserted here is owned by tx and needs no separate lock
	err = tx.QueryRow(insertOpenCart, userID).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("create open cart for user %d: %w", userID, err)
	}

	if err := tx.QueryRow(lockOpenCart, userID).Scan(&id); err != nil {
		return 0, fmt.Errorf("lock open cart for user %d after conflict: %w", userID, err)
	}
	return id, nil
}

// lockLineCart locks the cart row owning the line. sql.ErrNoRows means the
// line no longer exists.
func lockLineCart(tx *sql.Tx, lineID int) error {
	var cartID int
	return tx.QueryRow(lockCartOfLine, lineID).Scan(&cartID)
}

func (r *PostgresRepository) Contents(userID int) ([]Item, error) {
	cartID, err := r.EnsureOpenCart(userID)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(selectItems, cartID)
	if err != nil {
		return nil, fmt.Errorf("list cart %d items: %w", cartID, err)
	}
	defer rows.Close()

	return scanItems(rows)
}

func (r *PostgresRepository) AddItem(userID, productID, quantity int, unitPrice decimal.Decimal) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin add for user %d: %w", userID, err)
	}
	defer tx.Rollback()

	cartID, err := r.ensureOpenCartLocked(tx, userID)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(upsertLine, cartID, productID, quantity, unitPrice); err != nil {
		return fmt.Errorf("add product %d to cart %d: %w", productID, cartID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit add to cart %d: %w", cartID, err)
	}
	return nil
}

func (r *PostgresRepository) FindLine(lineID int) (Line, error) {
	var line Line
	err := r.db.QueryRow(
		`SELECT id, cart_id, product_id, quantity, unit_price FROM cart_items WHERE id = $1`,
		lineID,
	).Scan(&line.ID, &line.CartID, &line.ProductID, &line.Quantity, &line.UnitPrice)
	if err == sql.ErrNoRows {
		return Line{}, ErrLineNotFound
	}
	if err != nil {
		return Line{}, fmt.Errorf("find cart line %d: %w", lineID, err)
	}
	return line, nil
}

func (r *PostgresRepository) UpdateLineQuantity(lineID, quantity int) error {
	if quantity <= 0 {
		return r.RemoveLine(lineID)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin update for line %d: %w", lineID, err)
	}
	defer tx.Rollback()

	err = lockLineCart(tx, lineID)
	if err == sql.ErrNoRows {
		// line already gone
		return nil
	}
	if err != nil {
		return fmt.Errorf("lock cart of line %d: %w", lineID, err)
	}

	if _, err := tx.Exec(`UPDATE cart_items SET quantity = $1 WHERE id = $2`, quantity, lineID); err != nil {
		return fmt.Errorf("update cart line %d: %w", lineID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update of line %d: %w", lineID, err)
	}
	return nil
}

func (r *PostgresRepository) RemoveLine(lineID int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin remove for line %d: %w", lineID, err)
	}
	defer tx.Rollback()

	err = lockLineCart(tx, lineID)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("lock cart of line %d: %w", lineID, err)
	}

	if _, err := tx.Exec(`DELETE FROM cart_items WHERE id = $1`, lineID); err != nil {
		return fmt.Errorf("remove cart line %d: %w", lineID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit remove of line %d: %w", lineID, err)
	}
	return nil
}

func (r *PostgresRepository) ClearCart(userID int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin clear for user %d: %w", userID, err)
	}
	defer tx.Rollback()

	cartID, err := r.ensureOpenCartLocked(tx, userID)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("clear cart %d: %w", cartID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clear of cart %d: %w", cartID, err)
	}
	return nil
}

// OpenCartForUpdate locks the user's open cart row for the duration of tx.
// Checkout uses it so concurrent adds can neither be dropped by the clear nor
// double-counted. Returns sql.ErrNoRows when the user has no open cart.
func (r *PostgresRepository) OpenCartForUpdate(tx *sql.Tx, userID int) (int, error) {
	var id int
	err := tx.QueryRow(selectOpenCart+` FOR UPDATE`, userID).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, err
	}
	if err != nil {
		return 0, fmt.Errorf("lock open cart for user %d: %w", userID, err)
	}
	return id, nil
}

// ItemsInTx reads the cart's lines within tx.
func (r *PostgresRepository) ItemsInTx(tx *sql.Tx, cartID int) ([]Item, error) {
	rows, err := tx.Query(selectItems, cartID)
	if err != nil {
		return nil, fmt.Errorf("list cart %d items: %w", cartID, err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// CloseCartInTx deletes the cart's lines and marks it closed within tx. A
// fresh open cart appears lazily on the user's next cart access.
func (r *PostgresRepository) CloseCartInTx(tx *sql.Tx, cartID int) error {
	if _, err := tx.Exec(`DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("clear cart %d: %w", cartID, err)
	}
	if _, err := tx.Exec(`UPDATE carts SET status = $1 WHERE id = $2`, StatusClosed, cartID); err != nil {
		return fmt.Errorf("close cart %d: %w", cartID, err)
	}
	return nil
}

func scanItems(rows *sql.Rows) ([]Item, error) {
	out := make([]Item, 0)
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.LineID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Subtotal,
			&it.Name, &it.Description, &it.Image); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
