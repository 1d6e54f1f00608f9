package cart

import (
	"errors"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidInput    = errors.New("invalid cart input")
	ErrProductNotFound = errors.New("product not found")
	ErrLineNotFound    = errors.New("cart line not found")
)

// Repository owns the single-open-cart invariant and the line merge
// semantics. Quantity validation happens in the service, not here;
// UpdateLineQuantity and RemoveLine operate by line id with no ownership
// check, which the service performs before delegating.
type Repository interface {
	// EnsureOpenCart returns the id of the user's open cart, creating the
	// cart if none exists. Idempotent.
	EnsureOpenCart(userID int) (int, error)
	// Contents resolves the open cart (creating it if absent) and returns
	// its lines joined with product display fields, in insertion order.
	Contents(userID int) ([]Item, error)
	// AddItem merges quantity into an existing line for the product or
	// inserts a new one. The supplied unit price always wins.
	AddItem(userID, productID, quantity int, unitPrice decimal.Decimal) error
	FindLine(lineID int) (Line, error)
	// UpdateLineQuantity replaces the quantity; zero or below deletes the
	// line.
	UpdateLineQuantity(lineID, quantity int) error
	RemoveLine(lineID int) error
	// ClearCart deletes every line of the user's open cart. The cart row
	// stays and remains usable.
	ClearCart(userID int) error
}

// Display holds the product fields the cart join exposes. The in-memory
// repository is seeded with these; Postgres joins the products table.
type Display struct {
	Name        string
	Description string
	Image       string
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu         sync.Mutex
	products   map[int]Display
	carts      map[int]*Cart
	lines      map[int]*Line
	openByUser map[int]int
	nextCartID int
	nextLineID int
}

func NewInMemoryRepository(products map[int]Display) *InMemoryRepository {
	if products == nil {
		products = map[int]Display{}
	}
	return &InMemoryRepository{
		products:   products,
		carts:      map[int]*Cart{},
		lines:      map[int]*Line{},
		openByUser: map[int]int{},
		nextCartID: 1,
		nextLineID: 1,
	}
}

func (r *InMemoryRepository) EnsureOpenCart(userID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ensureLocked(userID), nil
}

func (r *InMemoryRepository) ensureLocked(userID int) int {
	if id, ok := r.openByUser[userID]; ok {
		return id
	}
	id := r.nextCartID
	r.nextCartID++
	r.carts[id] = &Cart{ID: id, UserID: userID, Status: StatusOpen}
	r.openByUser[userID] = id
	return id
}

func (r *InMemoryRepository) Contents(userID int) ([]Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cartID := r.ensureLocked(userID)
	return r.itemsLocked(cartID), nil
}

func (r *InMemoryRepository) itemsLocked(cartID int) []Item {
	ids := make([]int, 0)
	for id, line := range r.lines {
		if line.CartID == cartID {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)

	out := make([]Item, 0, len(ids))
	for _, id := range ids {
		line := r.lines[id]
		display := r.products[line.ProductID]
		out = append(out, Item{
			LineID:      line.ID,
			ProductID:   line.ProductID,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Subtotal:    line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))),
			Name:        display.Name,
			Description: display.Description,
			Image:       display.Image,
		})
	}
	return out
}

func (r *InMemoryRepository) AddItem(userID, productID, quantity int, unitPrice decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cartID := r.ensureLocked(userID)
	for _, line := range r.lines {
		if line.CartID == cartID && line.ProductID == productID {
			line.Quantity += quantity
			line.UnitPrice = unitPrice
			return nil
		}
	}

	id := r.nextLineID
	r.nextLineID++
	r.lines[id] = &Line{ID: id, CartID: cartID, ProductID: productID, Quantity: quantity, UnitPrice: unitPrice}
	return nil
}

func (r *InMemoryRepository) FindLine(lineID int) (Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	line, ok := r.lines[lineID]
	if !ok {
		return Line{}, ErrLineNotFound
	}
	return *line, nil
}

func (r *InMemoryRepository) UpdateLineQuantity(lineID, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if quantity <= 0 {
		delete(r.lines, lineID)
		return nil
	}
	if line, ok := r.lines[lineID]; ok {
		line.Quantity = quantity
	}
	return nil
}

func (r *InMemoryRepository) RemoveLine(lineID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.lines, lineID)
	return nil
}

func (r *InMemoryRepository) ClearCart(userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cartID := r.ensureLocked(userID)
	for id, line := range r.lines {
		if line.CartID == cartID {
			delete(r.lines, id)
		}
	}
	return nil
}
