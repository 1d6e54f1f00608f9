package cart

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/dvalery/tienda-backend/internal/product"
)

// Catalog supplies the authoritative unit price snapshotted into a line right
// before AddItem. Implemented by the product service.
type Catalog interface {
	UnitPrice(productID int) (decimal.Decimal, error)
}

// Service translates authenticated-user requests into repository calls and
// performs the input validation the repository does not.
type Service struct {
	repo    Repository
	catalog Catalog
}

func NewService(repo Repository, catalog Catalog) *Service {
	return &Service{repo: repo, catalog: catalog}
}

func (s *Service) Get(userID int) ([]Item, error) {
	if userID <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.Contents(userID)
}

func (s *Service) Add(userID, productID, quantity int) error {
	if userID <= 0 || productID <= 0 || quantity <= 0 {
		return ErrInvalidInput
	}

	price, err := s.catalog.UnitPrice(productID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	return s.repo.AddItem(userID, productID, quantity, price)
}

// UpdateQuantity sets a line's quantity to the exact given value. Zero or a
// negative value is a removal request, not an error.
func (s *Service) UpdateQuantity(userID, lineID, quantity int) error {
	if userID <= 0 || lineID <= 0 {
		return ErrInvalidInput
	}
	if err := s.confirmOwnership(userID, lineID); err != nil {
		return err
	}
	return s.repo.UpdateLineQuantity(lineID, quantity)
}

func (s *Service) Remove(userID, lineID int) error {
	if userID <= 0 || lineID <= 0 {
		return ErrInvalidInput
	}
	if err := s.confirmOwnership(userID, lineID); err != nil {
		return err
	}
	return s.repo.RemoveLine(lineID)
}

func (s *Service) Clear(userID int) error {
	if userID <= 0 {
		return ErrInvalidInput
	}
	return s.repo.ClearCart(userID)
}

// confirmOwnership rejects line ids that do not belong to the caller's open
// cart. The repository itself does not check this.
func (s *Service) confirmOwnership(userID, lineID int) error {
	line, err := s.repo.FindLine(lineID)
	if err != nil {
		return err
	}

	cartID, err := s.repo.EnsureOpenCart(userID)
	if err != nil {
		return err
	}
	if line.CartID != cartID {
		return ErrLineNotFound
	}
	return nil
}
