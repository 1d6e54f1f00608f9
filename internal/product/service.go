package product

import "github.com/shopspring/decimal"

// Service provides catalog operations and the unit-price lookup the cart
// service performs before adding an item.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List() ([]Product, error) {
	return s.repo.List()
}

func (s *Service) GetByID(id int) (Product, error) {
	if id <= 0 {
		return Product{}, ErrNotFound
	}
	return s.repo.GetByID(id)
}

func (s *Service) Create(p Product) (Product, error) {
	if err := validate(p); err != nil {
		return Product{}, err
	}
	return s.repo.Create(p)
}

func (s *Service) Update(id int, p Product) (Product, error) {
	if id <= 0 {
		return Product{}, ErrNotFound
	}
	if err := validate(p); err != nil {
		return Product{}, err
	}
	return s.repo.Update(id, p)
}

func (s *Service) Delete(id int) error {
	if id <= 0 {
		return ErrNotFound
	}
	return s.repo.Delete(id)
}

// UnitPrice returns the current catalog price for a product. Callers snapshot
// it into the cart line.
func (s *Service) UnitPrice(id int) (decimal.Decimal, error) {
	p, err := s.GetByID(id)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return p.Price, nil
}

func validate(p Product) error {
	if p.Name == "" {
		return ErrInvalidInput
	}
	if p.Price.IsNegative() {
		return ErrInvalidInput
	}
	if p.Stock < 0 {
		return ErrInvalidInput
	}
	return nil
}
