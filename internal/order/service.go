package order

// Service provides read access to a user's purchase history.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListByUser(userID int) ([]Order, error) {
	if userID <= 0 {
		return nil, ErrNotFound
	}
	return s.repo.ListByUser(userID)
}

func (s *Service) TicketByOrder(orderID, userID int) (Ticket, error) {
	if orderID <= 0 || userID <= 0 {
		return Ticket{}, ErrNotFound
	}
	return s.repo.TicketByOrder(orderID, userID)
}
