package repositories

import (
	"github.com/adarsh2255-buji/amazon-clone/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	GetByUserID(userID string) ([]models.Order, error)
	// CreateWithStockDecrement persists the order and decrements the stock of
	// every ordered product in a single transaction. Each decrement is
	// conditional on sufficient remaining stock; a rejected decrement aborts
	// the whole transaction with an OutOfStockError, so an order and its
	// stock effects become visible together or not at all.
	CreateWithStockDecrement(order *models.Order) error
	Update(order *models.Order) error
}
