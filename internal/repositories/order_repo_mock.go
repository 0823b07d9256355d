package repositories

import (
	"sync"
	"time"

	"github.com/adarsh2255-buji/amazon-clone/internal/apperrors"
	"github.com/adarsh2255-buji/amazon-clone/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
// It holds a reference to the product repository mock so it can simulate the
// transactional stock decrement of the GORM implementation.
type MockOrderRepository struct {
	orders   map[string]models.Order
	products *MockProductRepository
	mu       sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository(products *MockProductRepository) *MockOrderRepository {
	return &MockOrderRepository{
		orders:   make(map[string]models.Order),
		products: products,
	}
}

// GetAll returns all orders.
func (r *MockOrderRepository) GetAll() ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		orderList = append(orderList, order)
	}
	return orderList, nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, &apperrors.NotFoundError{Resource: "order", ID: id}
	}
	return &order, nil
}

// GetByUserID returns all orders placed by one user.
func (r *MockOrderRepository) GetByUserID(userID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0)
	for _, order := range r.orders {
		if order.UserID == userID {
			orderList = append(orderList, order)
		}
	}
	return orderList, nil
}

// CreateWithStockDecrement simulates the transactional create: decrements are
// applied line by line and rolled back in full if any line is rejected, so
// the order and its stock effects appear together or not at all.
func (r *MockOrderRepository) CreateWithStockDecrement(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}

	applied := make([]models.OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		product, ok := r.products.decrementStock(item.ProductID, item.Qty)
		if !ok {
			for _, undo := range applied {
				r.products.restoreStock(undo.ProductID, undo.Qty)
			}
			if product.ID == "" {
				return &apperrors.NotFoundError{Resource: "product", ID: item.ProductID}
			}
			return &apperrors.OutOfStockError{
				ProductName: product.Name,
				Requested:   item.Qty,
				Available:   product.Stock,
			}
		}
		applied = append(applied, item)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = *order
	return nil
}

// Update replaces the stored order.
func (r *MockOrderRepository) Update(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.orders[order.ID]
	if !ok {
		return &apperrors.NotFoundError{Resource: "order", ID: order.ID}
	}
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = *order
	return nil
}
