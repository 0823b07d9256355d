package repositories

import (
	"github.com/adarsh2255-buji/amazon-clone/internal/apperrors"
	"github.com/adarsh2255-buji/amazon-clone/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// GetAll retrieves all orders with their line items.
func (r *GORMOrderRepository) GetAll() ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Preload("Items").Find(&orders).Error; err != nil {
		return nil, &apperrors.PersistenceError{Op: "get all orders", Err: err}
	}
	return orders, nil
}

// GetByID retrieves a single order by its ID.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &apperrors.NotFoundError{Resource: "order", ID: id}
		}
		return nil, &apperrors.PersistenceError{Op: "get order by ID " + id, Err: err}
	}
	return &order, nil
}

// GetByUserID retrieves all orders placed by one user.
func (r *GORMOrderRepository) GetByUserID(userID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items").Where("user_id = ?", userID).Find(&orders).Error
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "get orders for user " + userID, Err: err}
	}
	return orders, nil
}

// CreateWithStockDecrement persists the order and decrements stock for every
// line item inside one transaction. Each decrement only applies when the
// product still has enough stock ("stock >= qty" checked in the UPDATE
// itself), so two concurrent orders can never drive stock negative: the
// loser's conditional update matches no row and the whole transaction rolls
// back with an OutOfStockError.
func (r *GORMOrderRepository) CreateWithStockDecrement(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return &apperrors.PersistenceError{Op: "create order", Err: err}
		}

		for _, item := range order.Items {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Qty).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Qty))
			if res.Error != nil {
				return &apperrors.PersistenceError{Op: "decrement stock for product " + item.ProductID, Err: res.Error}
			}
			if res.RowsAffected == 0 {
				// Either the product vanished or another order won the
				// remaining stock between pricing and here. Re-read to tell
				// the two apart and report the live count.
				var product models.Product
				if err := tx.First(&product, "id = ?", item.ProductID).Error; err != nil {
					return &apperrors.NotFoundError{Resource: "product", ID: item.ProductID}
				}
				return &apperrors.OutOfStockError{
					ProductName: product.Name,
					Requested:   item.Qty,
					Available:   product.Stock,
				}
			}
		}
		return nil
	})
}

// Update saves the order's mutable fields (payment and delivery flags).
// Line items are immutable after creation and are left alone.
func (r *GORMOrderRepository) Update(order *models.Order) error {
	res := r.db.Omit(clause.Associations).Save(order)
	if res.Error != nil {
		return &apperrors.PersistenceError{Op: "update order", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		// Some drivers report zero affected rows for a no-op update of an
		// existing row, so check existence before calling it missing.
		var count int64
		if err := r.db.Model(&models.Order{}).Where("id = ?", order.ID).Count(&count).Error; err != nil {
			return &apperrors.PersistenceError{Op: "update order", Err: err}
		}
		if count == 0 {
			return &apperrors.NotFoundError{Resource: "order", ID: order.ID}
		}
	}
	return nil
}
