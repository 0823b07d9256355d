package repositories

import (
	"github.com/adarsh2255-buji/amazon-clone/internal/models"
)

// ProductFilter narrows and pages a catalog listing. Zero values mean
// "no constraint"; Page and Limit default to 1 and 10 when unset.
type ProductFilter struct {
	Keyword  string
	Category string
	Brand    string
	PriceMin *float64
	PriceMax *float64
	SortBy   string // column name, optionally prefixed with "-" for descending
	Page     int
	Limit    int
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	// List returns one page of products matching the filter plus the total
	// match count across all pages.
	List(filter ProductFilter) ([]models.Product, int64, error)
	GetByID(id string) (*models.Product, error)
	// GetByIDs resolves a batch of product IDs in one lookup. Missing IDs are
	// simply absent from the result; callers compare lengths.
	GetByIDs(ids []string) ([]models.Product, error)
	GetByCategory(category string) ([]models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
	// AddReview persists the new review row together with the product's
	// recomputed rating and review count as one atomic write.
	AddReview(product *models.Product, review *models.Review) error
}
