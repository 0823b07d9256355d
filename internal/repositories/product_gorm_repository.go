package repositories

import (
	"strings"

	"github.com/adarsh2255-buji/amazon-clone/internal/apperrors"
	"github.com/adarsh2255-buji/amazon-clone/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Columns a listing may sort on. Anything else falls back to newest-first.
var sortableColumns = map[string]bool{
	"price":      true,
	"name":       true,
	"rating":     true,
	"created_at": true,
}

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// List retrieves one page of products matching the filter, plus the total
// match count.
func (r *GORMProductRepository) List(filter ProductFilter) ([]models.Product, int64, error) {
	query := r.db.Model(&models.Product{})

	if filter.Keyword != "" {
		pattern := "%" + strings.ToLower(filter.Keyword) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if filter.Category != "" {
		query = query.Where("LOWER(category) = ?", strings.ToLower(filter.Category))
	}
	if filter.Brand != "" {
		query = query.Where("LOWER(brand) = ?", strings.ToLower(filter.Brand))
	}
	if filter.PriceMin != nil {
		query = query.Where("price >= ?", *filter.PriceMin)
	}
	if filter.PriceMax != nil {
		query = query.Where("price <= ?", *filter.PriceMax)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, &apperrors.PersistenceError{Op: "count products", Err: err}
	}

	// Sorting: "-price" means price descending. Default is newest first.
	order := "created_at DESC"
	if filter.SortBy != "" {
		column := strings.TrimPrefix(filter.SortBy, "-")
		if sortableColumns[column] {
			order = column
			if strings.HasPrefix(filter.SortBy, "-") {
				order += " DESC"
			}
		}
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}

	var products []models.Product
	err := query.Order(order).Offset((page - 1) * limit).Limit(limit).Find(&products).Error
	if err != nil {
		return nil, 0, &apperrors.PersistenceError{Op: "list products", Err: err}
	}
	return products, total, nil
}

// GetByID retrieves a single product with its reviews.
func (r *GORMProductRepository) GetByID(id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.Preload("Reviews").First(&product, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &apperrors.NotFoundError{Resource: "product", ID: id}
		}
		return nil, &apperrors.PersistenceError{Op: "get product by ID " + id, Err: err}
	}
	return &product, nil
}

// GetByIDs retrieves all products whose IDs appear in the given batch.
// The result order is unspecified and missing IDs are silently skipped.
func (r *GORMProductRepository) GetByIDs(ids []string) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Find(&products, "id IN ?", ids).Error; err != nil {
		return nil, &apperrors.PersistenceError{Op: "get products by IDs", Err: err}
	}
	return products, nil
}

// GetByCategory retrieves all products in a category, case-insensitively.
func (r *GORMProductRepository) GetByCategory(category string) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Where("LOWER(category) = ?", strings.ToLower(category)).Find(&products).Error
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "get products by category " + category, Err: err}
	}
	return products, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.Create(product).Error; err != nil {
		return &apperrors.PersistenceError{Op: "create product", Err: err}
	}
	return nil
}

// Update updates an existing product in the database. Reviews are written
// through AddReview only and are left alone here.
func (r *GORMProductRepository) Update(product *models.Product) error {
	res := r.db.Omit(clause.Associations).Save(product) // Save will update all fields, including zero values
	if res.Error != nil {
		return &apperrors.PersistenceError{Op: "update product", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		// Some drivers report zero affected rows for a no-op update of an
		// existing row, so check existence before calling it missing.
		var count int64
		if err := r.db.Model(&models.Product{}).Where("id = ?", product.ID).Count(&count).Error; err != nil {
			return &apperrors.PersistenceError{Op: "update product", Err: err}
		}
		if count == 0 {
			return &apperrors.NotFoundError{Resource: "product", ID: product.ID}
		}
	}
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(id string) error {
	res := r.db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return &apperrors.PersistenceError{Op: "delete product", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return &apperrors.NotFoundError{Resource: "product", ID: id}
	}
	return nil
}

// AddReview writes the review row and the product's recomputed aggregates in
// one transaction, so the review list and the rating never drift apart.
func (r *GORMProductRepository) AddReview(product *models.Product, review *models.Review) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(review).Error; err != nil {
			return err
		}
		return tx.Model(&models.Product{}).
			Where("id = ?", product.ID).
			Updates(map[string]interface{}{
				"rating":      product.Rating,
				"num_reviews": product.NumReviews,
			}).Error
	})
	if err != nil {
		return &apperrors.PersistenceError{Op: "add review", Err: err}
	}
	return nil
}
