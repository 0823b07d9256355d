package services

import (
	"github.com/adarsh2255-buji/amazon-clone/internal/apperrors"
	"github.com/adarsh2255-buji/amazon-clone/internal/models"
	"github.com/adarsh2255-buji/amazon-clone/internal/repositories"

	"github.com/google/uuid"
)

// ProductUpdate carries the fields of a partial product update. Nil pointers
// leave the stored value untouched, so a seller can legitimately set stock
// or price to zero.
type ProductUpdate struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Image       *string  `json:"image"`
	Brand       *string  `json:"brand"`
	Category    *string  `json:"category"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
}

// ProductService handles business logic related to products and reviews.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// ListProducts retrieves one page of the catalog with the total match count.
func (s *ProductService) ListProducts(filter repositories.ProductFilter) ([]models.Product, int64, error) {
	return s.repo.List(filter)
}

// GetProductByID retrieves a single product by its ID, reviews included.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// GetProductsByCategory retrieves all products in a category.
func (s *ProductService) GetProductsByCategory(category string) ([]models.Product, error) {
	return s.repo.GetByCategory(category)
}

// CreateProduct creates a new product owned by the given seller.
func (s *ProductService) CreateProduct(sellerID string, product *models.Product) error {
	product.SellerID = sellerID
	product.Rating = 0
	product.NumReviews = 0
	return s.repo.Create(product)
}

// UpdateProduct applies a partial update. Sellers may only edit their own
// products; admins may edit anything.
func (s *ProductService) UpdateProduct(id, actorID, actorRole string, update ProductUpdate) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if actorRole != models.RoleAdmin && product.SellerID != actorID {
		return nil, &apperrors.AuthorizationError{Message: "not authorized to edit this product"}
	}

	if update.Name != nil {
		product.Name = *update.Name
	}
	if update.Description != nil {
		product.Description = *update.Description
	}
	if update.Image != nil {
		product.Image = *update.Image
	}
	if update.Brand != nil {
		product.Brand = *update.Brand
	}
	if update.Category != nil {
		product.Category = *update.Category
	}
	if update.Price != nil {
		product.Price = *update.Price
	}
	if update.Stock != nil {
		product.Stock = *update.Stock
	}

	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct deletes a product. Sellers may only delete their own
// products; admins may delete anything.
func (s *ProductService) DeleteProduct(id, actorID, actorRole string) error {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if actorRole != models.RoleAdmin && product.SellerID != actorID {
		return &apperrors.AuthorizationError{Message: "not authorized to delete this product"}
	}
	return s.repo.Delete(id)
}

// AddReview appends a review and recomputes the product's aggregates. A user
// may review each product only once; the duplicate check scans the loaded
// review list. The rating is the plain arithmetic mean, recomputed from
// scratch over all ratings rather than kept incrementally.
func (s *ProductService) AddReview(productID, userID, userName string, rating int, comment string) (*models.Product, error) {
	if rating < 1 || rating > 5 {
		return nil, &apperrors.ValidationError{Message: "rating must be between 1 and 5"}
	}

	product, err := s.repo.GetByID(productID)
	if err != nil {
		return nil, err
	}

	for _, existing := range product.Reviews {
		if existing.UserID == userID {
			return nil, &apperrors.DuplicateReviewError{ProductID: productID, UserID: userID}
		}
	}

	review := models.Review{
		ID:        uuid.New().String(),
		ProductID: productID,
		UserID:    userID,
		UserName:  userName,
		Rating:    rating,
		Comment:   comment,
	}
	product.Reviews = append(product.Reviews, review)
	product.NumReviews = len(product.Reviews)

	var sum int
	for _, r := range product.Reviews {
		sum += r.Rating
	}
	product.Rating = float64(sum) / float64(len(product.Reviews))

	if err := s.repo.AddReview(product, &review); err != nil {
		return nil, err
	}
	return product, nil
}
