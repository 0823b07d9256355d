package handlers

import (
	"log"
	"strconv"

	"github.com/adarsh2255-buji/amazon-clone/internal/middleware"
	"github.com/adarsh2255-buji/amazon-clone/internal/models"
	"github.com/adarsh2255-buji/amazon-clone/internal/repositories"
	"github.com/adarsh2255-buji/amazon-clone/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the product catalog and reviews.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterPublicRoutes registers the read-only catalog routes.
func (h *ProductHandler) RegisterPublicRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/category/:category", h.HandleGetProductsByCategory)
	productRoutes.Get("/:id", h.HandleGetProductByID)
}

// RegisterProtectedRoutes registers the catalog mutations and review
// submission. The caller mounts these behind AuthRequired; writes are
// further restricted to sellers and admins.
func (h *ProductHandler) RegisterProtectedRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	sellerOrAdmin := middleware.RequireRoles(models.RoleSeller, models.RoleAdmin)
	productRoutes.Post("/", sellerOrAdmin, h.HandleCreateProduct)
	productRoutes.Put("/:id", sellerOrAdmin, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", sellerOrAdmin, h.HandleDeleteProduct)
	productRoutes.Post("/:id/reviews", h.HandleCreateReview)
}

// HandleListProducts lists the catalog with filtering, keyword search,
// sorting and pagination via query parameters.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	filter := repositories.ProductFilter{
		Keyword:  c.Query("keyword"),
		Category: c.Query("category"),
		Brand:    c.Query("brand"),
		SortBy:   c.Query("sort"),
		Page:     c.QueryInt("page", 1),
		Limit:    c.QueryInt("limit", 10),
	}
	if raw := c.Query("price_min"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.PriceMin = &v
		}
	}
	if raw := c.Query("price_max"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.PriceMax = &v
		}
	}

	products, total, err := h.service.ListProducts(filter)
	if err != nil {
		log.Printf("Error listing products: %v", err)
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"count": len(products),
		"total": total,
		"pagination": fiber.Map{
			"page":  filter.Page,
			"limit": filter.Limit,
		},
		"data": products,
	})
}

// HandleGetProductByID retrieves a single product with its reviews.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	productID := c.Params("id")
	product, err := h.service.GetProductByID(productID)
	if err != nil {
		log.Printf("Error getting product by ID %s: %v", productID, err)
		return respondError(c, err)
	}
	return c.JSON(product)
}

// HandleGetProductsByCategory lists all products in a category.
func (h *ProductHandler) HandleGetProductsByCategory(c *fiber.Ctx) error {
	category := c.Params("category")
	products, err := h.service.GetProductsByCategory(category)
	if err != nil {
		log.Printf("Error getting products for category %s: %v", category, err)
		return respondError(c, err)
	}
	return c.JSON(products)
}

// HandleCreateProduct creates a new product owned by the calling seller.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		log.Printf("Error parsing product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(product); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	if err := h.service.CreateProduct(userID, &product); err != nil {
		log.Printf("Error creating product: %v", err)
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct applies a partial product update, enforcing ownership.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	productID := c.Params("id")
	userID, _ := c.Locals("user_id").(string)
	role, _ := c.Locals("role").(string)

	var update services.ProductUpdate
	if err := c.BodyParser(&update); err != nil {
		log.Printf("Error parsing product update body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	product, err := h.service.UpdateProduct(productID, userID, role, update)
	if err != nil {
		log.Printf("Error updating product %s: %v", productID, err)
		return respondError(c, err)
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes a product, enforcing ownership.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	productID := c.Params("id")
	userID, _ := c.Locals("user_id").(string)
	role, _ := c.Locals("role").(string)

	if err := h.service.DeleteProduct(productID, userID, role); err != nil {
		log.Printf("Error deleting product %s: %v", productID, err)
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Product deleted successfully",
	})
}

// ReviewRequest is the payload for submitting a product review.
type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required,max=500"`
}

// HandleCreateReview submits a review for a product. One review per user per
// product; duplicates are rejected.
func (h *ProductHandler) HandleCreateReview(c *fiber.Ctx) error {
	productID := c.Params("id")
	userID, _ := c.Locals("user_id").(string)
	userName, _ := c.Locals("name").(string)

	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing review request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	product, err := h.service.AddReview(productID, userID, userName, req.Rating, req.Comment)
	if err != nil {
		log.Printf("Error adding review to product %s: %v", productID, err)
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Review added",
		"rating":      product.Rating,
		"num_reviews": product.NumReviews,
	})
}
