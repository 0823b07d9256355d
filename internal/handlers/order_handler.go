package handlers

import (
	"log"

	"github.com/adarsh2255-buji/amazon-clone/internal/middleware"
	"github.com/adarsh2255-buji/amazon-clone/internal/models"
	"github.com/adarsh2255-buji/amazon-clone/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the order routes with the Fiber app. All order
// routes require authentication; the caller mounts them behind AuthRequired.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/", middleware.RequireRoles(models.RoleAdmin), h.HandleGetOrders)
	orderRoutes.Get("/myorders", h.HandleGetMyOrders)
	// Dynamic routes go last to avoid swallowing /myorders
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Put("/:id/pay", h.HandleMarkOrderPaid)
}

// HandleCreateOrder prices and places a new order for the authenticated user.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var req services.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing order request body: %v", err)
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

	createdOrder, err := h.service.CreateOrder(userID, req)
	middleware.RecordOrderOperation("create", err == nil)
	if err != nil {
		log.Printf("Error creating order for user %s: %v", userID, err)
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(createdOrder)
}

// HandleGetOrders retrieves all orders. Admin only.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetAllOrders()
	if err != nil {
		log.Printf("Error getting all orders: %v", err)
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// HandleGetMyOrders retrieves the authenticated user's orders.
func (h *OrderHandler) HandleGetMyOrders(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	orders, err := h.service.GetOrdersByUser(userID)
	if err != nil {
		log.Printf("Error getting orders for user %s: %v", userID, err)
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order. Only the order's owner or an
// admin may see it.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	orderID := c.Params("id")
	userID, _ := c.Locals("user_id").(string)
	role, _ := c.Locals("role").(string)

	order, err := h.service.GetOrderForUser(orderID, userID, role)
	if err != nil {
		log.Printf("Error getting order %s: %v", orderID, err)
		return respondError(c, err)
	}
	return c.JSON(order)
}

// HandleMarkOrderPaid records a payment confirmation on the order.
func (h *OrderHandler) HandleMarkOrderPaid(c *fiber.Ctx) error {
	orderID := c.Params("id")
	userID, _ := c.Locals("user_id").(string)
	role, _ := c.Locals("role").(string)

	var result models.PaymentResult
	if err := c.BodyParser(&result); err != nil {
		log.Printf("Error parsing payment result body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	order, err := h.service.MarkOrderPaid(orderID, userID, role, result)
	middleware.RecordOrderOperation("pay", err == nil)
	if err != nil {
		log.Printf("Error marking order %s paid: %v", orderID, err)
		return respondError(c, err)
	}
	return c.JSON(order)
}
