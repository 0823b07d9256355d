package services

import (
	"log"
	"math"
	"time"

	"github.com/adarsh2255-buji/amazon-clone/internal/apperrors"
	"github.com/adarsh2255-buji/amazon-clone/internal/models"
	"github.com/adarsh2255-buji/amazon-clone/internal/repositories"
	"github.com/adarsh2255-buji/amazon-clone/pkg/rabbitmq"

	"github.com/google/uuid"
)

// Shipping is free above this items-price threshold (strictly above: an
// order of exactly 100 still pays the flat rate).
const (
	freeShippingThreshold = 100.0
	flatShippingRate      = 10.0
	taxRate               = 0.15
)

// OrderItemRequest is the untrusted client shape of one order line. It
// deliberately carries no price: prices are always re-derived from the
// catalog.
type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Qty       int    `json:"qty" validate:"required,gt=0"`
}

// CreateOrderRequest is the client payload for placing an order.
type CreateOrderRequest struct {
	Items           []OrderItemRequest     `json:"items" validate:"required,dive"`
	ShippingAddress models.ShippingAddress `json:"shipping_address"`
	PaymentMethod   string                 `json:"payment_method" validate:"required"`
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	mqClient    *rabbitmq.Client // RabbitMQ client, may be nil in tests
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository, mqClient *rabbitmq.Client) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		mqClient:    mqClient,
	}
}

// PriceOrder validates the requested lines against the catalog and builds a
// fully priced order. It is a pure computation over the catalog snapshot: no
// writes happen here. Prices, names and images on the line items come from
// the catalog, never from the client.
func (s *OrderService) PriceOrder(userID string, req CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, &apperrors.ValidationError{Message: "order must contain at least one item"}
	}

	// Collect the distinct referenced product IDs for one batch lookup.
	seen := make(map[string]struct{}, len(req.Items))
	ids := make([]string, 0, len(req.Items))
	for _, line := range req.Items {
		if line.Qty <= 0 {
			return nil, &apperrors.ValidationError{Message: "item quantity must be positive"}
		}
		if _, ok := seen[line.ProductID]; !ok {
			seen[line.ProductID] = struct{}{}
			ids = append(ids, line.ProductID)
		}
	}

	products, err := s.productRepo.GetByIDs(ids)
	if err != nil {
		return nil, err
	}

	// The batch lookup returns results in arbitrary order; index them by ID
	// so each line resolves in O(1).
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	if len(products) < len(ids) {
		for _, id := range ids {
			if _, ok := byID[id]; !ok {
				return nil, &apperrors.NotFoundError{Resource: "product", ID: id}
			}
		}
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	var itemsPrice float64
	for _, line := range req.Items {
		product := byID[line.ProductID]
		if line.Qty > product.Stock {
			return nil, &apperrors.OutOfStockError{
				ProductName: product.Name,
				Requested:   line.Qty,
				Available:   product.Stock,
			}
		}
		items = append(items, models.OrderItem{
			ID:        uuid.New().String(),
			ProductID: product.ID,
			Name:      product.Name,
			Image:     product.Image,
			Price:     product.Price, // Authoritative catalog price
			Qty:       line.Qty,
		})
		itemsPrice += product.Price * float64(line.Qty)
	}

	shippingPrice := flatShippingRate
	if itemsPrice > freeShippingThreshold {
		shippingPrice = 0
	}
	taxPrice := math.Round(itemsPrice*taxRate*100) / 100

	return &models.Order{
		ID:              uuid.New().String(),
		UserID:          userID,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		ItemsPrice:      itemsPrice,
		ShippingPrice:   shippingPrice,
		TaxPrice:        taxPrice,
		TotalPrice:      itemsPrice + shippingPrice + taxPrice,
	}, nil
}

// CreateOrder prices the request, persists the order with its stock
// decrements in one transaction, and publishes an order-created event.
func (s *OrderService) CreateOrder(userID string, req CreateOrderRequest) (*models.Order, error) {
	order, err := s.PriceOrder(userID, req)
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.CreateWithStockDecrement(order); err != nil {
		return nil, err
	}

	if s.mqClient != nil {
		event := rabbitmq.OrderCreatedEvent{
			OrderID:    order.ID,
			UserID:     order.UserID,
			TotalPrice: order.TotalPrice,
			ItemCount:  len(order.Items),
			CreatedAt:  time.Now().Format(time.RFC3339),
		}
		// The order is already committed; a failed publish must not undo it.
		if err := s.mqClient.PublishOrderCreated(event); err != nil {
			log.Printf("Warning: Failed to publish order created event for order %s: %v", order.ID, err)
		}
	}

	return order, nil
}

// GetAllOrders retrieves all orders. Admin only; the handler enforces the
// role before calling in.
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// GetOrdersByUser retrieves the calling user's orders.
func (s *OrderService) GetOrdersByUser(userID string) ([]models.Order, error) {
	return s.orderRepo.GetByUserID(userID)
}

// GetOrderForUser retrieves a single order, allowing only the order's owner
// or an admin to see it.
func (s *OrderService) GetOrderForUser(orderID, actorID, actorRole string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if actorRole != models.RoleAdmin && order.UserID != actorID {
		return nil, &apperrors.AuthorizationError{Message: "not authorized to view this order"}
	}
	return order, nil
}

// MarkOrderPaid flips the order's payment flag and records the gateway
// result. Only the order's owner or an admin may do this.
func (s *OrderService) MarkOrderPaid(orderID, actorID, actorRole string, result models.PaymentResult) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if actorRole != models.RoleAdmin && order.UserID != actorID {
		return nil, &apperrors.AuthorizationError{Message: "not authorized to update this order"}
	}

	now := time.Now()
	order.IsPaid = true
	order.PaidAt = &now
	order.PaymentResult = result

	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}
	return order, nil
}
