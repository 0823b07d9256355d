package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/adarsh2255-buji/amazon-clone/internal/handlers"
	"github.com/adarsh2255-buji/amazon-clone/internal/middleware"
	"github.com/adarsh2255-buji/amazon-clone/internal/models"
	"github.com/adarsh2255-buji/amazon-clone/internal/repositories"
	"github.com/adarsh2255-buji/amazon-clone/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testEnv bundles the app with the collaborators tests need direct access to.
type testEnv struct {
	app         *fiber.App
	authService *services.AuthService
	userRepo    repositories.UserRepository
	productRepo repositories.ProductRepository
}

// setupApp sets up a Fiber app for testing with in-memory SQLite and all
// handlers/services wired the way main.go wires them.
func setupApp() (*testEnv, error) {
	// Configure Viper for testing
	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	// Initialize in-memory SQLite database. The named shared-cache DSN
	// keeps every pooled connection on the same in-memory instance.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to in-memory database: %w", err)
	}

	// Auto-migrate models
	err = db.AutoMigrate(&models.User{}, &models.Product{}, &models.Review{}, &models.Order{}, &models.OrderItem{})
	if err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	// Initialize Repositories
	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	// Initialize Services
	productService := services.NewProductService(productRepo)
	orderService := services.NewOrderService(orderRepo, productRepo, nil) // nil for RabbitMQ client
	authService := services.NewAuthService(userRepo, jwtSecret)

	// Initialize Handlers
	productHandler := handlers.NewProductHandler(productService)
	orderHandler := handlers.NewOrderHandler(orderService)
	authHandler := handlers.NewAuthHandler(authService)

	app := fiber.New()

	// API Routes, mirroring main.go
	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1)
	productHandler.RegisterPublicRoutes(apiV1)

	protected := apiV1.Group("", middleware.AuthRequired(authService))
	productHandler.RegisterProtectedRoutes(protected)
	orderHandler.RegisterRoutes(protected)

	return &testEnv{
		app:         app,
		authService: authService,
		userRepo:    userRepo,
		productRepo: productRepo,
	}, nil
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1) // -1 for no timeout
	assert.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// registerAndLogin registers a user through the API and returns their token.
func registerAndLogin(t *testing.T, env *testEnv, name, email, role string) string {
	t.Helper()
	resp := doJSON(t, env.app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "password123",
		"role":     role,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var registerResp map[string]interface{}
	decodeBody(t, resp, &registerResp)
	token, _ := registerResp["token"].(string)
	assert.NotEmpty(t, token)
	return token
}

// adminToken seeds an admin directly in the repository (admins cannot
// self-register) and issues a token for them.
func adminToken(t *testing.T, env *testEnv) string {
	t.Helper()
	admin := &models.User{Name: "Admin", Email: "admin@example.com", Password: "irrelevant", Role: models.RoleAdmin}
	assert.NoError(t, env.userRepo.Create(admin))
	token, err := env.authService.GenerateToken(admin)
	assert.NoError(t, err)
	return token
}

// createProduct seeds a catalog product through the API as the given seller.
func createProduct(t *testing.T, env *testEnv, sellerToken string, product map[string]interface{}) models.Product {
	t.Helper()
	resp := doJSON(t, env.app, http.MethodPost, "/api/v1/products", sellerToken, product)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Product
	decodeBody(t, resp, &created)
	assert.NotEmpty(t, created.ID)
	return created
}

func TestAuthRegisterAndLogin(t *testing.T) {
	env, err := setupApp()
	assert.NoError(t, err)

	// Registration issues a token right away
	token := registerAndLogin(t, env, "Test User", "test@example.com", "")
	claims, err := env.authService.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "Test User", claims["name"])
	assert.Equal(t, models.RoleCustomer, claims["role"])

	// Duplicate registration is rejected
	resp := doJSON(t, env.app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":     "Test User",
		"email":    "test@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Login works with the registered credentials
	resp = doJSON(t, env.app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "test@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var loginResp map[string]interface{}
	decodeBody(t, resp, &loginResp)
	assert.NotEmpty(t, loginResp["token"])

	// Wrong password is rejected
	resp = doJSON(t, env.app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "test@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestCatalogBrowsingIsPublic(t *testing.T) {
	env, err := setupApp()
	assert.NoError(t, err)

	seller := registerAndLogin(t, env, "Seller", "seller@example.com", models.RoleSeller)
	createProduct(t, env, seller, map[string]interface{}{
		"name": "Gaming Laptop", "description": "High performance laptop",
		"brand": "Acme", "category": "Electronics", "price": 1200.0, "stock": 10,
	})
	createProduct(t, env, seller, map[string]interface{}{
		"name": "Office Chair", "description": "Ergonomic chair",
		"brand": "SitWell", "category": "Furniture", "price": 300.0, "stock": 5,
	})

	// Listing requires no token and returns the pagination envelope
	resp := doJSON(t, env.app, http.MethodGet, "/api/v1/products?category=electronics", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var listResp struct {
		Count int              `json:"count"`
		Total int64            `json:"total"`
		Data  []models.Product `json:"data"`
	}
	decodeBody(t, resp, &listResp)
	assert.Equal(t, 1, listResp.Count)
	assert.Equal(t, int64(1), listResp.Total)
	assert.Equal(t, "Gaming Laptop", listResp.Data[0].Name)

	// Category browse is public too
	resp = doJSON(t, env.app, http.MethodGet, "/api/v1/products/category/furniture", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var products []models.Product
	decodeBody(t, resp, &products)
	assert.Len(t, products, 1)
}

func TestProductWritesRequireSellerRole(t *testing.T) {
	env, err := setupApp()
	assert.NoError(t, err)

	customer := registerAndLogin(t, env, "Customer", "customer@example.com", "")
	seller := registerAndLogin(t, env, "Seller", "seller@example.com", models.RoleSeller)

	payload := map[string]interface{}{"name": "Widget", "price": 50.0, "stock": 3}

	// Unauthenticated and customer writes are rejected
	resp := doJSON(t, env.app, http.MethodPost, "/api/v1/products", "", payload)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, env.app, http.MethodPost, "/api/v1/products", customer, payload)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Seller writes succeed
	created := createProduct(t, env, seller, payload)

	// A different seller cannot edit someone else's product
	otherSeller := registerAndLogin(t, env, "Other", "other@example.com", models.RoleSeller)
	resp = doJSON(t, env.app, http.MethodPut, "/api/v1/products/"+created.ID, otherSeller, map[string]interface{}{"price": 1.0})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// The owner can
	resp = doJSON(t, env.app, http.MethodPut, "/api/v1/products/"+created.ID, seller, map[string]interface{}{"price": 60.0})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.Product
	decodeBody(t, resp, &updated)
	assert.Equal(t, 60.0, updated.Price)
}

func TestOrderPlacementFlow(t *testing.T) {
	env, err := setupApp()
	assert.NoError(t, err)

	seller := registerAndLogin(t, env, "Seller", "seller@example.com", models.RoleSeller)
	customer := registerAndLogin(t, env, "Customer", "customer@example.com", "")

	widget := createProduct(t, env, seller, map[string]interface{}{
		"name": "Widget", "image": "widget.png", "price": 50.0, "stock": 3,
	})

	orderPayload := map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": widget.ID, "qty": 2},
		},
		"shipping_address": map[string]string{
			"street": "1 Test Street", "city": "Testville",
			"postal_code": "12345", "country": "US",
		},
		"payment_method": "card",
	}

	// Placing the order computes the documented totals
	resp := doJSON(t, env.app, http.MethodPost, "/api/v1/orders", customer, orderPayload)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var order models.Order
	decodeBody(t, resp, &order)
	assert.Equal(t, 100.0, order.ItemsPrice)
	assert.Equal(t, 10.0, order.ShippingPrice) // 100 is not > 100
	assert.Equal(t, 15.0, order.TaxPrice)
	assert.Equal(t, 125.0, order.TotalPrice)
	assert.Len(t, order.Items, 1)
	assert.Equal(t, 50.0, order.Items[0].Price)

	// Stock dropped from 3 to 1
	stored, err := env.productRepo.GetByID(widget.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, stored.Stock)

	// Ordering more than the remaining stock fails with 400 and leaves stock alone
	resp = doJSON(t, env.app, http.MethodPost, "/api/v1/orders", customer, orderPayload)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
	stored, _ = env.productRepo.GetByID(widget.ID)
	assert.Equal(t, 1, stored.Stock)

	// Unknown product yields 404
	badPayload := map[string]interface{}{
		"items":          []map[string]interface{}{{"product_id": "missing", "qty": 1}},
		"payment_method": "card",
	}
	resp = doJSON(t, env.app, http.MethodPost, "/api/v1/orders", customer, badPayload)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// Empty cart yields 400
	emptyPayload := map[string]interface{}{
		"items":          []map[string]interface{}{},
		"payment_method": "card",
	}
	resp = doJSON(t, env.app, http.MethodPost, "/api/v1/orders", customer, emptyPayload)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestOrderVisibility(t *testing.T) {
	env, err := setupApp()
	assert.NoError(t, err)

	seller := registerAndLogin(t, env, "Seller", "seller@example.com", models.RoleSeller)
	alice := registerAndLogin(t, env, "Alice", "alice@example.com", "")
	bob := registerAndLogin(t, env, "Bob", "bob@example.com", "")

	widget := createProduct(t, env, seller, map[string]interface{}{
		"name": "Widget", "price": 50.0, "stock": 10,
	})

	orderPayload := map[string]interface{}{
		"items":          []map[string]interface{}{{"product_id": widget.ID, "qty": 1}},
		"payment_method": "card",
	}
	resp := doJSON(t, env.app, http.MethodPost, "/api/v1/orders", alice, orderPayload)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var order models.Order
	decodeBody(t, resp, &order)

	// The owner sees their order
	resp = doJSON(t, env.app, http.MethodGet, "/api/v1/orders/"+order.ID, alice, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Another customer does not
	resp = doJSON(t, env.app, http.MethodGet, "/api/v1/orders/"+order.ID, bob, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Admin sees everything, including the full listing
	admin := adminToken(t, env)
	resp = doJSON(t, env.app, http.MethodGet, "/api/v1/orders/"+order.ID, admin, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, env.app, http.MethodGet, "/api/v1/orders", admin, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var allOrders []models.Order
	decodeBody(t, resp, &allOrders)
	assert.Len(t, allOrders, 1)

	// The all-orders listing is admin only
	resp = doJSON(t, env.app, http.MethodGet, "/api/v1/orders", alice, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Myorders shows only the caller's orders
	resp = doJSON(t, env.app, http.MethodGet, "/api/v1/orders/myorders", bob, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var bobOrders []models.Order
	decodeBody(t, resp, &bobOrders)
	assert.Len(t, bobOrders, 0)
}

func TestMarkOrderPaid(t *testing.T) {
	env, err := setupApp()
	assert.NoError(t, err)

	seller := registerAndLogin(t, env, "Seller", "seller@example.com", models.RoleSeller)
	customer := registerAndLogin(t, env, "Customer", "customer@example.com", "")

	widget := createProduct(t, env, seller, map[string]interface{}{
		"name": "Widget", "price": 50.0, "stock": 10,
	})
	resp := doJSON(t, env.app, http.MethodPost, "/api/v1/orders", customer, map[string]interface{}{
		"items":          []map[string]interface{}{{"product_id": widget.ID, "qty": 1}},
		"payment_method": "card",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var order models.Order
	decodeBody(t, resp, &order)

	resp = doJSON(t, env.app, http.MethodPut, "/api/v1/orders/"+order.ID+"/pay", customer, map[string]string{
		"transaction_id": "tx-1",
		"status":         "COMPLETED",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var paid models.Order
	decodeBody(t, resp, &paid)
	assert.True(t, paid.IsPaid)
	assert.NotNil(t, paid.PaidAt)
	assert.Equal(t, "tx-1", paid.PaymentResult.TransactionID)
}

func TestReviewFlow(t *testing.T) {
	env, err := setupApp()
	assert.NoError(t, err)

	seller := registerAndLogin(t, env, "Seller", "seller@example.com", models.RoleSeller)
	alice := registerAndLogin(t, env, "Alice", "alice@example.com", "")
	bob := registerAndLogin(t, env, "Bob", "bob@example.com", "")

	widget := createProduct(t, env, seller, map[string]interface{}{
		"name": "Widget", "price": 50.0, "stock": 10,
	})

	// First review sets the aggregates exactly
	resp := doJSON(t, env.app, http.MethodPost, "/api/v1/products/"+widget.ID+"/reviews", alice, map[string]interface{}{
		"rating": 4, "comment": "Solid product",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var reviewResp struct {
		Rating     float64 `json:"rating"`
		NumReviews int     `json:"num_reviews"`
	}
	decodeBody(t, resp, &reviewResp)
	assert.Equal(t, 4.0, reviewResp.Rating)
	assert.Equal(t, 1, reviewResp.NumReviews)

	// A duplicate from the same user is rejected and changes nothing
	resp = doJSON(t, env.app, http.MethodPost, "/api/v1/products/"+widget.ID+"/reviews", alice, map[string]interface{}{
		"rating": 1, "comment": "Changed my mind",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	stored, err := env.productRepo.GetByID(widget.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, stored.NumReviews)
	assert.Equal(t, 4.0, stored.Rating)

	// A second reviewer moves the mean
	resp = doJSON(t, env.app, http.MethodPost, "/api/v1/products/"+widget.ID+"/reviews", bob, map[string]interface{}{
		"rating": 2, "comment": "Not great",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	stored, err = env.productRepo.GetByID(widget.ID)
	assert.NoError(t, err)
	assert.Equal(t, 2, stored.NumReviews)
	assert.Equal(t, 3.0, stored.Rating)

	// Anonymous reviews are rejected
	resp = doJSON(t, env.app, http.MethodPost, "/api/v1/products/"+widget.ID+"/reviews", "", map[string]interface{}{
		"rating": 5, "comment": "Drive-by praise",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}
