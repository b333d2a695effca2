package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ardagonca/ecommerce-backend/internal/app/controller"
	"github.com/ardagonca/ecommerce-backend/internal/app/model"
	"github.com/ardagonca/ecommerce-backend/internal/app/repository"
	"github.com/ardagonca/ecommerce-backend/internal/app/service"
	"github.com/ardagonca/ecommerce-backend/internal/db"
	"github.com/ardagonca/ecommerce-backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type TestServer struct {
	Router *gin.Engine
	DB     *gorm.DB
}

func setupIntegrationTest(t *testing.T) *TestServer {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)

	authService := service.NewAuthService(
		userRepo,
		"test-secret",
		15*time.Minute,
		7*24*time.Hour,
	)
	productService := service.NewProductService(productRepo)
	cartService := service.NewCartService(cartRepo, productRepo, testDB)

	authController := controller.NewAuthController(authService)
	productController := controller.NewProductController(productService)
	cartController := controller.NewCartController(cartService)

	authMiddleware := middleware.NewAuthMiddleware("test-secret")

	router := gin.New()

	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.GET("/me", authMiddleware.Authenticate(), authController.GetMe)
	}

	products := router.Group("/api/v1/products")
	{
		products.GET("", productController.ListProducts)
		products.GET("/:id", productController.GetProduct)
		products.POST("", authMiddleware.Authenticate(), authMiddleware.RequireRole("admin"), productController.CreateProduct)
		products.PUT("/:id", authMiddleware.Authenticate(), authMiddleware.RequireRole("admin"), productController.UpdateProduct)
	}

	cart := router.Group("/api/v1/cart")
	{
		cart.GET("", authMiddleware.OptionalAuthenticate(), cartController.GetCart)
		cart.POST("/items", authMiddleware.Authenticate(), cartController.AddItem)
		cart.PUT("/items/:product_id", authMiddleware.Authenticate(), cartController.UpdateQuantity)
		cart.DELETE("/items/:product_id", authMiddleware.Authenticate(), cartController.RemoveItem)
	}

	return &TestServer{
		Router: router,
		DB:     testDB,
	}
}

func (ts *TestServer) request(t *testing.T, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestCompleteUserJourney(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	// 1. Register a shopper
	t.Log("Step 1: Register user")
	w := ts.request(t, "POST", "/api/v1/auth/register", "", map[string]string{
		"email":      "buyer@example.com",
		"password":   "password123",
		"first_name": "Test",
		"last_name":  "Buyer",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	registerResp := decodeBody(t, w)
	tokens := registerResp["tokens"].(map[string]interface{})
	userToken := tokens["access_token"].(string)
	require.NotEmpty(t, userToken)

	// 2. Promote a separate account to admin and create products
	t.Log("Step 2: Create catalog as admin")
	w = ts.request(t, "POST", "/api/v1/auth/register", "", map[string]string{
		"email":      "admin@example.com",
		"password":   "password123",
		"first_name": "Admin",
		"last_name":  "User",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	require.NoError(t, ts.DB.Model(&model.User{}).
		Where("email = ?", "admin@example.com").
		Update("role", model.RoleAdmin).Error)

	w = ts.request(t, "POST", "/api/v1/auth/login", "", map[string]string{
		"email":    "admin@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	adminToken := decodeBody(t, w)["tokens"].(map[string]interface{})["access_token"].(string)

	w = ts.request(t, "POST", "/api/v1/products", adminToken, map[string]interface{}{
		"name":  "Mechanical Keyboard",
		"price": 120.00,
		"stock": 50,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	productID := uint(decodeBody(t, w)["product"].(map[string]interface{})["id"].(float64))

	// a shopper may not create products
	w = ts.request(t, "POST", "/api/v1/products", userToken, map[string]interface{}{
		"name":  "Forbidden",
		"price": 1.00,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 3. Guest sees an empty cart without authentication
	t.Log("Step 3: Guest cart view")
	w = ts.request(t, "GET", "/api/v1/cart", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	guestCart := decodeBody(t, w)["cart"].(map[string]interface{})
	assert.Nil(t, guestCart["id"])
	assert.Equal(t, float64(0), guestCart["total_price"])

	// 4. Shopper fills the cart
	t.Log("Step 4: Add items to cart")
	itemPath := fmt.Sprintf("/api/v1/cart/items/%d", productID)

	w = ts.request(t, "POST", "/api/v1/cart/items", userToken, map[string]interface{}{
		"product_id": productID,
		"quantity":   2,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// duplicate add merges into the same line
	w = ts.request(t, "POST", "/api/v1/cart/items", userToken, map[string]interface{}{
		"product_id": productID,
		"quantity":   1,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	mergedItem := decodeBody(t, w)["item"].(map[string]interface{})
	assert.Equal(t, float64(3), mergedItem["quantity"])
	assert.Equal(t, float64(360), mergedItem["total_price"])

	// 5. Admin reprices the product; the next cart read reconciles
	t.Log("Step 5: Price reconciliation")
	w = ts.request(t, "PUT", fmt.Sprintf("/api/v1/products/%d", productID), adminToken, map[string]interface{}{
		"name":  "Mechanical Keyboard",
		"price": 100.00,
		"stock": 50,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.request(t, "GET", "/api/v1/cart", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cart := decodeBody(t, w)["cart"].(map[string]interface{})
	assert.Equal(t, float64(300), cart["total_price"])
	items := cart["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, float64(100), items[0].(map[string]interface{})["unit_price"])

	// 6. Update quantity and remove
	t.Log("Step 6: Update and remove")
	w = ts.request(t, "PUT", itemPath, userToken, map[string]interface{}{
		"quantity": 1,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.request(t, "DELETE", itemPath, userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.request(t, "GET", "/api/v1/cart", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cart = decodeBody(t, w)["cart"].(map[string]interface{})
	assert.Equal(t, float64(0), cart["total_price"])
	assert.Empty(t, cart["items"])

	// 7. Profile endpoint still works with the original token
	t.Log("Step 7: Fetch profile")
	w = ts.request(t, "GET", "/api/v1/auth/me", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "buyer@example.com")
}
