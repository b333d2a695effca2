package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ardagonca/ecommerce-backend/internal/app/service"
	apperrors "github.com/ardagonca/ecommerce-backend/internal/errors"
	"github.com/ardagonca/ecommerce-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

// Quantity is bound without "required" so that zero reaches the
// service and fails its quantity check like any other non-positive
// value.
type AddItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart returns the caller's cart. Guests get an empty cart view
// without touching the database.
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, authenticated := middleware.GetUserID(c)
	if !authenticated {
		c.JSON(http.StatusOK, gin.H{
			"cart": NewCartResponse(nil),
		})
		return
	}

	cart, err := ctrl.cartService.GetCart(userID)
	if err != nil {
		log.Error("Failed to get cart", err, map[string]interface{}{
			"user_id": userID,
		})
		ctrl.respondCartError(c, err, "get cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cart": NewCartResponse(cart),
	})
}

// AddItem adds a product to the cart, merging with an existing line
// for the same product.
// POST /api/v1/cart/items
func (ctrl *CartController) AddItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add item request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid cart item data")
		return
	}

	item, err := ctrl.cartService.AddItem(userID, req.ProductID, req.Quantity)
	if err != nil {
		log.Warn("Failed to add cart item", map[string]interface{}{
			"user_id":    userID,
			"product_id": req.ProductID,
			"error":      err.Error(),
		})
		ctrl.respondCartError(c, err, "add cart item")
		return
	}

	log.Info("Cart item added", map[string]interface{}{
		"user_id":    userID,
		"product_id": req.ProductID,
		"quantity":   item.Quantity,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Item added to cart",
		"item":    NewCartItemResponse(item),
	})
}

// UpdateQuantity replaces a line's quantity.
// PUT /api/v1/cart/items/:product_id
func (ctrl *CartController) UpdateQuantity(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	productID, ok := parseCartProductID(c)
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update quantity request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid quantity data")
		return
	}

	item, err := ctrl.cartService.UpdateQuantity(userID, productID, req.Quantity)
	if err != nil {
		log.Warn("Failed to update cart item quantity", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
			"error":      err.Error(),
		})
		ctrl.respondCartError(c, err, "update cart item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated",
		"item":    NewCartItemResponse(item),
	})
}

// RemoveItem removes a product's line from the cart.
// DELETE /api/v1/cart/items/:product_id
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	productID, ok := parseCartProductID(c)
	if !ok {
		return
	}

	if err := ctrl.cartService.RemoveItem(userID, productID); err != nil {
		log.Warn("Failed to remove cart item", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
			"error":      err.Error(),
		})
		ctrl.respondCartError(c, err, "remove cart item")
		return
	}

	log.Info("Cart item removed", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart",
	})
}

func parseCartProductID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("product_id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid product ID")
		return 0, false
	}
	return uint(id), true
}

func (ctrl *CartController) respondCartError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, service.ErrInvalidQuantity):
		apperrors.BadRequest(c, apperrors.CartInvalidQuantity, "Quantity must be greater than zero")
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
	case errors.Is(err, service.ErrCartItemNotFound):
		apperrors.NotFound(c, apperrors.CartItemNotFound, "Item is not in the cart")
	case errors.Is(err, service.ErrConcurrentModification):
		apperrors.Conflict(c, apperrors.CartConcurrentConflict, "Cart was modified concurrently, please retry")
	default:
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, context)
	}
}
