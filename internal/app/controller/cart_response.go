package controller

import "github.com/ardagonca/ecommerce-backend/internal/app/model"

// CartResponse is the client-facing cart view.
type CartResponse struct {
	ID         *uint              `json:"id"`
	Items      []CartItemResponse `json:"items"`
	TotalPrice float64            `json:"total_price"`
}

type CartItemResponse struct {
	ID          uint    `json:"id"`
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	ImageURL    string  `json:"image_url,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
}

// NewCartResponse maps a cart to its response form. A nil cart (guest
// caller) maps to an empty view with a null ID.
func NewCartResponse(cart *model.Cart) CartResponse {
	if cart == nil {
		return CartResponse{
			Items:      []CartItemResponse{},
			TotalPrice: 0,
		}
	}

	items := make([]CartItemResponse, 0, len(cart.Items))
	for _, line := range cart.Items {
		items = append(items, CartItemResponse{
			ID:          line.ID,
			ProductID:   line.ProductID,
			ProductName: line.Product.Name,
			ImageURL:    line.Product.ImageURL,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			TotalPrice:  line.TotalPrice,
		})
	}

	id := cart.ID
	return CartResponse{
		ID:         &id,
		Items:      items,
		TotalPrice: cart.TotalPrice,
	}
}

// NewCartItemResponse maps a single cart line.
func NewCartItemResponse(item *model.CartItem) CartItemResponse {
	return CartItemResponse{
		ID:          item.ID,
		ProductID:   item.ProductID,
		ProductName: item.Product.Name,
		ImageURL:    item.Product.ImageURL,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		TotalPrice:  item.TotalPrice,
	}
}
