package model

import (
	"time"
)

// Cart holds one user's shopping cart. There is at most one cart per user;
// it is created lazily on first access. TotalPrice is derived state and is
// recomputed from the items before every persist, never adjusted in place.
type Cart struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	UserID     uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	Items      []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	TotalPrice float64    `gorm:"not null;default:0" json:"total_price"`
	Version    uint       `gorm:"not null;default:1" json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (Cart) TableName() string {
	return "carts"
}

// RecalculateTotal recomputes the cart total as the fresh sum of line
// totals. Summing from scratch avoids drift across repeated mutations.
func (c *Cart) RecalculateTotal() {
	var total float64
	for i := range c.Items {
		total += c.Items[i].TotalPrice
	}
	c.TotalPrice = total
}

// FindItem returns the line for a product, or nil if the cart has none.
// A cart holds at most one line per product.
func (c *Cart) FindItem(productID uint) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// CartItem is one (product, quantity) line owned exclusively by its cart.
// Lines are deleted together with the cart and never shared across carts.
// UnitPrice snapshots the catalog price as of the last reconciliation.
type CartItem struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	CartID     uint      `gorm:"not null;uniqueIndex:idx_cart_product" json:"cart_id"`
	ProductID  uint      `gorm:"not null;uniqueIndex:idx_cart_product" json:"product_id"`
	Quantity   int       `gorm:"not null;default:1" json:"quantity"`
	UnitPrice  float64   `gorm:"not null" json:"unit_price"`
	TotalPrice float64   `gorm:"not null" json:"total_price"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// RefreshPrices sets the line's unit price and recomputes the line total
// from scratch (unit price times quantity).
func (i *CartItem) RefreshPrices(unitPrice float64) {
	i.UnitPrice = unitPrice
	i.TotalPrice = unitPrice * float64(i.Quantity)
}
