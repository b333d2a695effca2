package repository

import (
	"errors"

	"github.com/ardagonca/ecommerce-backend/internal/app/model"
	"github.com/ardagonca/ecommerce-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrVersionConflict is returned when a guarded save loses against a
// concurrent writer. Callers may retry the whole operation.
var ErrVersionConflict = errors.New("cart was modified concurrently")

// CartRepository is the cart store. A cart and its lines always persist
// together: Save runs inside the caller's transaction and either applies
// the whole aggregate or nothing.
type CartRepository interface {
	FindByUser(userID uint) (*model.Cart, error)
	Save(cart *model.Cart) error
	CreateIfAbsent(userID uint) (created bool, err error)
	DeleteItem(item *model.CartItem) error
	WithTx(tx *gorm.DB) CartRepository
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *cartRepository) WithTx(tx *gorm.DB) CartRepository {
	return &cartRepository{db: tx}
}

func (r *cartRepository) FindByUser(userID uint) (*model.Cart, error) {
	var cart model.Cart
	err := r.db.Where("user_id = ?", userID).
		Preload("Items.Product").
		First(&cart).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find cart by user in database", err, map[string]interface{}{
				"user_id": userID,
			})
		}
		return nil, err
	}
	return &cart, nil
}

// CreateIfAbsent inserts an empty cart for the user unless one exists.
// The unique index on user_id makes the insert conditional, so when two
// first-time requests race, exactly one row wins.
func (r *cartRepository) CreateIfAbsent(userID uint) (bool, error) {
	cart := model.Cart{UserID: userID, TotalPrice: 0, Version: 1}
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&cart)
	if result.Error != nil {
		logger.Error("Failed to create cart in database", result.Error, map[string]interface{}{
			"user_id": userID,
		})
		return false, result.Error
	}

	created := result.RowsAffected > 0
	if created {
		logger.Debug("Cart created in database", map[string]interface{}{
			"cart_id": cart.ID,
			"user_id": userID,
		})
	}
	return created, nil
}

// Save persists the cart row and every line in it. The cart row update is
// guarded by the version counter: if another writer bumped the version
// since this cart was loaded, nothing is written and ErrVersionConflict
// is returned.
func (r *cartRepository) Save(cart *model.Cart) error {
	result := r.db.Model(&model.Cart{}).
		Where("id = ? AND version = ?", cart.ID, cart.Version).
		Updates(map[string]interface{}{
			"total_price": cart.TotalPrice,
			"version":     cart.Version + 1,
		})
	if result.Error != nil {
		logger.Error("Failed to save cart in database", result.Error, map[string]interface{}{
			"cart_id": cart.ID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		logger.Warn("Cart version conflict on save", map[string]interface{}{
			"cart_id": cart.ID,
			"version": cart.Version,
		})
		return ErrVersionConflict
	}
	cart.Version++

	for i := range cart.Items {
		item := &cart.Items[i]
		item.CartID = cart.ID
		if err := r.db.Omit("Product").Save(item).Error; err != nil {
			logger.Error("Failed to save cart item in database", err, map[string]interface{}{
				"cart_id":    cart.ID,
				"product_id": item.ProductID,
			})
			return err
		}
	}
	return nil
}

func (r *cartRepository) DeleteItem(item *model.CartItem) error {
	logger.Debug("Deleting cart item from database", map[string]interface{}{
		"cart_item_id": item.ID,
		"cart_id":      item.CartID,
	})

	if err := r.db.Delete(&model.CartItem{}, item.ID).Error; err != nil {
		logger.Error("Failed to delete cart item from database", err, map[string]interface{}{
			"cart_item_id": item.ID,
		})
		return err
	}
	return nil
}
