package service

import (
	"errors"

	"github.com/ardagonca/ecommerce-backend/internal/app/model"
	"github.com/ardagonca/ecommerce-backend/internal/app/repository"
	"github.com/ardagonca/ecommerce-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCartItemNotFound       = errors.New("cart item not found")
	ErrInvalidQuantity        = errors.New("quantity must be greater than zero")
	ErrConcurrentModification = errors.New("cart was modified concurrently")
)

// CartService keeps a user's cart consistent with the product catalog:
// one line per product, line totals always unit price times quantity, cart
// total always the sum of line totals, and stored unit prices reconciled
// against the live catalog on every read.
//
// Every operation runs in one transaction: it either fully applies and
// persists the new cart state or leaves the stored state untouched.
type CartService interface {
	GetOrCreateCart(userID uint) (*model.Cart, error)
	GetCart(userID uint) (*model.Cart, error)
	AddItem(userID, productID uint, quantity int) (*model.CartItem, error)
	UpdateQuantity(userID, productID uint, quantity int) (*model.CartItem, error)
	RemoveItem(userID, productID uint) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	db          *gorm.DB
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, db *gorm.DB) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		db:          db,
	}
}

// getOrCreate loads the user's cart inside tx, lazily creating it on first
// access. Creation is insert-if-absent on the unique user index: when two
// first requests race, one insert wins and the other re-reads the winner's
// row.
func (s *cartService) getOrCreate(tx *gorm.DB, userID uint) (*model.Cart, error) {
	repo := s.cartRepo.WithTx(tx)

	cart, err := repo.FindByUser(userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	logger.Debug("Creating cart for user", map[string]interface{}{
		"user_id": userID,
	})
	if _, err := repo.CreateIfAbsent(userID); err != nil {
		return nil, err
	}

	cart, err = repo.FindByUser(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The conditional insert lost and the winner's row is not yet
			// visible to this transaction.
			return nil, ErrConcurrentModification
		}
		return nil, err
	}
	return cart, nil
}

func (s *cartService) GetOrCreateCart(userID uint) (*model.Cart, error) {
	var cart *model.Cart
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		cart, err = s.getOrCreate(tx, userID)
		return err
	})
	if err != nil {
		logger.Error("Failed to get or create cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return cart, nil
}

func (s *cartService) AddItem(userID, productID uint, quantity int) (*model.CartItem, error) {
	logger.Info("Adding item to cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	})

	if quantity <= 0 {
		logger.Warn("Cannot add to cart: invalid quantity", map[string]interface{}{
			"user_id":  userID,
			"quantity": quantity,
		})
		return nil, ErrInvalidQuantity
	}

	var line *model.CartItem
	err := s.db.Transaction(func(tx *gorm.DB) error {
		cart, err := s.getOrCreate(tx, userID)
		if err != nil {
			return err
		}

		product, err := s.findProduct(tx, productID)
		if err != nil {
			return err
		}

		if existing := cart.FindItem(productID); existing != nil {
			logger.Debug("Merging into existing cart line", map[string]interface{}{
				"cart_item_id": existing.ID,
				"old_qty":      existing.Quantity,
				"added_qty":    quantity,
			})
			existing.Quantity += quantity
			existing.RefreshPrices(product.Price)
			line = existing
		} else {
			cart.Items = append(cart.Items, model.CartItem{
				CartID:    cart.ID,
				ProductID: productID,
				Quantity:  quantity,
				Product:   *product,
			})
			newLine := &cart.Items[len(cart.Items)-1]
			newLine.RefreshPrices(product.Price)
			line = newLine
		}

		cart.RecalculateTotal()
		return s.save(tx, cart)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Cart item added successfully", map[string]interface{}{
		"cart_item_id": line.ID,
		"quantity":     line.Quantity,
	})
	return line, nil
}

func (s *cartService) UpdateQuantity(userID, productID uint, quantity int) (*model.CartItem, error) {
	logger.Info("Updating cart line quantity", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	})

	if quantity <= 0 {
		logger.Warn("Cannot update cart line: invalid quantity", map[string]interface{}{
			"user_id":  userID,
			"quantity": quantity,
		})
		return nil, ErrInvalidQuantity
	}

	var line *model.CartItem
	err := s.db.Transaction(func(tx *gorm.DB) error {
		cart, err := s.getOrCreate(tx, userID)
		if err != nil {
			return err
		}

		product, err := s.findProduct(tx, productID)
		if err != nil {
			return err
		}

		line = cart.FindItem(productID)
		if line == nil {
			logger.Warn("Cart line not found for quantity update", map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
			return ErrCartItemNotFound
		}

		line.Quantity = quantity
		line.RefreshPrices(product.Price)
		cart.RecalculateTotal()
		return s.save(tx, cart)
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

func (s *cartService) RemoveItem(userID, productID uint) error {
	logger.Info("Removing item from cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})

	return s.db.Transaction(func(tx *gorm.DB) error {
		cart, err := s.getOrCreate(tx, userID)
		if err != nil {
			return err
		}

		if _, err := s.findProduct(tx, productID); err != nil {
			return err
		}

		line := cart.FindItem(productID)
		if line == nil {
			logger.Warn("Cart line not found for removal", map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
			return ErrCartItemNotFound
		}

		repo := s.cartRepo.WithTx(tx)
		if err := repo.DeleteItem(line); err != nil {
			return err
		}

		// drop the line from the aggregate before recomputing
		items := cart.Items[:0]
		for i := range cart.Items {
			if cart.Items[i].ProductID != productID {
				items = append(items, cart.Items[i])
			}
		}
		cart.Items = items

		cart.RecalculateTotal()
		return s.save(tx, cart)
	})
}

// GetCart returns the user's cart after a reconciliation pass: every line
// whose stored unit price differs from the product's current catalog price
// is refreshed, and the cart is re-persisted once if anything changed.
// This is a read path with a deliberate write-back; stale prices shown to
// the user are treated as a correctness defect.
func (s *cartService) GetCart(userID uint) (*model.Cart, error) {
	logger.Debug("Fetching user cart", map[string]interface{}{
		"user_id": userID,
	})

	var cart *model.Cart
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		cart, err = s.getOrCreate(tx, userID)
		if err != nil {
			return err
		}

		priceChanged := false
		for i := range cart.Items {
			line := &cart.Items[i]
			// lines whose product left the catalog keep their last price
			if line.Product.ID == 0 {
				continue
			}
			if line.UnitPrice != line.Product.Price {
				logger.Debug("Reconciling cart line price", map[string]interface{}{
					"cart_item_id": line.ID,
					"product_id":   line.ProductID,
					"old_price":    line.UnitPrice,
					"new_price":    line.Product.Price,
				})
				line.RefreshPrices(line.Product.Price)
				priceChanged = true
			}
		}

		if priceChanged {
			cart.RecalculateTotal()
			if err := s.save(tx, cart); err != nil {
				return err
			}
			logger.Info("Cart prices reconciled", map[string]interface{}{
				"cart_id":     cart.ID,
				"total_price": cart.TotalPrice,
			})
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to fetch cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return cart, nil
}

func (s *cartService) findProduct(tx *gorm.DB, productID uint) (*model.Product, error) {
	product, err := s.productRepo.WithTx(tx).FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found for cart operation", map[string]interface{}{
				"product_id": productID,
			})
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product for cart operation", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return product, nil
}

func (s *cartService) save(tx *gorm.DB, cart *model.Cart) error {
	if err := s.cartRepo.WithTx(tx).Save(cart); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return ErrConcurrentModification
		}
		return err
	}
	return nil
}
