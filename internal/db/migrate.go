package db

import (
	"github.com/ardagonca/ecommerce-backend/internal/app/model"
	"github.com/ardagonca/ecommerce-backend/pkg/logger"
	"github.com/ardagonca/ecommerce-backend/pkg/util"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.User{},
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed creates the default admin account when none exists
func Seed() error {
	logger.Info("Seeding initial data...")

	var count int64
	if err := DB.Model(&model.User{}).Where("email = ?", "admin@example.com").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Admin account already exists, skipping...")
		return nil
	}

	hash, err := util.HashPassword("admin123")
	if err != nil {
		logger.Error("Failed to hash admin password", err)
		return err
	}

	admin := &model.User{
		Email:        "admin@example.com",
		PasswordHash: hash,
		FirstName:    "Admin",
		LastName:     "User",
		Role:         model.RoleAdmin,
	}
	if err := DB.Create(admin).Error; err != nil {
		logger.Error("Failed to create admin account", err)
		return err
	}

	logger.Info("Admin account created", map[string]interface{}{
		"email": admin.Email,
	})
	return nil
}
