package repository

import (
	"testing"

	"github.com/ardagonca/ecommerce-backend/internal/app/model"
	"github.com/ardagonca/ecommerce-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupProductRepo(t *testing.T) ProductRepository {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	return NewProductRepository(testDB)
}

func TestProductRepository_CreateAndFind(t *testing.T) {
	repo := setupProductRepo(t)

	product := &model.Product{Name: "Webcam", Price: 45.00, Stock: 3}
	require.NoError(t, repo.Create(product))
	assert.NotZero(t, product.ID)

	found, err := repo.FindByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Webcam", found.Name)

	_, err = repo.FindByID(99999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProductRepository_FindAll(t *testing.T) {
	repo := setupProductRepo(t)

	for _, name := range []string{"First", "Second"} {
		require.NoError(t, repo.Create(&model.Product{Name: name, Price: 1}))
	}

	products, err := repo.FindAll()
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestProductRepository_Update(t *testing.T) {
	repo := setupProductRepo(t)

	product := &model.Product{Name: "Dock", Price: 120.00, Stock: 2}
	require.NoError(t, repo.Create(product))

	product.Price = 99.00
	require.NoError(t, repo.Update(product))

	found, err := repo.FindByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 99.00, found.Price)
}

func TestProductRepository_Delete(t *testing.T) {
	repo := setupProductRepo(t)

	product := &model.Product{Name: "Adapter", Price: 9.00}
	require.NoError(t, repo.Create(product))

	require.NoError(t, repo.Delete(product.ID))

	_, err := repo.FindByID(product.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProductRepository_BulkCreate(t *testing.T) {
	repo := setupProductRepo(t)

	batch := make([]model.Product, 0, 25)
	for i := 0; i < 25; i++ {
		batch = append(batch, model.Product{
			Name:  "Bulk item",
			Price: float64(i) + 0.5,
			Stock: i,
		})
	}
	require.NoError(t, repo.BulkCreate(batch, 10))

	products, err := repo.FindAll()
	require.NoError(t, err)
	assert.Len(t, products, 25)
}

func TestProductRepository_WithTx(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	repo := NewProductRepository(testDB)

	product := &model.Product{Name: "Tripod", Price: 30.00, Stock: 4}
	require.NoError(t, repo.Create(product))

	err = testDB.Transaction(func(tx *gorm.DB) error {
		found, err := repo.WithTx(tx).FindByID(product.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, "Tripod", found.Name)
		return nil
	})
	require.NoError(t, err)
}
