package repository

import (
	"testing"

	"github.com/ardagonca/ecommerce-backend/internal/app/model"
	"github.com/ardagonca/ecommerce-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupUserRepo(t *testing.T) UserRepository {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	return NewUserRepository(testDB)
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := setupUserRepo(t)

	user := &model.User{
		Email:        "user@example.com",
		PasswordHash: "hashed",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Role:         model.RoleUser,
	}
	require.NoError(t, repo.Create(user))
	assert.NotZero(t, user.ID)

	byID, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", byID.Email)

	byEmail, err := repo.FindByEmail("user@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = repo.FindByEmail("missing@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_ExistsByEmail(t *testing.T) {
	repo := setupUserRepo(t)

	require.NoError(t, repo.Create(&model.User{
		Email:        "exists@example.com",
		PasswordHash: "hashed",
		Role:         model.RoleUser,
	}))

	exists, err := repo.ExistsByEmail("exists@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail("absent@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepository_Update(t *testing.T) {
	repo := setupUserRepo(t)

	user := &model.User{
		Email:        "update@example.com",
		PasswordHash: "hashed",
		FirstName:    "Ada",
		Role:         model.RoleUser,
	}
	require.NoError(t, repo.Create(user))

	user.FirstName = "Grace"
	require.NoError(t, repo.Update(user))

	reloaded, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grace", reloaded.FirstName)
}
