package postgresql_test

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/eleave-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_GetByEmail(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewUserRepository(db)

	employeeID := insertEmployee(t, ctx, db, "Siti", `{}`)
	id := insertUser(t, ctx, db, "Siti@Example.com", "user", &employeeID)

	u, err := repo.GetByEmail(ctx, "siti@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, user.RoleUser, u.Role)
	require.NotNil(t, u.EmployeeID)
	assert.Equal(t, employeeID, *u.EmployeeID)
	assert.NotEmpty(t, u.PasswordHash)

	byID, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, u.Email, byID.Email)
}

func TestUserRepository_NotFound(t *testing.T) {
	db := newTestDB(t)
	repo := postgresql.NewUserRepository(db)

	_, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestUserRepository_AdminWithoutEmployee(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewUserRepository(db)

	insertUser(t, ctx, db, "admin@example.com", "admin", nil)

	u, err := repo.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())
	assert.Nil(t, u.EmployeeID)
}
