package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/cmlabs-hris/eleave-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// newTestDB connects to TEST_DATABASE_URL, applies migrations and empties every table.
// The test is skipped when the variable is not set.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping PostgreSQL integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{MaxConns: 5, MinConns: 1})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.Migrate(ctx))
	truncateAll(t, ctx, db)
	return db
}

func truncateAll(t *testing.T, ctx context.Context, db *database.DB) {
	t.Helper()

	tables := []string{
		"document_outbox",
		"leave_requests",
		"holidays",
		"users",
		"employees",
	}
	for _, table := range tables {
		_, err := db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "truncate %s", table)
	}
}

func insertEmployee(t *testing.T, ctx context.Context, db *database.DB, name string, leaveBalance string) string {
	t.Helper()

	id := uuid.Must(uuid.NewV7()).String()
	_, err := db.Exec(ctx, `
		INSERT INTO employees (id, nip, full_name, leave_balance)
		VALUES ($1, $2, $3, $4::jsonb)`,
		id, "NIP-"+id[len(id)-8:], name, leaveBalance)
	require.NoError(t, err)
	return id
}

func insertUser(t *testing.T, ctx context.Context, db *database.DB, email, role string, employeeID *string) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	id := uuid.Must(uuid.NewV7()).String()
	_, err = db.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, role, employee_id)
		VALUES ($1, $2, $3, $4, $5)`,
		id, email, string(hash), role, employeeID)
	require.NoError(t, err)
	return id
}
