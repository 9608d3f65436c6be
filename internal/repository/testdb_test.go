package repository

import (
	"context"
	"testing"
	"time"

	"kart-pricing/internal/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL testcontainer with the service schema
// applied and returns a connection pool.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, database.Migrate(ctx, pool, zerolog.Nop()))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

func exec(t *testing.T, pool *pgxpool.Pool, query string, args ...any) {
	t.Helper()
	_, err := pool.Exec(context.Background(), query, args...)
	require.NoError(t, err)
}

func seedProduct(t *testing.T, pool *pgxpool.Pool, name string, digital bool, limit *int, createdAt time.Time) uuid.UUID {
	t.Helper()
	id := uuid.New()
	exec(t, pool, `
		INSERT INTO products (id, name, shipping_digital, purchase_limit_per_user, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, id, name, digital, limit, createdAt)
	return id
}

func seedItem(t *testing.T, pool *pgxpool.Pool, name string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	exec(t, pool, `INSERT INTO items (id, name) VALUES ($1, $2)`, id, name)
	return id
}

func seedOrder(t *testing.T, pool *pgxpool.Pool, userID *uuid.UUID, paid, cancelled bool) uuid.UUID {
	t.Helper()
	id := uuid.New()
	exec(t, pool, `INSERT INTO orders (id, user_id, paid, cancelled) VALUES ($1, $2, $3, $4)`, id, userID, paid, cancelled)
	return id
}
