package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkaratas/account-service/internal/db"
	"github.com/bkaratas/account-service/internal/models"
	repo "github.com/bkaratas/account-service/internal/repository"
)

// Integration tests run only against a real database:
//
//	TEST_DATABASE_URL=postgres://... go test ./internal/repository/postgres/
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := db.NewPool(ctx, url)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(ctx, pool))
	t.Cleanup(pool.Close)
	return pool
}

func seedUser(t *testing.T, repos Repositories, prefix string) models.User {
	t.Helper()
	email := prefix + "-" + uuid.NewString() + "@mail.mail"
	u, err := repos.Users.Create(context.Background(), email, "hash", models.RoleUser)
	require.NoError(t, err)
	return u
}

func TestAccountsRepoCAS(t *testing.T) {
	pool := testPool(t)
	repos := NewRepositories(pool)
	ctx := context.Background()

	owner := seedUser(t, repos, "cas")
	a, err := repos.Accounts.Create(ctx, models.NewAccount(owner.ID))
	require.NoError(t, err)
	assert.EqualValues(t, 0, a.Version)

	n, err := repos.Accounts.ApplyDelta(ctx, a.ID, 0, decimal.NewFromInt(42))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	// stale fence
	n, err = repos.Accounts.ApplyDelta(ctx, a.ID, 0, decimal.NewFromInt(42))
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	got, err := repos.Accounts.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(42)))
	assert.EqualValues(t, 1, got.Version)
}

func TestAccountsRepoTxRollback(t *testing.T) {
	pool := testPool(t)
	repos := NewRepositories(pool)
	ctx := context.Background()

	owner := seedUser(t, repos, "tx")
	a, err := repos.Accounts.Create(ctx, models.NewAccount(owner.ID))
	require.NoError(t, err)

	boom := errors.New("boom")
	err = repos.Accounts.WithTx(ctx, func(tx repo.Accounts) error {
		n, err := tx.ApplyDelta(ctx, a.ID, a.Version, decimal.NewFromInt(10))
		require.NoError(t, err)
		require.EqualValues(t, 1, n)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := repos.Accounts.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero(), "rolled-back write must not be visible")
	assert.EqualValues(t, a.Version, got.Version)
}

func TestAccountsRepoOwnerScope(t *testing.T) {
	pool := testPool(t)
	repos := NewRepositories(pool)
	ctx := context.Background()

	owner := seedUser(t, repos, "scope")
	a, err := repos.Accounts.Create(ctx, models.NewAccount(owner.ID))
	require.NoError(t, err)

	_, err = repos.Accounts.GetForOwner(ctx, a.ID, owner.ID)
	assert.NoError(t, err)

	_, err = repos.Accounts.GetForOwner(ctx, a.ID, "someone-else")
	assert.ErrorIs(t, err, repo.ErrNoRows)
}
