package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sinuca-magalhaes/caixa/internal/config"
	"github.com/sinuca-magalhaes/caixa/internal/domain"
	"github.com/sinuca-magalhaes/caixa/internal/repository"
)

// openTestDB connects to the database named by CAIXA_TEST_POSTGRES_DSN and
// starts from empty tables. The test is skipped when the variable is unset.
func openTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv("CAIXA_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("CAIXA_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	db, err := NewDB(ctx, config.DatabaseConfig{Driver: "postgres", URL: dsn}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate(ctx))
	_, err = db.Pool.Exec(ctx, `TRUNCATE transactions, users RESTART IDENTITY`)
	require.NoError(t, err)

	return db
}

func TestPostgresRepositories(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	txs := NewTransactionRepository(db)

	alice := domain.NewUser("alice", "hash")
	require.NoError(t, users.Create(ctx, alice))
	bob := domain.NewUser("bob", "hash")
	require.NoError(t, users.Create(ctx, bob))

	err := users.Create(ctx, domain.NewUser("alice", "other"))
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)

	got, err := users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	add := func(owner int64, amount string, at time.Time) *domain.Transaction {
		tx, err := domain.NewTransaction(owner, domain.TransactionIncome, "Locação", "Mesa", decimal.RequireFromString(amount), "alice")
		require.NoError(t, err)
		tx.CreatedAt = at
		require.NoError(t, txs.Create(ctx, tx))
		return tx
	}

	inside := add(alice.ID, "50.005", time.Date(2024, 1, 5, 23, 59, 59, 999999000, time.UTC))
	add(alice.ID, "10", time.Date(2024, 1, 6, 0, 0, 1, 0, time.UTC))
	foreign := add(bob.ID, "99", time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC))

	period, err := domain.ParsePeriod("2024-01-05", "2024-01-05")
	require.NoError(t, err)

	list, err := txs.List(ctx, alice.ID, repository.TransactionFilter{Period: period})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, inside.ID, list[0].ID)
	assert.Equal(t, "50.01", list[0].Amount.StringFixed(2))

	assert.ErrorIs(t, txs.Delete(ctx, alice.ID, foreign.ID), domain.ErrTransactionNotFound)
	require.NoError(t, txs.Delete(ctx, alice.ID, inside.ID))
	assert.ErrorIs(t, txs.Delete(ctx, alice.ID, inside.ID), domain.ErrTransactionNotFound)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(&pgconn.PgError{Code: codeSerializationFailure}))
	assert.True(t, isTransient(&pgconn.PgError{Code: codeDeadlockDetected}))
	assert.False(t, isTransient(&pgconn.PgError{Code: codeUniqueViolation}))
	assert.False(t, isTransient(nil))
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: codeUniqueViolation}))
	assert.True(t, isForeignKeyViolation(&pgconn.PgError{Code: codeForeignKeyViolation}))
}
