package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sinuca-magalhaes/caixa/internal/domain"
)

func TestTransactionService_Create(t *testing.T) {
	repo := NewMockTransactionRepository()
	svc := NewTransactionService(repo, nil, zerolog.Nop())
	alice := &domain.User{ID: 1, Username: "alice"}

	tx, err := svc.Create(context.Background(), alice, CreateTransactionInput{
		Type:        "Entrada",
		Category:    "Locação",
		Description: "mesa 3",
		Amount:      decimal.RequireFromString("50.005"),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), tx.ID)
	assert.Equal(t, domain.TransactionIncome, tx.Type)
	assert.Equal(t, "50.01", tx.Amount.StringFixed(2))
	assert.Equal(t, "alice", tx.Responsible)
	assert.Equal(t, alice.ID, tx.OwnerID)
	assert.WithinDuration(t, time.Now(), tx.CreatedAt, time.Minute)
}

func TestTransactionService_Create_KeepsResponsible(t *testing.T) {
	svc := NewTransactionService(NewMockTransactionRepository(), nil, zerolog.Nop())
	alice := &domain.User{ID: 1, Username: "alice"}

	tx, err := svc.Create(context.Background(), alice, CreateTransactionInput{
		Type:        "Expense",
		Amount:      decimal.NewFromInt(30),
		Responsible: "Carlos",
	})
	require.NoError(t, err)
	assert.Equal(t, "Carlos", tx.Responsible)
}

func TestTransactionService_Create_Validation(t *testing.T) {
	repo := NewMockTransactionRepository()
	svc := NewTransactionService(repo, nil, zerolog.Nop())
	alice := &domain.User{ID: 1, Username: "alice"}

	_, err := svc.Create(context.Background(), alice, CreateTransactionInput{Type: "Transfer", Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidTransactionType)

	_, err = svc.Create(context.Background(), alice, CreateTransactionInput{Type: "Income", Amount: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	assert.Empty(t, repo.txs)
}

func TestTransactionService_ListIsScopedToOwner(t *testing.T) {
	repo := NewMockTransactionRepository()
	svc := NewTransactionService(repo, nil, zerolog.Nop())
	ctx := context.Background()
	alice := &domain.User{ID: 1, Username: "alice"}
	bob := &domain.User{ID: 2, Username: "bob"}

	_, err := svc.Create(ctx, alice, CreateTransactionInput{Type: "Income", Amount: decimal.NewFromInt(50)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, bob, CreateTransactionInput{Type: "Expense", Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)

	txs, err := svc.List(ctx, alice, domain.Period{})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, alice.ID, txs[0].OwnerID)

	txs, err = svc.List(ctx, bob, domain.Period{})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, bob.ID, txs[0].OwnerID)
}

func TestTransactionService_List_RepositoryFailure(t *testing.T) {
	repo := NewMockTransactionRepository()
	repo.listErr = errors.New("boom")
	svc := NewTransactionService(repo, nil, zerolog.Nop())

	_, err := svc.List(context.Background(), &domain.User{ID: 1}, domain.Period{})
	assert.ErrorIs(t, err, ErrInternalError)
}

func TestTransactionService_Delete(t *testing.T) {
	repo := NewMockTransactionRepository()
	svc := NewTransactionService(repo, nil, zerolog.Nop())
	ctx := context.Background()
	alice := &domain.User{ID: 1, Username: "alice"}
	bob := &domain.User{ID: 2, Username: "bob"}

	tx, err := svc.Create(ctx, alice, CreateTransactionInput{Type: "Income", Amount: decimal.NewFromInt(50)})
	require.NoError(t, err)

	// Someone else's row looks exactly like a missing one.
	assert.ErrorIs(t, svc.Delete(ctx, bob, tx.ID), domain.ErrTransactionNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, alice, 999), domain.ErrTransactionNotFound)

	require.NoError(t, svc.Delete(ctx, alice, tx.ID))
	assert.ErrorIs(t, svc.Delete(ctx, alice, tx.ID), domain.ErrTransactionNotFound)
}
