package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/sinuca-magalhaes/caixa/internal/domain"
	"github.com/sinuca-magalhaes/caixa/internal/metrics"
	"github.com/sinuca-magalhaes/caixa/internal/repository"
)

// TransactionService handles ledger operations. Every call acts on behalf of
// one authenticated user and only ever touches that user's rows.
type TransactionService struct {
	txRepo  repository.TransactionRepository
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewTransactionService creates a new TransactionService. m may be nil.
func NewTransactionService(txRepo repository.TransactionRepository, m *metrics.Metrics, logger zerolog.Logger) *TransactionService {
	return &TransactionService{
		txRepo:  txRepo,
		metrics: m,
		logger:  logger.With().Str("service", "transaction").Logger(),
	}
}

// CreateTransactionInput contains the data for a new transaction.
type CreateTransactionInput struct {
	Type        string
	Category    string
	Description string
	Amount      decimal.Decimal

	// Responsible defaults to the owner's username when blank.
	Responsible string
}

// Create records a transaction owned by owner.
func (s *TransactionService) Create(ctx context.Context, owner *domain.User, input CreateTransactionInput) (*domain.Transaction, error) {
	txType, err := domain.ParseTransactionType(input.Type)
	if err != nil {
		return nil, err
	}

	responsible := input.Responsible
	if strings.TrimSpace(responsible) == "" {
		responsible = owner.Username
	}

	tx, err := domain.NewTransaction(owner.ID, txType, input.Category, input.Description, input.Amount, responsible)
	if err != nil {
		return nil, err
	}

	if err := s.txRepo.Create(ctx, tx); err != nil {
		if domain.IsValidationError(err) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("owner_id", owner.ID).Msg("failed to create transaction")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.metrics.RecordTransactionCreated(tx.Type.String())

	s.logger.Info().
		Int64("transaction_id", tx.ID).
		Int64("owner_id", tx.OwnerID).
		Str("type", tx.Type.String()).
		Str("amount", tx.Amount.StringFixed(domain.AmountScale)).
		Msg("transaction created")

	return tx, nil
}

// List returns the owner's transactions inside period, oldest first.
func (s *TransactionService) List(ctx context.Context, owner *domain.User, period domain.Period) ([]*domain.Transaction, error) {
	txs, err := s.txRepo.List(ctx, owner.ID, repository.TransactionFilter{Period: period})
	if err != nil {
		s.logger.Error().Err(err).Int64("owner_id", owner.ID).Msg("failed to list transactions")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return txs, nil
}

// Delete removes one of the owner's transactions. Someone else's transaction
// is reported as not found.
func (s *TransactionService) Delete(ctx context.Context, owner *domain.User, id int64) error {
	if err := s.txRepo.Delete(ctx, owner.ID, id); err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) || errors.Is(err, domain.ErrForbidden) {
			return err
		}
		s.logger.Error().Err(err).Int64("transaction_id", id).Msg("failed to delete transaction")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("transaction_id", id).
		Int64("owner_id", owner.ID).
		Msg("transaction deleted")

	return nil
}
