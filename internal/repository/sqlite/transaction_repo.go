package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sinuca-magalhaes/caixa/internal/domain"
	"github.com/sinuca-magalhaes/caixa/internal/repository"
)

// transactionRepository implements repository.TransactionRepository for SQLite.
type transactionRepository struct {
	db *DB
}

// NewTransactionRepository creates a new SQLite transaction repository.
func NewTransactionRepository(db *DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

const transactionColumns = `id, type, category, description, amount, responsible, created_at, owner_id`

// Create creates a new transaction.
func (r *transactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	query := `
		INSERT INTO transactions (type, category, description, amount, responsible, created_at, owner_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	var result sql.Result
	err := repository.RetryOnce(ctx, isTransient, func() error {
		var err error
		result, err = r.db.ExecContext(ctx, query,
			string(t.Type),
			t.Category,
			t.Description,
			t.Amount.StringFixed(domain.AmountScale),
			t.Responsible,
			formatTime(t.CreatedAt),
			t.OwnerID,
		)
		return err
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.NewDomainError(domain.ErrInvalidOwner, "owner does not exist", fmt.Sprint(t.OwnerID))
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	t.ID = id

	return nil
}

// List returns the owner's transactions inside the filter's period.
// The upper bound is exclusive midnight after the last day, so the whole
// last day is included.
func (r *transactionRepository) List(ctx context.Context, ownerID int64, filter repository.TransactionFilter) ([]*domain.Transaction, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + transactionColumns + ` FROM transactions WHERE owner_id = ?`)
	args := []interface{}{ownerID}

	if start, ok := filter.Period.Start(); ok {
		sb.WriteString(` AND created_at >= ?`)
		args = append(args, formatTime(start))
	}
	if end, ok := filter.Period.End(); ok {
		sb.WriteString(` AND created_at < ?`)
		args = append(args, formatTime(end))
	}

	sb.WriteString(` ORDER BY created_at ASC, id ASC`)
	if filter.Limit > 0 {
		sb.WriteString(` LIMIT ?`)
		args = append(args, filter.Limit)
	}

	var txs []*domain.Transaction
	err := repository.RetryOnce(ctx, isTransient, func() error {
		var err error
		txs, err = r.query(ctx, sb.String(), args...)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return txs, nil
}

func (r *transactionRepository) query(ctx context.Context, query string, args ...interface{}) ([]*domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txs := make([]*domain.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return txs, nil
}

// Delete deletes one of the owner's transactions.
// Lookup, owner check and delete run in a single database transaction.
func (r *transactionRepository) Delete(ctx context.Context, ownerID, id int64) error {
	return repository.RetryOnce(ctx, isTransient, func() error {
		return r.db.WithTx(ctx, func(tx *sql.Tx) error {
			var rowOwner int64
			err := tx.QueryRowContext(ctx,
				`SELECT owner_id FROM transactions WHERE id = ? AND owner_id = ?`,
				id, ownerID,
			).Scan(&rowOwner)
			if err != nil {
				if isNoRows(err) {
					return domain.ErrTransactionNotFound
				}
				return fmt.Errorf("failed to look up transaction: %w", err)
			}

			if rowOwner != ownerID {
				return domain.ErrForbidden
			}

			result, err := tx.ExecContext(ctx,
				`DELETE FROM transactions WHERE id = ? AND owner_id = ?`,
				id, ownerID,
			)
			if err != nil {
				return fmt.Errorf("failed to delete transaction: %w", err)
			}

			if n, _ := result.RowsAffected(); n == 0 {
				return domain.ErrTransactionNotFound
			}
			return nil
		})
	})
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	var txType, amount, createdAt string

	err := row.Scan(
		&t.ID,
		&txType,
		&t.Category,
		&t.Description,
		&amount,
		&t.Responsible,
		&createdAt,
		&t.OwnerID,
	)
	if err != nil {
		return nil, err
	}

	t.Type = domain.TransactionType(txType)

	t.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}

	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}

	return t, nil
}

// Ensure transactionRepository implements repository.TransactionRepository.
var _ repository.TransactionRepository = (*transactionRepository)(nil)
