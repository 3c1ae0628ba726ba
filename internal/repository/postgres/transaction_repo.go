package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/sinuca-magalhaes/caixa/internal/domain"
	"github.com/sinuca-magalhaes/caixa/internal/repository"
)

// transactionRepository implements repository.TransactionRepository.
type transactionRepository struct {
	db *DB
}

// NewTransactionRepository creates a new PostgreSQL transaction repository.
func NewTransactionRepository(db *DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

// Create creates a new transaction.
// The amount travels as text and is cast to NUMERIC so no float is involved.
func (r *transactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	query := `
		INSERT INTO transactions (type, category, description, amount, responsible, created_at, owner_id)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)
		RETURNING id
	`

	err := repository.RetryOnce(ctx, isTransient, func() error {
		return r.db.Pool.QueryRow(ctx, query,
			string(t.Type),
			t.Category,
			t.Description,
			t.Amount.StringFixed(domain.AmountScale),
			t.Responsible,
			t.CreatedAt.UTC(),
			t.OwnerID,
		).Scan(&t.ID)
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.NewDomainError(domain.ErrInvalidOwner, "owner does not exist", fmt.Sprint(t.OwnerID))
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// List returns the owner's transactions inside the filter's period.
func (r *transactionRepository) List(ctx context.Context, ownerID int64, filter repository.TransactionFilter) ([]*domain.Transaction, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT id, type, category, description, amount::text, responsible, created_at, owner_id
		FROM transactions
		WHERE owner_id = $1`)
	args := []any{ownerID}

	if start, ok := filter.Period.Start(); ok {
		args = append(args, start)
		fmt.Fprintf(&sb, ` AND created_at >= $%d`, len(args))
	}
	if end, ok := filter.Period.End(); ok {
		args = append(args, end)
		fmt.Fprintf(&sb, ` AND created_at < $%d`, len(args))
	}

	sb.WriteString(` ORDER BY created_at ASC, id ASC`)
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&sb, ` LIMIT $%d`, len(args))
	}

	var txs []*domain.Transaction
	err := repository.RetryOnce(ctx, isTransient, func() error {
		rows, err := r.db.Pool.Query(ctx, sb.String(), args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		txs = make([]*domain.Transaction, 0)
		for rows.Next() {
			t, err := scanTransaction(rows)
			if err != nil {
				return fmt.Errorf("failed to scan transaction: %w", err)
			}
			txs = append(txs, t)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return txs, nil
}

// Delete deletes one of the owner's transactions inside a single database
// transaction. SELECT ... FOR UPDATE keeps a concurrent delete from racing
// between the lookup and the DELETE.
func (r *transactionRepository) Delete(ctx context.Context, ownerID, id int64) error {
	return repository.RetryOnce(ctx, isTransient, func() error {
		return r.db.WithTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
			var rowOwner int64
			err := tx.QueryRow(ctx,
				`SELECT owner_id FROM transactions WHERE id = $1 AND owner_id = $2 FOR UPDATE`,
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

			tag, err := tx.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND owner_id = $2`, id, ownerID)
			if err != nil {
				return fmt.Errorf("failed to delete transaction: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return domain.ErrTransactionNotFound
			}
			return nil
		})
	})
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	var txType, amount string

	err := row.Scan(
		&t.ID,
		&txType,
		&t.Category,
		&t.Description,
		&amount,
		&t.Responsible,
		&t.CreatedAt,
		&t.OwnerID,
	)
	if err != nil {
		return nil, err
	}

	t.Type = domain.TransactionType(txType)
	t.CreatedAt = t.CreatedAt.UTC()

	t.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}

	return t, nil
}

// Ensure transactionRepository implements repository.TransactionRepository.
var _ repository.TransactionRepository = (*transactionRepository)(nil)
