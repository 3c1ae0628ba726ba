package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// TransactionType distinguishes money coming in from money going out.
type TransactionType string

const (
	// TransactionIncome is an "entrada": table rental, sales, etc.
	TransactionIncome TransactionType = "Income"

	// TransactionExpense is a "saída": supplies, maintenance, food, travel.
	TransactionExpense TransactionType = "Expense"
)

// Field limits for free-text columns.
const (
	MaxCategoryLength    = 100
	MaxDescriptionLength = 500
	MaxResponsibleLength = 255

	// AmountScale is the number of fractional digits kept for amounts.
	AmountScale = 2

	// minAmountExponent bounds how many fractional digits an input may carry
	// before rounding.
	minAmountExponent = -18
)

// MaxAmount is the exclusive upper bound for an amount. It matches the
// NUMERIC(14,2) column used by postgres.
var MaxAmount = decimal.New(1, 12)

// ParseTransactionType parses a transaction type. Besides the canonical
// names it accepts the Portuguese labels used by the hall's frontend.
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "entrada":
		return TransactionIncome, nil
	case "expense", "saída", "saida":
		return TransactionExpense, nil
	default:
		return "", NewDomainError(ErrInvalidTransactionType, "must be Income or Expense", s)
	}
}

// IsValid returns true if t is one of the known types.
func (t TransactionType) IsValid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

// String implements fmt.Stringer.
func (t TransactionType) String() string {
	return string(t)
}

// Transaction is a single cash movement recorded by a user.
type Transaction struct {
	// ID is the unique identifier (assigned by the database).
	ID int64 `json:"id"`

	// Type is Income or Expense.
	Type TransactionType `json:"type"`

	// Category is a free-text grouping such as "Locação" or "Manutenção".
	Category string `json:"category"`

	// Description is a free-text note.
	Description string `json:"description"`

	// Amount is the non-negative value with two fractional digits.
	Amount decimal.Decimal `json:"amount"`

	// Responsible names who recorded the movement.
	Responsible string `json:"responsible"`

	// CreatedAt is set by the server when the transaction is stored.
	CreatedAt time.Time `json:"created_at"`

	// OwnerID is the user that owns this transaction. Immutable.
	OwnerID int64 `json:"owner_id"`
}

// NewTransaction validates the input and builds a transaction owned by ownerID.
// CreatedAt is always the current server time, at the microsecond precision
// both databases store.
func NewTransaction(ownerID int64, txType TransactionType, category, description string, amount decimal.Decimal, responsible string) (*Transaction, error) {
	if ownerID <= 0 {
		return nil, NewDomainError(ErrInvalidOwner, "owner is required", "")
	}
	if !txType.IsValid() {
		return nil, NewDomainError(ErrInvalidTransactionType, "must be Income or Expense", string(txType))
	}
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}

	category = strings.TrimSpace(category)
	description = strings.TrimSpace(description)
	responsible = strings.TrimSpace(responsible)

	if err := checkLength("category", category, MaxCategoryLength); err != nil {
		return nil, err
	}
	if err := checkLength("description", description, MaxDescriptionLength); err != nil {
		return nil, err
	}
	if err := checkLength("responsible", responsible, MaxResponsibleLength); err != nil {
		return nil, err
	}

	return &Transaction{
		Type:        txType,
		Category:    category,
		Description: description,
		Amount:      amount.Round(AmountScale),
		Responsible: responsible,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
		OwnerID:     ownerID,
	}, nil
}

// ValidateAmount rejects negative amounts and amounts at or above MaxAmount.
// The exponent is checked first so absurd inputs such as 1e20000000 are
// refused without being expanded.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return NewDomainError(ErrInvalidAmount, "must not be negative", amount.String())
	}
	exp := amount.Exponent()
	if exp > 12 {
		return NewDomainError(ErrInvalidAmount, "must be less than "+MaxAmount.String(), "")
	}
	if exp < minAmountExponent {
		return NewDomainError(ErrInvalidAmount, "has too many decimal places", "")
	}
	if !amount.LessThan(MaxAmount) {
		return NewDomainError(ErrInvalidAmount, "must be less than "+MaxAmount.String(), "")
	}
	return nil
}

// SignedAmount returns the amount with expenses negated.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

func checkLength(field, value string, limit int) error {
	if utf8.RuneCountInString(value) > limit {
		return NewDomainError(ErrFieldTooLong, fmt.Sprintf("%s exceeds %d characters", field, limit), field)
	}
	return nil
}
