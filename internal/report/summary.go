// Package report renders a user's transactions as a paginated PDF statement.
package report

import (
	"github.com/shopspring/decimal"

	"github.com/sinuca-magalhaes/caixa/internal/domain"
)

// Summary holds the totals of a set of transactions.
type Summary struct {
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	Net          decimal.Decimal `json:"net"`
	Count        int             `json:"count"`
}

// Summarize computes income, expense and net totals. Net is income minus
// expense and may be negative. Rows of an unknown type are ignored.
func Summarize(txs []*domain.Transaction) Summary {
	s := Summary{
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
		Net:          decimal.Zero,
	}

	for _, t := range txs {
		switch t.Type {
		case domain.TransactionIncome:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		case domain.TransactionExpense:
			s.TotalExpense = s.TotalExpense.Add(t.Amount)
		default:
			continue
		}
		s.Net = s.Net.Add(t.SignedAmount())
		s.Count++
	}

	return s
}

// IsZero reports whether both income and expense totals are zero.
func (s Summary) IsZero() bool {
	return s.TotalIncome.IsZero() && s.TotalExpense.IsZero()
}
