package report

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sinuca-magalhaes/caixa/internal/domain"
)

func makeTxs(n int) []*domain.Transaction {
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	txs := make([]*domain.Transaction, 0, n)
	for i := 0; i < n; i++ {
		typ := domain.TransactionIncome
		if i%3 == 0 {
			typ = domain.TransactionExpense
		}
		txs = append(txs, &domain.Transaction{
			ID:          int64(i + 1),
			Type:        typ,
			Category:    "Locação",
			Description: fmt.Sprintf("Mesa %d, partida longa de sinuca", i),
			Amount:      decimal.NewFromInt(int64(10 + i)),
			Responsible: "alice",
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
			OwnerID:     1,
		})
	}
	return txs
}

func TestSummarize(t *testing.T) {
	txs := []*domain.Transaction{
		{Type: domain.TransactionIncome, Amount: decimal.RequireFromString("100.50")},
		{Type: domain.TransactionExpense, Amount: decimal.RequireFromString("30.25")},
		{Type: domain.TransactionIncome, Amount: decimal.RequireFromString("0.10")},
		{Type: domain.TransactionExpense, Amount: decimal.RequireFromString("0.20")},
	}

	s := Summarize(txs)
	assert.Equal(t, "100.60", s.TotalIncome.StringFixed(2))
	assert.Equal(t, "30.45", s.TotalExpense.StringFixed(2))
	assert.Equal(t, "70.15", s.Net.StringFixed(2))
	assert.Equal(t, 4, s.Count)
	assert.True(t, s.Net.Equal(s.TotalIncome.Sub(s.TotalExpense)))
}

func TestSummarize_NegativeNet(t *testing.T) {
	s := Summarize([]*domain.Transaction{
		{Type: domain.TransactionExpense, Amount: decimal.NewFromInt(30)},
	})
	assert.Equal(t, "-30.00", s.Net.StringFixed(2))
}

func TestGenerate_Empty(t *testing.T) {
	doc, err := NewGenerator().Generate(nil, "alice", "")
	require.NoError(t, err)

	assert.Equal(t, 1, doc.Pages)
	assert.True(t, doc.Summary.TotalIncome.IsZero())
	assert.True(t, doc.Summary.TotalExpense.IsZero())
	assert.True(t, doc.Summary.Net.IsZero())
	assert.Zero(t, doc.Summary.Count)
	assert.True(t, bytes.HasPrefix(doc.Bytes, []byte("%PDF")))
}

func TestGenerate_SinglePage(t *testing.T) {
	doc, err := NewGenerator().Generate(makeTxs(5), "alice", "01/01/2024 - 05/01/2024")
	require.NoError(t, err)

	assert.Equal(t, 1, doc.Pages)
	assert.Equal(t, 5, doc.Summary.Count)
	assert.True(t, bytes.HasPrefix(doc.Bytes, []byte("%PDF")))
}

func TestGenerate_Paginates(t *testing.T) {
	txs := makeTxs(150)

	doc, err := NewGenerator(WithChart(false)).Generate(txs, "alice", "")
	require.NoError(t, err)
	assert.Greater(t, doc.Pages, 1)

	more, err := NewGenerator(WithChart(false)).Generate(makeTxs(300), "alice", "")
	require.NoError(t, err)
	assert.Greater(t, more.Pages, doc.Pages)
}

func TestGenerate_ChartDoesNotChangeTotals(t *testing.T) {
	txs := makeTxs(10)

	withChart, err := NewGenerator(WithChart(true)).Generate(txs, "joão", "")
	require.NoError(t, err)
	without, err := NewGenerator(WithChart(false)).Generate(txs, "joão", "")
	require.NoError(t, err)

	assert.True(t, withChart.Summary.Net.Equal(without.Summary.Net))
	assert.Greater(t, len(withChart.Bytes), len(without.Bytes))
	assert.Contains(t, string(withChart.Bytes), "/Subtype /Image")
	assert.NotContains(t, string(without.Bytes), "/Subtype /Image")
}

func TestRenderChart_RefusesOutOfRange(t *testing.T) {
	tests := []struct {
		name    string
		income  string
		expense string
	}{
		{"overflows float", "1e400", "0"},
		{"too large", "0", "1e16"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Summary{
				TotalIncome:  decimal.RequireFromString(tt.income),
				TotalExpense: decimal.RequireFromString(tt.expense),
			}
			_, err := renderChart(s)
			assert.ErrorIs(t, err, errChartOutOfRange)
			assert.False(t, chartable(s))
		})
	}
}

func TestGenerate_SkipsChartForHugeTotals(t *testing.T) {
	txs := []*domain.Transaction{{ID: 1, Type: domain.TransactionIncome, Amount: decimal.RequireFromString("1e400"), CreatedAt: time.Now()}}

	done := make(chan *Document, 1)
	go func() {
		doc, err := NewGenerator().Generate(txs, "alice", "")
		assert.NoError(t, err)
		done <- doc
	}()

	select {
	case doc := <-done:
		require.NotNil(t, doc)
		assert.True(t, bytes.HasPrefix(doc.Bytes, []byte("%PDF")))
		assert.NotContains(t, string(doc.Bytes), "/Subtype /Image")
	case <-time.After(10 * time.Second):
		t.Fatal("report generation did not finish")
	}
}

func TestGenerate_OnlyIncomeChart(t *testing.T) {
	txs := []*domain.Transaction{{ID: 1, Type: domain.TransactionIncome, Amount: decimal.NewFromInt(50), CreatedAt: time.Now()}}

	doc, err := NewGenerator().Generate(txs, "alice", "")
	require.NoError(t, err)
	assert.Equal(t, "50.00", doc.Summary.Net.StringFixed(2))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", MaxDescriptionChars))
	assert.Equal(t, "12345678901234567890", truncate("12345678901234567890", MaxDescriptionChars))
	assert.Equal(t, "12345678901234567890", truncate("123456789012345678901", MaxDescriptionChars))
	assert.Equal(t, "Manutenção da mesa n", truncate("Manutenção da mesa número 4", MaxDescriptionChars))
}
