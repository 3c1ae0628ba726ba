package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("", "")
	require.NoError(t, err)
	assert.True(t, p.IsOpen())
	assert.Equal(t, "All history", p.Label())

	p, err = ParsePeriod("2024-01-01", "2024-01-05")
	require.NoError(t, err)
	assert.Equal(t, "01/01/2024 - 05/01/2024", p.Label())
	assert.Equal(t, "2024-01-01_2024-01-05", p.Slug())

	_, err = ParsePeriod("2024-13-01", "")
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = ParsePeriod("2024-01-05", "2024-01-01")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestPeriod_EndOfDayInclusive(t *testing.T) {
	p, err := ParsePeriod("", "2024-01-05")
	require.NoError(t, err)

	end, ok := p.End()
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC), end)

	assert.True(t, time.Date(2024, 1, 5, 23, 59, 59, 999_999_000, time.UTC).Before(end))
	assert.False(t, time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC).Before(end))

	_, ok = p.Start()
	assert.False(t, ok)
}

func TestPeriod_StartOfDay(t *testing.T) {
	p, err := ParsePeriod("2024-01-05", "")
	require.NoError(t, err)

	start, ok := p.Start()
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), start)

	_, ok = p.End()
	assert.False(t, ok)
	assert.Equal(t, "Since 05/01/2024", p.Label())
}
