package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNewPosition(t *testing.T) {
	start := time.Date(2023, 4, 8, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 4, 14, 0, 0, 0, 0, time.UTC)

	p, err := NewPosition(start, end, "LMT", LegLong,
		decimal.RequireFromString("0.25"),
		decimal.NewFromInt(400),
		decimal.NewFromInt(10_000))
	require.NoError(t, err)

	require.True(t, p.HoldingValue.Equal(decimal.NewFromInt(2_500)))
	require.True(t, p.HoldingSize.Equal(decimal.RequireFromString("6.25")))
}

func TestNewPosition_Invalid(t *testing.T) {
	start := time.Date(2023, 4, 8, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 4, 14, 0, 0, 0, 0, time.UTC)
	capital := decimal.NewFromInt(10_000)

	t.Run("zero weight", func(t *testing.T) {
		_, err := NewPosition(start, end, "LMT", LegLong, decimal.Zero, decimal.NewFromInt(400), capital)
		require.Error(t, err)
	})

	t.Run("weight above one", func(t *testing.T) {
		_, err := NewPosition(start, end, "LMT", LegLong, decimal.NewFromInt(2), decimal.NewFromInt(400), capital)
		require.Error(t, err)
	})

	t.Run("non-positive price", func(t *testing.T) {
		_, err := NewPosition(start, end, "LMT", LegShort, decimal.NewFromInt(1), decimal.Zero, capital)
		require.Error(t, err)
	})

	t.Run("bad leg", func(t *testing.T) {
		_, err := NewPosition(start, end, "LMT", Leg("sideways"), decimal.NewFromInt(1), decimal.NewFromInt(400), capital)
		require.Error(t, err)
	})
}
