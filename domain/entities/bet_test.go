package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBetIsWinner(t *testing.T) {
	yesBet := &Bet{Prediction: OutcomeYes}
	noBet := &Bet{Prediction: OutcomeNo}

	assert.True(t, yesBet.IsWinner(OutcomeYes))
	assert.False(t, yesBet.IsWinner(OutcomeNo))
	assert.False(t, yesBet.IsWinner(OutcomeNone))

	assert.True(t, noBet.IsWinner(OutcomeNo))
	assert.False(t, noBet.IsWinner(OutcomeYes))
}

func TestCalculatePayout(t *testing.T) {
	tests := []struct {
		name             string
		amount           int64
		totalPool        int64
		winningSideTotal int64
		expected         int64
	}{
		{
			name:             "even split doubles the stake",
			amount:           1_000_000_000,
			totalPool:        4_000_000_000,
			winningSideTotal: 2_000_000_000,
			expected:         2_000_000_000,
		},
		{
			name:             "sole winner takes the whole pool",
			amount:           500,
			totalPool:        2_000,
			winningSideTotal: 500,
			expected:         2_000,
		},
		{
			name:             "fractional share rounds down",
			amount:           1,
			totalPool:        10,
			winningSideTotal: 3,
			expected:         3, // 10/3 floored
		},
		{
			name:             "whole side wins its own pool back",
			amount:           700,
			totalPool:        700,
			winningSideTotal: 700,
			expected:         700,
		},
		{
			name:             "no winning side backers",
			amount:           100,
			totalPool:        100,
			winningSideTotal: 0,
			expected:         0,
		},
		{
			// amount * totalPool overflows int64; big.Int keeps it exact
			name:             "lamport scale stakes",
			amount:           5_000_000_000_000,
			totalPool:        9_000_000_000_000,
			winningSideTotal: 6_000_000_000_000,
			expected:         7_500_000_000_000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bet := &Bet{Amount: tt.amount}
			assert.Equal(t, tt.expected, bet.CalculatePayout(tt.totalPool, tt.winningSideTotal))
		})
	}
}

func TestPayoutConservation(t *testing.T) {
	// The sum of floored payouts never exceeds the pool
	bets := []*Bet{
		{Amount: 333, Prediction: OutcomeYes},
		{Amount: 334, Prediction: OutcomeYes},
		{Amount: 333, Prediction: OutcomeYes},
		{Amount: 1_000, Prediction: OutcomeNo},
	}

	totals := ComputePoolTotals(bets)
	var paid int64
	for _, bet := range bets {
		if bet.IsWinner(OutcomeYes) {
			paid += bet.CalculatePayout(totals.TotalPool, totals.YesTotal)
		}
	}

	assert.LessOrEqual(t, paid, totals.TotalPool)
	assert.Greater(t, paid, totals.TotalPool-int64(len(bets)), "rounding loss is bounded by one unit per winner")
}
