package entities

import (
	"math/big"
	"time"
)

// Bet represents an immutable stake on one side of a market. Amounts are
// lamports (1 SOL = 1e9). A user may hold multiple bets on the same market;
// each is counted independently.
type Bet struct {
	ID         int64     `db:"id" json:"id"`
	MarketID   int64     `db:"market_id" json:"marketId"`
	UserID     string    `db:"user_id" json:"userId"`
	Prediction Outcome   `db:"prediction" json:"prediction"`
	Amount     int64     `db:"amount" json:"amount"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// IsWinner checks whether this bet backed the resolved outcome.
func (b *Bet) IsWinner(result Outcome) bool {
	return result.IsPrediction() && b.Prediction == result
}

// CalculatePayout computes the pari-mutuel share for this bet:
// amount * totalPool / winningSideTotal, rounded down. The intermediate
// product can exceed int64 with lamport-scale stakes, so it goes through
// big.Int. Returns 0 when the winning side has no backers.
func (b *Bet) CalculatePayout(totalPool, winningSideTotal int64) int64 {
	if winningSideTotal <= 0 {
		return 0
	}
	payout := new(big.Int).Mul(big.NewInt(b.Amount), big.NewInt(totalPool))
	payout.Quo(payout, big.NewInt(winningSideTotal))
	return payout.Int64()
}
