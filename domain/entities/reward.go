package entities

import "time"

// Reward is the immutable record that a winning bet's payout has been
// computed. At most one reward exists per bet; its existence is the
// proof-of-claim.
type Reward struct {
	ID        int64     `db:"id" json:"id"`
	MarketID  int64     `db:"market_id" json:"marketId"`
	BetID     int64     `db:"bet_id" json:"betId"`
	UserID    string    `db:"user_id" json:"userId"`
	Amount    int64     `db:"amount" json:"amount"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// SettlementResult summarizes one settlement pass over a resolved market.
type SettlementResult struct {
	Market           *Market   `json:"market"`
	Rewards          []*Reward `json:"rewards"`
	NewRewards       int       `json:"newRewards"`
	TotalPaid        int64     `json:"totalPaid"`
	WinningSideTotal int64     `json:"winningSideTotal"`
}
