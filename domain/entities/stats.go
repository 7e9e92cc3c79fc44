package entities

import "time"

// PoolTotals holds the aggregate stake picture for a single market.
type PoolTotals struct {
	TotalPool int64 `json:"totalPool"`
	YesTotal  int64 `json:"yesTotal"`
	NoTotal   int64 `json:"noTotal"`
	YesCount  int   `json:"yesCount"`
	NoCount   int   `json:"noCount"`
}

// ComputePoolTotals derives pool totals from the full set of bets for a
// market. Pure and deterministic; tolerates an empty slice. Used to
// cross-check the incrementally maintained market counters.
func ComputePoolTotals(bets []*Bet) PoolTotals {
	var totals PoolTotals
	for _, bet := range bets {
		totals.TotalPool += bet.Amount
		switch bet.Prediction {
		case OutcomeYes:
			totals.YesTotal += bet.Amount
			totals.YesCount++
		case OutcomeNo:
			totals.NoTotal += bet.Amount
			totals.NoCount++
		}
	}
	return totals
}

// UserBetAggregate is a per-user rollup over the bet ledger.
type UserBetAggregate struct {
	UserID     string    `db:"user_id"`
	TotalBets  int       `db:"total_bets"`
	FirstBetAt time.Time `db:"first_bet_at"`
}

// UserRewardAggregate is a per-user rollup over settled rewards.
type UserRewardAggregate struct {
	UserID        string `db:"user_id"`
	TotalWinnings int64  `db:"total_winnings"`
	RewardedBets  int    `db:"rewarded_bets"`
}

// LeaderboardEntry is a derived ranking row; recomputed, never hand-edited.
// WinRate is a percentage (0-100).
type LeaderboardEntry struct {
	Rank          int       `json:"rank"`
	UserID        string    `json:"userId"`
	TotalWinnings int64     `json:"totalWinnings"`
	TotalBets     int       `json:"totalBets"`
	WonBets       int       `json:"wonBets"`
	WinRate       float64   `json:"winRate"`
	FirstBetAt    time.Time `json:"firstBetAt"`
}
