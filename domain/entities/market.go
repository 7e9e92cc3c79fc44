package entities

import "time"

// MarketStatus represents the lifecycle state of a market
type MarketStatus string

const (
	MarketStatusOpen     MarketStatus = "open"
	MarketStatusClosed   MarketStatus = "closed" // derived from the deadline, never persisted
	MarketStatusResolved MarketStatus = "resolved"
)

// MarketCategory classifies what the market is about
type MarketCategory string

const (
	CategoryGameplay    MarketCategory = "gameplay"
	CategoryChat        MarketCategory = "chat"
	CategoryReactions   MarketCategory = "reactions"
	CategoryPerformance MarketCategory = "performance"
)

// IsValid checks if the category is one of the supported values
func (c MarketCategory) IsValid() bool {
	switch c {
	case CategoryGameplay, CategoryChat, CategoryReactions, CategoryPerformance:
		return true
	}
	return false
}

// Outcome is a market result or a bet prediction
type Outcome string

const (
	OutcomeNone Outcome = "none"
	OutcomeYes  Outcome = "yes"
	OutcomeNo   Outcome = "no"
)

// IsPrediction checks if the outcome is one a bet can be staked on
func (o Outcome) IsPrediction() bool {
	return o == OutcomeYes || o == OutcomeNo
}

// Market represents a time-boxed binary prediction market on a streamer.
// The pool counters are maintained in the same transaction as each admitted
// bet, so they always agree with the bet rows.
type Market struct {
	ID              int64          `db:"id" json:"id"`
	StreamerID      int64          `db:"streamer_id" json:"streamerId"`
	Title           string         `db:"title" json:"title"`
	Description     string         `db:"description" json:"description"`
	Category        MarketCategory `db:"category" json:"category"`
	DurationSeconds int64          `db:"duration_seconds" json:"durationSeconds"`
	Status          MarketStatus   `db:"status" json:"status"`
	Result          Outcome        `db:"result" json:"result"`
	TotalPool       int64          `db:"total_pool" json:"totalPool"`
	YesTotal        int64          `db:"yes_total" json:"yesTotal"`
	NoTotal         int64          `db:"no_total" json:"noTotal"`
	YesCount        int            `db:"yes_count" json:"yesCount"`
	NoCount         int            `db:"no_count" json:"noCount"`
	CreatedAt       time.Time      `db:"created_at" json:"createdAt"`
	ResolvedAt      *time.Time     `db:"resolved_at" json:"resolvedAt,omitempty"`
}

// Deadline returns the instant after which the market no longer accepts bets.
func (m *Market) Deadline() time.Time {
	return m.CreatedAt.Add(time.Duration(m.DurationSeconds) * time.Second)
}

// IsExpired checks whether the betting window has passed at the given instant.
func (m *Market) IsExpired(now time.Time) bool {
	return !now.Before(m.Deadline())
}

// IsResolved checks if the market has a final result.
func (m *Market) IsResolved() bool {
	return m.Status == MarketStatusResolved
}

// CanAcceptBets checks if a bet may be admitted at the given instant.
func (m *Market) CanAcceptBets(now time.Time) bool {
	return m.Status == MarketStatusOpen && !m.IsExpired(now)
}

// CanResolve checks if the market is eligible for resolution at the given
// instant: still open and past its deadline.
func (m *Market) CanResolve(now time.Time) bool {
	return m.Status == MarketStatusOpen && m.IsExpired(now)
}

// DisplayStatus returns the externally visible status, deriving "closed" for
// open markets whose window has expired. The closed state is computed at the
// point of decision, never stored.
func (m *Market) DisplayStatus(now time.Time) MarketStatus {
	if m.Status == MarketStatusOpen && m.IsExpired(now) {
		return MarketStatusClosed
	}
	return m.Status
}

// WinningSideTotal returns the stake total on the resolved side, or 0 if the
// market is unresolved.
func (m *Market) WinningSideTotal() int64 {
	switch m.Result {
	case OutcomeYes:
		return m.YesTotal
	case OutcomeNo:
		return m.NoTotal
	}
	return 0
}

// ApplyBet adds a stake to the market's running pool counters.
func (m *Market) ApplyBet(prediction Outcome, amount int64) {
	m.TotalPool += amount
	switch prediction {
	case OutcomeYes:
		m.YesTotal += amount
		m.YesCount++
	case OutcomeNo:
		m.NoTotal += amount
		m.NoCount++
	}
}

// Pool returns the market's pool totals as maintained by the running counters.
func (m *Market) Pool() PoolTotals {
	return PoolTotals{
		TotalPool: m.TotalPool,
		YesTotal:  m.YesTotal,
		NoTotal:   m.NoTotal,
		YesCount:  m.YesCount,
		NoCount:   m.NoCount,
	}
}
