package entities

import "time"

// Streamer represents a channel that markets can be opened against.
// Streamers are never deleted, only deactivated.
type Streamer struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Description  string    `db:"description" json:"description"`
	TokenAddress *string   `db:"token_address" json:"tokenAddress,omitempty"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// CanHostMarkets checks whether new markets may reference this streamer.
func (s *Streamer) CanHostMarkets() bool {
	return s.IsActive
}
