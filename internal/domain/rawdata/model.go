package rawdata

import "time"

const (
	EntityBootstrap     = "bootstrap_static"
	EntityFixtures      = "fixtures"
	EntityEventLive     = "event_live"
	EntityPlayerSummary = "element_summary"
)

// Payload is one raw API response kept for audit and replay. PayloadHash is
// the hex sha256 of PayloadJSON.
type Payload struct {
	Source      string
	EntityType  string
	EntityKey   string
	Gameweek    *int
	PlayerID    *int64
	PayloadJSON string
	PayloadHash string
	FetchedAt   time.Time
}
