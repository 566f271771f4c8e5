package postgres

import "time"

type rawDataPayloadInsertModel struct {
	Source      string    `db:"source"`
	EntityType  string    `db:"entity_type"`
	EntityKey   string    `db:"entity_key"`
	Gameweek    *int      `db:"gameweek"`
	PlayerID    *int64    `db:"player_id"`
	Payload     string    `db:"payload"`
	PayloadHash string    `db:"payload_hash"`
	FetchedAt   time.Time `db:"fetched_at"`
}

type rawDataPayloadTableModel struct {
	ID          int64     `db:"id"`
	Source      string    `db:"source"`
	EntityType  string    `db:"entity_type"`
	EntityKey   string    `db:"entity_key"`
	Gameweek    *int      `db:"gameweek"`
	PlayerID    *int64    `db:"player_id"`
	Payload     string    `db:"payload"`
	PayloadHash string    `db:"payload_hash"`
	FetchedAt   time.Time `db:"fetched_at"`
	IngestedAt  time.Time `db:"ingested_at"`
}
