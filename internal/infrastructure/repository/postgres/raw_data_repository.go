package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fpl-dataset/internal/domain/rawdata"
	qb "github.com/riskibarqy/fpl-dataset/internal/platform/querybuilder"
)

const rawDataUpsertSuffix = `ON CONFLICT (source, entity_type, entity_key)
DO UPDATE SET
    gameweek = EXCLUDED.gameweek,
    player_id = EXCLUDED.player_id,
    payload = EXCLUDED.payload,
    payload_hash = EXCLUDED.payload_hash,
    fetched_at = EXCLUDED.fetched_at,
    ingested_at = NOW()
WHERE raw_data_payloads.payload_hash IS DISTINCT FROM EXCLUDED.payload_hash`

type RawDataRepository struct {
	db *sqlx.DB
}

func NewRawDataRepository(db *sqlx.DB) *RawDataRepository {
	return &RawDataRepository{db: db}
}

// UpsertMany writes payloads in multi-row statements inside one transaction.
// When a batch repeats a key the last item wins.
func (r *RawDataRepository) UpsertMany(ctx context.Context, items []rawdata.Payload) error {
	models := rawDataInsertModels(items)
	if len(models) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert raw payloads: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, chunk := range chunkModels(models, rawDataChunkSize) {
		query, args, err := qb.InsertModels("raw_data_payloads", chunk, rawDataUpsertSuffix)
		if err != nil {
			return fmt.Errorf("build upsert raw payload query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert raw payloads count=%d: %w", len(chunk), hintMissingSchema(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert raw payloads tx: %w", err)
	}

	return nil
}

// Get returns the stored payload for one entity.
func (r *RawDataRepository) Get(ctx context.Context, source, entityType, entityKey string) (rawdata.Payload, bool, error) {
	const query = `SELECT id, source, entity_type, entity_key, gameweek, player_id, payload::text AS payload,
    payload_hash, fetched_at, ingested_at
FROM raw_data_payloads
WHERE source = $1 AND entity_type = $2 AND entity_key = $3`

	var row rawDataPayloadTableModel
	if err := r.db.GetContext(ctx, &row, query, source, entityType, entityKey); err != nil {
		if isNotFound(err) {
			return rawdata.Payload{}, false, nil
		}
		return rawdata.Payload{}, false, fmt.Errorf("get raw payload entity=%s key=%s: %w", entityType, entityKey, hintMissingSchema(err))
	}

	return rawdata.Payload{
		Source:      row.Source,
		EntityType:  row.EntityType,
		EntityKey:   row.EntityKey,
		Gameweek:    row.Gameweek,
		PlayerID:    row.PlayerID,
		PayloadJSON: row.Payload,
		PayloadHash: row.PayloadHash,
		FetchedAt:   row.FetchedAt,
	}, true, nil
}

const (
	rawDataColumnCount = 8
	rawDataChunkSize   = qb.MaxParams / rawDataColumnCount
)

func rawDataInsertModels(items []rawdata.Payload) []rawDataPayloadInsertModel {
	type entityKey struct {
		source, entityType, key string
	}

	index := make(map[entityKey]int, len(items))
	out := make([]rawDataPayloadInsertModel, 0, len(items))
	for _, item := range items {
		model := rawDataPayloadInsertModel{
			Source:      item.Source,
			EntityType:  item.EntityType,
			EntityKey:   item.EntityKey,
			Gameweek:    item.Gameweek,
			PlayerID:    item.PlayerID,
			Payload:     item.PayloadJSON,
			PayloadHash: item.PayloadHash,
			FetchedAt:   item.FetchedAt,
		}
		key := entityKey{item.Source, item.EntityType, item.EntityKey}
		if pos, ok := index[key]; ok {
			out[pos] = model
			continue
		}
		index[key] = len(out)
		out = append(out, model)
	}
	return out
}

func chunkModels[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = len(items)
	}
	chunks := make([][]T, 0, (len(items)+size-1)/max(size, 1))
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
