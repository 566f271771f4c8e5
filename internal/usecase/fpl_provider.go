package usecase

import (
	"context"

	"github.com/riskibarqy/fpl-dataset/internal/domain/rawdata"
)

// FPLProvider is the FPL REST API as seen by the ingestion service. Records
// are decoded JSON objects, one per table row.
type FPLProvider interface {
	FetchBootstrap(ctx context.Context) (ExternalBootstrap, error)
	FetchFixtures(ctx context.Context) (ExternalRecords, error)
	FetchEventLive(ctx context.Context, gameweek int) (ExternalRecords, error)
	FetchPlayerSummary(ctx context.Context, playerID int64) (ExternalPlayerSummary, error)
}

type ExternalBootstrap struct {
	Players     []map[string]any
	Teams       []map[string]any
	Events      []map[string]any
	RawPayloads []rawdata.Payload
}

type ExternalRecords struct {
	Records     []map[string]any
	RawPayloads []rawdata.Payload
}

type ExternalPlayerSummary struct {
	PlayerID    int64
	History     []map[string]any
	HistoryPast []map[string]any
	RawPayloads []rawdata.Payload
}
