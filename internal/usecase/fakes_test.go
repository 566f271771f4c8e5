package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/riskibarqy/fpl-dataset/internal/domain/fpl"
	"github.com/riskibarqy/fpl-dataset/internal/domain/rawtable"
	"github.com/riskibarqy/fpl-dataset/internal/platform/frame"
)

type fakeProvider struct {
	mu sync.Mutex

	bootstrap    ExternalBootstrap
	bootstrapErr error
	fixtures     ExternalRecords
	live         map[int]ExternalRecords
	summaries    map[int64]ExternalPlayerSummary
	summaryErrs  map[int64]error
	panicFor     int64
	summaryCalls []int64
}

func (p *fakeProvider) FetchBootstrap(context.Context) (ExternalBootstrap, error) {
	return p.bootstrap, p.bootstrapErr
}

func (p *fakeProvider) FetchFixtures(context.Context) (ExternalRecords, error) {
	return p.fixtures, nil
}

func (p *fakeProvider) FetchEventLive(_ context.Context, gameweek int) (ExternalRecords, error) {
	records, ok := p.live[gameweek]
	if !ok {
		return ExternalRecords{}, fmt.Errorf("no live data for gameweek %d", gameweek)
	}
	return records, nil
}

func (p *fakeProvider) FetchPlayerSummary(_ context.Context, playerID int64) (ExternalPlayerSummary, error) {
	p.mu.Lock()
	p.summaryCalls = append(p.summaryCalls, playerID)
	p.mu.Unlock()

	if p.panicFor != 0 && playerID == p.panicFor {
		panic("malformed summary")
	}
	if err := p.summaryErrs[playerID]; err != nil {
		return ExternalPlayerSummary{}, err
	}
	summary, ok := p.summaries[playerID]
	if !ok {
		return ExternalPlayerSummary{}, errors.New("not found")
	}
	return summary, nil
}

// tableStore is an in-memory rawtable.Repository for service tests.
type tableStore struct {
	mu      sync.Mutex
	tables  map[rawtable.Ref]*frame.Frame
	saveErr error
}

func newTableStore() *tableStore {
	return &tableStore{tables: make(map[rawtable.Ref]*frame.Frame)}
}

func (s *tableStore) Load(_ context.Context, ref rawtable.Ref) (*frame.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	table, ok := s.tables[ref]
	if !ok {
		return nil, rawtable.ErrTableNotFound
	}
	return table, nil
}

func (s *tableStore) Save(_ context.Context, ref rawtable.Ref, table *frame.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.tables[ref] = table
	return nil
}

func (s *tableStore) get(ref rawtable.Ref) (*frame.Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	table, ok := s.tables[ref]
	return table, ok
}

func (s *tableStore) putCSV(t *testing.T, ref rawtable.Ref, text string) {
	t.Helper()
	table, err := frame.ReadCSV(strings.NewReader(text))
	if err != nil {
		t.Fatalf("read csv for %s: %v", ref, err)
	}
	s.tables[ref] = table
}

type recordingSink struct {
	name string
	err  error
	rows []fpl.MergedRow
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) WriteMerged(_ context.Context, rows []fpl.MergedRow) error {
	if s.err != nil {
		return s.err
	}
	s.rows = rows
	return nil
}

func summaryFor(playerID int64, rounds ...int) ExternalPlayerSummary {
	history := make([]map[string]any, 0, len(rounds))
	for _, round := range rounds {
		history = append(history, map[string]any{
			"player_id":    playerID,
			"round":        round,
			"minutes":      90,
			"total_points": 2,
		})
	}
	return ExternalPlayerSummary{
		PlayerID: playerID,
		History:  history,
		HistoryPast: []map[string]any{
			{"player_id": playerID, "season_name": "2023/24", "total_points": 150},
		},
	}
}

func intColumn(t *testing.T, table *frame.Frame, column string) []int64 {
	t.Helper()
	out := make([]int64, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		value, _ := table.Value(i, column)
		n, ok := frame.ToInt(value)
		if !ok {
			t.Fatalf("row %d column %s is not an integer: %#v", i, column, value)
		}
		out = append(out, n)
	}
	return out
}
