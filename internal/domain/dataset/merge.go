package dataset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/fpl-dataset/internal/domain/fpl"
	"github.com/riskibarqy/fpl-dataset/internal/platform/frame"
)

var (
	ErrMissingInput  = errors.New("missing merge input")
	ErrMissingColumn = errors.New("missing required column")
)

// Input holds the four tables the merge reads. Stats is the per player
// per gameweek table (history rows or live rows).
type Input struct {
	Stats    *frame.Frame
	Players  *frame.Frame
	Teams    *frame.Frame
	Fixtures *frame.Frame
}

// Report describes how the inputs lined up. Duplicate counts are right-side
// rows ignored because an earlier row already claimed the key.
type Report struct {
	StatRows              int
	MergedRows            int
	DroppedUnknownPlayers int
	DuplicatePlayerIDs    int
	DuplicateTeamIDs      int
	DuplicateFixtureKeys  int
	UnmatchedFixtureRows  int
	MissingExpected       []string
}

const (
	playerSuffix  = "_player"
	teamSuffix    = "_team"
	historySuffix = "_history"
)

// Merge builds the merged player-gameweek dataset:
//
//  1. stats inner join players on player_id = id
//  2. left join teams on team = id, team name exposed as team_name
//  3. round and team coerced to nullable integers
//  4. left join the expanded fixture view on (round, team) = (event, team)
//  5. projection onto fpl.MergedColumns, skipping absent columns
//  6. selected_by_percent parsed from its percentage text
//
// Stat rows with an unknown player are dropped. Every other stat row yields
// exactly one output row. Inputs are not modified.
func Merge(in Input) (*frame.Frame, Report, error) {
	var report Report

	checks := []struct {
		table  *frame.Frame
		schema fpl.Schema
	}{
		{in.Stats, fpl.StatsSchema},
		{in.Players, fpl.PlayersSchema},
		{in.Teams, fpl.TeamsSchema},
		{in.Fixtures, fpl.FixturesSchema},
	}
	for _, c := range checks {
		if c.table == nil {
			return nil, report, fmt.Errorf("%w: %s", ErrMissingInput, c.schema.Table)
		}
		if err := checkRequired(c.table, c.schema); err != nil {
			return nil, report, err
		}
		report.MissingExpected = append(report.MissingExpected, missingExpected(c.table, c.schema)...)
	}
	report.StatRows = in.Stats.Len()

	merged, stats, err := frame.Join(in.Stats, in.Players, frame.JoinSpec{
		LeftOn:   []string{fpl.ColPlayerID},
		RightOn:  []string{fpl.ColID},
		How:      frame.InnerJoin,
		Suffixes: [2]string{"", playerSuffix},
	})
	if err != nil {
		return nil, report, fmt.Errorf("join players: %w", err)
	}
	report.DroppedUnknownPlayers = stats.Unmatched
	report.DuplicatePlayerIDs = stats.DuplicateRightKeys

	teams := in.Teams.Select(fpl.ColID, fpl.ColName, fpl.ColStrengthOverallHome, fpl.ColStrengthOverallAway)
	merged, stats, err = frame.Join(merged, teams, frame.JoinSpec{
		LeftOn:   []string{fpl.ColTeam},
		RightOn:  []string{fpl.ColID},
		How:      frame.LeftJoin,
		Suffixes: [2]string{"", teamSuffix},
	})
	if err != nil {
		return nil, report, fmt.Errorf("join teams: %w", err)
	}
	report.DuplicateTeamIDs = stats.DuplicateRightKeys

	if merged.Has(fpl.ColName) && !merged.Has(fpl.ColTeamName) {
		merged, err = merged.Rename(map[string]string{fpl.ColName: fpl.ColTeamName})
		if err != nil {
			return nil, report, fmt.Errorf("rename team name: %w", err)
		}
	}
	merged = merged.Drop(fpl.ColID + teamSuffix)

	merged = merged.Map(fpl.ColRound, frame.IntOrNull).Map(fpl.ColTeam, frame.IntOrNull)

	fixtures, err := FixturesFromFrame(in.Fixtures)
	if err != nil {
		return nil, report, err
	}
	merged, stats, err = frame.Join(merged, ExpandedFrame(ExpandFixtures(fixtures)), frame.JoinSpec{
		LeftOn:   []string{fpl.ColRound, fpl.ColTeam},
		RightOn:  []string{fpl.ColEvent, fpl.ColTeam},
		How:      frame.LeftJoin,
		Suffixes: [2]string{historySuffix, ""},
	})
	if err != nil {
		return nil, report, fmt.Errorf("join fixtures: %w", err)
	}
	report.DuplicateFixtureKeys = stats.DuplicateRightKeys
	report.UnmatchedFixtureRows = stats.Unmatched
	merged = merged.Drop(fpl.ColEvent)

	merged = merged.Select(fpl.MergedColumns...)
	merged = merged.Map(fpl.ColSelectedByPercent, NormalizeOwnership)

	report.MergedRows = merged.Len()
	return merged, report, nil
}

// NormalizeOwnership parses an ownership percentage such as "45.0%" or
// "12.3" into a float. Numbers pass through as floats; anything else is null.
func NormalizeOwnership(v any) any {
	switch typed := v.(type) {
	case string:
		text := strings.TrimSpace(typed)
		text = strings.TrimSpace(strings.TrimSuffix(text, "%"))
		return frame.FloatOrNull(text)
	case int64, float64:
		return frame.FloatOrNull(typed)
	default:
		return nil
	}
}

func checkRequired(table *frame.Frame, schema fpl.Schema) error {
	if table == nil {
		return fmt.Errorf("%w: %s", ErrMissingInput, schema.Table)
	}
	var missing []string
	for _, col := range schema.Required {
		if !table.Has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s.%s", ErrMissingColumn, schema.Table, strings.Join(missing, ","))
	}
	return nil
}

func missingExpected(table *frame.Frame, schema fpl.Schema) []string {
	var out []string
	for _, col := range schema.Expected {
		if !table.Has(col) {
			out = append(out, schema.Table+"."+col)
		}
	}
	return out
}
