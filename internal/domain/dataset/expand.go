package dataset

import (
	"github.com/riskibarqy/fpl-dataset/internal/domain/fpl"
	"github.com/riskibarqy/fpl-dataset/internal/platform/frame"
)

// FixturesFromFrame reads typed fixtures out of a fixtures table. Cells that
// do not coerce to an integer become nil.
func FixturesFromFrame(table *frame.Frame) ([]fpl.Fixture, error) {
	if err := checkRequired(table, fpl.FixturesSchema); err != nil {
		return nil, err
	}

	out := make([]fpl.Fixture, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		out = append(out, fpl.Fixture{
			Event:          intCell(table, i, fpl.ColEvent),
			HomeTeam:       intCell(table, i, fpl.ColTeamHome),
			AwayTeam:       intCell(table, i, fpl.ColTeamAway),
			HomeDifficulty: intCell(table, i, fpl.ColTeamHomeDifficulty),
			AwayDifficulty: intCell(table, i, fpl.ColTeamAwayDifficulty),
		})
	}
	return out, nil
}

// ExpandFixtures turns each fixture into a home and an away row. All home
// rows come first, in fixture order, followed by the away rows.
func ExpandFixtures(fixtures []fpl.Fixture) []fpl.ExpandedFixture {
	out := make([]fpl.ExpandedFixture, 0, 2*len(fixtures))
	for _, f := range fixtures {
		out = append(out, fpl.ExpandedFixture{
			Gameweek:           f.Event,
			Team:               f.HomeTeam,
			OpponentTeam:       f.AwayTeam,
			OpponentDifficulty: f.AwayDifficulty,
			WasHome:            true,
		})
	}
	for _, f := range fixtures {
		out = append(out, fpl.ExpandedFixture{
			Gameweek:           f.Event,
			Team:               f.AwayTeam,
			OpponentTeam:       f.HomeTeam,
			OpponentDifficulty: f.HomeDifficulty,
			WasHome:            false,
		})
	}
	return out
}

// ExpandedFrame lays out expanded fixtures as the long fixture view with
// columns event, team, opponent_team, opponent_difficulty, was_home.
func ExpandedFrame(rows []fpl.ExpandedFixture) *frame.Frame {
	out := frame.MustNew(fpl.ColEvent, fpl.ColTeam, fpl.ColOpponentTeam, fpl.ColOpponentDifficulty, fpl.ColWasHome)
	for _, row := range rows {
		// arity matches the fixed column list, Append cannot fail here
		_ = out.Append(row.Gameweek, row.Team, row.OpponentTeam, row.OpponentDifficulty, row.WasHome)
	}
	return out
}

func intCell(table *frame.Frame, row int, column string) *int {
	v, ok := table.Value(row, column)
	if !ok {
		return nil
	}
	n, ok := frame.ToInt(v)
	if !ok {
		return nil
	}
	out := int(n)
	return &out
}
