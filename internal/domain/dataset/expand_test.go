package dataset

import (
	"strings"
	"testing"

	"github.com/riskibarqy/fpl-dataset/internal/domain/fpl"
	"github.com/riskibarqy/fpl-dataset/internal/platform/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestExpandFixtures_ProducesMirroredPairs(t *testing.T) {
	t.Parallel()

	fixtures := []fpl.Fixture{
		{Event: intPtr(1), HomeTeam: intPtr(10), AwayTeam: intPtr(11), HomeDifficulty: intPtr(3), AwayDifficulty: intPtr(4)},
		{Event: intPtr(2), HomeTeam: intPtr(11), AwayTeam: intPtr(10), HomeDifficulty: intPtr(4), AwayDifficulty: intPtr(3)},
		{Event: intPtr(2), HomeTeam: intPtr(1), AwayTeam: intPtr(2), HomeDifficulty: intPtr(2), AwayDifficulty: intPtr(5)},
	}

	got := ExpandFixtures(fixtures)
	require.Len(t, got, 2*len(fixtures))

	for i, f := range fixtures {
		home := got[i]
		away := got[len(fixtures)+i]

		assert.True(t, home.WasHome)
		assert.False(t, away.WasHome)
		assert.Equal(t, f.Event, home.Gameweek)
		assert.Equal(t, f.Event, away.Gameweek)
		assert.Equal(t, home.Team, away.OpponentTeam)
		assert.Equal(t, home.OpponentTeam, away.Team)
		assert.Equal(t, f.AwayDifficulty, home.OpponentDifficulty)
		assert.Equal(t, f.HomeDifficulty, away.OpponentDifficulty)
	}
}

func TestExpandFixtures_EmptyAndNullTeams(t *testing.T) {
	t.Parallel()

	assert.Empty(t, ExpandFixtures(nil))

	got := ExpandFixtures([]fpl.Fixture{{Event: intPtr(5)}})
	require.Len(t, got, 2)
	assert.Nil(t, got[0].Team)
	assert.Nil(t, got[1].OpponentTeam)
}

func TestFixturesFromFrame_CoercesAndNullsBadCells(t *testing.T) {
	t.Parallel()

	table, err := frame.ReadCSV(strings.NewReader(
		"id,event,team_h,team_a,team_h_difficulty,team_a_difficulty\n" +
			"1,1,10,11,3,4\n" +
			"2,,12.0,abc,2,\n"))
	require.NoError(t, err)

	got, err := FixturesFromFrame(table)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, 10, *got[0].HomeTeam)
	assert.Equal(t, 4, *got[0].AwayDifficulty)
	assert.Nil(t, got[1].Event)
	assert.Equal(t, 12, *got[1].HomeTeam)
	assert.Nil(t, got[1].AwayTeam)
	assert.Nil(t, got[1].AwayDifficulty)
}

func TestFixturesFromFrame_MissingColumn(t *testing.T) {
	t.Parallel()

	table := frame.MustNew("event", "team_h", "team_a")
	_, err := FixturesFromFrame(table)
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "team_h_difficulty")
}

func TestExpandedFrame_Layout(t *testing.T) {
	t.Parallel()

	got := ExpandedFrame(ExpandFixtures([]fpl.Fixture{
		{Event: intPtr(1), HomeTeam: intPtr(10), AwayTeam: intPtr(11), HomeDifficulty: intPtr(3), AwayDifficulty: intPtr(4)},
	}))

	assert.Equal(t, []string{"event", "team", "opponent_team", "opponent_difficulty", "was_home"}, got.Columns())
	assert.Equal(t, map[string]any{
		"event": int64(1), "team": int64(11), "opponent_team": int64(10), "opponent_difficulty": int64(3), "was_home": false,
	}, got.Row(1))
}
