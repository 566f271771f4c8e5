package dataset

import (
	"strings"
	"testing"

	"github.com/riskibarqy/fpl-dataset/internal/domain/fpl"
	"github.com/riskibarqy/fpl-dataset/internal/platform/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	playersCSV = "id,first_name,second_name,team,now_cost,total_points,web_name\n" +
		"100,Mohamed,Salah,10,130,200,Salah\n" +
		"200,Erling,Haaland,11,150,180,Haaland\n"

	teamsCSV = "id,name,short_name,strength_overall_home,strength_overall_away\n" +
		"10,Liverpool,LIV,1300,1310\n" +
		"11,Man City,MCI,1350,1340\n"

	fixturesCSV = "id,event,team_h,team_a,team_h_difficulty,team_a_difficulty,finished\n" +
		"1,1,10,11,3,4,True\n" +
		"2,2,11,10,4,3,True\n"

	statsCSV = "player_id,round,minutes,goals_scored,assists,clean_sheets,total_points,transfers_in,transfers_out,selected_by_percent,opponent_team,was_home\n" +
		"100,1,90,1,0,0,8,5000,100,45.0%,11,True\n" +
		"100,2,90,0,1,0,5,4000,200,46.1,11,False\n" +
		"100,3,0,0,0,0,0,0,0,,,\n" +
		"200,1,90,2,0,0,13,9000,50,not-a-number,10,False\n"
)

func readCSV(t *testing.T, text string) *frame.Frame {
	t.Helper()
	f, err := frame.ReadCSV(strings.NewReader(text))
	require.NoError(t, err)
	return f
}

func scenarioInput(t *testing.T) Input {
	t.Helper()
	return Input{
		Stats:    readCSV(t, statsCSV),
		Players:  readCSV(t, playersCSV),
		Teams:    readCSV(t, teamsCSV),
		Fixtures: readCSV(t, fixturesCSV),
	}
}

func TestMerge_HomeAndAwayPerspective(t *testing.T) {
	t.Parallel()

	got, report, err := Merge(scenarioInput(t))
	require.NoError(t, err)
	require.Equal(t, 4, got.Len())
	assert.Equal(t, fpl.MergedColumns, got.Columns())

	rows := MergedRows(got)

	round1 := rows[0]
	assert.Equal(t, 1, *round1.Round)
	assert.Equal(t, "Liverpool", *round1.TeamName)
	assert.Equal(t, 11, *round1.OpponentTeam)
	assert.Equal(t, 4, *round1.OpponentDifficulty)
	assert.True(t, *round1.WasHome)
	assert.Equal(t, 1300, *round1.StrengthOverallHome)

	round2 := rows[1]
	assert.Equal(t, 11, *round2.OpponentTeam)
	assert.Equal(t, 4, *round2.OpponentDifficulty)
	assert.False(t, *round2.WasHome)

	haaland := rows[3]
	assert.Equal(t, "Man City", *haaland.TeamName)
	assert.Equal(t, 10, *haaland.OpponentTeam)
	assert.Equal(t, 3, *haaland.OpponentDifficulty)
	assert.False(t, *haaland.WasHome)

	assert.Equal(t, Report{StatRows: 4, MergedRows: 4, UnmatchedFixtureRows: 1}, report)
}

func TestMerge_RoundWithoutFixtureKeepsRowWithNulls(t *testing.T) {
	t.Parallel()

	got, _, err := Merge(scenarioInput(t))
	require.NoError(t, err)

	row := got.Row(2)
	assert.Equal(t, int64(3), row["round"])
	assert.Nil(t, row["opponent_team"])
	assert.Nil(t, row["opponent_difficulty"])
	assert.Nil(t, row["was_home"])
	assert.Equal(t, "Liverpool", row["team_name"])
}

func TestMerge_StatTotalPointsWinOverPlayerTotals(t *testing.T) {
	t.Parallel()

	got, _, err := Merge(scenarioInput(t))
	require.NoError(t, err)

	row := got.Row(0)
	assert.Equal(t, "8", row["total_points"])
	assert.Equal(t, "130", row["now_cost"])
	assert.NotContains(t, got.Columns(), "total_points_player")
}

func TestMerge_OwnershipNormalized(t *testing.T) {
	t.Parallel()

	got, _, err := Merge(scenarioInput(t))
	require.NoError(t, err)

	values := make([]any, 0, got.Len())
	for i := 0; i < got.Len(); i++ {
		v, _ := got.Value(i, "selected_by_percent")
		values = append(values, v)
	}
	assert.Equal(t, []any{45.0, 46.1, nil, nil}, values)
}

func TestMerge_UnknownPlayersAreDroppedAndCounted(t *testing.T) {
	t.Parallel()

	in := scenarioInput(t)
	in.Stats = readCSV(t, "player_id,round,minutes\n100,1,90\n999,1,90\n,1,0\n")

	got, report, err := Merge(in)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())
	assert.Equal(t, 3, report.StatRows)
	assert.Equal(t, 2, report.DroppedUnknownPlayers)
	assert.LessOrEqual(t, got.Len(), in.Stats.Len())
	assert.Contains(t, report.MissingExpected, "gameweeks_current_season.selected_by_percent")
}

func TestMerge_OutputSizeMatchesStatsWhenPlayersKnown(t *testing.T) {
	t.Parallel()

	in := scenarioInput(t)
	got, report, err := Merge(in)
	require.NoError(t, err)
	assert.Equal(t, in.Stats.Len(), got.Len())
	assert.Zero(t, report.DroppedUnknownPlayers)
}

func TestMerge_DuplicateKeysKeepOneRowPerStat(t *testing.T) {
	t.Parallel()

	in := scenarioInput(t)
	in.Players = readCSV(t, playersCSV+"100,Mo,Salah,11,1,1,Dup\n")
	in.Teams = readCSV(t, teamsCSV+"10,Other,OTH,1,1\n")
	in.Fixtures = readCSV(t, fixturesCSV+"3,1,10,12,2,2,False\n")

	got, report, err := Merge(in)
	require.NoError(t, err)
	require.Equal(t, in.Stats.Len(), got.Len())
	assert.Equal(t, 1, report.DuplicatePlayerIDs)
	assert.Equal(t, 1, report.DuplicateTeamIDs)
	assert.Equal(t, 1, report.DuplicateFixtureKeys)

	row := got.Row(0)
	assert.Equal(t, "Liverpool", row["team_name"])
	assert.Equal(t, int64(11), row["opponent_team"])
}

func TestMerge_IsIdempotent(t *testing.T) {
	t.Parallel()

	in := scenarioInput(t)
	first, _, err := Merge(in)
	require.NoError(t, err)
	second, _, err := Merge(in)
	require.NoError(t, err)

	a, err := frame.EncodeCSV(first)
	require.NoError(t, err)
	b, err := frame.EncodeCSV(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	again, _, err := Merge(scenarioInput(t))
	require.NoError(t, err)
	c, err := frame.EncodeCSV(again)
	require.NoError(t, err)
	assert.Equal(t, a, c)
}

func TestMerge_MissingRequiredColumnIsFatal(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Input)
		want   string
	}{
		{
			name:   "stats without round",
			mutate: func(in *Input) { in.Stats = in.Stats.Drop("round") },
			want:   "gameweeks_current_season.round",
		},
		{
			name:   "players without team",
			mutate: func(in *Input) { in.Players = in.Players.Drop("team") },
			want:   "bootstrap_players.team",
		},
		{
			name:   "fixtures without difficulty",
			mutate: func(in *Input) { in.Fixtures = in.Fixtures.Drop("team_a_difficulty") },
			want:   "fixtures.team_a_difficulty",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			in := scenarioInput(t)
			tc.mutate(&in)
			_, _, err := Merge(in)
			require.ErrorIs(t, err, ErrMissingColumn)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestMerge_NilInput(t *testing.T) {
	t.Parallel()

	in := scenarioInput(t)
	in.Teams = nil
	_, _, err := Merge(in)
	require.ErrorIs(t, err, ErrMissingInput)
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	t.Parallel()

	in := scenarioInput(t)
	before, err := frame.EncodeCSV(in.Stats)
	require.NoError(t, err)

	_, _, err = Merge(in)
	require.NoError(t, err)

	after, err := frame.EncodeCSV(in.Stats)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestNormalizeOwnership(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   any
		want any
	}{
		{in: "45.0", want: 45.0},
		{in: "45.0%", want: 45.0},
		{in: " 3.5 % ", want: 3.5},
		{in: "", want: nil},
		{in: "abc", want: nil},
		{in: nil, want: nil},
		{in: 45.0, want: 45.0},
		{in: int64(7), want: 7.0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeOwnership(tc.in), "NormalizeOwnership(%#v)", tc.in)
	}
}
