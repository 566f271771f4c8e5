package fpl

import "fmt"

const (
	MinGameweek = 1
	MaxGameweek = 38
)

const (
	TableBootstrapPlayers = "bootstrap_players"
	TableBootstrapTeams   = "bootstrap_teams"
	TableBootstrapEvents  = "bootstrap_events"
	TableFixtures         = "fixtures"
	TableGameweeks        = "gameweeks_current_season"
	TableSeasons          = "seasons_aggregates"
	TableMerged           = "merged_gameweeks"
)

// EventLiveTable names the per-gameweek live stats table, e.g. gw_07_live.
func EventLiveTable(gameweek int) string {
	return fmt.Sprintf("gw_%02d_live", gameweek)
}

func ValidGameweek(gameweek int) bool {
	return gameweek >= MinGameweek && gameweek <= MaxGameweek
}

const (
	ColPlayerID            = "player_id"
	ColRound               = "round"
	ColID                  = "id"
	ColTeam                = "team"
	ColEvent               = "event"
	ColTeamHome            = "team_h"
	ColTeamAway            = "team_a"
	ColTeamHomeDifficulty  = "team_h_difficulty"
	ColTeamAwayDifficulty  = "team_a_difficulty"
	ColName                = "name"
	ColTeamName            = "team_name"
	ColOpponentTeam        = "opponent_team"
	ColOpponentDifficulty  = "opponent_difficulty"
	ColWasHome             = "was_home"
	ColSelectedByPercent   = "selected_by_percent"
	ColStrengthOverallHome = "strength_overall_home"
	ColStrengthOverallAway = "strength_overall_away"
)

// Schema lists the columns a merge input must carry (Required) and the ones
// the merged output uses when present (Expected).
type Schema struct {
	Table    string
	Required []string
	Expected []string
}

var (
	StatsSchema = Schema{
		Table:    TableGameweeks,
		Required: []string{ColPlayerID, ColRound},
		Expected: []string{
			"minutes", "goals_scored", "assists", "clean_sheets", "total_points",
			"transfers_in", "transfers_out", ColSelectedByPercent,
		},
	}
	PlayersSchema = Schema{
		Table:    TableBootstrapPlayers,
		Required: []string{ColID, ColTeam},
		Expected: []string{"first_name", "second_name", "now_cost", "total_points"},
	}
	TeamsSchema = Schema{
		Table:    TableBootstrapTeams,
		Required: []string{ColID},
		Expected: []string{ColName, ColStrengthOverallHome, ColStrengthOverallAway},
	}
	FixturesSchema = Schema{
		Table:    TableFixtures,
		Required: []string{ColEvent, ColTeamHome, ColTeamAway, ColTeamHomeDifficulty, ColTeamAwayDifficulty},
	}
)

// MergedColumns is the merged dataset layout, in output order.
var MergedColumns = []string{
	ColPlayerID,
	"first_name",
	"second_name",
	ColTeamName,
	ColRound,
	"minutes",
	"goals_scored",
	"assists",
	"clean_sheets",
	"total_points",
	"now_cost",
	"transfers_in",
	"transfers_out",
	ColSelectedByPercent,
	ColOpponentTeam,
	ColOpponentDifficulty,
	ColWasHome,
	ColStrengthOverallHome,
	ColStrengthOverallAway,
}
