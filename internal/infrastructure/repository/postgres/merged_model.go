package postgres

import "github.com/riskibarqy/fpl-dataset/internal/domain/fpl"

// mergedGameweekModel mirrors fpl.MergedColumns.
type mergedGameweekModel struct {
	PlayerID            *int     `db:"player_id"`
	FirstName           *string  `db:"first_name"`
	SecondName          *string  `db:"second_name"`
	TeamName            *string  `db:"team_name"`
	Round               *int     `db:"round"`
	Minutes             *int     `db:"minutes"`
	GoalsScored         *int     `db:"goals_scored"`
	Assists             *int     `db:"assists"`
	CleanSheets         *int     `db:"clean_sheets"`
	TotalPoints         *int     `db:"total_points"`
	NowCost             *int     `db:"now_cost"`
	TransfersIn         *int     `db:"transfers_in"`
	TransfersOut        *int     `db:"transfers_out"`
	SelectedByPercent   *float64 `db:"selected_by_percent"`
	OpponentTeam        *int     `db:"opponent_team"`
	OpponentDifficulty  *int     `db:"opponent_difficulty"`
	WasHome             *bool    `db:"was_home"`
	StrengthOverallHome *int     `db:"strength_overall_home"`
	StrengthOverallAway *int     `db:"strength_overall_away"`
}

func mergedModelFromRow(row fpl.MergedRow) mergedGameweekModel {
	return mergedGameweekModel{
		PlayerID:            row.PlayerID,
		FirstName:           row.FirstName,
		SecondName:          row.SecondName,
		TeamName:            row.TeamName,
		Round:               row.Round,
		Minutes:             row.Minutes,
		GoalsScored:         row.GoalsScored,
		Assists:             row.Assists,
		CleanSheets:         row.CleanSheets,
		TotalPoints:         row.TotalPoints,
		NowCost:             row.NowCost,
		TransfersIn:         row.TransfersIn,
		TransfersOut:        row.TransfersOut,
		SelectedByPercent:   row.SelectedByPercent,
		OpponentTeam:        row.OpponentTeam,
		OpponentDifficulty:  row.OpponentDifficulty,
		WasHome:             row.WasHome,
		StrengthOverallHome: row.StrengthOverallHome,
		StrengthOverallAway: row.StrengthOverallAway,
	}
}
