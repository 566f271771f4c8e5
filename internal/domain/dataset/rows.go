package dataset

import (
	"github.com/riskibarqy/fpl-dataset/internal/domain/fpl"
	"github.com/riskibarqy/fpl-dataset/internal/platform/frame"
)

// MergedRows converts a merged table into typed rows. Absent columns and
// cells that fail coercion become nil.
func MergedRows(table *frame.Frame) []fpl.MergedRow {
	out := make([]fpl.MergedRow, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		out = append(out, fpl.MergedRow{
			PlayerID:            intCell(table, i, fpl.ColPlayerID),
			FirstName:           stringCell(table, i, "first_name"),
			SecondName:          stringCell(table, i, "second_name"),
			TeamName:            stringCell(table, i, fpl.ColTeamName),
			Round:               intCell(table, i, fpl.ColRound),
			Minutes:             intCell(table, i, "minutes"),
			GoalsScored:         intCell(table, i, "goals_scored"),
			Assists:             intCell(table, i, "assists"),
			CleanSheets:         intCell(table, i, "clean_sheets"),
			TotalPoints:         intCell(table, i, "total_points"),
			NowCost:             intCell(table, i, "now_cost"),
			TransfersIn:         intCell(table, i, "transfers_in"),
			TransfersOut:        intCell(table, i, "transfers_out"),
			SelectedByPercent:   floatCell(table, i, fpl.ColSelectedByPercent),
			OpponentTeam:        intCell(table, i, fpl.ColOpponentTeam),
			OpponentDifficulty:  intCell(table, i, fpl.ColOpponentDifficulty),
			WasHome:             boolCell(table, i, fpl.ColWasHome),
			StrengthOverallHome: intCell(table, i, fpl.ColStrengthOverallHome),
			StrengthOverallAway: intCell(table, i, fpl.ColStrengthOverallAway),
		})
	}
	return out
}

func stringCell(table *frame.Frame, row int, column string) *string {
	v, ok := table.Value(row, column)
	if !ok {
		return nil
	}
	s, ok := frame.ToString(v)
	if !ok {
		return nil
	}
	return &s
}

func floatCell(table *frame.Frame, row int, column string) *float64 {
	v, ok := table.Value(row, column)
	if !ok {
		return nil
	}
	f, ok := frame.ToFloat(v)
	if !ok {
		return nil
	}
	return &f
}

func boolCell(table *frame.Frame, row int, column string) *bool {
	v, ok := table.Value(row, column)
	if !ok {
		return nil
	}
	b, ok := frame.ToBool(v)
	if !ok {
		return nil
	}
	return &b
}
