package fpl

// Fixture is one scheduled match as published by the fixtures endpoint.
// Ids and difficulties are nil when the source cell is blank or unparsable.
type Fixture struct {
	Event          *int
	HomeTeam       *int
	AwayTeam       *int
	HomeDifficulty *int
	AwayDifficulty *int
}

// ExpandedFixture is a fixture seen from one team's side. Every Fixture yields
// exactly two, mirroring each other.
type ExpandedFixture struct {
	Gameweek           *int
	Team               *int
	OpponentTeam       *int
	OpponentDifficulty *int
	WasHome            bool
}

// MergedRow is one player-gameweek row of the merged dataset.
type MergedRow struct {
	PlayerID            *int
	FirstName           *string
	SecondName          *string
	TeamName            *string
	Round               *int
	Minutes             *int
	GoalsScored         *int
	Assists             *int
	CleanSheets         *int
	TotalPoints         *int
	NowCost             *int
	TransfersIn         *int
	TransfersOut        *int
	SelectedByPercent   *float64
	OpponentTeam        *int
	OpponentDifficulty  *int
	WasHome             *bool
	StrengthOverallHome *int
	StrengthOverallAway *int
}
