package rawtable

import (
	"errors"
	"strings"

	"github.com/riskibarqy/fpl-dataset/internal/domain/fpl"
)

type Stage string

const (
	StageRaw       Stage = "raw"
	StageProcessed Stage = "processed"
)

var ErrTableNotFound = errors.New("table not found")

// Ref addresses one stored table.
type Ref struct {
	Stage Stage
	Name  string
}

func (r Ref) String() string {
	return string(r.Stage) + "/" + r.Name
}

func (r Ref) Valid() bool {
	switch r.Stage {
	case StageRaw, StageProcessed:
	default:
		return false
	}
	name := strings.TrimSpace(r.Name)
	return name != "" && !strings.ContainsAny(name, `/\`) && name != "." && name != ".."
}

var (
	BootstrapPlayers = Ref{Stage: StageRaw, Name: fpl.TableBootstrapPlayers}
	BootstrapTeams   = Ref{Stage: StageRaw, Name: fpl.TableBootstrapTeams}
	BootstrapEvents  = Ref{Stage: StageRaw, Name: fpl.TableBootstrapEvents}
	Fixtures         = Ref{Stage: StageRaw, Name: fpl.TableFixtures}
	Gameweeks        = Ref{Stage: StageProcessed, Name: fpl.TableGameweeks}
	Seasons          = Ref{Stage: StageProcessed, Name: fpl.TableSeasons}
	Merged           = Ref{Stage: StageProcessed, Name: fpl.TableMerged}
)

func EventLive(gameweek int) Ref {
	return Ref{Stage: StageRaw, Name: fpl.EventLiveTable(gameweek)}
}
