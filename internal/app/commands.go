package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/riskibarqy/fpl-dataset/internal/usecase"
)

var ErrUsage = errors.New("usage")

const Usage = `usage: fpl-dataset <command> [args]

commands:
  bootstrap          fetch bootstrap-static into players, teams and events tables
  fixtures           fetch the season fixture list
  live <gw>...       fetch live stats for one or more gameweeks
  histories          fetch every player's gameweek history and past seasons
  merge [gw]...      build merged_gameweeks from histories, or from the listed live gameweeks
  all                bootstrap, fixtures, histories and merge in order`

// Run executes one CLI command and writes its summary line to out.
func (p *Pipeline) Run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return ErrUsage
	}

	cmd := strings.ToLower(strings.TrimSpace(args[0]))
	rest := args[1:]
	switch cmd {
	case "bootstrap":
		result, err := p.ingestion.SyncBootstrap(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "bootstrap players=%d teams=%d events=%d\n", result.Players, result.Teams, result.Events)
	case "fixtures":
		rows, err := p.ingestion.SyncFixtures(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "fixtures rows=%d\n", rows)
	case "live":
		gameweeks, err := parseGameweeks(rest)
		if err != nil {
			return err
		}
		if len(gameweeks) == 0 {
			return fmt.Errorf("%w: live requires at least one gameweek", ErrUsage)
		}
		for _, gw := range gameweeks {
			rows, err := p.ingestion.SyncEventLive(ctx, gw)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "live gw=%d rows=%d\n", gw, rows)
		}
	case "histories":
		result, err := p.ingestion.SyncPlayerHistories(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "histories players=%d failed=%d gw_rows=%d season_rows=%d\n",
			result.Players, result.Failed, result.GameweekRows, result.SeasonRows)
	case "merge":
		gameweeks, err := parseGameweeks(rest)
		if err != nil {
			return err
		}
		result, err := p.dataset.Build(ctx, usecase.BuildInput{LiveGameweeks: gameweeks})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "merged rows=%d table=%s\n", result.Report.MergedRows, result.Output)
	case "all":
		return p.runAll(ctx, out)
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
	return nil
}

func (p *Pipeline) runAll(ctx context.Context, out io.Writer) error {
	if _, err := p.ingestion.SyncBootstrap(ctx); err != nil {
		return err
	}
	if _, err := p.ingestion.SyncFixtures(ctx); err != nil {
		return err
	}
	histories, err := p.ingestion.SyncPlayerHistories(ctx)
	if err != nil {
		return err
	}
	merged, err := p.dataset.Build(ctx, usecase.BuildInput{})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "done gw_rows=%d season_rows=%d merged_rows=%d\n",
		histories.GameweekRows, histories.SeasonRows, merged.Report.MergedRows)
	return nil
}

func parseGameweeks(args []string) ([]int, error) {
	out := make([]int, 0, len(args))
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			gw, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid gameweek %q", ErrUsage, part)
			}
			out = append(out, gw)
		}
	}
	return out, nil
}
