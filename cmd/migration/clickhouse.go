package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/riskibarqy/fpl-dataset/internal/infrastructure/repository/clickhouse"
	"github.com/riskibarqy/fpl-dataset/internal/platform/logging"
)

// applyClickHouseSchema runs every db/clickhouse/*.sql file in name order.
// The files use CREATE ... IF NOT EXISTS so reruns are no-ops.
func applyClickHouseSchema(ctx context.Context, logger *logging.Logger) error {
	dsn := strings.TrimSpace(os.Getenv("CLICKHOUSE_DSN"))
	if dsn == "" {
		return errors.New("CLICKHOUSE_DSN is required")
	}

	dir, err := resolveDir("CLICKHOUSE_SCHEMA_DIR", "./db/clickhouse", "/app/db/clickhouse")
	if err != nil {
		return fmt.Errorf("resolve clickhouse schema dir: %w", err)
	}
	statements, err := loadStatements(dir)
	if err != nil {
		return err
	}

	conn, err := clickhouse.NewConn(ctx, dsn)
	if err != nil {
		return err
	}
	defer conn.Close()

	for _, stmt := range statements {
		if err := conn.Exec(ctx, stmt.sql); err != nil {
			return fmt.Errorf("apply %s: %w", stmt.file, err)
		}
	}
	logger.Info("clickhouse schema applied", "dir", dir, "statements", len(statements))
	return nil
}

type statement struct {
	file string
	sql  string
}

func loadStatements(dir string) ([]statement, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, fmt.Errorf("list schema files: %w", err)
	}
	sort.Strings(files)

	var out []statement
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		for _, sql := range splitStatements(string(content)) {
			out = append(out, statement{file: filepath.Base(file), sql: sql})
		}
	}
	return out, nil
}

// splitStatements splits on semicolons. The native protocol accepts one
// statement per Exec.
func splitStatements(content string) []string {
	var out []string
	for _, part := range strings.Split(content, ";") {
		if sql := strings.TrimSpace(part); sql != "" {
			out = append(out, sql)
		}
	}
	return out
}
