package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/fpl-dataset/external/fpl"
	"github.com/riskibarqy/fpl-dataset/internal/config"
	"github.com/riskibarqy/fpl-dataset/internal/domain/rawdata"
	"github.com/riskibarqy/fpl-dataset/internal/domain/rawtable"
	"github.com/riskibarqy/fpl-dataset/internal/infrastructure/repository/clickhouse"
	"github.com/riskibarqy/fpl-dataset/internal/infrastructure/repository/filestore"
	"github.com/riskibarqy/fpl-dataset/internal/infrastructure/repository/objectstore"
	"github.com/riskibarqy/fpl-dataset/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/fpl-dataset/internal/platform/logging"
	"github.com/riskibarqy/fpl-dataset/internal/platform/resilience"
	"github.com/riskibarqy/fpl-dataset/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

// Pipeline holds the wired services behind the CLI commands.
type Pipeline struct {
	ingestion *usecase.IngestionService
	dataset   *usecase.DatasetService
	logger    *logging.Logger
	closers   []func() error
}

func NewPipeline(ingestion *usecase.IngestionService, dataset *usecase.DatasetService, logger *logging.Logger) *Pipeline {
	if logger == nil {
		logger = logging.Default()
	}
	return &Pipeline{
		ingestion: ingestion,
		dataset:   dataset,
		logger:    logger,
	}
}

// Build wires the pipeline from configuration: the table store, the FPL
// client, and the optional Postgres and ClickHouse connections.
func Build(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var closers []func() error
	fail := func(err error) (*Pipeline, error) {
		closeAll(closers, logger)
		return nil, err
	}

	tables, err := newTableStore(ctx, cfg)
	if err != nil {
		return fail(err)
	}

	var (
		rawDataRepo rawdata.Repository
		sinks       []usecase.MergedSink
	)
	if cfg.PostgresExportEnabled || cfg.RawArchiveEnabled {
		db, err := openDB(ctx, cfg)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, db.Close)
		if cfg.RawArchiveEnabled {
			rawDataRepo = postgres.NewRawDataRepository(db)
		}
		if cfg.PostgresExportEnabled {
			sinks = append(sinks, postgres.NewMergedRepository(db))
		}
	}
	if cfg.ClickHouseExportEnabled {
		conn, err := clickhouse.NewConn(ctx, cfg.ClickHouseDSN)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, conn.Close)
		sinks = append(sinks, clickhouse.NewMergedRepository(conn))
	}

	client := fpl.NewClient(fpl.ClientConfig{
		BaseURL:    cfg.FPLBaseURL,
		UserAgent:  cfg.FPLUserAgent,
		Timeout:    cfg.FPLTimeout,
		MaxRetries: cfg.FPLMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FPLCircuitEnabled,
			FailureThreshold: cfg.FPLCircuitFailureCount,
			OpenTimeout:      cfg.FPLCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FPLCircuitHalfOpenMaxReq,
		},
	})

	ingestion := usecase.NewIngestionService(client, tables, rawDataRepo, usecase.IngestionConfig{
		HistoryMaxWorkers:      cfg.HistoryMaxWorkers,
		HistoryRequestInterval: cfg.HistoryRequestInterval,
	}, logger)
	dataset := usecase.NewDatasetService(tables, sinks, logger)

	pipeline := NewPipeline(ingestion, dataset, logger)
	pipeline.closers = closers

	sinkNames := make([]string, 0, len(sinks))
	for _, sink := range sinks {
		sinkNames = append(sinkNames, sink.Name())
	}
	logger.Info("pipeline ready",
		"store", cfg.StoreBackend,
		"raw_archive", rawDataRepo != nil,
		"sinks", sinkNames,
	)
	return pipeline, nil
}

// Close releases database connections in reverse order of opening.
func (p *Pipeline) Close() error {
	return closeAll(p.closers, p.logger)
}

func newTableStore(ctx context.Context, cfg config.Config) (rawtable.Repository, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendS3:
		repo, err := objectstore.New(ctx, objectstore.Config{
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, fmt.Errorf("create object store: %w", err)
		}
		return repo, nil
	case config.StoreBackendFS, "":
		return filestore.NewTableRepository(cfg.DataDir), nil
	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.StoreBackend)
	}
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dbURL := normalizeDBURL(strings.TrimSpace(cfg.DBURL), cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dbURL,
		otelsql.WithDBName(dbNameFromURL(dbURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func closeAll(closers []func() error, logger *logging.Logger) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			logger.Warn("close resource failed", "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
