package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/glgenie/gl-genie/external/cricketdata"
	"github.com/glgenie/gl-genie/internal/config"
	"github.com/glgenie/gl-genie/internal/domain/fantasy"
	"github.com/glgenie/gl-genie/internal/domain/prediction"
	"github.com/glgenie/gl-genie/internal/infrastructure/repository/memory"
	"github.com/glgenie/gl-genie/internal/infrastructure/repository/postgres"
	"github.com/glgenie/gl-genie/internal/infrastructure/scoring"
	"github.com/glgenie/gl-genie/internal/interfaces/httpapi"
	"github.com/glgenie/gl-genie/internal/platform/cache"
	idgen "github.com/glgenie/gl-genie/internal/platform/id"
	"github.com/glgenie/gl-genie/internal/platform/logging"
	"github.com/glgenie/gl-genie/internal/platform/resilience"
	"github.com/glgenie/gl-genie/internal/usecase"
)

// NewHTTPServer wires repositories, the upstream cricket data client, the
// scorer, and the prediction service into a ready-to-listen HTTP server.
// The returned cleanup drains background persistence and closes the
// database connection; call it after the server has shut down.
func NewHTTPServer(cfg config.Config, logger *slog.Logger, zlog *logging.Logger) (*http.Server, func(context.Context) error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if zlog == nil {
		zlog = logging.Default()
	}

	var (
		db          *sqlx.DB
		rankingRepo prediction.Repository
		teamsRepo   fantasy.Repository
	)
	if cfg.DBURL != "" {
		var err error
		db, err = otelsqlx.Connect("postgres", normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
			otelsql.WithDBSystem("postgresql"),
			otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
			otelsql.WithQueryFormatter(formatDBQueryForTrace),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("connect database: %w", err)
		}
		rankingRepo = postgres.NewPredictionRepository(db)
		teamsRepo = postgres.NewTeamSetRepository(db)
		logger.Info("using postgres repositories", "database", dbNameFromURL(cfg.DBURL))
	} else {
		rankingRepo = memory.NewPredictionRepository()
		teamsRepo = memory.NewTeamSetRepository()
		logger.Info("using in-memory repositories", "reason", "DB_URL empty")
	}

	roster := cricketdata.NewClient(cricketdata.ClientConfig{
		BaseURL: cfg.CricketDataBaseURL,
		APIKey:  cfg.CricketDataAPIKey,
		Timeout: cfg.CricketDataTimeout,
		Retry: resilience.RetryConfig{
			MaxAttempts: cfg.CricketDataMaxRetries,
			BaseDelay:   cfg.CricketDataRetryBaseDelay,
			MaxDelay:    cfg.CricketDataRetryMaxDelay,
		},
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.CricketDataCircuitEnabled,
			FailureThreshold: cfg.CricketDataCircuitFailures,
			OpenTimeout:      cfg.CricketDataCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.CricketDataCircuitHalfOpenReq,
		},
		Logger: zlog,
	})

	var scorer usecase.Scorer
	if cfg.ModelServerEnabled {
		retry := resilience.DefaultRetryConfig()
		retry.MaxAttempts = cfg.ModelServerMaxRetries
		scorer = scoring.NewClient(scoring.ClientConfig{
			BaseURL: cfg.ModelServerURL,
			Timeout: cfg.ModelServerTimeout,
			Retry:   retry,
			Logger:  zlog,
		})
		logger.Info("scoring via model server", "url", cfg.ModelServerURL)
	} else {
		scorer = scoring.NewBaselineScorer()
		logger.Info("scoring via baseline heuristic")
	}

	// Rankings are recomputed once the roster window lapses; generated team
	// sets ride the longer prediction window since they only change when the
	// ranking does.
	service := usecase.NewPredictionService(
		roster,
		roster,
		scorer,
		rankingRepo,
		teamsRepo,
		cache.NewStore(cfg.RosterCacheTTL),
		cache.NewStore(cfg.PredictionCacheTTL),
		idgen.NewRandomGenerator(),
		logger,
		cfg.ScoreWorkers,
		cfg.PredictionCacheTTL,
	)

	router := httpapi.NewRouter(httpapi.NewHandler(service, logger), logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	cleanup := func(ctx context.Context) error {
		service.Shutdown()
		if db != nil {
			return db.Close()
		}
		return nil
	}

	return server, cleanup, nil
}
