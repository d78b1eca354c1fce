package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"github.com/Aadit-17/RevEase/internal/adapters/gemini"
	server "github.com/Aadit-17/RevEase/internal/adapters/http_server"
	"github.com/Aadit-17/RevEase/internal/adapters/observability"
	redisad "github.com/Aadit-17/RevEase/internal/adapters/redis"
	"github.com/Aadit-17/RevEase/internal/app"
	"github.com/Aadit-17/RevEase/internal/domain"
	"github.com/Aadit-17/RevEase/internal/shared"
	mysqlrepo "github.com/Aadit-17/RevEase/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db: init failure degrades the store-backed endpoints to 503 instead of
	// taking the process down
	var repo domain.ReviewRepository
	if db, err := sql.Open("mysql", cfg.MySQLDSN); err != nil {
		log.Error().Err(err).Msg("sql.Open failed; store endpoints degraded")
	} else if err := db.Ping(); err != nil {
		log.Error().Err(err).Msg("db.Ping failed; store endpoints degraded")
	} else {
		log.Info().Msg("database connection ok")
		repo = mysqlrepo.New(db)
	}

	// model client: missing key or init failure leaves analysis on the
	// deterministic fallbacks
	var llm domain.Completer
	if cl, err := gemini.New(cfg.GeminiBase, cfg.GeminiKey, cfg.GeminiModel, cfg.GeminiRPS); err != nil {
		log.Warn().Err(err).Msg("gemini client unavailable; using rating fallbacks")
	} else {
		llm = cl
	}

	// deps
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	analyzer := app.NewAnalyzer(llm)
	rs := app.NewReviewService(repo, cache, analyzer, cfg.Workers)
	q := app.NewQueryService(repo, cache, cfg.CacheTTL)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, R: rs})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
