package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"estate_hub/internal/adapters/artifacts"
	server "estate_hub/internal/adapters/http_server"
	"estate_hub/internal/adapters/observability"
	redisad "estate_hub/internal/adapters/redis"
	"estate_hub/internal/adapters/remote"
	"estate_hub/internal/app"
	"estate_hub/internal/domain"
	"estate_hub/internal/shared"
	mysqlrepo "estate_hub/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// artifacts: remote server if configured, local directory otherwise
	var src artifacts.Source = artifacts.DirSource{Dir: cfg.ArtifactDir}
	if cfg.ArtifactBaseURL != "" {
		c, err := remote.New("artifacts", cfg.ArtifactBaseURL, cfg.ArtifactRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("artifact client init failed")
		}
		src = c
	}
	loader := artifacts.NewLoader(src, artifacts.Names{
		Facilities: cfg.FacilitiesFile,
		Price:      cfg.PriceFile,
		Location:   cfg.LocationFile,
		Distances:  cfg.DistancesFile,
		Listings:   cfg.ListingsFile,
	}, cfg.Weights)
	snapshots := app.NewSnapshotProvider(func(ctx context.Context) (*app.Snapshot, error) {
		s, err := loader.Load(ctx)
		if err != nil {
			return nil, err
		}
		return &app.Snapshot{Store: s.Store, Listings: s.Listings, Version: s.Version}, nil
	})

	// listings override
	var listings domain.ListingRepository
	if cfg.ListingsSource == "mysql" {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		log.Info().Msg("database connection ok")
		listings = mysqlrepo.New(db)
	}

	// cache is optional; queries run uncached when redis is down
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, "estates:")
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, continuing without cache")
		} else {
			cache = rc
		}
	}

	var model domain.PricePredictor
	if cfg.ModelBaseURL != "" {
		c, err := remote.New("model", cfg.ModelBaseURL, cfg.ArtifactRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("model client init failed")
		}
		model = c
	}

	q := app.NewQueryService(snapshots, listings, cache, cfg.CacheTTL)
	p := app.NewPriceService(model)

	// warm up; a failure here is retried on the first request
	go func() {
		if _, err := snapshots.Get(ctx); err != nil {
			log.Warn().Err(err).Msg("initial artifact load failed")
		}
	}()

	// http
	srv := server.New(server.Options{
		Timeout:      15 * time.Second,
		RateLimitRPM: cfg.RateLimitRPM,
		CORSOrigins:  cfg.CORSOrigins,
	})
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, P: p, Ready: snapshots.Loaded})

	log.Info().Str("addr", cfg.HTTPAddr).Str("weights", cfg.Weights.String()).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}
