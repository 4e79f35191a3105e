package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"estate_hub/internal/adapters/artifacts"
	"estate_hub/internal/adapters/observability"
	"estate_hub/internal/adapters/remote"
	"estate_hub/internal/app"
	"estate_hub/internal/shared"
	mysqlrepo "estate_hub/internal/storage/mysql"
)

func main() { os.Exit(run()) }

// run returns the process exit code so deferred cleanup runs first.
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	log.Info().
		Str("listings", cfg.ListingsFile).
		Int("workers", cfg.Workers).
		Msg("ingestor starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")
	repo := mysqlrepo.New(db)

	var src artifacts.Source = artifacts.DirSource{Dir: cfg.ArtifactDir}
	if cfg.ArtifactBaseURL != "" {
		c, err := remote.New("artifacts", cfg.ArtifactBaseURL, cfg.ArtifactRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("artifact client init failed")
		}
		src = c
	}
	rc, err := src.Open(ctx, cfg.ListingsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("open listings artifact failed")
	}
	ls, err := artifacts.ParseListings(cfg.ListingsFile, rc)
	rc.Close()
	if err != nil {
		log.Fatal().Err(err).Msg("parse listings failed")
	}

	res, err := app.NewIngestionService(repo).IngestAll(ctx, ls, cfg.Workers)
	total, cerr := repo.CountListings(context.WithoutCancel(ctx))
	if cerr != nil {
		log.Warn().Err(cerr).Msg("count listings failed")
	}
	log.Info().
		Int64("ok", res.OK).
		Int64("failed", res.Failed).
		Int("stored", total).
		Msg("ingestion completed")
	if err != nil {
		log.Error().Err(err).Msg("ingestion interrupted")
		return 1
	}
	if res.Failed > 0 {
		return 1
	}
	return 0
}
