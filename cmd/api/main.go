package main

import (
	"context"
	"database/sql"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"

	"authgate.org/internal/auth"
	"authgate.org/internal/config"
	"authgate.org/internal/httpapi"
	"authgate.org/internal/obs"
)

var version = "0.1.0"

func main() {
	configPath := flag.String("config", os.Getenv("AUTHGATE_CONFIG"), "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// Logger is not configured yet; write the startup failure plainly.
		os.Stderr.WriteString("authgate: " + err.Error() + "\n")
		os.Exit(1)
	}

	obs.InitLogger(cfg.Logging.Level, cfg.Logging.Format)
	obs.Init()

	var (
		db    *sql.DB
		store auth.Store
	)
	if cfg.Database.DSN != "" {
		db, err = sql.Open("pgx", cfg.Database.DSN)
		if err != nil {
			log.Fatal().Err(err).Msg("open db")
		}
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxOpenConns)
		db.SetConnMaxLifetime(30 * time.Minute)
		store = auth.NewPGStore(db)
	} else {
		if cfg.Production() {
			log.Fatal().Msg("database.dsn is required in production")
		}
		log.Warn().Msg("no database configured, using in-memory store")
		store = auth.NewMemStore()
	}

	tokens, err := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer,
		auth.WithTokenTTL(cfg.JWT.AccessTokenTTL))
	if err != nil {
		log.Fatal().Err(err).Msg("token service")
	}
	svc := auth.NewService(store, tokens)

	api := httpapi.New(svc, httpapi.ReadyProbe{DB: db}, version)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	log.Info().Str("version", version).Str("addr", srv.Addr).Msg("starting authgate-api")

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Info().Msg("stopped")
}
