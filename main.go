package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mess-ledger/backend/internal/config"
	"github.com/mess-ledger/backend/pkg/cache"
	v1 "github.com/mess-ledger/backend/pkg/controllers/v1"
	"github.com/mess-ledger/backend/pkg/ledger"
	"github.com/mess-ledger/backend/pkg/models"
	"github.com/mess-ledger/backend/pkg/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// @title			Mess Ledger
// @version		1.0
// @description	The backend for a shared household ledger
// @license.name	AGPL-3.0
// @license.url	https://www.gnu.org/licenses/agpl-3.0.html
func main() {
	// gin uses debug as the default mode, we use release for
	// security reasons
	ginMode, ok := os.LookupEnv("GIN_MODE")
	if !ok {
		gin.SetMode("release")
	} else {
		gin.SetMode(ginMode)
	}

	// Log format can be explicitly set.
	// If it is not set, it defaults to human readable for development
	// and JSON for release
	logFormat, ok := os.LookupEnv("LOG_FORMAT")
	output := io.Writer(os.Stdout)
	if (!ok && gin.IsDebugging()) || (ok && logFormat == "human") {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if gin.IsDebugging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(output).With().Timestamp().Logger()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Msg(err.Error())
	}

	// Create data directory
	err := os.MkdirAll(filepath.Dir(cfg.DatabaseFile), os.ModePerm)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	// Connect to the database
	db, err := models.Connect(cfg.DatabaseFile)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	reportCache, closeCache, err := connectCache(sigCtx, cfg)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}
	defer closeCache()

	service := ledger.NewService(
		ledger.NewGormStore(db),
		reportCache,
		ledger.WithLocation(cfg.Location()),
		ledger.WithLanguage(cfg.Language()),
	)

	// Validate has checked the URL already
	apiURL, _ := url.Parse(cfg.APIURL)

	r, teardown, err := router.Config(apiURL, cfg.CORSOrigins)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}
	defer teardown()

	err = router.AttachRoutes(r.Group("/"), router.Routes{
		Controller:  v1.Controller{Ledger: service},
		DB:          db,
		EnablePprof: cfg.EnablePprof,
	})
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server")
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case <-sigCtx.Done():
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Server stopped unexpectedly")
		}
	}

	// Drain running requests
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

// connectCache sets up the configured report cache with metrics.
func connectCache(ctx context.Context, cfg *config.Config) (cache.Cache, func(), error) {
	var c cache.Cache
	closeCache := func() {}

	switch cfg.CacheBackend {
	case config.CacheRedis:
		client, err := cache.ConnectRedis(ctx, cfg.RedisAddress, cfg.RedisDB)
		if err != nil {
			return nil, closeCache, err
		}
		closeCache = func() { _ = client.Close() }
		c = cache.NewRedis(client, "mess-ledger:", cfg.CacheTTL)
	case config.CacheNone:
		c = cache.Noop{}
	default:
		c = cache.NewMemory(cfg.CacheSize, cfg.CacheTTL)
	}

	log.Info().Str("backend", cfg.CacheBackend).Dur("ttl", cfg.CacheTTL).Msg("Cache")

	instrumented, err := cache.WithMetrics(c, prometheus.DefaultRegisterer)
	if err != nil {
		return nil, closeCache, err
	}

	return instrumented, closeCache, nil
}
