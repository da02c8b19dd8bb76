package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spencer-p/celesun/pkg/almanac"
	"github.com/spencer-p/celesun/pkg/engine"
	"github.com/spencer-p/celesun/pkg/handlers"
	"github.com/spencer-p/celesun/pkg/logging"
	"github.com/spencer-p/celesun/pkg/metrics"
)

func main() {
	env, level, err := loadConfig()
	if err != nil {
		log.Fatal(err.Error())
	}
	logger := logging.New(os.Stdout, env.AppEnv, level, "celesun")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	alm, err := almanac.ByName(env.Almanac)
	if err != nil {
		log.Fatal(err.Error())
	}
	store, err := openStore(env)
	if err != nil {
		log.Fatal(err.Error())
	}
	current := initialSettings(ctx, store, logger)
	logger.Info("Loaded settings", "settings", current.String(), "almanac", env.Almanac)

	board := handlers.NewBoard(current)
	updates := make(chan engine.Config)
	ticker := time.NewTicker(env.TickInterval)
	defer ticker.Stop()
	eng := engine.New(alm, engine.WithLogger(logger))
	go eng.Run(ctx, time.Now(), current.EngineConfig(env.ArcSamples), engine.Loop{
		Ticks:   ticker.C,
		Updates: updates,
		Publish: board.Publish,
		Observe: metrics.ObserveTick,
	})

	r := mux.NewRouter().StrictSlash(true)
	r.Handle("/metrics", promhttp.Handler())
	s := r.PathPrefix(env.Prefix).Subrouter()
	handlers.Register(s, env.Prefix, handlers.Options{
		Board:         board,
		Store:         store,
		Updates:       updates,
		ArcSamples:    env.ArcSamples,
		Refresh:       env.TickInterval,
		SessionKey:    env.SessionKey,
		EncryptionKey: env.EncryptionKey,
		SecureCookies: env.SecureCookies,
		Logger:        logger,
	})

	srv := &http.Server{
		Handler:      metrics.LatencyHandler(r),
		Addr:         "0.0.0.0:" + env.Port,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to shut down", "err", err)
		}
	}()

	logger.Info("Listening and serving", "addr", srv.Addr, "prefix", env.Prefix)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err.Error())
	}
}
