package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/dkeye/jump/internal/adapters/http"
	"github.com/dkeye/jump/internal/app"
	"github.com/dkeye/jump/internal/app/orch"
	"github.com/dkeye/jump/internal/config"
	"github.com/dkeye/jump/internal/metrics"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && lvl != zerolog.NoLevel {
		zerolog.SetGlobalLevel(lvl)
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(promReg)

	clk := clock.New()
	reg := app.NewRegistry(app.PolicyByName(cfg.SlowPolicy), m)
	users := app.NewIdentityDirectory(app.RandomNames{}, m)
	rooms := app.NewRoomRegistry(reg, clk, m)

	o := &orch.Orchestrator{
		Registry: reg,
		Users:    users,
		Rooms:    rooms,
		Relay:    app.NewSignalRelay(rooms, reg, m),
		Clock:    clk,
		Metrics:  m,
		Options: orch.Options{
			SampleSize:     cfg.SampleSize,
			RemoveOnReject: cfg.RemoveOnReject,
			RoomIdleTTL:    cfg.RoomIdleTTL,
			ReapInterval:   cfg.ReapInterval,
		},
	}
	go o.Run(ctx)

	r := router.SetupRouter(ctx, cfg, o, promReg)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("jump signaling server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
