package http

import (
	"context"
	nethttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/jump/internal/adapters/signal"
	"github.com/dkeye/jump/internal/app/orch"
	"github.com/dkeye/jump/internal/config"
)

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator, gatherer prometheus.Gatherer) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	ctrl := signal.NewSignalWSController(o, signal.Options{
		ReadLimit:  cfg.ReadLimit,
		PingPeriod: cfg.PingPeriod,
		SendBuffer: cfg.SendBuffer,
		RateLimit:  cfg.RateLimit,
		RateBurst:  cfg.RateBurst,
	})
	ws := func(c *gin.Context) {
		log.Debug().Str("module", "adapters.http").Str("path", c.FullPath()).Msg("ws signal endpoint hit")
		ctrl.HandleSignal(ctx, c)
	}
	r.GET("/ws", ws)
	r.GET("/api/ws/signal", ws)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(nethttp.StatusOK, gin.H{
			"status": "ok",
			"rooms":  o.Rooms.Len(),
			"users":  o.Users.Len(),
		})
	})

	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
