package main

import (
	"context"
	"expvar"
	"log"
	"runtime"

	"github.com/huddle-rtc/huddle/internal/infrastructure/configs"
	"github.com/huddle-rtc/huddle/internal/infrastructure/logging"
	"github.com/huddle-rtc/huddle/internal/infrastructure/metrics"
	"github.com/huddle-rtc/huddle/internal/infrastructure/ratelimiter"
	"github.com/huddle-rtc/huddle/internal/infrastructure/registry"
	"github.com/huddle-rtc/huddle/internal/infrastructure/tracing"
	"github.com/huddle-rtc/huddle/internal/infrastructure/ws"
	"github.com/huddle-rtc/huddle/internal/presentation/api"
	"github.com/huddle-rtc/huddle/internal/presentation/handler/health"
	"github.com/huddle-rtc/huddle/internal/presentation/handler/relay"
	"go.uber.org/zap"
)

const serviceName = "huddle-relay"

func main() {
	tracerCfg := tracing.NewDefaultConfig(serviceName)

	sh, err := tracing.InitTracer(tracerCfg)
	if err != nil {
		log.Fatalf("Failed to initialize the tracer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer sh(ctx)

	logger := zap.Must(zap.NewProduction()).Sugar()
	defer logger.Sync()

	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	appLogger := logging.NewLogger(&logging.Config{
		FilePath: cfg.Logger.FilePath,
		Encoding: cfg.Logger.Encoding,
		Level:    cfg.Logger.Level,
		Backend:  cfg.Logger.Backend,
	})

	relayMetrics := metrics.NewDefault()

	roomRegistry := registry.New(cfg.Rooms.InactivityTimeout, cfg.Rooms.SweepInterval, appLogger, relayMetrics)
	go roomRegistry.Run(ctx)

	manager := ws.NewManager(relayMetrics)
	router := ws.NewRouter(roomRegistry, manager, relayMetrics, appLogger, cfg.Chat.ThrottleWindow)

	relayHandler := relay.NewHandler(router, cfg.HTTP, cfg.WS, appLogger)
	healthHandler := health.NewHandler()

	rl := ratelimiter.New(ratelimiter.Options{
		MaxRatePerSecond: cfg.RateLimiter.MaxRatePerSecond,
		MaxBurst:         cfg.RateLimiter.MaxBurst,
		CacheTTL:         cfg.RateLimiter.CacheTTL,
		SourceHeaderKey:  cfg.RateLimiter.SourceHeaderKey,
	})
	app := api.NewApplication(*cfg, relayHandler, healthHandler, logger, rl)

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.Mount()
	logger.Fatal(app.Run(mux))
}
