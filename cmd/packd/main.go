package main

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/hexapod/packs-go/internal/adapters/catalog"
	"github.com/hexapod/packs-go/internal/adapters/discord"
	httpadapter "github.com/hexapod/packs-go/internal/adapters/http"
	"github.com/hexapod/packs-go/internal/adapters/queue"
	"github.com/hexapod/packs-go/internal/adapters/storage/memory"
	"github.com/hexapod/packs-go/internal/adapters/storage/redisstore"
	"github.com/hexapod/packs-go/internal/adapters/webhook"
	"github.com/hexapod/packs-go/internal/app"
	"github.com/hexapod/packs-go/internal/config"
	"github.com/hexapod/packs-go/internal/metrics"
	"github.com/hexapod/packs-go/internal/ports"
)

// stdRNG delegates to math/rand/v2 (auto-seeded).
type stdRNG struct{}

func (stdRNG) Intn(n int) int { return rand.IntN(n) }

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	collector := metrics.NewPromCollector()

	var store ports.Store
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Error("redis unreachable", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		store = redisstore.New(client)
		logger.Info("using redis store", "addr", cfg.RedisAddr)
	} else {
		store = memory.New()
		logger.Warn("REDIS_ADDR not set, daily records will not survive restarts")
	}

	catalogStore := catalog.NewEmbeddedStore(catalog.Overrides{
		PackSize: cfg.PackSize,
		Weights:  cfg.Weights,
	})
	// Surface configuration errors before serving traffic.
	if _, err := catalogStore.Catalog(context.Background()); err != nil {
		logger.Error("invalid card catalog", "error", err)
		os.Exit(1)
	}

	httpClient := &http.Client{Timeout: cfg.HTTPClientTimeout}

	provider := discord.NewProvider(httpClient, discord.Config{
		ClientID:     cfg.DiscordClientID,
		ClientSecret: cfg.DiscordClientSecret,
		RedirectURL:  cfg.DiscordRedirectURL,
	})

	var notifiers []ports.Notifier
	if cfg.WebhookURL != "" {
		notifiers = append(notifiers, webhook.NewNotifier(httpClient, cfg.WebhookURL, nil, logger))
	}
	if cfg.AMQPURL != "" {
		notifiers = append(notifiers, queue.NewPublisher(cfg.AMQPURL))
	}

	sessions := app.NewSessionService(provider, store, collector, logger, app.SessionConfig{
		StateSecret: []byte(cfg.StateSecret),
		SessionTTL:  cfg.SessionTTL,
	})
	packs := app.NewPackService(catalogStore, store, stdRNG{}, notifiers, collector, logger, app.PackConfig{
		Location: cfg.Timezone,
	})

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(httpadapter.RequestIDMiddleware())
	e.Use(httpadapter.LoggingMiddleware(logger))
	e.GET("/metrics", echo.WrapHandler(collector.Handler()))

	limiter := httpadapter.NewOpenRateLimiter(rate.Limit(1), 5)
	handler := httpadapter.NewHandler(sessions, packs, limiter, cfg.SessionTTL, cfg.SecureCookies)
	handler.Register(e)

	// Graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		logger.Info("starting server", "addr", cfg.HTTPAddr)
		if err := e.Start(cfg.HTTPAddr); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
