package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"depth_go/internal/app"
	"depth_go/internal/bridge"
	"depth_go/internal/infra"
	"depth_go/internal/infra/notify"
	"depth_go/internal/service"

	"github.com/joho/godotenv"
	_ "net/http/pprof" // For pprof profiling
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	flag.Parse()

	// Optional .env for local overrides; absence is fine
	_ = godotenv.Load()

	// 1. Pprof Server (for performance profiling)
	go func() {
		// Localhost only for security
		slog.Info("🕵️ Pprof server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Pprof server failed", slog.Any("error", err))
		}
	}()

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(*configPath); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	cfg := bootstrap.Config

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Background Asset Sync
	go bootstrap.SyncAssets(ctx)

	// 5. Metrics endpoint
	if cfg.Metrics.ListenAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", infra.MetricsHandler())
			slog.Info("📊 Metrics server started", slog.String("addr", cfg.Metrics.ListenAddr))
			if err := http.ListenAndServe(cfg.Metrics.ListenAddr, mux); err != nil {
				slog.Error("Metrics server failed", slog.Any("error", err))
			}
		}()
	}

	// 6. Market Service wiring
	svc := service.NewMarketService(cfg)
	defer svc.Close()

	svc.SetNotifier(notify.NewWebhook(cfg.Notify.WebhookURL))

	if cfg.Bridge.NatsURL != "" {
		publisher, err := bridge.NewPublisher(cfg.Bridge.NatsURL, cfg.Bridge.SubjectPrefix)
		if err != nil {
			slog.Error("Failed to connect NATS bridge", slog.Any("error", err))
		} else {
			defer publisher.Close()
			svc.SetPublisher(publisher.Publish)
			slog.InfoContext(ctx, "✅ NATS bridge connected", slog.String("url", cfg.Bridge.NatsURL))
		}
	}

	svc.SetSinks(nil, func(connected, synthetic bool, errDetail string) {
		slog.Info("Feed status changed",
			slog.Bool("connected", connected),
			slog.Bool("synthetic", synthetic),
			slog.String("detail", errDetail))
	})

	if err := svc.SwitchVenue(ctx, cfg.Feed.Venue, cfg.Feed.Symbol); err != nil {
		slog.Error("❌ Failed to start feed session", slog.Any("error", err))
		os.Exit(1)
	}
	slog.InfoContext(ctx, "✅ Feed session started",
		slog.String("venue", cfg.Feed.Venue),
		slog.String("symbol", cfg.Feed.Symbol))

	// 7. Reference price poller keeps the synthetic fallback anchored
	if cfg.ReferencePriceAPI.URL != "" {
		refClient := infra.NewRefPriceClient(
			cfg.ReferencePriceAPI.URL,
			cfg.ReferencePriceAPI.PollIntervalSec,
			svc.SetReferencePrice,
		)
		if err := refClient.Start(ctx); err != nil {
			slog.Error("Failed to start reference price client", slog.Any("error", err))
		}
		defer refClient.Stop()
	}

	slog.InfoContext(ctx, "✨ Depth Go fully operational. Press Ctrl+C to exit.")

	// Wait for shutdown signal
	<-ctx.Done()

	slog.InfoContext(ctx, "👋 Shutting down gracefully...")
}
