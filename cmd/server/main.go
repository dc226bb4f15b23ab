package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/vitos/coin_dashboard/internal/config"
	"github.com/vitos/coin_dashboard/internal/domain"
	"github.com/vitos/coin_dashboard/internal/infrastructure/chart"
	"github.com/vitos/coin_dashboard/internal/infrastructure/logger"
	"github.com/vitos/coin_dashboard/internal/infrastructure/marketdata"
	"github.com/vitos/coin_dashboard/internal/infrastructure/metrics"
	"github.com/vitos/coin_dashboard/internal/infrastructure/textgen"
	"github.com/vitos/coin_dashboard/internal/usecase"
	"github.com/vitos/coin_dashboard/internal/web"
	"go.uber.org/zap"
)

func main() {
	// 1. Secrets from .env, when present
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Printf("Failed to load .env: %v\n", err)
		os.Exit(1)
	}

	// 2. Load Config
	path := config.DefaultPath
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 3. Init Logger
	log, err := logger.New(logger.Options{Level: cfg.Logging.Level, Encoding: cfg.Logging.Encoding})
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.NewMetrics(cfg.Metrics.Namespace)
	}

	// 4. Upstream clients
	market := marketdata.NewCoinGeckoAdapter(marketdata.Options{
		BaseURL:        cfg.CoinGecko.BaseURL,
		APIKey:         cfg.CoinGecko.APIKey,
		CoinTimeout:    cfg.CoinGecko.CoinTimeout,
		RefreshTimeout: cfg.CoinGecko.RefreshTimeout,
		ChartTimeout:   cfg.CoinGecko.ChartTimeout,
	}, m, log)

	var generator domain.TextGenerator
	if cfg.Cohere.APIKey != "" {
		generator = textgen.NewCohereAdapter(textgen.Options{
			BaseURL:     cfg.Cohere.BaseURL,
			APIKey:      cfg.Cohere.APIKey,
			Model:       cfg.Cohere.Model,
			MaxTokens:   cfg.Cohere.MaxTokens,
			Temperature: cfg.Cohere.Temperature,
			Timeout:     cfg.Cohere.Timeout,
		}, m, log)
	} else {
		log.Warn("COHERE_API_KEY not set, AI summaries are disabled")
	}

	renderer := chart.NewGonumRenderer(chart.Options{
		WidthInches:  cfg.Chart.WidthInches,
		HeightInches: cfg.Chart.HeightInches,
		DPI:          cfg.Chart.DPI,
	})

	// 5. Init Services
	charts := usecase.NewChartService(market, renderer, m, log)
	summary := usecase.NewSummaryService(generator, m, log)
	snapshots := usecase.NewSnapshotService(market, charts, summary, cfg.Location(), log)

	// 6. Init Web Server
	server := web.NewServer(web.Options{
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, snapshots, m, log)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	// 7. Wait for Shutdown
	<-stop

	log.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
}
