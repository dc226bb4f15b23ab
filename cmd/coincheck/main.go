package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/vitos/coin_dashboard/internal/config"
	"github.com/vitos/coin_dashboard/internal/domain"
	"github.com/vitos/coin_dashboard/internal/infrastructure/chart"
	"github.com/vitos/coin_dashboard/internal/infrastructure/logger"
	"github.com/vitos/coin_dashboard/internal/infrastructure/marketdata"
	"github.com/vitos/coin_dashboard/internal/infrastructure/textgen"
	"github.com/vitos/coin_dashboard/internal/usecase"
	"go.uber.org/zap"
)

var (
	cfgFile string
	days    string
	outFile string

	cfg       *config.Config
	log       *zap.Logger
	snapshots *usecase.SnapshotService
)

var rootCmd = &cobra.Command{
	Use:           "coincheck",
	Short:         "Query coin snapshots and charts from the command line",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		log, err = logger.New(logger.Options{
			Level:    cfg.Logging.Level,
			Encoding: "console",
			Outputs:  []string{"stderr"},
		})
		if err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}
		wire()
		return nil
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <coin-id>",
	Short: "Build the full snapshot of a coin and print it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := snapshots.BuildSnapshot(cmd.Context(), args[0], days)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"id":           snap.CoinID,
			"name":         snap.Name,
			"symbol":       snap.Symbol,
			"window":       snap.Window.String(),
			"trend":        snap.Trend.Direction,
			"summary":      snap.Summary,
			"generated_at": snap.GeneratedAt.Format(time.RFC3339),
			"html":         snap.HTML,
		})
	},
}

var chartCmd = &cobra.Command{
	Use:   "chart <coin-id>",
	Short: "Render the price chart of a coin",
	Long:  "Render the price chart of a coin. With --out the PNG is written to a file, otherwise the HTML fragment is printed.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if outFile == "" {
			ref, err := snapshots.RefreshChart(cmd.Context(), args[0], days)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), ref.ChartHTML)
			return err
		}

		img, err := snapshots.ChartImage(cmd.Context(), args[0], days)
		if err != nil {
			return err
		}
		if err := os.WriteFile(outFile, img, 0o644); err != nil {
			return err
		}
		log.Info("Chart written", zap.String("file", outFile), zap.Int("bytes", len(img)))
		return nil
	},
}

func wire() {
	market := marketdata.NewCoinGeckoAdapter(marketdata.Options{
		BaseURL:        cfg.CoinGecko.BaseURL,
		APIKey:         cfg.CoinGecko.APIKey,
		CoinTimeout:    cfg.CoinGecko.CoinTimeout,
		RefreshTimeout: cfg.CoinGecko.RefreshTimeout,
		ChartTimeout:   cfg.CoinGecko.ChartTimeout,
	}, nil, log)

	var generator domain.TextGenerator
	if cfg.Cohere.APIKey != "" {
		generator = textgen.NewCohereAdapter(textgen.Options{
			BaseURL:     cfg.Cohere.BaseURL,
			APIKey:      cfg.Cohere.APIKey,
			Model:       cfg.Cohere.Model,
			MaxTokens:   cfg.Cohere.MaxTokens,
			Temperature: cfg.Cohere.Temperature,
			Timeout:     cfg.Cohere.Timeout,
		}, nil, log)
	}

	renderer := chart.NewGonumRenderer(chart.Options{
		WidthInches:  cfg.Chart.WidthInches,
		HeightInches: cfg.Chart.HeightInches,
		DPI:          cfg.Chart.DPI,
	})
	charts := usecase.NewChartService(market, renderer, nil, log)
	snapshots = usecase.NewSnapshotService(market, charts, usecase.NewSummaryService(generator, nil, log), cfg.Location(), log)
}

func main() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file")
	for _, c := range []*cobra.Command{snapshotCmd, chartCmd} {
		c.Flags().StringVar(&days, "days", "7", `chart window: a number of days or "max"`)
	}
	chartCmd.Flags().StringVar(&outFile, "out", "", "write the PNG to this file instead of printing the HTML fragment")
	rootCmd.AddCommand(snapshotCmd, chartCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
