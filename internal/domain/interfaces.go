package domain

import (
	"context"
	"time"
)

// CoinQuery selects the optional sections of the upstream coin record.
type CoinQuery struct {
	Community bool
	Developer bool
}

// MarketData defines the interface for the upstream market-data provider.
type MarketData interface {
	GetCoin(ctx context.Context, coinID string, q CoinQuery) (*CoinRecord, error)
	GetMarketChart(ctx context.Context, coinID string, w Window) (PriceSeries, error)
}

// TextGenerator produces a narrative summary from a system instruction and a user prompt.
type TextGenerator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// ChartRenderer draws a single-series line chart and returns an encoded PNG image.
type ChartRenderer interface {
	RenderLine(spec ChartSpec) ([]byte, error)
}

// ChartTick is an x axis tick placed on a series timestamp.
type ChartTick struct {
	Time  time.Time
	Label string
}

type ChartSpec struct {
	Title  string
	Color  string // hex, e.g. "#39FF14"
	Points PriceSeries
	Ticks  []ChartTick
}
