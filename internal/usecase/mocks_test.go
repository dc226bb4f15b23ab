package usecase

import (
	"context"
	"sync"

	"github.com/vitos/coin_dashboard/internal/domain"
)

// MockMarketData for the snapshot and chart services
type MockMarketData struct {
	Coin     *domain.CoinRecord
	CoinErr  error
	Series   domain.PriceSeries
	ChartErr error

	mu          sync.Mutex
	CoinCalls   []domain.CoinQuery
	ChartCalls  []domain.Window
	LastCoinID  string
	LastChartID string
}

func (m *MockMarketData) GetCoin(ctx context.Context, coinID string, q domain.CoinQuery) (*domain.CoinRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CoinCalls = append(m.CoinCalls, q)
	m.LastCoinID = coinID
	return m.Coin, m.CoinErr
}

func (m *MockMarketData) GetMarketChart(ctx context.Context, coinID string, w domain.Window) (domain.PriceSeries, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChartCalls = append(m.ChartCalls, w)
	m.LastChartID = coinID
	return m.Series, m.ChartErr
}

type MockTextGenerator struct {
	Text  string
	Err   error
	Calls int

	LastSystem string
	LastPrompt string
}

func (m *MockTextGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	m.Calls++
	m.LastSystem = system
	m.LastPrompt = prompt
	return m.Text, m.Err
}

type MockChartRenderer struct {
	Image []byte
	Err   error
	Panic bool

	mu   sync.Mutex
	Last domain.ChartSpec
}

func (m *MockChartRenderer) RenderLine(spec domain.ChartSpec) ([]byte, error) {
	m.mu.Lock()
	m.Last = spec
	m.mu.Unlock()
	if m.Panic {
		panic("renderer exploded")
	}
	return m.Image, m.Err
}

func f(v float64) *float64 { return &v }
