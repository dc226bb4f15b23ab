package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/coin_dashboard/internal/domain"
	"go.uber.org/zap"
)

func bitcoinRecord() *domain.CoinRecord {
	return &domain.CoinRecord{
		ID:            "bitcoin",
		Name:          "Bitcoin",
		Symbol:        "btc",
		Description:   "Peer-to-peer electronic cash.",
		Homepage:      "https://bitcoin.org",
		LogoURL:       "https://assets.example.com/bitcoin.png",
		MarketCapRank: f(1),
		Price:         f(64000),
		MarketCap:     f(1260000000000),
		MaxSupply:     f(21000000),
		Changes: domain.PeriodChanges{
			domain.Period1h:  f(0.1),
			domain.Period24h: f(3.2),
			domain.Period7d:  f(-4.5),
		},
		Community: domain.CommunityStats{TwitterFollowers: f(6500000)},
	}
}

type snapshotFixture struct {
	market   *MockMarketData
	gen      *MockTextGenerator
	renderer *MockChartRenderer
	svc      *SnapshotService
}

func newSnapshotFixture(withKey bool) *snapshotFixture {
	fx := &snapshotFixture{
		market:   &MockMarketData{Coin: bitcoinRecord(), Series: hourlySeries(48)},
		gen:      &MockTextGenerator{Text: "Summary text."},
		renderer: &MockChartRenderer{Image: []byte("png")},
	}
	var gen domain.TextGenerator
	if withKey {
		gen = fx.gen
	}
	loc, _ := time.LoadLocation("Europe/Amsterdam")
	charts := NewChartService(fx.market, fx.renderer, nil, zap.NewNop())
	fx.svc = NewSnapshotService(fx.market, charts, NewSummaryService(gen, nil, nil), loc, zap.NewNop())
	fx.svc.timeNow = func() time.Time {
		return time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC)
	}
	return fx
}

func TestNormalizeCoinID(t *testing.T) {
	id, err := NormalizeCoinID("  BitCoin ")
	require.NoError(t, err)
	assert.Equal(t, "bitcoin", id)

	_, err = NormalizeCoinID(" \t")
	assert.ErrorIs(t, err, domain.ErrMissingCoinID)
}

func TestBuildSnapshot_Bitcoin(t *testing.T) {
	fx := newSnapshotFixture(true)

	snap, err := fx.svc.BuildSnapshot(context.Background(), "Bitcoin", "7")
	require.NoError(t, err)

	assert.Equal(t, "bitcoin", snap.CoinID)
	assert.Equal(t, domain.DirectionUp, snap.Trend.Direction)
	assert.Equal(t, "BTC", snap.Symbol)
	assert.Equal(t, "Summary text.", snap.Summary)
	assert.Contains(t, snap.HTML, "(3.20%)")
	assert.Contains(t, snap.HTML, "▲")
	assert.Contains(t, snap.HTML, "01-03-2024 12:00:00")
	assert.Contains(t, snap.HTML, "$1,260,000,000,000")
	assert.Contains(t, snap.HTML, "21,000,000")
	assert.Contains(t, snap.HTML, "Summary text.")
	assert.Contains(t, snap.ChartHTML, "data:image/png;base64,")
	assert.Equal(t, domain.ColorUp, fx.renderer.Last.Color)

	require.Len(t, fx.market.CoinCalls, 1)
	assert.Equal(t, domain.CoinQuery{Community: true, Developer: true}, fx.market.CoinCalls[0])
	assert.Equal(t, 1, fx.gen.Calls)
}

func TestBuildSnapshot_NoKeySkipsGeneration(t *testing.T) {
	fx := newSnapshotFixture(false)

	snap, err := fx.svc.BuildSnapshot(context.Background(), "bitcoin", "30")
	require.NoError(t, err)

	assert.Equal(t, MsgSummaryDisabled, snap.Summary)
	assert.Contains(t, snap.HTML, MsgSummaryDisabled)
	assert.Equal(t, 0, fx.gen.Calls)
}

func TestBuildSnapshot_MissingID(t *testing.T) {
	fx := newSnapshotFixture(true)

	_, err := fx.svc.BuildSnapshot(context.Background(), "   ", "7")

	assert.ErrorIs(t, err, domain.ErrMissingCoinID)
	assert.Empty(t, fx.market.CoinCalls)
	assert.Empty(t, fx.market.ChartCalls)
	assert.Equal(t, 0, fx.gen.Calls)
}

func TestBuildSnapshot_NotFound(t *testing.T) {
	fx := newSnapshotFixture(true)
	fx.market.CoinErr = &domain.UpstreamStatusError{Service: "coingecko", StatusCode: 404, Body: `{"error":"coin not found"}`}

	_, err := fx.svc.BuildSnapshot(context.Background(), "notarealcoin999", "7")

	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "notarealcoin999", nf.CoinID)
	assert.Contains(t, err.Error(), "notarealcoin999")
	assert.Equal(t, 0, fx.gen.Calls)
}

func TestBuildSnapshot_UpstreamErrorsPassThrough(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"unreachable", fmt.Errorf("dial tcp: %w", domain.ErrUpstreamUnavailable)},
		{"incomplete", fmt.Errorf("market_data missing: %w", domain.ErrIncompleteData)},
		{"rate limited", &domain.UpstreamStatusError{Service: "coingecko", StatusCode: 429}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newSnapshotFixture(true)
			fx.market.CoinErr = tt.err

			_, err := fx.svc.BuildSnapshot(context.Background(), "bitcoin", "7")

			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.err) || errors.As(err, new(*domain.UpstreamStatusError)))
		})
	}
}

func TestBuildSnapshot_SparseRecord(t *testing.T) {
	fx := newSnapshotFixture(false)
	fx.market.Coin = &domain.CoinRecord{}
	fx.market.Series = nil

	snap, err := fx.svc.BuildSnapshot(context.Background(), "bitcoin-cash", "max")
	require.NoError(t, err)

	assert.Equal(t, "Bitcoin-Cash", snap.Name)
	assert.Equal(t, domain.DirectionNeutral, snap.Trend.Direction)
	assert.Contains(t, snap.HTML, PlaceholderLogo)
	assert.Contains(t, snap.HTML, "∞")
	assert.Contains(t, snap.HTML, ">N/A</a>")
	assert.Contains(t, snap.ChartHTML, MsgChartNoData)
	assert.Equal(t, domain.Window{Max: true}, snap.Window)
}

func TestRefreshChart(t *testing.T) {
	fx := newSnapshotFixture(true)

	ref, err := fx.svc.RefreshChart(context.Background(), " BITCOIN", "7")
	require.NoError(t, err)

	// 7d change is negative while 24h is positive
	assert.Equal(t, domain.DirectionDown, ref.Trend.Direction)
	assert.Equal(t, domain.ColorDown, fx.renderer.Last.Color)
	assert.Contains(t, ref.ChartHTML, "data:image/png;base64,")
	assert.Contains(t, ref.ChangesTable, "<th>1Y</th>")
	require.Len(t, fx.market.CoinCalls, 1)
	assert.Equal(t, domain.CoinQuery{}, fx.market.CoinCalls[0])
	assert.Equal(t, "bitcoin", fx.market.LastCoinID)
	assert.Equal(t, 0, fx.gen.Calls)
}

func TestRefreshChart_Errors(t *testing.T) {
	fx := newSnapshotFixture(true)
	_, err := fx.svc.RefreshChart(context.Background(), "", "7")
	assert.ErrorIs(t, err, domain.ErrMissingCoinID)

	fx.market.CoinErr = &domain.UpstreamStatusError{Service: "coingecko", StatusCode: 404}
	_, err = fx.svc.RefreshChart(context.Background(), "nope", "7")
	var nf *domain.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestChartImage(t *testing.T) {
	fx := newSnapshotFixture(true)
	fx.market.Coin = &domain.CoinRecord{Changes: domain.PeriodChanges{domain.Period24h: f(2)}}

	img, err := fx.svc.ChartImage(context.Background(), " Bitcoin-Cash ", "7")
	require.NoError(t, err)

	assert.Equal(t, []byte("png"), img)
	assert.Equal(t, "Bitcoin-Cash • 7d", fx.renderer.Last.Title)
	assert.Equal(t, domain.ColorUp, fx.renderer.Last.Color)
	assert.Equal(t, "bitcoin-cash", fx.market.LastCoinID)
	assert.Equal(t, "bitcoin-cash", fx.market.LastChartID)
	require.Len(t, fx.market.CoinCalls, 1)
	assert.Equal(t, domain.CoinQuery{}, fx.market.CoinCalls[0])
	assert.Equal(t, 0, fx.gen.Calls)
}

func TestChartImage_Errors(t *testing.T) {
	fx := newSnapshotFixture(true)
	_, err := fx.svc.ChartImage(context.Background(), "  ", "7")
	assert.ErrorIs(t, err, domain.ErrMissingCoinID)

	fx.market.CoinErr = &domain.UpstreamStatusError{Service: "coingecko", StatusCode: 404}
	_, err = fx.svc.ChartImage(context.Background(), "notarealcoin999", "7")
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "notarealcoin999", nf.CoinID)
	assert.Empty(t, fx.market.ChartCalls)

	fx.market.CoinErr = nil
	fx.market.Series = nil
	_, err = fx.svc.ChartImage(context.Background(), "bitcoin", "7")
	assert.ErrorIs(t, err, ErrNoPriceData)
}

func TestWindowTrend(t *testing.T) {
	changes := domain.PeriodChanges{
		domain.Period24h: f(1),
		domain.Period30d: f(-2),
	}

	assert.Equal(t, domain.DirectionDown, WindowTrend(changes, domain.Window{Days: 30}).Direction)
	assert.Equal(t, domain.DirectionUp, WindowTrend(changes, domain.Window{Days: 7}).Direction)
	assert.Equal(t, domain.DirectionUp, WindowTrend(changes, domain.Window{Days: 1}).Direction)
	assert.Equal(t, domain.DirectionUp, WindowTrend(changes, domain.Window{Max: true}).Direction)
	assert.Equal(t, domain.DirectionNeutral, WindowTrend(nil, domain.Window{Days: 7}).Direction)
}
