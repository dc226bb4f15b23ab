package usecase

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"time"
	_ "time/tzdata" // display zone must resolve on hosts without zoneinfo

	"github.com/vitos/coin_dashboard/internal/domain"
	"github.com/vitos/coin_dashboard/internal/format"
	"github.com/vitos/coin_dashboard/internal/view"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	TimestampLayout = "02-01-2006 15:04:05"
	DefaultLocation = "Europe/Amsterdam"
	PlaceholderLogo = "https://placehold.co/64x64/2a2f32/39FF14?text=N/A"
)

// SnapshotService composes the coin snapshot and the chart refresh payloads.
type SnapshotService struct {
	market   domain.MarketData
	charts   *ChartService
	summary  *SummaryService
	location *time.Location
	logger   *zap.Logger
	timeNow  func() time.Time // For testing
}

func NewSnapshotService(market domain.MarketData, charts *ChartService, summary *SummaryService, loc *time.Location, logger *zap.Logger) *SnapshotService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if summary == nil {
		summary = NewSummaryService(nil, nil, logger)
	}
	return &SnapshotService{
		market:   market,
		charts:   charts,
		summary:  summary,
		location: loc,
		logger:   logger,
		timeNow:  time.Now,
	}
}

// NormalizeCoinID trims and lower-cases an identifier. Empty input is rejected.
func NormalizeCoinID(raw string) (string, error) {
	id := strings.ToLower(strings.TrimSpace(raw))
	if id == "" {
		return "", domain.ErrMissingCoinID
	}
	return id, nil
}

func (s *SnapshotService) BuildSnapshot(ctx context.Context, coinID, rawWindow string) (*domain.Snapshot, error) {
	id, err := NormalizeCoinID(coinID)
	if err != nil {
		return nil, err
	}
	w := domain.ParseWindow(rawWindow)

	rec, err := s.fetchCoin(ctx, id, domain.CoinQuery{Community: true, Developer: true})
	if err != nil {
		return nil, err
	}

	name := displayName(rec, id)
	symbol := strings.ToUpper(rec.Symbol)
	change24h := rec.Changes.Get(domain.Period24h)
	trend := domain.Classify(change24h)
	now := s.timeNow().In(s.location)
	stamp := now.Format(TimestampLayout)
	website := rec.Homepage
	if website == "" {
		website = "#"
	}

	// The chart request runs alongside the summary generation.
	var (
		wg    sync.WaitGroup
		chart template.HTML
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		chart = s.charts.Build(ctx, id, name, rawWindow, trend.Color)
	}()
	summary := s.summary.Summarize(ctx, SummaryRequest{
		Record:    rec,
		Name:      name,
		Symbol:    symbol,
		Website:   website,
		Timestamp: stamp,
	})
	wg.Wait()

	table, err := BuildChangesTable(rec.Changes)
	if err != nil {
		return nil, fmt.Errorf("render changes table: %w", err)
	}

	logo := rec.LogoURL
	if logo == "" {
		logo = PlaceholderLogo
	}
	websiteLabel := website
	if website == "#" {
		websiteLabel = format.NA
	}

	page, err := view.Snapshot(view.SnapshotPage{
		Timestamp:    stamp,
		LogoURL:      logo,
		Name:         name,
		Symbol:       symbol,
		Rank:         format.Number(rec.MarketCapRank, 0, false),
		MarketCap:    format.Currency(rec.MarketCap, 0),
		Price:        format.Currency(rec.Price, 4),
		Direction:    string(trend.Direction),
		Glyph:        trend.Glyph,
		Change24h:    format.Percent(change24h, 2),
		Summary:      summary,
		Website:      website,
		WebsiteLabel: websiteLabel,
		Stats:        snapshotStats(rec),
		ChangesTable: table,
		Chart:        chart,
	})
	if err != nil {
		return nil, fmt.Errorf("render snapshot: %w", err)
	}

	s.logger.Info("Snapshot built",
		zap.String("coin", id),
		zap.String("window", w.String()),
		zap.String("trend", string(trend.Direction)))

	return &domain.Snapshot{
		CoinID:       id,
		Name:         name,
		Symbol:       symbol,
		Window:       w,
		Trend:        trend,
		Summary:      summary,
		ChangesTable: string(table),
		ChartHTML:    string(chart),
		HTML:         string(page),
		GeneratedAt:  now,
	}, nil
}

// RefreshChart rebuilds the chart and change table for a new window. It never calls the text generator.
func (s *SnapshotService) RefreshChart(ctx context.Context, coinID, rawWindow string) (*domain.ChartRefresh, error) {
	id, err := NormalizeCoinID(coinID)
	if err != nil {
		return nil, err
	}
	w := domain.ParseWindow(rawWindow)

	rec, err := s.fetchCoin(ctx, id, domain.CoinQuery{})
	if err != nil {
		return nil, err
	}

	trend := WindowTrend(rec.Changes, w)
	chart := s.charts.Build(ctx, id, displayName(rec, id), rawWindow, trend.Color)
	table, err := BuildChangesTable(rec.Changes)
	if err != nil {
		return nil, fmt.Errorf("render changes table: %w", err)
	}

	return &domain.ChartRefresh{
		CoinID:       id,
		Window:       w,
		Trend:        trend,
		ChangesTable: string(table),
		ChartHTML:    string(chart),
	}, nil
}

// ChartImage renders the raw PNG chart for a coin, colored by the window trend.
// Unlike the HTML paths it returns chart failures instead of degrading to a placeholder.
func (s *SnapshotService) ChartImage(ctx context.Context, coinID, rawWindow string) ([]byte, error) {
	id, err := NormalizeCoinID(coinID)
	if err != nil {
		return nil, err
	}

	rec, err := s.fetchCoin(ctx, id, domain.CoinQuery{})
	if err != nil {
		return nil, err
	}

	trend := WindowTrend(rec.Changes, domain.ParseWindow(rawWindow))
	return s.charts.Render(ctx, id, displayName(rec, id), rawWindow, trend.Color)
}

// WindowTrend classifies the change matching the window, falling back to 24h.
func WindowTrend(changes domain.PeriodChanges, w domain.Window) domain.Trend {
	if p, ok := w.ChangePeriod(); ok {
		if v := changes.Get(p); v != nil {
			return domain.Classify(v)
		}
	}
	return domain.Classify(changes.Get(domain.Period24h))
}

func (s *SnapshotService) fetchCoin(ctx context.Context, id string, q domain.CoinQuery) (*domain.CoinRecord, error) {
	rec, err := s.market.GetCoin(ctx, id, q)
	if err != nil {
		var statusErr *domain.UpstreamStatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			s.logger.Info("Coin not found", zap.String("coin", id))
			return nil, &domain.NotFoundError{CoinID: id}
		}
		s.logger.Error("Coin request failed", zap.String("coin", id), zap.Error(err))
		return nil, fmt.Errorf("fetch coin %q: %w", id, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("fetch coin %q: %w", id, domain.ErrIncompleteData)
	}
	return rec, nil
}

func displayName(rec *domain.CoinRecord, id string) string {
	if rec.Name != "" {
		return rec.Name
	}
	return cases.Title(language.Und).String(id)
}

func snapshotStats(rec *domain.CoinRecord) []view.Stat {
	maxSupply := "∞"
	if rec.MaxSupply != nil && *rec.MaxSupply != 0 {
		maxSupply = format.Number(rec.MaxSupply, 0, false)
	}
	return []view.Stat{
		{Label: "FDV", Value: format.Currency(rec.FDV, 0)},
		{Label: "24h Vol", Value: format.Currency(rec.Volume24h, 0)},
		{Label: "Circulating", Value: format.Number(rec.CirculatingSupply, 0, false)},
		{Label: "Total Supply", Value: format.Number(rec.TotalSupply, 0, false)},
		{Label: "Max Supply", Value: maxSupply},
		{Label: "24h High", Value: format.Currency(rec.High24h, 4)},
		{Label: "24h Low", Value: format.Currency(rec.Low24h, 4)},
		{Label: "ATH", Value: format.Currency(rec.ATH, 4)},
		{Label: "ATL", Value: format.Currency(rec.ATL, 4)},
		{Label: "Twitter", Value: format.Number(rec.Community.TwitterFollowers, 0, false)},
		{Label: "Reddit", Value: format.Number(rec.Community.RedditSubscribers, 0, false)},
		{Label: "Dev Stars", Value: format.Number(rec.Developer.Stars, 0, false)},
	}
}
