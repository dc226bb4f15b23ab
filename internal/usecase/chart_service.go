package usecase

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"math"

	"github.com/vitos/coin_dashboard/internal/domain"
	"github.com/vitos/coin_dashboard/internal/infrastructure/metrics"
	"github.com/vitos/coin_dashboard/internal/view"
	"go.uber.org/zap"
)

const MaxChartTicks = 5

var ErrNoPriceData = errors.New("no price data available")

const (
	MsgChartUnavailable = "Chart data temporarily unavailable (API Error)."
	MsgChartNoData      = "No price data available for chart."
	MsgChartFailed      = "Error generating chart."
)

// ChartService turns a coin's price history into an inline chart fragment.
// Build never fails: every problem degrades to a short notice in place of the image.
type ChartService struct {
	market   domain.MarketData
	renderer domain.ChartRenderer
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewChartService(market domain.MarketData, renderer domain.ChartRenderer, m *metrics.Metrics, logger *zap.Logger) *ChartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChartService{
		market:   market,
		renderer: renderer,
		metrics:  m,
		logger:   logger,
	}
}

func (s *ChartService) Build(ctx context.Context, coinID, coinName, rawWindow, color string) template.HTML {
	img, err := s.Render(ctx, coinID, coinName, rawWindow, color)
	log := s.logger.With(zap.String("coin", coinID), zap.String("window", rawWindow))

	if err != nil {
		var statusErr *domain.UpstreamStatusError
		switch {
		case errors.Is(err, ErrNoPriceData):
			s.metrics.ChartOutcome("no_data")
			return view.ChartMessage(MsgChartNoData)
		case errors.Is(err, domain.ErrUpstreamUnavailable), errors.As(err, &statusErr):
			log.Warn("Chart data request failed", zap.Error(err))
			s.metrics.ChartOutcome("upstream_error")
			return view.ChartMessage(MsgChartUnavailable)
		default:
			log.Error("Chart rendering failed", zap.Error(err))
			s.metrics.ChartOutcome("render_error")
			return view.ChartMessage(MsgChartFailed)
		}
	}

	out, err := view.ChartImage(coinName+" Price Chart", img)
	if err != nil {
		log.Error("Chart fragment failed", zap.Error(err))
		s.metrics.ChartOutcome("render_error")
		return view.ChartMessage(MsgChartFailed)
	}
	s.metrics.ChartOutcome("ok")
	return out
}

// Render fetches the price history for the window and draws it as a PNG.
func (s *ChartService) Render(ctx context.Context, coinID, coinName, rawWindow, color string) ([]byte, error) {
	w := domain.ParseWindow(rawWindow)

	series, err := s.market.GetMarketChart(ctx, coinID, w)
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, ErrNoPriceData
	}

	layout := w.DateLayout()
	idx := TickIndices(len(series), MaxChartTicks)
	ticks := make([]domain.ChartTick, 0, len(idx))
	for _, i := range idx {
		ticks = append(ticks, domain.ChartTick{Time: series[i].Time, Label: series[i].Time.Format(layout)})
	}

	return s.render(domain.ChartSpec{
		Title:  fmt.Sprintf("%s • %s", coinName, w.Label()),
		Color:  color,
		Points: series,
		Ticks:  ticks,
	})
}

func (s *ChartService) render(spec domain.ChartSpec) (img []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("chart renderer panic: %v", r)
		}
	}()
	return s.renderer.RenderLine(spec)
}

// TickIndices picks at most limit evenly spaced indices over [0, n-1], both ends included.
// Short series get every index.
func TickIndices(n, limit int) []int {
	if n <= 0 || limit <= 0 {
		return nil
	}
	if n <= limit {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	if limit == 1 {
		return []int{0}
	}
	idx := make([]int, limit)
	step := float64(n-1) / float64(limit-1)
	for i := range idx {
		idx[i] = int(math.Round(float64(i) * step))
	}
	return idx
}
