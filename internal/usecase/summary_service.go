package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/vitos/coin_dashboard/internal/domain"
	"github.com/vitos/coin_dashboard/internal/format"
	"github.com/vitos/coin_dashboard/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

const (
	MsgSummaryDisabled = "AI analysis disabled (API key not configured)."
	msgSummaryFailed   = "AI analysis unavailable due to an error: "

	summaryErrorLimit = 100
	descriptionLimit  = 800
)

const summaryInstruction = `You are a crypto market analyst writing briefings for executives.
Write concise, structured business English. Do not use hashtags or markdown.
Base the analysis on the market data supplied by the user and cover, in order:
1. Key Facts: what the asset is.
2. Unique Value Proposition: what sets it apart.
3. Recent Market Behavior: price action, volume and range.
4. Bullish Scenario.
5. Bearish Scenario.
6. On-chain/Developer Activity, when figures are available.
7. Community Strength, when significant.
8. Practical Tips: one for beginners, one for experienced users.
9. Official Website.
10. Investment Perspective: a balanced outlook with risk management notes.

End with this disclaimer verbatim:
This information should not be considered financial advice. Always conduct your own research and consult with qualified financial professionals before making any investment or financial decisions. Past performance does not guarantee future results, and all investments carry risk of loss.`

// SummaryRequest carries what the narrative summary is built from.
type SummaryRequest struct {
	Record    *domain.CoinRecord
	Name      string
	Symbol    string
	Website   string
	Timestamp string
}

// SummaryService asks the text-generation provider for a narrative summary of a coin.
// A nil generator disables the feature.
type SummaryService struct {
	generator domain.TextGenerator
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewSummaryService(generator domain.TextGenerator, m *metrics.Metrics, logger *zap.Logger) *SummaryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryService{
		generator: generator,
		metrics:   m,
		logger:    logger,
	}
}

func (s *SummaryService) Enabled() bool {
	return s != nil && s.generator != nil
}

// Summarize always returns displayable text. Failures are folded into a short notice.
func (s *SummaryService) Summarize(ctx context.Context, req SummaryRequest) string {
	if !s.Enabled() {
		s.metrics.SummaryOutcome("disabled")
		return MsgSummaryDisabled
	}

	text, err := s.generator.Generate(ctx, summaryInstruction, BuildSummaryPrompt(req))
	if err != nil {
		s.logger.Error("Summary generation failed", zap.String("coin", req.Name), zap.Error(err))
		s.metrics.SummaryOutcome("error")
		return msgSummaryFailed + truncateRunes(err.Error(), summaryErrorLimit)
	}
	s.metrics.SummaryOutcome("ok")
	return strings.TrimSpace(text)
}

// BuildSummaryPrompt lays out the coin's figures for the generator.
func BuildSummaryPrompt(req SummaryRequest) string {
	rec := req.Record
	if rec == nil {
		rec = &domain.CoinRecord{}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze %s (%s) as of %s.\n", req.Name, req.Symbol, req.Timestamp)
	fmt.Fprintf(&b, "Current Price: %s\n", format.Currency(rec.Price, 4))
	fmt.Fprintf(&b, "Market Cap: %s\n", format.Currency(rec.MarketCap, 0))
	fmt.Fprintf(&b, "FDV: %s\n", format.Currency(rec.FDV, 0))
	fmt.Fprintf(&b, "24h Vol: %s\n", format.Currency(rec.Volume24h, 0))
	fmt.Fprintf(&b, "24h Change: %s\n", format.Percent(rec.Changes.Get(domain.Period24h), 2))
	fmt.Fprintf(&b, "24h High: %s | 24h Low: %s\n", format.Currency(rec.High24h, 4), format.Currency(rec.Low24h, 4))
	fmt.Fprintf(&b, "Circulating Supply: %s | Total Supply: %s | Max Supply: %s\n",
		format.Number(rec.CirculatingSupply, 0, false),
		format.Number(rec.TotalSupply, 0, false),
		format.Number(rec.MaxSupply, 0, false))
	fmt.Fprintf(&b, "Dev stars: %s | Forks: %s | Issues: %s\n",
		format.Number(rec.Developer.Stars, 0, false),
		format.Number(rec.Developer.Forks, 0, false),
		format.Number(rec.Developer.TotalIssues, 0, false))
	fmt.Fprintf(&b, "Twitter followers: %s | Reddit subscribers: %s\n",
		format.Number(rec.Community.TwitterFollowers, 0, false),
		format.Number(rec.Community.RedditSubscribers, 0, false))
	fmt.Fprintf(&b, "Description: %s\n", truncateRunes(rec.Description, descriptionLimit))
	fmt.Fprintf(&b, "Website: %s\n", req.Website)
	return b.String()
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
