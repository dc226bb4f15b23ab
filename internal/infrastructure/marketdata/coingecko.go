package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/vitos/coin_dashboard/internal/domain"
	"github.com/vitos/coin_dashboard/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

const (
	CoinGeckoBaseURL = "https://api.coingecko.com/api/v3"
	serviceName      = "coingecko"
	vsCurrency       = "usd"
)

type Options struct {
	BaseURL        string
	APIKey         string
	CoinTimeout    time.Duration
	RefreshTimeout time.Duration
	ChartTimeout   time.Duration
}

// CoinGeckoAdapter implements domain.MarketData against the public CoinGecko REST API.
type CoinGeckoAdapter struct {
	opts    Options
	client  *http.Client
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewCoinGeckoAdapter(opts Options, m *metrics.Metrics, logger *zap.Logger) *CoinGeckoAdapter {
	if opts.BaseURL == "" {
		opts.BaseURL = CoinGeckoBaseURL
	}
	if opts.CoinTimeout <= 0 {
		opts.CoinTimeout = 15 * time.Second
	}
	if opts.RefreshTimeout <= 0 {
		opts.RefreshTimeout = 10 * time.Second
	}
	if opts.ChartTimeout <= 0 {
		opts.ChartTimeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CoinGeckoAdapter{
		opts:    opts,
		client:  &http.Client{},
		metrics: m,
		logger:  logger,
	}
}

// --- REST API ---

func (c *CoinGeckoAdapter) sendRequest(ctx context.Context, endpoint, path string, params url.Values, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if params == nil {
		params = url.Values{}
	}
	if c.opts.APIKey != "" {
		params.Set("x_cg_pro_api_key", c.opts.APIKey)
	}

	fullURL := strings.TrimRight(c.opts.BaseURL, "/") + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.ObserveUpstream(serviceName, endpoint, 0, time.Since(start))
		return nil, fmt.Errorf("%w: coingecko %s: %v", domain.ErrUpstreamUnavailable, endpoint, err)
	}
	defer resp.Body.Close()
	c.metrics.ObserveUpstream(serviceName, endpoint, resp.StatusCode, time.Since(start))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: coingecko %s: read body: %v", domain.ErrUpstreamUnavailable, endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(respBody)
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		return nil, &domain.UpstreamStatusError{Service: serviceName, StatusCode: resp.StatusCode, Body: snippet}
	}

	return respBody, nil
}

type currencyMap map[string]*float64

func (m currencyMap) usd() *float64 {
	if m == nil {
		return nil
	}
	return m[vsCurrency]
}

type coinResponse struct {
	ID            string   `json:"id"`
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	MarketCapRank *float64 `json:"market_cap_rank"`
	Image         *struct {
		Large string `json:"large"`
	} `json:"image"`
	Description map[string]*string `json:"description"`
	Links       *struct {
		Homepage []*string `json:"homepage"`
	} `json:"links"`
	MarketData    *marketDataResponse `json:"market_data"`
	CommunityData *struct {
		TwitterFollowers  *float64 `json:"twitter_followers"`
		RedditSubscribers *float64 `json:"reddit_subscribers"`
	} `json:"community_data"`
	DeveloperData *struct {
		Stars       *float64 `json:"stars"`
		Forks       *float64 `json:"forks"`
		TotalIssues *float64 `json:"total_issues"`
	} `json:"developer_data"`
}

type marketDataResponse struct {
	CurrentPrice          currencyMap `json:"current_price"`
	MarketCap             currencyMap `json:"market_cap"`
	FullyDilutedValuation currencyMap `json:"fully_diluted_valuation"`
	TotalVolume           currencyMap `json:"total_volume"`
	High24h               currencyMap `json:"high_24h"`
	Low24h                currencyMap `json:"low_24h"`
	ATH                   currencyMap `json:"ath"`
	ATL                   currencyMap `json:"atl"`
	CirculatingSupply     *float64    `json:"circulating_supply"`
	TotalSupply           *float64    `json:"total_supply"`
	MaxSupply             *float64    `json:"max_supply"`

	Change1h   currencyMap `json:"price_change_percentage_1h_in_currency"`
	Change24h  currencyMap `json:"price_change_percentage_24h_in_currency"`
	Change7d   currencyMap `json:"price_change_percentage_7d_in_currency"`
	Change14d  currencyMap `json:"price_change_percentage_14d_in_currency"`
	Change30d  currencyMap `json:"price_change_percentage_30d_in_currency"`
	Change60d  currencyMap `json:"price_change_percentage_60d_in_currency"`
	Change200d currencyMap `json:"price_change_percentage_200d_in_currency"`
	Change1y   currencyMap `json:"price_change_percentage_1y_in_currency"`
}

// GetCoin fetches /coins/{id}. A response without market_data is reported as domain.ErrIncompleteData.
func (c *CoinGeckoAdapter) GetCoin(ctx context.Context, coinID string, q domain.CoinQuery) (*domain.CoinRecord, error) {
	params := url.Values{}
	params.Set("localization", "false")
	params.Set("tickers", "false")
	params.Set("market_data", "true")
	params.Set("community_data", fmt.Sprintf("%t", q.Community))
	params.Set("developer_data", fmt.Sprintf("%t", q.Developer))
	params.Set("sparkline", "false")

	timeout := c.opts.CoinTimeout
	if !q.Community && !q.Developer {
		timeout = c.opts.RefreshTimeout
	}

	body, err := c.sendRequest(ctx, "coin", "/coins/"+url.PathEscape(coinID), params, timeout)
	if err != nil {
		return nil, err
	}

	var result coinResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode coin %q: %w", coinID, err)
	}
	if result.MarketData == nil {
		return nil, fmt.Errorf("coin %q: market_data missing: %w", coinID, domain.ErrIncompleteData)
	}

	return toCoinRecord(coinID, &result), nil
}

func toCoinRecord(coinID string, r *coinResponse) *domain.CoinRecord {
	md := r.MarketData
	rec := &domain.CoinRecord{
		ID:                coinID,
		Name:              r.Name,
		Symbol:            r.Symbol,
		MarketCapRank:     r.MarketCapRank,
		Price:             md.CurrentPrice.usd(),
		MarketCap:         md.MarketCap.usd(),
		FDV:               md.FullyDilutedValuation.usd(),
		Volume24h:         md.TotalVolume.usd(),
		High24h:           md.High24h.usd(),
		Low24h:            md.Low24h.usd(),
		ATH:               md.ATH.usd(),
		ATL:               md.ATL.usd(),
		CirculatingSupply: md.CirculatingSupply,
		TotalSupply:       md.TotalSupply,
		MaxSupply:         md.MaxSupply,
		Changes: domain.PeriodChanges{
			domain.Period1h:   md.Change1h.usd(),
			domain.Period24h:  md.Change24h.usd(),
			domain.Period7d:   md.Change7d.usd(),
			domain.Period14d:  md.Change14d.usd(),
			domain.Period30d:  md.Change30d.usd(),
			domain.Period60d:  md.Change60d.usd(),
			domain.Period200d: md.Change200d.usd(),
			domain.Period1y:   md.Change1y.usd(),
		},
	}

	if r.Image != nil {
		rec.LogoURL = r.Image.Large
	}
	if en := r.Description["en"]; en != nil {
		rec.Description = *en
	}
	if r.Links != nil && len(r.Links.Homepage) > 0 && r.Links.Homepage[0] != nil {
		rec.Homepage = *r.Links.Homepage[0]
	}
	if r.CommunityData != nil {
		rec.Community = domain.CommunityStats{
			TwitterFollowers:  r.CommunityData.TwitterFollowers,
			RedditSubscribers: r.CommunityData.RedditSubscribers,
		}
	}
	if r.DeveloperData != nil {
		rec.Developer = domain.DeveloperStats{
			Stars:       r.DeveloperData.Stars,
			Forks:       r.DeveloperData.Forks,
			TotalIssues: r.DeveloperData.TotalIssues,
		}
	}
	return rec
}

// marketChartResponse is the /market_chart payload: each entry is [timestamp_ms, value].
type marketChartResponse struct {
	Prices [][]*float64 `json:"prices"`
}

// GetMarketChart fetches the USD price series for the window. Entries are sorted by time;
// malformed and duplicate timestamps are dropped.
func (c *CoinGeckoAdapter) GetMarketChart(ctx context.Context, coinID string, w domain.Window) (domain.PriceSeries, error) {
	params := url.Values{}
	params.Set("vs_currency", vsCurrency)
	params.Set("days", w.QueryValue())

	body, err := c.sendRequest(ctx, "market_chart", "/coins/"+url.PathEscape(coinID)+"/market_chart", params, c.opts.ChartTimeout)
	if err != nil {
		return nil, err
	}

	var result marketChartResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode market chart %q: %w", coinID, err)
	}

	series := make(domain.PriceSeries, 0, len(result.Prices))
	for _, p := range result.Prices {
		if len(p) < 2 || p[0] == nil || p[1] == nil {
			continue
		}
		series = append(series, domain.PricePoint{
			Time:  time.UnixMilli(int64(*p[0])).UTC(),
			Price: *p[1],
		})
	}

	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Time.Before(series[j].Time)
	})
	out := series[:0]
	for _, p := range series {
		if len(out) > 0 && !p.Time.After(out[len(out)-1].Time) {
			continue
		}
		out = append(out, p)
	}

	return out, nil
}
