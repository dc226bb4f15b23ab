package domain

// Period is a lookback label of an upstream percentage change field.
type Period string

const (
	Period1h   Period = "1h"
	Period24h  Period = "24h"
	Period7d   Period = "7d"
	Period14d  Period = "14d"
	Period30d  Period = "30d"
	Period60d  Period = "60d"
	Period200d Period = "200d"
	Period1y   Period = "1y"
)

// TablePeriods is the fixed column order of the period-change table.
var TablePeriods = []Period{Period1h, Period24h, Period7d, Period14d, Period30d, Period1y}

// PeriodChanges maps a period to its USD percentage change. Missing keys and nil values are absent.
type PeriodChanges map[Period]*float64

func (c PeriodChanges) Get(p Period) *float64 {
	if c == nil {
		return nil
	}
	return c[p]
}

// CoinRecord is the parsed upstream coin record. Nil pointers mean the field was absent.
type CoinRecord struct {
	ID            string
	Name          string
	Symbol        string
	Description   string
	Homepage      string
	LogoURL       string
	MarketCapRank *float64

	Price             *float64
	MarketCap         *float64
	FDV               *float64
	Volume24h         *float64
	High24h           *float64
	Low24h            *float64
	ATH               *float64
	ATL               *float64
	CirculatingSupply *float64
	TotalSupply       *float64
	MaxSupply         *float64
	Changes           PeriodChanges

	Community CommunityStats
	Developer DeveloperStats
}

type CommunityStats struct {
	TwitterFollowers  *float64
	RedditSubscribers *float64
}

type DeveloperStats struct {
	Stars       *float64
	Forks       *float64
	TotalIssues *float64
}
