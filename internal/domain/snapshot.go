package domain

import "time"

// Snapshot is the composed payload of a full coin lookup.
type Snapshot struct {
	CoinID       string
	Name         string
	Symbol       string
	Window       Window
	Trend        Trend
	Summary      string
	ChangesTable string
	ChartHTML    string
	HTML         string
	GeneratedAt  time.Time
}

// ChartRefresh is the payload of a chart-only refresh.
type ChartRefresh struct {
	CoinID       string
	Window       Window
	Trend        Trend
	ChangesTable string
	ChartHTML    string
}
