package domain

import "math"

type Direction string

const (
	DirectionUp      Direction = "up"
	DirectionDown    Direction = "down"
	DirectionNeutral Direction = "neutral"
)

const (
	ColorUp      = "#39FF14"
	ColorDown    = "#ff5252"
	ColorNeutral = "#a7ffce"
)

// Trend is the display classification of one percentage change.
type Trend struct {
	Color     string
	Glyph     string // "▲", "▼" or "" for neutral
	Direction Direction
}

var (
	TrendUp      = Trend{Color: ColorUp, Glyph: "▲", Direction: DirectionUp}
	TrendDown    = Trend{Color: ColorDown, Glyph: "▼", Direction: DirectionDown}
	TrendNeutral = Trend{Color: ColorNeutral, Glyph: "", Direction: DirectionNeutral}
)

// Classify maps a signed percentage change to a trend. Zero counts as up; nil and NaN are neutral.
func Classify(change *float64) Trend {
	if change == nil || math.IsNaN(*change) {
		return TrendNeutral
	}
	if *change >= 0 {
		return TrendUp
	}
	return TrendDown
}
