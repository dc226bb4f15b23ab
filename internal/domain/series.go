package domain

import "time"

type PricePoint struct {
	Time  time.Time
	Price float64
}

// PriceSeries is ordered by strictly increasing time.
type PriceSeries []PricePoint
