package domain

import (
	"strconv"
	"strings"
)

const DefaultWindowDays = 7

// Window is the requested chart lookback: either the full history or a positive number of days.
type Window struct {
	Max  bool
	Days int
}

// ParseWindow accepts "max" or a positive integer. Anything else falls back to 7 days.
func ParseWindow(raw string) Window {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, "max") {
		return Window{Max: true}
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days <= 0 {
		return Window{Days: DefaultWindowDays}
	}
	return Window{Days: days}
}

// QueryValue is the value of the upstream "days" parameter.
func (w Window) QueryValue() string {
	if w.Max {
		return "max"
	}
	return strconv.Itoa(w.Days)
}

func (w Window) String() string {
	return w.QueryValue()
}

var windowLabels = map[int]string{
	1:   "24h",
	7:   "7d",
	30:  "1m",
	90:  "3m",
	365: "1y",
}

// Label is the human period name used in chart titles.
func (w Window) Label() string {
	if w.Max {
		return "Max"
	}
	if l, ok := windowLabels[w.Days]; ok {
		return l
	}
	return strconv.Itoa(w.Days) + " Days"
}

// DateLayout picks the tick label layout for the window length.
func (w Window) DateLayout() string {
	switch {
	case w.Max || w.Days > 90:
		return "Jan-06"
	case w.Days == 1:
		return "15:04"
	case w.Days <= 7:
		return "02 Jan"
	default:
		return "02-Jan"
	}
}

// ChangePeriod returns the upstream change period matching the window, if the upstream has one.
func (w Window) ChangePeriod() (Period, bool) {
	if w.Max {
		return "", false
	}
	p := Period(strconv.Itoa(w.Days) + "d")
	switch p {
	case Period7d, Period14d, Period30d, Period60d, Period200d:
		return p, true
	}
	return "", false
}
