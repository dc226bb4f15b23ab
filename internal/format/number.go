// Package format renders loosely-typed upstream numbers as display strings.
package format

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NA is returned for absent or unparseable values.
const NA = "N/A"

var printer = message.NewPrinter(language.English)

// Parse converts a numeric value, a pointer to one, or a numeric string with "," grouping separators
// into a float64. It reports false for nil, NaN, infinities and anything that does not parse.
func Parse(value any) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case *float64:
		if v == nil {
			return 0, false
		}
		return finite(*v)
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case decimal.Decimal:
		return finite(v.InexactFloat64())
	case *decimal.Decimal:
		if v == nil {
			return 0, false
		}
		return finite(v.InexactFloat64())
	case json.Number:
		return fromString(v.String())
	case string:
		return fromString(v)
	case *string:
		if v == nil {
			return 0, false
		}
		return fromString(*v)
	default:
		return 0, false
	}
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func fromString(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" || strings.EqualFold(s, NA) {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return finite(d.InexactFloat64())
}

// Number formats value with thousands grouping and a fixed number of decimals.
// decimals <= 0 truncates toward zero and prints no decimal point. currency prefixes "$".
//
// Rounding works on the binary float, so 2.675 prints as "2.67" and ties go to even.
func Number(value any, decimals int, currency bool) string {
	f, ok := Parse(value)
	if !ok {
		return NA
	}

	var s string
	if decimals <= 0 {
		t := math.Trunc(f)
		if t == 0 {
			t = 0 // drop the sign of -0
		}
		s = printer.Sprintf("%.0f", t)
	} else {
		// strconv rounds the exact binary value; the printer only adds grouping.
		rounded, _ := strconv.ParseFloat(strconv.FormatFloat(f, 'f', decimals, 64), 64)
		s = printer.Sprintf("%."+strconv.Itoa(decimals)+"f", rounded)
	}

	if currency {
		return "$" + s
	}
	return s
}

// Percent is Number followed by "%". The sentinel is returned bare.
func Percent(value any, decimals int) string {
	s := Number(value, decimals, false)
	if s == NA {
		return NA
	}
	return s + "%"
}

// Currency is a shorthand for Number(value, decimals, true).
func Currency(value any, decimals int) string {
	return Number(value, decimals, true)
}
