package analytics

import (
	"encoding/json"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Forecast tuning
const (
	DefaultForecastHorizon = 30
	DefaultForecastWindow  = 90
	confidenceZ            = 1.96
)

// ForecastPoint is the predicted total revenue for one day
type ForecastPoint struct {
	Date  time.Time
	Total decimal.Decimal
	Lower decimal.Decimal
	Upper decimal.Decimal
}

// MarshalJSON renders the point with a day key and plain numbers
func (p ForecastPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date  string  `json:"date"`
		Total float64 `json:"total"`
		Lower float64 `json:"lower"`
		Upper float64 `json:"upper"`
	}{p.Date.Format(DateLayout), p.Total.InexactFloat64(), p.Lower.InexactFloat64(), p.Upper.InexactFloat64()})
}

// BuildForecast predicts horizon days after the last row. It fits a least
// squares line through the trailing window of daily totals (missing days count
// as zero) and scales it by day-of-week factors. Bounds are the prediction
// plus or minus 1.96 residual standard deviations; every value is clamped at 0.
func BuildForecast(daily []DailyRevenue, window, horizon int) []ForecastPoint {
	if len(daily) == 0 || horizon <= 0 {
		return []ForecastPoint{}
	}
	if window <= 0 {
		window = DefaultForecastWindow
	}

	last := truncateDay(daily[len(daily)-1].Date)
	first := last.AddDate(0, 0, -(window - 1))
	if start := truncateDay(daily[0].Date); start.After(first) {
		first = start
	}

	totals := make(map[string]float64, len(daily))
	for _, d := range daily {
		totals[truncateDay(d.Date).Format(DateLayout)] = d.Total.InexactFloat64()
	}

	n := int(last.Sub(first).Hours()/24) + 1
	ys := make([]float64, n)
	days := make([]time.Time, n)
	for i := 0; i < n; i++ {
		days[i] = first.AddDate(0, 0, i)
		ys[i] = totals[days[i].Format(DateLayout)]
	}

	slope, intercept := fitLine(ys)
	factors := weekdayFactors(days, ys, slope, intercept)

	var sq float64
	for i, y := range ys {
		r := y - predict(slope, intercept, float64(i), factors[days[i].Weekday()])
		sq += r * r
	}
	sigma := 0.0
	if n > 2 {
		sigma = math.Sqrt(sq / float64(n-2))
	}

	out := make([]ForecastPoint, 0, horizon)
	for k := 1; k <= horizon; k++ {
		day := last.AddDate(0, 0, k)
		v := predict(slope, intercept, float64(n-1+k), factors[day.Weekday()])
		out = append(out, ForecastPoint{
			Date:  day,
			Total: money(math.Max(0, v)),
			Lower: money(math.Max(0, v-confidenceZ*sigma)),
			Upper: money(math.Max(0, v+confidenceZ*sigma)),
		})
	}
	return out
}

func predict(slope, intercept, x, factor float64) float64 {
	return (intercept + slope*x) * factor
}

// fitLine returns the least squares slope and intercept of ys over x = 0..n-1
func fitLine(ys []float64) (slope, intercept float64) {
	n := float64(len(ys))
	if n == 0 {
		return 0, 0
	}
	var sx, sy, sxy, sxx float64
	for i, y := range ys {
		x := float64(i)
		sx += x
		sy += y
		sxy += x * y
		sxx += x * x
	}
	den := n*sxx - sx*sx
	if den == 0 {
		return 0, sy / n
	}
	slope = (n*sxy - sx*sy) / den
	intercept = (sy - slope*sx) / n
	return slope, intercept
}

// weekdayFactors is, per weekday, actual revenue over trend revenue.
// Weekdays with no trend signal get 1.
func weekdayFactors(days []time.Time, ys []float64, slope, intercept float64) [7]float64 {
	var actual, trend [7]float64
	for i, y := range ys {
		wd := days[i].Weekday()
		actual[wd] += y
		trend[wd] += intercept + slope*float64(i)
	}
	var f [7]float64
	for wd := range f {
		if trend[wd] > 0 {
			f[wd] = actual[wd] / trend[wd]
		} else {
			f[wd] = 1
		}
	}
	return f
}

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}
