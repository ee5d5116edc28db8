package analytics

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the day key used in revenue rows
const DateLayout = "2006-01-02"

// RevenueEntry is revenue of one branch on one day
type RevenueEntry struct {
	Day      time.Time
	BranchID string
	Amount   decimal.Decimal
}

// DailyRevenue is one day of revenue across branches
type DailyRevenue struct {
	Date     time.Time
	ByBranch map[string]decimal.Decimal
	Total    decimal.Decimal
}

// MarshalJSON flattens branches into top-level keys:
// {"date":"2026-10-01","SMVAL-B-NCR":1200,"total":1200}
func (d DailyRevenue) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.ByBranch)+2)
	for b, amt := range d.ByBranch {
		out[b] = amt.Round(2).InexactFloat64()
	}
	out["date"] = d.Date.Format(DateLayout)
	out["total"] = d.Total.Round(2).InexactFloat64()
	return json.Marshal(out)
}

// MonthlyRevenue is one calendar month of revenue across branches
type MonthlyRevenue struct {
	Year     int
	Month    time.Month
	ByBranch map[string]decimal.Decimal
	Total    decimal.Decimal
}

// Key returns the YYYY-MM label
func (m MonthlyRevenue) Key() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// chartKeys are the short series names the dashboard charts use
var chartKeys = map[string]string{
	"SMVAL-B-NCR": "SMVal",
	"VAL-B-NCR":   "Val",
	"SMGRA-B-NCR": "SMGra",
}

// MarshalJSON emits month and total, every branch id, and the chart
// aliases of the known branches (always present, zero when absent).
func (m MonthlyRevenue) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.ByBranch)+len(chartKeys)+2)
	for _, alias := range chartKeys {
		out[alias] = 0.0
	}
	for b, amt := range m.ByBranch {
		v := amt.Round(2).InexactFloat64()
		out[b] = v
		if alias, ok := chartKeys[b]; ok {
			out[alias] = v
		}
	}
	out["month"] = m.Key()
	out["total"] = m.Total.Round(2).InexactFloat64()
	return json.Marshal(out)
}

// InLocation returns entries with each day read in loc, so revenue lands on
// the shop's calendar date rather than the UTC one
func InLocation(entries []RevenueEntry, loc *time.Location) []RevenueEntry {
	if loc == nil {
		return entries
	}
	out := make([]RevenueEntry, len(entries))
	for i, e := range entries {
		e.Day = e.Day.In(loc)
		out[i] = e
	}
	return out
}

// BuildDailyRevenue groups entries by the calendar day of e.Day in its own
// location, sorted by date
func BuildDailyRevenue(entries []RevenueEntry) []DailyRevenue {
	byDay := make(map[string]*DailyRevenue)
	for _, e := range entries {
		day := truncateDay(e.Day)
		key := day.Format(DateLayout)
		row, ok := byDay[key]
		if !ok {
			row = &DailyRevenue{Date: day, ByBranch: make(map[string]decimal.Decimal), Total: decimal.Zero}
			byDay[key] = row
		}
		row.ByBranch[e.BranchID] = row.ByBranch[e.BranchID].Add(e.Amount)
		row.Total = row.Total.Add(e.Amount)
	}

	out := make([]DailyRevenue, 0, len(byDay))
	for _, row := range byDay {
		for b, amt := range row.ByBranch {
			row.ByBranch[b] = amt.Round(2)
		}
		row.Total = row.Total.Round(2)
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// BuildMonthlyRevenue rolls daily rows up into calendar months
func BuildMonthlyRevenue(daily []DailyRevenue) []MonthlyRevenue {
	byMonth := make(map[int]*MonthlyRevenue)
	for _, d := range daily {
		key := d.Date.Year()*100 + int(d.Date.Month())
		row, ok := byMonth[key]
		if !ok {
			row = &MonthlyRevenue{Year: d.Date.Year(), Month: d.Date.Month(), ByBranch: make(map[string]decimal.Decimal)}
			byMonth[key] = row
		}
		for b, amt := range d.ByBranch {
			row.ByBranch[b] = row.ByBranch[b].Add(amt)
		}
		row.Total = row.Total.Add(d.Total)
	}

	keys := make([]int, 0, len(byMonth))
	for k := range byMonth {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	out := make([]MonthlyRevenue, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byMonth[k])
	}
	return out
}

// Branches lists every branch id appearing in rows, sorted
func Branches(rows []DailyRevenue) []string {
	seen := make(map[string]bool)
	for _, r := range rows {
		for b := range r.ByBranch {
			seen[b] = true
		}
	}
	out := make([]string, 0, len(seen))
	for b := range seen {
		out = append(out, b)
	}
	sort.Strings(out)
	return out
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
