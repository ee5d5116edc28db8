package analytics

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// branchSelection maps the dashboard's numeric branch picks to branch ids
var branchSelection = map[string]string{
	"1": "SMVAL-B-NCR",
	"2": "VAL-B-NCR",
	"3": "SMGRA-B-NCR",
}

// selectAll is the dashboard pick meaning every branch
const selectAll = "4"

// ParseBranchSelection turns a "1,3" query into branch ids. A nil result
// means no filter: the query was empty, contained 4, or named nothing known.
func ParseBranchSelection(query string) []string {
	var ids []string
	for _, part := range strings.Split(query, ",") {
		part = strings.TrimSpace(part)
		if part == selectAll {
			return nil
		}
		if id, ok := branchSelection[part]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// DateRange is the span of records a report was computed from
type DateRange struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
	Count int        `json:"total"`
}

func (r *DateRange) include(t time.Time) {
	r.Count++
	if r.Start == nil || t.Before(*r.Start) {
		e := t
		r.Start = &e
	}
	if r.End == nil || t.After(*r.End) {
		l := t
		r.End = &l
	}
}

// Chart colors
const (
	colorRed     = "#FF2056"
	colorYellow  = "#FACC15"
	colorOrange  = "#FB923C"
	colorViolet  = "#8B5CF6"
	colorGreen   = "#78e8a1ff"
	colorDefault = "#888888"
)

const colorRenewalID = "COLOR-RENEWAL"

var serviceColors = map[string]string{
	"SERVICE-1":    colorRed,
	"SERVICE-2":    colorYellow,
	"SERVICE-3":    colorOrange,
	colorRenewalID: colorViolet,
}

// ServiceColor returns the chart color of a service bucket
func ServiceColor(serviceID string) string {
	if c, ok := serviceColors[serviceID]; ok {
		return c
	}
	return colorDefault
}

// ServiceUsage is one line item's services as counted by the report
type ServiceUsage struct {
	Quantities   map[string]int
	LatestUpdate time.Time
}

// ServiceCount is one bar of the top services chart
type ServiceCount struct {
	Service      string `json:"service"`
	ServiceID    string `json:"serviceId"`
	Transactions int    `json:"transactions"`
	Fill         string `json:"fill"`
}

// TopServicesReport is the top services chart with its data span
type TopServicesReport struct {
	Data      []ServiceCount `json:"data"`
	DateRange DateRange      `json:"dateRange"`
}

// BuildTopServices counts the three main services individually and the two
// color renewal services as one bucket. names maps service ids to display
// names; missing names fall back to the id.
func BuildTopServices(usage []ServiceUsage, names map[string]string) TopServicesReport {
	counts := make(map[string]int)
	var span DateRange
	for _, u := range usage {
		for id, q := range u.Quantities {
			if q <= 0 {
				q = 1
			}
			counts[id] += q
		}
		span.include(u.LatestUpdate)
	}

	data := make([]ServiceCount, 0, 4)
	for _, id := range []string{"SERVICE-1", "SERVICE-2", "SERVICE-3"} {
		name := names[id]
		if name == "" {
			name = id
		}
		data = append(data, ServiceCount{Service: name, ServiceID: id, Transactions: counts[id], Fill: ServiceColor(id)})
	}
	data = append(data, ServiceCount{
		Service:      "Color Renewal",
		ServiceID:    colorRenewalID,
		Transactions: counts["SERVICE-8"] + counts["SERVICE-9"],
		Fill:         ServiceColor(colorRenewalID),
	})
	return TopServicesReport{Data: data, DateRange: span}
}

// PaymentSummary is the part of a transaction the sales breakdown reads
type PaymentSummary struct {
	PaymentStatus string
	TotalAmount   decimal.Decimal
	AmountPaid    decimal.Decimal
	DateIn        time.Time
}

// SalesSlice is one segment of the sales breakdown chart
type SalesSlice struct {
	Status       string  `json:"status"`
	Transactions int     `json:"transactions"`
	Amount       float64 `json:"amount"`
	Fill         string  `json:"fill"`
}

// SalesBreakdownReport is the sales breakdown chart with its data span
type SalesBreakdownReport struct {
	Data      []SalesSlice `json:"data"`
	DateRange DateRange    `json:"dateRange"`
}

// BuildSalesBreakdown totals transactions per payment status. Paid and
// unpaid transactions contribute their total; partial ones what was paid.
func BuildSalesBreakdown(txns []PaymentSummary) SalesBreakdownReport {
	type bucket struct {
		count  int
		amount decimal.Decimal
	}
	buckets := map[string]*bucket{"NP": {}, "PARTIAL": {}, "PAID": {}}

	var span DateRange
	for _, t := range txns {
		span.include(t.DateIn)
		b, ok := buckets[t.PaymentStatus]
		if !ok {
			continue
		}
		b.count++
		if t.PaymentStatus == "PARTIAL" {
			b.amount = b.amount.Add(t.AmountPaid)
		} else {
			b.amount = b.amount.Add(t.TotalAmount)
		}
	}

	slice := func(key, label, fill string) SalesSlice {
		b := buckets[key]
		return SalesSlice{Status: label, Transactions: b.count, Amount: b.amount.Round(2).InexactFloat64(), Fill: fill}
	}
	return SalesBreakdownReport{
		Data: []SalesSlice{
			slice("NP", "Unpaid", colorRed),
			slice("PARTIAL", "Partially Paid", colorGreen),
			slice("PAID", "Paid", colorYellow),
		},
		DateRange: span,
	}
}
