package order

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
	"github.com/swas/backend/internal/domain/catalog"
	"github.com/swas/backend/internal/domain/order"
	"github.com/swas/backend/internal/domain/shared"
	"go.uber.org/zap"
)

var receiptTemplate = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"day": func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.Format("Jan 02, 2006")
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
body { font-family: monospace; font-size: 11px; width: 72mm; margin: 0 auto; }
h1 { font-size: 14px; text-align: center; margin: 4px 0; }
.center { text-align: center; }
table { width: 100%; border-collapse: collapse; }
td.amt { text-align: right; }
hr { border: 0; border-top: 1px dashed #000; }
</style>
</head>
<body>
<h1>{{.ShopName}}</h1>
<div class="center">{{.BranchName}}<br>{{.BranchLocation}}</div>
<hr>
<div>Transaction: {{.TransactionID}}</div>
<div>Date: {{.DateIn}}</div>
<div>Customer: {{.CustomerName}} ({{.CustID}})</div>
<div>Received by: {{.ReceivedBy}}</div>
<hr>
{{range .Items}}
<div><b>{{.LineItemID}}</b> {{.Priority}}</div>
<div>{{.Shoes}}</div>
<table>
{{range .Services}}<tr><td>{{.Quantity}} x {{.Name}}</td><td class="amt">{{money .Amount}}</td></tr>
{{end}}{{if .RushFee.IsPositive}}<tr><td>Rush fee</td><td class="amt">{{money .RushFee}}</td></tr>
{{end}}</table>
<div>Due: {{day .DueDate}}</div>
{{end}}
<hr>
<table>
<tr><td>Discount</td><td class="amt">{{money .Discount}}</td></tr>
<tr><td><b>Total</b></td><td class="amt"><b>{{money .Total}}</b></td></tr>
<tr><td>Paid</td><td class="amt">{{money .Paid}}</td></tr>
<tr><td>Balance</td><td class="amt">{{money .Balance}}</td></tr>
</table>
<hr>
<div class="center">Status: {{.PaymentStatus}}</div>
<div class="center">Printed {{.PrintedAt}}</div>
</body>
</html>`))

type receiptService struct {
	Name     string
	Quantity int
	Amount   decimal.Decimal
}

type receiptItem struct {
	LineItemID string
	Priority   string
	Shoes      string
	DueDate    *time.Time
	Services   []receiptService
	RushFee    decimal.Decimal
}

type receiptView struct {
	ShopName       string
	BranchName     string
	BranchLocation string
	TransactionID  string
	DateIn         string
	CustID         string
	CustomerName   string
	ReceivedBy     string
	Items          []receiptItem
	Discount       decimal.Decimal
	Total          decimal.Decimal
	Paid           decimal.Decimal
	Balance        decimal.Decimal
	PaymentStatus  string
	PrintedAt      string
}

// RenderReceipt prints the receipt of a transaction as a PDF
func (s *OrderService) RenderReceipt(ctx context.Context, scope shared.Scope, transactionID string) ([]byte, error) {
	if s.renderer == nil {
		return nil, shared.NewDomainError(shared.ErrInvalidState.Code, "Receipt printing is not configured")
	}
	html, err := s.ReceiptHTML(ctx, scope, transactionID)
	if err != nil {
		return nil, err
	}
	pdf, err := s.renderer.RenderPDF(ctx, html)
	if err != nil {
		s.logger.Error("Receipt rendering failed", zap.String("transaction_id", transactionID), zap.Error(err))
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return pdf, nil
}

// ReceiptHTML builds the receipt markup that RenderReceipt prints
func (s *OrderService) ReceiptHTML(ctx context.Context, scope shared.Scope, transactionID string) (string, error) {
	t, err := s.loadTransaction(ctx, s.transactionRepo, scope, transactionID)
	if err != nil {
		return "", err
	}
	items, err := s.lineItemRepo.FindAll(ctx, order.LineItemFilter{TransactionID: t.TransactionID})
	if err != nil {
		return "", err
	}
	b, err := s.branchRepo.FindByBranchID(ctx, t.BranchID)
	if err != nil {
		return "", err
	}

	var lines []catalog.ServiceLine
	for _, li := range items {
		lines = append(lines, li.Services...)
	}
	services, err := s.loadServicesLenient(ctx, lines)
	if err != nil {
		return "", err
	}

	view := receiptView{
		ShopName:       s.shopName,
		BranchName:     b.BranchName,
		BranchLocation: b.Location,
		TransactionID:  t.TransactionID,
		DateIn:         t.DateIn.In(s.location).Format("Jan 02, 2006 15:04"),
		CustID:         t.CustID,
		ReceivedBy:     t.ReceivedBy,
		Items:          make([]receiptItem, len(items)),
		Discount:       t.DiscountAmount,
		Total:          t.TotalAmount,
		Paid:           t.AmountPaid,
		Balance:        t.Balance(),
		PaymentStatus:  string(t.PaymentStatus),
		PrintedAt:      s.now().In(s.location).Format("Jan 02, 2006 15:04"),
	}
	if c, err := s.customerRepo.FindByCustID(ctx, t.CustID); err == nil {
		view.CustomerName = c.Name
	}

	for i, li := range items {
		ri := receiptItem{
			LineItemID: li.LineItemID,
			Priority:   string(li.Priority),
			Shoes:      li.Shoes,
			DueDate:    li.DueDate,
		}
		if li.Priority == catalog.PriorityRush {
			ri.RushFee = catalog.RushFee
		}
		for _, sl := range li.Services {
			rs := receiptService{Name: sl.ServiceID, Quantity: sl.Quantity}
			if svc, ok := services[sl.ServiceID]; ok {
				rs.Name = svc.Name
				rs.Amount = svc.BasePrice.Mul(decimal.NewFromInt(int64(sl.Quantity)))
			}
			ri.Services = append(ri.Services, rs)
		}
		view.Items[i] = ri
	}

	var buf bytes.Buffer
	if err := receiptTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("execute receipt template: %w", err)
	}
	return buf.String(), nil
}

// loadServicesLenient skips services that were removed from the catalog
// after the order was taken.
func (s *OrderService) loadServicesLenient(ctx context.Context, lines []catalog.ServiceLine) (map[string]catalog.Service, error) {
	out := make(map[string]catalog.Service, len(lines))
	for _, l := range lines {
		if _, ok := out[l.ServiceID]; ok {
			continue
		}
		svc, err := s.serviceRepo.FindByServiceID(ctx, l.ServiceID)
		if err != nil {
			if shared.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		out[l.ServiceID] = *svc
	}
	return out, nil
}
