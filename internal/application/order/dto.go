package order

import (
	"time"

	"github.com/shopspring/decimal"
	catalogapp "github.com/swas/backend/internal/application/catalog"
	customerapp "github.com/swas/backend/internal/application/customer"
	"github.com/swas/backend/internal/domain/order"
	"github.com/swas/backend/internal/domain/shared"
)

// Actor is the authenticated caller
type Actor struct {
	UserID string
	Scope  shared.Scope
}

// CustomerInput identifies (or registers) the customer at intake
type CustomerInput struct {
	CustName    string `json:"cust_name" binding:"required,max=200"`
	CustBdate   string `json:"cust_bdate" binding:"omitempty,datetime=2006-01-02"`
	CustAddress string `json:"cust_address" binding:"max=500"`
	CustEmail   string `json:"cust_email" binding:"omitempty,email,max=200"`
	CustContact string `json:"cust_contact" binding:"max=50"`
}

// LineItemInput is one pair of shoes at intake
type LineItemInput struct {
	Priority string                          `json:"priority" binding:"required,oneof=Rush Normal"`
	Services []catalogapp.ServiceLineRequest `json:"services" binding:"required,min=1,dive"`
	Shoes    string                          `json:"shoes" binding:"max=200"`
}

// CreateServiceRequestInput is the intake form
type CreateServiceRequestInput struct {
	BranchID       string           `json:"branch_id"`
	Customer       CustomerInput    `json:"customer" binding:"required"`
	LineItems      []LineItemInput  `json:"line_items" binding:"required,min=1,dive"`
	DiscountAmount decimal.Decimal  `json:"discount_amount"`
	AmountPaid     decimal.Decimal  `json:"amount_paid"`
	PaymentMode    string           `json:"payment_mode" binding:"omitempty,oneof=Cash Card GCash Other"`
	TotalAmount    *decimal.Decimal `json:"total_amount"`
}

// ListTransactionsQuery filters the transaction listing
type ListTransactionsQuery struct {
	BranchID      string `form:"branch_id"`
	PaymentStatus string `form:"payment_status" binding:"omitempty,oneof=NP PARTIAL PAID"`
	CustID        string `form:"cust_id"`
	From          string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To            string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Search        string `form:"search" binding:"max=100"`
	Page          int    `form:"page" binding:"min=0"`
	PageSize      int    `form:"page_size" binding:"min=0,max=100"`
}

// ApplyPaymentRequest records money received at the counter
type ApplyPaymentRequest struct {
	DueNow       decimal.Decimal `json:"due_now"`
	CustomerPaid decimal.Decimal `json:"customer_paid"`
	PaymentMode  string          `json:"payment_mode" binding:"omitempty,oneof=Cash Card GCash Other"`
	LineItemID   string          `json:"line_item_id"`
	MarkPickedUp bool            `json:"mark_picked_up"`
}

// UpdateStatusRequest moves a batch of line items to one status
type UpdateStatusRequest struct {
	LineItemIDs []string `json:"line_item_ids" binding:"required,min=1,max=200,dive,required"`
	NewStatus   string   `json:"new_status" binding:"required,status"`
}

// UpsertStatusDatesRequest corrects status dates by hand; only the provided fields change
type UpsertStatusDatesRequest struct {
	LineItemID string `json:"line_item_id" binding:"required"`
	order.StatusDates
}

// ImageUploadRequest asks for a presigned photo upload
type ImageUploadRequest struct {
	Kind        string `json:"kind" binding:"required,oneof=before after"`
	ContentType string `json:"content_type" binding:"required,oneof=image/jpeg image/png image/webp"`
}

// PaymentResponse is one recorded payment
type PaymentResponse struct {
	PaymentID     string          `json:"payment_id"`
	PaymentAmount decimal.Decimal `json:"payment_amount"`
	PaymentMode   string          `json:"payment_mode"`
	PaymentDate   time.Time       `json:"payment_date"`
}

// TransactionResponse is the API view of a transaction
type TransactionResponse struct {
	TransactionID  string            `json:"transaction_id"`
	BranchID       string            `json:"branch_id"`
	CustID         string            `json:"cust_id"`
	DateIn         time.Time         `json:"date_in"`
	ReceivedBy     string            `json:"received_by"`
	DateOut        *time.Time        `json:"date_out"`
	NoPairs        int               `json:"no_pairs"`
	NoReleased     int               `json:"no_released"`
	TotalAmount    decimal.Decimal   `json:"total_amount"`
	DiscountAmount decimal.Decimal   `json:"discount_amount"`
	AmountPaid     decimal.Decimal   `json:"amount_paid"`
	Balance        decimal.Decimal   `json:"balance"`
	PaymentStatus  string            `json:"payment_status"`
	PaymentMode    string            `json:"payment_mode"`
	Payments       []PaymentResponse `json:"payments"`
	Version        int               `json:"version"`
}

// ServiceLineResponse is one service on a line item
type ServiceLineResponse struct {
	ServiceID string `json:"service_id"`
	Quantity  int    `json:"quantity"`
}

// LineItemResponse is the API view of a line item
type LineItemResponse struct {
	LineItemID      string                `json:"line_item_id"`
	TransactionID   string                `json:"transaction_id"`
	Priority        string                `json:"priority"`
	CustID          string                `json:"cust_id"`
	BranchID        string                `json:"branch_id"`
	Services        []ServiceLineResponse `json:"services"`
	StorageFee      decimal.Decimal       `json:"storage_fee"`
	Shoes           string                `json:"shoes"`
	CurrentLocation string                `json:"current_location"`
	CurrentStatus   string                `json:"current_status"`
	DueDate         *time.Time            `json:"due_date"`
	LatestUpdate    time.Time             `json:"latest_update"`
	BeforeImg       string                `json:"before_img,omitempty"`
	AfterImg        string                `json:"after_img,omitempty"`
	Version         int                   `json:"version"`
}

// StatusDatesResponse is the status-date record of one line item
type StatusDatesResponse struct {
	LineItemID string `json:"line_item_id"`
	order.StatusDates
}

// ServiceRequestResponse is a transaction with its customer and line items
type ServiceRequestResponse struct {
	Transaction TransactionResponse           `json:"transaction"`
	Customer    *customerapp.CustomerResponse `json:"customer"`
	LineItems   []LineItemResponse            `json:"line_items"`
}

// ApplyPaymentResponse is the result of a counter payment
type ApplyPaymentResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Change      decimal.Decimal     `json:"change"`
	Balance     decimal.Decimal     `json:"balance"`
	LineItem    *LineItemResponse   `json:"line_item,omitempty"`
}

// UpdateStatusResponse summarizes a bulk status change
type UpdateStatusResponse struct {
	Message   string             `json:"message"`
	Updated   int                `json:"updated"`
	LineItems []LineItemResponse `json:"line_items"`
}

// ImageUploadResponse carries the presigned URL the client PUTs the photo to
type ImageUploadResponse struct {
	UploadURL string    `json:"upload_url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ToTransactionResponse converts a domain transaction
func ToTransactionResponse(t *order.Transaction) TransactionResponse {
	payments := make([]PaymentResponse, len(t.Payments))
	for i, p := range t.Payments {
		payments[i] = PaymentResponse{
			PaymentID:     p.PaymentID,
			PaymentAmount: p.Amount,
			PaymentMode:   string(p.Mode),
			PaymentDate:   p.PaidAt,
		}
	}
	return TransactionResponse{
		TransactionID:  t.TransactionID,
		BranchID:       t.BranchID,
		CustID:         t.CustID,
		DateIn:         t.DateIn,
		ReceivedBy:     t.ReceivedBy,
		DateOut:        t.DateOut,
		NoPairs:        t.NoPairs,
		NoReleased:     t.NoReleased,
		TotalAmount:    t.TotalAmount,
		DiscountAmount: t.DiscountAmount,
		AmountPaid:     t.AmountPaid,
		Balance:        t.Balance(),
		PaymentStatus:  string(t.PaymentStatus),
		PaymentMode:    string(t.PaymentMode),
		Payments:       payments,
		Version:        t.Version,
	}
}

// ToLineItemResponse converts a domain line item
func ToLineItemResponse(li *order.LineItem) LineItemResponse {
	services := make([]ServiceLineResponse, len(li.Services))
	for i, s := range li.Services {
		services[i] = ServiceLineResponse{ServiceID: s.ServiceID, Quantity: s.Quantity}
	}
	return LineItemResponse{
		LineItemID:      li.LineItemID,
		TransactionID:   li.TransactionID,
		Priority:        string(li.Priority),
		CustID:          li.CustID,
		BranchID:        li.BranchID,
		Services:        services,
		StorageFee:      li.StorageFee,
		Shoes:           li.Shoes,
		CurrentLocation: li.CurrentLocation,
		CurrentStatus:   string(li.CurrentStatus),
		DueDate:         li.DueDate,
		LatestUpdate:    li.LatestUpdate,
		BeforeImg:       li.BeforeImg,
		AfterImg:        li.AfterImg,
		Version:         li.Version,
	}
}

func toLineItemResponses(items []*order.LineItem) []LineItemResponse {
	out := make([]LineItemResponse, len(items))
	for i, li := range items {
		out[i] = ToLineItemResponse(li)
	}
	return out
}
