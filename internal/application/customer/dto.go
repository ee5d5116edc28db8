package customer

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/swas/backend/internal/domain/customer"
)

// ListCustomersQuery filters the customer listing
type ListCustomersQuery struct {
	BranchID string `form:"branch_id"`
	Search   string `form:"search" binding:"max=100"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
}

// UpdateCustomerRequest replaces the editable customer details
type UpdateCustomerRequest struct {
	CustName    string `json:"cust_name" binding:"required,max=200"`
	CustBdate   string `json:"cust_bdate" binding:"omitempty,datetime=2006-01-02"`
	CustAddress string `json:"cust_address" binding:"max=500"`
	CustEmail   string `json:"cust_email" binding:"omitempty,email,max=200"`
	CustContact string `json:"cust_contact" binding:"max=50"`
}

// CustomerResponse is the API view of a customer
type CustomerResponse struct {
	CustID           string          `json:"cust_id"`
	CustName         string          `json:"cust_name"`
	CustBdate        string          `json:"cust_bdate,omitempty"`
	CustAddress      string          `json:"cust_address"`
	CustEmail        string          `json:"cust_email"`
	CustContact      string          `json:"cust_contact"`
	BranchID         string          `json:"branch_id"`
	TotalServices    int             `json:"total_services"`
	TotalExpenditure decimal.Decimal `json:"total_expenditure"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ToCustomerResponse converts a domain customer
func ToCustomerResponse(c *customer.Customer) CustomerResponse {
	resp := CustomerResponse{
		CustID:           c.CustID,
		CustName:         c.Name,
		CustAddress:      c.Address,
		CustEmail:        c.Email,
		CustContact:      c.Contact,
		BranchID:         c.BranchID,
		TotalServices:    c.TotalServices,
		TotalExpenditure: c.TotalExpenditure,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
	if c.Birthdate != nil {
		resp.CustBdate = c.Birthdate.Format(customer.BirthdateLayout)
	}
	return resp
}

// ParseBirthdate parses an optional YYYY-MM-DD string
func ParseBirthdate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(customer.BirthdateLayout, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
