package customer

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/swas/backend/internal/domain/shared"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// BirthdateLayout is the wire format of cust_bdate
const BirthdateLayout = "2006-01-02"

// Customer is a walk-in or appointment customer registered at a branch
type Customer struct {
	shared.BranchAggregateRoot
	CustID           string
	Name             string
	Birthdate        *time.Time
	Address          string
	Email            string
	Contact          string
	TotalServices    int
	TotalExpenditure decimal.Decimal
}

// Profile holds the editable customer details
type Profile struct {
	Name      string
	Birthdate *time.Time
	Address   string
	Email     string
	Contact   string
}

// FormatCustID builds CUST-<branch_number>-<seq>
func FormatCustID(branchNumber int, seq int64) string {
	return fmt.Sprintf("CUST-%d-%d", branchNumber, seq)
}

// NormalizeName folds case and collapses inner whitespace so lookups by
// name are insensitive to how staff typed it.
func NormalizeName(name string) string {
	fields := strings.Fields(name)
	return cases.Fold().String(strings.Join(fields, " "))
}

// DisplayName title-cases a customer name for storage
func DisplayName(name string) string {
	fields := strings.Fields(name)
	return cases.Title(language.English).String(strings.ToLower(strings.Join(fields, " ")))
}

// NewCustomer creates a customer with a pre-allocated cust_id
func NewCustomer(branchID, custID string, p Profile) (*Customer, error) {
	if strings.TrimSpace(custID) == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_ID", "Customer id cannot be empty")
	}
	if err := validateProfile(p); err != nil {
		return nil, err
	}

	c := &Customer{
		BranchAggregateRoot: shared.NewBranchAggregateRoot(branchID),
		CustID:              custID,
		TotalExpenditure:    decimal.Zero,
	}
	c.apply(p)
	c.AddDomainEvent(NewCustomerEvent(EventTypeCustomerCreated, c))
	return c, nil
}

// Update replaces the editable profile
func (c *Customer) Update(p Profile) error {
	if err := validateProfile(p); err != nil {
		return err
	}
	c.apply(p)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	c.AddDomainEvent(NewCustomerEvent(EventTypeCustomerUpdated, c))
	return nil
}

// RecordServiceRequest counts a new service request and its billed amount
func (c *Customer) RecordServiceRequest(amount decimal.Decimal) {
	c.TotalServices++
	c.TotalExpenditure = c.TotalExpenditure.Add(amount).Round(2)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Matches reports whether the customer has this name and birthdate
func (c *Customer) Matches(name string, bdate *time.Time) bool {
	if NormalizeName(c.Name) != NormalizeName(name) {
		return false
	}
	if c.Birthdate == nil || bdate == nil {
		return c.Birthdate == nil && bdate == nil
	}
	return c.Birthdate.Format(BirthdateLayout) == bdate.Format(BirthdateLayout)
}

func (c *Customer) apply(p Profile) {
	c.Name = DisplayName(p.Name)
	c.Birthdate = p.Birthdate
	c.Address = strings.TrimSpace(p.Address)
	c.Email = strings.ToLower(strings.TrimSpace(p.Email))
	c.Contact = strings.TrimSpace(p.Contact)
}

func validateProfile(p Profile) error {
	if strings.TrimSpace(p.Name) == "" {
		return shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if len(p.Name) > 200 {
		return shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot exceed 200 characters")
	}
	if p.Email != "" {
		if _, err := mail.ParseAddress(strings.TrimSpace(p.Email)); err != nil {
			return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
		}
	}
	if p.Birthdate != nil && p.Birthdate.After(time.Now()) {
		return shared.NewDomainError("INVALID_BIRTHDATE", "Birthdate cannot be in the future")
	}
	return nil
}
