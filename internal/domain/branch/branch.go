package branch

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/swas/backend/internal/domain/shared"
)

// BranchType distinguishes the central hub (warehouse) from storefront branches
type BranchType string

const (
	BranchTypeHub    BranchType = "H"
	BranchTypeBranch BranchType = "B"
)

// IsValid reports whether t is a known branch type
func (t BranchType) IsValid() bool {
	return t == BranchTypeHub || t == BranchTypeBranch
}

// Location values a line item can be at
const (
	LocationHub    = "Hub"
	LocationBranch = "Branch"
)

// Superadmin user id that is never restricted to a single branch
const SuperadminUserID = "SWAS-SUPERADMIN"

var (
	branchCodePattern = regexp.MustCompile(`^[A-Z0-9]{2,10}$`)
	branchIDPattern   = regexp.MustCompile(`^[A-Z0-9]{2,10}-[HB]-[A-Z0-9]{2,10}$`)
)

// Branch is a physical shop or the hub that processes line items
type Branch struct {
	shared.BaseAggregateRoot
	BranchID     string
	BranchNumber int
	BranchCode   string
	BranchName   string
	Location     string
	Type         BranchType
}

// NewBranch creates a branch. When branchID is empty it is derived as
// <CODE>-<TYPE>-<REGION>.
func NewBranch(branchID string, number int, code, name, location, region string, branchType BranchType) (*Branch, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !branchCodePattern.MatchString(code) {
		return nil, shared.NewDomainError("INVALID_BRANCH_CODE", "Branch code must be 2-10 uppercase letters or digits")
	}
	if number <= 0 {
		return nil, shared.NewDomainError("INVALID_BRANCH_NUMBER", "Branch number must be positive")
	}
	if !branchType.IsValid() {
		return nil, shared.NewDomainError("INVALID_BRANCH_TYPE", "Branch type must be H or B")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_BRANCH_NAME", "Branch name cannot be empty")
	}

	branchID = strings.ToUpper(strings.TrimSpace(branchID))
	if branchID == "" {
		region = strings.ToUpper(strings.TrimSpace(region))
		if region == "" {
			region = "NCR"
		}
		branchID = fmt.Sprintf("%s-%s-%s", code, branchType, region)
	}
	if !branchIDPattern.MatchString(branchID) {
		return nil, shared.NewDomainError("INVALID_BRANCH_ID", "Branch id must look like CODE-B-REGION")
	}

	b := &Branch{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BranchID:          branchID,
		BranchNumber:      number,
		BranchCode:        code,
		BranchName:        strings.TrimSpace(name),
		Location:          strings.TrimSpace(location),
		Type:              branchType,
	}
	b.AddDomainEvent(NewBranchChangedEvent(EventTypeBranchCreated, b))
	return b, nil
}

// Update changes the descriptive fields of the branch. BranchID is immutable.
func (b *Branch) Update(name, location string, branchType BranchType) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_BRANCH_NAME", "Branch name cannot be empty")
	}
	if !branchType.IsValid() {
		return shared.NewDomainError("INVALID_BRANCH_TYPE", "Branch type must be H or B")
	}
	b.BranchName = strings.TrimSpace(name)
	b.Location = strings.TrimSpace(location)
	b.Type = branchType
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	b.AddDomainEvent(NewBranchChangedEvent(EventTypeBranchUpdated, b))
	return nil
}

// IsHub reports whether this branch is the processing hub
func (b *Branch) IsHub() bool {
	return b.Type == BranchTypeHub
}

// CodeFromID returns the code segment of a branch id ("SMVAL-B-NCR" -> "SMVAL")
func CodeFromID(branchID string) string {
	code, _, _ := strings.Cut(branchID, "-")
	return code
}
