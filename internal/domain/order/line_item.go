package order

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/swas/backend/internal/domain/branch"
	"github.com/swas/backend/internal/domain/catalog"
	"github.com/swas/backend/internal/domain/shared"
)

// ImageKind selects which photo of a line item is meant
type ImageKind string

const (
	ImageBefore ImageKind = "before"
	ImageAfter  ImageKind = "after"
)

// IsValid reports whether k is before or after
func (k ImageKind) IsValid() bool {
	return k == ImageBefore || k == ImageAfter
}

// LineItem is one pair of shoes inside a transaction
type LineItem struct {
	shared.BranchAggregateRoot
	LineItemID      string
	TransactionID   string
	CustID          string
	Priority        catalog.Priority
	Services        []catalog.ServiceLine
	StorageFee      decimal.Decimal
	Shoes           string
	CurrentLocation string
	CurrentStatus   Status
	DueDate         *time.Time
	LatestUpdate    time.Time
	BeforeImg       string
	AfterImg        string
	Dates           StatusDates
}

// NewLineItem creates a queued line item
func NewLineItem(branchID, lineItemID, transactionID, custID string, priority catalog.Priority, services []catalog.ServiceLine, shoes string, dueDate time.Time, at time.Time) (*LineItem, error) {
	if lineItemID == "" {
		return nil, shared.NewDomainError("INVALID_LINE_ITEM_ID", "Line item id cannot be empty")
	}
	if len(services) == 0 {
		return nil, shared.NewDomainError("NO_SERVICES", "A line item needs at least one service")
	}
	if !priority.IsValid() {
		return nil, shared.NewDomainError("INVALID_PRIORITY", "Priority must be Rush or Normal")
	}

	due := dueDate
	li := &LineItem{
		BranchAggregateRoot: shared.NewBranchAggregateRoot(branchID),
		LineItemID:          lineItemID,
		TransactionID:       transactionID,
		CustID:              custID,
		Priority:            priority,
		Services:            services,
		StorageFee:          decimal.Zero,
		Shoes:               shoes,
		CurrentLocation:     branch.LocationBranch,
		CurrentStatus:       StatusQueued,
		DueDate:             &due,
		LatestUpdate:        at,
	}
	li.Dates.Stamp(StatusQueued, at)
	li.AddDomainEvent(NewLineItemCreatedEvent(li))
	return li, nil
}

// ValidateTransition checks target without changing the item. paid is the
// payment state of the owning transaction.
func (li *LineItem) ValidateTransition(target Status, paid bool) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown status %q", target))
	}
	if !li.CurrentStatus.CanTransitionTo(target) {
		return shared.NewDomainError(shared.ErrInvalidState.Code,
			fmt.Sprintf("Line item %s cannot move from %s to %s", li.LineItemID, li.CurrentStatus, target))
	}
	if target == StatusPickedUp && !paid {
		return shared.NewDomainError(shared.ErrInvalidState.Code,
			fmt.Sprintf("Line item %s cannot be picked up before transaction %s is fully paid", li.LineItemID, li.TransactionID))
	}
	return nil
}

// TransitionTo moves the item to target and stamps the matching date
func (li *LineItem) TransitionTo(target Status, paid bool, at time.Time) error {
	if err := li.ValidateTransition(target, paid); err != nil {
		return err
	}
	from := li.CurrentStatus
	li.CurrentStatus = target
	li.CurrentLocation = target.Location()
	li.LatestUpdate = at
	li.Dates.Stamp(target, at)
	li.UpdatedAt = at
	li.IncrementVersion()
	li.AddDomainEvent(NewLineItemStatusChangedEvent(li, from))
	return nil
}

// CorrectDates overwrites the provided status dates
func (li *LineItem) CorrectDates(dates StatusDates, at time.Time) {
	li.Dates.Merge(dates)
	li.LatestUpdate = at
	li.UpdatedAt = at
	li.IncrementVersion()
}

// SetImage records the storage key of a photo
func (li *LineItem) SetImage(kind ImageKind, key string) error {
	switch kind {
	case ImageBefore:
		li.BeforeImg = key
	case ImageAfter:
		li.AfterImg = key
	default:
		return shared.NewDomainError("INVALID_IMAGE_KIND", "Image kind must be before or after")
	}
	li.UpdatedAt = time.Now()
	li.IncrementVersion()
	return nil
}

// IsReleased reports whether the pair has been picked up
func (li *LineItem) IsReleased() bool {
	return li.CurrentStatus == StatusPickedUp
}
