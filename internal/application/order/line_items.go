package order

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/swas/backend/internal/domain/order"
	"github.com/swas/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ListLineItems returns every line item that has not been picked up yet
func (s *OrderService) ListLineItems(ctx context.Context, scope shared.Scope, branchID string) ([]LineItemResponse, error) {
	branchID, err := scope.Resolve(branchID)
	if err != nil {
		return nil, err
	}
	return s.listLineItems(ctx, order.LineItemFilter{BranchID: branchID, ExcludeReleased: true})
}

// ListLineItemsByStatus returns the line items currently at status.
// An empty result is an empty list, not an error.
func (s *OrderService) ListLineItemsByStatus(ctx context.Context, scope shared.Scope, status, branchID string) ([]LineItemResponse, error) {
	st := order.Status(status)
	if !st.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown status %q", status))
	}
	branchID, err := scope.Resolve(branchID)
	if err != nil {
		return nil, err
	}
	return s.listLineItems(ctx, order.LineItemFilter{BranchID: branchID, Status: st})
}

func (s *OrderService) listLineItems(ctx context.Context, filter order.LineItemFilter) ([]LineItemResponse, error) {
	items, err := s.lineItemRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]LineItemResponse, len(items))
	for i := range items {
		out[i] = ToLineItemResponse(&items[i])
	}
	return out, nil
}

// GetLineItem returns one line item
func (s *OrderService) GetLineItem(ctx context.Context, scope shared.Scope, lineItemID string) (*LineItemResponse, error) {
	li, err := s.loadLineItem(ctx, s.lineItemRepo, scope, lineItemID)
	if err != nil {
		return nil, err
	}
	resp := ToLineItemResponse(li)
	return &resp, nil
}

// GetStatusDates returns the status-date record of a line item
func (s *OrderService) GetStatusDates(ctx context.Context, scope shared.Scope, lineItemID string) (*StatusDatesResponse, error) {
	li, err := s.loadLineItem(ctx, s.lineItemRepo, scope, lineItemID)
	if err != nil {
		return nil, err
	}
	return &StatusDatesResponse{LineItemID: li.LineItemID, StatusDates: li.Dates}, nil
}

// UpdateLineItemStatus moves a batch of line items to one status. Every
// transition is validated before any is applied; one illegal transition
// fails the whole batch.
func (s *OrderService) UpdateLineItemStatus(ctx context.Context, actor Actor, req UpdateStatusRequest) (*UpdateStatusResponse, error) {
	target := order.Status(req.NewStatus)
	if !target.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown status %q", req.NewStatus))
	}
	ids := dedupe(req.LineItemIDs)
	now := s.now().In(s.location)

	type change struct {
		item    *order.LineItem
		from    order.Status
		version int
	}
	var (
		changes []change
		touched []*order.Transaction
	)

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		found, err := repos.LineItemRepo().FindByLineItemIDs(ctx, ids)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return shared.NewDomainError(shared.ErrNotFound.Code, "No line items found for the given ids")
		}

		txns := make(map[string]*order.Transaction)
		txnVersions := make(map[string]int)
		changes = make([]change, 0, len(found))
		for i := range found {
			li := &found[i]
			if !actor.Scope.Allows(li.BranchID) {
				return shared.NewDomainError(shared.ErrForbidden.Code,
					fmt.Sprintf("Line item %s belongs to another branch", li.LineItemID))
			}
			t, ok := txns[li.TransactionID]
			if !ok {
				t, err = repos.TransactionRepo().FindByTransactionID(ctx, li.TransactionID)
				if err != nil {
					return err
				}
				txns[li.TransactionID] = t
				txnVersions[li.TransactionID] = t.Version
			}
			if err := li.ValidateTransition(target, t.IsPaid()); err != nil {
				return err
			}
			changes = append(changes, change{item: li, from: li.CurrentStatus, version: li.Version})
		}

		for _, c := range changes {
			t := txns[c.item.TransactionID]
			if err := c.item.TransitionTo(target, t.IsPaid(), now); err != nil {
				return err
			}
			if target == order.StatusPickedUp {
				t.RecordRelease(now)
			}
			if err := repos.LineItemRepo().SaveWithLock(ctx, c.item, c.version); err != nil {
				return err
			}
		}

		for id, t := range txns {
			if t.Version == txnVersions[id] {
				continue
			}
			if err := repos.TransactionRepo().SaveWithLock(ctx, t, txnVersions[id]); err != nil {
				return err
			}
			touched = append(touched, t)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("Line item status update rejected",
			zap.Strings("line_item_ids", ids),
			zap.String("new_status", req.NewStatus),
			zap.Error(err))
		return nil, err
	}

	items := make([]*order.LineItem, len(changes))
	for i, c := range changes {
		items[i] = c.item
		s.publish(ctx, c.item)
		s.metrics.RecordStatusTransition(ctx, c.item.BranchID, string(c.from), string(target))
	}
	for _, t := range touched {
		s.publish(ctx, t)
	}

	s.logger.Info("Line item status updated",
		zap.Int("count", len(items)),
		zap.String("new_status", string(target)),
		zap.String("user_id", actor.UserID))

	return &UpdateStatusResponse{
		Message:   fmt.Sprintf("%d line item(s) updated to %s", len(items), target),
		Updated:   len(items),
		LineItems: toLineItemResponses(items),
	}, nil
}

// UpsertStatusDates overwrites the provided status dates of one line item
func (s *OrderService) UpsertStatusDates(ctx context.Context, scope shared.Scope, req UpsertStatusDatesRequest) (*StatusDatesResponse, error) {
	if req.StatusDates.IsEmpty() {
		return nil, shared.NewDomainError("INVALID_INPUT", "At least one status date is required")
	}
	li, err := s.loadLineItem(ctx, s.lineItemRepo, scope, req.LineItemID)
	if err != nil {
		return nil, err
	}
	version := li.Version
	li.CorrectDates(req.StatusDates, s.now().In(s.location))
	if err := s.lineItemRepo.SaveWithLock(ctx, li, version); err != nil {
		return nil, err
	}
	s.logger.Info("Status dates corrected", zap.String("line_item_id", li.LineItemID))
	return &StatusDatesResponse{LineItemID: li.LineItemID, StatusDates: li.Dates}, nil
}

// RequestImageUpload presigns an upload for a before/after photo and records its key
func (s *OrderService) RequestImageUpload(ctx context.Context, scope shared.Scope, lineItemID string, req ImageUploadRequest) (*ImageUploadResponse, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError(shared.ErrInvalidState.Code, "Image storage is not configured")
	}
	kind := order.ImageKind(req.Kind)
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_IMAGE_KIND", "Image kind must be before or after")
	}

	li, err := s.loadLineItem(ctx, s.lineItemRepo, scope, lineItemID)
	if err != nil {
		return nil, err
	}

	key := ImageKey(li.BranchID, li.LineItemID, kind, req.ContentType)
	url, expiresAt, err := s.storage.PresignUpload(ctx, key, req.ContentType)
	if err != nil {
		return nil, fmt.Errorf("presign image upload: %w", err)
	}

	version := li.Version
	if err := li.SetImage(kind, key); err != nil {
		return nil, err
	}
	if err := s.lineItemRepo.SaveWithLock(ctx, li, version); err != nil {
		return nil, err
	}

	return &ImageUploadResponse{UploadURL: url, Key: key, ExpiresAt: expiresAt}, nil
}

// ImageKey is the object key of a line item photo
func ImageKey(branchID, lineItemID string, kind order.ImageKind, contentType string) string {
	ext := "jpg"
	if _, sub, ok := strings.Cut(contentType, "/"); ok && sub != "jpeg" {
		ext = sub
	}
	return path.Join("line-items", branchID, lineItemID, fmt.Sprintf("%s-%s.%s", kind, uuid.NewString()[:8], ext))
}

func (s *OrderService) loadLineItem(ctx context.Context, repo order.LineItemRepository, scope shared.Scope, lineItemID string) (*order.LineItem, error) {
	li, err := repo.FindByLineItemID(ctx, lineItemID)
	if err != nil {
		return nil, err
	}
	if !scope.Allows(li.BranchID) {
		return nil, shared.ErrForbidden
	}
	return li, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
