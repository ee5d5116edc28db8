package order

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/swas/backend/internal/domain/branch"
	"github.com/swas/backend/internal/domain/order"
	"github.com/swas/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ApplyPayment records a counter payment. When idempotencyKey is set, a retry
// with the same key returns the first response instead of paying twice.
func (s *OrderService) ApplyPayment(ctx context.Context, actor Actor, transactionID string, req ApplyPaymentRequest, idempotencyKey string) (*ApplyPaymentResponse, error) {
	if idempotencyKey == "" || s.idempotency == nil {
		return s.applyPayment(ctx, actor, transactionID, req)
	}

	key := "payment:" + transactionID + ":" + idempotencyKey
	claimed, err := s.idempotency.MarkProcessed(ctx, key, s.idempotencyTTL)
	if err != nil {
		return nil, fmt.Errorf("claim idempotency key: %w", err)
	}
	if !claimed {
		return s.replayPayment(ctx, key)
	}

	resp, err := s.applyPayment(ctx, actor, transactionID, req)
	if err != nil {
		// Let the client retry a failed attempt with the same key
		if relErr := s.idempotency.Release(ctx, key); relErr != nil {
			s.logger.Warn("Failed to release idempotency key", zap.String("key", key), zap.Error(relErr))
		}
		return nil, err
	}

	payload, err := json.Marshal(resp)
	if err == nil {
		err = s.idempotency.SaveResult(ctx, key, payload, s.idempotencyTTL)
	}
	if err != nil {
		s.logger.Warn("Failed to store idempotent payment result", zap.String("key", key), zap.Error(err))
	}
	return resp, nil
}

func (s *OrderService) replayPayment(ctx context.Context, key string) (*ApplyPaymentResponse, error) {
	payload, found, err := s.idempotency.GetResult(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load idempotent result: %w", err)
	}
	if !found {
		return nil, shared.NewDomainError(shared.ErrConcurrencyConflict.Code, "A payment with this Idempotency-Key is still being processed")
	}
	var resp ApplyPaymentResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("decode idempotent result: %w", err)
	}
	s.logger.Info("Replayed idempotent payment", zap.String("key", key))
	return &resp, nil
}

func (s *OrderService) applyPayment(ctx context.Context, actor Actor, transactionID string, req ApplyPaymentRequest) (*ApplyPaymentResponse, error) {
	if req.MarkPickedUp && req.LineItemID == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "line_item_id is required to mark an item as picked up")
	}

	now := s.now().In(s.location)
	var (
		txn      *order.Transaction
		item     *order.LineItem
		fromStat order.Status
		change   decimal.Decimal
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		t, err := s.loadTransaction(ctx, repos.TransactionRepo(), actor.Scope, transactionID)
		if err != nil {
			return err
		}
		loadedVersion := t.Version

		code := branch.CodeFromID(t.BranchID)
		seq, err := repos.Sequences().Next(ctx, order.PaymentSequenceKey(code))
		if err != nil {
			return fmt.Errorf("allocate payment id: %w", err)
		}
		change, err = t.ApplyPayment(order.FormatPaymentID(seq, code), req.DueNow, req.CustomerPaid, order.PaymentMode(req.PaymentMode), now)
		if err != nil {
			return err
		}

		if req.MarkPickedUp {
			li, err := repos.LineItemRepo().FindByLineItemID(ctx, req.LineItemID)
			if err != nil {
				return err
			}
			if li.TransactionID != t.TransactionID {
				return shared.NewDomainError("INVALID_INPUT",
					fmt.Sprintf("Line item %s does not belong to transaction %s", li.LineItemID, t.TransactionID))
			}
			itemVersion := li.Version
			fromStat = li.CurrentStatus
			if err := li.TransitionTo(order.StatusPickedUp, t.IsPaid(), now); err != nil {
				return err
			}
			t.RecordRelease(now)
			if err := repos.LineItemRepo().SaveWithLock(ctx, li, itemVersion); err != nil {
				return err
			}
			item = li
		}

		txn = t
		return repos.TransactionRepo().SaveWithLock(ctx, t, loadedVersion)
	})
	if err != nil {
		return nil, err
	}

	if item != nil {
		s.publish(ctx, txn, item)
		s.metrics.RecordStatusTransition(ctx, item.BranchID, string(fromStat), string(item.CurrentStatus))
	} else {
		s.publish(ctx, txn)
	}
	due64, _ := req.DueNow.Float64()
	s.metrics.RecordPayment(ctx, txn.BranchID, string(txn.PaymentMode), due64)

	s.logger.Info("Payment applied",
		zap.String("transaction_id", txn.TransactionID),
		zap.String("amount", req.DueNow.StringFixed(2)),
		zap.String("payment_status", string(txn.PaymentStatus)),
		zap.String("user_id", actor.UserID))

	resp := &ApplyPaymentResponse{
		Transaction: ToTransactionResponse(txn),
		Change:      change,
		Balance:     txn.Balance(),
	}
	if item != nil {
		lr := ToLineItemResponse(item)
		resp.LineItem = &lr
	}
	return resp, nil
}
