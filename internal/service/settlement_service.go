package service

import (
	"context"
	"time"

	"github.com/dropforge/internal/constants"
	"github.com/dropforge/internal/logger"
	"github.com/dropforge/internal/mint"
	"github.com/dropforge/internal/models"
	"github.com/dropforge/internal/payment/stripe"
	"github.com/dropforge/internal/repository"
)

// SettlementService closes pending orders: payment webhooks for paid claims,
// claim-link visits for light ones.
type SettlementService struct {
	orderRepo repository.OrderRepository
	orders    *OrderService
	minter    Minter
}

// NewSettlementService creates the settlement service.
func NewSettlementService(orderRepo repository.OrderRepository, orders *OrderService, minter Minter) *SettlementService {
	return &SettlementService{
		orderRepo: orderRepo,
		orders:    orders,
		minter:    minter,
	}
}

// HandlePaymentConfirmed settles an order from a verified webhook event.
// Replayed events are no-ops: a completed order stays completed.
func (s *SettlementService) HandlePaymentConfirmed(ctx context.Context, event *stripe.WebhookResult) error {
	order, err := s.resolveOrder(event)
	if err != nil {
		return err
	}
	if order == nil {
		logger.Warnw("settlement_order_not_found",
			"event_id", event.EventID,
			"order_id", event.OrderID,
			"session_id", event.SessionID,
		)
		return ErrOrderNotFound
	}

	switch order.Status {
	case constants.OrderStatusCompleted:
		logger.Debugw("settlement_event_replayed", "order_no", order.OrderNo, "event_id", event.EventID)
		return nil
	case constants.OrderStatusFailed:
		// a late success after we already failed the order needs a human
		logger.Warnw("settlement_event_on_failed_order",
			"order_no", order.OrderNo,
			"event_id", event.EventID,
			"event_status", event.Status,
		)
		return nil
	}

	switch event.Status {
	case "success":
		return s.settlePaid(ctx, order)
	case "failed", "expired":
		logger.Infow("settlement_payment_failed",
			"order_no", order.OrderNo,
			"event_status", event.Status,
		)
		return s.orders.failOrder(order, constants.FailReasonPayment)
	default:
		return nil
	}
}

// settlePaid mints the paid claim and completes the order. A mint failure
// fails the order even though money moved; the gap is logged for refund
// handling, never retried blind.
func (s *SettlementService) settlePaid(ctx context.Context, order *models.Order) error {
	signature := ""
	if s.minter != nil && s.minter.Enabled() && order.WalletAddress != "" {
		result, err := s.minter.Mint(ctx, mint.Request{
			OrderNo:       order.OrderNo,
			CollectibleID: order.CollectibleID,
			Recipient:     order.WalletAddress,
			Amount:        order.PriceAmount.String(),
			Currency:      order.Currency,
		})
		if err != nil {
			logger.Errorw("settlement_mint_failed_after_payment",
				"order_no", order.OrderNo,
				"collectible_id", order.CollectibleID,
				"error", err,
			)
			if failErr := s.orders.failOrder(order, constants.FailReasonMint); failErr != nil {
				return failErr
			}
			return ErrMintFailed
		}
		signature = result.Signature
	}
	if err := s.orders.markCompleted(order, signature); err != nil {
		return err
	}
	logger.Infow("settlement_order_completed",
		"order_no", order.OrderNo,
		"mint_signature", signature,
	)
	return nil
}

func (s *SettlementService) resolveOrder(event *stripe.WebhookResult) (*models.Order, error) {
	if event.OrderID != 0 {
		order, err := s.orderRepo.GetByID(event.OrderID)
		if err != nil || order != nil {
			return order, err
		}
	}
	if event.OrderNo != "" {
		order, err := s.orderRepo.GetByOrderNo(event.OrderNo)
		if err != nil || order != nil {
			return order, err
		}
	}
	if event.SessionID != "" {
		return s.orderRepo.GetByCheckoutSessionID(event.SessionID)
	}
	return nil, nil
}

// HandleClaimVisit spends a claim link. The signature code is single-use: the
// conditional update below is what makes a double visit lose.
func (s *SettlementService) HandleClaimVisit(code string) (*models.Order, error) {
	order, err := s.orderRepo.GetBySignatureCode(code)
	if err != nil {
		return nil, err
	}
	if order == nil {
		// spent codes are nulled out, so used and unknown look the same
		return nil, ErrSignatureInvalid
	}
	if order.Status != constants.OrderStatusPending {
		return nil, ErrSignatureInvalid
	}

	now := time.Now().UTC()
	if order.Collectible.MintStartDate != nil && now.Before(order.Collectible.MintStartDate.UTC()) {
		return nil, ErrWindowNotOpen
	}
	if order.Collectible.MintEndDate != nil && now.After(order.Collectible.MintEndDate.UTC()) {
		logger.Infow("claim_visit_window_closed", "order_no", order.OrderNo)
		if err := s.orders.failOrder(order, constants.FailReasonWindowClosed); err != nil {
			return nil, err
		}
		return nil, ErrWindowEnded
	}

	if capped, limit := completionCap(&order.Collectible); capped {
		completed, err := s.orderRepo.CountCompletedByCollectible(order.CollectibleID)
		if err != nil {
			return nil, err
		}
		if completed >= limit {
			logger.Infow("claim_visit_sold_out", "order_no", order.OrderNo)
			if err := s.orders.failOrder(order, constants.FailReasonSoldOut); err != nil {
				return nil, err
			}
			return nil, ErrSoldOut
		}
	}

	rows, err := s.orderRepo.ConsumeSignature(order.ID, now)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrSignatureUsed
	}
	order.SignatureCode = nil
	order.SignatureUsedAt = &now

	if err := s.orders.markCompleted(order, ""); err != nil {
		return nil, err
	}
	logger.Infow("claim_visit_completed", "order_no", order.OrderNo)
	return order, nil
}

// completionCap returns the hard completion ceiling for capped supplies.
func completionCap(collectible *models.Collectible) (bool, int64) {
	switch collectible.QuantityType {
	case constants.QuantityTypeSingle:
		return true, 1
	case constants.QuantityTypeLimited:
		return true, int64(collectible.Quantity)
	default:
		return false, 0
	}
}
