package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dropforge/internal/config"
	"github.com/dropforge/internal/constants"
	"github.com/dropforge/internal/models"
	"github.com/dropforge/internal/payment/stripe"
	"github.com/dropforge/internal/repository"

	"gorm.io/gorm"
)

type settlementHarness struct {
	db         *gorm.DB
	settlement *SettlementService
	orderRepo  repository.OrderRepository
	collRepo   repository.CollectibleRepository
	minter     *fakeMinter
}

func newSettlementHarness(t *testing.T) *settlementHarness {
	t.Helper()

	db := newTestDB(t)
	collectionRepo := repository.NewCollectionRepository(db)
	collRepo := repository.NewCollectibleRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	eligibility := NewEligibilityService(collectionRepo, collRepo, orderRepo)
	emailService := NewEmailService(&config.EmailConfig{Enabled: false})
	minter := &fakeMinter{enabled: false, signature: "sig_settled"}
	orders := NewOrderService(orderRepo, collRepo, eligibility, emailService, minter, nil,
		&config.PaymentConfig{Enabled: false}, &config.ClaimConfig{})

	return &settlementHarness{
		db:         db,
		settlement: NewSettlementService(orderRepo, orders, minter),
		orderRepo:  orderRepo,
		collRepo:   collRepo,
		minter:     minter,
	}
}

// seedPendingOrder inserts a pending order holding one reservation.
func (h *settlementHarness) seedPendingOrder(t *testing.T, collectible *models.Collectible, order *models.Order) *models.Order {
	t.Helper()

	collection := seedCollection(t, h.db)
	collectible.CollectionID = collection.ID
	seedCollectible(t, h.db, collectible)

	order.Status = constants.OrderStatusPending
	order.CollectibleID = collectible.ID
	if order.Currency == "" {
		order.Currency = "USD"
	}
	if err := h.db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if _, err := h.collRepo.ReserveSupply(collectible.ID); err != nil {
		t.Fatalf("reserve supply failed: %v", err)
	}
	return order
}

func TestHandlePaymentConfirmedCompletesAndIgnoresReplay(t *testing.T) {
	h := newSettlementHarness(t)
	claimKey := "wallet:0xabc"
	order := h.seedPendingOrder(t, &models.Collectible{}, &models.Order{
		OrderNo:           "DF00000000000000000010",
		Kind:              constants.OrderKindRegular,
		ClaimKey:          &claimKey,
		WalletAddress:     "0xabc",
		CheckoutSessionID: "cs_test_10",
	})

	event := &stripe.WebhookResult{
		EventID:   "evt_1",
		EventType: "checkout.session.completed",
		OrderID:   order.ID,
		SessionID: "cs_test_10",
		Status:    "success",
	}
	if err := h.settlement.HandlePaymentConfirmed(context.Background(), event); err != nil {
		t.Fatalf("settle failed: %v", err)
	}

	settled, err := h.orderRepo.GetByID(order.ID)
	if err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if settled.Status != constants.OrderStatusCompleted || settled.CompletedAt == nil {
		t.Fatalf("expected completed order, got %s", settled.Status)
	}

	// a replayed event leaves the completed order untouched
	if err := h.settlement.HandlePaymentConfirmed(context.Background(), event); err != nil {
		t.Fatalf("replay errored: %v", err)
	}
	if h.minter.calls != 0 {
		t.Fatalf("expected no mint with disabled minter, got %d calls", h.minter.calls)
	}
}

func TestHandlePaymentConfirmedResolvesBySessionID(t *testing.T) {
	h := newSettlementHarness(t)
	claimKey := "wallet:0xdef"
	order := h.seedPendingOrder(t, &models.Collectible{}, &models.Order{
		OrderNo:           "DF00000000000000000011",
		Kind:              constants.OrderKindRegular,
		ClaimKey:          &claimKey,
		WalletAddress:     "0xdef",
		CheckoutSessionID: "cs_test_11",
	})

	// metadata stripped by the gateway, only the session id survives
	err := h.settlement.HandlePaymentConfirmed(context.Background(), &stripe.WebhookResult{
		EventID:   "evt_2",
		SessionID: "cs_test_11",
		Status:    "success",
	})
	if err != nil {
		t.Fatalf("settle by session id failed: %v", err)
	}
	settled, err := h.orderRepo.GetByID(order.ID)
	if err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if settled.Status != constants.OrderStatusCompleted {
		t.Fatalf("expected completed order, got %s", settled.Status)
	}
}

func TestHandlePaymentConfirmedMintFailureFailsOrder(t *testing.T) {
	h := newSettlementHarness(t)
	h.minter.enabled = true
	h.minter.err = errors.New("chain unavailable")
	claimKey := "wallet:0xabc"
	order := h.seedPendingOrder(t, &models.Collectible{}, &models.Order{
		OrderNo:       "DF00000000000000000012",
		Kind:          constants.OrderKindRegular,
		ClaimKey:      &claimKey,
		WalletAddress: "0xabc",
	})

	err := h.settlement.HandlePaymentConfirmed(context.Background(), &stripe.WebhookResult{
		EventID: "evt_3",
		OrderID: order.ID,
		Status:  "success",
	})
	if !errors.Is(err, ErrMintFailed) {
		t.Fatalf("expected mint failure, got %v", err)
	}

	failed, err := h.orderRepo.GetByID(order.ID)
	if err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if failed.Status != constants.OrderStatusFailed || failed.FailedReason != constants.FailReasonMint {
		t.Fatalf("expected mint failure recorded, got %s / %s", failed.Status, failed.FailedReason)
	}
}

func TestHandlePaymentConfirmedExpiredFailsOrder(t *testing.T) {
	h := newSettlementHarness(t)
	claimKey := "wallet:0xabc"
	order := h.seedPendingOrder(t, &models.Collectible{}, &models.Order{
		OrderNo:       "DF00000000000000000013",
		Kind:          constants.OrderKindRegular,
		ClaimKey:      &claimKey,
		WalletAddress: "0xabc",
	})

	err := h.settlement.HandlePaymentConfirmed(context.Background(), &stripe.WebhookResult{
		EventID: "evt_4",
		OrderID: order.ID,
		Status:  "expired",
	})
	if err != nil {
		t.Fatalf("expired settle errored: %v", err)
	}

	failed, err := h.orderRepo.GetByID(order.ID)
	if err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if failed.Status != constants.OrderStatusFailed || failed.FailedReason != constants.FailReasonPayment {
		t.Fatalf("expected payment failure recorded, got %s / %s", failed.Status, failed.FailedReason)
	}
	if failed.ClaimKey != nil {
		t.Fatalf("expected claim key cleared on failure")
	}
}

func TestHandlePaymentConfirmedUnknownOrder(t *testing.T) {
	h := newSettlementHarness(t)

	err := h.settlement.HandlePaymentConfirmed(context.Background(), &stripe.WebhookResult{
		EventID: "evt_5",
		OrderID: 4242,
		Status:  "success",
	})
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected order not found, got %v", err)
	}
}

func TestHandleClaimVisitIsSingleUse(t *testing.T) {
	h := newSettlementHarness(t)
	claimKey := "email:fan@example.com"
	code := "claim-code-20"
	order := h.seedPendingOrder(t, &models.Collectible{IsLightVersion: true}, &models.Order{
		OrderNo:       "DF00000000000000000020",
		Kind:          constants.OrderKindLight,
		ClaimKey:      &claimKey,
		Email:         "fan@example.com",
		SignatureCode: &code,
	})

	visited, err := h.settlement.HandleClaimVisit(code)
	if err != nil {
		t.Fatalf("claim visit failed: %v", err)
	}
	if visited.Status != constants.OrderStatusCompleted || visited.SignatureUsedAt == nil {
		t.Fatalf("expected completed visit, got %s", visited.Status)
	}

	// the spent code now looks like any unknown code
	if _, err := h.settlement.HandleClaimVisit(code); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected spent code rejection, got %v", err)
	}

	reloaded, err := h.orderRepo.GetByID(order.ID)
	if err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloaded.SignatureCode != nil {
		t.Fatalf("expected signature code nulled out")
	}
}

func TestHandleClaimVisitWindowClosedFailsOrder(t *testing.T) {
	h := newSettlementHarness(t)
	claimKey := "email:fan@example.com"
	code := "claim-code-21"
	order := h.seedPendingOrder(t, &models.Collectible{
		IsLightVersion: true,
		MintStartDate:  timePtr(time.Now().UTC().Add(-48 * time.Hour)),
		MintEndDate:    timePtr(time.Now().UTC().Add(-1 * time.Hour)),
	}, &models.Order{
		OrderNo:       "DF00000000000000000021",
		Kind:          constants.OrderKindLight,
		ClaimKey:      &claimKey,
		Email:         "fan@example.com",
		SignatureCode: &code,
	})

	if _, err := h.settlement.HandleClaimVisit(code); !errors.Is(err, ErrWindowEnded) {
		t.Fatalf("expected window ended, got %v", err)
	}

	failed, err := h.orderRepo.GetByID(order.ID)
	if err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if failed.Status != constants.OrderStatusFailed || failed.FailedReason != constants.FailReasonWindowClosed {
		t.Fatalf("expected window-closed failure, got %s / %s", failed.Status, failed.FailedReason)
	}
}

func TestHandleClaimVisitSoldOutAtCompletionCap(t *testing.T) {
	h := newSettlementHarness(t)
	claimKey := "email:fan@example.com"
	code := "claim-code-22"
	collectible := &models.Collectible{
		IsLightVersion: true,
		QuantityType:   constants.QuantityTypeSingle,
	}
	order := h.seedPendingOrder(t, collectible, &models.Order{
		OrderNo:       "DF00000000000000000022",
		Kind:          constants.OrderKindLight,
		ClaimKey:      &claimKey,
		Email:         "fan@example.com",
		SignatureCode: &code,
	})

	// someone else finished their claim first
	winner := "email:first@example.com"
	now := time.Now().UTC()
	if err := h.db.Create(&models.Order{
		OrderNo:       "DF00000000000000000023",
		Kind:          constants.OrderKindLight,
		Status:        constants.OrderStatusCompleted,
		CollectibleID: collectible.ID,
		ClaimKey:      &winner,
		Email:         "first@example.com",
		Currency:      "USD",
		CompletedAt:   &now,
	}).Error; err != nil {
		t.Fatalf("create winning order failed: %v", err)
	}

	if _, err := h.settlement.HandleClaimVisit(code); !errors.Is(err, ErrSoldOut) {
		t.Fatalf("expected sold out, got %v", err)
	}

	failed, err := h.orderRepo.GetByID(order.ID)
	if err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if failed.Status != constants.OrderStatusFailed || failed.FailedReason != constants.FailReasonSoldOut {
		t.Fatalf("expected sold-out failure, got %s / %s", failed.Status, failed.FailedReason)
	}
}

func TestHandleClaimVisitUnknownCode(t *testing.T) {
	h := newSettlementHarness(t)

	if _, err := h.settlement.HandleClaimVisit("never-issued"); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected signature invalid, got %v", err)
	}
}
