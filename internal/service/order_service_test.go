package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dropforge/internal/config"
	"github.com/dropforge/internal/constants"
	"github.com/dropforge/internal/mint"
	"github.com/dropforge/internal/models"
	"github.com/dropforge/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fakeMinter struct {
	enabled   bool
	err       error
	signature string
	calls     int
}

func (f *fakeMinter) Enabled() bool {
	return f.enabled
}

func (f *fakeMinter) Mint(ctx context.Context, req mint.Request) (*mint.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &mint.Result{Signature: f.signature}, nil
}

type orderHarness struct {
	db         *gorm.DB
	orders     *OrderService
	orderRepo  repository.OrderRepository
	collRepo   repository.CollectibleRepository
	minter     *fakeMinter
	paymentCfg *config.PaymentConfig
}

func newOrderHarness(t *testing.T) *orderHarness {
	t.Helper()

	db := newTestDB(t)
	collectionRepo := repository.NewCollectionRepository(db)
	collRepo := repository.NewCollectibleRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	eligibility := NewEligibilityService(collectionRepo, collRepo, orderRepo)
	// a disabled SMTP config makes every claim email fail deterministically
	emailService := NewEmailService(&config.EmailConfig{Enabled: false})
	minter := &fakeMinter{enabled: true, signature: "sig_test_1"}
	paymentCfg := &config.PaymentConfig{Enabled: false}
	claimCfg := &config.ClaimConfig{BaseURL: "https://claims.test"}

	return &orderHarness{
		db:         db,
		orders:     NewOrderService(orderRepo, collRepo, eligibility, emailService, minter, nil, paymentCfg, claimCfg),
		orderRepo:  orderRepo,
		collRepo:   collRepo,
		minter:     minter,
		paymentCfg: paymentCfg,
	}
}

func (h *orderHarness) seedOpenCollectible(t *testing.T, collectible *models.Collectible) *models.Collectible {
	t.Helper()

	collection := seedCollection(t, h.db)
	collectible.CollectionID = collection.ID
	return seedCollectible(t, h.db, collectible)
}

func TestInitiateOrderFreeRegularMintsImmediately(t *testing.T) {
	h := newOrderHarness(t)
	collectible := h.seedOpenCollectible(t, &models.Collectible{})

	result, err := h.orders.InitiateOrder(context.Background(), InitiateOrderInput{
		Identity:      Identity{WalletAddress: "0xAbC123"},
		CollectibleID: collectible.ID,
	})
	if err != nil {
		t.Fatalf("initiate order failed: %v", err)
	}
	if result.Order.Status != constants.OrderStatusCompleted {
		t.Fatalf("expected completed order, got %s", result.Order.Status)
	}
	if result.Order.MintSignature != "sig_test_1" {
		t.Fatalf("expected mint signature, got %q", result.Order.MintSignature)
	}
	if h.minter.calls != 1 {
		t.Fatalf("expected 1 mint call, got %d", h.minter.calls)
	}
	if !strings.HasPrefix(result.Order.OrderNo, "DF") {
		t.Fatalf("unexpected order no: %s", result.Order.OrderNo)
	}

	reloaded, err := h.collRepo.GetByID(collectible.ID)
	if err != nil {
		t.Fatalf("reload collectible failed: %v", err)
	}
	if reloaded.ReservedCount != 1 {
		t.Fatalf("expected reservation held, got %d", reloaded.ReservedCount)
	}
}

func TestInitiateOrderLightEmailFailureFailsOrder(t *testing.T) {
	h := newOrderHarness(t)
	collectible := h.seedOpenCollectible(t, &models.Collectible{IsLightVersion: true})

	_, err := h.orders.InitiateOrder(context.Background(), InitiateOrderInput{
		Identity:      Identity{Email: "fan@example.com"},
		CollectibleID: collectible.ID,
	})
	if !errors.Is(err, ErrEmailSendFailed) {
		t.Fatalf("expected email send failure, got %v", err)
	}

	var order models.Order
	if err := h.db.Where("collectible_id = ?", collectible.ID).First(&order).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	if order.Status != constants.OrderStatusFailed {
		t.Fatalf("expected failed order, got %s", order.Status)
	}
	if order.FailedReason != constants.FailReasonEmailSend {
		t.Fatalf("unexpected failed reason: %s", order.FailedReason)
	}
	if order.ClaimKey != nil || order.SignatureCode != nil {
		t.Fatalf("expected claim key and signature cleared, got %v / %v", order.ClaimKey, order.SignatureCode)
	}

	reloaded, err := h.collRepo.GetByID(collectible.ID)
	if err != nil {
		t.Fatalf("reload collectible failed: %v", err)
	}
	if reloaded.ReservedCount != 0 {
		t.Fatalf("expected reservation released, got %d", reloaded.ReservedCount)
	}

	// with the claim key cleared the same identity may try again
	_, err = h.orders.InitiateOrder(context.Background(), InitiateOrderInput{
		Identity:      Identity{Email: "fan@example.com"},
		CollectibleID: collectible.ID,
	})
	if !errors.Is(err, ErrEmailSendFailed) {
		t.Fatalf("expected retry to reach the email step again, got %v", err)
	}
}

func TestInitiateOrderDoubleClaimRejected(t *testing.T) {
	h := newOrderHarness(t)
	collectible := h.seedOpenCollectible(t, &models.Collectible{})
	input := InitiateOrderInput{
		Identity:      Identity{WalletAddress: "0xAbC123"},
		CollectibleID: collectible.ID,
	}

	if _, err := h.orders.InitiateOrder(context.Background(), input); err != nil {
		t.Fatalf("first claim failed: %v", err)
	}
	_, err := h.orders.InitiateOrder(context.Background(), input)
	if !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("expected already claimed, got %v", err)
	}
}

func TestInitiateOrderLimitedSupplyExhausts(t *testing.T) {
	h := newOrderHarness(t)
	collectible := h.seedOpenCollectible(t, &models.Collectible{
		QuantityType: constants.QuantityTypeLimited,
		Quantity:     1,
	})

	if _, err := h.orders.InitiateOrder(context.Background(), InitiateOrderInput{
		Identity:      Identity{WalletAddress: "0xWalletA"},
		CollectibleID: collectible.ID,
	}); err != nil {
		t.Fatalf("first claim failed: %v", err)
	}

	_, err := h.orders.InitiateOrder(context.Background(), InitiateOrderInput{
		Identity:      Identity{WalletAddress: "0xWalletB"},
		CollectibleID: collectible.ID,
	})
	if !errors.Is(err, ErrSoldOut) {
		t.Fatalf("expected sold out, got %v", err)
	}
}

func TestInitiateOrderPaidWithDisabledGatewayFails(t *testing.T) {
	h := newOrderHarness(t)
	collectible := h.seedOpenCollectible(t, &models.Collectible{
		PriceAmount: models.NewMoneyFromDecimal(decimal.RequireFromString("5.00")),
	})

	_, err := h.orders.InitiateOrder(context.Background(), InitiateOrderInput{
		Identity:      Identity{WalletAddress: "0xAbC123"},
		CollectibleID: collectible.ID,
	})
	if !errors.Is(err, ErrPaymentDisabled) {
		t.Fatalf("expected payment disabled, got %v", err)
	}

	var order models.Order
	if err := h.db.Where("collectible_id = ?", collectible.ID).First(&order).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	if order.Status != constants.OrderStatusFailed || order.FailedReason != constants.FailReasonPayment {
		t.Fatalf("expected payment failure, got %s / %s", order.Status, order.FailedReason)
	}
}

func TestInitiateOrderRequiresMatchingIdentity(t *testing.T) {
	h := newOrderHarness(t)
	light := h.seedOpenCollectible(t, &models.Collectible{IsLightVersion: true})

	// light claims need an email, a wallet alone is not enough
	_, err := h.orders.InitiateOrder(context.Background(), InitiateOrderInput{
		Identity:      Identity{WalletAddress: "0xAbC123"},
		CollectibleID: light.ID,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for light claim without email, got %v", err)
	}
}

func TestUpdateOrderStatusGuardsTerminalStates(t *testing.T) {
	h := newOrderHarness(t)
	collectible := h.seedOpenCollectible(t, &models.Collectible{})

	result, err := h.orders.InitiateOrder(context.Background(), InitiateOrderInput{
		Identity:      Identity{WalletAddress: "0xAbC123"},
		CollectibleID: collectible.ID,
	})
	if err != nil {
		t.Fatalf("initiate order failed: %v", err)
	}

	// the free mint already completed the order, no transition is left
	_, err = h.orders.UpdateOrderStatus(result.Order.ID, constants.OrderStatusFailed)
	if !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("expected transition rejection from completed, got %v", err)
	}
}

func TestUpdateOrderStatusAdminFailureReleasesClaim(t *testing.T) {
	h := newOrderHarness(t)
	collectible := h.seedOpenCollectible(t, &models.Collectible{})
	claimKey := "wallet:0xabc123"
	code := "code-admin-1"
	pending := &models.Order{
		OrderNo:       "DF00000000000000000002",
		Kind:          constants.OrderKindRegular,
		Status:        constants.OrderStatusPending,
		CollectibleID: collectible.ID,
		ClaimKey:      &claimKey,
		WalletAddress: "0xabc123",
		Currency:      "USD",
		SignatureCode: &code,
	}
	if err := h.db.Create(pending).Error; err != nil {
		t.Fatalf("create pending order failed: %v", err)
	}
	if _, err := h.collRepo.ReserveSupply(collectible.ID); err != nil {
		t.Fatalf("reserve supply failed: %v", err)
	}

	updated, err := h.orders.UpdateOrderStatus(pending.ID, constants.OrderStatusFailed)
	if err != nil {
		t.Fatalf("admin override failed: %v", err)
	}
	if updated.Status != constants.OrderStatusFailed || updated.FailedReason != constants.FailReasonAdminOverride {
		t.Fatalf("expected admin failure, got %s / %s", updated.Status, updated.FailedReason)
	}
	if updated.ClaimKey != nil || updated.SignatureCode != nil {
		t.Fatalf("expected claim key and signature cleared")
	}

	reloaded, err := h.collRepo.GetByID(collectible.ID)
	if err != nil {
		t.Fatalf("reload collectible failed: %v", err)
	}
	if reloaded.ReservedCount != 0 {
		t.Fatalf("expected reservation released, got %d", reloaded.ReservedCount)
	}
}
