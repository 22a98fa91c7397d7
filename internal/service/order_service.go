package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/dropforge/internal/config"
	"github.com/dropforge/internal/constants"
	"github.com/dropforge/internal/logger"
	"github.com/dropforge/internal/mint"
	"github.com/dropforge/internal/models"
	"github.com/dropforge/internal/payment/stripe"
	"github.com/dropforge/internal/repository"

	"gorm.io/gorm"
)

// allowedTransitions lists the legal admin status overrides. Completed and
// failed are terminal.
var allowedTransitions = map[string][]string{
	constants.OrderStatusPending: {
		constants.OrderStatusCompleted,
		constants.OrderStatusFailed,
	},
}

func isTransitionAllowed(from, to string) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Minter is the on-chain minting collaborator.
type Minter interface {
	Enabled() bool
	Mint(ctx context.Context, req mint.Request) (*mint.Result, error)
}

// ReceiptEnqueuer queues the post-completion receipt email. May be nil when
// the queue is disabled.
type ReceiptEnqueuer interface {
	EnqueueReceiptEmail(orderID uint) error
}

// OrderService drives the claim lifecycle from initiation to a terminal state.
type OrderService struct {
	orderRepo       repository.OrderRepository
	collectibleRepo repository.CollectibleRepository
	eligibility     *EligibilityService
	emailService    *EmailService
	minter          Minter
	receipts        ReceiptEnqueuer
	paymentCfg      *config.PaymentConfig
	claimCfg        *config.ClaimConfig
}

// NewOrderService creates the order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	collectibleRepo repository.CollectibleRepository,
	eligibility *EligibilityService,
	emailService *EmailService,
	minter Minter,
	receipts ReceiptEnqueuer,
	paymentCfg *config.PaymentConfig,
	claimCfg *config.ClaimConfig,
) *OrderService {
	return &OrderService{
		orderRepo:       orderRepo,
		collectibleRepo: collectibleRepo,
		eligibility:     eligibility,
		emailService:    emailService,
		minter:          minter,
		receipts:        receipts,
		paymentCfg:      paymentCfg,
		claimCfg:        claimCfg,
	}
}

// InitiateOrderInput is one claim attempt.
type InitiateOrderInput struct {
	Identity      Identity
	CollectibleID uint
	ClientIP      string
}

// InitiateOrderResult is the opened order plus, for paid claims, the checkout
// redirect.
type InitiateOrderResult struct {
	Order       *models.Order `json:"order"`
	CheckoutURL string        `json:"checkout_url,omitempty"`
}

// InitiateOrder reruns eligibility, reserves supply, and opens the order.
// Light collectibles get a single-use claim link by mail; regular ones are
// minted directly when free, or parked behind a checkout session when paid.
func (s *OrderService) InitiateOrder(ctx context.Context, input InitiateOrderInput) (*InitiateOrderResult, error) {
	check, collectible, err := s.eligibility.CheckEligibility(input.Identity, input.CollectibleID)
	if err != nil {
		return nil, err
	}
	if !check.Eligible {
		return nil, eligibilityError(check)
	}

	claimKey := input.Identity.ClaimKey()
	kind := constants.OrderKindRegular
	if collectible.IsLightVersion {
		kind = constants.OrderKindLight
	}
	email := strings.ToLower(strings.TrimSpace(input.Identity.Email))
	wallet := strings.ToLower(strings.TrimSpace(input.Identity.WalletAddress))
	if kind == constants.OrderKindLight && email == "" {
		return nil, ErrInvalidInput
	}
	if kind == constants.OrderKindRegular && wallet == "" {
		return nil, ErrInvalidInput
	}

	order := &models.Order{
		OrderNo:       generateOrderNo(),
		Kind:          kind,
		Status:        constants.OrderStatusPending,
		CollectibleID: collectible.ID,
		ClaimKey:      &claimKey,
		Email:         email,
		WalletAddress: wallet,
		DeviceID:      strings.TrimSpace(input.Identity.DeviceID),
		Currency:      collectible.Currency,
		PriceAmount:   collectible.PriceAmount,
		ClientIP:      strings.TrimSpace(input.ClientIP),
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		rows, err := s.collectibleRepo.WithTx(tx).ReserveSupply(collectible.ID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrSoldOut
		}
		// a concurrent claim by the same identity trips the
		// (collectible, claim key) unique index here
		if err := s.orderRepo.WithTx(tx).Create(order); err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyClaimed
			}
			return err
		}
		code := generateSignatureCode(order.ID)
		claimURL := s.claimPageURL(code)
		if err := s.orderRepo.WithTx(tx).UpdateStatus(order.ID, constants.OrderStatusPending, map[string]interface{}{
			"signature_code": code,
			"claim_page_url": claimURL,
		}); err != nil {
			return err
		}
		order.SignatureCode = &code
		order.ClaimPageURL = claimURL
		return nil
	})
	if err != nil {
		return nil, err
	}
	order.Collectible = *collectible

	logger.Infow("order_initiated",
		"order_no", order.OrderNo,
		"kind", order.Kind,
		"collectible_id", collectible.ID,
		"claim_key", claimKey,
	)

	switch {
	case kind == constants.OrderKindLight:
		return s.dispatchClaimEmail(order)
	case order.PriceAmount.IsZero():
		return s.completeFreeMint(ctx, order)
	default:
		return s.openCheckoutSession(ctx, order)
	}
}

// dispatchClaimEmail mails the claim link synchronously. A send failure kills
// the order: the signature must never reach a mailbox we could not verify.
func (s *OrderService) dispatchClaimEmail(order *models.Order) (*InitiateOrderResult, error) {
	if err := s.emailService.SendClaimEmail(order.Email, order); err != nil {
		logger.Errorw("order_claim_email_failed",
			"order_no", order.OrderNo,
			"error", err,
		)
		s.failOrder(order, constants.FailReasonEmailSend)
		return nil, ErrEmailSendFailed
	}
	if err := s.orderRepo.UpdateStatus(order.ID, constants.OrderStatusPending, map[string]interface{}{
		"email_sent": true,
	}); err != nil {
		return nil, err
	}
	order.EmailSent = true
	return &InitiateOrderResult{Order: order}, nil
}

// completeFreeMint mints a free regular claim right away.
func (s *OrderService) completeFreeMint(ctx context.Context, order *models.Order) (*InitiateOrderResult, error) {
	result, err := s.minter.Mint(ctx, mint.Request{
		OrderNo:       order.OrderNo,
		CollectibleID: order.CollectibleID,
		Recipient:     order.WalletAddress,
	})
	if err != nil {
		logger.Errorw("order_free_mint_failed",
			"order_no", order.OrderNo,
			"error", err,
		)
		s.failOrder(order, constants.FailReasonMint)
		return nil, ErrMintFailed
	}
	if err := s.markCompleted(order, result.Signature); err != nil {
		return nil, err
	}
	return &InitiateOrderResult{Order: order}, nil
}

// openCheckoutSession parks a paid claim behind the payment gateway.
func (s *OrderService) openCheckoutSession(ctx context.Context, order *models.Order) (*InitiateOrderResult, error) {
	if s.paymentCfg == nil || !s.paymentCfg.Enabled {
		s.failOrder(order, constants.FailReasonPayment)
		return nil, ErrPaymentDisabled
	}
	cfg := s.stripeConfig()
	session, err := stripe.CreateCheckoutSession(ctx, cfg, stripe.CreateInput{
		OrderNo:       order.OrderNo,
		OrderID:       order.ID,
		CollectibleID: order.CollectibleID,
		Amount:        order.PriceAmount.String(),
		Currency:      order.Currency,
		Description:   order.Collectible.Title,
	})
	if err != nil {
		logger.Errorw("order_checkout_session_failed",
			"order_no", order.OrderNo,
			"error", err,
		)
		s.failOrder(order, constants.FailReasonPayment)
		return nil, ErrPaymentFailed
	}
	if err := s.orderRepo.UpdateStatus(order.ID, constants.OrderStatusPending, map[string]interface{}{
		"checkout_session_id": session.SessionID,
	}); err != nil {
		return nil, err
	}
	order.CheckoutSessionID = session.SessionID
	return &InitiateOrderResult{Order: order, CheckoutURL: session.URL}, nil
}

// UpdateOrderStatus is the admin override. Only pending orders move, and a
// forced failure releases the claim like any other failure.
func (s *OrderService) UpdateOrderStatus(id uint, status string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !isTransitionAllowed(order.Status, status) {
		return nil, ErrOrderStatusInvalid
	}

	switch status {
	case constants.OrderStatusCompleted:
		if err := s.markCompleted(order, order.MintSignature); err != nil {
			return nil, err
		}
	case constants.OrderStatusFailed:
		if err := s.failOrder(order, constants.FailReasonAdminOverride); err != nil {
			return nil, err
		}
	default:
		return nil, ErrOrderStatusInvalid
	}

	logger.Infow("order_status_overridden",
		"order_no", order.OrderNo,
		"from", constants.OrderStatusPending,
		"to", status,
	)
	return s.orderRepo.GetByID(id)
}

// GetOrder fetches one order.
func (s *OrderService) GetOrder(id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListOrders returns orders for the admin surface.
func (s *OrderService) ListOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.List(filter)
}

// markCompleted moves an order to its terminal success state and queues the
// receipt email.
func (s *OrderService) markCompleted(order *models.Order, mintSignature string) error {
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"completed_at": now,
	}
	if mintSignature != "" {
		updates["mint_signature"] = mintSignature
	}
	if err := s.orderRepo.UpdateStatus(order.ID, constants.OrderStatusCompleted, updates); err != nil {
		return err
	}
	order.Status = constants.OrderStatusCompleted
	order.CompletedAt = &now
	order.MintSignature = mintSignature
	s.enqueueReceipt(order)
	return nil
}

// failOrder moves an order to failed: the claim key and signature are cleared
// so the identity can try again and the link goes dead, and the supply
// reservation is handed back.
func (s *OrderService) failOrder(order *models.Order, reason string) error {
	now := time.Now().UTC()
	err := s.orderRepo.UpdateStatus(order.ID, constants.OrderStatusFailed, map[string]interface{}{
		"claim_key":      nil,
		"signature_code": nil,
		"failed_reason":  reason,
		"failed_at":      now,
	})
	if err != nil {
		logger.Errorw("order_fail_update_failed", "order_no", order.OrderNo, "error", err)
		return err
	}
	order.Status = constants.OrderStatusFailed
	order.ClaimKey = nil
	order.SignatureCode = nil
	order.FailedReason = reason
	order.FailedAt = &now

	if _, err := s.collectibleRepo.ReleaseSupply(order.CollectibleID); err != nil {
		logger.Errorw("order_supply_release_failed",
			"order_no", order.OrderNo,
			"collectible_id", order.CollectibleID,
			"error", err,
		)
	}
	return nil
}

func (s *OrderService) enqueueReceipt(order *models.Order) {
	if s.receipts == nil || order.Email == "" {
		return
	}
	if err := s.receipts.EnqueueReceiptEmail(order.ID); err != nil {
		logger.Warnw("order_receipt_enqueue_failed", "order_no", order.OrderNo, "error", err)
	}
}

func (s *OrderService) claimPageURL(code string) string {
	base := "http://localhost:3000"
	if s.claimCfg != nil && strings.TrimSpace(s.claimCfg.BaseURL) != "" {
		base = strings.TrimRight(strings.TrimSpace(s.claimCfg.BaseURL), "/")
	}
	return base + "/claim/" + code
}

func (s *OrderService) stripeConfig() *stripe.Config {
	cfg := &stripe.Config{
		SecretKey:               s.paymentCfg.SecretKey,
		WebhookSecret:           s.paymentCfg.WebhookSecret,
		SuccessURL:              s.paymentCfg.SuccessURL,
		CancelURL:               s.paymentCfg.CancelURL,
		APIBaseURL:              s.paymentCfg.APIBase,
		WebhookToleranceSeconds: s.paymentCfg.ToleranceSeconds,
	}
	cfg.Normalize()
	return cfg
}

// generateOrderNo builds a DF-prefixed order number: timestamp plus six
// random digits.
func generateOrderNo() string {
	return fmt.Sprintf("DF%s%s", time.Now().UTC().Format("20060102150405"), randNumeric(6))
}

// generateSignatureCode builds the single-use claim code. Random bytes carry
// the entropy; the order id keeps codes distinct even on a broken reader.
func generateSignatureCode(orderID uint) string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%x%d", time.Now().UTC().UnixNano(), orderID)
	}
	return fmt.Sprintf("%s%x", hex.EncodeToString(buf), orderID)
}

func randNumeric(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			sb.WriteString("0")
			continue
		}
		sb.WriteString(num.String())
	}
	return sb.String()
}

// isUniqueViolation sniffs a unique-index failure across sqlite and postgres.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}
