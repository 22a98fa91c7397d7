package service

import "errors"

// Service-level sentinel errors. Handlers map these to response codes.
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrCollectionNotFound   = errors.New("collection not found")
	ErrCollectionSlugExists = errors.New("collection slug already exists")
	ErrBatchListingNotFound = errors.New("batch listing not found")
	ErrCollectibleNotFound  = errors.New("collectible not found")
	ErrChipLinkNotFound     = errors.New("chip link not found")
	ErrChipTagExists        = errors.New("chip tag already linked")
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderStatusInvalid   = errors.New("order status transition not allowed")

	ErrWindowNotOpen  = errors.New("mint window not open yet")
	ErrWindowEnded    = errors.New("mint window ended")
	ErrAlreadyClaimed = errors.New("already claimed")
	ErrSoldOut        = errors.New("sold out")

	ErrSignatureInvalid = errors.New("signature code invalid")
	ErrSignatureUsed    = errors.New("signature code already used")

	ErrEmailDisabled    = errors.New("email sending disabled")
	ErrEmailSendFailed  = errors.New("email send failed")
	ErrPaymentDisabled  = errors.New("payment gateway disabled")
	ErrPaymentFailed    = errors.New("payment gateway request failed")
	ErrMintFailed       = errors.New("mint request failed")
	ErrStorageFailed    = errors.New("image storage request failed")
	ErrWebhookInvalid   = errors.New("webhook payload invalid")
	ErrQueueUnavailable = errors.New("task queue unavailable")
)
