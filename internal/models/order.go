package models

import (
	"time"
)

// Order is one claim lifecycle, light or regular. Rows are never deleted;
// failed orders clear their claim key so the (collectible, claim key) unique
// pair only ever blocks a live claim.
type Order struct {
	ID                uint       `gorm:"primarykey" json:"id"`                                            // primary key
	OrderNo           string     `gorm:"uniqueIndex;not null" json:"order_no"`                            // human-facing order number
	Kind              string     `gorm:"type:varchar(20);not null;index" json:"kind"`                     // light / regular
	Status            string     `gorm:"type:varchar(20);not null;index" json:"status"`                   // pending / completed / failed
	CollectibleID     uint       `gorm:"not null;index:idx_orders_claim,unique" json:"collectible_id"`    // claimed collectible
	ClaimKey          *string    `gorm:"type:varchar(200);index:idx_orders_claim,unique" json:"-"`        // normalized identity (nil once failed)
	Email             string     `gorm:"index" json:"email,omitempty"`                                    // claimant email (light)
	WalletAddress     string     `gorm:"index" json:"wallet_address,omitempty"`                           // claimant wallet (regular)
	DeviceID          string     `gorm:"type:varchar(100)" json:"device_id,omitempty"`                    // claimant device fallback
	Currency          string     `gorm:"type:varchar(10);not null" json:"currency"`                       // price currency snapshot
	PriceAmount       Money      `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"`       // price snapshot
	SignatureCode     *string    `gorm:"uniqueIndex" json:"-"`                                            // single-use claim code (nil once used)
	SignatureUsedAt   *time.Time `json:"signature_used_at,omitempty"`                                     // when the claim link was visited
	EmailSent         bool       `gorm:"not null;default:false" json:"email_sent"`                        // claim email delivered
	ClaimPageURL      string     `gorm:"type:varchar(500)" json:"claim_page_url,omitempty"`               // link mailed to the claimant
	MintSignature     string     `gorm:"type:varchar(300)" json:"mint_signature,omitempty"`               // on-chain mint receipt
	CheckoutSessionID string     `gorm:"index" json:"checkout_session_id,omitempty"`                      // payment-gateway session
	FailedReason      string     `gorm:"type:varchar(200)" json:"failed_reason,omitempty"`                // why the order failed
	ClientIP          string     `gorm:"type:varchar(64)" json:"client_ip,omitempty"`                     // claimant IP
	CompletedAt       *time.Time `gorm:"index" json:"completed_at,omitempty"`                             // terminal success time
	FailedAt          *time.Time `gorm:"index" json:"failed_at,omitempty"`                                // terminal failure time
	CreatedAt         time.Time  `gorm:"index" json:"created_at"`                                         // created at
	UpdatedAt         time.Time  `gorm:"index" json:"updated_at"`                                         // updated at

	Collectible Collectible `gorm:"foreignKey:CollectibleID" json:"collectible,omitempty"` // claimed collectible
}

// TableName sets the table name.
func (Order) TableName() string {
	return "orders"
}
