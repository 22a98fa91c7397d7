package models

import (
	"time"

	"gorm.io/gorm"
)

// Collectible is one dated claimable instance. A scheduler-made row carries
// its batch listing and mint-start hour in a unique pair, which is what makes
// a re-run of the same hour a no-op.
type Collectible struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                                       // primary key
	CollectionID   uint           `gorm:"not null;index" json:"collection_id"`                                        // owning collection
	BatchListingID *uint          `gorm:"index:idx_collectibles_occurrence,unique" json:"batch_listing_id,omitempty"` // source template (nil = one-off)
	Title          string         `gorm:"not null" json:"title"`                                                      // display title
	Description    string         `gorm:"type:text" json:"description"`                                               // display description
	ImageURL       string         `gorm:"type:varchar(500)" json:"image_url"`                                         // artwork image
	LabelImageURL  string         `gorm:"type:varchar(500)" json:"label_image_url"`                                   // rendered date/day label
	PriceAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"`                  // unit price (0 = free)
	Currency       string         `gorm:"type:varchar(10);not null" json:"currency"`                                  // price currency
	QuantityType   string         `gorm:"type:varchar(20);not null" json:"quantity_type"`                             // single / limited / open
	Quantity       int            `gorm:"not null;default:0" json:"quantity"`                                         // supply cap (limited only)
	ReservedCount  int            `gorm:"not null;default:0" json:"reserved_count"`                                   // reservations taken (CAS guarded)
	MintStartDate  *time.Time     `gorm:"index:idx_collectibles_occurrence,unique" json:"mint_start_date"`            // window open (nil = already open)
	MintEndDate    *time.Time     `gorm:"index" json:"mint_end_date"`                                                 // window close (nil = never)
	DayNumber      int            `gorm:"not null;default:0" json:"day_number"`                                       // ordinal within the batch run
	IsLightVersion bool           `gorm:"not null;default:false" json:"is_light_version"`                             // light (email) flavor
	CTAText        string         `gorm:"type:varchar(200)" json:"cta_text"`                                          // call-to-action label
	CTAURL         string         `gorm:"type:varchar(500)" json:"cta_url"`                                           // call-to-action target
	IsActive       bool           `gorm:"default:true;index" json:"is_active"`                                        // visible / claimable
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                                    // created at
	UpdatedAt      time.Time      `json:"updated_at"`                                                                 // updated at
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                                             // soft delete

	Collection   Collection    `gorm:"foreignKey:CollectionID" json:"collection,omitempty"`       // owning collection
	BatchListing *BatchListing `gorm:"foreignKey:BatchListingID" json:"batch_listing,omitempty"`  // source template
}

// TableName sets the table name.
func (Collectible) TableName() string {
	return "collectibles"
}

// WindowOpenAt reports whether the mint window contains t.
func (c *Collectible) WindowOpenAt(t time.Time) bool {
	if c.MintStartDate != nil && t.Before(*c.MintStartDate) {
		return false
	}
	if c.MintEndDate != nil && !t.Before(*c.MintEndDate) {
		return false
	}
	return true
}
