package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// IntArray stores an int slice as a JSON column (weekday / month-day picks).
type IntArray []int

// Value implements driver.Valuer.
func (a IntArray) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner.
func (a *IntArray) Scan(value interface{}) error {
	if value == nil {
		*a = IntArray{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return nil
		}
	}
	return json.Unmarshal(bytes, a)
}

// BatchListing is the recurring template collectibles are materialized from.
type BatchListing struct {
	ID                uint           `gorm:"primarykey" json:"id"`                                        // primary key
	CollectionID      uint           `gorm:"not null;index" json:"collection_id"`                         // owning collection
	Title             string         `gorm:"not null" json:"title"`                                       // template title
	Description       string         `gorm:"type:text" json:"description"`                                // template description
	ImageURL          string         `gorm:"type:varchar(500)" json:"image_url"`                          // template image
	PriceAmount       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"`   // unit price (0 = free)
	Currency          string         `gorm:"type:varchar(10);not null" json:"currency"`                   // price currency
	QuantityType      string         `gorm:"type:varchar(20);not null" json:"quantity_type"`              // single / limited / open
	Quantity          int            `gorm:"not null;default:0" json:"quantity"`                          // supply cap (limited only)
	IsLightVersion    bool           `gorm:"not null;default:false" json:"is_light_version"`              // light (email) flavor
	CTAText           string         `gorm:"type:varchar(200)" json:"cta_text"`                           // call-to-action label
	CTAURL            string         `gorm:"type:varchar(500)" json:"cta_url"`                            // call-to-action target
	FrequencyType     string         `gorm:"type:varchar(20);not null" json:"frequency_type"`             // daily / weekly / monthly
	FrequencyDays     IntArray       `gorm:"type:json" json:"frequency_days"`                             // weekdays (0=Sun) or month days
	BatchHour         int            `gorm:"not null;default:0" json:"batch_hour"`                        // UTC hour a window opens
	BatchStartDate    time.Time      `gorm:"not null;index" json:"batch_start_date"`                      // first eligible date
	BatchEndDate      *time.Time     `gorm:"index" json:"batch_end_date"`                                 // last eligible date (nil = forever)
	AlwaysActive      bool           `gorm:"not null;default:false" json:"always_active"`                 // windows chain back to back
	LabelMode         string         `gorm:"type:varchar(20);not null;default:'none'" json:"label_mode"`  // none / date / day
	TotalCollectibles int            `gorm:"not null;default:0" json:"total_collectibles"`                // occurrences materialized so far
	IsActive          bool           `gorm:"default:true;index" json:"is_active"`                         // scheduler considers it
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`                                     // created at
	UpdatedAt         time.Time      `json:"updated_at"`                                                  // updated at
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`                                              // soft delete

	Collection Collection `gorm:"foreignKey:CollectionID" json:"collection,omitempty"` // owning collection
}

// TableName sets the table name.
func (BatchListing) TableName() string {
	return "batch_listings"
}
