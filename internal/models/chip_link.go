package models

import (
	"time"

	"gorm.io/gorm"
)

// ChipLink binds a physical NFC tag to a collection and, while a batch run is
// live, to its newest collectible.
type ChipLink struct {
	ID             uint           `gorm:"primarykey" json:"id"`                         // primary key
	TagUID         string         `gorm:"uniqueIndex;not null" json:"tag_uid"`          // NFC tag UID
	CollectionID   uint           `gorm:"not null;index" json:"collection_id"`          // owning collection (survives disconnect)
	CollectibleID  *uint          `gorm:"index" json:"collectible_id,omitempty"`        // current target collectible
	BatchListingID *uint          `gorm:"index" json:"batch_listing_id,omitempty"`      // followed template (scheduler repoints)
	IsActive       bool           `gorm:"default:true;index" json:"is_active"`          // tag enabled
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                      // created at
	UpdatedAt      time.Time      `json:"updated_at"`                                   // updated at
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                               // soft delete

	Collection  Collection   `gorm:"foreignKey:CollectionID" json:"collection,omitempty"`   // owning collection
	Collectible *Collectible `gorm:"foreignKey:CollectibleID" json:"collectible,omitempty"` // current target
}

// TableName sets the table name.
func (ChipLink) TableName() string {
	return "chip_links"
}
