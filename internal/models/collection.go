package models

import (
	"time"

	"gorm.io/gorm"
)

// Collection groups collectibles under one artist.
type Collection struct {
	ID          uint           `gorm:"primarykey" json:"id"`                // primary key
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`    // unique handle
	ArtistName  string         `gorm:"not null" json:"artist_name"`         // artist display name
	Title       string         `gorm:"not null" json:"title"`               // collection title
	Description string         `gorm:"type:text" json:"description"`        // collection description
	ImageURL    string         `gorm:"type:varchar(500)" json:"image_url"`  // cover image
	IsActive    bool           `gorm:"default:true;index" json:"is_active"` // visible / claimable
	SortOrder   int            `gorm:"default:0;index" json:"sort_order"`   // sort weight
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`             // created at
	UpdatedAt   time.Time      `json:"updated_at"`                          // updated at
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                      // soft delete
}

// TableName sets the table name.
func (Collection) TableName() string {
	return "collections"
}
