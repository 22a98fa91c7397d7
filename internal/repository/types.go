package repository

import "time"

// CollectionListFilter filters collection listings.
type CollectionListFilter struct {
	Page       int
	PageSize   int
	Search     string
	OnlyActive bool
}

// BatchListingListFilter filters batch listing listings.
type BatchListingListFilter struct {
	Page         int
	PageSize     int
	CollectionID uint
	OnlyActive   bool
}

// CollectibleListFilter filters collectible listings.
type CollectibleListFilter struct {
	Page           int
	PageSize       int
	CollectionID   uint
	BatchListingID uint
	OnlyActive     bool
	LiveAt         *time.Time // mint window must contain this instant
	WithCollection bool
}

// ChipLinkListFilter filters chip link listings.
type ChipLinkListFilter struct {
	Page           int
	PageSize       int
	CollectionID   uint
	BatchListingID uint
	OnlyActive     bool
}

// OrderListFilter filters order listings.
type OrderListFilter struct {
	Page          int
	PageSize      int
	CollectibleID uint
	Status        string
	Kind          string
	OrderNo       string
	Email         string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}
