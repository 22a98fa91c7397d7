package repository

import (
	"errors"
	"strings"

	"github.com/dropforge/internal/models"

	"gorm.io/gorm"
)

// ChipLinkRepository is the chip link data access interface.
type ChipLinkRepository interface {
	Create(link *models.ChipLink) error
	GetByID(id uint) (*models.ChipLink, error)
	GetByTagUID(tagUID string) (*models.ChipLink, error)
	List(filter ChipLinkListFilter) ([]models.ChipLink, int64, error)
	Update(link *models.ChipLink) error
	RepointForBatch(batchListingID, collectibleID uint) (int64, error)
	Disconnect(id uint) error
	Delete(id uint) error
	WithTx(tx *gorm.DB) *GormChipLinkRepository
}

// GormChipLinkRepository is the GORM implementation.
type GormChipLinkRepository struct {
	db *gorm.DB
}

// NewChipLinkRepository creates a chip link repository.
func NewChipLinkRepository(db *gorm.DB) *GormChipLinkRepository {
	return &GormChipLinkRepository{db: db}
}

// WithTx binds a transaction.
func (r *GormChipLinkRepository) WithTx(tx *gorm.DB) *GormChipLinkRepository {
	if tx == nil {
		return r
	}
	return &GormChipLinkRepository{db: tx}
}

// Create inserts a chip link.
func (r *GormChipLinkRepository) Create(link *models.ChipLink) error {
	return r.db.Create(link).Error
}

// GetByID fetches a chip link by id.
func (r *GormChipLinkRepository) GetByID(id uint) (*models.ChipLink, error) {
	var link models.ChipLink
	if err := r.db.Preload("Collection").Preload("Collectible").First(&link, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

// GetByTagUID fetches a chip link by its NFC tag UID.
func (r *GormChipLinkRepository) GetByTagUID(tagUID string) (*models.ChipLink, error) {
	tagUID = strings.TrimSpace(tagUID)
	if tagUID == "" {
		return nil, nil
	}
	var link models.ChipLink
	if err := r.db.Preload("Collection").Preload("Collectible").
		Where("tag_uid = ?", tagUID).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

// List returns chip links matching the filter.
func (r *GormChipLinkRepository) List(filter ChipLinkListFilter) ([]models.ChipLink, int64, error) {
	query := r.db.Model(&models.ChipLink{})
	if filter.CollectionID != 0 {
		query = query.Where("collection_id = ?", filter.CollectionID)
	}
	if filter.BatchListingID != 0 {
		query = query.Where("batch_listing_id = ?", filter.BatchListingID)
	}
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var links []models.ChipLink
	if err := query.Preload("Collection").Order("id desc").Find(&links).Error; err != nil {
		return nil, 0, err
	}
	return links, total, nil
}

// Update saves a chip link.
func (r *GormChipLinkRepository) Update(link *models.ChipLink) error {
	return r.db.Save(link).Error
}

// RepointForBatch points every active link following a batch listing at the
// freshly materialized collectible.
func (r *GormChipLinkRepository) RepointForBatch(batchListingID, collectibleID uint) (int64, error) {
	if batchListingID == 0 || collectibleID == 0 {
		return 0, errors.New("invalid chip repoint params")
	}
	result := r.db.Model(&models.ChipLink{}).
		Where("batch_listing_id = ? AND is_active = ?", batchListingID, true).
		Update("collectible_id", collectibleID)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Disconnect clears the targets but keeps the collection binding.
func (r *GormChipLinkRepository) Disconnect(id uint) error {
	return r.db.Model(&models.ChipLink{}).Where("id = ?", id).Updates(map[string]interface{}{
		"collectible_id":   nil,
		"batch_listing_id": nil,
	}).Error
}

// Delete soft-deletes a chip link.
func (r *GormChipLinkRepository) Delete(id uint) error {
	return r.db.Delete(&models.ChipLink{}, id).Error
}
