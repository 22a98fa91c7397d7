package repository

import (
	"errors"
	"time"

	"github.com/dropforge/internal/constants"
	"github.com/dropforge/internal/models"

	"gorm.io/gorm"
)

// CollectibleRepository is the collectible data access interface.
type CollectibleRepository interface {
	Create(collectible *models.Collectible) error
	GetByID(id uint) (*models.Collectible, error)
	GetByOccurrence(batchListingID uint, mintStart time.Time) (*models.Collectible, error)
	List(filter CollectibleListFilter) ([]models.Collectible, int64, error)
	Update(collectible *models.Collectible) error
	UpdateFields(id uint, updates map[string]interface{}) error
	ReserveSupply(id uint) (int64, error)
	ReleaseSupply(id uint) (int64, error)
	Delete(id uint) error
	WithTx(tx *gorm.DB) *GormCollectibleRepository
}

// GormCollectibleRepository is the GORM implementation.
type GormCollectibleRepository struct {
	db *gorm.DB
}

// NewCollectibleRepository creates a collectible repository.
func NewCollectibleRepository(db *gorm.DB) *GormCollectibleRepository {
	return &GormCollectibleRepository{db: db}
}

// WithTx binds a transaction.
func (r *GormCollectibleRepository) WithTx(tx *gorm.DB) *GormCollectibleRepository {
	if tx == nil {
		return r
	}
	return &GormCollectibleRepository{db: tx}
}

// Create inserts a collectible.
func (r *GormCollectibleRepository) Create(collectible *models.Collectible) error {
	return r.db.Create(collectible).Error
}

// GetByID fetches a collectible with its collection.
func (r *GormCollectibleRepository) GetByID(id uint) (*models.Collectible, error) {
	var collectible models.Collectible
	if err := r.db.Preload("Collection").First(&collectible, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &collectible, nil
}

// GetByOccurrence fetches the collectible materialized for one
// (batch listing, mint start) pair.
func (r *GormCollectibleRepository) GetByOccurrence(batchListingID uint, mintStart time.Time) (*models.Collectible, error) {
	if batchListingID == 0 {
		return nil, nil
	}
	var collectible models.Collectible
	if err := r.db.
		Where("batch_listing_id = ? AND mint_start_date = ?", batchListingID, mintStart).
		First(&collectible).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &collectible, nil
}

// List returns collectibles matching the filter.
func (r *GormCollectibleRepository) List(filter CollectibleListFilter) ([]models.Collectible, int64, error) {
	query := r.db.Model(&models.Collectible{})
	if filter.CollectionID != 0 {
		query = query.Where("collection_id = ?", filter.CollectionID)
	}
	if filter.BatchListingID != 0 {
		query = query.Where("batch_listing_id = ?", filter.BatchListingID)
	}
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	if filter.LiveAt != nil {
		at := *filter.LiveAt
		query = query.
			Where("mint_start_date IS NULL OR mint_start_date <= ?", at).
			Where("mint_end_date IS NULL OR mint_end_date > ?", at)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if filter.WithCollection {
		query = query.Preload("Collection")
	}

	var collectibles []models.Collectible
	if err := query.Order("id desc").Find(&collectibles).Error; err != nil {
		return nil, 0, err
	}
	return collectibles, total, nil
}

// Update saves a collectible.
func (r *GormCollectibleRepository) Update(collectible *models.Collectible) error {
	return r.db.Save(collectible).Error
}

// UpdateFields applies a partial update.
func (r *GormCollectibleRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.Collectible{}).Where("id = ?", id).Updates(updates).Error
}

// ReserveSupply takes one reservation with a conditional update. Zero rows
// affected means the supply is exhausted. Single-quantity collectibles act
// like a limited supply of one; open supplies never run out.
func (r *GormCollectibleRepository) ReserveSupply(id uint) (int64, error) {
	if id == 0 {
		return 0, errors.New("invalid supply reserve params")
	}
	result := r.db.Model(&models.Collectible{}).
		Where("id = ?", id).
		Where("quantity_type = ? OR reserved_count < (CASE WHEN quantity_type = ? THEN 1 ELSE quantity END)",
			constants.QuantityTypeOpen, constants.QuantityTypeSingle).
		Update("reserved_count", gorm.Expr("reserved_count + 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ReleaseSupply hands one reservation back (failed order cleanup).
func (r *GormCollectibleRepository) ReleaseSupply(id uint) (int64, error) {
	if id == 0 {
		return 0, errors.New("invalid supply release params")
	}
	result := r.db.Model(&models.Collectible{}).
		Where("id = ? AND reserved_count > 0", id).
		Update("reserved_count", gorm.Expr("reserved_count - 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Delete soft-deletes a collectible.
func (r *GormCollectibleRepository) Delete(id uint) error {
	return r.db.Delete(&models.Collectible{}, id).Error
}
