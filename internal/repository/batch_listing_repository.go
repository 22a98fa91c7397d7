package repository

import (
	"errors"

	"github.com/dropforge/internal/models"

	"gorm.io/gorm"
)

// BatchListingRepository is the batch listing data access interface.
type BatchListingRepository interface {
	Create(listing *models.BatchListing) error
	GetByID(id uint) (*models.BatchListing, error)
	List(filter BatchListingListFilter) ([]models.BatchListing, int64, error)
	ListActive() ([]models.BatchListing, error)
	Update(listing *models.BatchListing) error
	UpdateFields(id uint, updates map[string]interface{}) error
	IncrementTotalCollectibles(id uint, from int) (int64, error)
	Delete(id uint) error
	WithTx(tx *gorm.DB) *GormBatchListingRepository
}

// GormBatchListingRepository is the GORM implementation.
type GormBatchListingRepository struct {
	db *gorm.DB
}

// NewBatchListingRepository creates a batch listing repository.
func NewBatchListingRepository(db *gorm.DB) *GormBatchListingRepository {
	return &GormBatchListingRepository{db: db}
}

// WithTx binds a transaction.
func (r *GormBatchListingRepository) WithTx(tx *gorm.DB) *GormBatchListingRepository {
	if tx == nil {
		return r
	}
	return &GormBatchListingRepository{db: tx}
}

// Create inserts a batch listing.
func (r *GormBatchListingRepository) Create(listing *models.BatchListing) error {
	return r.db.Create(listing).Error
}

// GetByID fetches a batch listing by id.
func (r *GormBatchListingRepository) GetByID(id uint) (*models.BatchListing, error) {
	var listing models.BatchListing
	if err := r.db.Preload("Collection").First(&listing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &listing, nil
}

// List returns batch listings matching the filter.
func (r *GormBatchListingRepository) List(filter BatchListingListFilter) ([]models.BatchListing, int64, error) {
	query := r.db.Model(&models.BatchListing{})
	if filter.CollectionID != 0 {
		query = query.Where("collection_id = ?", filter.CollectionID)
	}
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var listings []models.BatchListing
	if err := query.Preload("Collection").Order("id desc").Find(&listings).Error; err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

// ListActive returns every active batch listing. The scheduler decides
// due-ness itself, so no date filtering happens here.
func (r *GormBatchListingRepository) ListActive() ([]models.BatchListing, error) {
	var listings []models.BatchListing
	if err := r.db.Where("is_active = ?", true).Order("id asc").Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

// Update saves a batch listing.
func (r *GormBatchListingRepository) Update(listing *models.BatchListing) error {
	return r.db.Save(listing).Error
}

// UpdateFields applies a partial update.
func (r *GormBatchListingRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.BatchListing{}).Where("id = ?", id).Updates(updates).Error
}

// IncrementTotalCollectibles bumps the occurrence counter only when it still
// holds the value the caller read (increment-if-equals).
func (r *GormBatchListingRepository) IncrementTotalCollectibles(id uint, from int) (int64, error) {
	if id == 0 || from < 0 {
		return 0, errors.New("invalid counter increment params")
	}
	result := r.db.Model(&models.BatchListing{}).
		Where("id = ? AND total_collectibles = ?", id, from).
		Update("total_collectibles", from+1)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Delete soft-deletes a batch listing.
func (r *GormBatchListingRepository) Delete(id uint) error {
	return r.db.Delete(&models.BatchListing{}, id).Error
}
