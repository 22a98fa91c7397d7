package repository

import (
	"errors"
	"strings"

	"github.com/dropforge/internal/models"

	"gorm.io/gorm"
)

// CollectionRepository is the collection data access interface.
type CollectionRepository interface {
	Create(collection *models.Collection) error
	GetByID(id uint) (*models.Collection, error)
	GetBySlug(slug string) (*models.Collection, error)
	List(filter CollectionListFilter) ([]models.Collection, int64, error)
	Update(collection *models.Collection) error
	Delete(id uint) error
	WithTx(tx *gorm.DB) *GormCollectionRepository
}

// GormCollectionRepository is the GORM implementation.
type GormCollectionRepository struct {
	db *gorm.DB
}

// NewCollectionRepository creates a collection repository.
func NewCollectionRepository(db *gorm.DB) *GormCollectionRepository {
	return &GormCollectionRepository{db: db}
}

// WithTx binds a transaction.
func (r *GormCollectionRepository) WithTx(tx *gorm.DB) *GormCollectionRepository {
	if tx == nil {
		return r
	}
	return &GormCollectionRepository{db: tx}
}

// Create inserts a collection.
func (r *GormCollectionRepository) Create(collection *models.Collection) error {
	return r.db.Create(collection).Error
}

// GetByID fetches a collection by id.
func (r *GormCollectionRepository) GetByID(id uint) (*models.Collection, error) {
	var collection models.Collection
	if err := r.db.First(&collection, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &collection, nil
}

// GetBySlug fetches a collection by slug.
func (r *GormCollectionRepository) GetBySlug(slug string) (*models.Collection, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, nil
	}
	var collection models.Collection
	if err := r.db.Where("slug = ?", slug).First(&collection).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &collection, nil
}

// List returns collections matching the filter.
func (r *GormCollectionRepository) List(filter CollectionListFilter) ([]models.Collection, int64, error) {
	query := r.db.Model(&models.Collection{})
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR artist_name LIKE ? OR slug LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var collections []models.Collection
	if err := query.Order("sort_order asc, id desc").Find(&collections).Error; err != nil {
		return nil, 0, err
	}
	return collections, total, nil
}

// Update saves a collection.
func (r *GormCollectionRepository) Update(collection *models.Collection) error {
	return r.db.Save(collection).Error
}

// Delete soft-deletes a collection.
func (r *GormCollectionRepository) Delete(id uint) error {
	return r.db.Delete(&models.Collection{}, id).Error
}
