package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/dropforge/internal/constants"
	"github.com/dropforge/internal/models"

	"gorm.io/gorm"
)

// OrderRepository is the order data access interface.
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	GetByOrderNo(orderNo string) (*models.Order, error)
	GetBySignatureCode(code string) (*models.Order, error)
	GetByCheckoutSessionID(sessionID string) (*models.Order, error)
	FindActiveClaim(collectibleID uint, claimKey string) (*models.Order, error)
	CountCompletedByCollectible(collectibleID uint) (int64, error)
	List(filter OrderListFilter) ([]models.Order, int64, error)
	UpdateStatus(id uint, status string, updates map[string]interface{}) error
	ConsumeSignature(id uint, usedAt time.Time) (int64, error)
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository is the GORM implementation.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates an order repository.
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx binds a transaction.
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create inserts an order. A duplicate (collectible, claim key) pair fails
// here on the unique index.
func (r *GormOrderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

// GetByID fetches an order with its collectible.
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Collectible").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByOrderNo fetches an order by its order number.
func (r *GormOrderRepository) GetByOrderNo(orderNo string) (*models.Order, error) {
	orderNo = strings.TrimSpace(orderNo)
	if orderNo == "" {
		return nil, nil
	}
	var order models.Order
	if err := r.db.Preload("Collectible").Where("order_no = ?", orderNo).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetBySignatureCode fetches the order holding an unused signature code.
func (r *GormOrderRepository) GetBySignatureCode(code string) (*models.Order, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	var order models.Order
	if err := r.db.Preload("Collectible").Where("signature_code = ?", code).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByCheckoutSessionID fetches the order attached to a gateway session.
func (r *GormOrderRepository) GetByCheckoutSessionID(sessionID string) (*models.Order, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, nil
	}
	var order models.Order
	if err := r.db.Preload("Collectible").Where("checkout_session_id = ?", sessionID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// FindActiveClaim returns the pending or completed order one identity holds on
// a collectible. Failed orders have their claim key cleared and never match.
func (r *GormOrderRepository) FindActiveClaim(collectibleID uint, claimKey string) (*models.Order, error) {
	claimKey = strings.TrimSpace(claimKey)
	if collectibleID == 0 || claimKey == "" {
		return nil, nil
	}
	var order models.Order
	if err := r.db.
		Where("collectible_id = ? AND claim_key = ? AND status <> ?",
			collectibleID, claimKey, constants.OrderStatusFailed).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// CountCompletedByCollectible counts completed orders for the sold-out check.
func (r *GormOrderRepository) CountCompletedByCollectible(collectibleID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Order{}).
		Where("collectible_id = ? AND status = ?", collectibleID, constants.OrderStatusCompleted).
		Count(&count).Error
	return count, err
}

// List returns orders matching the filter.
func (r *GormOrderRepository) List(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})

	if filter.CollectibleID != 0 {
		query = query.Where("collectible_id = ?", filter.CollectibleID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.OrderNo != "" {
		query = query.Where("order_no = ?", filter.OrderNo)
	}
	if filter.Email != "" {
		query = query.Where("email = ?", filter.Email)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var orders []models.Order
	if err := query.Preload("Collectible").Order("id desc").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateStatus updates the order status plus extra columns.
func (r *GormOrderRepository) UpdateStatus(id uint, status string, updates map[string]interface{}) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = status
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
}

// ConsumeSignature clears the signature code if it is still unused. Zero rows
// affected means someone else already spent it.
func (r *GormOrderRepository) ConsumeSignature(id uint, usedAt time.Time) (int64, error) {
	if id == 0 {
		return 0, errors.New("invalid signature consume params")
	}
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND signature_code IS NOT NULL", id).
		Updates(map[string]interface{}{
			"signature_code":    nil,
			"signature_used_at": usedAt,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
