package service

import (
	"context"
	"strings"
	"time"

	"github.com/dropforge/internal/cache"
	"github.com/dropforge/internal/constants"
	"github.com/dropforge/internal/logger"
	"github.com/dropforge/internal/models"
	"github.com/dropforge/internal/repository"
)

const liveListCacheTTL = 30 * time.Second

// CollectibleService serves collectibles to the public surface and the admin
// panel. Scheduler-made rows and one-off admin rows go through the same path.
type CollectibleService struct {
	collectibleRepo repository.CollectibleRepository
	collectionRepo  repository.CollectionRepository
}

// NewCollectibleService creates the collectible service.
func NewCollectibleService(collectibleRepo repository.CollectibleRepository, collectionRepo repository.CollectionRepository) *CollectibleService {
	return &CollectibleService{collectibleRepo: collectibleRepo, collectionRepo: collectionRepo}
}

// CollectibleCreateInput is the admin one-off create payload.
type CollectibleCreateInput struct {
	CollectionID   uint       `json:"collection_id" binding:"required"`
	Title          string     `json:"title" binding:"required"`
	Description    string     `json:"description"`
	ImageURL       string     `json:"image_url"`
	PriceAmount    string     `json:"price_amount"`
	Currency       string     `json:"currency"`
	QuantityType   string     `json:"quantity_type" binding:"required"`
	Quantity       int        `json:"quantity"`
	MintStartDate  *time.Time `json:"mint_start_date"`
	MintEndDate    *time.Time `json:"mint_end_date"`
	IsLightVersion bool       `json:"is_light_version"`
	CTAText        string     `json:"cta_text"`
	CTAURL         string     `json:"cta_url"`
	IsActive       *bool      `json:"is_active"`
}

// CollectibleUpdateInput is the admin partial update payload.
type CollectibleUpdateInput struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	ImageURL    *string    `json:"image_url"`
	CTAText     *string    `json:"cta_text"`
	CTAURL      *string    `json:"cta_url"`
	MintEndDate *time.Time `json:"mint_end_date"`
	IsActive    *bool      `json:"is_active"`
}

// Create inserts a one-off collectible without a batch listing.
func (s *CollectibleService) Create(input CollectibleCreateInput) (*models.Collectible, error) {
	collection, err := s.collectionRepo.GetByID(input.CollectionID)
	if err != nil {
		return nil, err
	}
	if collection == nil {
		return nil, ErrCollectionNotFound
	}
	price, err := parseMoney(input.PriceAmount)
	if err != nil {
		return nil, ErrInvalidInput
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = constants.SiteCurrencyDefault
	}
	switch input.QuantityType {
	case constants.QuantityTypeSingle, constants.QuantityTypeOpen:
	case constants.QuantityTypeLimited:
		if input.Quantity <= 0 {
			return nil, ErrInvalidInput
		}
	default:
		return nil, ErrInvalidInput
	}

	collectible := &models.Collectible{
		CollectionID:   collection.ID,
		Title:          strings.TrimSpace(input.Title),
		Description:    input.Description,
		ImageURL:       strings.TrimSpace(input.ImageURL),
		PriceAmount:    price,
		Currency:       currency,
		QuantityType:   input.QuantityType,
		Quantity:       input.Quantity,
		MintStartDate:  input.MintStartDate,
		MintEndDate:    input.MintEndDate,
		IsLightVersion: input.IsLightVersion,
		CTAText:        input.CTAText,
		CTAURL:         input.CTAURL,
		IsActive:       true,
	}
	if input.IsActive != nil {
		collectible.IsActive = *input.IsActive
	}
	if err := s.collectibleRepo.Create(collectible); err != nil {
		return nil, err
	}
	s.dropLiveListCache()
	return collectible, nil
}

// Get fetches one collectible.
func (s *CollectibleService) Get(id uint) (*models.Collectible, error) {
	collectible, err := s.collectibleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if collectible == nil {
		return nil, ErrCollectibleNotFound
	}
	return collectible, nil
}

// GetPublic fetches one active collectible for the storefront.
func (s *CollectibleService) GetPublic(id uint) (*models.Collectible, error) {
	collectible, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if !collectible.IsActive {
		return nil, ErrCollectibleNotFound
	}
	return collectible, nil
}

// List returns collectibles for the admin panel.
func (s *CollectibleService) List(filter repository.CollectibleListFilter) ([]models.Collectible, int64, error) {
	return s.collectibleRepo.List(filter)
}

// LiveListResult is the cached public listing page.
type LiveListResult struct {
	Items []models.Collectible `json:"items"`
	Total int64                `json:"total"`
}

// ListLive returns active collectibles whose mint window contains now. The
// first page is cached briefly; the window boundary moves hourly at most.
func (s *CollectibleService) ListLive(ctx context.Context, page, pageSize int) (*LiveListResult, error) {
	cacheable := page <= 1
	if cacheable {
		var cached LiveListResult
		hit, err := cache.GetJSON(ctx, "collectibles:live", &cached)
		if err != nil {
			logger.Warnw("collectible_live_cache_read_failed", "error", err)
		} else if hit {
			return &cached, nil
		}
	}

	now := time.Now().UTC()
	items, total, err := s.collectibleRepo.List(repository.CollectibleListFilter{
		Page:           page,
		PageSize:       pageSize,
		OnlyActive:     true,
		LiveAt:         &now,
		WithCollection: true,
	})
	if err != nil {
		return nil, err
	}
	result := &LiveListResult{Items: items, Total: total}
	if cacheable {
		if err := cache.SetJSON(ctx, "collectibles:live", result, liveListCacheTTL); err != nil {
			logger.Warnw("collectible_live_cache_write_failed", "error", err)
		}
	}
	return result, nil
}

// Update applies an admin partial update.
func (s *CollectibleService) Update(id uint, input CollectibleUpdateInput) (*models.Collectible, error) {
	collectible, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrInvalidInput
		}
		updates["title"] = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.ImageURL != nil {
		updates["image_url"] = strings.TrimSpace(*input.ImageURL)
	}
	if input.CTAText != nil {
		updates["cta_text"] = *input.CTAText
	}
	if input.CTAURL != nil {
		updates["cta_url"] = *input.CTAURL
	}
	if input.MintEndDate != nil {
		updates["mint_end_date"] = input.MintEndDate.UTC()
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		return collectible, nil
	}
	if err := s.collectibleRepo.UpdateFields(id, updates); err != nil {
		return nil, err
	}
	s.dropLiveListCache()
	return s.Get(id)
}

// Delete soft-deletes a collectible. Orders keep their snapshot.
func (s *CollectibleService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	if err := s.collectibleRepo.Delete(id); err != nil {
		return err
	}
	s.dropLiveListCache()
	return nil
}

func (s *CollectibleService) dropLiveListCache() {
	if err := cache.Del(context.Background(), "collectibles:live"); err != nil {
		logger.Warnw("collectible_live_cache_del_failed", "error", err)
	}
}
