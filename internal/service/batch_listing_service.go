package service

import (
	"strings"
	"time"

	"github.com/dropforge/internal/constants"
	"github.com/dropforge/internal/models"
	"github.com/dropforge/internal/repository"

	"github.com/shopspring/decimal"
)

// BatchListingService manages the recurring templates the scheduler runs on.
type BatchListingService struct {
	batchRepo      repository.BatchListingRepository
	collectionRepo repository.CollectionRepository
}

// NewBatchListingService creates the batch listing service.
func NewBatchListingService(batchRepo repository.BatchListingRepository, collectionRepo repository.CollectionRepository) *BatchListingService {
	return &BatchListingService{batchRepo: batchRepo, collectionRepo: collectionRepo}
}

// BatchListingCreateInput is the create payload.
type BatchListingCreateInput struct {
	CollectionID   uint       `json:"collection_id" binding:"required"`
	Title          string     `json:"title" binding:"required"`
	Description    string     `json:"description"`
	ImageURL       string     `json:"image_url"`
	PriceAmount    string     `json:"price_amount"`
	Currency       string     `json:"currency"`
	QuantityType   string     `json:"quantity_type" binding:"required"`
	Quantity       int        `json:"quantity"`
	IsLightVersion bool       `json:"is_light_version"`
	CTAText        string     `json:"cta_text"`
	CTAURL         string     `json:"cta_url"`
	FrequencyType  string     `json:"frequency_type" binding:"required"`
	FrequencyDays  []int      `json:"frequency_days"`
	BatchHour      int        `json:"batch_hour"`
	BatchStartDate time.Time  `json:"batch_start_date" binding:"required"`
	BatchEndDate   *time.Time `json:"batch_end_date"`
	AlwaysActive   bool       `json:"always_active"`
	LabelMode      string     `json:"label_mode"`
	IsActive       *bool      `json:"is_active"`
}

// BatchListingUpdateInput is the partial update payload. Recurrence fields
// only shape future occurrences; already materialized collectibles keep their
// windows.
type BatchListingUpdateInput struct {
	Title          *string    `json:"title"`
	Description    *string    `json:"description"`
	ImageURL       *string    `json:"image_url"`
	PriceAmount    *string    `json:"price_amount"`
	Currency       *string    `json:"currency"`
	QuantityType   *string    `json:"quantity_type"`
	Quantity       *int       `json:"quantity"`
	IsLightVersion *bool      `json:"is_light_version"`
	CTAText        *string    `json:"cta_text"`
	CTAURL         *string    `json:"cta_url"`
	FrequencyType  *string    `json:"frequency_type"`
	FrequencyDays  *[]int     `json:"frequency_days"`
	BatchHour      *int       `json:"batch_hour"`
	BatchStartDate *time.Time `json:"batch_start_date"`
	BatchEndDate   *time.Time `json:"batch_end_date"`
	AlwaysActive   *bool      `json:"always_active"`
	LabelMode      *string    `json:"label_mode"`
	IsActive       *bool      `json:"is_active"`
}

// Create validates and inserts a template.
func (s *BatchListingService) Create(input BatchListingCreateInput) (*models.BatchListing, error) {
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
	labelMode := strings.TrimSpace(input.LabelMode)
	if labelMode == "" {
		labelMode = constants.LabelModeNone
	}

	listing := &models.BatchListing{
		CollectionID:   collection.ID,
		Title:          strings.TrimSpace(input.Title),
		Description:    input.Description,
		ImageURL:       strings.TrimSpace(input.ImageURL),
		PriceAmount:    price,
		Currency:       currency,
		QuantityType:   strings.TrimSpace(input.QuantityType),
		Quantity:       input.Quantity,
		IsLightVersion: input.IsLightVersion,
		CTAText:        input.CTAText,
		CTAURL:         input.CTAURL,
		FrequencyType:  strings.TrimSpace(input.FrequencyType),
		FrequencyDays:  models.IntArray(input.FrequencyDays),
		BatchHour:      input.BatchHour,
		BatchStartDate: input.BatchStartDate.UTC(),
		BatchEndDate:   normalizeEndDate(input.BatchEndDate),
		AlwaysActive:   input.AlwaysActive,
		LabelMode:      labelMode,
		IsActive:       true,
	}
	if input.IsActive != nil {
		listing.IsActive = *input.IsActive
	}
	if err := validateBatchListing(listing); err != nil {
		return nil, err
	}
	if err := s.batchRepo.Create(listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// Get fetches one template.
func (s *BatchListingService) Get(id uint) (*models.BatchListing, error) {
	listing, err := s.batchRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, ErrBatchListingNotFound
	}
	return listing, nil
}

// List returns templates matching the filter.
func (s *BatchListingService) List(filter repository.BatchListingListFilter) ([]models.BatchListing, int64, error) {
	return s.batchRepo.List(filter)
}

// Update applies a partial update and revalidates the recurrence.
func (s *BatchListingService) Update(id uint, input BatchListingUpdateInput) (*models.BatchListing, error) {
	listing, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if input.Title != nil {
		listing.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		listing.Description = *input.Description
	}
	if input.ImageURL != nil {
		listing.ImageURL = strings.TrimSpace(*input.ImageURL)
	}
	if input.PriceAmount != nil {
		price, err := parseMoney(*input.PriceAmount)
		if err != nil {
			return nil, ErrInvalidInput
		}
		listing.PriceAmount = price
	}
	if input.Currency != nil {
		listing.Currency = strings.ToUpper(strings.TrimSpace(*input.Currency))
	}
	if input.QuantityType != nil {
		listing.QuantityType = strings.TrimSpace(*input.QuantityType)
	}
	if input.Quantity != nil {
		listing.Quantity = *input.Quantity
	}
	if input.IsLightVersion != nil {
		listing.IsLightVersion = *input.IsLightVersion
	}
	if input.CTAText != nil {
		listing.CTAText = *input.CTAText
	}
	if input.CTAURL != nil {
		listing.CTAURL = *input.CTAURL
	}
	if input.FrequencyType != nil {
		listing.FrequencyType = strings.TrimSpace(*input.FrequencyType)
	}
	if input.FrequencyDays != nil {
		listing.FrequencyDays = models.IntArray(*input.FrequencyDays)
	}
	if input.BatchHour != nil {
		listing.BatchHour = *input.BatchHour
	}
	if input.BatchStartDate != nil {
		listing.BatchStartDate = input.BatchStartDate.UTC()
	}
	if input.BatchEndDate != nil {
		listing.BatchEndDate = normalizeEndDate(input.BatchEndDate)
	}
	if input.AlwaysActive != nil {
		listing.AlwaysActive = *input.AlwaysActive
	}
	if input.LabelMode != nil {
		listing.LabelMode = strings.TrimSpace(*input.LabelMode)
	}
	if input.IsActive != nil {
		listing.IsActive = *input.IsActive
	}
	if err := validateBatchListing(listing); err != nil {
		return nil, err
	}
	if err := s.batchRepo.Update(listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// Delete soft-deletes a template. Materialized collectibles stay live.
func (s *BatchListingService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.batchRepo.Delete(id)
}

func validateBatchListing(listing *models.BatchListing) error {
	if listing.Title == "" || listing.CollectionID == 0 {
		return ErrInvalidInput
	}
	switch listing.QuantityType {
	case constants.QuantityTypeSingle, constants.QuantityTypeOpen:
	case constants.QuantityTypeLimited:
		if listing.Quantity <= 0 {
			return ErrInvalidInput
		}
	default:
		return ErrInvalidInput
	}
	if listing.BatchHour < 0 || listing.BatchHour > 23 {
		return ErrInvalidInput
	}
	switch listing.FrequencyType {
	case constants.FrequencyDaily:
	case constants.FrequencyWeekly:
		if len(listing.FrequencyDays) == 0 {
			return ErrInvalidInput
		}
		for _, d := range listing.FrequencyDays {
			if d < 0 || d > 6 {
				return ErrInvalidInput
			}
		}
	case constants.FrequencyMonthly:
		if len(listing.FrequencyDays) == 0 {
			return ErrInvalidInput
		}
		for _, d := range listing.FrequencyDays {
			if d < 1 || d > 31 {
				return ErrInvalidInput
			}
		}
	default:
		return ErrInvalidInput
	}
	switch listing.LabelMode {
	case constants.LabelModeNone, constants.LabelModeDate, constants.LabelModeDay:
	default:
		return ErrInvalidInput
	}
	if listing.BatchEndDate != nil && listing.BatchEndDate.Before(listing.BatchStartDate) {
		return ErrInvalidInput
	}
	return nil
}

// parseMoney parses a decimal amount string; empty means zero.
func parseMoney(raw string) (models.Money, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.Money{}, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil || amount.IsNegative() {
		return models.Money{}, ErrInvalidInput
	}
	return models.NewMoneyFromDecimal(amount), nil
}

func normalizeEndDate(end *time.Time) *time.Time {
	if end == nil || end.IsZero() {
		return nil
	}
	utc := end.UTC()
	return &utc
}
