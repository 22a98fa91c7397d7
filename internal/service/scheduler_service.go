package service

import (
	"context"
	"time"

	"github.com/dropforge/internal/logger"
	"github.com/dropforge/internal/models"
	"github.com/dropforge/internal/repository"

	"gorm.io/gorm"
)

// LabelStore is the image-storage collaborator used for rendered labels.
type LabelStore interface {
	Enabled() bool
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// SchedulerService materializes dated collectibles from due batch listings.
type SchedulerService struct {
	batchRepo       repository.BatchListingRepository
	collectibleRepo repository.CollectibleRepository
	chipRepo        repository.ChipLinkRepository
	labelStore      LabelStore
}

// NewSchedulerService creates the scheduler service.
func NewSchedulerService(batchRepo repository.BatchListingRepository, collectibleRepo repository.CollectibleRepository, chipRepo repository.ChipLinkRepository, labelStore LabelStore) *SchedulerService {
	return &SchedulerService{
		batchRepo:       batchRepo,
		collectibleRepo: collectibleRepo,
		chipRepo:        chipRepo,
		labelStore:      labelStore,
	}
}

// OccurrenceResult describes one materialized occurrence.
type OccurrenceResult struct {
	BatchListingID uint      `json:"batch_listing_id"`
	CollectibleID  uint      `json:"collectible_id"`
	DayNumber      int       `json:"day_number"`
	MintStart      time.Time `json:"mint_start"`
	MintEnd        time.Time `json:"mint_end"`
}

// RunDueOccurrences processes every active batch listing for the hour that
// contains now. Listings fail independently: one bad listing is logged and
// skipped, the rest still run. Re-running the same hour is a no-op because
// (batch listing, mint start) is unique on collectibles.
func (s *SchedulerService) RunDueOccurrences(ctx context.Context, now time.Time) ([]OccurrenceResult, error) {
	now = now.UTC()
	listings, err := s.batchRepo.ListActive()
	if err != nil {
		return nil, err
	}

	results := make([]OccurrenceResult, 0)
	for i := range listings {
		listing := &listings[i]
		if !occurrenceDue(listing, now) {
			continue
		}
		result, created := s.runOne(ctx, listing, now)
		if created {
			results = append(results, result)
		}
	}

	logger.Infow("scheduler_run_finished",
		"now", now.Format(time.RFC3339),
		"listings_checked", len(listings),
		"occurrences_created", len(results),
	)
	return results, nil
}

func (s *SchedulerService) runOne(ctx context.Context, listing *models.BatchListing, now time.Time) (OccurrenceResult, bool) {
	start, end := occurrenceWindow(listing, now)

	existing, err := s.collectibleRepo.GetByOccurrence(listing.ID, start)
	if err != nil {
		logger.Errorw("scheduler_occurrence_lookup_failed", "batch_listing_id", listing.ID, "error", err)
		return OccurrenceResult{}, false
	}
	if existing != nil {
		logger.Debugw("scheduler_occurrence_already_exists",
			"batch_listing_id", listing.ID,
			"collectible_id", existing.ID,
		)
		return OccurrenceResult{}, false
	}

	dayNumber := listing.TotalCollectibles + 1

	labelURL := ""
	if text := labelText(listing, start, dayNumber); text != "" {
		if !s.labelStore.Enabled() {
			logger.Errorw("scheduler_label_store_disabled", "batch_listing_id", listing.ID)
			return OccurrenceResult{}, false
		}
		url, err := s.labelStore.Upload(ctx, labelObjectKey(listing.ID, start), renderLabelSVG(text), labelContentType)
		if err != nil {
			// no collectible without its label
			logger.Errorw("scheduler_label_upload_failed", "batch_listing_id", listing.ID, "error", err)
			return OccurrenceResult{}, false
		}
		labelURL = url
	}

	collectible := &models.Collectible{
		CollectionID:   listing.CollectionID,
		BatchListingID: &listing.ID,
		Title:          listing.Title,
		Description:    listing.Description,
		ImageURL:       listing.ImageURL,
		LabelImageURL:  labelURL,
		PriceAmount:    listing.PriceAmount,
		Currency:       listing.Currency,
		QuantityType:   listing.QuantityType,
		Quantity:       listing.Quantity,
		MintStartDate:  &start,
		MintEndDate:    &end,
		DayNumber:      dayNumber,
		IsLightVersion: listing.IsLightVersion,
		CTAText:        listing.CTAText,
		CTAURL:         listing.CTAURL,
		IsActive:       true,
	}

	var repointed int64
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.collectibleRepo.WithTx(tx).Create(collectible); err != nil {
			return err
		}
		n, err := s.chipRepo.WithTx(tx).RepointForBatch(listing.ID, collectible.ID)
		if err != nil {
			return err
		}
		repointed = n
		return nil
	})
	if err != nil {
		// a concurrent run for the same hour lands here on the unique index
		logger.Errorw("scheduler_occurrence_insert_failed", "batch_listing_id", listing.ID, "error", err)
		return OccurrenceResult{}, false
	}

	rows, err := s.batchRepo.IncrementTotalCollectibles(listing.ID, listing.TotalCollectibles)
	if err != nil || rows == 0 {
		// the collectible stands; divergence is fixed by hand, retrying
		// risks duplicate occurrences
		logger.Errorw("scheduler_counter_reconciliation_gap",
			"batch_listing_id", listing.ID,
			"collectible_id", collectible.ID,
			"expected_counter", listing.TotalCollectibles,
			"error", err,
		)
	}

	logger.Infow("scheduler_occurrence_created",
		"batch_listing_id", listing.ID,
		"collectible_id", collectible.ID,
		"day_number", dayNumber,
		"mint_start", start.Format(time.RFC3339),
		"mint_end", end.Format(time.RFC3339),
		"chips_repointed", repointed,
	)
	return OccurrenceResult{
		BatchListingID: listing.ID,
		CollectibleID:  collectible.ID,
		DayNumber:      dayNumber,
		MintStart:      start,
		MintEnd:        end,
	}, true
}
