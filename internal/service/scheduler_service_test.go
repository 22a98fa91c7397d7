package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dropforge/internal/constants"
	"github.com/dropforge/internal/models"
	"github.com/dropforge/internal/repository"

	"gorm.io/gorm"
)

type fakeLabelStore struct {
	enabled bool
	fail    bool
	uploads []string
}

func (f *fakeLabelStore) Enabled() bool {
	return f.enabled
}

func (f *fakeLabelStore) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	if f.fail {
		return "", errors.New("upload refused")
	}
	f.uploads = append(f.uploads, key)
	return "https://cdn.test/" + key, nil
}

type schedulerHarness struct {
	db        *gorm.DB
	scheduler *SchedulerService
	batchRepo repository.BatchListingRepository
	collRepo  repository.CollectibleRepository
	store     *fakeLabelStore
}

func newSchedulerHarness(t *testing.T) *schedulerHarness {
	t.Helper()

	db := newTestDB(t)
	batchRepo := repository.NewBatchListingRepository(db)
	collRepo := repository.NewCollectibleRepository(db)
	chipRepo := repository.NewChipLinkRepository(db)
	store := &fakeLabelStore{enabled: true}
	return &schedulerHarness{
		db:        db,
		scheduler: NewSchedulerService(batchRepo, collRepo, chipRepo, store),
		batchRepo: batchRepo,
		collRepo:  collRepo,
		store:     store,
	}
}

func (h *schedulerHarness) seedListing(t *testing.T, listing *models.BatchListing) *models.BatchListing {
	t.Helper()

	collection := seedCollection(t, h.db)
	listing.CollectionID = collection.ID
	if listing.Title == "" {
		listing.Title = "Daily Drop"
	}
	if listing.Currency == "" {
		listing.Currency = "USD"
	}
	if listing.QuantityType == "" {
		listing.QuantityType = constants.QuantityTypeOpen
	}
	if listing.LabelMode == "" {
		listing.LabelMode = constants.LabelModeNone
	}
	listing.IsActive = true
	if err := h.db.Create(listing).Error; err != nil {
		t.Fatalf("create batch listing failed: %v", err)
	}
	return listing
}

func TestRunDueOccurrencesCreatesAndRepoints(t *testing.T) {
	h := newSchedulerHarness(t)
	listing := h.seedListing(t, &models.BatchListing{
		FrequencyType:  constants.FrequencyDaily,
		BatchHour:      10,
		BatchStartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	chip := &models.ChipLink{
		TagUID:         "04:AA:BB:CC",
		CollectionID:   listing.CollectionID,
		BatchListingID: &listing.ID,
		IsActive:       true,
	}
	if err := h.db.Create(chip).Error; err != nil {
		t.Fatalf("create chip link failed: %v", err)
	}

	now := time.Date(2026, 3, 2, 10, 12, 0, 0, time.UTC)
	results, err := h.scheduler.RunDueOccurrences(context.Background(), now)
	if err != nil {
		t.Fatalf("run due occurrences failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 occurrence, got %d", len(results))
	}
	if results[0].DayNumber != 1 {
		t.Fatalf("expected day number 1, got %d", results[0].DayNumber)
	}

	created, err := h.collRepo.GetByOccurrence(listing.ID, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("lookup occurrence failed: %v", err)
	}
	if created == nil {
		t.Fatalf("expected materialized collectible")
	}
	if created.Title != listing.Title || created.Currency != listing.Currency {
		t.Fatalf("collectible did not inherit template fields: %+v", created)
	}

	var reloadedChip models.ChipLink
	if err := h.db.First(&reloadedChip, chip.ID).Error; err != nil {
		t.Fatalf("reload chip link failed: %v", err)
	}
	if reloadedChip.CollectibleID == nil || *reloadedChip.CollectibleID != created.ID {
		t.Fatalf("expected chip repointed to collectible %d, got %v", created.ID, reloadedChip.CollectibleID)
	}

	reloadedListing, err := h.batchRepo.GetByID(listing.ID)
	if err != nil {
		t.Fatalf("reload listing failed: %v", err)
	}
	if reloadedListing.TotalCollectibles != 1 {
		t.Fatalf("expected counter 1, got %d", reloadedListing.TotalCollectibles)
	}
}

func TestRunDueOccurrencesIdempotent(t *testing.T) {
	h := newSchedulerHarness(t)
	listing := h.seedListing(t, &models.BatchListing{
		FrequencyType:  constants.FrequencyDaily,
		BatchHour:      10,
		BatchStartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})

	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	if _, err := h.scheduler.RunDueOccurrences(context.Background(), now); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	results, err := h.scheduler.RunDueOccurrences(context.Background(), now.Add(20*time.Minute))
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected re-run to be a no-op, got %d occurrences", len(results))
	}

	var count int64
	if err := h.db.Model(&models.Collectible{}).Where("batch_listing_id = ?", listing.ID).Count(&count).Error; err != nil {
		t.Fatalf("count collectibles failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 collectible, got %d", count)
	}

	reloaded, err := h.batchRepo.GetByID(listing.ID)
	if err != nil {
		t.Fatalf("reload listing failed: %v", err)
	}
	if reloaded.TotalCollectibles != 1 {
		t.Fatalf("expected counter 1 after re-run, got %d", reloaded.TotalCollectibles)
	}
}

func TestRunDueOccurrencesLabelUploadFailureSkipsListing(t *testing.T) {
	h := newSchedulerHarness(t)
	listing := h.seedListing(t, &models.BatchListing{
		FrequencyType:  constants.FrequencyDaily,
		BatchHour:      10,
		BatchStartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		LabelMode:      constants.LabelModeDay,
	})
	h.store.fail = true

	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	results, err := h.scheduler.RunDueOccurrences(context.Background(), now)
	if err != nil {
		t.Fatalf("run with failing store errored: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no occurrence on label failure, got %d", len(results))
	}

	// the next pass picks the hour back up once storage recovers
	h.store.fail = false
	results, err = h.scheduler.RunDueOccurrences(context.Background(), now)
	if err != nil {
		t.Fatalf("recovery run failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected occurrence after recovery, got %d", len(results))
	}

	created, err := h.collRepo.GetByID(results[0].CollectibleID)
	if err != nil || created == nil {
		t.Fatalf("load created collectible failed: %v", err)
	}
	if created.LabelImageURL == "" {
		t.Fatalf("expected label image url on day-labeled occurrence")
	}
	if len(h.store.uploads) != 1 {
		t.Fatalf("expected 1 upload, got %d", len(h.store.uploads))
	}

	reloaded, err := h.batchRepo.GetByID(listing.ID)
	if err != nil {
		t.Fatalf("reload listing failed: %v", err)
	}
	if reloaded.TotalCollectibles != 1 {
		t.Fatalf("expected counter 1, got %d", reloaded.TotalCollectibles)
	}
}

func TestRunDueOccurrencesOutsideHourIsNoop(t *testing.T) {
	h := newSchedulerHarness(t)
	h.seedListing(t, &models.BatchListing{
		FrequencyType:  constants.FrequencyDaily,
		BatchHour:      10,
		BatchStartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})

	results, err := h.scheduler.RunDueOccurrences(context.Background(), time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no occurrence outside the batch hour, got %d", len(results))
	}
}
