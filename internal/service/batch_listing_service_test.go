package service

import (
	"errors"
	"testing"
	"time"

	"github.com/dropforge/internal/constants"
	"github.com/dropforge/internal/repository"
)

func newBatchListingService(t *testing.T) *BatchListingService {
	t.Helper()

	db := newTestDB(t)
	seedCollection(t, db)
	return NewBatchListingService(
		repository.NewBatchListingRepository(db),
		repository.NewCollectionRepository(db),
	)
}

func validCreateInput() BatchListingCreateInput {
	return BatchListingCreateInput{
		CollectionID:   1,
		Title:          "Daily Drop",
		QuantityType:   constants.QuantityTypeOpen,
		FrequencyType:  constants.FrequencyDaily,
		BatchHour:      10,
		BatchStartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestBatchListingCreateDefaults(t *testing.T) {
	svc := newBatchListingService(t)

	listing, err := svc.Create(validCreateInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if listing.Currency != constants.SiteCurrencyDefault {
		t.Fatalf("expected default currency, got %s", listing.Currency)
	}
	if listing.LabelMode != constants.LabelModeNone {
		t.Fatalf("expected default label mode, got %s", listing.LabelMode)
	}
	if !listing.PriceAmount.IsZero() {
		t.Fatalf("expected zero price, got %s", listing.PriceAmount)
	}
	if !listing.IsActive {
		t.Fatalf("expected active listing by default")
	}
}

func TestBatchListingCreateValidation(t *testing.T) {
	svc := newBatchListingService(t)

	cases := []struct {
		name   string
		mutate func(*BatchListingCreateInput)
	}{
		{"unknown frequency", func(in *BatchListingCreateInput) { in.FrequencyType = "hourly" }},
		{"weekly without days", func(in *BatchListingCreateInput) { in.FrequencyType = constants.FrequencyWeekly }},
		{"weekly day out of range", func(in *BatchListingCreateInput) {
			in.FrequencyType = constants.FrequencyWeekly
			in.FrequencyDays = []int{7}
		}},
		{"monthly day out of range", func(in *BatchListingCreateInput) {
			in.FrequencyType = constants.FrequencyMonthly
			in.FrequencyDays = []int{0}
		}},
		{"batch hour out of range", func(in *BatchListingCreateInput) { in.BatchHour = 24 }},
		{"limited without quantity", func(in *BatchListingCreateInput) {
			in.QuantityType = constants.QuantityTypeLimited
			in.Quantity = 0
		}},
		{"unknown label mode", func(in *BatchListingCreateInput) { in.LabelMode = "week" }},
		{"negative price", func(in *BatchListingCreateInput) { in.PriceAmount = "-1.00" }},
		{"end before start", func(in *BatchListingCreateInput) {
			in.BatchEndDate = timePtr(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
		}},
	}
	for _, tc := range cases {
		input := validCreateInput()
		tc.mutate(&input)
		if _, err := svc.Create(input); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected invalid input, got %v", tc.name, err)
		}
	}
}

func TestBatchListingCreateUnknownCollection(t *testing.T) {
	svc := newBatchListingService(t)

	input := validCreateInput()
	input.CollectionID = 999
	if _, err := svc.Create(input); !errors.Is(err, ErrCollectionNotFound) {
		t.Fatalf("expected collection not found, got %v", err)
	}
}

func TestBatchListingUpdateRevalidates(t *testing.T) {
	svc := newBatchListingService(t)

	listing, err := svc.Create(validCreateInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	weekly := constants.FrequencyWeekly
	if _, err := svc.Update(listing.ID, BatchListingUpdateInput{FrequencyType: &weekly}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected weekly without days to be rejected, got %v", err)
	}

	days := []int{1, 3}
	updated, err := svc.Update(listing.ID, BatchListingUpdateInput{FrequencyType: &weekly, FrequencyDays: &days})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.FrequencyType != weekly || len(updated.FrequencyDays) != 2 {
		t.Fatalf("unexpected updated recurrence: %+v", updated)
	}
}
