package service

import (
	"testing"
	"time"

	"github.com/dropforge/internal/constants"
	"github.com/dropforge/internal/models"
)

// 2026-03-02 is a Monday.
var mondayStart = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func dailyListing(hour int) *models.BatchListing {
	return &models.BatchListing{
		FrequencyType:  constants.FrequencyDaily,
		BatchHour:      hour,
		BatchStartDate: mondayStart,
	}
}

func TestOccurrenceDueDaily(t *testing.T) {
	listing := dailyListing(15)

	if !occurrenceDue(listing, time.Date(2026, 3, 2, 15, 30, 0, 0, time.UTC)) {
		t.Fatalf("expected due at the batch hour")
	}
	if occurrenceDue(listing, time.Date(2026, 3, 2, 14, 59, 0, 0, time.UTC)) {
		t.Fatalf("expected not due outside the batch hour")
	}
	if occurrenceDue(listing, time.Date(2026, 2, 27, 15, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected not due before the start date")
	}

	listing.BatchEndDate = timePtr(time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC))
	if occurrenceDue(listing, time.Date(2026, 3, 4, 15, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected not due after the end date")
	}
	if !occurrenceDue(listing, time.Date(2026, 3, 3, 15, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected due on the end date itself")
	}
}

func TestOccurrenceDueWeekly(t *testing.T) {
	listing := &models.BatchListing{
		FrequencyType:  constants.FrequencyWeekly,
		FrequencyDays:  models.IntArray{1, 3}, // Monday, Wednesday
		BatchHour:      14,
		BatchStartDate: mondayStart,
	}

	if !occurrenceDue(listing, time.Date(2026, 3, 2, 14, 5, 0, 0, time.UTC)) {
		t.Fatalf("expected due on Monday")
	}
	if occurrenceDue(listing, time.Date(2026, 3, 3, 14, 5, 0, 0, time.UTC)) {
		t.Fatalf("expected not due on Tuesday")
	}
	if !occurrenceDue(listing, time.Date(2026, 3, 4, 14, 5, 0, 0, time.UTC)) {
		t.Fatalf("expected due on Wednesday")
	}
}

func TestOccurrenceDueMonthly(t *testing.T) {
	listing := &models.BatchListing{
		FrequencyType:  constants.FrequencyMonthly,
		FrequencyDays:  models.IntArray{1, 15},
		BatchHour:      9,
		BatchStartDate: mondayStart,
	}

	if !occurrenceDue(listing, time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected due on the 15th")
	}
	if occurrenceDue(listing, time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected not due on the 16th")
	}
}

func TestOccurrenceWindowDailySpan(t *testing.T) {
	listing := dailyListing(10)
	now := time.Date(2026, 3, 2, 10, 42, 0, 0, time.UTC)

	start, end := occurrenceWindow(listing, now)
	if !start.Equal(time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected window start: %s", start)
	}
	if !end.Equal(start.Add(23*time.Hour + 59*time.Minute)) {
		t.Fatalf("unexpected window end: %s", end)
	}
}

func TestOccurrenceWindowAlwaysActiveWeekly(t *testing.T) {
	listing := &models.BatchListing{
		FrequencyType:  constants.FrequencyWeekly,
		FrequencyDays:  models.IntArray{1, 3},
		BatchHour:      14,
		BatchStartDate: mondayStart,
		AlwaysActive:   true,
	}

	// Monday window runs until one minute before Wednesday's start.
	start, end := occurrenceWindow(listing, time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC))
	if !start.Equal(time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected Monday start: %s", start)
	}
	if !end.Equal(time.Date(2026, 3, 4, 13, 59, 0, 0, time.UTC)) {
		t.Fatalf("unexpected Monday end: %s", end)
	}

	// Wednesday window wraps across the weekend to next Monday.
	start, end = occurrenceWindow(listing, time.Date(2026, 3, 4, 14, 0, 0, 0, time.UTC))
	if !start.Equal(time.Date(2026, 3, 4, 14, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected Wednesday start: %s", start)
	}
	if !end.Equal(time.Date(2026, 3, 9, 13, 59, 0, 0, time.UTC)) {
		t.Fatalf("unexpected Wednesday end: %s", end)
	}
}

func TestOccurrenceWindowClampsToEndDate(t *testing.T) {
	listing := dailyListing(23)
	listing.BatchEndDate = timePtr(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))

	_, end := occurrenceWindow(listing, time.Date(2026, 3, 2, 23, 0, 0, 0, time.UTC))
	want := time.Date(2026, 3, 2, 23, 59, 59, 999_000_000, time.UTC)
	if !end.Equal(want) {
		t.Fatalf("expected end clamped to %s, got %s", want, end)
	}
}

func TestNextMonthlyStartSkipsShortMonths(t *testing.T) {
	listing := &models.BatchListing{
		FrequencyType: constants.FrequencyMonthly,
		FrequencyDays: models.IntArray{31},
		BatchHour:     10,
	}

	after := time.Date(2026, 1, 31, 10, 0, 0, 0, time.UTC)
	next := nextOccurrenceStart(listing, after)
	want := time.Date(2026, 3, 31, 10, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("expected next start %s (February has no 31st), got %s", want, next)
	}
}
