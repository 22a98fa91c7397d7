package service

import (
	"sort"
	"time"

	"github.com/dropforge/internal/constants"
	"github.com/dropforge/internal/models"
)

// Occurrence date arithmetic for batch listings. Everything in here works on
// UTC wall-clock time and touches no storage.

const defaultWindowSpan = 23*time.Hour + 59*time.Minute

// occurrenceDue reports whether a listing should fire at now: the date range
// contains now, the hour matches, and (for weekly/monthly) today is one of
// the picked days.
func occurrenceDue(listing *models.BatchListing, now time.Time) bool {
	now = now.UTC()
	today := dateOnly(now)
	if today.Before(dateOnly(listing.BatchStartDate.UTC())) {
		return false
	}
	if listing.BatchEndDate != nil && today.After(dateOnly(listing.BatchEndDate.UTC())) {
		return false
	}
	if now.Hour() != listing.BatchHour {
		return false
	}
	switch listing.FrequencyType {
	case constants.FrequencyDaily:
		return true
	case constants.FrequencyWeekly:
		return containsInt(listing.FrequencyDays, int(now.Weekday()))
	case constants.FrequencyMonthly:
		return containsInt(listing.FrequencyDays, now.Day())
	default:
		return false
	}
}

// occurrenceWindow computes the mint window opening at now. The start is
// today truncated to batch_hour. Daily listings and non-always-active
// listings get a fixed 23h59m span; always-active weekly/monthly listings
// run until one minute before the next scheduled start. The end is clamped
// to the listing's end date at 23:59:59.999.
func occurrenceWindow(listing *models.BatchListing, now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), listing.BatchHour, 0, 0, 0, time.UTC)

	var end time.Time
	if listing.AlwaysActive && listing.FrequencyType != constants.FrequencyDaily {
		end = nextOccurrenceStart(listing, start).Add(-time.Minute)
	} else {
		end = start.Add(defaultWindowSpan)
	}

	if listing.BatchEndDate != nil {
		e := listing.BatchEndDate.UTC()
		endCap := time.Date(e.Year(), e.Month(), e.Day(), 23, 59, 59, 999_000_000, time.UTC)
		if end.After(endCap) {
			end = endCap
		}
	}
	return start, end
}

// nextOccurrenceStart finds the first scheduled start strictly after the
// given start, searching forward across the sorted frequency days and
// wrapping to the next week or month when none remain.
func nextOccurrenceStart(listing *models.BatchListing, after time.Time) time.Time {
	days := append([]int(nil), listing.FrequencyDays...)
	sort.Ints(days)

	switch listing.FrequencyType {
	case constants.FrequencyWeekly:
		return nextWeeklyStart(days, listing.BatchHour, after)
	case constants.FrequencyMonthly:
		return nextMonthlyStart(days, listing.BatchHour, after)
	default:
		return after.Add(24 * time.Hour)
	}
}

func nextWeeklyStart(weekdays []int, hour int, after time.Time) time.Time {
	if len(weekdays) == 0 {
		return after.Add(7 * 24 * time.Hour)
	}
	current := int(after.Weekday())
	for _, d := range weekdays {
		if d > current {
			return startOnDate(after.AddDate(0, 0, d-current), hour)
		}
	}
	// wrap to the first pick next week
	first := weekdays[0]
	return startOnDate(after.AddDate(0, 0, 7-current+first), hour)
}

func nextMonthlyStart(monthDays []int, hour int, after time.Time) time.Time {
	if len(monthDays) == 0 {
		return startOnDate(after.AddDate(0, 1, 0), hour)
	}
	// scan up to a year of months so picks like the 31st land on the next
	// month that actually has one
	year, month := after.Year(), after.Month()
	for m := 0; m < 13; m++ {
		for _, d := range monthDays {
			if m == 0 && d <= after.Day() {
				continue
			}
			candidate := time.Date(year, month, d, hour, 0, 0, 0, time.UTC)
			if candidate.Day() != d {
				continue // day does not exist in this month
			}
			if candidate.After(after) {
				return candidate
			}
		}
		month++
		if month > time.December {
			month = time.January
			year++
		}
	}
	return startOnDate(after.AddDate(0, 1, 0), hour)
}

func startOnDate(t time.Time, hour int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, time.UTC)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
