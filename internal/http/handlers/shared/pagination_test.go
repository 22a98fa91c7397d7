package shared

import "testing"

func TestNormalizePagination(t *testing.T) {
	page, size := NormalizePagination(0, 0)
	if page != 1 || size != 20 {
		t.Fatalf("expected defaults 1/20, got %d/%d", page, size)
	}
	page, size = NormalizePagination(-3, 1000)
	if page != 1 || size != 100 {
		t.Fatalf("expected clamp to 1/100, got %d/%d", page, size)
	}
	page, size = NormalizePagination(4, 25)
	if page != 4 || size != 25 {
		t.Fatalf("expected passthrough 4/25, got %d/%d", page, size)
	}
}

func TestTotalPages(t *testing.T) {
	if got := TotalPages(0, 20); got != 0 {
		t.Fatalf("expected 0 pages, got %d", got)
	}
	if got := TotalPages(41, 20); got != 3 {
		t.Fatalf("expected 3 pages, got %d", got)
	}
	if got := TotalPages(40, 20); got != 2 {
		t.Fatalf("expected 2 pages, got %d", got)
	}
}
