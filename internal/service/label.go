package service

import (
	"fmt"
	"html"
	"time"

	"github.com/dropforge/internal/constants"
	"github.com/dropforge/internal/models"
)

// Label images are small stamped overlays rendered per occurrence. SVG keeps
// the render deterministic and dependency-free; the storage collaborator
// serves it like any other image.

const labelContentType = "image/svg+xml"

// labelText derives the stamp for an occurrence, or "" when no dynamic label
// is needed.
func labelText(listing *models.BatchListing, mintStart time.Time, dayNumber int) string {
	switch listing.LabelMode {
	case constants.LabelModeDate:
		return mintStart.UTC().Format("Jan 2, 2006")
	case constants.LabelModeDay:
		return fmt.Sprintf("Day %d", dayNumber)
	default:
		return ""
	}
}

// renderLabelSVG renders the stamp as a standalone SVG document.
func renderLabelSVG(text string) []byte {
	escaped := html.EscapeString(text)
	svg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="600" height="160" viewBox="0 0 600 160">`+
		`<rect width="600" height="160" rx="16" fill="#111111"/>`+
		`<text x="300" y="96" text-anchor="middle" font-family="Helvetica, Arial, sans-serif" font-size="56" fill="#ffffff">%s</text>`+
		`</svg>`, escaped)
	return []byte(svg)
}

// labelObjectKey names the stored label for one occurrence.
func labelObjectKey(batchListingID uint, mintStart time.Time) string {
	return fmt.Sprintf("batch-%d/%s.svg", batchListingID, mintStart.UTC().Format("2006-01-02T15"))
}
