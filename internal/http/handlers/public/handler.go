package public

import "github.com/dropforge/internal/provider"

// Handler serves the storefront and claim surface.
type Handler struct {
	*provider.Container
}

// New creates the public handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
