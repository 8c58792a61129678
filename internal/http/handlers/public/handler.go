package public

import "github.com/plktk/ticketpay/internal/provider"

// Handler serves the public API surface.
type Handler struct {
	*provider.Container
}

// New creates the public handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
