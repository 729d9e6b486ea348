package knowledge

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler exposes read-only knowledge-base endpoints.
type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes registers knowledge routes on the given group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/knowledge/stats", h.Stats)
}

// Stats returns per-source item counts and knowledge-base versions.
func (h *Handler) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.Stats())
}
