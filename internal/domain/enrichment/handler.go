package enrichment

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/enrich", h.Enrich)
}

func (h *Handler) Enrich(c echo.Context) error {
	var req EnrichmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.SessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "session_id is required")
	}
	if req.Patient.PatientID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "patient.patient_id is required")
	}

	resp := h.svc.Enrich(c.Request().Context(), req)
	return c.JSON(http.StatusOK, resp)
}
